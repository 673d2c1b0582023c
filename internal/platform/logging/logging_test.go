package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(Config{Level: "debug", Dir: dir, Filename: "test.log"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("hello %s", "world")
	logger.InfoTag("HTTP", "request handled in %dms", 12)
	logger.Close()

	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "hello world") {
		t.Errorf("log file missing formatted message: %q", content)
	}
	if !strings.Contains(content, "[HTTP] request handled in 12ms") {
		t.Errorf("log file missing tagged message: %q", content)
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(Config{Level: "warn", Dir: dir, Filename: "test.log"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug("should not appear")
	logger.Warn("should appear")
	logger.Close()

	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	if strings.Contains(content, "should not appear") {
		t.Errorf("debug message leaked through warn level: %q", content)
	}
	if !strings.Contains(content, "should appear") {
		t.Errorf("warn message missing: %q", content)
	}
}

func TestSplitTag(t *testing.T) {
	tests := []struct {
		msg   string
		tag   string
		rest  string
		found bool
	}{
		{"[HTTP] hello", "HTTP", "hello", true},
		{"no tag here", "", "no tag here", false},
		{"[] empty", "", "[] empty", false},
	}
	for _, tt := range tests {
		tag, rest, found := splitTag(tt.msg)
		if tag != tt.tag || rest != tt.rest || found != tt.found {
			t.Errorf("splitTag(%q) = (%q, %q, %v), expected (%q, %q, %v)",
				tt.msg, tag, rest, found, tt.tag, tt.rest, tt.found)
		}
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.log")
	if err := os.WriteFile(old, []byte("x"), 0o644); err != nil {
		t.Fatalf("write old log: %v", err)
	}
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	if err := CleanupOldLogs(dir, 24*time.Hour); err != nil {
		t.Fatalf("CleanupOldLogs returned error: %v", err)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Errorf("expected old log to be removed")
	}
}
