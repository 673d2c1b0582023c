package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"glamai-server-go/internal/domain/analysis"
	"glamai-server-go/internal/platform/logging"
	"glamai-server-go/internal/platform/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	logger, err := logging.New(logging.Config{Level: "error"})
	if err != nil {
		t.Fatalf("create logger: %v", err)
	}

	db, err := storage.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	store, err := NewStore(db, logger)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func faceRecord(requestID, userID string) analysis.Record {
	return analysis.Record{
		RequestID: requestID,
		UserID:    userID,
		Kind:      analysis.KindFace,
		Width:     1024,
		Height:    1365,
		Duration:  1200 * time.Millisecond,
		Result: analysis.FaceResult{
			FaceAnalysis: "Warm undertones with balanced proportions.",
			ProductSuggestions: []analysis.ProductSuggestion{
				{Category: "Foundation", Name: "Dewy Skin Tint", Description: "Light coverage for warm undertones."},
			},
			ApplicationTips: []string{"Blend outward from the center of the face."},
		},
	}
}

func TestRecordAndListRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Record(ctx, faceRecord("req-1", "user-1")); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := store.ListByUser(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	entry := entries[0]
	if entry.RequestID != "req-1" || entry.Kind != analysis.KindFace {
		t.Errorf("unexpected entry identity: %+v", entry)
	}
	if entry.Width != 1024 || entry.Height != 1365 {
		t.Errorf("unexpected entry dimensions: %+v", entry)
	}

	face, ok := entry.Result.(analysis.FaceResult)
	if !ok {
		t.Fatalf("expected FaceResult, got %T", entry.Result)
	}
	if face.FaceAnalysis == "" || len(face.ProductSuggestions) != 1 {
		t.Errorf("result did not survive the round trip: %+v", face)
	}
}

func TestListIsScopedToUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Record(ctx, faceRecord("req-1", "user-1")); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Record(ctx, faceRecord("req-2", "user-2")); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := store.ListByUser(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(entries) != 1 || entries[0].RequestID != "req-1" {
		t.Errorf("listing must only return the caller's records: %+v", entries)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"req-1", "req-2", "req-3"} {
		if err := store.Record(ctx, faceRecord(id, "user-1")); err != nil {
			t.Fatalf("Record %s: %v", id, err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	entries, err := store.ListByUser(ctx, "user-1", 2)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(entries))
	}
	if entries[0].RequestID != "req-3" || entries[1].RequestID != "req-2" {
		t.Errorf("expected newest first, got %s then %s", entries[0].RequestID, entries[1].RequestID)
	}
}
