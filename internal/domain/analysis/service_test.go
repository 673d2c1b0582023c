package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"glamai-server-go/internal/domain/eventbus"
	domainimage "glamai-server-go/internal/domain/image"
	"glamai-server-go/internal/platform/config"
)

type capturingRecorder struct {
	mu      sync.Mutex
	records []Record
	err     error
}

func (r *capturingRecorder) Record(_ context.Context, record Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return r.err
}

func encodeTestPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// completionServer returns a chat-completion endpoint that answers
// every request with the given assistant content.
func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		envelope := map[string]any{
			"id":     "cmpl-test",
			"object": "chat.completion",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": content},
					"finish_reason": "stop",
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(envelope); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
}

func newTestAnalyzer(t *testing.T, baseURL string, recorder Recorder, bus *eventbus.Bus) *Analyzer {
	t.Helper()

	logger := testAnalysisLogger(t)
	cfg := config.DefaultConfig()
	cfg.Analysis.APIKey = "sk-test"
	cfg.Analysis.BaseURL = baseURL

	adapter, err := domainimage.NewAdapter(&cfg.Image, logger)
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	client, err := NewClient(&cfg.Analysis, logger)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	analyzer, err := NewAnalyzer(AnalyzerOptions{
		Adapter:  adapter,
		Builder:  NewBuilder(&cfg.Analysis),
		Client:   client,
		Recorder: recorder,
		Bus:      bus,
		Logger:   logger,
	})
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	return analyzer
}

func TestAnalyzeFaceEndToEnd(t *testing.T) {
	server := completionServer(t, faceRaw)
	defer server.Close()

	recorder := &capturingRecorder{}
	bus := eventbus.New()

	var events []string
	var mu sync.Mutex
	for _, topic := range []string{eventbus.EventAnalysisStarted, eventbus.EventAnalysisFinished, eventbus.EventAnalysisFailed} {
		topic := topic
		unsubscribe, err := bus.Subscribe(topic, func(eventbus.AnalysisEventData) {
			mu.Lock()
			events = append(events, topic)
			mu.Unlock()
		})
		if err != nil {
			t.Fatalf("subscribe %s: %v", topic, err)
		}
		defer unsubscribe()
	}

	analyzer := newTestAnalyzer(t, server.URL+"/v1", recorder, bus)
	src := domainimage.Source{Reader: bytes.NewReader(encodeTestPNG(t, 12, 16))}

	result, captured, err := analyzer.Analyze(context.Background(), "user-1", KindFace, src)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	face, ok := result.(FaceResult)
	if !ok {
		t.Fatalf("expected FaceResult, got %T", result)
	}
	if face.FaceAnalysis == "" {
		t.Error("face analysis text is empty")
	}
	if len(face.ProductSuggestions) == 0 {
		t.Error("expected product suggestions")
	}
	if captured == nil || captured.Width != 12 || captured.Height != 16 {
		t.Errorf("unexpected captured image: %+v", captured)
	}

	if len(recorder.records) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(recorder.records))
	}
	record := recorder.records[0]
	if record.UserID != "user-1" || record.Kind != KindFace {
		t.Errorf("unexpected record identity: %+v", record)
	}
	if record.Width != 12 || record.Height != 16 {
		t.Errorf("unexpected record dimensions: %+v", record)
	}
	if record.RequestID == "" {
		t.Error("record is missing a request ID")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 || events[0] != eventbus.EventAnalysisStarted || events[1] != eventbus.EventAnalysisFinished {
		t.Errorf("unexpected event sequence: %v", events)
	}
}

func TestAnalyzeSecondAttemptFailsFast(t *testing.T) {
	release := make(chan struct{})
	arrived := make(chan struct{})
	var once sync.Once

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(arrived) })
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionEnvelope))
	}))
	defer server.Close()
	defer close(release)

	analyzer := newTestAnalyzer(t, server.URL+"/v1", nil, nil)
	png := encodeTestPNG(t, 8, 8)

	errCh := make(chan error, 1)
	go func() {
		_, _, err := analyzer.Analyze(context.Background(), "user-1", KindFace, domainimage.Source{Reader: bytes.NewReader(png)})
		errCh <- err
	}()

	<-arrived

	_, _, err := analyzer.Analyze(context.Background(), "user-1", KindFace, domainimage.Source{Reader: bytes.NewReader(png)})
	if !errors.Is(err, ErrInFlight) {
		t.Fatalf("expected ErrInFlight for concurrent attempt, got %v", err)
	}

	// A different caller is not blocked by the first one.
	otherDone := make(chan error, 1)
	go func() {
		_, _, err := analyzer.Analyze(context.Background(), "user-2", KindFace, domainimage.Source{Reader: bytes.NewReader(png)})
		otherDone <- err
	}()

	release <- struct{}{}
	release <- struct{}{}

	if err := <-errCh; err == nil {
		// The placeholder payload does not parse as a face result;
		// only the in-flight gate is under test here.
		t.Log("first analysis unexpectedly produced a result")
	}
	if err := <-otherDone; errors.Is(err, ErrInFlight) {
		t.Error("independent caller must not share the in-flight gate")
	}
}

func TestAnalyzeCancelledAcquisitionIsSilent(t *testing.T) {
	server := completionServer(t, faceRaw)
	defer server.Close()

	bus := eventbus.New()
	var failed bool
	unsubscribe, err := bus.Subscribe(eventbus.EventAnalysisFailed, func(eventbus.AnalysisEventData) {
		failed = true
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer unsubscribe()

	analyzer := newTestAnalyzer(t, server.URL+"/v1", nil, bus)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = analyzer.Analyze(ctx, "user-1", KindFace, domainimage.Source{Reader: bytes.NewReader(encodeTestPNG(t, 8, 8))})
	if !errors.Is(err, domainimage.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if failed {
		t.Error("cancellation must not publish a failure event")
	}
}

func TestAnalyzeUnknownKind(t *testing.T) {
	server := completionServer(t, faceRaw)
	defer server.Close()

	analyzer := newTestAnalyzer(t, server.URL+"/v1", nil, nil)

	_, _, err := analyzer.Analyze(context.Background(), "user-1", Kind("aura"), domainimage.Source{
		Reader: bytes.NewReader(encodeTestPNG(t, 8, 8)),
	})
	if err == nil {
		t.Fatal("expected error for unknown analysis kind")
	}
}

func TestAnalyzeRecorderFailureDoesNotFailAnalysis(t *testing.T) {
	server := completionServer(t, faceRaw)
	defer server.Close()

	recorder := &capturingRecorder{err: errors.New("disk full")}
	analyzer := newTestAnalyzer(t, server.URL+"/v1", recorder, nil)

	result, _, err := analyzer.Analyze(context.Background(), "user-1", KindFace, domainimage.Source{
		Reader: bytes.NewReader(encodeTestPNG(t, 8, 8)),
	})
	if err != nil {
		t.Fatalf("analysis must succeed despite recorder failure, got %v", err)
	}
	if result == nil {
		t.Fatal("expected a parsed result")
	}
}
