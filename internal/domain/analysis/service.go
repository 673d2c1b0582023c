package analysis

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"glamai-server-go/internal/domain/eventbus"
	domainimage "glamai-server-go/internal/domain/image"
	"glamai-server-go/internal/platform/logging"
)

// Record captures one completed analysis for optional persistence.
type Record struct {
	RequestID string
	UserID    string
	Kind      Kind
	Width     int
	Height    int
	Duration  time.Duration
	Result    Result
}

// Recorder persists completed analyses. Implementations must tolerate
// being called concurrently.
type Recorder interface {
	Record(ctx context.Context, record Record) error
}

// Analyzer runs the full pipeline for one image: acquire, build,
// send, parse. One generic pipeline parameterized by kind; the two
// instruction templates and validators come from the kind profile.
type Analyzer struct {
	adapter  *domainimage.Adapter
	builder  *Builder
	client   *Client
	recorder Recorder
	bus      *eventbus.Bus
	logger   *logging.Logger

	mu       sync.Mutex
	inflight map[string]*semaphore.Weighted
}

// AnalyzerOptions wires the analyzer's collaborators. Recorder and
// Bus are optional.
type AnalyzerOptions struct {
	Adapter  *domainimage.Adapter
	Builder  *Builder
	Client   *Client
	Recorder Recorder
	Bus      *eventbus.Bus
	Logger   *logging.Logger
}

func NewAnalyzer(opts AnalyzerOptions) (*Analyzer, error) {
	if opts.Adapter == nil {
		return nil, errors.New("image adapter is required")
	}
	if opts.Builder == nil {
		return nil, errors.New("request builder is required")
	}
	if opts.Client == nil {
		return nil, errors.New("remote client is required")
	}
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}

	return &Analyzer{
		adapter:  opts.Adapter,
		builder:  opts.Builder,
		client:   opts.Client,
		recorder: opts.Recorder,
		bus:      opts.Bus,
		logger:   opts.Logger,
		inflight: make(map[string]*semaphore.Weighted),
	}, nil
}

// Analyze runs one analysis for the caller. A caller has at most one
// analysis in flight at a time; a second concurrent attempt fails
// fast with ErrInFlight instead of queueing. A successful acquisition
// invalidates any result the caller still holds, so the captured
// image is returned alongside the parsed result.
func (a *Analyzer) Analyze(ctx context.Context, callerID string, kind Kind, src domainimage.Source) (Result, *domainimage.CapturedImage, error) {
	if _, err := ProfileFor(kind); err != nil {
		return nil, nil, err
	}

	sem := a.semaphoreFor(callerID)
	if !sem.TryAcquire(1) {
		return nil, nil, ErrInFlight
	}
	defer sem.Release(1)

	requestID := uuid.NewString()
	started := time.Now()
	a.publish(eventbus.EventAnalysisStarted, eventbus.AnalysisEventData{
		RequestID: requestID,
		UserID:    callerID,
		Kind:      string(kind),
	})

	captured, err := a.adapter.Acquire(ctx, src)
	if err != nil {
		if errors.Is(err, domainimage.ErrCancelled) {
			// Cancellation is a silent no-op, not a failure.
			return nil, nil, err
		}
		a.fail(requestID, callerID, kind, err)
		return nil, nil, err
	}

	a.logger.DebugTag("ANALYSIS",
		"request %s: kind=%s image=%dx%d size=%d",
		requestID, kind, captured.Width, captured.Height, captured.Size,
	)

	request, err := a.builder.Build(kind, captured.Base64)
	if err != nil {
		a.fail(requestID, callerID, kind, err)
		return nil, captured, err
	}

	raw, err := a.client.Send(ctx, kind, request)
	if err != nil {
		a.fail(requestID, callerID, kind, err)
		return nil, captured, err
	}

	result, err := Parse(raw, kind)
	if err != nil {
		a.fail(requestID, callerID, kind, err)
		return nil, captured, err
	}

	duration := time.Since(started)
	a.logger.InfoTag("ANALYSIS", "request %s: completed kind=%s in %s", requestID, kind, duration)

	if a.recorder != nil {
		record := Record{
			RequestID: requestID,
			UserID:    callerID,
			Kind:      kind,
			Width:     captured.Width,
			Height:    captured.Height,
			Duration:  duration,
			Result:    result,
		}
		if err := a.recorder.Record(ctx, record); err != nil {
			// History is best-effort; the analysis already succeeded.
			a.logger.WarnTag("ANALYSIS", "request %s: history record failed: %v", requestID, err)
		}
	}

	a.publish(eventbus.EventAnalysisFinished, eventbus.AnalysisEventData{
		RequestID: requestID,
		UserID:    callerID,
		Kind:      string(kind),
	})

	return result, captured, nil
}

func (a *Analyzer) semaphoreFor(callerID string) *semaphore.Weighted {
	a.mu.Lock()
	defer a.mu.Unlock()

	sem, ok := a.inflight[callerID]
	if !ok {
		sem = semaphore.NewWeighted(1)
		a.inflight[callerID] = sem
	}
	return sem
}

func (a *Analyzer) fail(requestID, callerID string, kind Kind, err error) {
	a.logger.WarnTag("ANALYSIS", "request %s: kind=%s failed: %v", requestID, kind, err)
	a.publish(eventbus.EventAnalysisFailed, eventbus.AnalysisEventData{
		RequestID: requestID,
		UserID:    callerID,
		Kind:      string(kind),
		Error:     err.Error(),
	})
}

func (a *Analyzer) publish(topic string, data eventbus.AnalysisEventData) {
	if a.bus != nil {
		a.bus.Publish(topic, data)
	}
}
