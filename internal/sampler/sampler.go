package sampler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Reading holds the outcome of sampling a single source.
type Reading struct {
	// Name is the registry key of the sampled source.
	Name string

	// Value is the sampled value. Only meaningful when Error is nil.
	Value float64

	// SampledAt is the timestamp when the sample was taken.
	SampledAt time.Time

	// Error contains any error that occurred during sampling (currently
	// only source panics; sources themselves cannot fail).
	Error error
}

// SourceInfo is a named value producer to be sampled.
//
// This is the sampler-internal representation of a source, decoupled from
// the main gaugeboard.Source type to avoid circular dependencies.
type SourceInfo struct {
	// Name is the registry key of the source.
	Name string

	// Read produces the current value. It must not block; panics are
	// recovered by the sampler.
	Read func() float64
}

// Sampler manages periodic sampling of multiple value sources.
//
// The sampler reads every source immediately on start, then on every tick
// of the configured interval. Results are emitted to a channel consumed by
// the caller. Reading an in-process source cannot block on IO, so sources
// are sampled sequentially on the ticker goroutine; there is no worker pool.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Sampler struct {
	sources  []SourceInfo
	interval time.Duration
	results  chan Reading
	logger   *slog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	closeOnce sync.Once
}

// New creates a new [Sampler].
//
// Parameters:
//   - sources: List of sources to sample
//   - interval: Time between sampling cycles
//   - logger: Logger for sampler events (panic recovery, etc.)
//
// The sampler must be started with [Sampler.Start] and stopped with
// [Sampler.Stop]. Results are available via [Sampler.Results].
func New(sources []SourceInfo, interval time.Duration, logger *slog.Logger) *Sampler {
	return &Sampler{
		sources:  sources,
		interval: interval,
		results:  make(chan Reading, len(sources)),
		logger:   logger,
	}
}

// Results returns a receive-only channel that emits [Reading] values.
//
// The channel is closed when the sampler stops. Consumers should read from
// this channel until it is closed to receive all readings.
func (s *Sampler) Results() <-chan Reading {
	return s.results
}

// Start begins the sampling loop in a background goroutine.
//
// Start is non-blocking and returns immediately. The sampler will:
//  1. Sample all sources immediately
//  2. Sample all sources on every interval tick
//  3. Continue until [Sampler.Stop] is called or the context is cancelled
//
// If ctx is nil, context.Background() is used as the parent context.
// Start is idempotent; subsequent calls after the first are no-ops.
// If Stop was called before Start, Start is a no-op.
func (s *Sampler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	sampleCtx := s.ctx // capture under lock to avoid race
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer s.closeOnce.Do(func() { close(s.results) })

		s.sampleAll(sampleCtx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-sampleCtx.Done():
				return
			case <-ticker.C:
				s.sampleAll(sampleCtx)
			}
		}
	}()
}

// Stop halts the sampler and waits for the sampling goroutine to complete.
//
// Stop cancels the sampler's context and blocks until the loop exits and
// the results channel is closed. Stop is idempotent and safe to call
// multiple times. Calling Stop before Start is a safe no-op.
func (s *Sampler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()

	// ensure channel is closed even if Start() was never called
	s.closeOnce.Do(func() { close(s.results) })
}

// sampleAll reads every source once and emits the readings.
func (s *Sampler) sampleAll(ctx context.Context) {
	for _, src := range s.sources {
		reading := s.sample(src)
		select {
		case s.results <- reading:
		case <-ctx.Done():
			return
		}
	}
}

// sample reads a single source and returns the reading.
func (s *Sampler) sample(src SourceInfo) Reading {
	value, err := s.safeRead(src)
	return Reading{
		Name:      src.Name,
		Value:     value,
		SampledAt: time.Now(),
		Error:     err,
	}
}

// safeRead calls the source with panic recovery.
// If the source panics, it logs the full stack trace with a correlation ID
// and returns an error containing the ID.
func (s *Sampler) safeRead(src SourceInfo) (value float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			stack := debug.Stack()

			// log full context server-side for debugging
			s.logger.Error("source panic",
				"correlation_id", correlationID,
				"source", src.Name,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(stack),
			)

			err = fmt.Errorf("source panic (correlation_id: %s)", correlationID)
		}
	}()
	return src.Read(), nil
}
