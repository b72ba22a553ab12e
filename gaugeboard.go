package gaugeboard

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jpalmerr/gaugeboard/dashboard"
	"github.com/jpalmerr/gaugeboard/internal/sampler"
	"github.com/jpalmerr/gaugeboard/internal/server"
	"github.com/jpalmerr/gaugeboard/internal/simulate"
	"github.com/jpalmerr/gaugeboard/internal/store"
)

const (
	defaultSampleInterval = time.Second
	defaultPort           = 8080

	// primarySourceKey is the registry key of the mode-selected source,
	// matching the lookup key dashboards poll by default.
	primarySourceKey = "current"

	// simulator defaults, used when the corresponding options are absent
	defaultSimLow   = 0
	defaultSimHigh  = 180
	defaultSimSpeed = 10
)

// Reading is a single sampled value delivered to reading callbacks.
type Reading struct {
	// Name is the source's registry key.
	Name string

	// Value is the sampled value. nil indicates the source failed to
	// produce a value for this sample.
	Value *float64

	// SampledAt is the timestamp when the sample was taken.
	SampledAt time.Time

	// Err contains any error that occurred during sampling.
	Err error
}

// Board is the main orchestrator for value production and dashboard serving.
//
// Board owns the value sources (including the simulator in simulated mode),
// samples them into an in-memory store, and serves their values over HTTP.
// It is created using [New] with functional options and started with
// [Board.Start].
//
// The typical lifecycle is:
//
//	board, err := gaugeboard.New(gaugeboard.WithPort(9090))
//	if err != nil {
//	    slog.Error("failed to create board", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	board.Start(ctx) // blocks until context cancelled
//
// The caller controls the lifecycle via the context. Cancel the context to
// trigger graceful shutdown.
type Board struct {
	title            string
	mode             Mode
	port             int
	sampleInterval   time.Duration
	staticValue      float64
	simLow           float64
	simHigh          float64
	simSpeed         float64
	extraSources     []namedSource
	logger           *slog.Logger
	readingCallbacks []func(Reading)
}

// New creates a new [Board] instance with the given options.
//
// All options have sensible defaults:
//   - Mode: simulated
//   - Port: 8080
//   - Sample interval: 1 second
//   - Simulator: bounds [0, 180], speed 10 units/second
//
// Returns an error if any option is invalid or if two sources share a name.
//
// Example:
//
//	board, err := gaugeboard.New(
//	    gaugeboard.WithSimulatorBounds(0, 90),
//	    gaugeboard.WithSimulatorSpeed(25),
//	    gaugeboard.WithPort(9090),
//	)
func New(opts ...Option) (*Board, error) {
	cfg := &boardConfig{
		mode:           ModeSimulated,
		port:           defaultPort,
		sampleInterval: defaultSampleInterval,
		simLow:         defaultSimLow,
		simHigh:        defaultSimHigh,
		simSpeed:       defaultSimSpeed,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	// validate source name uniqueness (names are HTTP lookup keys)
	seen := map[string]bool{primarySourceKey: true}
	for _, src := range cfg.extraSources {
		if seen[src.name] {
			return nil, fmt.Errorf("duplicate source name: %q", src.name)
		}
		seen[src.name] = true
	}

	// default to slog.Default() if no logger provided
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Board{
		title:            cfg.title,
		mode:             cfg.mode,
		port:             cfg.port,
		sampleInterval:   cfg.sampleInterval,
		staticValue:      cfg.staticValue,
		simLow:           cfg.simLow,
		simHigh:          cfg.simHigh,
		simSpeed:         cfg.simSpeed,
		extraSources:     cfg.extraSources,
		logger:           logger,
		readingCallbacks: cfg.readingCallbacks,
	}, nil
}

// Start runs the board until the provided context is cancelled.
//
// During execution:
//
//   - In simulated mode, the simulator's update loop advances the primary value
//   - All sources are sampled immediately, then at the configured interval
//   - The HTTP server starts on the configured port
//   - The dashboard is available at http://localhost:<port>
//
// The caller controls the lifecycle via context cancellation. For signal
// handling, use [signal.NotifyContext]:
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//	board.Start(ctx)
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server
// fails to start.
func (b *Board) Start(ctx context.Context) error {
	b.logger.Info("gaugeboard starting", "mode", string(b.mode), "source_count", 1+len(b.extraSources))
	b.logger.Info("sampling configured", "interval", b.sampleInterval.String())
	b.logger.Info("dashboard available", "url", fmt.Sprintf("http://localhost:%d", b.port))

	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	// assemble the source registry; mode selects the primary source
	sources := make([]namedSource, 0, 1+len(b.extraSources))
	var sim *simulate.Simulator
	switch b.mode {
	case ModeStatic:
		sources = append(sources, namedSource{name: primarySourceKey, source: Static(b.staticValue)})
	default:
		sim = simulate.NewSimulator()
		sim.Configure(
			simulate.Low(b.simLow),
			simulate.High(b.simHigh),
			simulate.Speed(b.simSpeed),
		)
		sim.Start()
		sources = append(sources, namedSource{name: primarySourceKey, source: sim})
	}
	sources = append(sources, b.extraSources...)

	// create the store
	readingStore := store.NewMemoryStore()

	// start the sampler feeding the store
	smp := sampler.New(b.toSamplerSources(sources), b.sampleInterval, b.logger)
	smp.Start(ctx)

	// track the results consumer goroutine to ensure clean shutdown
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for reading := range smp.Results() {
			// store update first (callbacks fire after data is persisted)
			storeReading := samplerReadingToStoreReading(reading)
			readingStore.Update(storeReading)

			// invoke reading callbacks (after store update)
			if len(b.readingCallbacks) > 0 {
				publicReading := samplerReadingToPublicReading(reading)
				for _, cb := range b.readingCallbacks {
					invokeCallbackSafe(cb, publicReading, b.logger)
				}
			}

			// log samples (DEBUG level for success to reduce noise)
			logAttrs := []any{
				"source", reading.Name,
				"value", reading.Value,
			}
			if reading.Error != nil {
				b.logger.Warn("sample completed with error", append(logAttrs, "error", reading.Error.Error())...)
			} else {
				b.logger.Debug("sample completed", logAttrs...)
			}
		}
	}()

	// cleanup function ensures the sampler and simulator are stopped and
	// all readings are processed
	cleanup := func() {
		smp.Stop() // closes results channel
		wg.Wait()  // wait for all readings to be processed
		if sim != nil {
			sim.Stop()
		}
	}

	// start the HTTP server
	httpServer := server.NewServer(readingStore, b.toValueReaders(sources), string(b.mode), b.port, dashboard.Assets, b.title, b.logger)
	if err := httpServer.Start(ctx); err != nil {
		cleanup()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	<-ctx.Done()
	cleanup()
	b.logger.Info("gaugeboard stopped")
	return nil
}

// Mode returns the configured value-production mode.
func (b *Board) Mode() Mode {
	return b.mode
}

// Port returns the configured HTTP port for the dashboard server.
func (b *Board) Port() int {
	return b.port
}

// SampleInterval returns the configured interval between sampling cycles.
func (b *Board) SampleInterval() time.Duration {
	return b.sampleInterval
}

// toSamplerSources converts the registry to sampler.SourceInfo values.
func (b *Board) toSamplerSources(sources []namedSource) []sampler.SourceInfo {
	result := make([]sampler.SourceInfo, len(sources))
	for i, src := range sources {
		result[i] = sampler.SourceInfo{
			Name: src.name,
			Read: src.source.Read,
		}
	}
	return result
}

// toValueReaders wraps every source in panic recovery for the request path.
//
// The sampler has its own recovery for the background path; request-time
// reads through /api/snapshot and /api/value need the same guarantee so a
// panicking source surfaces as null (bulk) or a 500 (single key) instead of
// killing the connection.
func (b *Board) toValueReaders(sources []namedSource) map[string]server.ValueReader {
	readers := make(map[string]server.ValueReader, len(sources))
	for _, src := range sources {
		src := src
		readers[src.name] = func() (float64, error) {
			return b.readSourceSafe(src)
		}
	}
	return readers
}

// readSourceSafe reads a source with panic recovery.
// If the source panics, it logs the full stack trace with a correlation ID
// and returns an error containing the ID.
func (b *Board) readSourceSafe(src namedSource) (value float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			stack := debug.Stack()

			// log full context server-side for debugging
			b.logger.Error("source panic",
				"correlation_id", correlationID,
				"source", src.name,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(stack),
			)

			err = fmt.Errorf("source panic (correlation_id: %s)", correlationID)
		}
	}()
	return src.source.Read(), nil
}

// samplerReadingToStoreReading converts a sampler reading to a store reading.
func samplerReadingToStoreReading(r sampler.Reading) store.Reading {
	var errStr *string
	var value *float64
	if r.Error != nil {
		msg := r.Error.Error()
		errStr = &msg
	} else {
		v := r.Value
		value = &v
	}

	return store.Reading{
		Name:      r.Name,
		Value:     value,
		SampledAt: r.SampledAt,
		Error:     errStr,
	}
}

// samplerReadingToPublicReading converts a sampler reading to the public type.
func samplerReadingToPublicReading(r sampler.Reading) Reading {
	var value *float64
	if r.Error == nil {
		v := r.Value
		value = &v
	}

	return Reading{
		Name:      r.Name,
		Value:     value,
		SampledAt: r.SampledAt,
		Err:       r.Error,
	}
}

// invokeCallbackSafe calls a reading callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(Reading), reading Reading, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("reading callback panicked",
				"panic", r,
				"source", reading.Name,
			)
		}
	}()
	cb(reading)
}
