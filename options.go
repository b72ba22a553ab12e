package gaugeboard

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Mode selects how the board's primary "current" value is produced.
type Mode string

const (
	// ModeSimulated serves a continuously oscillating simulated value.
	ModeSimulated Mode = "simulated"

	// ModeStatic serves a fixed value.
	ModeStatic Mode = "static"
)

// namedSource pairs a registry key with its Source.
type namedSource struct {
	name   string
	source Source
}

// boardConfig holds mutable state during Board construction.
type boardConfig struct {
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

// Option is a function that configures a [Board] instance during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
//
// Built-in options: [WithMode], [WithPort], [WithSampleInterval],
// [WithSource], [WithStaticValue], [WithSimulatorBounds],
// [WithSimulatorSpeed], [WithLogger], [WithReadingCallback], [WithTitle].
type Option func(*boardConfig) error

// WithMode selects how the primary "current" value is produced.
//
// Defaults to [ModeSimulated] if not specified.
//
// Example:
//
//	board, err := gaugeboard.New(
//	    gaugeboard.WithMode(gaugeboard.ModeStatic),
//	    gaugeboard.WithStaticValue(72),
//	)
//
// Returns an error for an unknown mode.
func WithMode(m Mode) Option {
	return func(cfg *boardConfig) error {
		if m != ModeSimulated && m != ModeStatic {
			return fmt.Errorf("unknown mode %q (expected %q or %q)", m, ModeSimulated, ModeStatic)
		}
		cfg.mode = m
		return nil
	}
}

// WithPort sets the HTTP port for the board server.
//
// The dashboard UI and API will be available at http://localhost:<port>.
// Defaults to 8080 if not specified.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *boardConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithSampleInterval sets how often all sources are sampled into the live
// stream that feeds SSE subscribers and reading callbacks.
//
// The interval does not affect the snapshot and value endpoints, which read
// sources at request time. Defaults to 1 second if not specified.
//
// Returns an error if the duration is zero or negative.
func WithSampleInterval(d time.Duration) Option {
	return func(cfg *boardConfig) error {
		if d <= 0 {
			return errors.New("sample interval must be positive")
		}
		cfg.sampleInterval = d
		return nil
	}
}

// WithSource registers an additional value source under the given lookup key.
//
// The key becomes the HTTP path segment for /api/value/<name> and the field
// name in /api/snapshot. Can be called multiple times. The "current" key is
// reserved for the mode-selected primary source.
//
// Example:
//
//	board, err := gaugeboard.New(
//	    gaugeboard.WithSource("rpm", gaugeboard.Static(900)),
//	    gaugeboard.WithSource("throttle", gaugeboard.Func(engine.Throttle)),
//	)
//
// Returns an error for an empty or reserved name, or a nil source.
func WithSource(name string, src Source) Option {
	return func(cfg *boardConfig) error {
		if name == "" {
			return errors.New("source name cannot be empty")
		}
		if name == primarySourceKey {
			return fmt.Errorf("source name %q is reserved for the mode-selected source", primarySourceKey)
		}
		if src == nil {
			return fmt.Errorf("source %q cannot be nil", name)
		}
		cfg.extraSources = append(cfg.extraSources, namedSource{name: name, source: src})
		return nil
	}
}

// WithStaticValue sets the value reported in [ModeStatic].
//
// Defaults to 0. Ignored in [ModeSimulated].
func WithStaticValue(v float64) Option {
	return func(cfg *boardConfig) error {
		cfg.staticValue = v
		return nil
	}
}

// WithSimulatorBounds sets the simulator's oscillation bounds.
//
// The bounds need not be ordered; the simulator oscillates within
// [min(low, high), max(low, high)]. Defaults to [0, 180]. Ignored in
// [ModeStatic].
func WithSimulatorBounds(low, high float64) Option {
	return func(cfg *boardConfig) error {
		cfg.simLow = low
		cfg.simHigh = high
		return nil
	}
}

// WithSimulatorSpeed sets the simulator's advance rate in units per second.
//
// Defaults to 10. Ignored in [ModeStatic].
//
// Returns an error if the speed is zero or negative. (Runtime
// reconfiguration of a running simulator ignores bad speeds silently, but a
// construction-time typo should fail loudly.)
func WithSimulatorSpeed(speed float64) Option {
	return func(cfg *boardConfig) error {
		if speed <= 0 {
			return errors.New("simulator speed must be positive")
		}
		cfg.simSpeed = speed
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the Board instance.
//
// This allows SDK consumers to control where logs are written and in what
// format. If not specified, [slog.Default] is used.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
//	board, err := gaugeboard.New(
//	    gaugeboard.WithLogger(logger),
//	)
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *boardConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithReadingCallback registers a function to be called on every sample.
//
// The callback receives a [Reading] containing the source name, value (nil
// if the source failed), and sample timestamp.
//
// Multiple callbacks may be registered by calling WithReadingCallback
// multiple times; they execute in registration order.
//
// IMPORTANT: Callbacks must be non-blocking. Long-running operations should
// dispatch work to a separate goroutine. Blocking callbacks will delay
// subsequent sample processing.
//
// Callbacks are invoked synchronously from a single goroutine. Panics within
// callbacks are recovered and logged; they do not crash the sampler.
//
// Nil callbacks are silently ignored.
func WithReadingCallback(cb func(Reading)) Option {
	return func(cfg *boardConfig) error {
		if cb == nil {
			return nil // no-op for nil callback (safe to call)
		}
		cfg.readingCallbacks = append(cfg.readingCallbacks, cb)
		return nil
	}
}

// WithTitle sets the dashboard title displayed in the browser tab and header.
//
// If not specified, defaults to "GaugeBoard".
func WithTitle(title string) Option {
	return func(cfg *boardConfig) error {
		cfg.title = title
		return nil
	}
}
