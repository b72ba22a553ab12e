package gaugeboard

// Source is the capability of producing a numeric live value.
//
// A Source read never blocks and never fails: any number of concurrent
// callers may read it per incoming request. Panics inside a Source are
// recovered at the boundary (sampler and HTTP handlers) and surfaced as a
// failed reading, so a misbehaving Source cannot take the board down.
type Source interface {
	// Read returns the current value.
	Read() float64
}

// Static is a [Source] that always reports the same value.
//
// It backs static mode, where the board serves a fixed reading instead of
// the simulator's oscillation:
//
//	board, err := gaugeboard.New(
//	    gaugeboard.WithMode(gaugeboard.ModeStatic),
//	    gaugeboard.WithStaticValue(72),
//	)
type Static float64

// Read returns the fixed value.
func (s Static) Read() float64 {
	return float64(s)
}

// Func adapts a plain function to the [Source] interface.
//
// Example:
//
//	board, err := gaugeboard.New(
//	    gaugeboard.WithSource("rpm", gaugeboard.Func(engine.RPM)),
//	)
type Func func() float64

// Read calls the wrapped function.
func (f Func) Read() float64 {
	return f()
}
