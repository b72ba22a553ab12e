package simulate

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// tickInterval is the pause between update loop iterations. The loop
	// measures real elapsed time each iteration, so the advance rate is
	// governed by the wall clock rather than by tick count.
	tickInterval = 10 * time.Millisecond

	defaultLow   = 0
	defaultHigh  = 180
	defaultSpeed = 10
)

// atomicFloat64 provides atomic load/store of a float64 via its bit pattern.
//
// Each simulator field only needs single-word visibility: readers may observe
// value, low, and high from different instants during a concurrent
// reconfiguration, and that is accepted. No field requires a lock.
type atomicFloat64 struct {
	bits atomic.Uint64
}

func (f *atomicFloat64) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

func (f *atomicFloat64) Store(v float64) {
	f.bits.Store(math.Float64bits(v))
}

// Simulator produces a bounded oscillating value.
//
// The value advances at the configured speed (units per second) between
// min(low, high) and max(low, high), reflecting at each bound. A single
// background goroutine owns the advancement; any number of concurrent
// readers may call [Simulator.Read] and any number of writers may call
// [Simulator.Configure] while the loop runs.
//
// The zero value is not usable; create instances with [NewSimulator].
type Simulator struct {
	value atomicFloat64
	low   atomicFloat64
	high  atomicFloat64
	speed atomicFloat64

	// mu guards the lifecycle fields only; the value/bounds/speed hot
	// path is lock-free.
	mu   sync.Mutex
	run  *atomic.Bool  // current loop generation's continue flag
	done chan struct{} // closed when the current loop goroutine exits
}

// NewSimulator creates a [Simulator] with default settings:
// value 0, bounds [0, 180], speed 10 units/second, not running.
//
// Call [Simulator.Start] to begin advancing the value.
func NewSimulator() *Simulator {
	s := &Simulator{}
	s.low.Store(defaultLow)
	s.high.Store(defaultHigh)
	s.speed.Store(defaultSpeed)
	return s
}

// Setting adjusts a single simulator parameter.
//
// Settings are applied by [Simulator.Configure]. Parameters not mentioned
// in a Configure call are left unchanged.
type Setting func(*Simulator)

// Low sets the first bound. It need not be below the high bound; the loop
// oscillates within [min(low, high), max(low, high)] regardless.
func Low(v float64) Setting {
	return func(s *Simulator) { s.low.Store(v) }
}

// High sets the second bound.
func High(v float64) Setting {
	return func(s *Simulator) { s.high.Store(v) }
}

// Speed sets the advance rate in units per second. Non-positive values are
// silently ignored, leaving the previous speed in place.
func Speed(v float64) Setting {
	return func(s *Simulator) {
		if v > 0 {
			s.speed.Store(v)
		}
	}
}

// Configure applies the given settings. It never fails and never blocks.
//
// The running loop observes new bounds and speed on its next tick; there is
// no need to stop or restart the loop. If the new bounds exclude the current
// value, the next tick's reflection may emit one transient out-of-range or
// sharply corrected reading before the value settles inside the new window.
// Configuring a stopped simulator just records the settings; they take
// effect when the loop next starts.
func (s *Simulator) Configure(settings ...Setting) {
	for _, set := range settings {
		set(s)
	}
}

// Read returns the current value. It never blocks and never fails.
func (s *Simulator) Read() float64 {
	return s.value.Load()
}

// Running reports whether the update loop is active.
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run != nil && s.run.Load()
}

// Start launches the update loop in a background goroutine.
//
// Start is idempotent: calling it while the loop is running is a no-op, so
// at most one loop advances the value at any time. Start is non-blocking.
//
// A Start that follows [Simulator.Stop] works: the new loop waits for the
// old goroutine to observe its cleared flag (at most one tick) before
// ticking, so a quick stop/start cycle cannot race two loops.
func (s *Simulator) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.run != nil && s.run.Load() {
		return
	}

	run := &atomic.Bool{}
	run.Store(true)
	prev := s.done
	done := make(chan struct{})
	s.run = run
	s.done = done

	go func() {
		defer close(done)
		if prev != nil {
			<-prev
		}
		s.loop(run)
	}()
}

// Stop clears the run flag. The loop observes it at its next iteration
// boundary, up to one tick plus scheduler latency later, and exits on its
// own; Stop does not wait for that. The simulator can be started again
// afterwards.
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run != nil {
		s.run.Store(false)
	}
}

// loop advances the value until run is cleared.
//
// Each iteration measures real elapsed time, recomputes the effective
// bounds (they may have been reconfigured), advances by
// direction * speed * dt, reflects at whichever bound was crossed, and
// publishes the result. Direction is loop-local; it is not shared state.
func (s *Simulator) loop(run *atomic.Bool) {
	x := math.Min(s.low.Load(), s.high.Load())
	direction := 1.0
	last := time.Now()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for run.Load() {
		now := time.Now()
		dt := now.Sub(last).Seconds()
		last = now

		lo := math.Min(s.low.Load(), s.high.Load())
		hi := math.Max(s.low.Load(), s.high.Load())

		x, direction = advance(x, direction, lo, hi, s.speed.Load(), dt)
		s.value.Store(x)

		<-ticker.C
	}
}

// advance computes one tick of the bounce: move x by direction*speed*dt,
// then mirror any overshoot back inside [lo, hi] and flip direction.
//
// The high check runs first; the two reflections are mutually exclusive
// within a single tick. When lo == hi the value pins to that point and the
// direction flips every tick, which is degenerate but harmless.
func advance(x, direction, lo, hi, speed, dt float64) (float64, float64) {
	x += direction * speed * dt
	if x >= hi {
		return hi - (x - hi), -1
	}
	if x <= lo {
		return lo + (lo - x), 1
	}
	return x, direction
}
