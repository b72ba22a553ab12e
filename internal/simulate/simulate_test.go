package simulate

import (
	"math"
	"testing"
	"time"
)

const epsilon = 1e-9

func TestAdvance_NoReflect(t *testing.T) {
	x, dir := advance(90, 1, 0, 180, 10, 0.5)

	if math.Abs(x-95) > epsilon {
		t.Errorf("advance() x = %v, want 95", x)
	}
	if dir != 1 {
		t.Errorf("advance() direction = %v, want 1", dir)
	}
}

func TestAdvance_ReflectAtHigh(t *testing.T) {
	// raw advance to 185 mirrors back to 175 and flips direction
	x, dir := advance(175, 1, 0, 180, 10, 1.0)

	if math.Abs(x-175) > epsilon {
		t.Errorf("advance() x = %v, want 175", x)
	}
	if dir != -1 {
		t.Errorf("advance() direction = %v, want -1", dir)
	}
}

func TestAdvance_ReflectAtLow(t *testing.T) {
	// raw advance to -5 mirrors back to 5 and flips direction
	x, dir := advance(5, -1, 0, 180, 10, 1.0)

	if math.Abs(x-5) > epsilon {
		t.Errorf("advance() x = %v, want 5", x)
	}
	if dir != 1 {
		t.Errorf("advance() direction = %v, want 1", dir)
	}
}

func TestAdvance_ExactBoundFlips(t *testing.T) {
	// landing exactly on the high bound counts as a reflection
	x, dir := advance(170, 1, 0, 180, 10, 1.0)

	if math.Abs(x-180) > epsilon {
		t.Errorf("advance() x = %v, want 180", x)
	}
	if dir != -1 {
		t.Errorf("advance() direction = %v, want -1", dir)
	}
}

func TestAdvance_HighCheckWinsOnCollapsedBounds(t *testing.T) {
	// lo == hi: the value pins to the point and direction flips each tick
	x, dir := advance(90, 1, 90, 90, 10, 0.1)

	if math.Abs(x-90) > epsilon {
		t.Errorf("advance() x = %v, want 90", x)
	}
	if dir != -1 {
		t.Errorf("advance() direction = %v, want -1", dir)
	}

	x, dir = advance(x, dir, 90, 90, 10, 0.1)
	if math.Abs(x-90) > epsilon {
		t.Errorf("advance() x = %v after second tick, want 90", x)
	}
	if dir != 1 {
		t.Errorf("advance() direction = %v after second tick, want 1", dir)
	}
}

func TestAdvance_InvertedBounds(t *testing.T) {
	// callers pass effective bounds; a triangle wave over [50, 100]
	// behaves the same whether configured as (50,100) or (100,50)
	x, dir := advance(95, 1, 50, 100, 10, 1.0)

	if math.Abs(x-95) > epsilon {
		t.Errorf("advance() x = %v, want 95", x)
	}
	if dir != -1 {
		t.Errorf("advance() direction = %v, want -1", dir)
	}
}

func TestNewSimulator_Defaults(t *testing.T) {
	s := NewSimulator()

	if got := s.Read(); got != 0 {
		t.Errorf("Read() = %v, want 0 before start", got)
	}
	if got := s.low.Load(); got != 0 {
		t.Errorf("low = %v, want 0", got)
	}
	if got := s.high.Load(); got != 180 {
		t.Errorf("high = %v, want 180", got)
	}
	if got := s.speed.Load(); got != 10 {
		t.Errorf("speed = %v, want 10", got)
	}
	if s.Running() {
		t.Error("Running() = true, want false before start")
	}
}

func TestConfigure_PartialUpdate(t *testing.T) {
	s := NewSimulator()

	s.Configure(Low(50))

	if got := s.low.Load(); got != 50 {
		t.Errorf("low = %v, want 50", got)
	}
	if got := s.high.Load(); got != 180 {
		t.Errorf("high = %v, want 180 (unchanged)", got)
	}
	if got := s.speed.Load(); got != 10 {
		t.Errorf("speed = %v, want 10 (unchanged)", got)
	}
}

func TestConfigure_SpeedGuard(t *testing.T) {
	tests := []struct {
		name  string
		speed float64
		want  float64
	}{
		{"negative ignored", -5, 10},
		{"zero ignored", 0, 10},
		{"positive applied", 25, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSimulator()
			s.Configure(Speed(tt.speed))

			if got := s.speed.Load(); got != tt.want {
				t.Errorf("speed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigure_BeforeStart(t *testing.T) {
	s := NewSimulator()
	s.Configure(Low(20), High(40), Speed(5))

	// nothing observable until the loop runs
	if got := s.Read(); got != 0 {
		t.Errorf("Read() = %v, want 0 while stopped", got)
	}

	s.Start()
	defer s.Stop()
	time.Sleep(100 * time.Millisecond)

	got := s.Read()
	if got < 20 || got > 40 {
		t.Errorf("Read() = %v, want within [20, 40]", got)
	}
}

func TestStart_AdvancesWithinBounds(t *testing.T) {
	s := NewSimulator()
	// fast speed so the value crosses both bounds several times
	s.Configure(Low(0), High(5), Speed(200))
	s.Start()
	defer s.Stop()

	// let the loop complete its first full iteration before checking
	time.Sleep(30 * time.Millisecond)

	for i := 0; i < 20; i++ {
		got := s.Read()
		if got < 0 || got > 5 {
			t.Fatalf("Read() = %v, want within [0, 5]", got)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStart_Idempotent(t *testing.T) {
	s := NewSimulator()
	s.Configure(Speed(100))
	s.Start()
	s.Start()
	defer s.Stop()

	// a doubled loop would advance at ~200 units/s; a single loop at 100.
	// Generous window: after 300ms expect roughly 30 units, well under the
	// 55 a doubled loop would reach even with scheduler jitter.
	time.Sleep(300 * time.Millisecond)

	got := s.Read()
	if got <= 5 {
		t.Errorf("Read() = %v, want advancement after start", got)
	}
	if got > 55 {
		t.Errorf("Read() = %v, advancement suggests more than one active loop", got)
	}
}

func TestStop_HaltsAdvancement(t *testing.T) {
	s := NewSimulator()
	s.Configure(Speed(100))
	s.Start()
	time.Sleep(50 * time.Millisecond)

	s.Stop()
	// one tick of grace for the loop to observe the cleared flag
	time.Sleep(30 * time.Millisecond)

	first := s.Read()
	time.Sleep(50 * time.Millisecond)
	second := s.Read()

	if first != second {
		t.Errorf("Read() changed after Stop(): %v then %v", first, second)
	}
	if s.Running() {
		t.Error("Running() = true after Stop()")
	}
}

func TestStop_BeforeStartIsSafe(t *testing.T) {
	s := NewSimulator()
	s.Stop() // must not panic
	if s.Running() {
		t.Error("Running() = true, want false")
	}
}

func TestRestart(t *testing.T) {
	s := NewSimulator()
	s.Configure(Speed(100))
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	// immediate restart must not race the old loop
	s.Start()
	defer s.Stop()
	time.Sleep(50 * time.Millisecond)

	if !s.Running() {
		t.Error("Running() = false after restart")
	}
	got := s.Read()
	if got < 0 || got > 180 {
		t.Errorf("Read() = %v, want within [0, 180] after restart", got)
	}
}

func TestConfigure_MidFlightNarrowsBounds(t *testing.T) {
	s := NewSimulator()
	s.Configure(Low(0), High(180), Speed(500))
	s.Start()
	defer s.Stop()

	time.Sleep(50 * time.Millisecond)
	s.Configure(Low(50), High(100))

	// allow the transient correction tick to pass, then the value must
	// oscillate inside the new window without a loop restart
	time.Sleep(50 * time.Millisecond)

	for i := 0; i < 15; i++ {
		got := s.Read()
		if got < 50 || got > 100 {
			t.Fatalf("Read() = %v, want within [50, 100] after reconfigure", got)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestConfigure_ConcurrentWithReads(t *testing.T) {
	s := NewSimulator()
	s.Configure(Speed(300))
	s.Start()
	defer s.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			s.Configure(Low(float64(i%30)), High(float64(100+i%50)), Speed(float64(i+1)))
		}
	}()

	for i := 0; i < 100; i++ {
		_ = s.Read() // must not race (run with -race)
	}
	<-done
}
