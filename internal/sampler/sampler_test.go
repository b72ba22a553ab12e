package sampler

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSampler_EmitsReadings(t *testing.T) {
	sources := []SourceInfo{
		{Name: "current", Read: func() float64 { return 42 }},
		{Name: "rpm", Read: func() float64 { return 900 }},
	}

	s := New(sources, 50*time.Millisecond, testLogger())
	s.Start(context.Background())
	defer s.Stop()

	got := make(map[string]float64)
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case r, ok := <-s.Results():
			if !ok {
				t.Fatal("results channel closed before all sources were sampled")
			}
			if r.Error != nil {
				t.Fatalf("Reading.Error = %v, want nil", r.Error)
			}
			got[r.Name] = r.Value
		case <-timeout:
			t.Fatalf("timed out, sampled %d of 2 sources", len(got))
		}
	}

	if got["current"] != 42 {
		t.Errorf("current = %v, want 42", got["current"])
	}
	if got["rpm"] != 900 {
		t.Errorf("rpm = %v, want 900", got["rpm"])
	}
}

func TestSampler_SamplesImmediatelyOnStart(t *testing.T) {
	sources := []SourceInfo{
		{Name: "current", Read: func() float64 { return 1 }},
	}

	// long interval: the only prompt reading is the immediate one
	s := New(sources, time.Hour, testLogger())
	s.Start(context.Background())
	defer s.Stop()

	select {
	case r := <-s.Results():
		if r.Name != "current" {
			t.Errorf("Reading.Name = %v, want current", r.Name)
		}
	case <-time.After(time.Second):
		t.Fatal("no immediate sample on start")
	}
}

func TestSampler_RepeatsOnInterval(t *testing.T) {
	sources := []SourceInfo{
		{Name: "current", Read: func() float64 { return 1 }},
	}

	s := New(sources, 20*time.Millisecond, testLogger())
	s.Start(context.Background())
	defer s.Stop()

	count := 0
	timeout := time.After(2 * time.Second)
	for count < 3 {
		select {
		case <-s.Results():
			count++
		case <-timeout:
			t.Fatalf("got %d readings, want at least 3", count)
		}
	}
}

func TestSampler_RecoversFromSourcePanic(t *testing.T) {
	sources := []SourceInfo{
		{Name: "bad", Read: func() float64 { panic("boom") }},
		{Name: "good", Read: func() float64 { return 7 }},
	}

	s := New(sources, time.Hour, testLogger())
	s.Start(context.Background())
	defer s.Stop()

	var bad, good *Reading
	timeout := time.After(2 * time.Second)
	for bad == nil || good == nil {
		select {
		case r := <-s.Results():
			switch r.Name {
			case "bad":
				bad = &r
			case "good":
				good = &r
			}
		case <-timeout:
			t.Fatal("timed out waiting for readings")
		}
	}

	if bad.Error == nil {
		t.Fatal("panicking source Reading.Error = nil, want error")
	}
	if !strings.Contains(bad.Error.Error(), "correlation_id") {
		t.Errorf("Reading.Error = %q, want correlation_id in message", bad.Error)
	}
	if good.Error != nil {
		t.Errorf("healthy source Reading.Error = %v, want nil", good.Error)
	}
	if good.Value != 7 {
		t.Errorf("healthy source Value = %v, want 7", good.Value)
	}
}

func TestSampler_StopClosesResults(t *testing.T) {
	sources := []SourceInfo{
		{Name: "current", Read: func() float64 { return 1 }},
	}

	s := New(sources, 20*time.Millisecond, testLogger())
	s.Start(context.Background())
	s.Stop()

	// drain until closed
	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-s.Results():
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("results channel not closed after Stop")
		}
	}
}

func TestSampler_StopBeforeStart(t *testing.T) {
	s := New(nil, 20*time.Millisecond, testLogger())
	s.Stop()

	// Start after Stop is a no-op; channel must already be closed
	s.Start(context.Background())
	if _, ok := <-s.Results(); ok {
		t.Error("received a reading after Stop-then-Start, want closed channel")
	}
}

func TestSampler_StopIsIdempotent(t *testing.T) {
	s := New([]SourceInfo{{Name: "current", Read: func() float64 { return 1 }}}, 20*time.Millisecond, testLogger())
	s.Start(context.Background())
	s.Stop()
	s.Stop()
}

func TestSampler_ContextCancellationStopsSampling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := New([]SourceInfo{{Name: "current", Read: func() float64 { return 1 }}}, 10*time.Millisecond, testLogger())
	s.Start(ctx)
	cancel()

	// channel closes once the loop observes cancellation
	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-s.Results():
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("results channel not closed after context cancellation")
		}
	}
}
