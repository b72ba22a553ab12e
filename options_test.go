package gaugeboard

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_Defaults(t *testing.T) {
	board, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if board.Mode() != ModeSimulated {
		t.Errorf("Mode() = %v, want %v", board.Mode(), ModeSimulated)
	}
	if board.Port() != 8080 {
		t.Errorf("Port() = %v, want 8080", board.Port())
	}
	if board.SampleInterval() != time.Second {
		t.Errorf("SampleInterval() = %v, want 1s", board.SampleInterval())
	}
}

func TestWithMode(t *testing.T) {
	tests := []struct {
		name    string
		mode    Mode
		wantErr bool
	}{
		{"simulated", ModeSimulated, false},
		{"static", ModeStatic, false},
		{"unknown", Mode("random"), true},
		{"empty", Mode(""), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(WithMode(tt.mode))
			if (err != nil) != tt.wantErr {
				t.Errorf("New(WithMode(%q)) error = %v, wantErr %v", tt.mode, err, tt.wantErr)
			}
		})
	}
}

func TestWithPort(t *testing.T) {
	tests := []struct {
		name    string
		port    int
		wantErr bool
	}{
		{"valid", 9090, false},
		{"minimum", 1, false},
		{"maximum", 65535, false},
		{"zero", 0, true},
		{"negative", -1, true},
		{"too large", 65536, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board, err := New(WithPort(tt.port))
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(WithPort(%d)) error = %v, wantErr %v", tt.port, err, tt.wantErr)
			}
			if err == nil && board.Port() != tt.port {
				t.Errorf("Port() = %v, want %v", board.Port(), tt.port)
			}
		})
	}
}

func TestWithSampleInterval(t *testing.T) {
	board, err := New(WithSampleInterval(100 * time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if board.SampleInterval() != 100*time.Millisecond {
		t.Errorf("SampleInterval() = %v, want 100ms", board.SampleInterval())
	}

	if _, err := New(WithSampleInterval(0)); err == nil {
		t.Error("New(WithSampleInterval(0)) error = nil, want error")
	}
	if _, err := New(WithSampleInterval(-time.Second)); err == nil {
		t.Error("New(WithSampleInterval(-1s)) error = nil, want error")
	}
}

func TestWithSource_Validation(t *testing.T) {
	if _, err := New(WithSource("", Static(1))); err == nil {
		t.Error("empty source name accepted, want error")
	}
	if _, err := New(WithSource("current", Static(1))); err == nil {
		t.Error("reserved source name accepted, want error")
	}
	if _, err := New(WithSource("rpm", nil)); err == nil {
		t.Error("nil source accepted, want error")
	}
}

func TestNew_DuplicateSourceNames(t *testing.T) {
	_, err := New(
		WithSource("rpm", Static(1)),
		WithSource("rpm", Static(2)),
	)
	if err == nil {
		t.Error("New() error = nil, want duplicate name error")
	}
}

func TestWithSimulatorSpeed(t *testing.T) {
	if _, err := New(WithSimulatorSpeed(25)); err != nil {
		t.Errorf("New(WithSimulatorSpeed(25)) error = %v", err)
	}
	if _, err := New(WithSimulatorSpeed(0)); err == nil {
		t.Error("New(WithSimulatorSpeed(0)) error = nil, want error")
	}
	if _, err := New(WithSimulatorSpeed(-5)); err == nil {
		t.Error("New(WithSimulatorSpeed(-5)) error = nil, want error")
	}
}

func TestWithLogger_Nil(t *testing.T) {
	if _, err := New(WithLogger(nil)); err == nil {
		t.Error("New(WithLogger(nil)) error = nil, want error")
	}
}

func TestWithReadingCallback_NilIsIgnored(t *testing.T) {
	if _, err := New(WithReadingCallback(nil)); err != nil {
		t.Errorf("New(WithReadingCallback(nil)) error = %v, want nil", err)
	}
}
