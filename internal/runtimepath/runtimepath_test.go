package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDir_UsesXDGRuntimeDirWhenSet(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got != td {
		t.Fatalf("Dir() = %q, want %q", got, td)
	}
}

func TestDir_FallbacksWhenXDGRuntimeDirMissing(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}

	wantRun := fmt.Sprintf("/run/user/%d", os.Getuid())
	wantTmp := fmt.Sprintf("/tmp/xseat-runtime-%d", os.Getuid())
	if got != wantRun && got != wantTmp {
		t.Fatalf("Dir() = %q, want %q or %q", got, wantRun, wantTmp)
	}
}

func TestSessionStatePath(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	tests := []struct {
		label string
		want  string
	}{
		{"CoX", "xseat-CoX.json"},
		{"my seat/1", "xseat-my_seat_1.json"},
		{"agent-2_b", "xseat-agent-2_b.json"},
	}
	for _, tt := range tests {
		got, err := SessionStatePath(tt.label)
		if err != nil {
			t.Fatalf("SessionStatePath(%q) error: %v", tt.label, err)
		}
		if got != filepath.Join(td, tt.want) {
			t.Errorf("SessionStatePath(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestSessionStateLifecycle(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	got, err := ReadSessionState("CoX")
	if err != nil || got != nil {
		t.Fatalf("ReadSessionState before write = %v, %v; want nil, nil", got, err)
	}

	state := SessionState{
		PID:          os.Getpid(),
		Seat:         "CoX",
		PointerName:  "CoX Mouse Device",
		KeyboardName: "CoX Keyboard Device",
		Window:       0x2c00001,
		ForcedAbove:  true,
		StartedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if err := WriteSessionState(state); err != nil {
		t.Fatalf("WriteSessionState: %v", err)
	}

	got, err = ReadSessionState("CoX")
	if err != nil {
		t.Fatalf("ReadSessionState: %v", err)
	}
	if got == nil || !got.StartedAt.Equal(state.StartedAt) {
		t.Fatalf("ReadSessionState = %+v, want %+v", got, state)
	}
	got.StartedAt = state.StartedAt
	if *got != state {
		t.Fatalf("ReadSessionState = %+v, want %+v", got, state)
	}
	if !got.Alive() {
		t.Error("own process should be alive")
	}

	if err := RemoveSessionState("CoX"); err != nil {
		t.Fatalf("RemoveSessionState: %v", err)
	}
	if err := RemoveSessionState("CoX"); err != nil {
		t.Fatalf("second RemoveSessionState: %v", err)
	}
	if got, _ := ReadSessionState("CoX"); got != nil {
		t.Fatalf("state still present: %+v", got)
	}
}

func TestAlive_InvalidPID(t *testing.T) {
	if (SessionState{PID: 0}).Alive() {
		t.Error("pid 0 reported alive")
	}
}
