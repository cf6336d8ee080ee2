//go:build linux

package uinput

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/sys/unix"
)

func TestUserDevLayout(t *testing.T) {
	// name[80] + input_id (4 x u16) + ff_effects_max + 4 x abs[64]
	want := 80 + 8 + 4 + 4*64*4
	if got := binary.Size(userDev{}); got != want {
		t.Fatalf("binary.Size(userDev) = %d, want %d", got, want)
	}
}

func TestInputEventLayout(t *testing.T) {
	want := binary.Size(unix.Timeval{}) + 2 + 2 + 4
	if got := binary.Size(inputEvent{}); got != want {
		t.Fatalf("binary.Size(inputEvent) = %d, want %d", got, want)
	}
}

func TestCreateValidatesName(t *testing.T) {
	if _, err := Create("", "", Setup{}); err == nil {
		t.Fatal("expected error for empty name")
	}
	long := strings.Repeat("x", nameSize)
	if _, err := Create("", long, Setup{}); err == nil {
		t.Fatal("expected error for oversized name")
	}
}

func TestCreateRejectsNonUinputPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-uinput")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatal(err)
	}
	_, err := Create(path, "test device", Setup{Keys: []uint16{KeyA}})
	if err == nil {
		t.Fatal("expected ioctl failure on a regular file")
	}
	if !strings.Contains(err.Error(), "enable event type") {
		t.Fatalf("unexpected error: %v", err)
	}
}
