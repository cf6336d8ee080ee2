package vdev

import (
	"errors"
	"testing"

	"github.com/1broseidon/xseat/internal/platform"
	"github.com/1broseidon/xseat/internal/uinput"
)

type fakeDevice struct {
	name string
	caps platform.Capabilities
}

func (d *fakeDevice) Name() string                                { return d.name }
func (d *fakeDevice) Capabilities() platform.Capabilities         { return d.caps }
func (d *fakeDevice) Emit(evType, code uint16, value int32) error { return nil }
func (d *fakeDevice) Sync() error                                 { return nil }
func (d *fakeDevice) Close() error                                { return nil }

type fakeCreator struct {
	err     error
	created []*fakeDevice
}

func (c *fakeCreator) CreateDevice(name string, caps platform.Capabilities) (platform.VirtualDevice, error) {
	if c.err != nil {
		return nil, c.err
	}
	d := &fakeDevice{name: name, caps: caps}
	c.created = append(c.created, d)
	return d, nil
}

func TestPointerCapabilitiesAxisMax(t *testing.T) {
	tests := []struct {
		w, h         int
		wantX, wantY int32
	}{
		{1920, 1080, 1919, 1079},
		{1, 1, 0, 0},
		{3840, 2160, 3839, 2159},
		{800, 600, 799, 599},
	}
	for _, tt := range tests {
		caps, err := PointerCapabilities(Bounds{Width: tt.w, Height: tt.h})
		if err != nil {
			t.Fatalf("PointerCapabilities(%dx%d): %v", tt.w, tt.h, err)
		}
		gotX, okX := caps.AbsMax(uinput.AbsX)
		gotY, okY := caps.AbsMax(uinput.AbsY)
		if !okX || !okY || gotX != tt.wantX || gotY != tt.wantY {
			t.Errorf("%dx%d: axis max = (%d,%d), want (%d,%d)", tt.w, tt.h, gotX, gotY, tt.wantX, tt.wantY)
		}
	}
}

func TestPointerCapabilitiesRejectsEmptyBounds(t *testing.T) {
	for _, b := range []Bounds{{0, 100}, {100, 0}, {-1, -1}} {
		if _, err := PointerCapabilities(b); err == nil {
			t.Errorf("PointerCapabilities(%v): expected error", b)
		}
	}
}

func TestPointerCapabilitiesButtonsAndWheels(t *testing.T) {
	caps, err := PointerCapabilities(Bounds{Width: 10, Height: 10})
	if err != nil {
		t.Fatal(err)
	}
	want := map[uint16]bool{uinput.BtnLeft: false, uinput.BtnRight: false}
	for _, k := range caps.Keys {
		if _, ok := want[k]; ok {
			want[k] = true
		}
	}
	for k, seen := range want {
		if !seen {
			t.Errorf("button %#x missing", k)
		}
	}
	if len(caps.Rel) != 2 {
		t.Errorf("rel axes = %v, want wheel + hwheel", caps.Rel)
	}
}

func TestKeyboardCapabilitiesCoversKeymapTargets(t *testing.T) {
	caps := KeyboardCapabilities()
	have := make(map[uint16]bool, len(caps.Keys))
	for _, k := range caps.Keys {
		have[k] = true
	}
	for _, k := range []uint16{uinput.KeyA, uinput.Key0, uinput.KeyDot, uinput.KeyLeftShift, uinput.KeyF12, uinput.KeyPageDown} {
		if !have[k] {
			t.Errorf("keyboard capability missing %d", k)
		}
	}
}

func TestFactoryEndToEnd1080p(t *testing.T) {
	creator := &fakeCreator{}
	f := NewFactory(creator, "CoX Mouse Device", "CoX Keyboard Device")

	ptr, err := f.CreatePointer(Bounds{Width: 1920, Height: 1080})
	if err != nil {
		t.Fatal(err)
	}
	if ptr.Name() != "CoX Mouse Device" {
		t.Errorf("pointer name = %q", ptr.Name())
	}
	if max, _ := ptr.Capabilities().AbsMax(uinput.AbsX); max != 1919 {
		t.Errorf("X max = %d, want 1919", max)
	}
	if max, _ := ptr.Capabilities().AbsMax(uinput.AbsY); max != 1079 {
		t.Errorf("Y max = %d, want 1079", max)
	}

	kbd, err := f.CreateKeyboard()
	if err != nil {
		t.Fatal(err)
	}
	if kbd.Name() != "CoX Keyboard Device" {
		t.Errorf("keyboard name = %q", kbd.Name())
	}
}

func TestFactoryWrapsCreationFailure(t *testing.T) {
	f := NewFactory(&fakeCreator{err: errors.New("permission denied")}, "p", "k")

	_, err := f.CreatePointer(Bounds{Width: 10, Height: 10})
	if !platform.IsKind(err, platform.KindDevice) {
		t.Fatalf("CreatePointer error = %v, want device error", err)
	}
	_, err = f.CreateKeyboard()
	if !platform.IsKind(err, platform.KindDevice) {
		t.Fatalf("CreateKeyboard error = %v, want device error", err)
	}
	_, err = f.CreatePointer(Bounds{})
	if !platform.IsKind(err, platform.KindDevice) {
		t.Fatalf("CreatePointer(empty) error = %v, want device error", err)
	}
}
