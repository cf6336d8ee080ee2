// Package vdev declares the capability sets of the session's virtual pointer
// and keyboard and creates them through a platform backend.
package vdev

import (
	"fmt"

	"github.com/1broseidon/xseat/internal/platform"
	"github.com/1broseidon/xseat/internal/uinput"
)

// Bounds is the addressable area of the pointer, normally the screen size.
type Bounds struct {
	Width  int
	Height int
}

// Creator is the slice of platform.Backend the factory needs.
type Creator interface {
	CreateDevice(name string, caps platform.Capabilities) (platform.VirtualDevice, error)
}

// Factory creates the session's virtual devices.
type Factory struct {
	creator      Creator
	pointerName  string
	keyboardName string
}

// NewFactory returns a factory registering devices under the given names.
func NewFactory(creator Creator, pointerName, keyboardName string) *Factory {
	return &Factory{
		creator:      creator,
		pointerName:  pointerName,
		keyboardName: keyboardName,
	}
}

// CreatePointer registers an absolute pointer covering bounds.
func (f *Factory) CreatePointer(b Bounds) (platform.VirtualDevice, error) {
	caps, err := PointerCapabilities(b)
	if err != nil {
		return nil, platform.DeviceErr("create pointer", err)
	}
	dev, err := f.creator.CreateDevice(f.pointerName, caps)
	if err != nil {
		return nil, platform.DeviceErr("create pointer "+f.pointerName, err)
	}
	return dev, nil
}

// CreateKeyboard registers the keyboard.
func (f *Factory) CreateKeyboard() (platform.VirtualDevice, error) {
	dev, err := f.creator.CreateDevice(f.keyboardName, KeyboardCapabilities())
	if err != nil {
		return nil, platform.DeviceErr("create keyboard "+f.keyboardName, err)
	}
	return dev, nil
}

// PointerCapabilities declares absolute X/Y over [0, w-1] x [0, h-1],
// left/right/middle buttons and both wheels.
func PointerCapabilities(b Bounds) (platform.Capabilities, error) {
	if b.Width <= 0 || b.Height <= 0 {
		return platform.Capabilities{}, fmt.Errorf("invalid pointer bounds %dx%d", b.Width, b.Height)
	}
	return platform.Capabilities{
		Keys: []uint16{uinput.BtnLeft, uinput.BtnRight, uinput.BtnMiddle},
		Rel:  []uint16{uinput.RelWheel, uinput.RelHWheel},
		Abs: []platform.AbsAxis{
			{Code: uinput.AbsX, Min: 0, Max: int32(b.Width - 1)},
			{Code: uinput.AbsY, Min: 0, Max: int32(b.Height - 1)},
		},
	}, nil
}

// KeyboardCapabilities declares letters, digits, punctuation, modifiers,
// navigation and F1-F12.
func KeyboardCapabilities() platform.Capabilities {
	keys := make([]uint16, len(keyboardKeys))
	copy(keys, keyboardKeys)
	return platform.Capabilities{Keys: keys}
}

var keyboardKeys = []uint16{
	uinput.KeyA, uinput.KeyB, uinput.KeyC, uinput.KeyD, uinput.KeyE, uinput.KeyF,
	uinput.KeyG, uinput.KeyH, uinput.KeyI, uinput.KeyJ, uinput.KeyK, uinput.KeyL,
	uinput.KeyM, uinput.KeyN, uinput.KeyO, uinput.KeyP, uinput.KeyQ, uinput.KeyR,
	uinput.KeyS, uinput.KeyT, uinput.KeyU, uinput.KeyV, uinput.KeyW, uinput.KeyX,
	uinput.KeyY, uinput.KeyZ,

	uinput.Key1, uinput.Key2, uinput.Key3, uinput.Key4, uinput.Key5,
	uinput.Key6, uinput.Key7, uinput.Key8, uinput.Key9, uinput.Key0,

	uinput.KeyMinus, uinput.KeyEqual, uinput.KeyLeftBrace, uinput.KeyRightBrace,
	uinput.KeySemicolon, uinput.KeyApostrophe, uinput.KeyGrave, uinput.KeyBackslash,
	uinput.KeyComma, uinput.KeyDot, uinput.KeySlash,

	uinput.KeyLeftShift, uinput.KeyRightShift, uinput.KeyLeftCtrl, uinput.KeyRightCtrl,
	uinput.KeyLeftAlt, uinput.KeyRightAlt, uinput.KeyLeftMeta, uinput.KeyRightMeta,
	uinput.KeyCapsLock,

	uinput.KeyEsc, uinput.KeyTab, uinput.KeyEnter, uinput.KeySpace, uinput.KeyBackspace,
	uinput.KeyInsert, uinput.KeyDelete, uinput.KeyHome, uinput.KeyEnd,
	uinput.KeyPageUp, uinput.KeyPageDown,
	uinput.KeyUp, uinput.KeyDown, uinput.KeyLeft, uinput.KeyRight,

	uinput.KeyF1, uinput.KeyF2, uinput.KeyF3, uinput.KeyF4, uinput.KeyF5, uinput.KeyF6,
	uinput.KeyF7, uinput.KeyF8, uinput.KeyF9, uinput.KeyF10, uinput.KeyF11, uinput.KeyF12,
}
