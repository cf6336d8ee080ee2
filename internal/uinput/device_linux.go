//go:build linux

package uinput

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// DefaultPath is the uinput character device.
const DefaultPath = "/dev/uinput"

// ioctl request numbers from linux/uinput.h.
const (
	uiDevCreate  = 0x5501
	uiDevDestroy = 0x5502
	uiSetEvBit   = 0x40045564
	uiSetKeyBit  = 0x40045565
	uiSetRelBit  = 0x40045566
	uiSetAbsBit  = 0x40045567
)

const (
	nameSize = 80
	absCnt   = maxAbs + 1
	busVirt  = 0x06
)

// userDev mirrors struct uinput_user_dev (legacy setup, accepted by every
// kernel that ships uinput).
type userDev struct {
	Name         [nameSize]byte
	Bustype      uint16
	Vendor       uint16
	Product      uint16
	Version      uint16
	FFEffectsMax uint32
	Absmax       [absCnt]int32
	Absmin       [absCnt]int32
	Absfuzz      [absCnt]int32
	Absflat      [absCnt]int32
}

// inputEvent mirrors struct input_event.
type inputEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

// Device is a created uinput device.
type Device struct {
	mu     sync.Mutex
	file   *os.File
	name   string
	closed bool
}

// Create registers a new virtual device with the given name and capability
// set at path (DefaultPath when empty).
func Create(path, name string, setup Setup) (*Device, error) {
	if path == "" {
		path = DefaultPath
	}
	if name == "" {
		return nil, fmt.Errorf("uinput: device name is required")
	}
	if len(name) >= nameSize {
		return nil, fmt.Errorf("uinput: device name %q exceeds %d bytes", name, nameSize-1)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("uinput: open %s: %w", path, err)
	}

	if err := register(f, name, setup); err != nil {
		f.Close()
		return nil, err
	}

	return &Device{file: f, name: name}, nil
}

func register(f *os.File, name string, caps Setup) error {
	fd := int(f.Fd())

	setBits := func(evType uint16, req uint, codes []uint16, limit uint16) error {
		if len(codes) == 0 {
			return nil
		}
		if err := unix.IoctlSetInt(fd, uiSetEvBit, int(evType)); err != nil {
			return fmt.Errorf("uinput: enable event type %d: %w", evType, err)
		}
		for _, code := range codes {
			if code > limit {
				return fmt.Errorf("uinput: code %#x out of range for event type %d", code, evType)
			}
			if err := unix.IoctlSetInt(fd, req, int(code)); err != nil {
				return fmt.Errorf("uinput: enable code %#x: %w", code, err)
			}
		}
		return nil
	}

	if err := setBits(EvKey, uiSetKeyBit, caps.Keys, maxKey); err != nil {
		return err
	}
	if err := setBits(EvRel, uiSetRelBit, caps.Rel, maxRel); err != nil {
		return err
	}
	absCodes := make([]uint16, 0, len(caps.Abs))
	for _, a := range caps.Abs {
		absCodes = append(absCodes, a.Code)
	}
	if err := setBits(EvAbs, uiSetAbsBit, absCodes, maxAbs); err != nil {
		return err
	}

	dev := userDev{
		Bustype: busVirt,
		Vendor:  0x1,
		Product: 0x1,
		Version: 1,
	}
	copy(dev.Name[:], name)
	for _, a := range caps.Abs {
		dev.Absmin[a.Code] = a.Min
		dev.Absmax[a.Code] = a.Max
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.NativeEndian, &dev); err != nil {
		return fmt.Errorf("uinput: encode device record: %w", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("uinput: write device record: %w", err)
	}
	if err := unix.IoctlSetInt(fd, uiDevCreate, 0); err != nil {
		return fmt.Errorf("uinput: create device %q: %w", name, err)
	}
	return nil
}

// Name returns the device name as registered with the kernel.
func (d *Device) Name() string { return d.name }

// Emit writes a single input event. Events are not delivered to clients
// until Sync commits the frame.
func (d *Device) Emit(evType, code uint16, value int32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return fmt.Errorf("uinput: device %q is closed", d.name)
	}
	ev := inputEvent{Type: evType, Code: code, Value: value}
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.NativeEndian, &ev); err != nil {
		return fmt.Errorf("uinput: encode event: %w", err)
	}
	if _, err := d.file.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("uinput: write event to %q: %w", d.name, err)
	}
	return nil
}

// Sync commits the pending event frame.
func (d *Device) Sync() error {
	return d.Emit(EvSyn, SynReport, 0)
}

// Close destroys the device. Calling Close more than once is safe.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	destroyErr := unix.IoctlSetInt(int(d.file.Fd()), uiDevDestroy, 0)
	closeErr := d.file.Close()
	if destroyErr != nil {
		return fmt.Errorf("uinput: destroy device %q: %w", d.name, destroyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("uinput: close device %q: %w", d.name, closeErr)
	}
	return nil
}
