//go:build !linux

package uinput

const DefaultPath = ""

// Device is unavailable outside Linux.
type Device struct{}

// Create always fails on this platform.
func Create(path, name string, setup Setup) (*Device, error) {
	return nil, ErrUnsupported
}

func (d *Device) Name() string                                { return "" }
func (d *Device) Emit(evType, code uint16, value int32) error { return ErrUnsupported }
func (d *Device) Sync() error                                 { return ErrUnsupported }
func (d *Device) Close() error                                { return nil }
