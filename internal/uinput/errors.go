package uinput

import "errors"

// ErrUnsupported is returned where the kernel uinput interface does not exist.
var ErrUnsupported = errors.New("uinput: virtual input devices require Linux")
