// Package session runs the capture-and-act lifecycle: it isolates a pair of
// virtual devices on a private seat, keeps the target window on top, and
// exposes pointer, keyboard and screenshot actions until it is closed.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/1broseidon/xseat/internal/capture"
	"github.com/1broseidon/xseat/internal/input"
	"github.com/1broseidon/xseat/internal/platform"
	"github.com/1broseidon/xseat/internal/seat"
	"github.com/1broseidon/xseat/internal/vdev"
	"github.com/1broseidon/xseat/internal/windowstate"
)

// ErrClosed is returned by actions on a closed session.
var ErrClosed = errors.New("session is closed")

const (
	DefaultSeatLabel           = "CoX"
	DefaultPointerName         = "CoX Mouse Device"
	DefaultKeyboardName        = "CoX Keyboard Device"
	DefaultTeardownSettleDelay = 100 * time.Millisecond
)

// Options configures a session.
type Options struct {
	// Window is the target window; zero drives the whole desktop.
	Window platform.WindowID

	SeatLabel    string
	PointerName  string
	KeyboardName string

	Seat                seat.Config
	TeardownSettleDelay time.Duration
	Delays              input.Delays
	Capture             capture.Options
	// ReservedKeys is a chord the agent may not press, such as the stop key.
	ReservedKeys []string

	// AlwaysOnTop keeps the target window above others while the session
	// is open.
	AlwaysOnTop bool
	// FocusOnEnter activates the target window after it is raised.
	FocusOnEnter bool

	Logger *slog.Logger
	// Sleep replaces time.Sleep for every pause the session takes.
	Sleep func(time.Duration)
}

func (o *Options) applyDefaults() {
	if o.SeatLabel == "" {
		o.SeatLabel = DefaultSeatLabel
	}
	if o.PointerName == "" {
		o.PointerName = DefaultPointerName
	}
	if o.KeyboardName == "" {
		o.KeyboardName = DefaultKeyboardName
	}
	if o.TeardownSettleDelay <= 0 {
		o.TeardownSettleDelay = DefaultTeardownSettleDelay
	}
	if o.Delays == (input.Delays{}) {
		o.Delays = input.DefaultDelays()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Sleep == nil {
		o.Sleep = time.Sleep
	}
	if o.Seat.Logger == nil {
		o.Seat.Logger = o.Logger
	}
	if o.Seat.Sleep == nil {
		o.Seat.Sleep = o.Sleep
	}
}

// Session is an open capture-and-act session. Its methods are safe for
// concurrent use; actions are serialized.
type Session struct {
	mu sync.Mutex

	backend platform.Backend
	opts    Options
	logger  *slog.Logger

	window platform.Rect // geometry at Open, windowed mode only

	guard    *windowstate.Guard
	pointer  platform.VirtualDevice
	keyboard platform.VirtualDevice
	seats    *seat.Manager
	seat     *seat.Seat
	scope    *WindowScope
	exec     *input.Executor

	closed bool
}

// Open performs the enter sequence. On failure everything created so far is
// torn down before the error is returned.
func Open(ctx context.Context, backend platform.Backend, opts Options) (*Session, error) {
	opts.applyDefaults()
	s := &Session{
		backend: backend,
		opts:    opts,
		logger:  opts.Logger.With("window", fmt.Sprintf("%#x", uint32(opts.Window))),
		seats:   seat.NewManager(backend, opts.Seat),
	}

	if err := s.enter(ctx); err != nil {
		if cerr := s.teardown(); cerr != nil {
			s.logger.Warn("cleanup after failed start", "error", cerr)
		}
		s.closed = true
		return nil, err
	}
	return s, nil
}

func (s *Session) enter(ctx context.Context) error {
	screen, err := s.backend.Resolution()
	if err != nil {
		return platform.ProbeErr("resolution", err)
	}
	s.window = platform.Rect{Width: screen.Width, Height: screen.Height}

	if s.opts.Window != 0 {
		geom, err := s.backend.WindowGeometry(s.opts.Window)
		if err != nil {
			return platform.ProbeErr(fmt.Sprintf("geometry of window %#x", uint32(s.opts.Window)), err)
		}
		s.window = geom
	}
	s.scope = &WindowScope{backend: s.backend, window: s.opts.Window, scale: 1}

	if err := s.checkDevicesFree(); err != nil {
		return err
	}

	if s.opts.Window != 0 && s.opts.AlwaysOnTop {
		s.guard = windowstate.NewGuard(s.backend, s.opts.Window)
		if err := s.guard.Enter(); err != nil {
			return err
		}
		s.logger.Debug("window forced above", "was_above", s.guard.WasAbove())
	}
	if s.opts.Window != 0 && s.opts.FocusOnEnter {
		if err := s.backend.ActivateWindow(s.opts.Window); err != nil {
			s.logger.Warn("failed to activate window", "error", err)
		}
	}

	factory := vdev.NewFactory(s.backend, s.opts.PointerName, s.opts.KeyboardName)
	if s.pointer, err = factory.CreatePointer(vdev.Bounds{Width: screen.Width, Height: screen.Height}); err != nil {
		return err
	}
	if s.keyboard, err = factory.CreateKeyboard(); err != nil {
		return err
	}

	pointerID, err := s.seats.WaitDeviceID(ctx, s.opts.PointerName, true)
	if err != nil {
		return platform.DeviceErr("discover pointer", err)
	}
	keyboardID, err := s.seats.WaitDeviceID(ctx, s.opts.KeyboardName, true)
	if err != nil {
		return platform.DeviceErr("discover keyboard", err)
	}

	if s.seat, err = s.seats.Create(ctx, s.opts.SeatLabel); err != nil {
		return err
	}
	if err := s.seats.Attach(pointerID, s.seat.PointerID); err != nil {
		return err
	}
	if err := s.seats.Attach(keyboardID, s.seat.KeyboardID); err != nil {
		return err
	}

	s.exec = input.New(s.pointer, s.keyboard, input.Options{
		Scope:    s.scope,
		Width:    screen.Width,
		Height:   screen.Height,
		Delays:   s.opts.Delays,
		Reserved: s.opts.ReservedKeys,
		Logger:   s.logger,
		Sleep:    s.opts.Sleep,
	})

	s.logger.Info("session started",
		"seat", s.seat.Label,
		"pointer_id", pointerID,
		"keyboard_id", keyboardID,
		"screen", fmt.Sprintf("%dx%d", screen.Width, screen.Height))
	return nil
}

// checkDevicesFree refuses to start when a device with one of our names is
// already enumerated, which means another session owns it.
func (s *Session) checkDevicesFree() error {
	devices, err := s.backend.ListInputDevices()
	if err != nil {
		return platform.DeviceErr("list input devices", err)
	}
	for _, d := range devices {
		if d.Name == s.opts.PointerName || d.Name == s.opts.KeyboardName {
			return platform.DeviceErr("create", fmt.Errorf("device %q already exists (id %d); another session may be running", d.Name, d.ID))
		}
	}
	return nil
}

// Close runs the exit sequence: close both devices, let the server settle,
// remove the seat, restore the window. Every step is attempted; the first
// error is returned and the rest are logged. Closing twice is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.teardown()
	s.logger.Info("session closed")
	return err
}

func (s *Session) teardown() error {
	var first error
	record := func(step string, err error) {
		if err == nil {
			return
		}
		if first == nil {
			first = err
			return
		}
		s.logger.Warn("teardown step failed", "step", step, "error", err)
	}

	closedAny := false
	if s.pointer != nil {
		record("close pointer", platform.DeviceErr("close pointer", s.pointer.Close()))
		closedAny = true
	}
	if s.keyboard != nil {
		record("close keyboard", platform.DeviceErr("close keyboard", s.keyboard.Close()))
		closedAny = true
	}
	if closedAny {
		s.opts.Sleep(s.opts.TeardownSettleDelay)
	}
	if s.seat != nil {
		record("remove seat", s.seats.Remove(s.seat))
	}
	if s.guard != nil {
		record("restore window", s.guard.Exit())
	}
	return first
}

// ForcedAbove reports whether the session turned always-on-top on for a
// window that did not have it, so a crash leaves it to be cleared.
func (s *Session) ForcedAbove() bool {
	return s.guard != nil && s.guard.State() == windowstate.Forced && !s.guard.WasAbove()
}

// Window returns the target window, zero in full-desktop mode.
func (s *Session) Window() platform.WindowID { return s.opts.Window }

// Size is the display size to advertise to a model: the target window size
// (or the screen), reduced by the screenshot size bound when one is set.
func (s *Session) Size() platform.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, h, _ := capture.FitSize(s.window.Width, s.window.Height, s.opts.Capture.MaxWidth, s.opts.Capture.MaxHeight)
	return platform.Size{Width: w, Height: h}
}

// Screenshot captures the display and crops it to the target window's
// current geometry. The scale of the result becomes the scale applied to
// subsequent action coordinates.
func (s *Session) Screenshot() (*capture.Shot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	full, err := s.backend.Capture()
	if err != nil {
		return nil, platform.ProbeErr("capture", err)
	}
	region := platform.Rect{Width: full.Bounds().Dx(), Height: full.Bounds().Dy()}
	if s.opts.Window != 0 {
		if region, err = s.backend.WindowGeometry(s.opts.Window); err != nil {
			return nil, platform.ProbeErr(fmt.Sprintf("geometry of window %#x", uint32(s.opts.Window)), err)
		}
	}

	shot, err := capture.Process(full, region, s.opts.Capture)
	if err != nil {
		return nil, platform.ProbeErr("screenshot", err)
	}
	s.scope.SetScale(shot.Scale)
	s.logger.Debug("screenshot", "region", shot.Region, "size", fmt.Sprintf("%dx%d", shot.Width, shot.Height), "bytes", len(shot.Data))
	return shot, nil
}

// SetDelays changes the pacing of later actions. An action in progress
// finishes with the old pacing.
func (s *Session) SetDelays(d input.Delays) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts.Delays = d
	if s.exec != nil {
		s.exec.SetDelays(d)
	}
}

// SetCapture changes screenshot post-processing. The new size bound takes
// effect, for coordinates too, from the next screenshot.
func (s *Session) SetCapture(o capture.Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts.Capture = o
}

func (s *Session) do(fn func(*input.Executor) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return fn(s.exec)
}

// MoveTo moves the pointer to window-relative (x, y).
func (s *Session) MoveTo(x, y int) error {
	return s.do(func(e *input.Executor) error { return e.MoveTo(x, y) })
}

// Click clicks button at window-relative (x, y).
func (s *Session) Click(x, y int, button string) error {
	return s.do(func(e *input.Executor) error { return e.Click(x, y, button) })
}

// DoubleClick double-clicks the left button at the current position.
func (s *Session) DoubleClick() error {
	return s.do(func(e *input.Executor) error { return e.DoubleClick() })
}

// Drag drags the left button along path.
func (s *Session) Drag(path []input.Point) error {
	return s.do(func(e *input.Executor) error { return e.Drag(path) })
}

// Scroll scrolls at window-relative (x, y).
func (s *Session) Scroll(x, y, scrollX, scrollY int) error {
	return s.do(func(e *input.Executor) error { return e.Scroll(x, y, scrollX, scrollY) })
}

// Keypress presses a key combination.
func (s *Session) Keypress(keys []string) error {
	return s.do(func(e *input.Executor) error { return e.Keypress(keys) })
}

// Type types text.
func (s *Session) Type(text string) error {
	return s.do(func(e *input.Executor) error { return e.Type(text) })
}

// Wait pauses for ms milliseconds.
func (s *Session) Wait(ms int) error {
	return s.do(func(e *input.Executor) error {
		e.Wait(ms)
		return nil
	})
}

// WindowScope maps action coordinates, given in the pixel space of the last
// screenshot, to absolute screen coordinates. The window origin is
// re-queried on every translation so a moved window is tracked.
type WindowScope struct {
	mu      sync.Mutex
	backend interface {
		WindowGeometry(platform.WindowID) (platform.Rect, error)
	}
	window platform.WindowID
	scale  float64
}

// SetScale sets the screenshot-to-screen factor.
func (w *WindowScope) SetScale(scale float64) {
	if scale <= 0 {
		scale = 1
	}
	w.mu.Lock()
	w.scale = scale
	w.mu.Unlock()
}

// Translate implements input.Scope.
func (w *WindowScope) Translate(x, y int) (int, int, error) {
	w.mu.Lock()
	scale := w.scale
	w.mu.Unlock()

	sx := int(math.Round(float64(x) * scale))
	sy := int(math.Round(float64(y) * scale))
	if w.window == 0 {
		return sx, sy, nil
	}
	geom, err := w.backend.WindowGeometry(w.window)
	if err != nil {
		return 0, 0, platform.ProbeErr(fmt.Sprintf("geometry of window %#x", uint32(w.window)), err)
	}
	return geom.X + sx, geom.Y + sy, nil
}
