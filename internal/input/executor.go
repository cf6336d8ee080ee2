// Package input turns high-level pointer and keyboard actions into raw
// event sequences on a pair of virtual devices.
package input

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/1broseidon/xseat/internal/platform"
	"github.com/1broseidon/xseat/internal/uinput"
)

// Sink receives raw events. Events become visible on Sync.
type Sink interface {
	Emit(evType, code uint16, value int32) error
	Sync() error
}

// Scope translates action coordinates into absolute screen coordinates.
type Scope interface {
	Translate(x, y int) (int, int, error)
}

// Offset is a fixed translation, e.g. a cached window origin.
type Offset struct {
	X int
	Y int
}

// Translate adds the offset.
func (o Offset) Translate(x, y int) (int, int, error) {
	return x + o.X, y + o.Y, nil
}

// Delays are the pauses inserted between events. They are timing
// tolerances for the X server and clients, not protocol requirements.
type Delays struct {
	Click          time.Duration `yaml:"click"`
	DoubleClickGap time.Duration `yaml:"double_click_gap"`
	KeyHold        time.Duration `yaml:"key_hold"`
	KeyRelease     time.Duration `yaml:"key_release"`
	Keystroke      time.Duration `yaml:"keystroke"`
	Scroll         time.Duration `yaml:"scroll"`
	ScrollSettle   time.Duration `yaml:"scroll_settle"`
}

// DefaultDelays returns the pacing observed to work with common toolkits.
func DefaultDelays() Delays {
	return Delays{
		Click:          100 * time.Millisecond,
		DoubleClickGap: 100 * time.Millisecond,
		KeyHold:        100 * time.Millisecond,
		KeyRelease:     50 * time.Millisecond,
		Keystroke:      50 * time.Millisecond,
		Scroll:         50 * time.Millisecond,
		ScrollSettle:   100 * time.Millisecond,
	}
}

// Options configures an Executor.
type Options struct {
	// Scope translates coordinates; nil means coordinates are absolute.
	Scope Scope
	// Width and Height bound absolute coordinates to [0, Width-1] x
	// [0, Height-1]. Zero disables the check.
	Width  int
	Height int
	Delays Delays
	// Reserved names a key chord, such as the operator's stop key, that
	// Keypress and Type refuse to produce.
	Reserved []string
	Logger   *slog.Logger
	// Sleep replaces time.Sleep.
	Sleep func(time.Duration)
}

// Point is a coordinate in the executor's input space.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Executor performs pointer and keyboard actions.
type Executor struct {
	pointer  Sink
	keyboard Sink
	scope    Scope
	width    int
	height   int
	delays   Delays
	reserved map[uint16]bool
	logger   *slog.Logger
	sleep    func(time.Duration)
}

// New creates an executor writing to the given pointer and keyboard.
func New(pointer, keyboard Sink, opts Options) *Executor {
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Executor{
		pointer:  pointer,
		keyboard: keyboard,
		scope:    opts.Scope,
		width:    opts.Width,
		height:   opts.Height,
		delays:   opts.Delays,
		reserved: chordSet(opts.Reserved),
		logger:   opts.Logger,
		sleep:    opts.Sleep,
	}
}

// chordSet resolves names to a set of key codes. A chord with a key the
// keyboard cannot produce yields nil.
func chordSet(names []string) map[uint16]bool {
	if len(names) == 0 {
		return nil
	}
	set := make(map[uint16]bool, len(names))
	for _, name := range names {
		code, ok := LookupKey(name)
		if !ok {
			return nil
		}
		set[code] = true
	}
	return set
}

// isReserved reports whether pressing codes together is the reserved chord.
func (e *Executor) isReserved(codes []uint16) bool {
	if len(e.reserved) == 0 {
		return false
	}
	pressed := make(map[uint16]bool, len(codes))
	for _, c := range codes {
		if !e.reserved[c] {
			return false
		}
		pressed[c] = true
	}
	return len(pressed) == len(e.reserved)
}

// SetDelays replaces the pacing for subsequent actions. It must not be called
// concurrently with an action.
func (e *Executor) SetDelays(d Delays) {
	e.delays = d
}

// MoveTo positions the pointer: absolute X, then Y, then one commit.
func (e *Executor) MoveTo(x, y int) error {
	ax, ay, err := e.translate(x, y)
	if err != nil {
		return err
	}
	if err := e.pointer.Emit(uinput.EvAbs, uinput.AbsX, int32(ax)); err != nil {
		return platform.DeviceErr("move", err)
	}
	if err := e.pointer.Emit(uinput.EvAbs, uinput.AbsY, int32(ay)); err != nil {
		return platform.DeviceErr("move", err)
	}
	if err := e.pointer.Sync(); err != nil {
		return platform.DeviceErr("move", err)
	}
	e.logger.Debug("pointer moved", "x", x, "y", y, "abs_x", ax, "abs_y", ay)
	return nil
}

func (e *Executor) translate(x, y int) (int, int, error) {
	ax, ay := x, y
	if e.scope != nil {
		var err error
		if ax, ay, err = e.scope.Translate(x, y); err != nil {
			return 0, 0, err
		}
	}
	if e.width > 0 && (ax < 0 || ax >= e.width) {
		return 0, 0, platform.ActionErr("move", fmt.Errorf("x=%d (absolute %d) outside [0, %d]", x, ax, e.width-1))
	}
	if e.height > 0 && (ay < 0 || ay >= e.height) {
		return 0, 0, platform.ActionErr("move", fmt.Errorf("y=%d (absolute %d) outside [0, %d]", y, ay, e.height-1))
	}
	return ax, ay, nil
}

// ParseButton maps a button name to its code. An empty name is left.
func ParseButton(name string) (uint16, error) {
	switch strings.ToLower(name) {
	case "", "left":
		return uinput.BtnLeft, nil
	case "right":
		return uinput.BtnRight, nil
	case "middle", "wheel":
		return uinput.BtnMiddle, nil
	default:
		return 0, platform.ActionErr("click", fmt.Errorf("invalid button %q", name))
	}
}

// Click moves to (x, y) and presses and releases button.
func (e *Executor) Click(x, y int, button string) error {
	code, err := ParseButton(button)
	if err != nil {
		return err
	}
	if err := e.MoveTo(x, y); err != nil {
		return err
	}
	return e.chord(e.pointer, []uint16{code}, e.delays.Click, 0)
}

// DoubleClick clicks the left button twice at the current position.
func (e *Executor) DoubleClick() error {
	if err := e.chord(e.pointer, []uint16{uinput.BtnLeft}, e.delays.Click, 0); err != nil {
		return err
	}
	e.sleep(e.delays.DoubleClickGap)
	return e.chord(e.pointer, []uint16{uinput.BtnLeft}, e.delays.Click, 0)
}

// Drag presses the left button at the first point, moves through the rest
// and releases at the last one.
func (e *Executor) Drag(path []Point) (err error) {
	if len(path) < 2 {
		return platform.ActionErr("drag", fmt.Errorf("path needs at least 2 points, got %d", len(path)))
	}
	if err := e.MoveTo(path[0].X, path[0].Y); err != nil {
		return err
	}
	if err := e.key(e.pointer, uinput.BtnLeft, 1); err != nil {
		return err
	}
	defer func() {
		if rerr := e.key(e.pointer, uinput.BtnLeft, 0); rerr != nil && err == nil {
			err = rerr
		}
	}()
	e.sleep(e.delays.Click)
	for _, p := range path[1:] {
		if err := e.MoveTo(p.X, p.Y); err != nil {
			return err
		}
		e.sleep(e.delays.Click)
	}
	return nil
}

// Scroll moves to (x, y) and emits wheel deltas. Deltas are inverted to
// match wheel semantics: positive scrollY scrolls down. Zero axes are
// skipped. Deltas are not clamped here.
func (e *Executor) Scroll(x, y, scrollX, scrollY int) error {
	if err := e.MoveTo(x, y); err != nil {
		return err
	}
	if scrollX != 0 {
		if err := e.wheel(uinput.RelHWheel, -scrollX); err != nil {
			return err
		}
		e.sleep(e.delays.Scroll)
	}
	if scrollY != 0 {
		if err := e.wheel(uinput.RelWheel, -scrollY); err != nil {
			return err
		}
		e.sleep(e.delays.Scroll)
	}
	e.sleep(e.delays.ScrollSettle)
	return nil
}

func (e *Executor) wheel(code uint16, delta int) error {
	if err := e.pointer.Emit(uinput.EvRel, code, int32(delta)); err != nil {
		return platform.DeviceErr("scroll", err)
	}
	if err := e.pointer.Sync(); err != nil {
		return platform.DeviceErr("scroll", err)
	}
	return nil
}

// Keypress presses keys in order, holds, and releases them in reverse.
// Unknown names are logged and skipped. Every pressed key is released even
// if a later press fails.
func (e *Executor) Keypress(keys []string) error {
	codes := make([]uint16, 0, len(keys))
	for _, name := range keys {
		code, ok := LookupKey(name)
		if !ok {
			e.logger.Warn("unhandled key", "key", name)
			continue
		}
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return nil
	}
	if e.isReserved(codes) {
		return platform.ActionErr("keypress", fmt.Errorf("%s is reserved for stopping the session", strings.Join(keys, "+")))
	}
	return e.chord(e.keyboard, codes, e.delays.KeyHold, e.delays.KeyRelease)
}

// Type types text one character at a time. Uppercase letters and shifted
// symbols hold shift for that keystroke only. Unmapped characters are
// logged and skipped.
func (e *Executor) Type(text string) error {
	for _, r := range text {
		ks, ok := lookupChar(r)
		if !ok {
			e.logger.Warn("unhandled character", "char", string(r))
			continue
		}
		codes := []uint16{ks.code}
		if ks.shift {
			codes = []uint16{uinput.KeyLeftShift, ks.code}
		}
		if e.isReserved(codes) {
			return platform.ActionErr("type", fmt.Errorf("%q is reserved for stopping the session", string(r)))
		}
		if err := e.chord(e.keyboard, codes, e.delays.Keystroke, 0); err != nil {
			return err
		}
		e.sleep(e.delays.Keystroke)
	}
	return nil
}

// Wait blocks for ms milliseconds. Negative values do not wait.
func (e *Executor) Wait(ms int) {
	if ms <= 0 {
		return
	}
	e.sleep(time.Duration(ms) * time.Millisecond)
}

// chord presses codes in order, sleeps hold, then releases what was pressed
// in reverse order, pausing releaseGap after each release.
func (e *Executor) chord(sink Sink, codes []uint16, hold, releaseGap time.Duration) (err error) {
	pressed := make([]uint16, 0, len(codes))
	defer func() {
		for i := len(pressed) - 1; i >= 0; i-- {
			if rerr := e.key(sink, pressed[i], 0); rerr != nil && err == nil {
				err = rerr
			}
			if releaseGap > 0 {
				e.sleep(releaseGap)
			}
		}
	}()

	for _, code := range codes {
		if err := e.key(sink, code, 1); err != nil {
			return err
		}
		pressed = append(pressed, code)
	}
	e.sleep(hold)
	return nil
}

func (e *Executor) key(sink Sink, code uint16, value int32) error {
	if err := sink.Emit(uinput.EvKey, code, value); err != nil {
		return platform.DeviceErr(fmt.Sprintf("key %d=%d", code, value), err)
	}
	if err := sink.Sync(); err != nil {
		return platform.DeviceErr(fmt.Sprintf("key %d=%d", code, value), err)
	}
	return nil
}
