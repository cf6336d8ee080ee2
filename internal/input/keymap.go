package input

import (
	"strings"

	"github.com/1broseidon/xseat/internal/uinput"
)

var namedKeys = map[string]uint16{
	"ctrl":       uinput.KeyLeftCtrl,
	"control":    uinput.KeyLeftCtrl,
	"alt":        uinput.KeyLeftAlt,
	"shift":      uinput.KeyLeftShift,
	"super":      uinput.KeyLeftMeta,
	"meta":       uinput.KeyLeftMeta,
	"win":        uinput.KeyLeftMeta,
	"cmd":        uinput.KeyLeftMeta,
	"tab":        uinput.KeyTab,
	"enter":      uinput.KeyEnter,
	"return":     uinput.KeyEnter,
	"space":      uinput.KeySpace,
	"backspace":  uinput.KeyBackspace,
	"escape":     uinput.KeyEsc,
	"esc":        uinput.KeyEsc,
	"delete":     uinput.KeyDelete,
	"del":        uinput.KeyDelete,
	"insert":     uinput.KeyInsert,
	"home":       uinput.KeyHome,
	"end":        uinput.KeyEnd,
	"pageup":     uinput.KeyPageUp,
	"pagedown":   uinput.KeyPageDown,
	"up":         uinput.KeyUp,
	"arrowup":    uinput.KeyUp,
	"down":       uinput.KeyDown,
	"arrowdown":  uinput.KeyDown,
	"left":       uinput.KeyLeft,
	"arrowleft":  uinput.KeyLeft,
	"right":      uinput.KeyRight,
	"arrowright": uinput.KeyRight,
	"capslock":   uinput.KeyCapsLock,
	"f1":         uinput.KeyF1,
	"f2":         uinput.KeyF2,
	"f3":         uinput.KeyF3,
	"f4":         uinput.KeyF4,
	"f5":         uinput.KeyF5,
	"f6":         uinput.KeyF6,
	"f7":         uinput.KeyF7,
	"f8":         uinput.KeyF8,
	"f9":         uinput.KeyF9,
	"f10":        uinput.KeyF10,
	"f11":        uinput.KeyF11,
	"f12":        uinput.KeyF12,
}

// plainKeys maps unshifted US-layout characters.
var plainKeys = map[rune]uint16{
	'a': uinput.KeyA, 'b': uinput.KeyB, 'c': uinput.KeyC, 'd': uinput.KeyD,
	'e': uinput.KeyE, 'f': uinput.KeyF, 'g': uinput.KeyG, 'h': uinput.KeyH,
	'i': uinput.KeyI, 'j': uinput.KeyJ, 'k': uinput.KeyK, 'l': uinput.KeyL,
	'm': uinput.KeyM, 'n': uinput.KeyN, 'o': uinput.KeyO, 'p': uinput.KeyP,
	'q': uinput.KeyQ, 'r': uinput.KeyR, 's': uinput.KeyS, 't': uinput.KeyT,
	'u': uinput.KeyU, 'v': uinput.KeyV, 'w': uinput.KeyW, 'x': uinput.KeyX,
	'y': uinput.KeyY, 'z': uinput.KeyZ,

	'1': uinput.Key1, '2': uinput.Key2, '3': uinput.Key3, '4': uinput.Key4,
	'5': uinput.Key5, '6': uinput.Key6, '7': uinput.Key7, '8': uinput.Key8,
	'9': uinput.Key9, '0': uinput.Key0,

	'.': uinput.KeyDot, ',': uinput.KeyComma, ';': uinput.KeySemicolon,
	'\'': uinput.KeyApostrophe, '[': uinput.KeyLeftBrace, ']': uinput.KeyRightBrace,
	'\\': uinput.KeyBackslash, '-': uinput.KeyMinus, '=': uinput.KeyEqual,
	'/': uinput.KeySlash, '`': uinput.KeyGrave,

	' ':  uinput.KeySpace,
	'\t': uinput.KeyTab,
	'\n': uinput.KeyEnter,
}

// shiftedKeys maps characters typed with shift on a US layout.
var shiftedKeys = map[rune]uint16{
	'!': uinput.Key1, '@': uinput.Key2, '#': uinput.Key3, '$': uinput.Key4,
	'%': uinput.Key5, '^': uinput.Key6, '&': uinput.Key7, '*': uinput.Key8,
	'(': uinput.Key9, ')': uinput.Key0,
	'_': uinput.KeyMinus, '+': uinput.KeyEqual, '{': uinput.KeyLeftBrace,
	'}': uinput.KeyRightBrace, '|': uinput.KeyBackslash, ':': uinput.KeySemicolon,
	'"': uinput.KeyApostrophe, '<': uinput.KeyComma, '>': uinput.KeyDot,
	'?': uinput.KeySlash, '~': uinput.KeyGrave,
}

// LookupKey resolves a key name such as "ctrl", "pagedown", "f5", "a" or
// "/" to a key code. Lookup is case-insensitive.
func LookupKey(name string) (uint16, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if code, ok := namedKeys[name]; ok {
		return code, true
	}
	if r := []rune(name); len(r) == 1 && r[0] != ' ' && r[0] != '\t' && r[0] != '\n' {
		code, ok := plainKeys[r[0]]
		return code, ok
	}
	return 0, false
}

type keystroke struct {
	code  uint16
	shift bool
}

func lookupChar(r rune) (keystroke, bool) {
	if code, ok := plainKeys[r]; ok {
		return keystroke{code: code}, true
	}
	if r >= 'A' && r <= 'Z' {
		return keystroke{code: plainKeys[r-'A'+'a'], shift: true}, true
	}
	if code, ok := shiftedKeys[r]; ok {
		return keystroke{code: code, shift: true}, true
	}
	return keystroke{}, false
}
