// Package keys resolves the symbolic key names used in the configuration file
// (e.g. "KEY_LEFTCTRL", "BTN_SIDE") to evdev key codes and back.
//
// Every KEY_* and BTN_* name known to the kernel headers is accepted,
// including aliases such as BTN_LEFT/BTN_MOUSE.
package keys

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/holoplot/go-evdev"
)

// ErrUnknownKey is returned when a key name cannot be resolved
var ErrUnknownKey = errors.New("unknown key")

// Preferred display names where the library picks a less familiar alias.
var displayNames = map[evdev.EvCode]string{
	evdev.BTN_LEFT: "BTN_LEFT",
}

// byCode holds every emittable code with its canonical name. KEY_RESERVED
// and the KEY_CNT sentinel are not real keys.
var byCode = func() map[evdev.EvCode]string {
	m := make(map[evdev.EvCode]string, len(evdev.KEYToString))
	for code, name := range evdev.KEYToString {
		if code == evdev.KEY_RESERVED || code > evdev.KEY_MAX {
			continue
		}
		m[code] = name
	}
	for code, name := range displayNames {
		m[code] = name
	}
	return m
}()

// Lookup resolves a key name to its code. Names are case-insensitive and may
// omit the KEY_ prefix ("leftctrl"). Decimal codes ("275") are accepted when
// they name a known key.
func Lookup(name string) (evdev.EvCode, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty name", ErrUnknownKey)
	}

	if n, err := strconv.ParseUint(trimmed, 10, 16); err == nil {
		code := evdev.EvCode(n)
		if _, ok := byCode[code]; !ok {
			return 0, fmt.Errorf("%w: code %d", ErrUnknownKey, n)
		}
		return code, nil
	}

	upper := strings.ToUpper(trimmed)
	for _, candidate := range []string{upper, "KEY_" + upper} {
		code, ok := evdev.KEYFromString[candidate]
		if !ok {
			continue
		}
		if _, known := byCode[code]; known {
			return code, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownKey, name)
}

// LookupAll resolves a sequence of key names, preserving order
func LookupAll(names []string) ([]evdev.EvCode, error) {
	codes := make([]evdev.EvCode, 0, len(names))
	for _, name := range names {
		code, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// Name returns the symbolic name of a code, or its decimal value when unknown
func Name(code evdev.EvCode) string {
	if name, ok := byCode[code]; ok {
		return name
	}
	return strconv.Itoa(int(code))
}

// Names formats a key sequence as "KEY_LEFTCTRL+KEY_UP"
func Names(codes []evdev.EvCode) string {
	if len(codes) == 0 {
		return "-"
	}
	parts := make([]string, len(codes))
	for i, code := range codes {
		parts[i] = Name(code)
	}
	return strings.Join(parts, "+")
}

// All returns every code Lookup can return, in ascending order
func All() []evdev.EvCode {
	codes := make([]evdev.EvCode, 0, len(byCode))
	for code := range byCode {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
