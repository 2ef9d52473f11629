// Package gesture implements the per-device gesture state machine: it turns
// button-held pointer motion into clicks, directional swipes or scroll ticks.
package gesture

import (
	"github.com/holoplot/go-evdev"
)

// Template is the immutable configuration of one gesture button
type Template struct {
	Button evdev.EvCode
	Delta  int32
	Scroll bool
	Freeze bool

	Click      []evdev.EvCode
	SwipeUp    []evdev.EvCode
	SwipeDown  []evdev.EvCode
	SwipeLeft  []evdev.EvCode
	SwipeRight []evdev.EvCode
}

// Button is a Template plus the live state of one press/release cycle.
// A Button belongs to exactly one device and is only touched by that
// device's goroutine.
type Button struct {
	Template

	Pressed bool
	DeltaX  int32
	DeltaY  int32
	// Moved latches once either accumulator exceeds Delta and stays set
	// until the button is released.
	Moved bool
}

// NewButtons builds a fresh, zeroed button set from the templates. Key
// sequences are copied so no slice is shared between devices.
func NewButtons(templates []Template) []*Button {
	buttons := make([]*Button, len(templates))
	for i, t := range templates {
		buttons[i] = &Button{Template: t.clone()}
	}
	return buttons
}

func (t Template) clone() Template {
	c := t
	c.Click = cloneKeys(t.Click)
	c.SwipeUp = cloneKeys(t.SwipeUp)
	c.SwipeDown = cloneKeys(t.SwipeDown)
	c.SwipeLeft = cloneKeys(t.SwipeLeft)
	c.SwipeRight = cloneKeys(t.SwipeRight)
	return c
}

func cloneKeys(keys []evdev.EvCode) []evdev.EvCode {
	if keys == nil {
		return nil
	}
	out := make([]evdev.EvCode, len(keys))
	copy(out, keys)
	return out
}

// accumulate adds motion on one axis and latches Moved
func (b *Button) accumulate(code evdev.EvCode, value int32) {
	switch code {
	case evdev.REL_X:
		b.DeltaX += value
		if abs(b.DeltaX) > b.Delta {
			b.Moved = true
		}
	case evdev.REL_Y:
		b.DeltaY += value
		if abs(b.DeltaY) > b.Delta {
			b.Moved = true
		}
	}
}

// verdict picks the key sequence for a release. It returns nil for scroll
// buttons that moved, since their motion was already emitted as ticks.
func (b *Button) verdict() (Verdict, []evdev.EvCode) {
	if !b.Moved {
		return VerdictClick, b.Click
	}
	if b.Scroll {
		return VerdictNone, nil
	}
	if abs(b.DeltaX) > abs(b.DeltaY) {
		if b.DeltaX > 0 {
			return VerdictSwipeRight, b.SwipeRight
		}
		return VerdictSwipeLeft, b.SwipeLeft
	}
	if b.DeltaY > 0 {
		return VerdictSwipeDown, b.SwipeDown
	}
	return VerdictSwipeUp, b.SwipeUp
}

func (b *Button) reset() {
	b.DeltaX = 0
	b.DeltaY = 0
	b.Moved = false
}

func abs(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
