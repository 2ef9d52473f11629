package gesture

import (
	"fmt"

	"github.com/holoplot/go-evdev"
)

// High-resolution wheel codes (REL_WHEEL_HI_RES, REL_HWHEEL_HI_RES). They
// accompany every base wheel event, 120 units per detent.
const (
	RelWheelHiRes  evdev.EvCode = 0x0b
	RelHWheelHiRes evdev.EvCode = 0x0c

	// HiResPerDetent is the hi-res value of one wheel notch
	HiResPerDetent int32 = 120
)

// Event is one raw input event as read from a device
type Event struct {
	Type  evdev.EvType
	Code  evdev.EvCode
	Value int32
}

// NewEvent converts the raw kernel fields into an Event
func NewEvent(typ, code uint16, value int32) Event {
	return Event{Type: evdev.EvType(typ), Code: evdev.EvCode(code), Value: value}
}

func (e Event) String() string {
	return fmt.Sprintf("type=%d code=%d value=%d", e.Type, e.Code, e.Value)
}

// Action says what to do with a raw event
type Action int

const (
	Forward Action = iota
	Suppress
	EmitScrollTick
	EmitKeySequence
)

func (a Action) String() string {
	switch a {
	case Forward:
		return "forward"
	case Suppress:
		return "suppress"
	case EmitScrollTick:
		return "scroll"
	case EmitKeySequence:
		return "keys"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Axis of a synthesized scroll tick
type Axis int

const (
	AxisVertical Axis = iota
	AxisHorizontal
)

func (a Axis) String() string {
	if a == AxisHorizontal {
		return "horizontal"
	}
	return "vertical"
}

// Verdict is the classification of one press/release cycle
type Verdict int

const (
	VerdictNone Verdict = iota
	VerdictClick
	VerdictSwipeUp
	VerdictSwipeDown
	VerdictSwipeLeft
	VerdictSwipeRight
)

func (v Verdict) String() string {
	switch v {
	case VerdictClick:
		return "click"
	case VerdictSwipeUp:
		return "swipe_up"
	case VerdictSwipeDown:
		return "swipe_down"
	case VerdictSwipeLeft:
		return "swipe_left"
	case VerdictSwipeRight:
		return "swipe_right"
	default:
		return "none"
	}
}

// Decision is one step of the output produced for a raw event
type Decision struct {
	Action Action

	// Event is the raw event for Forward and Suppress
	Event Event

	// Axis and Direction (+1/-1) for EmitScrollTick
	Axis      Axis
	Direction int32

	// Keys and the Verdict that produced them for EmitKeySequence
	Keys    []evdev.EvCode
	Verdict Verdict
}

func forward(ev Event) Decision  { return Decision{Action: Forward, Event: ev} }
func suppress(ev Event) Decision { return Decision{Action: Suppress, Event: ev} }

func scrollTick(axis Axis, direction int32) Decision {
	return Decision{Action: EmitScrollTick, Axis: axis, Direction: direction}
}

func keySequence(v Verdict, keys []evdev.EvCode) Decision {
	return Decision{Action: EmitKeySequence, Keys: keys, Verdict: v}
}

// Classifier maps raw events of one device to decisions, updating that
// device's button state as it goes. It is not safe for concurrent use.
type Classifier struct {
	buttons  []*Button
	triggers map[evdev.EvCode]*Button
}

// NewClassifier wraps a device's button set. When two buttons share a
// trigger code the first one wins; configuration loading rejects that case.
func NewClassifier(buttons []*Button) *Classifier {
	triggers := make(map[evdev.EvCode]*Button, len(buttons))
	for _, b := range buttons {
		if _, exists := triggers[b.Button]; !exists {
			triggers[b.Button] = b
		}
	}
	return &Classifier{buttons: buttons, triggers: triggers}
}

// Buttons returns the device's button set
func (c *Classifier) Buttons() []*Button {
	return c.buttons
}

// Reset returns every button to the released, zeroed state
func (c *Classifier) Reset() {
	for _, b := range c.buttons {
		b.Pressed = false
		b.reset()
	}
}

// Classify decides what happens to ev. Synthesized actions come first in
// emission order; the last decision is always Forward or Suppress for ev.
func (c *Classifier) Classify(ev Event) []Decision {
	switch ev.Type {
	case evdev.EV_REL:
		switch ev.Code {
		case RelWheelHiRes, RelHWheelHiRes:
			// Re-synthesized by the emitter next to every base wheel event.
			return []Decision{suppress(ev)}
		case evdev.REL_X, evdev.REL_Y:
			return c.classifyMotion(ev)
		}
	case evdev.EV_KEY:
		if b, ok := c.triggers[ev.Code]; ok {
			return c.classifyTrigger(b, ev)
		}
	}
	return []Decision{forward(ev)}
}

func (c *Classifier) classifyMotion(ev Event) []Decision {
	var decisions []Decision
	frozen := false

	for _, b := range c.buttons {
		if !b.Pressed {
			continue
		}

		b.accumulate(ev.Code, ev.Value)

		if b.Scroll && b.Moved {
			decisions = append(decisions, motionTick(ev))
		}
		if b.Freeze {
			frozen = true
		}
	}

	if frozen {
		return append(decisions, suppress(ev))
	}
	return append(decisions, forward(ev))
}

// motionTick maps X motion to horizontal ticks and Y motion to inverted
// vertical ticks (natural scrolling).
func motionTick(ev Event) Decision {
	if ev.Code == evdev.REL_X {
		if ev.Value > 0 {
			return scrollTick(AxisHorizontal, 1)
		}
		return scrollTick(AxisHorizontal, -1)
	}
	if ev.Value > 0 {
		return scrollTick(AxisVertical, -1)
	}
	return scrollTick(AxisVertical, 1)
}

func (c *Classifier) classifyTrigger(b *Button, ev Event) []Decision {
	wasPressed := b.Pressed
	b.Pressed = ev.Value != 0

	var decisions []Decision
	switch {
	case !wasPressed && b.Pressed:
		b.reset()
	case wasPressed && !b.Pressed:
		verdict, keys := b.verdict()
		if len(keys) > 0 {
			decisions = append(decisions, keySequence(verdict, keys))
		}
		b.reset()
	}

	return append(decisions, suppress(ev))
}
