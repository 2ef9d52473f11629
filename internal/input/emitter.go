package input

import (
	"fmt"
	"sync"

	"github.com/bnema/mouseswipe/internal/gesture"
	"github.com/holoplot/go-evdev"
)

// Emitter turns classifier decisions into writes on the shared sink. Every
// device goroutine goes through the same Emitter, and the decisions for one
// raw event are written under a single lock so chords and wheel pairs never
// interleave with another device's output.
type Emitter struct {
	mu   sync.Mutex
	sink Sink
}

// NewEmitter creates an emitter writing to sink
func NewEmitter(sink Sink) *Emitter {
	return &Emitter{sink: sink}
}

// Apply executes the decisions produced for one raw event
func (e *Emitter) Apply(decisions []gesture.Decision) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, d := range decisions {
		var err error
		switch d.Action {
		case gesture.Forward:
			err = e.forward(d.Event)
		case gesture.EmitScrollTick:
			err = e.scrollTick(d.Axis, d.Direction)
		case gesture.EmitKeySequence:
			err = e.keySequence(d.Keys)
		case gesture.Suppress:
			// dropped
		default:
			err = fmt.Errorf("unknown action %v", d.Action)
		}
		if err != nil {
			return fmt.Errorf("failed to emit %s: %w", d.Action, err)
		}
	}
	return nil
}

func (e *Emitter) forward(ev gesture.Event) error {
	// A forwarded report is its own barrier.
	if ev.Type == evdev.EV_SYN && ev.Code == evdev.SYN_REPORT {
		return e.sink.Write(ev.Type, ev.Code, ev.Value)
	}

	if err := e.sink.Write(ev.Type, ev.Code, ev.Value); err != nil {
		return err
	}

	if ev.Type == evdev.EV_REL {
		if hiRes, ok := hiResCode(ev.Code); ok {
			if err := e.sink.Write(evdev.EV_REL, hiRes, ev.Value*gesture.HiResPerDetent); err != nil {
				return err
			}
		}
	}

	return e.sink.Sync()
}

func (e *Emitter) scrollTick(axis gesture.Axis, direction int32) error {
	code := evdev.EvCode(evdev.REL_WHEEL)
	if axis == gesture.AxisHorizontal {
		code = evdev.REL_HWHEEL
	}
	hiRes, _ := hiResCode(code)

	if err := e.sink.Write(evdev.EV_REL, code, direction); err != nil {
		return err
	}
	if err := e.sink.Write(evdev.EV_REL, hiRes, direction*gesture.HiResPerDetent); err != nil {
		return err
	}
	return e.sink.Sync()
}

// keySequence presses keys in order and releases them in reverse order
func (e *Emitter) keySequence(keys []evdev.EvCode) error {
	for _, key := range keys {
		if err := e.sink.Write(evdev.EV_KEY, key, 1); err != nil {
			return err
		}
	}
	if err := e.sink.Sync(); err != nil {
		return err
	}

	for i := len(keys) - 1; i >= 0; i-- {
		if err := e.sink.Write(evdev.EV_KEY, keys[i], 0); err != nil {
			return err
		}
	}
	return e.sink.Sync()
}

func hiResCode(code evdev.EvCode) (evdev.EvCode, bool) {
	switch code {
	case evdev.REL_WHEEL:
		return gesture.RelWheelHiRes, true
	case evdev.REL_HWHEEL:
		return gesture.RelHWheelHiRes, true
	}
	return 0, false
}
