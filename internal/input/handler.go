// Package input wraps the Linux input stack: physical evdev mice that are
// grabbed and read, and the single uinput device every session writes to.
package input

import (
	"errors"

	"github.com/bnema/mouseswipe/internal/gesture"
	"github.com/holoplot/go-evdev"
)

var (
	// ErrSinkClosed is returned when writing to a closed virtual device
	ErrSinkClosed = errors.New("virtual device is closed")
	// ErrNotMouse is returned when a device lacks the right button capability
	ErrNotMouse = errors.New("not a mouse")
)

// Sink receives the primitive writes of the emitter
type Sink interface {
	Write(typ evdev.EvType, code evdev.EvCode, value int32) error
	Sync() error
}

// Device is a physical input device owned by one session
type Device interface {
	Name() string
	Path() string
	Grab() error
	// Release drops the grab. It is best-effort: a device that has already
	// been unplugged cannot be ungrabbed, so callers may ignore the error.
	Release() error
	// ReadEvents blocks until at least one event is available. It returns an
	// error once the device is removed or closed.
	ReadEvents() ([]gesture.Event, error)
	Close() error
}
