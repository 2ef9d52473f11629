package input

import (
	"fmt"
	"os"
	"sync"

	"github.com/bnema/mouseswipe/internal/gesture"
	"github.com/bnema/mouseswipe/internal/keys"
	"github.com/bnema/mouseswipe/internal/logger"
	"github.com/holoplot/go-evdev"
)

const (
	// DefaultVirtualName is the name of the uinput device; scans skip it
	DefaultVirtualName = "mouse-swipe-virtual-device"

	uinputPath = "/dev/uinput"
)

// VirtualDevice is the uinput pointer+keyboard all sessions write to
type VirtualDevice struct {
	mu     sync.Mutex
	dev    *evdev.InputDevice
	name   string
	closed bool
}

// NewVirtualDevice creates the uinput device
func NewVirtualDevice(name string) (*VirtualDevice, error) {
	dev, err := evdev.CreateDevice(
		name,
		evdev.InputID{
			BusType: 0x03,
			Vendor:  0x4d53,
			Product: 0x5357,
			Version: 1,
		},
		virtualCapabilities(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create virtual device: %w", err)
	}

	logger.Info("Virtual device created", "name", name)
	return &VirtualDevice{dev: dev, name: name}, nil
}

// Name returns the uinput device name
func (v *VirtualDevice) Name() string {
	return v.name
}

// Write writes one event without a sync barrier
func (v *VirtualDevice) Write(typ evdev.EvType, code evdev.EvCode, value int32) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return ErrSinkClosed
	}
	return v.dev.WriteOne(&evdev.InputEvent{
		Type:  typ,
		Code:  code,
		Value: value,
	})
}

// Sync writes a SYN_REPORT barrier
func (v *VirtualDevice) Sync() error {
	return v.Write(evdev.EV_SYN, evdev.SYN_REPORT, 0)
}

// Close destroys the uinput device. Further writes return ErrSinkClosed.
func (v *VirtualDevice) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return nil
	}
	v.closed = true

	if err := v.dev.Close(); err != nil {
		return fmt.Errorf("failed to destroy virtual device: %w", err)
	}
	logger.Info("Virtual device removed", "name", v.name)
	return nil
}

// CheckUinputAccess reports whether /dev/uinput can be opened for writing
func CheckUinputAccess() error {
	if _, err := os.Stat(uinputPath); os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist - load the uinput module with: sudo modprobe uinput", uinputPath)
	}

	f, err := os.OpenFile(uinputPath, os.O_WRONLY, 0)
	if err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("cannot open %s: permission denied - run as root or add a udev rule granting your user access", uinputPath)
		}
		return fmt.Errorf("cannot open %s: %w", uinputPath, err)
	}
	return f.Close()
}

// virtualCapabilities advertises every key code a configuration can name,
// which includes the mouse buttons, and the relative axes with hi-res wheels.
func virtualCapabilities() map[evdev.EvType][]evdev.EvCode {
	return map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: keys.All(),
		evdev.EV_REL: {
			evdev.REL_X,
			evdev.REL_Y,
			evdev.REL_HWHEEL,
			evdev.REL_WHEEL,
			gesture.RelWheelHiRes,
			gesture.RelHWheelHiRes,
		},
		evdev.EV_MSC: {
			evdev.MSC_SCAN,
		},
	}
}
