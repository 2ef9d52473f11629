package input

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/bnema/mouseswipe/internal/gesture"
	"github.com/bnema/mouseswipe/internal/logger"
	evdev "github.com/gvalkov/golang-evdev"
	"golang.org/x/sys/unix"
)

const readBatch = 64

var eventSize = binary.Size(evdev.InputEvent{})

// PhysicalDevice is an evdev mouse opened from /dev/input
type PhysicalDevice struct {
	path   string
	device *evdev.InputDevice
	// reader is a non-blocking duplicate of device.File registered with the
	// runtime poller, so Close interrupts a pending read.
	reader *os.File
	buf    []byte

	mu      sync.Mutex
	grabbed bool

	releaseOnce sync.Once
	closeOnce   sync.Once
	closeErr    error
}

// OpenDevice opens the evdev node at path
func OpenDevice(path string) (*PhysicalDevice, error) {
	device, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open device %s: %w", path, err)
	}

	d, err := newPhysicalDevice(path, device)
	if err != nil {
		_ = device.File.Close()
		return nil, err
	}
	return d, nil
}

// newPhysicalDevice wraps an opened device. evdev's ioctls call File.Fd(),
// which leaves device.File in blocking mode for good.
func newPhysicalDevice(path string, device *evdev.InputDevice) (*PhysicalDevice, error) {
	reader, err := pollableFile(device.File)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare %s for reading: %w", path, err)
	}
	return &PhysicalDevice{
		path:   path,
		device: device,
		reader: reader,
		buf:    make([]byte, eventSize*readBatch),
	}, nil
}

func pollableFile(f *os.File) (*os.File, error) {
	fd, err := unix.FcntlInt(f.Fd(), unix.F_DUPFD_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("dup: %w", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("set non-blocking: %w", err)
	}
	// NewFile registers non-blocking descriptors with the poller
	return os.NewFile(uintptr(fd), f.Name()), nil
}

// Name returns the kernel-reported device name
func (d *PhysicalDevice) Name() string {
	return d.device.Name
}

// Path returns the /dev/input node
func (d *PhysicalDevice) Path() string {
	return d.path
}

// IsMouse reports whether the device advertises BTN_RIGHT
func (d *PhysicalDevice) IsMouse() bool {
	return hasRightButton(d.device)
}

// Grab takes exclusive ownership of the device
func (d *PhysicalDevice) Grab() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.device.Grab(); err != nil {
		return fmt.Errorf("failed to grab %s: %w", d.path, err)
	}
	d.grabbed = true
	logger.Debugf("Grabbed device %s (%s)", d.device.Name, d.path)
	return nil
}

// Release drops the grab once; later calls are no-ops
func (d *PhysicalDevice) Release() error {
	var err error
	d.releaseOnce.Do(func() {
		d.mu.Lock()
		defer d.mu.Unlock()

		if !d.grabbed {
			return
		}
		d.grabbed = false
		if err = d.device.Release(); err != nil {
			err = fmt.Errorf("failed to release %s: %w", d.path, err)
			return
		}
		logger.Debugf("Released device %s (%s)", d.device.Name, d.path)
	})
	return err
}

// ReadEvents blocks until the kernel delivers events or the device is closed
func (d *PhysicalDevice) ReadEvents() ([]gesture.Event, error) {
	n, err := d.reader.Read(d.buf)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", d.path, err)
	}
	if n%eventSize != 0 {
		return nil, fmt.Errorf("failed to read %s: partial event (%d bytes)", d.path, n)
	}

	raw := make([]evdev.InputEvent, n/eventSize)
	if err := binary.Read(bytes.NewReader(d.buf[:n]), binary.LittleEndian, raw); err != nil {
		return nil, fmt.Errorf("failed to decode events from %s: %w", d.path, err)
	}

	events := make([]gesture.Event, 0, len(raw))
	for _, ev := range raw {
		events = append(events, gesture.NewEvent(ev.Type, ev.Code, ev.Value))
	}
	return events, nil
}

// Close closes the device node, unblocking a pending ReadEvents
func (d *PhysicalDevice) Close() error {
	d.closeOnce.Do(func() {
		err := errors.Join(d.reader.Close(), d.device.File.Close())
		if err != nil {
			d.closeErr = fmt.Errorf("failed to close %s: %w", d.path, err)
		}
	})
	return d.closeErr
}

func hasRightButton(device *evdev.InputDevice) bool {
	for capType, caps := range device.Capabilities {
		if capType.Type != evdev.EV_KEY {
			continue
		}
		for _, c := range caps {
			if c.Code == evdev.BTN_RIGHT {
				return true
			}
		}
	}
	return false
}
