package input

import (
	"os"
	"testing"

	"github.com/bnema/mouseswipe/internal/gesture"
	"github.com/bnema/mouseswipe/internal/keys"
	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const uinputSetupHint = `to run uinput tests: sudo modprobe uinput, then either
sudo chmod 666 /dev/uinput or install a udev rule such as
KERNEL=="uinput", GROUP="input", MODE="0660" and reload udev`

// TestUInputPermissions checks the preflight against the real /dev/uinput
func TestUInputPermissions(t *testing.T) {
	if _, err := os.Stat("/dev/uinput"); os.IsNotExist(err) {
		assert.ErrorContains(t, CheckUinputAccess(), "modprobe uinput")
		t.Skip("/dev/uinput does not exist; " + uinputSetupHint)
	}

	f, openErr := os.OpenFile("/dev/uinput", os.O_WRONLY, 0)
	if openErr != nil {
		assert.Error(t, CheckUinputAccess(), "preflight must agree with a failed open")
		t.Skipf("Cannot open /dev/uinput (%v); %s", openErr, uinputSetupHint)
	}
	require.NoError(t, f.Close())
	assert.NoError(t, CheckUinputAccess())
}

func TestVirtualCapabilities(t *testing.T) {
	caps := virtualCapabilities()

	keyCodes := caps[evdev.EV_KEY]
	assert.Contains(t, keyCodes, evdev.EvCode(evdev.KEY_LEFTCTRL))
	assert.Contains(t, keyCodes, evdev.EvCode(evdev.BTN_RIGHT))
	assert.Contains(t, keyCodes, evdev.EvCode(evdev.BTN_TASK))
	assert.Contains(t, keyCodes, evdev.EvCode(evdev.KEY_PASTE))

	// Anything the configuration accepts must be writable
	for _, name := range []string{"KEY_KP1", "KEY_COPY", "BTN_0", "KEY_MAX"} {
		code, err := keys.Lookup(name)
		require.NoError(t, err)
		assert.Contains(t, keyCodes, code, name)
	}
	assert.Equal(t, keys.All(), keyCodes)

	seen := make(map[evdev.EvCode]bool)
	for _, code := range keyCodes {
		assert.False(t, seen[code], "duplicate key capability %d", code)
		seen[code] = true
	}

	relCodes := caps[evdev.EV_REL]
	assert.Contains(t, relCodes, gesture.RelWheelHiRes)
	assert.Contains(t, relCodes, gesture.RelHWheelHiRes)
}

// TestVirtualDevice_Integration creates a real uinput device if permissions allow
func TestVirtualDevice_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if err := CheckUinputAccess(); err != nil {
		t.Skipf("Cannot access uinput: %v", err)
	}

	dev, err := NewVirtualDevice("mouse-swipe-test-device")
	if err != nil {
		t.Skipf("Cannot create virtual device: %v", err)
	}

	emitter := NewEmitter(dev)
	require.NoError(t, emitter.Apply([]gesture.Decision{
		{Action: gesture.EmitScrollTick, Axis: gesture.AxisVertical, Direction: 1},
		{Action: gesture.Forward, Event: gesture.Event{Type: evdev.EV_REL, Code: evdev.REL_X, Value: 1}},
	}))

	require.NoError(t, dev.Close())
	require.NoError(t, dev.Close(), "closing twice is a no-op")
	assert.ErrorIs(t, dev.Sync(), ErrSinkClosed)
}
