package gesture

import (
	"testing"

	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewButtonsIsolatesDevices(t *testing.T) {
	templates := []Template{swipeTemplate()}

	first := NewButtons(templates)
	second := NewButtons(templates)
	require.Len(t, first, 1)
	require.Len(t, second, 1)

	first[0].Pressed = true
	first[0].DeltaX = 42
	first[0].Moved = true
	first[0].Click[0] = evdev.KEY_ESC

	assert.False(t, second[0].Pressed)
	assert.Zero(t, second[0].DeltaX)
	assert.False(t, second[0].Moved)
	assert.Equal(t, evdev.EvCode(evdev.KEY_LEFTMETA), second[0].Click[0])
	assert.Equal(t, evdev.EvCode(evdev.KEY_LEFTMETA), templates[0].Click[0], "template is never mutated")
}

func TestButtonVerdict(t *testing.T) {
	b := NewButtons([]Template{swipeTemplate()})[0]

	v, keys := b.verdict()
	assert.Equal(t, VerdictClick, v)
	assert.Equal(t, b.Click, keys)

	b.Scroll = true
	b.accumulate(evdev.REL_Y, 21)
	v, keys = b.verdict()
	assert.Equal(t, VerdictNone, v)
	assert.Nil(t, keys)
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "swipe_left", VerdictSwipeLeft.String())
	assert.Equal(t, "click", VerdictClick.String())
	assert.Equal(t, "none", VerdictNone.String())
	assert.Equal(t, "keys", EmitKeySequence.String())
	assert.Equal(t, "horizontal", AxisHorizontal.String())
}
