package input

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, nil, 0o600))
}

func fakeInputDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		touch(t, filepath.Join(dir, name))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "by-id"), 0o700))
	return dir
}

func TestDeviceMonitorCount(t *testing.T) {
	dir := fakeInputDir(t, "event0", "event1", "mice", "mouse0", "js0")
	dm := NewDeviceMonitor(dir)

	count, err := dm.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	devices, err := dm.ListCurrentDevices()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "event0"),
		filepath.Join(dir, "event1"),
	}, devices)
}

func TestDeviceMonitorMissingDir(t *testing.T) {
	dm := NewDeviceMonitor(filepath.Join(t.TempDir(), "missing"))
	_, err := dm.Count()
	assert.Error(t, err)
}

func TestNewDeviceMonitorDefault(t *testing.T) {
	assert.Equal(t, DefaultInputDir, NewDeviceMonitor("").InputDir())
}

func TestWaitForMore(t *testing.T) {
	dir := fakeInputDir(t, "event0")
	dm := NewDeviceMonitor(dir)

	done := make(chan error, 1)
	go func() {
		done <- dm.WaitForMore(context.Background(), 1, 10*time.Millisecond)
	}()

	select {
	case err := <-done:
		t.Fatalf("returned before a device was added: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	touch(t, filepath.Join(dir, "event1"))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("new device not detected")
	}
}

func TestWaitForMoreIgnoresRemoval(t *testing.T) {
	dir := fakeInputDir(t, "event0", "event1")
	dm := NewDeviceMonitor(dir)
	require.NoError(t, os.Remove(filepath.Join(dir, "event1")))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := dm.WaitForMore(ctx, 2, 5*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSourceScanSkipsUnopenableNodes(t *testing.T) {
	dir := fakeInputDir(t, "event0", "event1", "event2")
	src := NewSource(dir, "")

	devices, total, err := src.Scan()
	require.NoError(t, err)
	assert.Empty(t, devices)
	assert.Equal(t, 3, total)
}

func TestSourceList(t *testing.T) {
	dir := fakeInputDir(t, "event0")
	require.NoError(t, os.Symlink("../event0", filepath.Join(dir, "by-id", "usb-Logitech_G305-event-mouse")))

	sysDir := t.TempDir()
	devDir := filepath.Join(sysDir, "event0", "device")
	require.NoError(t, os.MkdirAll(filepath.Join(devDir, "id"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(devDir, "name"), []byte("Logitech G305\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(devDir, "phys"), []byte("usb-0000:00:14.0-2/input0\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(devDir, "id", "vendor"), []byte("046d\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(devDir, "id", "product"), []byte("4074\n"), 0o600))

	src := NewSource(dir, "")
	src.sysDir = sysDir

	infos, err := src.List()
	require.NoError(t, err)
	require.Len(t, infos, 1)

	info := infos[0]
	assert.Equal(t, "Logitech G305", info.Name)
	assert.Equal(t, filepath.Join(dir, "by-id", "usb-Logitech_G305-event-mouse"), info.Link)
	assert.Equal(t, "046d", info.VendorID)
	assert.Equal(t, "4074", info.ProductID)
	assert.Equal(t, "usb-0000:00:14.0-2/input0", info.Phys)
	assert.False(t, info.IsMouse)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Razer", DeviceInfo{Name: "Razer"}.DisplayName())
	assert.Equal(t, "Logitech_G305", DeviceInfo{Link: "/dev/input/by-id/usb-Logitech_G305-event-mouse"}.DisplayName())
	assert.Equal(t, "event7", DeviceInfo{Path: "/dev/input/event7"}.DisplayName())
}
