package input

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/mouseswipe/internal/logger"
)

// DefaultInputDir is where the kernel exposes evdev nodes
const DefaultInputDir = "/dev/input"

// DeviceMonitor watches the set of event nodes in an input directory
type DeviceMonitor struct {
	inputDir string
}

// NewDeviceMonitor creates a monitor for inputDir
func NewDeviceMonitor(inputDir string) *DeviceMonitor {
	if inputDir == "" {
		inputDir = DefaultInputDir
	}
	return &DeviceMonitor{inputDir: inputDir}
}

// InputDir returns the monitored directory
func (dm *DeviceMonitor) InputDir() string {
	return dm.inputDir
}

// Count returns the number of event nodes currently present
func (dm *DeviceMonitor) Count() (int, error) {
	devices, err := dm.ListCurrentDevices()
	if err != nil {
		return 0, err
	}
	return len(devices), nil
}

// ListCurrentDevices returns the paths of the event nodes currently present
func (dm *DeviceMonitor) ListCurrentDevices() ([]string, error) {
	entries, err := os.ReadDir(dm.inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var devices []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), "event") {
			devices = append(devices, filepath.Join(dm.inputDir, entry.Name()))
		}
	}
	return devices, nil
}

// WaitForMore polls every interval and returns nil once more than baseline
// event nodes exist. It returns ctx.Err() when cancelled. Read errors are
// logged and the poll continues.
func (dm *DeviceMonitor) WaitForMore(ctx context.Context, baseline int, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			count, err := dm.Count()
			if err != nil {
				logger.Warnf("Failed to poll input devices: %v", err)
				continue
			}
			if count > baseline {
				logger.Debugf("Device count changed: %d -> %d", baseline, count)
				return nil
			}
		}
	}
}
