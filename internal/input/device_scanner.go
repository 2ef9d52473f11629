package input

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/mouseswipe/internal/logger"
)

// Source enumerates the physical mice under an input directory
type Source struct {
	monitor     *DeviceMonitor
	virtualName string
	sysDir      string
}

// NewSource creates a source scanning inputDir, skipping the virtual device
func NewSource(inputDir, virtualName string) *Source {
	if virtualName == "" {
		virtualName = DefaultVirtualName
	}
	return &Source{
		monitor:     NewDeviceMonitor(inputDir),
		virtualName: virtualName,
		sysDir:      sysClassInput,
	}
}

// Scan opens every attachable mouse and returns them with the total number
// of event nodes seen. Nodes that cannot be opened or are not mice are
// skipped.
func (s *Source) Scan() ([]Device, int, error) {
	paths, err := s.monitor.ListCurrentDevices()
	if err != nil {
		return nil, 0, err
	}

	logger.Debugf("Scanning %d input devices in %s", len(paths), s.monitor.InputDir())

	var devices []Device
	for _, path := range paths {
		dev, err := s.open(path)
		if err != nil {
			logger.Debugf("Skipping %s: %v", path, err)
			continue
		}
		logger.Info("Found mouse", "name", dev.Name(), "path", path)
		devices = append(devices, dev)
	}

	return devices, len(paths), nil
}

func (s *Source) open(path string) (*PhysicalDevice, error) {
	dev, err := OpenDevice(path)
	if err != nil {
		return nil, err
	}

	if dev.Name() == s.virtualName {
		_ = dev.Close()
		return nil, fmt.Errorf("device %s is the virtual device", path)
	}
	if !dev.IsMouse() {
		_ = dev.Close()
		return nil, fmt.Errorf("device %s: %w", path, ErrNotMouse)
	}
	return dev, nil
}

// Count returns the number of event nodes currently present
func (s *Source) Count() (int, error) {
	return s.monitor.Count()
}

// WaitForMore blocks until more than baseline event nodes exist
func (s *Source) WaitForMore(ctx context.Context, baseline int, interval time.Duration) error {
	return s.monitor.WaitForMore(ctx, baseline, interval)
}

// List describes every event node, including those that cannot be opened
func (s *Source) List() ([]DeviceInfo, error) {
	paths, err := s.monitor.ListCurrentDevices()
	if err != nil {
		return nil, err
	}

	infos := make([]DeviceInfo, 0, len(paths))
	for _, path := range paths {
		info := DeviceInfo{Path: path}

		dev, err := OpenDevice(path)
		if err != nil {
			info.Err = err
		} else {
			info.Name = dev.Name()
			info.IsMouse = dev.IsMouse()
			info.IsVirtual = info.Name == s.virtualName
			if err := dev.Close(); err != nil {
				logger.Debugf("Failed to close %s: %v", path, err)
			}
		}

		resolvePersistent(&info, s.monitor.InputDir(), s.sysDir)
		infos = append(infos, info)
	}
	return infos, nil
}
