package input

import (
	"os"
	"path/filepath"
	"strings"
)

const sysClassInput = "/sys/class/input"

// DeviceInfo describes one event node for the devices listing
type DeviceInfo struct {
	Path      string
	Name      string
	Link      string
	VendorID  string
	ProductID string
	Phys      string
	IsMouse   bool
	IsVirtual bool
	// Err is set when the node could not be opened
	Err error
}

// resolvePersistent fills the by-id (or by-path) symlink and sysfs identifiers for
// eventPath. Missing entries are left empty.
func resolvePersistent(info *DeviceInfo, inputDir, sysDir string) {
	eventName := filepath.Base(info.Path)

	// Try to find in by-id first, by-path as fallback
	for _, sub := range []string{"by-id", "by-path"} {
		dir := filepath.Join(inputDir, sub)
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.Contains(entry.Name(), "event") {
				continue
			}
			link := filepath.Join(dir, entry.Name())
			if target, err := os.Readlink(link); err == nil && filepath.Base(target) == eventName {
				info.Link = link
				break
			}
		}
		if info.Link != "" {
			break
		}
	}

	sysPath := filepath.Join(sysDir, eventName, "device")
	if info.Name == "" {
		info.Name = readSysfs(sysPath, "name")
	}
	info.Phys = readSysfs(sysPath, "phys")
	info.VendorID = readSysfs(sysPath, "id/vendor")
	info.ProductID = readSysfs(sysPath, "id/product")
}

func readSysfs(dir, file string) string {
	data, err := os.ReadFile(filepath.Join(dir, file))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// cleanDeviceName trims the udev prefixes and suffixes of a by-id link name
func cleanDeviceName(name string) string {
	name = strings.TrimPrefix(name, "usb-")
	for _, suffix := range []string{"-event-mouse", "-event-kbd", "-event-if01", "-event-if02"} {
		name = strings.TrimSuffix(name, suffix)
	}
	return name
}

// DisplayName prefers the kernel name and falls back to the by-id link
func (d DeviceInfo) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	if d.Link != "" {
		return cleanDeviceName(filepath.Base(d.Link))
	}
	return filepath.Base(d.Path)
}
