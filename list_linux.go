package serial

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Regular expressions for the device names real UARTs show up under.
// The set is a heuristic, not exhaustive; exotic platform drivers may
// need their own entry.
var serialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^ttyUSB\d+$`),   // USB serial adapters
	regexp.MustCompile(`^ttyACM\d+$`),   // USB CDC/ACM devices
	regexp.MustCompile(`^ttyS\d+$`),     // Standard serial ports
	regexp.MustCompile(`^ttyAMA\d+$`),   // ARM/Raspberry Pi serial
	regexp.MustCompile(`^ttymxc\d+$`),   // i.MX serial ports
	regexp.MustCompile(`^ttyO\d+$`),     // OMAP serial ports
	regexp.MustCompile(`^ttySAC\d+$`),   // Samsung serial ports
	regexp.MustCompile(`^ttyTHS\d+$`),   // Tegra serial ports
	regexp.MustCompile(`^ttyXRUSB\d+$`), // Exar USB adapters
	regexp.MustCompile(`^ttyAP\d+$`),    // Advantech multiport cards
	regexp.MustCompile(`^ttyGS\d+$`),    // USB gadget serial
	regexp.MustCompile(`^rfcomm\d+$`),   // Bluetooth RFCOMM
}

// Exclude patterns for virtual terminals and other non-serial devices.
var excludePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^tty\d+$`),  // Virtual terminals (tty1, tty2, etc.)
	regexp.MustCompile(`^console$`), // Console
	regexp.MustCompile(`^ptmx$`),    // Pseudo-terminal multiplexer
	regexp.MustCompile(`^pty.*$`),   // Pseudo-terminals
	regexp.MustCompile(`^pts/.*$`),  // Pseudo-terminal slaves
}

func matchesSerialPattern(name string) bool {
	for _, pattern := range serialPatterns {
		if pattern.MatchString(name) {
			return true
		}
	}
	return false
}

func matchesExcludePattern(name string) bool {
	for _, pattern := range excludePatterns {
		if pattern.MatchString(name) {
			return true
		}
	}
	return false
}

// ListPorts returns a snapshot of the serial ports present on the system.
// It filters for communication-capable devices and excludes virtual
// terminals and pseudo-terminals. An empty slice with a nil error means
// nothing is attached.
func ListPorts() ([]string, error) {
	var ports []string

	devDir := "/dev"
	entries, err := os.ReadDir(devDir)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		name := entry.Name()
		if matchesExcludePattern(name) || !matchesSerialPattern(name) {
			continue
		}

		fullPath := filepath.Join(devDir, name)
		if isCharacterDevice(fullPath) {
			ports = append(ports, fullPath)
		}
	}

	// Sort the ports for consistent ordering
	sort.Strings(ports)

	return ports, nil
}

// isCharacterDevice checks if the given path is a character device
func isCharacterDevice(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// GetPortInfo returns detailed information about a specific port,
// including USB metadata from sysfs when available.
func GetPortInfo(portPath string) (*PortInfo, error) {
	if !isCharacterDevice(portPath) {
		return nil, ErrDeviceNotFound
	}

	name := filepath.Base(portPath)
	info := &PortInfo{
		Name:        name,
		Path:        portPath,
		Description: getPortDescription(name),
	}

	if strings.HasPrefix(name, "ttyUSB") || strings.HasPrefix(name, "ttyACM") ||
		strings.HasPrefix(name, "ttyXRUSB") {
		enrichUSBInfo(info)
	}

	return info, nil
}

// getPortDescription provides human-readable descriptions for different port types
func getPortDescription(name string) string {
	switch {
	case strings.HasPrefix(name, "ttyUSB"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "ttyACM"):
		return "USB CDC/ACM Device"
	case strings.HasPrefix(name, "ttyAMA"):
		return "ARM Serial Port"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial Port"
	case strings.HasPrefix(name, "ttySAC"):
		return "Samsung Serial Port"
	case strings.HasPrefix(name, "ttyTHS"):
		return "Tegra Serial Port"
	case strings.HasPrefix(name, "ttyO"):
		return "OMAP Serial Port"
	case strings.HasPrefix(name, "ttyGS"):
		return "USB Gadget Serial"
	case strings.HasPrefix(name, "ttyS"):
		return "Standard Serial Port"
	case strings.HasPrefix(name, "rfcomm"):
		return "Bluetooth Serial Port"
	default:
		return "Serial Port"
	}
}
