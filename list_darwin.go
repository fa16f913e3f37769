package serial

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListPorts returns a snapshot of the serial ports present on the
// system. Darwin exposes each device twice, as the callout /dev/cu.*
// node and the callin /dev/tty.* node; the cu form is preferred and the
// tty alias is dropped when both exist. An empty slice with a nil error
// means nothing is attached.
func ListPorts() ([]string, error) {
	cuPorts, err := filepath.Glob("/dev/cu.*")
	if err != nil {
		return nil, err
	}
	ttyPorts, err := filepath.Glob("/dev/tty.*")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(cuPorts))
	var ports []string
	for _, port := range cuPorts {
		if !isCharacterDevice(port) {
			continue
		}
		seen[strings.TrimPrefix(port, "/dev/cu.")] = true
		ports = append(ports, port)
	}
	for _, port := range ttyPorts {
		if !isCharacterDevice(port) {
			continue
		}
		// Skip the callin alias of a callout device already listed.
		if seen[strings.TrimPrefix(port, "/dev/tty.")] {
			continue
		}
		ports = append(ports, port)
	}

	sort.Strings(ports)
	return ports, nil
}

func isCharacterDevice(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// GetPortInfo returns detailed information about a specific port. USB
// metadata is not available without IOKit, so only the basic fields are
// populated.
func GetPortInfo(portPath string) (*PortInfo, error) {
	if !isCharacterDevice(portPath) {
		return nil, ErrDeviceNotFound
	}

	name := filepath.Base(portPath)
	return &PortInfo{
		Name:        name,
		Path:        portPath,
		Description: getPortDescription(name),
	}, nil
}

func getPortDescription(name string) string {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(name, "cu."), "tty.")
	switch {
	case strings.HasPrefix(trimmed, "usbserial"):
		return "USB Serial Port"
	case strings.HasPrefix(trimmed, "usbmodem"):
		return "USB Modem Port"
	case strings.HasPrefix(trimmed, "Bluetooth"):
		return "Bluetooth Serial Port"
	default:
		return "Serial Port"
	}
}
