package serial

import (
	"errors"
	"sort"
	"strings"

	"golang.org/x/sys/windows/registry"
)

// ListPorts returns a snapshot of the serial ports present on the
// system, read from the SERIALCOMM registry map the driver stack keeps
// current. An empty slice with a nil error means nothing is attached.
func ListPorts() ([]string, error) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE,
		`HARDWARE\DEVICEMAP\SERIALCOMM`, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			// The key is absent on machines that have never seen a
			// serial device.
			return []string{}, nil
		}
		return nil, err
	}
	defer key.Close()

	names, err := key.ReadValueNames(0)
	if err != nil {
		return nil, err
	}

	var ports []string
	for _, name := range names {
		port, _, err := key.GetStringValue(name)
		if err != nil {
			continue
		}
		ports = append(ports, port)
	}

	sort.Strings(ports)
	return ports, nil
}

// GetPortInfo returns detailed information about a specific port. The
// registry map carries only the COM name; richer metadata would need
// SetupAPI and is not populated.
func GetPortInfo(portPath string) (*PortInfo, error) {
	ports, err := ListPorts()
	if err != nil {
		return nil, err
	}
	for _, port := range ports {
		if strings.EqualFold(port, portPath) {
			return &PortInfo{
				Name:        port,
				Path:        port,
				Description: "Serial Port",
			}, nil
		}
	}
	return nil, ErrDeviceNotFound
}
