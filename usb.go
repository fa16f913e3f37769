//go:build linux

package serial

import (
	"os"
	"path/filepath"
	"strings"
)

// readSysfsFile reads a single-value sysfs attribute, trimmed of
// surrounding whitespace. Missing files read as empty strings; sysfs
// attributes come and go with the hardware.
func readSysfsFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// enrichUSBInfo fills in USB metadata from sysfs. The tty class entry
// links into the interface directory; the USB device directory holding
// idVendor and friends is its parent:
//
//	/sys/class/tty/ttyUSB0/device -> .../5-2.3.1/5-2.3.1:1.0/ttyUSB0
//
// Any missing piece leaves its field empty rather than failing.
func enrichUSBInfo(info *PortInfo) {
	devicePath := filepath.Join("/sys/class/tty", info.Name, "device")
	resolvedPath, err := filepath.EvalSymlinks(devicePath)
	if err != nil {
		return
	}

	interfacePath := filepath.Dir(resolvedPath)
	info.InterfaceNumber = readSysfsFile(filepath.Join(interfacePath, "bInterfaceNumber"))

	usbDevicePath := filepath.Dir(interfacePath)
	info.VendorID = readSysfsFile(filepath.Join(usbDevicePath, "idVendor"))
	info.ProductID = readSysfsFile(filepath.Join(usbDevicePath, "idProduct"))
	info.SerialNumber = readSysfsFile(filepath.Join(usbDevicePath, "serial"))
	info.Manufacturer = readSysfsFile(filepath.Join(usbDevicePath, "manufacturer"))
	info.Product = readSysfsFile(filepath.Join(usbDevicePath, "product"))
	info.BusNumber = readSysfsFile(filepath.Join(usbDevicePath, "busnum"))
	info.DeviceNumber = readSysfsFile(filepath.Join(usbDevicePath, "devnum"))
}
