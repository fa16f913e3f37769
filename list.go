package serial

// PortInfo describes an enumerated serial port. The USB metadata fields
// are populated on Linux from sysfs when the port belongs to a USB
// adapter; elsewhere they stay empty.
type PortInfo struct {
	Name            string
	Path            string
	Description     string
	VendorID        string
	ProductID       string
	SerialNumber    string
	Manufacturer    string
	Product         string
	InterfaceNumber string
	BusNumber       string
	DeviceNumber    string
}
