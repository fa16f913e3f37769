// Package serial provides a clean, idiomatic Go library for serial port
// communication on Linux, macOS, and Windows.
//
// The POSIX backends configure ports through termios; the Windows
// backend uses overlapped I/O. The API is identical on all three
// platforms, and opening a port never toggles DTR or RTS unless asked
// to, so boards with auto-reset wiring (Arduino and friends) do not
// reboot on connect.
//
// # Basic Usage
//
// Open a serial port with default configuration (115200 8N1, no flow control):
//
//	port, err := serial.Open("/dev/ttyUSB0") // or "COM3" on Windows
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	// Simple I/O
//	n, err := port.Write([]byte("Hello"))
//	buffer := make([]byte, 256)
//	n, err = port.Read(buffer)
//
// # Configuration Options
//
// Use functional options for custom configuration:
//
//	port, err := serial.Open("/dev/ttyUSB0",
//	    serial.WithBaudRate(9600),
//	    serial.WithDataBits(7),
//	    serial.WithParity(serial.ParityEven),
//	    serial.WithStopBits(serial.StopBits2),
//	    serial.WithFlowControl(serial.FlowControlHardware),
//	    serial.WithReadTimeout(500*time.Millisecond),
//	)
//
// The configuration is validated in full before the device is touched;
// invalid combinations fail with a ConfigError wrapping ErrInvalidConfig.
//
// # Timeouts
//
// ReadTimeout and WriteTimeout accept three modes: a positive duration
// bounds the operation, zero returns immediately with whatever is
// available, and NoTimeout blocks until progress is made. A read that
// times out with no data returns (0, nil); timeouts are valid
// zero-progress results, never errors.
//
// # Port Discovery
//
// List available serial ports and get USB device metadata:
//
//	ports, err := serial.ListPorts()
//	for _, portPath := range ports {
//	    info, _ := serial.GetPortInfo(portPath)
//	    fmt.Printf("%s: %s (VID=%s PID=%s Serial=%s)\n",
//	        info.Path, info.Description, info.VendorID, info.ProductID, info.SerialNumber)
//	}
//
// # Modem Signals
//
// Monitor and control modem signals (CTS, DSR, DCD, RI, RTS, DTR):
//
//	// Read signal states
//	signals, err := port.GetModemSignals()
//	fmt.Printf("CTS=%v DSR=%v DCD=%v RI=%v\n",
//	    signals.CTS, signals.DSR, signals.DCD, signals.RI)
//
//	// Control RTS/DTR
//	err = port.SetRTS(true)
//	err = port.SetDTR(false)
//
//	// Wait for signal changes (event-driven; Linux and Windows)
//	signals, changed, err := port.WaitForSignalChange(
//	    serial.SignalDSR|serial.SignalDCD,
//	    5*time.Second,
//	)
//
// # USB Device Management (Linux)
//
// Reset hung USB devices programmatically:
//
//	// Reset by port path
//	err := serial.ResetUSBDevice("/dev/ttyUSB0")
//
//	// Reset by serial number (survives re-enumeration)
//	err = serial.ResetUSBDeviceBySerial("FT123456")
//
// Requires usbreset utility from usbutils package and root/sudo permissions.
//
// # Context Support
//
// All I/O operations support context for timeout and cancellation control:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	defer cancel()
//
//	n, err := port.WriteContext(ctx, data)
//	n, err = port.ReadContext(ctx, buffer)
//
// # Error Handling
//
// The library provides specific error types for robust error handling:
//
//	var (
//	    ErrDeviceNotFound       // Path does not name a device
//	    ErrDeviceInUse          // Another process holds the port
//	    ErrDeviceDisconnected   // Device vanished mid-session
//	    ErrUnsupportedBaudRate  // Rate outside the platform table
//	    ErrPortClosed           // Port already closed
//	    ErrSignalTimeout        // Signal change timeout
//	    // ... and more
//	)
//
// Use errors.Is() for error type checking:
//
//	if errors.Is(err, serial.ErrDeviceDisconnected) {
//	    // Reopen when the adapter comes back
//	}
//
// # Platform Notes
//
// Mark and space parity and WaitForSignalChange are unsupported on
// macOS and fail with ErrUnsupportedOperation. USB metadata extraction
// and device reset rely on sysfs and the usbreset utility and are
// Linux-only.
package serial
