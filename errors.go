package serial

import (
	"errors"
	"fmt"
)

// Predefined error types for robust error handling
var (
	ErrDeviceNotFound       = errors.New("serial device not found")
	ErrPermissionDenied     = errors.New("permission denied accessing serial device")
	ErrDeviceInUse          = errors.New("serial device already in use")
	ErrDeviceDisconnected   = errors.New("serial device disconnected")
	ErrUnsupportedBaudRate  = errors.New("unsupported baud rate")
	ErrUnsupportedOperation = errors.New("operation not supported on this platform or signal line")
	ErrInvalidConfig        = errors.New("invalid serial configuration")
	ErrPortClosed           = errors.New("serial port is closed")
	ErrInvalidState         = errors.New("serial port is in an error state, close and reopen it")

	// Signal monitoring errors
	ErrSignalTimeout     = errors.New("timeout waiting for signal change")
	ErrInvalidSignalMask = errors.New("invalid signal mask")

	// USB-related errors
	ErrUSBInfoNotAvailable  = errors.New("USB device information not available")
	ErrUSBResetNotAvailable = errors.New("usbreset utility not available")
)

// ConfigError describes a configuration field rejected by Validate before
// any OS call is made. It unwraps to ErrInvalidConfig so callers can use
// errors.Is(err, serial.ErrInvalidConfig).
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid serial configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

func configErr(field, reason string) error {
	return &ConfigError{Field: field, Reason: reason}
}
