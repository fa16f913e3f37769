package serial

import "time"

// NoTimeout makes a read or write block until it can make progress.
const NoTimeout time.Duration = -1

// Parity represents the parity mode
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
	ParityMark
	ParitySpace
)

// StopBits represents the number of stop bits per character
type StopBits int

const (
	StopBits1 StopBits = iota
	StopBits1Half
	StopBits2
)

// FlowControl represents the flow control mode
type FlowControl int

const (
	FlowControlNone     FlowControl = iota
	FlowControlSoftware             // XON/XOFF
	FlowControlHardware             // RTS/CTS
)

// Config holds the configuration for a serial port.
//
// A Config is fully specified before it is applied: Open and Reconfigure
// validate it and then push the whole set of line parameters to the OS in
// a single call, so no half-configured state is ever observable.
//
// ReadTimeout and WriteTimeout accept three modes: a positive duration
// bounds the call, zero returns immediately with whatever the kernel has
// buffered, and NoTimeout blocks until progress is made.
type Config struct {
	BaudRate     int
	DataBits     int
	StopBits     StopBits
	Parity       Parity
	FlowControl  FlowControl
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// InitialDTR and InitialRTS set the output lines right after the port
	// is configured. When nil the lines are left exactly as the OS had
	// them: Open itself never toggles a modem line, since a DTR pulse on
	// open reboots auto-reset boards (Arduino/ESP32 class hardware).
	InitialDTR *bool
	InitialRTS *bool
}

// Option is a functional option for configuring a serial port
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaudRate:     115200,
		DataBits:     8,
		StopBits:     StopBits1,
		Parity:       ParityNone,
		FlowControl:  FlowControlNone,
		ReadTimeout:  NoTimeout,
		WriteTimeout: NoTimeout,
	}
}

// Validate checks the configuration without touching the OS. It rejects
// the union of combinations known to be invalid on any supported
// platform; a backend may still surface ErrUnsupportedBaudRate for rates
// outside its own table.
func (c Config) Validate() error {
	if c.BaudRate <= 0 {
		return configErr("BaudRate", "must be a positive integer")
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return configErr("DataBits", "must be between 5 and 8")
	}
	switch c.StopBits {
	case StopBits1, StopBits2:
	case StopBits1Half:
		if c.DataBits != 5 {
			return configErr("StopBits", "1.5 stop bits require 5 data bits")
		}
	default:
		return configErr("StopBits", "unknown stop bit setting")
	}
	switch c.Parity {
	case ParityNone, ParityOdd, ParityEven, ParityMark, ParitySpace:
	default:
		return configErr("Parity", "unknown parity mode")
	}
	switch c.FlowControl {
	case FlowControlNone, FlowControlSoftware, FlowControlHardware:
	default:
		return configErr("FlowControl", "unknown flow control mode")
	}
	if c.ReadTimeout < NoTimeout {
		return configErr("ReadTimeout", "must be NoTimeout, zero, or a positive duration")
	}
	if c.WriteTimeout < NoTimeout {
		return configErr("WriteTimeout", "must be NoTimeout, zero, or a positive duration")
	}
	return nil
}

// WithBaudRate sets the baud rate
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if rate <= 0 {
			return configErr("BaudRate", "must be a positive integer")
		}
		c.BaudRate = rate
		return nil
	}
}

// WithDataBits sets the number of data bits (5, 6, 7, or 8)
func WithDataBits(bits int) Option {
	return func(c *Config) error {
		if bits < 5 || bits > 8 {
			return configErr("DataBits", "must be between 5 and 8")
		}
		c.DataBits = bits
		return nil
	}
}

// WithStopBits sets the number of stop bits
func WithStopBits(bits StopBits) Option {
	return func(c *Config) error {
		switch bits {
		case StopBits1, StopBits1Half, StopBits2:
			c.StopBits = bits
			return nil
		}
		return configErr("StopBits", "unknown stop bit setting")
	}
}

// WithParity sets the parity mode
func WithParity(parity Parity) Option {
	return func(c *Config) error {
		c.Parity = parity
		return nil
	}
}

// WithFlowControl sets the flow control mode
func WithFlowControl(fc FlowControl) Option {
	return func(c *Config) error {
		c.FlowControl = fc
		return nil
	}
}

// WithReadTimeout bounds Read calls. Zero makes reads return immediately
// with whatever is buffered; NoTimeout blocks until data arrives.
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout < NoTimeout {
			return configErr("ReadTimeout", "must be NoTimeout, zero, or a positive duration")
		}
		c.ReadTimeout = timeout
		return nil
	}
}

// WithWriteTimeout bounds Write calls. A timed-out write reports the
// bytes it managed to queue, not an error.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout < NoTimeout {
			return configErr("WriteTimeout", "must be NoTimeout, zero, or a positive duration")
		}
		c.WriteTimeout = timeout
		return nil
	}
}

// WithInitialDTR sets the DTR line state to apply once the port is
// configured. Without this option the line is left untouched.
func WithInitialDTR(state bool) Option {
	return func(c *Config) error {
		c.InitialDTR = &state
		return nil
	}
}

// WithInitialRTS sets the RTS line state to apply once the port is
// configured. Without this option the line is left untouched.
func WithInitialRTS(state bool) Option {
	return func(c *Config) error {
		c.InitialRTS = &state
		return nil
	}
}
