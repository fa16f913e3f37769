package serial

import (
	"context"
	"time"
)

// Port represents an open serial port.
//
// A Port owns exactly one OS-level device reference for its lifetime and
// walks a small lifecycle: open (ready) -> closed, with an error state
// entered when the device faults or vanishes mid-session. A faulted port
// rejects all further I/O with ErrInvalidState until it is closed and
// reopened. Close is idempotent; the second call is a no-op.
//
// A Port is not safe for concurrent use by multiple readers or multiple
// writers. One reader and one writer may operate concurrently.
type Port interface {
	Close() error

	// Read blocks up to the configured read timeout and returns the bytes
	// available, up to len(buf). A timeout with no data returns (0, nil);
	// it is a valid zero-progress result, not an error.
	Read(buf []byte) (int, error)

	// Write blocks up to the configured write timeout. It may return a
	// count smaller than len(data) if the timeout elapses first; callers
	// that need the full buffer sent must loop.
	Write(data []byte) (int, error)

	ReadContext(ctx context.Context, buf []byte) (int, error)
	WriteContext(ctx context.Context, data []byte) (int, error)

	// Reconfigure atomically applies a new configuration derived from the
	// current one. The port never passes through a closed state; on
	// backend failure it enters the error state.
	Reconfigure(opts ...Option) error

	// Drain blocks until all queued output has been transmitted.
	Drain() error
	// FlushInput discards received but unread bytes.
	FlushInput() error
	// FlushOutput discards queued but unsent bytes.
	FlushOutput() error
	// Flush discards both directions. It does not wait; use Drain for that.
	Flush() error

	// Modem signal control and monitoring. DTR and RTS are outputs, the
	// rest are read-only inputs.
	SetDTR(state bool) error
	SetRTS(state bool) error
	GetDTR() (bool, error)
	GetRTS() (bool, error)
	GetCTS() (bool, error)
	GetDSR() (bool, error)
	GetCD() (bool, error)
	GetRI() (bool, error)
	GetModemSignals() (ModemSignals, error)
	WaitForSignalChange(mask SignalMask, timeout time.Duration) (ModemSignals, SignalMask, error)
	WaitForSignalChangeContext(ctx context.Context, mask SignalMask) (ModemSignals, SignalMask, error)

	// SetBreak asserts or releases the break condition on the TX line.
	SetBreak(state bool) error

	// BytesToRead and BytesToWrite report the kernel queue depths.
	BytesToRead() (int, error)
	BytesToWrite() (int, error)

	// Path returns the device path the port was opened with.
	Path() string
	// Config returns the currently applied configuration.
	Config() Config
}

// ModemSignals represents modem control signal states
type ModemSignals struct {
	CTS bool // Clear To Send
	DSR bool // Data Set Ready
	RI  bool // Ring Indicator
	DCD bool // Data Carrier Detect
	RTS bool // Request To Send
	DTR bool // Data Terminal Ready
}

// SignalMask identifies which input signals to monitor
type SignalMask int

const (
	SignalCTS SignalMask = 1 << iota
	SignalDSR
	SignalRI
	SignalDCD
)

// Port lifecycle states.
type portState int

const (
	stateReady portState = iota
	stateError
	stateClosed
)

// Open opens a serial port with the given device path and options.
//
// The path is platform-native: /dev/ttyUSB0, /dev/cu.usbserial-1420, COM3.
// The configuration is validated in full before the device is touched,
// and opening never toggles DTR or RTS unless WithInitialDTR/WithInitialRTS
// ask for it, so boards with auto-reset wiring do not reboot on connect.
func Open(device string, opts ...Option) (Port, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return nativeOpen(device, config)
}
