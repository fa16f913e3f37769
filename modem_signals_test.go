//go:build linux || darwin

package serial

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func newClosedTestPort() *port {
	p := &port{fd: -1, device: "/dev/closed-test"}
	p.state.Store(int32(stateClosed))
	return p
}

// TestSignalMaskToTIOCM tests the signal mask conversion
func TestSignalMaskToTIOCM(t *testing.T) {
	tests := []struct {
		name     string
		mask     SignalMask
		expected int
	}{
		{
			name:     "CTS only",
			mask:     SignalCTS,
			expected: unix.TIOCM_CTS,
		},
		{
			name:     "DSR only",
			mask:     SignalDSR,
			expected: unix.TIOCM_DSR,
		},
		{
			name:     "RI only",
			mask:     SignalRI,
			expected: unix.TIOCM_RI,
		},
		{
			name:     "DCD only",
			mask:     SignalDCD,
			expected: unix.TIOCM_CAR,
		},
		{
			name:     "Multiple signals",
			mask:     SignalCTS | SignalDSR,
			expected: unix.TIOCM_CTS | unix.TIOCM_DSR,
		},
		{
			name:     "All signals",
			mask:     SignalCTS | SignalDSR | SignalRI | SignalDCD,
			expected: unix.TIOCM_CTS | unix.TIOCM_DSR | unix.TIOCM_RI | unix.TIOCM_CAR,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := signalMaskToTIOCM(tt.mask)
			if result != tt.expected {
				t.Errorf("signalMaskToTIOCM(%v) = %v, want %v", tt.mask, result, tt.expected)
			}
		})
	}
}

// TestDetectSignalChanges tests signal change detection
func TestDetectSignalChanges(t *testing.T) {
	tests := []struct {
		name      string
		oldStatus int
		newStatus int
		expected  SignalMask
	}{
		{
			name:      "No change",
			oldStatus: unix.TIOCM_CTS | unix.TIOCM_DSR,
			newStatus: unix.TIOCM_CTS | unix.TIOCM_DSR,
			expected:  0,
		},
		{
			name:      "CTS changed",
			oldStatus: 0,
			newStatus: unix.TIOCM_CTS,
			expected:  SignalCTS,
		},
		{
			name:      "DSR changed",
			oldStatus: 0,
			newStatus: unix.TIOCM_DSR,
			expected:  SignalDSR,
		},
		{
			name:      "RI changed",
			oldStatus: 0,
			newStatus: unix.TIOCM_RI,
			expected:  SignalRI,
		},
		{
			name:      "DCD changed",
			oldStatus: 0,
			newStatus: unix.TIOCM_CAR,
			expected:  SignalDCD,
		},
		{
			name:      "Multiple signals changed",
			oldStatus: 0,
			newStatus: unix.TIOCM_CTS | unix.TIOCM_DSR,
			expected:  SignalCTS | SignalDSR,
		},
		{
			name:      "Signal went low",
			oldStatus: unix.TIOCM_CTS,
			newStatus: 0,
			expected:  SignalCTS,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := detectSignalChanges(tt.oldStatus, tt.newStatus)
			if result != tt.expected {
				t.Errorf("detectSignalChanges(%v, %v) = %v, want %v", tt.oldStatus, tt.newStatus, result, tt.expected)
			}
		})
	}
}

// TestModemSignalsFromStatus tests the TIOCM status word decoding
func TestModemSignalsFromStatus(t *testing.T) {
	status := unix.TIOCM_CTS | unix.TIOCM_CAR | unix.TIOCM_DTR
	signals := modemSignalsFromStatus(status)

	if !signals.CTS || !signals.DCD || !signals.DTR {
		t.Errorf("expected CTS, DCD and DTR set, got %+v", signals)
	}
	if signals.DSR || signals.RI || signals.RTS {
		t.Errorf("expected DSR, RI and RTS clear, got %+v", signals)
	}
}

// TestWaitForSignalChangeInvalidMask tests error handling for invalid signal masks
func TestWaitForSignalChangeInvalidMask(t *testing.T) {
	p := newClosedTestPort()

	_, _, err := p.WaitForSignalChange(0, time.Second)
	if !errors.Is(err, ErrInvalidSignalMask) {
		t.Errorf("WaitForSignalChange(0, ...) error = %v, want %v", err, ErrInvalidSignalMask)
	}

	ctx := context.Background()
	_, _, err = p.WaitForSignalChangeContext(ctx, 0)
	if !errors.Is(err, ErrInvalidSignalMask) {
		t.Errorf("WaitForSignalChangeContext(ctx, 0) error = %v, want %v", err, ErrInvalidSignalMask)
	}
}

// TestModemSignalsOnClosedPort tests that methods fail cleanly on closed ports
func TestModemSignalsOnClosedPort(t *testing.T) {
	p := newClosedTestPort()

	t.Run("GetModemSignals", func(t *testing.T) {
		_, err := p.GetModemSignals()
		if !errors.Is(err, ErrPortClosed) {
			t.Errorf("GetModemSignals() on closed port error = %v, want %v", err, ErrPortClosed)
		}
	})

	t.Run("SetRTS", func(t *testing.T) {
		err := p.SetRTS(true)
		if !errors.Is(err, ErrPortClosed) {
			t.Errorf("SetRTS() on closed port error = %v, want %v", err, ErrPortClosed)
		}
	})

	t.Run("GetRTS", func(t *testing.T) {
		_, err := p.GetRTS()
		if !errors.Is(err, ErrPortClosed) {
			t.Errorf("GetRTS() on closed port error = %v, want %v", err, ErrPortClosed)
		}
	})

	t.Run("SetBreak", func(t *testing.T) {
		err := p.SetBreak(true)
		if !errors.Is(err, ErrPortClosed) {
			t.Errorf("SetBreak() on closed port error = %v, want %v", err, ErrPortClosed)
		}
	})

	t.Run("WaitForSignalChange", func(t *testing.T) {
		_, _, err := p.WaitForSignalChange(SignalCTS, time.Second)
		if !errors.Is(err, ErrPortClosed) {
			t.Errorf("WaitForSignalChange() on closed port error = %v, want %v", err, ErrPortClosed)
		}
	})

	t.Run("WaitForSignalChangeContext", func(t *testing.T) {
		ctx := context.Background()
		_, _, err := p.WaitForSignalChangeContext(ctx, SignalCTS)
		if !errors.Is(err, ErrPortClosed) {
			t.Errorf("WaitForSignalChangeContext() on closed port error = %v, want %v", err, ErrPortClosed)
		}
	})
}

// TestWaitForSignalChangeContextCancellation tests context cancellation
func TestWaitForSignalChangeContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newClosedTestPort()
	_, _, err := p.WaitForSignalChangeContext(ctx, SignalCTS)

	// The pre-flight cancelled-context check fires before the state check;
	// either error is acceptable on a closed port.
	if !errors.Is(err, ErrPortClosed) && !errors.Is(err, context.Canceled) {
		t.Errorf("WaitForSignalChangeContext() with cancelled context error = %v, want %v or %v",
			err, ErrPortClosed, context.Canceled)
	}
}
