//go:build windows

package serial

import (
	"errors"
	"testing"
	"time"
)

func TestValidateBaudRateWindows(t *testing.T) {
	valid := []int{110, 9600, 19200, 115200, 128000, 921600}
	for _, rate := range valid {
		if err := validateBaudRate(rate); err != nil {
			t.Errorf("validateBaudRate(%d) = %v, want nil", rate, err)
		}
	}

	invalid := []int{0, -9600, 12345, 50, 4000000}
	for _, rate := range invalid {
		if err := validateBaudRate(rate); !errors.Is(err, ErrUnsupportedBaudRate) {
			t.Errorf("validateBaudRate(%d) = %v, want ErrUnsupportedBaudRate", rate, err)
		}
	}
}

func TestSignalMaskToEvents(t *testing.T) {
	tests := []struct {
		name     string
		mask     SignalMask
		expected uint32
	}{
		{"CTS only", SignalCTS, evCTS},
		{"DSR only", SignalDSR, evDSR},
		{"RI only", SignalRI, evRing},
		{"DCD only", SignalDCD, evRLSD},
		{"all", SignalCTS | SignalDSR | SignalRI | SignalDCD, evCTS | evDSR | evRing | evRLSD},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := signalMaskToEvents(tt.mask); got != tt.expected {
				t.Errorf("signalMaskToEvents(%v) = %#x, want %#x", tt.mask, got, tt.expected)
			}
		})
	}
}

func TestDetectSignalChangesWindows(t *testing.T) {
	tests := []struct {
		name      string
		oldStatus uint32
		newStatus uint32
		expected  SignalMask
	}{
		{"no change", msCTSOn | msDSROn, msCTSOn | msDSROn, 0},
		{"CTS rose", 0, msCTSOn, SignalCTS},
		{"CTS fell", msCTSOn, 0, SignalCTS},
		{"DSR and ring", 0, msDSROn | msRingOn, SignalDSR | SignalRI},
		{"carrier", 0, msRLSDOn, SignalDCD},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectSignalChanges(tt.oldStatus, tt.newStatus); got != tt.expected {
				t.Errorf("detectSignalChanges(%#x, %#x) = %v, want %v",
					tt.oldStatus, tt.newStatus, got, tt.expected)
			}
		})
	}
}

func TestTimeoutMillis(t *testing.T) {
	tests := []struct {
		timeout  time.Duration
		expected uint32
	}{
		{time.Microsecond, 1}, // sub-millisecond rounds up, never to zero
		{time.Millisecond, 1},
		{time.Second, 1000},
		{500 * time.Hour, 1800000000},
	}

	for _, tt := range tests {
		if got := timeoutMillis(tt.timeout); got != tt.expected {
			t.Errorf("timeoutMillis(%v) = %d, want %d", tt.timeout, got, tt.expected)
		}
	}
}

func TestClosedPortOperationsWindows(t *testing.T) {
	p := &port{device: "COM99"}
	p.state.Store(int32(stateClosed))

	if _, err := p.Read(make([]byte, 8)); !errors.Is(err, ErrPortClosed) {
		t.Errorf("Read on closed port error = %v, want ErrPortClosed", err)
	}
	if _, err := p.Write([]byte("x")); !errors.Is(err, ErrPortClosed) {
		t.Errorf("Write on closed port error = %v, want ErrPortClosed", err)
	}
	if err := p.SetDTR(true); !errors.Is(err, ErrPortClosed) {
		t.Errorf("SetDTR on closed port error = %v, want ErrPortClosed", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close on closed port = %v, want nil", err)
	}
}
