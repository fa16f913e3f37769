//go:build linux

package serial

import (
	"errors"
	"testing"

	"golang.org/x/sys/unix"
)

func TestBaudRateConst(t *testing.T) {
	tests := []struct {
		rate     int
		expected uint32
		wantErr  bool
	}{
		{50, unix.B50, false},
		{9600, unix.B9600, false},
		{19200, unix.B19200, false},
		{115200, unix.B115200, false},
		{230400, unix.B230400, false},
		{921600, unix.B921600, false},
		{4000000, unix.B4000000, false},
		{0, 0, true},
		{-9600, 0, true},
		{12345, 0, true},
		{115201, 0, true}, // close to a real rate, still rejected
		{128000, 0, true}, // a Windows rate the kernel has no constant for
	}

	for _, tt := range tests {
		result, err := baudRateConst(tt.rate)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedBaudRate) {
				t.Errorf("baudRateConst(%d) error = %v, want ErrUnsupportedBaudRate", tt.rate, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("baudRateConst(%d) unexpected error: %v", tt.rate, err)
			continue
		}
		if result != tt.expected {
			t.Errorf("baudRateConst(%d) = %#x, want %#x", tt.rate, result, tt.expected)
		}
	}
}
