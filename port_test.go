package serial

import (
	"errors"
	"testing"
	"time"
)

// Open must fail on configuration errors before any device is touched.
func TestOpenInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"bad baud rate", []Option{WithBaudRate(-1)}},
		{"bad data bits", []Option{WithDataBits(12)}},
		{"1.5 stop bits with 8 data bits", []Option{WithStopBits(StopBits1Half)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open("this-path-must-not-be-opened", tt.opts...)
			if err == nil {
				t.Fatal("Open succeeded with an invalid configuration")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Open error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestOpenMissingDevice(t *testing.T) {
	_, err := Open("/dev/serial-device-that-does-not-exist-0")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Open error = %v, want ErrDeviceNotFound", err)
	}
}

func TestNoTimeoutSentinel(t *testing.T) {
	// The sentinel must stay negative so positive durations and zero keep
	// their meanings.
	if NoTimeout >= 0 {
		t.Errorf("NoTimeout = %v, must be negative", NoTimeout)
	}
}

func TestDeadlineFor(t *testing.T) {
	if !deadlineFor(NoTimeout).IsZero() {
		t.Error("deadlineFor(NoTimeout) must be the zero time")
	}

	before := time.Now()
	deadline := deadlineFor(time.Second)
	if deadline.Before(before.Add(time.Second)) {
		t.Errorf("deadlineFor(1s) = %v, too early", deadline)
	}
	if deadline.After(before.Add(2 * time.Second)) {
		t.Errorf("deadlineFor(1s) = %v, too late", deadline)
	}

	if expired(time.Time{}) {
		t.Error("the zero deadline must never expire")
	}
	if !expired(time.Now().Add(-time.Millisecond)) {
		t.Error("a past deadline must read as expired")
	}
	if expired(time.Now().Add(time.Hour)) {
		t.Error("a future deadline must not read as expired")
	}
}
