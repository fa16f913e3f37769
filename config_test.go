package serial

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.BaudRate != 115200 {
		t.Errorf("Expected BaudRate 115200, got %d", config.BaudRate)
	}
	if config.DataBits != 8 {
		t.Errorf("Expected DataBits 8, got %d", config.DataBits)
	}
	if config.StopBits != StopBits1 {
		t.Errorf("Expected StopBits1, got %v", config.StopBits)
	}
	if config.Parity != ParityNone {
		t.Errorf("Expected Parity None, got %v", config.Parity)
	}
	if config.FlowControl != FlowControlNone {
		t.Errorf("Expected FlowControl None, got %v", config.FlowControl)
	}
	if config.ReadTimeout != NoTimeout {
		t.Errorf("Expected ReadTimeout NoTimeout, got %v", config.ReadTimeout)
	}
	if config.WriteTimeout != NoTimeout {
		t.Errorf("Expected WriteTimeout NoTimeout, got %v", config.WriteTimeout)
	}
	if config.InitialDTR != nil || config.InitialRTS != nil {
		t.Error("Default config must leave the modem lines untouched")
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Default config failed validation: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{"default valid", func(c *Config) {}, ""},
		{"7E1", func(c *Config) {
			c.DataBits = 7
			c.Parity = ParityEven
		}, ""},
		{"5 data bits with 1.5 stop bits", func(c *Config) {
			c.DataBits = 5
			c.StopBits = StopBits1Half
		}, ""},
		{"software flow control", func(c *Config) {
			c.FlowControl = FlowControlSoftware
		}, ""},
		{"bounded timeouts", func(c *Config) {
			c.ReadTimeout = 150 * time.Millisecond
			c.WriteTimeout = time.Microsecond
		}, ""},
		{"zero timeouts", func(c *Config) {
			c.ReadTimeout = 0
			c.WriteTimeout = 0
		}, ""},
		{"zero baud rate", func(c *Config) {
			c.BaudRate = 0
		}, "BaudRate"},
		{"negative baud rate", func(c *Config) {
			c.BaudRate = -9600
		}, "BaudRate"},
		{"data bits too small", func(c *Config) {
			c.DataBits = 4
		}, "DataBits"},
		{"data bits too large", func(c *Config) {
			c.DataBits = 9
		}, "DataBits"},
		{"1.5 stop bits with 8 data bits", func(c *Config) {
			c.StopBits = StopBits1Half
		}, "StopBits"},
		{"unknown stop bits", func(c *Config) {
			c.StopBits = StopBits(42)
		}, "StopBits"},
		{"unknown parity", func(c *Config) {
			c.Parity = Parity(42)
		}, "Parity"},
		{"unknown flow control", func(c *Config) {
			c.FlowControl = FlowControl(42)
		}, "FlowControl"},
		{"read timeout below NoTimeout", func(c *Config) {
			c.ReadTimeout = -2 * time.Second
		}, "ReadTimeout"},
		{"write timeout below NoTimeout", func(c *Config) {
			c.WriteTimeout = -2 * time.Second
		}, "WriteTimeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(&config)
			err := config.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error %v does not wrap ErrInvalidConfig", err)
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() error %v is not a ConfigError", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("ConfigError.Field = %q, want %q", cfgErr.Field, tt.wantField)
			}
		})
	}
}

func TestFunctionalOptions(t *testing.T) {
	config := DefaultConfig()

	opts := []Option{
		WithBaudRate(9600),
		WithDataBits(7),
		WithStopBits(StopBits2),
		WithParity(ParityEven),
		WithFlowControl(FlowControlHardware),
		WithReadTimeout(250 * time.Millisecond),
		WithWriteTimeout(NoTimeout),
	}
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			t.Fatalf("option failed: %v", err)
		}
	}

	if config.BaudRate != 9600 {
		t.Errorf("Expected BaudRate 9600, got %d", config.BaudRate)
	}
	if config.DataBits != 7 {
		t.Errorf("Expected DataBits 7, got %d", config.DataBits)
	}
	if config.StopBits != StopBits2 {
		t.Errorf("Expected StopBits2, got %v", config.StopBits)
	}
	if config.Parity != ParityEven {
		t.Errorf("Expected Parity Even, got %v", config.Parity)
	}
	if config.FlowControl != FlowControlHardware {
		t.Errorf("Expected FlowControl Hardware, got %v", config.FlowControl)
	}
	if config.ReadTimeout != 250*time.Millisecond {
		t.Errorf("Expected ReadTimeout 250ms, got %v", config.ReadTimeout)
	}
	if config.WriteTimeout != NoTimeout {
		t.Errorf("Expected WriteTimeout NoTimeout, got %v", config.WriteTimeout)
	}
}

func TestOptionValidation(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"zero baud rate", WithBaudRate(0)},
		{"negative baud rate", WithBaudRate(-1)},
		{"data bits 9", WithDataBits(9)},
		{"data bits 4", WithDataBits(4)},
		{"stop bits 42", WithStopBits(StopBits(42))},
		{"read timeout below NoTimeout", WithReadTimeout(-time.Second)},
		{"write timeout below NoTimeout", WithWriteTimeout(-time.Second)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			err := tt.opt(&config)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestWithReadTimeoutModes(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
	}{
		{"immediate", 0},
		{"block forever", NoTimeout},
		{"sub-millisecond", 100 * time.Microsecond},
		{"long", time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			if err := WithReadTimeout(tt.timeout)(&config); err != nil {
				t.Fatalf("WithReadTimeout(%v) error: %v", tt.timeout, err)
			}
			if config.ReadTimeout != tt.timeout {
				t.Errorf("ReadTimeout = %v, want %v", config.ReadTimeout, tt.timeout)
			}
		})
	}
}

func TestWithInitialStates(t *testing.T) {
	for _, state := range []bool{true, false} {
		config := DefaultConfig()
		if err := WithInitialDTR(state)(&config); err != nil {
			t.Fatalf("WithInitialDTR(%v) error: %v", state, err)
		}
		if err := WithInitialRTS(state)(&config); err != nil {
			t.Fatalf("WithInitialRTS(%v) error: %v", state, err)
		}
		if config.InitialDTR == nil || *config.InitialDTR != state {
			t.Errorf("InitialDTR not set to %v", state)
		}
		if config.InitialRTS == nil || *config.InitialRTS != state {
			t.Errorf("InitialRTS not set to %v", state)
		}
	}
}
