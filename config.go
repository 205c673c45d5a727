package serial

import (
	"fmt"
	"time"
)

// DefaultBaudRate matches the modem port of the emulated machine.
const DefaultBaudRate = 9600

// Parity represents the parity mode
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
)

func (p Parity) String() string {
	switch p {
	case ParityOdd:
		return "O"
	case ParityEven:
		return "E"
	default:
		return "N"
	}
}

// Config holds the configuration for a serial port
type Config struct {
	BaudRate     int
	DataBits     int
	StopBits     int
	Parity       Parity
	WriteTimeout time.Duration // how long Write waits for the device to accept bytes
}

// Option is a functional option for configuring a serial port
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaudRate:     DefaultBaudRate,
		DataBits:     8,
		StopBits:     1,
		Parity:       ParityNone,
		WriteTimeout: 2 * time.Second,
	}
}

// Mode renders the frame format, e.g. "8N1".
func (c Config) Mode() string {
	return fmt.Sprintf("%d%s%d", c.DataBits, c.Parity, c.StopBits)
}

// WithBaudRate sets the baud rate
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if _, err := getBaudRate(rate); err != nil {
			return err
		}
		c.BaudRate = rate
		return nil
	}
}

// WithDataBits sets the number of data bits (5, 6, 7, or 8)
func WithDataBits(bits int) Option {
	return func(c *Config) error {
		if bits < 5 || bits > 8 {
			return ErrInvalidConfig
		}
		c.DataBits = bits
		return nil
	}
}

// WithStopBits sets the number of stop bits (1 or 2)
func WithStopBits(bits int) Option {
	return func(c *Config) error {
		if bits != 1 && bits != 2 {
			return ErrInvalidConfig
		}
		c.StopBits = bits
		return nil
	}
}

// WithParity sets the parity mode
func WithParity(parity Parity) Option {
	return func(c *Config) error {
		switch parity {
		case ParityNone, ParityOdd, ParityEven:
			c.Parity = parity
			return nil
		default:
			return ErrInvalidConfig
		}
	}
}

// WithWriteTimeout bounds how long a write may wait for the device to drain.
// Zero waits forever.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout < 0 {
			return ErrInvalidConfig
		}
		c.WriteTimeout = timeout
		return nil
	}
}
