package serial

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Predefined error types for robust error handling
var (
	ErrDeviceNotFound   = errors.New("serial device not found")
	ErrPermissionDenied = errors.New("permission denied accessing serial device")
	ErrDeviceInUse      = errors.New("serial device already in use")
	ErrNotSerialDevice  = errors.New("not a serial device")
	ErrInvalidBaudRate  = errors.New("invalid baud rate")
	ErrInvalidConfig    = errors.New("invalid serial configuration")
	ErrPortClosed       = errors.New("serial port is closed")
	ErrWriteTimeout     = errors.New("write operation timed out")
)

// ConnectionError reports a device that could not be opened or configured.
// Kind is one of the sentinel errors above when the cause is recognised;
// Err is the underlying OS error.
type ConnectionError struct {
	Device string
	Kind   error
	Err    error
}

func (e *ConnectionError) Error() string {
	if e.Kind != nil {
		return fmt.Sprintf("open %s: %v: %v", e.Device, e.Kind, e.Err)
	}
	return fmt.Sprintf("open %s: %v", e.Device, e.Err)
}

func (e *ConnectionError) Unwrap() []error {
	if e.Kind != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Err}
}

// newConnectionError classifies an errno from open(2) or the termios setup.
func newConnectionError(device string, err error) *ConnectionError {
	var kind error
	switch {
	case errors.Is(err, unix.ENOENT), errors.Is(err, unix.ENODEV), errors.Is(err, unix.ENXIO):
		kind = ErrDeviceNotFound
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		kind = ErrPermissionDenied
	case errors.Is(err, unix.EBUSY):
		kind = ErrDeviceInUse
	case errors.Is(err, unix.ENOTTY):
		kind = ErrNotSerialDevice
	}
	return &ConnectionError{Device: device, Kind: kind, Err: err}
}
