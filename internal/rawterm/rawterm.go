// Package rawterm puts the local terminal into raw mode for the duration of
// a session and puts it back afterwards.
package rawterm

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/term"
)

var (
	ErrNotTerminal = errors.New("input is not a terminal")
	ErrAlreadyRaw  = errors.New("terminal is already in raw mode")
)

// Terminal is the local keyboard and screen. In raw mode keystrokes are
// delivered byte by byte without echo or line editing, and Ctrl+C arrives
// as 0x03 instead of raising SIGINT.
type Terminal struct {
	in  *os.File
	out *os.File

	mu    sync.Mutex
	saved *term.State
}

// New wraps in and out, normally os.Stdin and os.Stdout.
func New(in, out *os.File) *Terminal {
	return &Terminal{in: in, out: out}
}

// MakeRaw snapshots the current mode and switches the input to raw mode.
func (t *Terminal) MakeRaw() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.saved != nil {
		return ErrAlreadyRaw
	}
	fd := int(t.in.Fd())
	if !term.IsTerminal(fd) {
		return ErrNotTerminal
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	t.saved = state
	return nil
}

// Restore reinstates the mode captured by MakeRaw. It does nothing if the
// terminal is not in raw mode, so it is safe to call more than once.
func (t *Terminal) Restore() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.saved == nil {
		return nil
	}
	state := t.saved
	t.saved = nil
	if err := term.Restore(int(t.in.Fd()), state); err != nil {
		return fmt.Errorf("restore terminal mode: %w", err)
	}
	return nil
}

// isRaw reports whether a snapshot is held.
func (t *Terminal) isRaw() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saved != nil
}

func (t *Terminal) Read(p []byte) (int, error) { return t.in.Read(p) }

func (t *Terminal) Write(p []byte) (int, error) { return t.out.Write(p) }

// Fd returns the input descriptor for readiness polling.
func (t *Terminal) Fd() uintptr { return t.in.Fd() }

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
