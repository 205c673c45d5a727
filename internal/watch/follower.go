// Package watch follows a growing capture file, such as the output an
// emulator writes for its second serial port.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	DefaultInterval  = 100 * time.Millisecond
	DefaultChunkSize = 256
)

// EventKind distinguishes follower notifications.
type EventKind int

const (
	// Data carries bytes appended to the file.
	Data EventKind = iota
	// Waiting means the file does not exist yet.
	Waiting
	// Truncated means the file shrank or was replaced; reading restarts at
	// offset zero.
	Truncated
)

func (k EventKind) String() string {
	switch k {
	case Data:
		return "data"
	case Waiting:
		return "waiting"
	case Truncated:
		return "truncated"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one notification from a Follower. Data is only set for Data
// events and is owned by the receiver.
type Event struct {
	Kind EventKind
	Data []byte
}

// Follower reads bytes appended to a file. Change notifications come from
// fsnotify; a ticker covers filesystems where those are not delivered.
type Follower struct {
	path      string
	fromStart bool
	interval  time.Duration
	chunkSize int
	logger    *slog.Logger

	file    *os.File
	offset  int64
	waiting bool
}

// Option configures a Follower.
type Option func(*Follower)

// FromStart replays existing content instead of starting at the end.
func FromStart(enabled bool) Option {
	return func(f *Follower) { f.fromStart = enabled }
}

// WithInterval sets the polling fallback period.
func WithInterval(d time.Duration) Option {
	return func(f *Follower) {
		if d > 0 {
			f.interval = d
		}
	}
}

// WithChunkSize sets the largest Data event.
func WithChunkSize(n int) Option {
	return func(f *Follower) {
		if n > 0 {
			f.chunkSize = n
		}
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(f *Follower) {
		if l != nil {
			f.logger = l
		}
	}
}

// New returns a Follower for path. Nothing is opened until Run.
func New(path string, opts ...Option) *Follower {
	f := &Follower{
		path:      filepath.Clean(path),
		interval:  DefaultInterval,
		chunkSize: DefaultChunkSize,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Path returns the followed file.
func (f *Follower) Path() string { return f.path }

// Run delivers events to emit until ctx is cancelled. emit is called from
// Run's goroutine. A cancelled context is not an error.
func (f *Follower) Run(ctx context.Context, emit func(Event)) error {
	defer f.closeFile()

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	var events <-chan fsnotify.Event
	var errs <-chan error
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		f.logger.Warn("file notifications unavailable, polling only", "error", err)
	} else {
		defer watcher.Close()
		// The directory is watched so creation and replacement are seen too
		if err := watcher.Add(filepath.Dir(f.path)); err != nil {
			f.logger.Warn("cannot watch directory, polling only", "dir", filepath.Dir(f.path), "error", err)
		} else {
			events, errs = watcher.Events, watcher.Errors
		}
	}

	first := true
	for {
		if err := f.poll(first, emit); err != nil {
			return err
		}
		first = false

		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) != f.path {
				continue
			}
			f.logger.Debug("file event", "op", ev.Op.String())
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			f.logger.Warn("watch error", "error", err)
		case <-ticker.C:
		}
	}
}

// poll opens the file if needed and emits everything past the offset.
func (f *Follower) poll(first bool, emit func(Event)) error {
	if f.file == nil {
		file, err := os.Open(f.path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				if !f.waiting {
					f.waiting = true
					emit(Event{Kind: Waiting})
				}
				return nil
			}
			return fmt.Errorf("open %s: %w", f.path, err)
		}
		f.file = file
		f.offset = 0
		// A file that appears after we started waiting is read in full
		if first && !f.fromStart {
			info, err := file.Stat()
			if err != nil {
				return fmt.Errorf("stat %s: %w", f.path, err)
			}
			f.offset = info.Size()
		}
		f.waiting = false
		f.logger.Debug("following file", "path", f.path, "offset", f.offset)
	}

	if err := f.checkReplaced(emit); err != nil {
		return err
	}
	if f.file == nil {
		return nil
	}
	return f.readAppended(emit)
}

// checkReplaced rewinds on truncation and reopens on replacement.
func (f *Follower) checkReplaced(emit func(Event)) error {
	current, err := os.Stat(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Removed; the next poll waits for it to reappear
			f.closeFile()
			return nil
		}
		return fmt.Errorf("stat %s: %w", f.path, err)
	}

	opened, err := f.file.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", f.path, err)
	}
	switch {
	case !os.SameFile(current, opened):
		f.closeFile()
		file, err := os.Open(f.path)
		if err != nil {
			return nil
		}
		f.file = file
		f.offset = 0
		emit(Event{Kind: Truncated})
	case opened.Size() < f.offset:
		f.offset = 0
		emit(Event{Kind: Truncated})
	}
	return nil
}

func (f *Follower) readAppended(emit func(Event)) error {
	buf := make([]byte, f.chunkSize)
	for {
		n, err := f.file.ReadAt(buf, f.offset)
		if n > 0 {
			f.offset += int64(n)
			emit(Event{Kind: Data, Data: append([]byte(nil), buf[:n]...)})
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read %s: %w", f.path, err)
		}
	}
}

func (f *Follower) closeFile() {
	if f.file != nil {
		f.file.Close()
		f.file = nil
	}
}
