// Package session relays bytes between the local terminal and a serial
// channel and answers "@bot" lines arriving on the channel.
//
// A Session runs on a single goroutine. Each iteration waits a bounded time
// for input, then serves the console and the channel in that order, so
// neither side can starve the other.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allbin/serterm/internal/bot"
	"github.com/allbin/serterm/internal/charset"
	"github.com/allbin/serterm/internal/linebuf"
	"github.com/allbin/serterm/internal/newline"
)

// Keys with local meaning.
const (
	KeyInterrupt = 0x03 // Ctrl+C ends the session
	KeyClear     = 0x0c // Ctrl+L clears the screen
)

// ClearScreen erases the display and homes the cursor.
var ClearScreen = []byte("\x1b[2J\x1b[H")

// Channel is the serial link.
type Channel interface {
	io.ReadWriteCloser
}

// Console is the local terminal. MakeRaw and Restore bracket the session.
type Console interface {
	io.Reader
	io.Writer
	MakeRaw() error
	Restore() error
}

// Session owns a console, a channel and the line reassembler for the
// lifetime of one Run.
type Session struct {
	id      string
	console Console
	channel Channel
	waiter  Waiter

	responder *bot.Responder
	lines     *linebuf.Reassembler
	charset   *charset.Charset
	encoder   *charset.Encoder

	botMode      bool
	pollInterval time.Duration
	replyDelay   time.Duration
	chunkSize    int
	sleep        func(time.Duration)
	logger       *slog.Logger

	ran bool
}

// New prepares a session. Unless WithWaiter is given, both console and
// channel must expose Fd() so they can be polled.
func New(console Console, channel Channel, opts ...Option) (*Session, error) {
	s := &Session{
		id:           uuid.NewString(),
		console:      console,
		channel:      channel,
		responder:    bot.New(),
		lines:        linebuf.New(),
		charset:      charset.Raw,
		pollInterval: DefaultPollInterval,
		replyDelay:   DefaultReplyDelay,
		chunkSize:    DefaultChunkSize,
		sleep:        time.Sleep,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.waiter == nil {
		cfd, ok1 := console.(fder)
		pfd, ok2 := channel.(fder)
		if !ok1 || !ok2 {
			return nil, ErrNoWaiter
		}
		s.waiter = newPollWaiter(cfd.Fd(), pfd.Fd())
	}

	s.encoder = s.charset.NewEncoder()
	s.logger = s.logger.With("session", s.id)
	return s, nil
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Run switches the console to raw mode and relays until Ctrl+C, console
// EOF, ctx cancellation, or an I/O failure. The console mode is restored
// and the channel closed exactly once before Run returns, including when
// the loop panics. A clean exit returns nil.
func (s *Session) Run(ctx context.Context) (err error) {
	if s.ran {
		return ErrAlreadyRun
	}
	s.ran = true

	if err := s.console.MakeRaw(); err != nil {
		return errors.Join(err, s.closeChannel())
	}
	s.logger.Info("session started", "bot", s.botMode, "charset", s.charset.Name())

	defer func() {
		terr := s.teardown()
		if err == nil {
			err = terr
		}
	}()

	return s.loop(ctx)
}

func (s *Session) teardown() error {
	var errs []error
	if err := s.console.Restore(); err != nil {
		errs = append(errs, fmt.Errorf("restore console: %w", err))
	}
	if err := s.closeChannel(); err != nil {
		errs = append(errs, err)
	}
	if partial := s.lines.Pending(); len(partial) > 0 {
		s.logger.Debug("discarding unterminated line", "bytes", len(partial))
	}
	if n := s.encoder.Pending(); n > 0 {
		s.logger.Debug("discarding incomplete keystroke", "bytes", n)
	}
	s.logger.Info("session ended")
	return errors.Join(errs...)
}

func (s *Session) closeChannel() error {
	if err := s.channel.Close(); err != nil {
		return fmt.Errorf("close serial port: %w", err)
	}
	return nil
}

func (s *Session) loop(ctx context.Context) error {
	key := make([]byte, 1)
	chunk := make([]byte, s.chunkSize)

	for {
		if err := ctx.Err(); err != nil {
			s.logger.Debug("context done", "cause", context.Cause(ctx))
			return nil
		}

		ready, err := s.waiter.Wait(s.pollInterval)
		if err != nil {
			return fmt.Errorf("wait for input: %w", err)
		}

		exiting := false
		if ready.Console {
			if exiting, err = s.handleKey(key); err != nil {
				return err
			}
		}
		// Serial data that arrived alongside the exit key is still shown
		if ready.Channel {
			if err := s.handleChannel(chunk); err != nil {
				return err
			}
		}
		if exiting {
			return nil
		}
	}
}

// handleKey reads one keystroke and reports whether the session should end.
func (s *Session) handleKey(key []byte) (bool, error) {
	n, err := s.console.Read(key)
	if err != nil {
		if errors.Is(err, io.EOF) {
			s.logger.Debug("console closed")
			return true, nil
		}
		return false, fmt.Errorf("read from console: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	switch b := key[0]; b {
	case KeyInterrupt:
		s.logger.Debug("interrupt key")
		return true, nil
	case KeyClear:
		return false, s.display(ClearScreen)
	case newline.CR:
		if err := s.transmit(newline.CRLF); err != nil {
			return false, err
		}
		return false, s.display(newline.CRLF)
	default:
		if out := s.encoder.Encode(key[:1]); len(out) > 0 {
			if err := s.transmit(out); err != nil {
				return false, err
			}
		}
		return false, s.display(key[:1])
	}
}

func (s *Session) handleChannel(chunk []byte) error {
	n, err := s.channel.Read(chunk)
	if err != nil {
		return fmt.Errorf("read from serial port: %w", err)
	}
	if n == 0 {
		return nil
	}
	data := chunk[:n]

	if err := s.display(s.charset.Decode(newline.ToDisplay(data))); err != nil {
		return err
	}
	if !s.botMode {
		return nil
	}

	for _, line := range s.lines.Feed(data) {
		if line.Continued || !bot.IsCommand(line.Text) {
			continue
		}
		if err := s.answer(line.Text); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) answer(line string) error {
	reply, rule := s.responder.Respond(line)
	s.logger.Debug("bot command", "line", line, "rule", rule)

	s.sleep(s.replyDelay)
	if err := s.transmit([]byte(reply + "\r\n")); err != nil {
		return err
	}
	return s.display(s.charset.Decode([]byte("\r\n[BOT] " + reply + "\r\n")))
}

func (s *Session) transmit(p []byte) error {
	if _, err := s.channel.Write(p); err != nil {
		return fmt.Errorf("write to serial port: %w", err)
	}
	return nil
}

func (s *Session) display(p []byte) error {
	if _, err := s.console.Write(p); err != nil {
		return fmt.Errorf("write to console: %w", err)
	}
	return nil
}
