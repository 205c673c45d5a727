package session

import (
	"log/slog"
	"time"

	"github.com/allbin/serterm/internal/bot"
	"github.com/allbin/serterm/internal/charset"
)

const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultReplyDelay   = 100 * time.Millisecond
	DefaultChunkSize    = 256
)

// Option configures a Session.
type Option func(*Session) error

// WithBotMode enables answering "@bot" lines.
func WithBotMode(enabled bool) Option {
	return func(s *Session) error {
		s.botMode = enabled
		return nil
	}
}

// WithPollInterval bounds each readiness wait.
func WithPollInterval(d time.Duration) Option {
	return func(s *Session) error {
		if d <= 0 {
			return ErrInvalidOption
		}
		s.pollInterval = d
		return nil
	}
}

// WithReplyDelay sets the pause before a bot reply is transmitted.
func WithReplyDelay(d time.Duration) Option {
	return func(s *Session) error {
		if d < 0 {
			return ErrInvalidOption
		}
		s.replyDelay = d
		return nil
	}
}

// WithChunkSize sets the largest serial read per iteration.
func WithChunkSize(n int) Option {
	return func(s *Session) error {
		if n <= 0 {
			return ErrInvalidOption
		}
		s.chunkSize = n
		return nil
	}
}

// WithLogger sets the logger. The session adds its ID to every record.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) error {
		if l == nil {
			return ErrInvalidOption
		}
		s.logger = l
		return nil
	}
}

// WithResponder replaces the default @bot rule table.
func WithResponder(r *bot.Responder) Option {
	return func(s *Session) error {
		if r == nil {
			return ErrInvalidOption
		}
		s.responder = r
		return nil
	}
}

// WithCharset sets the remote character set.
func WithCharset(cs *charset.Charset) Option {
	return func(s *Session) error {
		if cs == nil {
			return ErrInvalidOption
		}
		s.charset = cs
		return nil
	}
}

// WithSleep replaces time.Sleep for the reply delay.
func WithSleep(sleep func(time.Duration)) Option {
	return func(s *Session) error {
		if sleep == nil {
			return ErrInvalidOption
		}
		s.sleep = sleep
		return nil
	}
}

// WithWaiter replaces the poll(2) based readiness wait.
func WithWaiter(w Waiter) Option {
	return func(s *Session) error {
		if w == nil {
			return ErrInvalidOption
		}
		s.waiter = w
		return nil
	}
}
