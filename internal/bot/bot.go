// Package bot answers "@bot" command lines received over the serial link.
//
// Replies come from an ordered rule table; the first rule whose predicate
// matches the command content wins. The responder keeps no state between
// calls apart from reading its clock.
package bot

import (
	"strings"
	"time"
)

// Prefix marks a line as a bot command. Matching is case-insensitive and
// ignores leading whitespace.
const Prefix = "@bot"

// Clock supplies the current time for the time and date replies.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// Rule pairs a predicate with the reply it produces. Both receive the
// command content with the prefix and surrounding whitespace removed;
// lower is the same content case-folded.
type Rule struct {
	Name  string
	Match func(content, lower string) bool
	Reply func(content string, now time.Time) string
}

const (
	greetingHelp = "Hello! I'm a bot. Send me a message after @bot."
	greeting     = "Hello from the host machine!"
	commandHelp  = "Commands: hello, time, date, ping, echo <text>"
)

// DefaultRules is the built-in command table in precedence order.
var DefaultRules = []Rule{
	{
		Name:  "empty",
		Match: func(content, _ string) bool { return content == "" },
		Reply: func(string, time.Time) string { return greetingHelp },
	},
	{
		Name:  "echo",
		Match: func(content, _ string) bool { return len(content) >= 5 && strings.EqualFold(content[:5], "echo ") },
		Reply: func(content string, _ time.Time) string { return content[len("echo "):] },
	},
	{
		Name:  "greeting",
		Match: containsAny("hello", "hi"),
		Reply: func(string, time.Time) string { return greeting },
	},
	{
		Name:  "time",
		Match: containsAny("time"),
		Reply: func(_ string, now time.Time) string { return "Current time: " + now.Format(time.TimeOnly) },
	},
	{
		Name:  "date",
		Match: containsAny("date"),
		Reply: func(_ string, now time.Time) string { return "Today is " + now.Format(time.DateOnly) },
	},
	{
		Name:  "ping",
		Match: containsAny("ping"),
		Reply: func(string, time.Time) string { return "Pong!" },
	},
	{
		Name:  "help",
		Match: containsAny("help"),
		Reply: func(string, time.Time) string { return commandHelp },
	},
	{
		Name:  "fallback",
		Match: func(string, string) bool { return true },
		Reply: func(content string, _ time.Time) string { return "Received: " + content },
	},
}

func containsAny(keywords ...string) func(string, string) bool {
	return func(_, lower string) bool {
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				return true
			}
		}
		return false
	}
}

// Responder maps command lines to replies.
type Responder struct {
	rules []Rule
	clock Clock
}

// Option configures a Responder.
type Option func(*Responder)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(r *Responder) { r.clock = c }
}

// WithRules replaces the rule table. The table should end with a rule that
// always matches; lines no rule matches get an empty reply.
func WithRules(rules []Rule) Option {
	return func(r *Responder) { r.rules = rules }
}

// New returns a Responder using DefaultRules and the local wall clock.
func New(opts ...Option) *Responder {
	r := &Responder{rules: DefaultRules, clock: realClock{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsCommand reports whether line carries the bot prefix.
func IsCommand(line string) bool {
	trimmed := strings.TrimSpace(line)
	return len(trimmed) >= len(Prefix) && strings.EqualFold(trimmed[:len(Prefix)], Prefix)
}

// Content strips the prefix and surrounding whitespace from a command line.
func Content(line string) string {
	trimmed := strings.TrimSpace(line)
	if IsCommand(trimmed) {
		trimmed = trimmed[len(Prefix):]
	}
	return strings.TrimSpace(trimmed)
}

// Respond returns the reply for a command line and the name of the rule
// that produced it.
func (r *Responder) Respond(line string) (reply, rule string) {
	content := Content(line)
	lower := strings.ToLower(content)
	for _, rl := range r.rules {
		if rl.Match(content, lower) {
			return rl.Reply(content, r.clock.Now()), rl.Name
		}
	}
	return "", ""
}
