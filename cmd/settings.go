/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/allbin/serterm/internal/charset"
	"github.com/allbin/serterm/internal/logging"
)

const (
	envPrefix     = "SERTERM"
	defaultDevice = "/dev/tnt0"
	defaultBaud   = 9600
)

// Config keys. Flags with the same name (dashes for underscores) override
// them.
const (
	keyDevice       = "device"
	keyBaud         = "baud"
	keyBot          = "bot"
	keyCharset      = "charset"
	keyPollInterval = "poll_interval"
	keyReplyDelay   = "reply_delay"
	keyChunkSize    = "chunk_size"
	keyWatchFile    = "watch_file"
	keyLogLevel     = "log_level"
	keyLogFile      = "log_file"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyDevice, defaultDevice)
	v.SetDefault(keyBaud, defaultBaud)
	v.SetDefault(keyBot, false)
	v.SetDefault(keyCharset, "raw")
	v.SetDefault(keyPollInterval, 100*time.Millisecond)
	v.SetDefault(keyReplyDelay, 100*time.Millisecond)
	v.SetDefault(keyChunkSize, 256)
	v.SetDefault(keyWatchFile, "~/Retro68-build/ser_b.out")
	v.SetDefault(keyLogLevel, "warn")
	v.SetDefault(keyLogFile, "")
}

// bindFlags binds the flags of the command being run to their config keys.
// Binding per invocation keeps a flag shared by several commands from being
// claimed by whichever registered last.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Name == "config" {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		err = v.BindPFlag(key, f)
	})
	return err
}

// settings is the resolved configuration of one command invocation.
type settings struct {
	Device       string
	Baud         int
	Bot          bool
	Charset      *charset.Charset
	PollInterval time.Duration
	ReplyDelay   time.Duration
	ChunkSize    int
	WatchFile    string
	LogLevel     slog.Level
	LogFile      string
}

func loadSettings(v *viper.Viper) (settings, error) {
	s := settings{
		Device:       v.GetString(keyDevice),
		Baud:         v.GetInt(keyBaud),
		Bot:          v.GetBool(keyBot),
		PollInterval: v.GetDuration(keyPollInterval),
		ReplyDelay:   v.GetDuration(keyReplyDelay),
		ChunkSize:    v.GetInt(keyChunkSize),
		WatchFile:    expandHome(v.GetString(keyWatchFile)),
		LogFile:      expandHome(v.GetString(keyLogFile)),
	}

	var err error
	if s.Charset, err = charset.Lookup(v.GetString(keyCharset)); err != nil {
		return settings{}, fmt.Errorf("%w (valid: %s)", err, strings.Join(charset.Names(), ", "))
	}
	if s.LogLevel, err = logging.ParseLevel(v.GetString(keyLogLevel)); err != nil {
		return settings{}, err
	}
	if s.Device == "" {
		return settings{}, fmt.Errorf("no serial device configured")
	}
	if s.PollInterval <= 0 {
		return settings{}, fmt.Errorf("poll interval must be positive, got %v", s.PollInterval)
	}
	if s.ReplyDelay < 0 {
		return settings{}, fmt.Errorf("reply delay must not be negative, got %v", s.ReplyDelay)
	}
	if s.ChunkSize <= 0 {
		return settings{}, fmt.Errorf("chunk size must be positive, got %d", s.ChunkSize)
	}
	return s, nil
}

// mustSettings resolves settings for a command or exits.
func mustSettings() settings {
	s, err := loadSettings(viper.GetViper())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return s
}

// commandLogger logs to the configured file, or to stderr for commands
// that do not take over the terminal.
func commandLogger(s settings) (*slog.Logger, func() error, error) {
	if s.LogFile != "" {
		return logging.Open(s.LogFile, s.LogLevel)
	}
	return logging.New(os.Stderr, s.LogLevel), func() error { return nil }, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
