package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serial "github.com/allbin/serterm"
	"github.com/allbin/serterm/internal/charset"
	"github.com/allbin/serterm/internal/watch"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	return v
}

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := loadSettings(newTestViper())
	require.NoError(t, err)

	assert.Equal(t, "/dev/tnt0", s.Device)
	assert.Equal(t, 9600, s.Baud)
	assert.False(t, s.Bot)
	assert.True(t, s.Charset.IsRaw())
	assert.Equal(t, 100*time.Millisecond, s.PollInterval)
	assert.Equal(t, 100*time.Millisecond, s.ReplyDelay)
	assert.Equal(t, 256, s.ChunkSize)
	assert.Equal(t, slog.LevelWarn, s.LogLevel)
	assert.True(t, filepath.IsAbs(s.WatchFile))
	assert.Equal(t, "ser_b.out", filepath.Base(s.WatchFile))
}

func TestLoadSettingsEnv(t *testing.T) {
	t.Setenv("SERTERM_DEVICE", "/dev/tnt1")
	t.Setenv("SERTERM_BAUD", "19200")
	t.Setenv("SERTERM_BOT", "true")
	t.Setenv("SERTERM_REPLY_DELAY", "0s")

	s, err := loadSettings(newTestViper())
	require.NoError(t, err)
	assert.Equal(t, "/dev/tnt1", s.Device)
	assert.Equal(t, 19200, s.Baud)
	assert.True(t, s.Bot)
	assert.Zero(t, s.ReplyDelay)
}

func TestLoadSettingsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serterm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
device: /dev/ttyUSB0
charset: macroman
poll_interval: 250ms
chunk_size: 64
log_level: debug
`), 0o644))

	v := newTestViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	s, err := loadSettings(v)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", s.Device)
	assert.Equal(t, "macroman", s.Charset.Name())
	assert.Equal(t, 250*time.Millisecond, s.PollInterval)
	assert.Equal(t, 64, s.ChunkSize)
	assert.Equal(t, slog.LevelDebug, s.LogLevel)
}

func TestLoadSettingsInvalid(t *testing.T) {
	tests := []struct {
		key   string
		value any
	}{
		{keyCharset, "ebcdic"},
		{keyLogLevel, "loud"},
		{keyDevice, ""},
		{keyPollInterval, "0s"},
		{keyReplyDelay, "-1s"},
		{keyChunkSize, 0},
	}
	for _, tt := range tests {
		v := newTestViper()
		v.Set(tt.key, tt.value)
		_, err := loadSettings(v)
		assert.Error(t, err, "%s=%v", tt.key, tt.value)
	}
}

func TestBindFlags(t *testing.T) {
	c := &cobra.Command{Use: "x", Run: func(*cobra.Command, []string) {}}
	c.Flags().Int("chunk-size", 256, "")
	c.Flags().Bool("bot", false, "")
	require.NoError(t, c.Flags().Parse([]string{"--chunk-size=64", "--bot"}))

	v := newTestViper()
	require.NoError(t, bindFlags(v, c))
	assert.Equal(t, 64, v.GetInt(keyChunkSize))
	assert.True(t, v.GetBool(keyBot))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x", "y"), expandHome("~/x/y"))
	assert.Equal(t, "/abs", expandHome("/abs"))
	assert.Equal(t, "rel~", expandHome("rel~"))
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want []byte
	}{
		{"48656C6C6F", []byte("Hello")},
		{"48 65 6c 6c 6f", []byte("Hello")},
		{"0x1B 0x5B", []byte{0x1b, 0x5b}},
	}
	for _, tt := range tests {
		got, err := parseHex(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"", "abc", "zz"} {
		_, err := parseHex(bad)
		assert.Error(t, err, bad)
	}
}

func TestBuildPayload(t *testing.T) {
	macroman, err := charset.Lookup("macroman")
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		fromFile bool
		hex      bool
		cs       *charset.Charset
		want     string
	}{
		{"text gets CR LF", "Hello", false, false, charset.Raw, "Hello\r\n"},
		{"text ending in LF expanded", "a\nb\n", false, false, charset.Raw, "a\r\nb\r\n"},
		{"file normalised", "a\rb\nc\r\n", true, false, charset.Raw, "a\r\nb\r\nc\r\n"},
		{"hex verbatim", "0d0a", false, true, charset.Raw, "\r\n"},
		{"charset applied", "café", false, false, macroman, "caf\x8e\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildPayload([]byte(tt.input), tt.fromFile, tt.hex, tt.cs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "hi··", preview([]byte("hi\r\n")))
	long := bytes.Repeat([]byte("a"), 60)
	assert.Equal(t, string(long[:50])+"...", preview(long))
}

func openRemote(t *testing.T) (remote *os.File, device string) {
	t.Helper()
	master, slave, err := pty.Open()
	if err != nil {
		t.Skipf("pty not available: %v", err)
	}
	t.Cleanup(func() { slave.Close(); master.Close() })
	return master, slave.Name()
}

func TestSendData(t *testing.T) {
	remote, device := openRemote(t)

	var out bytes.Buffer
	require.NoError(t, sendData(&out, device, []byte("@bot ping\r\n")))
	assert.Contains(t, out.String(), "Sent 11 bytes")

	buf := make([]byte, 11)
	_, err := io.ReadFull(remote, buf)
	require.NoError(t, err)
	assert.Equal(t, "@bot ping\r\n", string(buf))
}

func TestSendDataMissingDevice(t *testing.T) {
	err := sendData(io.Discard, "/dev/nonexistent-tnt", []byte("x"))
	assert.ErrorIs(t, err, serial.ErrDeviceNotFound)
}

func TestCapture(t *testing.T) {
	remote, device := openRemote(t)
	port, err := serial.Open(device)
	require.NoError(t, err)
	defer port.Close()

	ctx, cancel := context.WithCancel(context.Background())
	var out, console bytes.Buffer
	done := make(chan error, 1)
	var written int64
	go func() {
		var err error
		written, err = capture(ctx, port, &out, &console, 8, 10*time.Millisecond)
		done <- err
	}()

	_, err = remote.Write([]byte("hello from the remote"))
	require.NoError(t, err)

	time.Sleep(200 * time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, "hello from the remote", out.String())
	assert.Equal(t, out.String(), console.String())
	assert.Equal(t, int64(21), written)
}

func TestWaitReadable(t *testing.T) {
	_, device := openRemote(t)
	port, err := serial.Open(device)
	require.NoError(t, err)
	defer port.Close()

	start := time.Now()
	require.NoError(t, waitReadable(port.Fd(), 30*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestFilterPorts(t *testing.T) {
	ports := []string{"/dev/tnt0", "/dev/tnt1", "/dev/ttyUSB0", "/dev/ttyACM0", "/dev/ttyS0", "/dev/ttyAMA0", "/dev/ttySAC0"}

	assert.Equal(t, ports, filterPorts(ports, ""))
	assert.Equal(t, ports, filterPorts(ports, "all"))
	assert.Equal(t, []string{"/dev/tnt0", "/dev/tnt1"}, filterPorts(ports, "null-modem"))
	assert.Equal(t, []string{"/dev/ttyUSB0", "/dev/ttyACM0"}, filterPorts(ports, "usb"))
	assert.Equal(t, []string{"/dev/ttyS0"}, filterPorts(ports, "standard"))
	assert.Equal(t, []string{"/dev/ttyAMA0"}, filterPorts(ports, "ARM"))

	assert.True(t, validFilter("null-modem"))
	assert.False(t, validFilter("bluetooth"))
}

func TestGetPortType(t *testing.T) {
	assert.Equal(t, "Null-Modem", getPortType("tnt0"))
	assert.Equal(t, "USB Serial", getPortType("ttyUSB0"))
	assert.Equal(t, "Samsung Serial", getPortType("ttySAC1"))
	assert.Equal(t, "Standard Serial", getPortType("ttyS3"))
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	printBanner(&buf, settings{Device: "/dev/tnt0", Baud: 9600, Bot: true, Charset: charset.Raw})

	out := buf.String()
	assert.Contains(t, out, "Connected to /dev/tnt0 at 9600 baud")
	assert.Contains(t, out, "Bot mode enabled - will respond to @bot messages")
	assert.Contains(t, out, "Press Ctrl+C to exit, Ctrl+L to clear screen")
	assert.Contains(t, out, "----------------------------------------")

	buf.Reset()
	printBanner(&buf, settings{Device: "/dev/tnt0", Baud: 9600, Charset: charset.Raw})
	assert.NotContains(t, buf.String(), "Bot mode")
}

func TestPrintOpenHints(t *testing.T) {
	_, err := serial.Open("/dev/nonexistent-tnt")
	var connErr *serial.ConnectionError
	require.ErrorAs(t, err, &connErr)

	var buf bytes.Buffer
	printOpenHints(&buf, connErr)
	assert.Contains(t, buf.String(), "sudo modprobe tty0tty")
}

func TestWriteWatchEvent(t *testing.T) {
	var buf bytes.Buffer
	writeWatchEvent(&buf, watch.Event{Kind: watch.Data, Data: []byte("one\r\ntwo\r")}, charset.Raw, "f")
	writeWatchEvent(&buf, watch.Event{Kind: watch.Waiting}, charset.Raw, "f")
	assert.Equal(t, "one\ntwo\n", buf.String())
}

func TestNotifyShutdownOnInterrupt(t *testing.T) {
	for _, sig := range []syscall.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP} {
		ctx, stop := notifyShutdown(context.Background())
		require.NoError(t, syscall.Kill(os.Getpid(), sig))

		select {
		case <-ctx.Done():
		case <-time.After(2 * time.Second):
			t.Fatalf("%v did not cancel the session context", sig)
		}
		stop()
	}
}
