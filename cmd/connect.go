/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	serial "github.com/allbin/serterm"
	"github.com/allbin/serterm/internal/logging"
	"github.com/allbin/serterm/internal/rawterm"
	"github.com/allbin/serterm/internal/session"
	"github.com/allbin/serterm/internal/tui/styles"
)

// connectCmd represents the connect command
var connectCmd = &cobra.Command{
	Use:   "connect [device]",
	Short: "Open an interactive session on a serial line",
	Long: `Open an interactive session on a serial line.

The local terminal is switched to raw mode: every key is sent as typed, Enter
sends CR LF, and whatever arrives on the line is printed as it comes in.
Press Ctrl+C to exit and Ctrl+L to clear the screen.

With --bot, lines arriving from the remote that start with "@bot" are
answered automatically:
  @bot hello        Hello from the host machine!
  @bot time         Current time: HH:MM:SS
  @bot date         Today is YYYY-MM-DD
  @bot ping         Pong!
  @bot echo <text>  <text>
  @bot help         list of commands

Example usage:
  serterm connect
  serterm connect /dev/tnt0 --bot
  serterm connect /dev/ttyUSB0 --baud 19200 --charset macroman`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := mustSettings()
		if len(args) == 1 {
			s.Device = args[0]
		}

		if err := runConnect(s); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			var connErr *serial.ConnectionError
			if errors.As(err, &connErr) {
				printOpenHints(os.Stderr, connErr)
			}
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)

	connectCmd.Flags().Bool("bot", false, "Answer @bot messages from the remote")
	connectCmd.Flags().Duration("poll-interval", session.DefaultPollInterval, "Longest wait for input per loop iteration")
	connectCmd.Flags().Duration("reply-delay", session.DefaultReplyDelay, "Pause before a bot reply is sent")
	connectCmd.Flags().Int("chunk-size", session.DefaultChunkSize, "Largest serial read per loop iteration")
}

func runConnect(s settings) error {
	if !rawterm.IsTerminal(os.Stdin) {
		return errors.New("connect needs an interactive terminal on stdin; use send to pipe data")
	}

	port, err := serial.Open(s.Device, serial.WithBaudRate(s.Baud))
	if err != nil {
		return err
	}

	// stderr shares the screen with the session, so logs go to a file or nowhere
	logger, closeLog, err := logging.Open(s.LogFile, s.LogLevel)
	if err != nil {
		port.Close()
		return err
	}
	defer closeLog()

	sess, err := session.New(rawterm.New(os.Stdin, os.Stdout), port,
		session.WithBotMode(s.Bot),
		session.WithPollInterval(s.PollInterval),
		session.WithReplyDelay(s.ReplyDelay),
		session.WithChunkSize(s.ChunkSize),
		session.WithCharset(s.Charset),
		session.WithLogger(logger.With("device", s.Device)),
	)
	if err != nil {
		port.Close()
		return err
	}

	logger.Info("connected", "device", s.Device, "baud", s.Baud, "session", sess.ID())
	printBanner(os.Stdout, s)

	ctx, stop := notifyShutdown(context.Background())
	defer stop()

	err = sess.Run(ctx)
	fmt.Fprint(os.Stdout, "\r\nDisconnected.\n")
	return err
}

// notifyShutdown cancels the returned context on any signal that would
// otherwise kill the process with the terminal still raw. Ctrl+C typed in
// the session arrives as a byte, not as SIGINT.
func notifyShutdown(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
}

func printBanner(w io.Writer, s settings) {
	fmt.Fprintln(w, styles.BannerStyle.Render(fmt.Sprintf("Connected to %s at %d baud", s.Device, s.Baud)))
	if !s.Charset.IsRaw() {
		fmt.Fprintln(w, styles.HintStyle.Render("Remote charset: "+s.Charset.Name()))
	}
	if s.Bot {
		fmt.Fprintln(w, styles.BotStyle.Render("Bot mode enabled - will respond to @bot messages"))
	}
	fmt.Fprintln(w, styles.HintStyle.Render("Press Ctrl+C to exit, Ctrl+L to clear screen"))
	fmt.Fprintln(w, styles.RuleStyle.Render(strings.Repeat("-", 40)))
}

// printOpenHints suggests fixes for a device that could not be opened,
// with the tty0tty null-modem driver in mind.
func printOpenHints(w io.Writer, err *serial.ConnectionError) {
	var hints []string
	switch {
	case errors.Is(err, serial.ErrDeviceNotFound):
		hints = []string{
			"Make sure the tty0tty module is loaded:",
			"  sudo modprobe tty0tty",
		}
	case errors.Is(err, serial.ErrPermissionDenied):
		hints = []string{
			"Make sure the device is accessible:",
			"  sudo chmod 666 /dev/tnt*",
		}
	case errors.Is(err, serial.ErrDeviceInUse):
		hints = []string{"Another program has the device open."}
	default:
		hints = []string{
			"Make sure tty0tty is loaded and the device is accessible:",
			"  sudo modprobe tty0tty",
			"  sudo chmod 666 /dev/tnt*",
		}
	}
	for _, h := range hints {
		fmt.Fprintln(w, styles.HintStyle.Render(h))
	}
}
