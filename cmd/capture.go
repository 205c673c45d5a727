/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	serial "github.com/allbin/serterm"
)

// captureCmd represents the capture command
var captureCmd = &cobra.Command{
	Use:   "capture [output-file]",
	Short: "Capture serial data to a file",
	Long: `Capture incoming serial data to a file.

Bytes are written exactly as received. Without an argument the configured
watch file is used, so a second terminal can follow the capture with
"serterm watch". Runs until interrupted (Ctrl+C).

The output file is opened in append mode, allowing you to resume captures
without overwriting existing data.

Example usage:
  serterm capture
  serterm capture session.log -d /dev/tnt1
  serterm capture session.log --console`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := mustSettings()
		outputPath := s.WatchFile
		if len(args) == 1 {
			outputPath = args[0]
		}
		showConsole, _ := cmd.Flags().GetBool("console")

		logger, closeLog, err := commandLogger(s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer closeLog()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var console io.Writer
		if showConsole {
			console = os.Stdout
		}
		if err := runCapture(ctx, s, outputPath, console, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().BoolP("console", "c", false, "Display incoming data on console while capturing")
}

func runCapture(ctx context.Context, s settings, outputPath string, console io.Writer, logger *slog.Logger) error {
	port, err := serial.Open(s.Device, serial.WithBaudRate(s.Baud))
	if err != nil {
		return err
	}
	defer port.Close()

	file, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(os.Stderr, "Capturing data from %s to %s\n", s.Device, outputPath)
	fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop\n\n")

	start := time.Now()
	written, err := capture(ctx, port, file, console, s.ChunkSize, s.PollInterval)
	logger.Info("capture finished", "device", s.Device, "file", outputPath, "bytes", written)
	fmt.Fprintf(os.Stderr, "\nCapture complete: %d bytes written in %v\n", written, time.Since(start).Round(time.Millisecond))
	return err
}

// capture copies port to out until ctx is done, mirroring to console when
// it is non-nil.
func capture(ctx context.Context, port serial.Port, out io.Writer, console io.Writer, chunkSize int, interval time.Duration) (int64, error) {
	buf := make([]byte, chunkSize)
	var written int64

	for ctx.Err() == nil {
		n, err := port.Read(buf)
		if err != nil {
			return written, fmt.Errorf("read error: %w", err)
		}
		if n == 0 {
			if err := waitReadable(port.Fd(), interval); err != nil {
				return written, err
			}
			continue
		}

		w, err := out.Write(buf[:n])
		written += int64(w)
		if err != nil {
			return written, fmt.Errorf("write error: %w", err)
		}
		if console != nil {
			console.Write(buf[:n])
		}
	}
	return written, nil
}

func waitReadable(fd uintptr, timeout time.Duration) error {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	if _, err := unix.Poll(fds, int(timeout.Milliseconds())); err != nil && !errors.Is(err, unix.EINTR) {
		return fmt.Errorf("poll: %w", err)
	}
	return nil
}
