/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/allbin/serterm/internal/charset"
	"github.com/allbin/serterm/internal/logging"
	"github.com/allbin/serterm/internal/newline"
	"github.com/allbin/serterm/internal/rawterm"
	"github.com/allbin/serterm/internal/tui/models"
	"github.com/allbin/serterm/internal/watch"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Follow a serial capture file",
	Long: `Follow a file that an emulator writes its serial output to, such as the
second serial port of a PCE or Retro68 setup.

New bytes are shown as they are appended, with CR and CR LF line endings
folded to LF. If the file is truncated or replaced, display restarts from
its beginning. The file does not have to exist yet.

The viewer scrolls, toggles between text and hex (h), pauses following (f)
and clears (c). Use --plain to stream to stdout instead.

Example usage:
  serterm watch
  serterm watch ~/Retro68-build/ser_b.out --from-start
  serterm watch capture.log --plain`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := mustSettings()
		path := s.WatchFile
		if len(args) == 1 {
			path = args[0]
		}
		fromStart, _ := cmd.Flags().GetBool("from-start")
		plain, _ := cmd.Flags().GetBool("plain")

		tui := !plain && rawterm.IsTerminal(os.Stdout)

		logger, closeLog, err := commandLogger(s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer closeLog()
		if tui && s.LogFile == "" {
			// stderr would draw over the viewer
			logger = logging.Discard()
		}

		follower := watch.New(path,
			watch.FromStart(fromStart),
			watch.WithInterval(s.PollInterval),
			watch.WithChunkSize(s.ChunkSize),
			watch.WithLogger(logger),
		)

		if tui {
			err = runWatchTUI(follower, s.Charset)
		} else {
			err = runWatchPlain(follower, os.Stdout, s.Charset)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Bool("from-start", false, "Show existing file content before following")
	watchCmd.Flags().Bool("plain", false, "Stream to stdout without the interactive viewer")
}

func runWatchTUI(follower *watch.Follower, cs *charset.Charset) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := models.NewWatchModel(follower.Path(), cs, cancel)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	go func() {
		err := follower.Run(ctx, func(ev watch.Event) {
			p.Send(models.FollowMsg(ev))
		})
		if err != nil {
			p.Send(models.FollowErrMsg{Err: err})
		}
	}()

	_, err := p.Run()
	return err
}

func runWatchPlain(follower *watch.Follower, w io.Writer, cs *charset.Charset) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl+C to stop)\n", follower.Path())
	return follower.Run(ctx, func(ev watch.Event) {
		writeWatchEvent(w, ev, cs, follower.Path())
	})
}

func writeWatchEvent(w io.Writer, ev watch.Event, cs *charset.Charset, path string) {
	switch ev.Kind {
	case watch.Data:
		w.Write(cs.Decode(newline.ToLF(ev.Data)))
	case watch.Waiting:
		fmt.Fprintf(os.Stderr, "Waiting for %s to be created...\n", path)
	case watch.Truncated:
		fmt.Fprintf(os.Stderr, "\n--- %s was truncated, restarting ---\n", path)
	}
}
