/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	serial "github.com/allbin/serterm"
	"github.com/allbin/serterm/internal/charset"
	"github.com/allbin/serterm/internal/newline"
	"github.com/allbin/serterm/internal/tui/styles"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send [text]",
	Short: "Send text or a file to the serial line and exit",
	Long: `Send text, a file or raw bytes to the serial line and exit.

Text that does not end in a line ending gets CR LF appended; text that
already ends a line has each LF expanded to CR LF. Files have every line
ending (CR, LF or CR LF) normalised to CR LF. Hex input is sent verbatim.
Without a text argument, piped stdin is sent as text.

Example usage:
  serterm send "Hello World"
  serterm send --file notes.txt
  serterm send --hex "1B 5B 32 4A"
  echo "test" | serterm send -d /dev/tnt0`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := mustSettings()

		filePath, _ := cmd.Flags().GetString("file")
		hexMode, _ := cmd.Flags().GetBool("hex")

		input, err := readSendInput(args, filePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		payload, err := buildPayload(input, filePath != "", hexMode, s.Charset)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := sendData(os.Stdout, s.Device, payload, serial.WithBaudRate(s.Baud)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringP("file", "F", "", "Send the contents of this file")
	sendCmd.Flags().BoolP("hex", "x", false, "Interpret data as hexadecimal (e.g., '48656c6c6f' for 'Hello')")
}

func readSendInput(args []string, filePath string) ([]byte, error) {
	switch {
	case filePath != "" && len(args) > 0:
		return nil, fmt.Errorf("give either text or --file, not both")
	case filePath != "":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filePath, err)
		}
		return data, nil
	case len(args) == 1:
		return []byte(args[0]), nil
	}

	stat, err := os.Stdin.Stat()
	if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
		return nil, fmt.Errorf("nothing to send: give text, --file, or pipe data on stdin")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}

// buildPayload turns user input into the bytes put on the wire.
func buildPayload(input []byte, fromFile, hexMode bool, cs *charset.Charset) ([]byte, error) {
	if hexMode {
		return parseHex(string(input))
	}

	var out []byte
	if fromFile {
		out = newline.ToCRLF(input)
	} else {
		out = newline.Terminate(input)
	}
	if cs != nil && !cs.IsRaw() {
		out = cs.NewEncoder().Encode(out)
	}
	return out, nil
}

// parseHex accepts "48656C6C6F", "48 65 6c 6c 6f" and "0x48 0x65".
func parseHex(s string) ([]byte, error) {
	clean := strings.Join(strings.Fields(s), "")
	clean = strings.ReplaceAll(clean, "0x", "")
	clean = strings.ReplaceAll(clean, "0X", "")
	if clean == "" {
		return nil, fmt.Errorf("empty hex input")
	}
	if len(clean)%2 != 0 {
		return nil, fmt.Errorf("hex string must have even number of digits (got %d)", len(clean))
	}
	data, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return data, nil
}

func sendData(w io.Writer, device string, data []byte, opts ...serial.Option) error {
	infoStyle := lipgloss.NewStyle().Foreground(styles.Mauve).Bold(true)
	successStyle := lipgloss.NewStyle().Foreground(styles.Green).Bold(true)

	fmt.Fprintf(w, "%s Opening %s...\n", infoStyle.Render("⚡"), device)

	port, err := serial.Open(device, opts...)
	if err != nil {
		return err
	}
	defer port.Close()

	n, err := port.Write(data)
	if err != nil {
		return fmt.Errorf("failed to send data: %w", err)
	}
	if err := port.Drain(); err != nil {
		return fmt.Errorf("wait for transmission: %w", err)
	}

	fmt.Fprintf(w, "%s Sent %d bytes to %s\n", successStyle.Render("✓"), n, device)
	fmt.Fprintf(w, "%s Data: %s\n", infoStyle.Render("📋"), preview(data))
	return nil
}

// preview shows the first bytes of data with control characters dotted out.
func preview(data []byte) string {
	const limit = 50
	suffix := ""
	if len(data) > limit {
		data = data[:limit]
		suffix = "..."
	}
	return strings.Map(func(r rune) rune {
		if r < 32 || r > 126 {
			return '·'
		}
		return r
	}, string(data)) + suffix
}
