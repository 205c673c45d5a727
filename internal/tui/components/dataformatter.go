package components

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/allbin/serterm/internal/charset"
	"github.com/allbin/serterm/internal/newline"
	"github.com/allbin/serterm/internal/tui/styles"
)

type DisplayMode int

const (
	DisplayText DisplayMode = iota
	DisplayHex
)

func (m DisplayMode) String() string {
	if m == DisplayHex {
		return "HEX"
	}
	return "TEXT"
}

const bytesPerRow = 16

// DataFormatter renders captured bytes either as text or as a hex dump.
type DataFormatter struct {
	mode    DisplayMode
	charset *charset.Charset
}

func NewDataFormatter(cs *charset.Charset) *DataFormatter {
	if cs == nil {
		cs = charset.Raw
	}
	return &DataFormatter{charset: cs}
}

func (df *DataFormatter) Mode() DisplayMode {
	return df.mode
}

func (df *DataFormatter) ToggleMode() {
	if df.mode == DisplayText {
		df.mode = DisplayHex
	} else {
		df.mode = DisplayText
	}
}

// Format renders data. offset is the file position of data[0] and only
// matters in hex mode.
func (df *DataFormatter) Format(data []byte, offset int64) string {
	if df.mode == DisplayHex {
		return df.formatHex(data, offset)
	}
	return df.formatText(data)
}

// formatText folds line endings to LF and replaces anything that could
// drive the terminal, so captured escape sequences show up as dots.
func (df *DataFormatter) formatText(data []byte) string {
	decoded := df.charset.Decode(newline.ToLF(data))

	var sb strings.Builder
	sb.Grow(len(decoded))
	for len(decoded) > 0 {
		r, size := utf8.DecodeRune(decoded)
		decoded = decoded[size:]
		switch {
		case r == '\n' || r == '\t':
			sb.WriteRune(r)
		case r == utf8.RuneError && size == 1, unicode.IsControl(r):
			sb.WriteByte('.')
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func (df *DataFormatter) formatHex(data []byte, offset int64) string {
	offsetStyle := lipgloss.NewStyle().Foreground(styles.Subtext0)
	gutterStyle := lipgloss.NewStyle().Foreground(styles.Sky)

	rows := make([]string, 0, len(data)/bytesPerRow+1)
	for start := 0; start < len(data); start += bytesPerRow {
		end := min(start+bytesPerRow, len(data))
		row := data[start:end]

		hexPart := fmt.Sprintf("% X", row)
		hexPart += strings.Repeat(" ", bytesPerRow*3-1-len(hexPart))

		ascii := make([]byte, len(row))
		for i, b := range row {
			if b >= 32 && b <= 126 {
				ascii[i] = b
			} else {
				ascii[i] = '.'
			}
		}

		rows = append(rows, fmt.Sprintf("%s  %s  %s",
			offsetStyle.Render(fmt.Sprintf("%08X", offset+int64(start))),
			hexPart,
			gutterStyle.Render("|"+string(ascii)+"|")))
	}
	return strings.Join(rows, "\n")
}
