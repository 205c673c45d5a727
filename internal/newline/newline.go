// Package newline converts between the line-ending conventions that meet on
// a serial link: CR from the classic Mac side, LF from the Unix side, and
// CR LF on the wire.
package newline

import "bytes"

const (
	CR = '\r'
	LF = '\n'
)

// CRLF is the two-byte line ending the remote expects.
var CRLF = []byte{CR, LF}

// ToDisplay expands every CR that is not already followed by LF into CR LF,
// so a raw-mode terminal starts a new line instead of overprinting the
// current one. CR LF pairs pass through unchanged.
//
// The chunk is translated on its own. A CR that ends one chunk is expanded
// even if the next chunk begins with LF, which shows up as one extra blank
// line on screen.
func ToDisplay(chunk []byte) []byte {
	if bytes.IndexByte(chunk, CR) < 0 {
		return chunk
	}

	out := make([]byte, 0, len(chunk)+8)
	for i, b := range chunk {
		out = append(out, b)
		if b == CR && (i+1 == len(chunk) || chunk[i+1] != LF) {
			out = append(out, LF)
		}
	}
	return out
}

// ToLF folds CR LF and lone CR into LF. Used for file replay where the
// output is a normal cooked terminal or a TUI.
func ToLF(data []byte) []byte {
	if bytes.IndexByte(data, CR) < 0 {
		return data
	}
	out := bytes.ReplaceAll(data, CRLF, []byte{LF})
	return bytes.ReplaceAll(out, []byte{CR}, []byte{LF})
}

// ToCRLF normalises every line ending (CR LF, CR or LF) to CR LF.
func ToCRLF(data []byte) []byte {
	return bytes.ReplaceAll(ToLF(data), []byte{LF}, CRLF)
}

// Terminate prepares a one-off text message for the wire. Text without a
// trailing line ending gets CR LF appended; text that already ends a line
// has each LF expanded to CR LF and is otherwise left alone.
func Terminate(text []byte) []byte {
	if len(text) == 0 || (text[len(text)-1] != LF && text[len(text)-1] != CR) {
		out := make([]byte, 0, len(text)+2)
		out = append(out, text...)
		return append(out, CRLF...)
	}
	return bytes.ReplaceAll(text, []byte{LF}, CRLF)
}
