// Package linebuf reassembles delimited lines from a byte stream that arrives
// in arbitrary chunks.
package linebuf

import "bytes"

// Line is one extracted line. Text never contains CR or LF.
type Line struct {
	Text string
	// Terminator is the delimiter that ended the line: "\r", "\n" or "\r\n".
	Terminator string
	// Continued marks the LF that completes a CR LF pair whose CR ended the
	// previous chunk. Text is empty and Terminator is "\n". It is not a line
	// of its own; it only accounts for the LF byte.
	Continued bool
}

// Reassembler accumulates bytes and hands back complete lines. A line ends
// at CR, LF or CR LF; a CR LF pair counts as a single terminator even when
// the CR and LF arrive in different chunks.
//
// A Reassembler is not safe for concurrent use.
type Reassembler struct {
	buf []byte
	// afterCR is set when the last extracted line ended in a CR at the very
	// end of the buffer, so an LF opening the next chunk belongs to it.
	afterCR bool
}

// New returns an empty Reassembler.
func New() *Reassembler {
	return &Reassembler{}
}

// Feed appends chunk and extracts every complete line. On return the
// pending buffer holds no CR or LF. Concatenating Text and Terminator of
// every returned Line, followed by the pending bytes, gives back the input.
func (r *Reassembler) Feed(chunk []byte) []Line {
	if len(chunk) == 0 {
		return nil
	}

	var lines []Line
	if r.afterCR {
		r.afterCR = false
		if chunk[0] == '\n' {
			lines = append(lines, Line{Terminator: "\n", Continued: true})
			chunk = chunk[1:]
		}
	}
	r.buf = append(r.buf, chunk...)

	start := 0
	for {
		idx := bytes.IndexAny(r.buf[start:], "\r\n")
		if idx < 0 {
			break
		}
		end := start + idx
		line := Line{Text: string(r.buf[start:end]), Terminator: string(r.buf[end])}
		start = end + 1

		if r.buf[end] == '\r' {
			switch {
			case start < len(r.buf) && r.buf[start] == '\n':
				line.Terminator = "\r\n"
				start++
			case start == len(r.buf):
				r.afterCR = true
			}
		}
		lines = append(lines, line)
	}

	// Compact so the backing array does not grow without bound
	r.buf = append(r.buf[:0], r.buf[start:]...)
	return lines
}

// Pending returns a copy of the bytes waiting for a terminator.
func (r *Reassembler) Pending() []byte {
	return bytes.Clone(r.buf)
}
