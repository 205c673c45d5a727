// Package charset converts between the 8-bit character set spoken on the
// serial link and the UTF-8 used by the local terminal.
package charset

import (
	"errors"
	"fmt"
	"slices"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Replacement is sent in place of runes the remote charset cannot represent.
const Replacement = '?'

// ErrUnknown is returned by Lookup for an unsupported charset name.
var ErrUnknown = errors.New("unknown charset")

var charmaps = map[string]*charmap.Charmap{
	"latin1":   charmap.ISO8859_1,
	"macroman": charmap.Macintosh,
}

// Charset is a named byte/UTF-8 mapping. The zero value and Raw are
// byte-transparent.
type Charset struct {
	name string
	cm   *charmap.Charmap
}

// Raw passes bytes through untouched.
var Raw = &Charset{name: "raw"}

// Names lists the accepted charset names.
func Names() []string {
	names := []string{Raw.name}
	for name := range charmaps {
		names = append(names, name)
	}
	slices.Sort(names[1:])
	return names
}

// Lookup returns the charset called name. An empty name selects Raw.
func Lookup(name string) (*Charset, error) {
	if name == "" || name == Raw.name {
		return Raw, nil
	}
	cm, ok := charmaps[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return &Charset{name: name, cm: cm}, nil
}

// Name returns the charset's configuration name.
func (c *Charset) Name() string {
	if c == nil || c.name == "" {
		return Raw.name
	}
	return c.name
}

// IsRaw reports whether the charset leaves bytes alone.
func (c *Charset) IsRaw() bool {
	return c == nil || c.cm == nil
}

// Decode converts wire bytes to UTF-8 for display. Each byte maps to
// exactly one rune, so chunks can be decoded independently.
func (c *Charset) Decode(b []byte) []byte {
	if c.IsRaw() || len(b) == 0 {
		return b
	}
	out, err := c.cm.NewDecoder().Bytes(b)
	if err != nil {
		return b
	}
	return out
}

// NewEncoder returns an Encoder for keystrokes headed to the wire.
func (c *Charset) NewEncoder() *Encoder {
	if c.IsRaw() {
		return &Encoder{}
	}
	return &Encoder{cm: c.cm}
}

// Encoder converts UTF-8 input to the remote charset. Input may arrive one
// byte at a time; a partial rune is held until its remaining bytes arrive.
type Encoder struct {
	cm      *charmap.Charmap
	pending []byte
}

// Encode consumes b and returns the bytes ready to transmit, which may be
// empty while a multi-byte rune is incomplete.
func (e *Encoder) Encode(b []byte) []byte {
	if e.cm == nil {
		return b
	}

	e.pending = append(e.pending, b...)
	var out []byte
	for len(e.pending) > 0 && utf8.FullRune(e.pending) {
		r, size := utf8.DecodeRune(e.pending)
		e.pending = e.pending[size:]
		if r == utf8.RuneError && size == 1 {
			out = append(out, Replacement)
			continue
		}
		enc, ok := e.cm.EncodeRune(r)
		if !ok {
			enc = Replacement
		}
		out = append(out, enc)
	}
	if len(e.pending) == 0 {
		e.pending = nil
	}
	return out
}

// Pending reports how many bytes of an incomplete rune are buffered.
func (e *Encoder) Pending() int {
	return len(e.pending)
}

