package linebuf

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(lines []Line) []string {
	var out []string
	for _, l := range lines {
		if !l.Continued {
			out = append(out, l.Text)
		}
	}
	return out
}

func TestFeed(t *testing.T) {
	tests := []struct {
		name    string
		chunks  []string
		want    []string
		pending string
	}{
		{"LF", []string{"one\ntwo\n"}, []string{"one", "two"}, ""},
		{"CR", []string{"one\rtwo\r"}, []string{"one", "two"}, ""},
		{"CR LF is one terminator", []string{"one\r\ntwo\r\n"}, []string{"one", "two"}, ""},
		{"LF CR is two terminators", []string{"one\n\rtwo"}, []string{"one", ""}, "two"},
		{"empty lines kept", []string{"\n\n"}, []string{"", ""}, ""},
		{"partial tail", []string{"@bot pi"}, nil, "@bot pi"},
		{"tail completed later", []string{"@bot pi", "ng\r\n"}, []string{"@bot ping"}, ""},
		{"CR then text", []string{"a\r", "b\n"}, []string{"a", "b"}, ""},
		{"CR LF split across chunks", []string{"a\r", "\nb\r\n"}, []string{"a", "b"}, ""},
		{"lone LF after split CR", []string{"a\r", "\n"}, []string{"a"}, ""},
		{"CR CR LF", []string{"x\r\r\n"}, []string{"x", ""}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			var got []string
			for _, c := range tt.chunks {
				got = append(got, texts(r.Feed([]byte(c)))...)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.pending, string(r.Pending()))
		})
	}
}

func TestFeedTerminators(t *testing.T) {
	r := New()
	lines := r.Feed([]byte("a\rb\nc\r\n"))
	require.Len(t, lines, 3)
	assert.Equal(t, "\r", lines[0].Terminator)
	assert.Equal(t, "\n", lines[1].Terminator)
	assert.Equal(t, "\r\n", lines[2].Terminator)
}

func TestPendingNeverHoldsDelimiter(t *testing.T) {
	r := New()
	rng := rand.New(rand.NewSource(7))
	alphabet := []byte("ab\r\n ")

	for i := 0; i < 500; i++ {
		chunk := make([]byte, rng.Intn(16))
		for j := range chunk {
			chunk[j] = alphabet[rng.Intn(len(alphabet))]
		}
		r.Feed(chunk)
		assert.False(t, bytes.ContainsAny(r.Pending(), "\r\n"), "pending %q", r.Pending())
	}
}

// Lines plus their terminators plus whatever is pending must rebuild the
// input byte for byte.
func TestReconstruction(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []byte("@bot ping\r\n")

	for trial := 0; trial < 200; trial++ {
		input := make([]byte, rng.Intn(200)+1)
		for i := range input {
			input[i] = alphabet[rng.Intn(len(alphabet))]
		}

		r := New()
		var lines []Line
		rest := input
		for len(rest) > 0 {
			n := rng.Intn(len(rest)) + 1
			lines = append(lines, r.Feed(rest[:n])...)
			rest = rest[n:]
		}

		var rebuilt bytes.Buffer
		for _, l := range lines {
			assert.False(t, strings.ContainsAny(l.Text, "\r\n"))
			rebuilt.WriteString(l.Text)
			rebuilt.WriteString(l.Terminator)
		}
		rebuilt.Write(r.Pending())
		require.Equal(t, string(input), rebuilt.String(), "trial %d", trial)
	}
}

// A 1440 KiB line whose CR LF is split across two reads yields exactly one
// line, and the command after it is still recognised.
func TestLargeLineWithSplitTerminator(t *testing.T) {
	payload := bytes.Repeat([]byte("A"), 1440*1024)
	first := append(bytes.Clone(payload), '\r')
	second := []byte("\n@bot ping\r\n")

	r := New()
	lines := r.Feed(first)
	require.Len(t, lines, 1)
	assert.Equal(t, len(payload), len(lines[0].Text))

	lines = r.Feed(second)
	assert.Equal(t, []string{"@bot ping"}, texts(lines))
	assert.Empty(t, r.Pending())
}

func TestSplitCRLFReportsLF(t *testing.T) {
	r := New()
	first := r.Feed([]byte("a\r"))
	second := r.Feed([]byte("\nb\n"))

	assert.Equal(t, []Line{{Text: "a", Terminator: "\r"}}, first)
	assert.Equal(t, []Line{
		{Terminator: "\n", Continued: true},
		{Text: "b", Terminator: "\n"},
	}, second)

	var rebuilt strings.Builder
	for _, l := range append(first, second...) {
		rebuilt.WriteString(l.Text + l.Terminator)
	}
	assert.Equal(t, "a\r\nb\n", rebuilt.String())
}

func TestSplitCROnlyAbsorbsOneLF(t *testing.T) {
	r := New()
	r.Feed([]byte("a\r"))
	lines := r.Feed([]byte("\n\n"))

	require.Len(t, lines, 2)
	assert.True(t, lines[0].Continued)
	assert.Equal(t, Line{Text: "", Terminator: "\n"}, lines[1])
}
