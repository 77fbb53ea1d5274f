package chunker

import "strings"

// DefaultMaxChars is the default character budget per chunk
const DefaultMaxChars = 1000

// Chunker splits document text into bounded-size, line-aligned segments
type Chunker struct {
	maxChars int
}

// New creates a Chunker with the default character budget
func New() *Chunker {
	return &Chunker{maxChars: DefaultMaxChars}
}

// NewWithMaxChars creates a Chunker with a custom character budget.
// Non-positive values fall back to the default.
func NewWithMaxChars(maxChars int) *Chunker {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Chunker{maxChars: maxChars}
}

// MaxChars returns the configured character budget
func (c *Chunker) MaxChars() int {
	return c.maxChars
}

// Chunk splits text into ordered segments. Lines are accumulated into a
// buffer; when appending a line would push the buffer past the budget, the
// buffer is emitted first. A line never spans two chunks: a single line
// longer than the budget becomes one oversized chunk. Joined lines carry no
// separator, so concatenating all chunks reproduces the concatenation of
// the original lines. Empty text yields no chunks.
func (c *Chunker) Chunk(text string) []string {
	if text == "" {
		return nil
	}

	var chunks []string
	var buf strings.Builder

	for _, line := range splitLines(text) {
		if buf.Len()+len(line) > c.maxChars && buf.Len() > 0 {
			chunks = append(chunks, buf.String())
			buf.Reset()
		}
		buf.WriteString(line)
	}

	if buf.Len() > 0 {
		chunks = append(chunks, buf.String())
	}

	return chunks
}

// splitLines splits on newlines without keeping terminators. A trailing
// newline does not produce a final empty line, and CRLF endings are
// normalized.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
