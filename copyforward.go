// The copyforward package deduplicates an ordered thread of messages by
// re-expressing each message as literal text plus references to substrings
// of earlier messages in the same thread. Rendering an encoding with an
// identity replacer reproduces the original messages byte for byte.
//
// Four strategies implement the same contract: Greedy is an exhaustive
// reference implementation, Hashed and HashedBinary accelerate matching
// with an incremental k-mer hash index, and Capped additionally bounds
// worst-case work on highly repetitive threads.
package copyforward

import "strings"

// A Segment is one span of a message's encoding. A literal segment carries
// its bytes verbatim in Text. A reference segment (Text == "") stands for
// Length bytes at offset Start in the earlier message Message.
type Segment struct {
	Text    string
	Message int
	Start   int
	Length  int
}

// Literal returns a literal segment. The text must not be empty; an empty
// literal would be indistinguishable from a reference.
func Literal(text string) Segment {
	return Segment{Text: text}
}

// Reference returns a reference segment.
func Reference(message, start, length int) Segment {
	return Segment{Message: message, Start: start, Length: length}
}

// IsReference reports whether s is a reference segment.
func (s Segment) IsReference() bool {
	return s.Text == ""
}

// Len returns the number of message bytes the segment covers.
func (s Segment) Len() int {
	if s.IsReference() {
		return s.Length
	}
	return len(s.Text)
}

// A Replacer produces the rendered text for one reference segment. It
// receives the reference coordinates and the referenced text itself; text
// is a view into the matcher's copy of the messages and must not be
// retained past the matcher's lifetime. A replacer that returns text
// unchanged makes Render reproduce the original messages exactly.
type Replacer func(message, start, length int, text string) string

// Config controls how an encoding is built. The zero value is ready to
// use. Matchers never report errors: degenerate input (empty messages,
// messages shorter than MinMatchLen) simply encodes as literals.
type Config struct {
	// MinMatchLen is the minimum length for a reference; shorter matches
	// are emitted as literal text. The default is 4.
	MinMatchLen int

	// Lookback limits how many immediately preceding messages are
	// eligible as reference sources. 0 means unlimited.
	Lookback int

	// Verify re-checks hash-proven matches byte by byte before they are
	// emitted. The rolling hash makes a false match astronomically
	// unlikely, so this is off by default.
	Verify bool

	// CapLen is the cap-window length used by Capped for bucket
	// deduplication and cheap candidate selection. The default is 64.
	// Tunable heuristic with no optimality proof.
	CapLen int

	// MaxProbe is how many bucket entries Capped examines per lookup.
	// The default is 64.
	MaxProbe int

	// Stats, if non-nil, collects counters about the build.
	Stats *Stats
}

func (c Config) withDefaults() Config {
	if c.MinMatchLen <= 0 {
		c.MinMatchLen = 4
	}
	if c.CapLen <= 0 {
		c.CapLen = 64
	}
	if c.MaxProbe <= 0 {
		c.MaxProbe = 64
	}
	return c
}

// inLookback reports whether message src may serve as a reference source
// while encoding message cur.
func (c Config) inLookback(cur, src int) bool {
	return c.Lookback == 0 || cur-src <= c.Lookback
}

// An Encoding is a fully built per-message segment model. Implementations
// are immutable once constructed.
type Encoding interface {
	// Segments returns a snapshot of the per-message segment lists,
	// independent of internal storage.
	Segments() [][]Segment

	// Render reconstructs every message, substituting the replacer's
	// output for each reference.
	Render(replace Replacer) []string

	// RenderStatic substitutes a fixed marker for every reference.
	RenderStatic(marker string) []string
}

// encoding is the state every matcher shares once built: the owned copy of
// the input messages and the per-message segment lists.
type encoding struct {
	messages []string
	segs     [][]Segment
}

func newEncoding(messages []string) encoding {
	owned := make([]string, len(messages))
	copy(owned, messages)
	return encoding{messages: owned, segs: make([][]Segment, 0, len(owned))}
}

func (e *encoding) Segments() [][]Segment {
	out := make([][]Segment, len(e.segs))
	for i, segs := range e.segs {
		out[i] = append([]Segment(nil), segs...)
	}
	return out
}

func (e *encoding) Render(replace Replacer) []string {
	out := make([]string, len(e.segs))
	for i, segs := range e.segs {
		var b strings.Builder
		for _, s := range segs {
			if s.IsReference() {
				text := e.messages[s.Message][s.Start : s.Start+s.Length]
				b.WriteString(replace(s.Message, s.Start, s.Length, text))
			} else {
				b.WriteString(s.Text)
			}
		}
		out[i] = b.String()
	}
	return out
}

func (e *encoding) RenderStatic(marker string) []string {
	return e.Render(func(int, int, int, string) string { return marker })
}
