// The wire package exposes copyforward encodings to foreign runtimes as
// plain strings: one "L:<text>" or "R:<message>:<start>+<length>" string
// per segment, plus an xxHash32 checksum of the rendered thread so the
// remote side can verify byte-exact reconstruction.
package wire

import (
	"fmt"
	"strings"

	"github.com/andybalholm/copyforward"
	"github.com/pierrec/xxHash/xxHash32"
)

// A Thread wraps a built encoding for string-encoded access.
type Thread struct {
	enc copyforward.Encoding
}

// New builds a Thread with the named algorithm: "greedy", "hashed",
// "hashedbinary" or "capped".
func New(algorithm string, messages []string, config copyforward.Config) (*Thread, error) {
	var enc copyforward.Encoding
	switch algorithm {
	case "greedy":
		enc = copyforward.NewGreedy(messages, config)
	case "hashed":
		enc = copyforward.NewHashed(messages, config)
	case "hashedbinary":
		enc = copyforward.NewHashedBinary(messages, config)
	case "capped":
		enc = copyforward.NewCapped(messages, config)
	default:
		return nil, fmt.Errorf("wire: unknown algorithm %q", algorithm)
	}
	return &Thread{enc}, nil
}

// Segments returns one encoded string per segment per message.
func (t *Thread) Segments() [][]string {
	segs := t.enc.Segments()
	out := make([][]string, len(segs))
	for i, list := range segs {
		strs := make([]string, len(list))
		for j, s := range list {
			strs[j] = FormatSegment(s)
		}
		out[i] = strs
	}
	return out
}

// RenderStatic substitutes marker for every reference.
func (t *Thread) RenderStatic(marker string) []string {
	return t.enc.RenderStatic(marker)
}

// Checksum hashes the fully rendered thread, newline-separated, with
// xxHash32 at seed 0 (the checksum the lz4 frame format uses). A caller
// that reconstructs the thread from Segments can compare checksums to
// confirm the reconstruction is exact.
func (t *Thread) Checksum() uint32 {
	h := xxHash32.New(0)
	for i, msg := range t.enc.Render(identity) {
		if i > 0 {
			h.Write([]byte{'\n'})
		}
		h.Write([]byte(msg))
	}
	return h.Sum32()
}

func identity(_, _, _ int, text string) string { return text }

// FormatSegment encodes one segment as a string.
func FormatSegment(s copyforward.Segment) string {
	if s.IsReference() {
		return fmt.Sprintf("R:%d:%d+%d", s.Message, s.Start, s.Length)
	}
	return "L:" + s.Text
}

// ParseSegment reverses FormatSegment.
func ParseSegment(s string) (copyforward.Segment, error) {
	switch {
	case strings.HasPrefix(s, "L:"):
		if len(s) == 2 {
			return copyforward.Segment{}, fmt.Errorf("wire: empty literal %q", s)
		}
		return copyforward.Literal(s[2:]), nil
	case strings.HasPrefix(s, "R:"):
		var message, start, length int
		if _, err := fmt.Sscanf(s, "R:%d:%d+%d", &message, &start, &length); err != nil {
			return copyforward.Segment{}, fmt.Errorf("wire: bad reference %q: %v", s, err)
		}
		return copyforward.Reference(message, start, length), nil
	}
	return copyforward.Segment{}, fmt.Errorf("wire: bad segment %q", s)
}
