package copyforward

// Greedy is the exhaustive reference matcher. At every cursor position it
// scans every eligible position of every prior message and takes the
// longest match of at least MinMatchLen bytes. Ties go to the first match
// found in scan order (lower source message, then lower start), which
// keeps the segment output reproducible. Cost is quadratic in both message
// count and message length, so Greedy is a correctness oracle for the
// hashed matchers, not a production path.
type Greedy struct {
	encoding
	config Config
}

// NewGreedy builds a Greedy encoding of messages.
func NewGreedy(messages []string, config Config) *Greedy {
	g := &Greedy{encoding: newEncoding(messages), config: config.withDefaults()}
	g.build()
	return g
}

func (g *Greedy) build() {
	min := g.config.MinMatchLen
	for i, msg := range g.messages {
		var segs []Segment
		cursor := 0
		for cursor < len(msg) {
			length, src, start := g.longestAt(i, cursor)
			if length >= min {
				segs = append(segs, Reference(src, start, length))
				cursor += length
				continue
			}
			// Grow a literal until the next position where a qualifying
			// match starts, or the end of the message.
			end := cursor + 1
			for end < len(msg) {
				if n, _, _ := g.longestAt(i, end); n >= min {
					break
				}
				end++
			}
			segs = append(segs, Literal(msg[cursor:end]))
			cursor = end
		}
		g.segs = append(g.segs, segs)
	}
}

// longestAt returns the longest match for message i starting at cursor,
// along with its source message and start offset. A strictly-greater
// comparison preserves the first-found tie-break.
func (g *Greedy) longestAt(i, cursor int) (length, src, start int) {
	msg := g.messages[i]
	for j := 0; j < i; j++ {
		prev := g.messages[j]
		if len(prev) == 0 || !g.config.inLookback(i, j) {
			continue
		}
		for s := 0; s < len(prev); s++ {
			if prev[s] != msg[cursor] {
				continue
			}
			n := matchLen(msg, prev, cursor, s)
			if n > length {
				length, src, start = n, j, s
			}
		}
	}
	return length, src, start
}

// matchLen counts how many bytes of a[ai:] and b[bi:] are equal.
func matchLen(a, b string, ai, bi int) int {
	n := 0
	for ai+n < len(a) && bi+n < len(b) && a[ai+n] == b[bi+n] {
		n++
	}
	return n
}
