package copyforward

import "time"

// A capEntry is one indexed occurrence in Capped. It carries the hash of
// the occurrence's cap window (CapLen bytes, clipped at the message end)
// so that near-duplicate positions inside a long repeated block collapse
// to one representative entry.
type capEntry struct {
	capHash uint64
	message int
	start   int
}

// Capped is the approximate matcher for highly repetitive threads. It
// bounds worst-case work three ways: occurrences whose (k-mer hash,
// cap-window hash) pair is already indexed are skipped at insertion time;
// candidate selection compares cap windows and runs a cheap extension
// clipped at CapLen, examining at most MaxProbe bucket entries; and only
// the winning candidate pays for a full binary-search extension past the
// cap window. A post-pass merges adjacent references that continue each
// other in the source message.
type Capped struct {
	encoding
	config Config
}

// NewCapped builds a Capped encoding of messages.
func NewCapped(messages []string, config Config) *Capped {
	q := &Capped{encoding: newEncoding(messages), config: config.withDefaults()}
	q.build()
	return q
}

type capKey struct {
	kmer   uint64
	window uint64
}

func (q *Capped) build() {
	cfg := q.config
	k := cfg.MinMatchLen
	st := cfg.Stats
	prefixes := allPrefixHashes(q.messages)
	table := make(map[uint64][]capEntry, indexCapacity(q.messages, k))
	seen := make(map[capKey]struct{}, indexCapacity(q.messages, k))

	for i, msg := range q.messages {
		if i > 0 {
			q.insert(table, seen, prefixes, i-1)
		}
		ph := prefixes[i]
		var segs []Segment
		cursor := 0
		for cursor < len(msg) {
			bestLen, src, start := q.bestAt(table, prefixes, i, cursor)
			if bestLen >= k {
				// Two-phase extension: the winner was chosen on at most
				// CapLen cheap bytes; recover its true length now. The
				// full length can only grow, never shrink, unless Verify
				// rejects a hash collision.
				full := extendBinary(ph, prefixes[src], cursor, start, bestLen)
				if cfg.Verify {
					full = verifiedLen(msg, q.messages[src], cursor, start, full)
				}
				if full >= k {
					if st != nil && full > bestLen {
						st.WinnerExtensions++
						st.WinnerBytesRecovered += int64(full - bestLen)
					}
					segs = append(segs, Reference(src, start, full))
					cursor += full
					continue
				}
			}
			end := cursor + 1
			for end < len(msg) {
				if end+k <= len(msg) {
					if _, ok := table[ph.rangeHash(end, end+k)]; ok {
						break
					}
				}
				end++
			}
			segs = append(segs, Literal(msg[cursor:end]))
			cursor = end
		}
		q.segs = append(q.segs, coalesce(segs))
	}
}

// insert indexes every k-mer of message j, skipping occurrences whose
// k-mer and cap-window hashes have both been seen before.
func (q *Capped) insert(table map[uint64][]capEntry, seen map[capKey]struct{}, prefixes []prefixHashes, j int) {
	k := q.config.MinMatchLen
	st := q.config.Stats
	msg := q.messages[j]
	if len(msg) < k {
		return
	}
	var t0 time.Time
	if st != nil {
		t0 = time.Now()
	}
	ph := prefixes[j]
	for s := 0; s+k <= len(msg); s++ {
		h := ph.rangeHash(s, s+k)
		end := s + q.config.CapLen
		if end > len(msg) {
			end = len(msg)
		}
		key := capKey{h, ph.rangeHash(s, end)}
		if _, ok := seen[key]; ok {
			if st != nil {
				st.SkippedInserts++
			}
			continue
		}
		seen[key] = struct{}{}
		table[h] = append(table[h], capEntry{key.window, j, s})
		if st != nil {
			st.KmersIndexed++
		}
	}
	if st != nil {
		st.TableBuildTime += time.Since(t0)
	}
}

// bestAt selects the winning candidate at cursor using the cheap capped
// extension. Candidates whose cap window differs from the cursor's are
// rejected outright; that is the approximation that keeps selection cheap.
func (q *Capped) bestAt(table map[uint64][]capEntry, prefixes []prefixHashes, i, cursor int) (length, src, start int) {
	cfg := q.config
	k := cfg.MinMatchLen
	st := cfg.Stats
	msg := q.messages[i]
	if cursor+k > len(msg) {
		return 0, 0, 0
	}
	ph := prefixes[i]
	bucket := table[ph.rangeHash(cursor, cursor+k)]
	if st != nil {
		st.Lookups++
		if n := int64(len(bucket)); n > st.MaxBucket {
			st.MaxBucket = n
		}
	}
	if len(bucket) == 0 {
		return 0, 0, 0
	}
	capEnd := cursor + cfg.CapLen
	if capEnd > len(msg) {
		capEnd = len(msg)
	}
	window := ph.rangeHash(cursor, capEnd)
	var t0 time.Time
	if st != nil {
		t0 = time.Now()
	}
	probed := 0
	for _, e := range bucket {
		if probed >= cfg.MaxProbe {
			break
		}
		probed++
		if !cfg.inLookback(i, e.message) {
			continue
		}
		if e.capHash != window {
			continue
		}
		if st != nil {
			st.Candidates++
		}
		prev := q.messages[e.message]
		n := k
		for n < cfg.CapLen && cursor+n < len(msg) && e.start+n < len(prev) && msg[cursor+n] == prev[e.start+n] {
			n++
		}
		if st != nil {
			st.BytesCompared += int64(n - k)
		}
		if n > length {
			length, src, start = n, e.message, e.start
		}
	}
	if st != nil {
		st.ExtensionTime += time.Since(t0)
	}
	return length, src, start
}

// coalesce merges consecutive references where the second continues the
// first in the same source message. The per-position greedy loop can split
// one contiguous copy into adjacent pieces; the merge is pure metadata and
// nothing is re-extended or re-verified.
func coalesce(segs []Segment) []Segment {
	if len(segs) < 2 {
		return segs
	}
	out := make([]Segment, 0, len(segs))
	for _, s := range segs {
		if len(out) > 0 {
			last := &out[len(out)-1]
			if last.IsReference() && s.IsReference() &&
				s.Message == last.Message && s.Start == last.Start+last.Length {
				last.Length += s.Length
				continue
			}
		}
		out = append(out, s)
	}
	return out
}
