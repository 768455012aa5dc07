package copyforward

import "time"

// maxCandidates bounds how many index entries one lookup may examine in
// Hashed and HashedBinary, so a pathological bucket cannot dominate the
// build. Earliest-inserted occurrences are preferred.
const maxCandidates = 64

// Hashed accelerates matching with an incremental k-mer index, where k is
// MinMatchLen. At each cursor position the k-mer hash selects a bucket of
// candidate occurrences; each candidate is already k bytes long by hash
// equality and is extended byte by byte from there. Literal runs grow to
// the next position whose k-mer hash is present in the index at all: a
// position whose k-mer is absent cannot start a reference, so presence
// alone is the break test.
type Hashed struct {
	encoding
	config Config
}

// NewHashed builds a Hashed encoding of messages.
func NewHashed(messages []string, config Config) *Hashed {
	q := &Hashed{encoding: newEncoding(messages), config: config.withDefaults()}
	q.build()
	return q
}

func (q *Hashed) build() {
	k := q.config.MinMatchLen
	st := q.config.Stats
	prefixes := allPrefixHashes(q.messages)
	index := newKmerIndex(q.messages, k)

	for i, msg := range q.messages {
		if i > 0 {
			index.insert(i-1, q.messages[i-1], prefixes[i-1], st)
		}
		ph := prefixes[i]
		var segs []Segment
		cursor := 0
		for cursor < len(msg) {
			length, src, start := q.bestAt(index, prefixes, i, cursor)
			if length >= k {
				segs = append(segs, Reference(src, start, length))
				cursor += length
				continue
			}
			end := cursor + 1
			for end < len(msg) {
				if end+k <= len(msg) && index.contains(ph.rangeHash(end, end+k)) {
					break
				}
				end++
			}
			segs = append(segs, Literal(msg[cursor:end]))
			cursor = end
		}
		q.segs = append(q.segs, segs)
	}
}

// bestAt returns the longest candidate match for message i at cursor, or
// length 0 when no candidate qualifies.
func (q *Hashed) bestAt(index *kmerIndex, prefixes []prefixHashes, i, cursor int) (length, src, start int) {
	k := q.config.MinMatchLen
	st := q.config.Stats
	msg := q.messages[i]
	if cursor+k > len(msg) {
		return 0, 0, 0
	}
	bucket := index.lookup(prefixes[i].rangeHash(cursor, cursor+k))
	if st != nil {
		st.Lookups++
		if n := int64(len(bucket)); n > st.MaxBucket {
			st.MaxBucket = n
		}
	}
	if len(bucket) == 0 {
		return 0, 0, 0
	}
	var t0 time.Time
	if st != nil {
		t0 = time.Now()
	}
	examined := 0
	for _, c := range bucket {
		if examined >= maxCandidates {
			break
		}
		examined++
		if !q.config.inLookback(i, c.message) {
			continue
		}
		prev := q.messages[c.message]
		if q.config.Verify && msg[cursor:cursor+k] != prev[c.start:c.start+k] {
			continue
		}
		n := k + matchLen(msg, prev, cursor+k, c.start+k)
		if st != nil {
			st.Candidates++
			st.BytesCompared += int64(n - k)
		}
		if n > length {
			length, src, start = n, c.message, c.start
		}
	}
	if st != nil {
		st.ExtensionTime += time.Since(t0)
	}
	return length, src, start
}
