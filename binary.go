package copyforward

import "time"

// HashedBinary indexes and retrieves candidates exactly like Hashed, but
// extends each candidate by binary search over prefix-hash equality
// instead of a linear byte scan. One extension costs O(log n) hash
// comparisons instead of O(n) byte comparisons, which pays off when
// matches are long, as they are in threads of near-duplicate quoted
// blocks.
type HashedBinary struct {
	encoding
	config Config
}

// NewHashedBinary builds a HashedBinary encoding of messages.
func NewHashedBinary(messages []string, config Config) *HashedBinary {
	q := &HashedBinary{encoding: newEncoding(messages), config: config.withDefaults()}
	q.build()
	return q
}

func (q *HashedBinary) build() {
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

func (q *HashedBinary) bestAt(index *kmerIndex, prefixes []prefixHashes, i, cursor int) (length, src, start int) {
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
		n := extendBinary(prefixes[i], prefixes[c.message], cursor, c.start, k)
		if q.config.Verify {
			n = verifiedLen(msg, prev, cursor, c.start, n)
			if n < k {
				continue
			}
		}
		if st != nil {
			st.Candidates++
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

// extendBinary finds the largest length in [k, max] for which the hashes
// of cur[cursor:cursor+length] and prev[start:start+length] agree, by
// integer binary search. The predicate is monotone because byte equality
// at length L implies byte equality at every shorter length; hash equality
// stands in for byte equality throughout.
func extendBinary(cur, prev prefixHashes, cursor, start, k int) int {
	max := len(cur.h) - 1 - cursor
	if n := len(prev.h) - 1 - start; n < max {
		max = n
	}
	low, high := k, max
	for low < high {
		mid := (low + high + 1) / 2
		if cur.rangeHash(cursor, cursor+mid) == prev.rangeHash(start, start+mid) {
			low = mid
		} else {
			high = mid - 1
		}
	}
	return low
}

// verifiedLen clamps a hash-proven match to the true common prefix of
// a[ai:] and b[bi:], never exceeding claimed.
func verifiedLen(a, b string, ai, bi, claimed int) int {
	n := 0
	for n < claimed && a[ai+n] == b[bi+n] {
		n++
	}
	return n
}
