package copyforward

import "time"

// hashBase is the polynomial base for the rolling hash. Arithmetic is
// plain uint64 with silent wraparound; hash equality is trusted as byte
// equality during candidate selection unless Config.Verify is set.
const hashBase = 257

// prefixHashes gives O(1) hashes of any substring of one message:
// hash(s[l:r]) = h[r] - h[l]*p[r-l].
type prefixHashes struct {
	h []uint64
	p []uint64
}

func newPrefixHashes(s string) prefixHashes {
	h := make([]uint64, len(s)+1)
	p := make([]uint64, len(s)+1)
	p[0] = 1
	for i := 0; i < len(s); i++ {
		h[i+1] = h[i]*hashBase + uint64(s[i])
		p[i+1] = p[i] * hashBase
	}
	return prefixHashes{h, p}
}

func (ph prefixHashes) rangeHash(l, r int) uint64 {
	return ph.h[r] - ph.h[l]*ph.p[r-l]
}

func allPrefixHashes(messages []string) []prefixHashes {
	out := make([]prefixHashes, len(messages))
	for i, msg := range messages {
		out[i] = newPrefixHashes(msg)
	}
	return out
}

// A position locates one k-mer occurrence. Entries are value tuples, not
// pointers, so the index never creates ownership cycles with the messages.
type position struct {
	message int
	start   int
}

// kmerIndex maps k-mer hashes to the occurrences seen so far, in insertion
// order. It is populated one message behind the matching cursor: every
// k-mer of message i-1 goes in before message i is matched, so a lookup
// can only ever return positions from earlier messages and the causality
// rule needs no per-candidate check.
type kmerIndex struct {
	k     int
	table map[uint64][]position
}

func newKmerIndex(messages []string, k int) *kmerIndex {
	return &kmerIndex{k: k, table: make(map[uint64][]position, indexCapacity(messages, k))}
}

// insert adds every k-mer of message j. Messages shorter than k contribute
// nothing.
func (x *kmerIndex) insert(j int, msg string, ph prefixHashes, st *Stats) {
	if len(msg) < x.k {
		return
	}
	var t0 time.Time
	if st != nil {
		t0 = time.Now()
	}
	for s := 0; s+x.k <= len(msg); s++ {
		h := ph.rangeHash(s, s+x.k)
		x.table[h] = append(x.table[h], position{j, s})
	}
	if st != nil {
		st.KmersIndexed += int64(len(msg) - x.k + 1)
		st.TableBuildTime += time.Since(t0)
	}
}

func (x *kmerIndex) lookup(h uint64) []position {
	return x.table[h]
}

func (x *kmerIndex) contains(h uint64) bool {
	_, ok := x.table[h]
	return ok
}

// indexCapacity sizes the k-mer table; half the total occurrence count is
// a reasonable guess for threads with heavy quoting.
func indexCapacity(messages []string, k int) int {
	total := 0
	for _, m := range messages {
		if len(m) >= k {
			total += len(m) - k + 1
		}
	}
	c := total / 2
	if c < 16 {
		c = 16
	}
	return c
}
