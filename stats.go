package copyforward

import "time"

// Stats collects counters describing the work done while building an
// encoding. Attach one through Config.Stats; when it is nil nothing is
// recorded and correctness is unaffected either way. A Stats must not be
// shared between builds running concurrently.
type Stats struct {
	KmersIndexed   int64 // k-mer occurrences inserted into the index
	SkippedInserts int64 // occurrences dropped by cap-window dedup (Capped)
	Lookups        int64 // index probes made while matching
	Candidates     int64 // candidate occurrences extended
	BytesCompared  int64 // bytes examined by linear extension
	MaxBucket      int64 // largest bucket returned by a lookup

	WinnerExtensions     int64 // winners that grew past the capped pre-check (Capped)
	WinnerBytesRecovered int64 // bytes gained by those full extensions

	TableBuildTime time.Duration // time spent inserting k-mers
	ExtensionTime  time.Duration // time spent extending candidates
}

// Reset zeroes every counter so the Stats can be reused.
func (s *Stats) Reset() {
	*s = Stats{}
}
