// The thread package generates synthetic reply threads for tests and
// benchmarks. Each message quotes the previous one the way nested email
// replies do, appends freshly generated sentences, and ends with one of a
// few rotating signature blocks, so the output carries both per-line
// duplication and long verbatim repeats.
package thread

import (
	"math/rand"
	"strings"
)

var lexicon = []string{
	"the", "quick", "brown", "fox", "jumps", "over", "lazy", "dog",
	"authentication", "token", "expiration", "policy", "storage", "secure",
	"deploy", "rollback", "release", "thread", "message", "quoted",
	"agreed", "however", "consider", "latency", "throughput", "budget",
	"schema", "migration", "review", "merged", "pipeline", "metrics",
	"failure", "retry", "timeout", "window", "buffer", "encoding",
}

var signatures = []string{
	"--\nAna Petrova\nInfrastructure Team\nhttps://example.com/infra\n\"Measure twice, deploy once.\"",
	"--\nBo Lindqvist\nStorage & Caching Group\nbo.lindqvist@example.com\nSent from my terminal.",
	"--\nChiara Moretti\nRelease Engineering\nOn call this week; expect delayed replies.",
}

// Generate returns a deterministic thread of n messages. Each message
// after the first quotes up to maxQuoted lines of its predecessor with a
// "> " prefix (0 means no cap), then adds a few fresh sentences and a
// signature. The same arguments always produce the same thread.
func Generate(seed int64, n, maxQuoted int) []string {
	rng := rand.New(rand.NewSource(seed))
	msgs := make([]string, 0, n)
	for i := 0; i < n; i++ {
		var b strings.Builder
		if i > 0 {
			lines := strings.Split(msgs[i-1], "\n")
			if maxQuoted > 0 && len(lines) > maxQuoted {
				lines = lines[:maxQuoted]
			}
			for _, line := range lines {
				b.WriteString("> ")
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
		for s := 2 + rng.Intn(3); s > 0; s-- {
			b.WriteString(sentence(rng))
			b.WriteByte('\n')
		}
		b.WriteString(signatures[i%len(signatures)])
		msgs = append(msgs, b.String())
	}
	return msgs
}

func sentence(rng *rand.Rand) string {
	words := make([]string, 10+rng.Intn(8))
	for i := range words {
		words[i] = lexicon[rng.Intn(len(lexicon))]
	}
	return strings.Join(words, " ") + "."
}
