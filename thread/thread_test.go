package thread

import (
	"reflect"
	"strings"
	"testing"
)

func TestDeterministic(t *testing.T) {
	a := Generate(42, 10, 20)
	b := Generate(42, 10, 20)
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different threads")
	}
	c := Generate(43, 10, 20)
	if reflect.DeepEqual(a, c) {
		t.Error("different seeds produced identical threads")
	}
}

func TestQuoting(t *testing.T) {
	msgs := Generate(1, 4, 50)
	if len(msgs) != 4 {
		t.Fatalf("got %d messages, want 4", len(msgs))
	}
	for i := 1; i < len(msgs); i++ {
		if !strings.HasPrefix(msgs[i], "> ") {
			t.Errorf("message %d does not start with a quote: %q", i, msgs[i][:20])
		}
		firstLine := strings.SplitN(msgs[i-1], "\n", 2)[0]
		if !strings.Contains(msgs[i], "> "+firstLine) {
			t.Errorf("message %d does not quote message %d's first line", i, i-1)
		}
	}
}

func TestQuoteCap(t *testing.T) {
	msgs := Generate(5, 6, 3)
	for i := 1; i < len(msgs); i++ {
		quoted := 0
		for _, line := range strings.Split(msgs[i], "\n") {
			if strings.HasPrefix(line, "> ") {
				quoted++
			}
		}
		if quoted > 3 {
			t.Errorf("message %d quotes %d lines, cap is 3", i, quoted)
		}
	}
}

func TestGrowth(t *testing.T) {
	msgs := Generate(12345, 64, 100)
	total := 0
	for _, m := range msgs {
		total += len(m)
	}
	if total < 25*1024 {
		t.Errorf("64 messages total %d bytes, want at least 25 KB", total)
	}
}
