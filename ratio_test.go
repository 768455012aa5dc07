package copyforward

import (
	"bytes"
	"io/ioutil"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/andybalholm/copyforward/thread"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// refCost is the encoded-size charge for one reference, roughly what a
// serialized (message, start, length) triple takes.
const refCost = 10

func encodedSize(e Encoding) int {
	total := 0
	for _, segs := range e.Segments() {
		for _, s := range segs {
			if s.IsReference() {
				total += refCost
			} else {
				total += len(s.Text)
			}
		}
	}
	return total
}

// buildThread grows a generated thread until it reaches minBytes.
func buildThread(tb testing.TB, minBytes int) ([]string, int) {
	tb.Helper()
	for n := 4; n <= 256; n *= 2 {
		msgs := thread.Generate(12345, n, 100)
		total := 0
		for _, m := range msgs {
			total += len(m)
		}
		if total >= minBytes {
			return msgs, total
		}
	}
	tb.Fatal("fixture thread never reached the target size")
	return nil, 0
}

func TestThreadDeduplication(t *testing.T) {
	msgs, orig := buildThread(t, 25*1024)
	config := Config{MinMatchLen: 8, CapLen: 32}
	for _, m := range builders {
		enc := m.build(msgs, config)
		encoded := encodedSize(enc)
		if encoded*2 > orig {
			t.Errorf("%s: encoded %d bytes of %d original (%.1f%%), want at most 50%%",
				m.name, encoded, orig, float64(encoded)/float64(orig)*100)
		}
	}
}

// The compressors the encoding competes with must round-trip the fixture;
// they also serve as ratio baselines in the benchmarks below.
func TestCompressorRoundTrips(t *testing.T) {
	msgs, _ := buildThread(t, 25*1024)
	data := []byte(strings.Join(msgs, "\n"))

	t.Run("snappy", func(t *testing.T) {
		decoded, err := snappy.Decode(nil, snappy.Encode(nil, data))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(decoded, data) {
			t.Fatal("decompressed output doesn't match")
		}
	})

	t.Run("flate", func(t *testing.T) {
		b := new(bytes.Buffer)
		w, err := flate.NewWriter(b, flate.BestCompression)
		if err != nil {
			t.Fatal(err)
		}
		w.Write(data)
		w.Close()
		decoded, err := ioutil.ReadAll(flate.NewReader(bytes.NewReader(b.Bytes())))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(decoded, data) {
			t.Fatal("decompressed output doesn't match")
		}
	})

	t.Run("zstd", func(t *testing.T) {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			t.Fatal(err)
		}
		dec, err := zstd.NewReader(nil)
		if err != nil {
			t.Fatal(err)
		}
		decoded, err := dec.DecodeAll(enc.EncodeAll(data, nil), nil)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(decoded, data) {
			t.Fatal("decompressed output doesn't match")
		}
	})

	t.Run("brotli", func(t *testing.T) {
		b := new(bytes.Buffer)
		w := brotli.NewWriter(b)
		w.Write(data)
		w.Close()
		decoded, err := ioutil.ReadAll(brotli.NewReader(bytes.NewReader(b.Bytes())))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(decoded, data) {
			t.Fatal("decompressed output doesn't match")
		}
	})

	t.Run("lz4", func(t *testing.T) {
		b := new(bytes.Buffer)
		w := lz4.NewWriter(b)
		w.Write(data)
		w.Close()
		decoded, err := ioutil.ReadAll(lz4.NewReader(bytes.NewReader(b.Bytes())))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(decoded, data) {
			t.Fatal("decompressed output doesn't match")
		}
	})
}

func benchmarkMatcher(b *testing.B, build func([]string, Config) Encoding) {
	b.StopTimer()
	b.ReportAllocs()
	msgs, orig := buildThread(b, 25*1024)
	config := Config{MinMatchLen: 8, CapLen: 32}
	b.SetBytes(int64(orig))
	b.ReportMetric(float64(orig)/float64(encodedSize(build(msgs, config))), "ratio")
	b.StartTimer()
	for i := 0; i < b.N; i++ {
		build(msgs, config)
	}
}

func BenchmarkGreedy(b *testing.B) {
	benchmarkMatcher(b, func(m []string, c Config) Encoding { return NewGreedy(m, c) })
}

func BenchmarkHashed(b *testing.B) {
	benchmarkMatcher(b, func(m []string, c Config) Encoding { return NewHashed(m, c) })
}

func BenchmarkHashedBinary(b *testing.B) {
	benchmarkMatcher(b, func(m []string, c Config) Encoding { return NewHashedBinary(m, c) })
}

func BenchmarkCapped(b *testing.B) {
	benchmarkMatcher(b, func(m []string, c Config) Encoding { return NewCapped(m, c) })
}

func BenchmarkSnappy(b *testing.B) {
	b.StopTimer()
	b.ReportAllocs()
	msgs, orig := buildThread(b, 25*1024)
	data := []byte(strings.Join(msgs, "\n"))
	b.SetBytes(int64(orig))
	b.ReportMetric(float64(len(data))/float64(len(snappy.Encode(nil, data))), "ratio")
	b.StartTimer()
	for i := 0; i < b.N; i++ {
		snappy.Encode(nil, data)
	}
}

func BenchmarkFlate(b *testing.B) {
	b.StopTimer()
	b.ReportAllocs()
	msgs, orig := buildThread(b, 25*1024)
	data := []byte(strings.Join(msgs, "\n"))
	buf := new(bytes.Buffer)
	compress := func() {
		buf.Reset()
		w, err := flate.NewWriter(buf, flate.BestCompression)
		if err != nil {
			b.Fatal(err)
		}
		w.Write(data)
		w.Close()
	}
	compress()
	b.SetBytes(int64(orig))
	b.ReportMetric(float64(len(data))/float64(buf.Len()), "ratio")
	b.StartTimer()
	for i := 0; i < b.N; i++ {
		compress()
	}
}

func BenchmarkZstd(b *testing.B) {
	b.StopTimer()
	b.ReportAllocs()
	msgs, orig := buildThread(b, 25*1024)
	data := []byte(strings.Join(msgs, "\n"))
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(orig))
	b.ReportMetric(float64(len(data))/float64(len(enc.EncodeAll(data, nil))), "ratio")
	b.StartTimer()
	for i := 0; i < b.N; i++ {
		enc.EncodeAll(data, nil)
	}
}

func BenchmarkBrotli(b *testing.B) {
	b.StopTimer()
	b.ReportAllocs()
	msgs, orig := buildThread(b, 25*1024)
	data := []byte(strings.Join(msgs, "\n"))
	buf := new(bytes.Buffer)
	compress := func() {
		buf.Reset()
		w := brotli.NewWriter(buf)
		w.Write(data)
		w.Close()
	}
	compress()
	b.SetBytes(int64(orig))
	b.ReportMetric(float64(len(data))/float64(buf.Len()), "ratio")
	b.StartTimer()
	for i := 0; i < b.N; i++ {
		compress()
	}
}

func BenchmarkLZ4(b *testing.B) {
	b.StopTimer()
	b.ReportAllocs()
	msgs, orig := buildThread(b, 25*1024)
	data := []byte(strings.Join(msgs, "\n"))
	buf := new(bytes.Buffer)
	compress := func() {
		buf.Reset()
		w := lz4.NewWriter(buf)
		w.Write(data)
		w.Close()
	}
	compress()
	b.SetBytes(int64(orig))
	b.ReportMetric(float64(len(data))/float64(buf.Len()), "ratio")
	b.StartTimer()
	for i := 0; i < b.N; i++ {
		compress()
	}
}
