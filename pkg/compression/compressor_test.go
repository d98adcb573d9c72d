package compression

import (
	"bytes"
	"strings"
	"testing"
)

var sampleData = []byte(strings.Repeat("Date,Open,High,Low,Close,Volume\n2024-01-02,187.15,188.44,183.88,185.64,4920000\n", 50))

func TestRoundTrip(t *testing.T) {
	algorithms := []Algorithm{None, Gzip, Snappy, LZ4, Zstd, S2}

	for _, algo := range algorithms {
		t.Run(string(algo), func(t *testing.T) {
			c, err := NewCompressor(&Config{Algorithm: algo, Level: Default})
			if err != nil {
				t.Fatalf("NewCompressor(%s): %v", algo, err)
			}

			compressed, err := c.Compress(sampleData)
			if err != nil {
				t.Fatalf("Compress: %v", err)
			}

			decompressed, err := c.Decompress(compressed)
			if err != nil {
				t.Fatalf("Decompress: %v", err)
			}

			if !bytes.Equal(decompressed, sampleData) {
				t.Errorf("round trip mismatch: got %d bytes, want %d", len(decompressed), len(sampleData))
			}
		})
	}
}

func TestStreamRoundTrip(t *testing.T) {
	c, err := NewCompressor(&Config{Algorithm: Zstd, Level: Default})
	if err != nil {
		t.Fatalf("NewCompressor: %v", err)
	}

	var compressed bytes.Buffer
	if err := c.CompressStream(&compressed, bytes.NewReader(sampleData)); err != nil {
		t.Fatalf("CompressStream: %v", err)
	}

	var decompressed bytes.Buffer
	if err := c.DecompressStream(&decompressed, &compressed); err != nil {
		t.Fatalf("DecompressStream: %v", err)
	}

	if !bytes.Equal(decompressed.Bytes(), sampleData) {
		t.Error("stream round trip mismatch")
	}
}

func TestZstdLevels(t *testing.T) {
	for _, level := range []Level{Fastest, Default, Better, Best} {
		c, err := NewCompressor(&Config{Algorithm: Zstd, Level: level})
		if err != nil {
			t.Fatalf("NewCompressor(level=%d): %v", level, err)
		}

		compressed, err := c.Compress(sampleData)
		if err != nil {
			t.Fatalf("Compress(level=%d): %v", level, err)
		}

		decompressed, err := c.Decompress(compressed)
		if err != nil {
			t.Fatalf("Decompress(level=%d): %v", level, err)
		}
		if !bytes.Equal(decompressed, sampleData) {
			t.Errorf("level %d round trip mismatch", level)
		}
	}
}

func TestZstdRejectsCorruptFrame(t *testing.T) {
	c, err := NewCompressor(&Config{Algorithm: Zstd, Level: Default})
	if err != nil {
		t.Fatalf("NewCompressor: %v", err)
	}

	if _, err := c.Decompress([]byte("definitely not a zstd frame")); err == nil {
		t.Error("expected error for corrupt input, got nil")
	}

	compressed, err := c.Compress(sampleData)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if _, err := c.Decompress(compressed[:len(compressed)/2]); err == nil {
		t.Error("expected error for truncated frame, got nil")
	}
}

func TestDefaultConfig(t *testing.T) {
	c, err := NewCompressor(nil)
	if err != nil {
		t.Fatalf("NewCompressor(nil): %v", err)
	}
	if c.Algorithm() != Zstd {
		t.Errorf("default algorithm = %s, want zstd", c.Algorithm())
	}
	if c.Level() != Default {
		t.Errorf("default level = %d, want %d", c.Level(), Default)
	}
}

func TestUnsupportedAlgorithm(t *testing.T) {
	if _, err := NewCompressor(&Config{Algorithm: "brotli"}); err == nil {
		t.Error("expected error for unsupported algorithm, got nil")
	}
}
