// Package dump handles compressed dump files produced by the external
// fetcher: whole-buffer zstd decompression of a single dump, and
// extraction of bulk ZIP archives into per-symbol frames.
package dump

import (
	"os"

	"github.com/quantfold/stockdump/pkg/compression"
	"github.com/quantfold/stockdump/pkg/errors"
)

// zstdPool is shared across calls; zstd decoders are expensive to build.
var zstdPool, _ = compression.NewCompressor(&compression.Config{
	Algorithm: compression.Zstd,
	Level:     compression.Default,
})

// Decompress reads a compressed dump and returns the complete decoded
// byte sequence. A truncated stream or invalid frame magic/checksum is a
// decode error with no partial result. The file handle is released before
// return on every path.
func Decompress(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeDecode,
			"failed to read dump").WithDetail("path", path)
	}

	raw, err := zstdPool.Decompress(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeDecode,
			"corrupt or truncated zstd frame").WithDetail("path", path)
	}
	return raw, nil
}
