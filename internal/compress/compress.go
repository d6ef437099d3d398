package compress

import (
	"compress/gzip"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

type Algorithm string

const (
	Gzip Algorithm = "gzip"
	Lz4  Algorithm = "lz4"
	Zstd Algorithm = "zstd"
	None Algorithm = "none"
)

var suffixes = map[Algorithm][]string{
	Gzip: {".gz", ".gzip"},
	Lz4:  {".lz4"},
	Zstd: {".zst", ".zstd"},
}

// DetectAlgorithm infers the compression of a backup from its file name.
func DetectAlgorithm(name string) Algorithm {
	lower := strings.ToLower(name)
	for algo, exts := range suffixes {
		for _, ext := range exts {
			if strings.HasSuffix(lower, ext) {
				return algo
			}
		}
	}
	return None
}

// TrimSuffix removes a recognised compression extension from name.
func TrimSuffix(name string) string {
	lower := strings.ToLower(name)
	for _, exts := range suffixes {
		for _, ext := range exts {
			if strings.HasSuffix(lower, ext) {
				return name[:len(name)-len(ext)]
			}
		}
	}
	return name
}

// NewReader wraps r so reads return decompressed bytes. Close releases the
// decoder; it never closes r.
func NewReader(r io.Reader, algo Algorithm) (io.ReadCloser, error) {
	switch algo {
	case "", None:
		return io.NopCloser(r), nil
	case Gzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return gz, nil
	case Lz4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case Zstd:
		z, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zstdCloser{z}, nil
	default:
		return nil, ErrUnsupportedAlgo(algo)
	}
}

type zstdCloser struct {
	*zstd.Decoder
}

func (z zstdCloser) Close() error {
	z.Decoder.Close()
	return nil
}

type ErrUnsupportedAlgo Algorithm

func (e ErrUnsupportedAlgo) Error() string {
	return "unsupported compression algorithm: " + string(e)
}
