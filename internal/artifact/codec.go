package artifact

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Codec is the compression applied to an artifact file
type Codec string

const (
	CodecNone Codec = "none"
	CodecGzip Codec = "gzip"
	CodecZstd Codec = "zstd"
)

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	gzipMagic = []byte{0x1f, 0x8b}
)

// detectCodec inspects the leading magic bytes
func detectCodec(data []byte) Codec {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		return CodecZstd
	case bytes.HasPrefix(data, gzipMagic):
		return CodecGzip
	default:
		return CodecNone
	}
}

// decompress returns the plain payload of an artifact file
func decompress(data []byte) ([]byte, Codec, error) {
	codec := detectCodec(data)
	switch codec {
	case CodecZstd:
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, codec, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		defer dec.Close()

		out, err := dec.DecodeAll(data, make([]byte, 0, len(data)*3))
		if err != nil {
			return nil, codec, fmt.Errorf("failed to decompress zstd artifact: %w", err)
		}
		return out, codec, nil
	case CodecGzip:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, codec, fmt.Errorf("failed to open gzip artifact: %w", err)
		}
		defer zr.Close()

		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, codec, fmt.Errorf("failed to decompress gzip artifact: %w", err)
		}
		return out, codec, nil
	default:
		return data, codec, nil
	}
}

// compress encodes payload with codec. The training side and the tests use
// it to produce artifact files this package can read back.
func compress(payload []byte, codec Codec) ([]byte, error) {
	switch codec {
	case CodecNone, "":
		return payload, nil
	case CodecZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		defer enc.Close()
		return enc.EncodeAll(payload, make([]byte, 0, len(payload))), nil
	case CodecGzip:
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(payload); err != nil {
			return nil, fmt.Errorf("failed to gzip artifact: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("failed to gzip artifact: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported codec %q", codec)
	}
}
