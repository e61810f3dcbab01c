// Package archive compresses the observation update lines a turn was
// decided on, so stored turns can be replayed exactly.
package archive

import (
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var (
	encOnce sync.Once
	enc     *zstd.Encoder
	encErr  error

	decOnce sync.Once
	dec     *zstd.Decoder
	decErr  error
)

func encoder() (*zstd.Encoder, error) {
	encOnce.Do(func() {
		enc, encErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	})
	return enc, encErr
}

func decoder() (*zstd.Decoder, error) {
	decOnce.Do(func() {
		dec, decErr = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(64<<20))
	})
	return dec, decErr
}

// CompressLines joins the lines with newlines and zstd-compresses them.
func CompressLines(lines []string) ([]byte, error) {
	e, err := encoder()
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	return e.EncodeAll([]byte(strings.Join(lines, "\n")), nil), nil
}

// DecompressLines reverses CompressLines. Empty input yields no lines.
func DecompressLines(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	d, err := decoder()
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	raw, err := d.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return strings.Split(string(raw), "\n"), nil
}
