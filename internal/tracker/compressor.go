package tracker

import (
	"bytes"
	"fmt"
	"github.com/klauspost/compress/zstd"
	"studymail/internal/structures"
	"studymail/internal/tracker/interfaces"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// ZstdCompression compresses records on write when enabled. Reads accept both
// zstd frames and plain payloads, so toggling storage.compress never strands
// records written under the other setting.
type ZstdCompression struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	enabled bool
}

func (z *ZstdCompression) Compress(val []byte) ([]byte, error) {
	if !z.enabled {
		return val, nil
	}
	return z.encoder.EncodeAll(val, make([]byte, 0, len(val)/2)), nil
}

func (z *ZstdCompression) Decompress(val []byte) ([]byte, error) {
	if !bytes.HasPrefix(val, zstdMagic) {
		return val, nil
	}
	return z.decoder.DecodeAll(val, nil)
}

func NewZstdCompressor(enabled bool) (*ZstdCompression, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &ZstdCompression{encoder: encoder, decoder: decoder, enabled: enabled}, nil
}

func NewCompressor(conf *structures.Config) (interfaces.CompressorInterface, error) {
	return NewZstdCompressor(conf.Storage.Compress)
}
