package tracker

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZstdCompression_Roundtrip(t *testing.T) {
	c, err := NewZstdCompressor(true)
	require.NoError(t, err)

	original := []byte(`{"date":"2024-01-01","today_on_seconds":3600,"coins":5}`)
	compressed, err := c.Compress(original)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(compressed, zstdMagic))

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, original, decompressed)
}

func TestZstdCompression_EmptyData(t *testing.T) {
	c, err := NewZstdCompressor(true)
	require.NoError(t, err)

	compressed, err := c.Compress([]byte{})
	require.NoError(t, err)

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	assert.Empty(t, decompressed)
}

func TestZstdCompression_LargeData(t *testing.T) {
	c, err := NewZstdCompressor(true)
	require.NoError(t, err)

	original := bytes.Repeat([]byte("abcdefghij"), 100_000) // 1MB
	compressed, err := c.Compress(original)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(original)/2)

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, original, decompressed)
}

func TestZstdCompression_DisabledWritesPlain(t *testing.T) {
	c, err := NewZstdCompressor(false)
	require.NoError(t, err)

	original := []byte(`{"a":1}`)
	out, err := c.Compress(original)
	require.NoError(t, err)
	assert.Equal(t, original, out)
}

func TestZstdCompression_PlainPayloadReadAsIs(t *testing.T) {
	c, err := NewZstdCompressor(true)
	require.NoError(t, err)

	plain := []byte(`{"date":"2024-01-01"}`)
	out, err := c.Decompress(plain)
	require.NoError(t, err)
	assert.Equal(t, plain, out)
}

func TestZstdCompression_TruncatedFrame(t *testing.T) {
	c, err := NewZstdCompressor(true)
	require.NoError(t, err)

	compressed, err := c.Compress(bytes.Repeat([]byte("study"), 1000))
	require.NoError(t, err)

	_, err = c.Decompress(compressed[:len(compressed)/2])
	assert.Error(t, err)
}
