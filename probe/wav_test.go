package probe

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildWAV assembles a minimal RIFF/WAVE payload with the given byte rate
// and data size. The data chunk is filled with zeros.
func buildWAV(byteRate, dataSize uint32) []byte {
	var buf []byte
	u32 := func(v uint32) []byte {
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, v)
		return b
	}

	fmtChunk := make([]byte, 16)
	binary.LittleEndian.PutUint16(fmtChunk[0:2], 1)  // PCM
	binary.LittleEndian.PutUint16(fmtChunk[2:4], 1)  // mono
	binary.LittleEndian.PutUint32(fmtChunk[4:8], byteRate)
	binary.LittleEndian.PutUint32(fmtChunk[8:12], byteRate)
	binary.LittleEndian.PutUint16(fmtChunk[12:14], 1)
	binary.LittleEndian.PutUint16(fmtChunk[14:16], 8)

	riffSize := uint32(4 + 8 + len(fmtChunk) + 8 + int(dataSize))
	buf = append(buf, []byte("RIFF")...)
	buf = append(buf, u32(riffSize)...)
	buf = append(buf, []byte("WAVE")...)
	buf = append(buf, []byte("fmt ")...)
	buf = append(buf, u32(uint32(len(fmtChunk)))...)
	buf = append(buf, fmtChunk...)
	buf = append(buf, []byte("data")...)
	buf = append(buf, u32(dataSize)...)
	buf = append(buf, make([]byte, dataSize)...)
	return buf
}

func writeWAV(t *testing.T, name string, payload []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, payload, 0644))
	return path
}

func TestFileProber(t *testing.T) {
	ctx := context.Background()
	prober := NewFileProber()

	t.Run("computes whole seconds", func(t *testing.T) {
		path := writeWAV(t, "five.wav", buildWAV(8000, 40000))

		seconds, err := prober.Probe(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, 5, seconds)
	})

	t.Run("rounds to nearest second", func(t *testing.T) {
		// 3.6 seconds of data rounds up to 4.
		path := writeWAV(t, "round.wav", buildWAV(10000, 36000))

		seconds, err := prober.Probe(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, 4, seconds)
	})

	t.Run("unsupported extension is unavailable", func(t *testing.T) {
		_, err := prober.Probe(ctx, "/audio/track.mp3")
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("missing file is unavailable", func(t *testing.T) {
		_, err := prober.Probe(ctx, filepath.Join(t.TempDir(), "nope.wav"))
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("garbage payload is unavailable", func(t *testing.T) {
		path := writeWAV(t, "garbage.wav", []byte("definitely not a wav file"))

		_, err := prober.Probe(ctx, path)
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		path := writeWAV(t, "ok.wav", buildWAV(8000, 8000))
		_, err := prober.Probe(cancelled, path)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestMockProber(t *testing.T) {
	ctx := context.Background()

	t.Run("returns configured durations", func(t *testing.T) {
		prober := NewMockProber(map[string]int{"/a.wav": 42})

		seconds, err := prober.Probe(ctx, "/a.wav")
		require.NoError(t, err)
		assert.Equal(t, 42, seconds)
		assert.Equal(t, 1, prober.CallCount())
	})

	t.Run("unknown path is unavailable", func(t *testing.T) {
		prober := NewMockProber(nil)
		_, err := prober.Probe(ctx, "/b.wav")
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("probe func overrides", func(t *testing.T) {
		prober := NewMockProber(nil)
		prober.ProbeFunc = func(context.Context, string) (int, error) { return 7, nil }

		seconds, err := prober.Probe(ctx, "/anything")
		require.NoError(t, err)
		assert.Equal(t, 7, seconds)
	})
}
