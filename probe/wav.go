package probe

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// FileProber reads audio payloads from the local filesystem.
// WAV (RIFF) payloads are parsed natively; other formats fail with
// ErrUnavailable so callers can require an explicit duration instead.
type FileProber struct {
	logger *slog.Logger
}

// NewFileProber creates a filesystem-backed prober.
func NewFileProber() *FileProber {
	return &FileProber{
		logger: slog.Default().With("component", "file-prober"),
	}
}

var _ Prober = (*FileProber)(nil)

// Probe returns the duration of the audio file at path in seconds.
func (p *FileProber) Probe(ctx context.Context, path string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".wav" && ext != ".wave" {
		return 0, fmt.Errorf("%w: unsupported format %q", ErrUnavailable, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		p.logger.Warn("audio file not readable", "path", path, "err", err)
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer f.Close()

	seconds, err := wavDuration(f)
	if err != nil {
		p.logger.Warn("failed to parse audio file", "path", path, "err", err)
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	p.logger.Debug("parsed audio duration", "path", path, "seconds", seconds)
	return seconds, nil
}

// wavDuration parses a RIFF/WAVE stream and returns data length divided by
// byte rate, rounded to the nearest second.
func wavDuration(r io.ReadSeeker) (int, error) {
	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, err
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return 0, fmt.Errorf("not a RIFF/WAVE stream")
	}

	var (
		byteRate uint32
		dataSize uint32
	)
	for byteRate == 0 || dataSize == 0 {
		var chunk [8]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			return 0, err
		}
		id := string(chunk[0:4])
		size := binary.LittleEndian.Uint32(chunk[4:8])

		switch id {
		case "fmt ":
			if size < 16 {
				return 0, fmt.Errorf("fmt chunk too short: %d bytes", size)
			}
			var fmtData [16]byte
			if _, err := io.ReadFull(r, fmtData[:]); err != nil {
				return 0, err
			}
			byteRate = binary.LittleEndian.Uint32(fmtData[8:12])
			if byteRate == 0 {
				return 0, fmt.Errorf("zero byte rate")
			}
			if size > 16 {
				if _, err := r.Seek(int64(size-16), io.SeekCurrent); err != nil {
					return 0, err
				}
			}
		case "data":
			dataSize = size
			if byteRate == 0 {
				// fmt chunk not seen yet; skip the samples and keep scanning
				if _, err := r.Seek(int64(size), io.SeekCurrent); err != nil {
					return 0, err
				}
			}
		default:
			// Chunks are word-aligned
			skip := int64(size)
			if size%2 == 1 {
				skip++
			}
			if _, err := r.Seek(skip, io.SeekCurrent); err != nil {
				return 0, err
			}
		}
	}

	seconds := int(math.Round(float64(dataSize) / float64(byteRate)))
	if seconds <= 0 {
		return 0, fmt.Errorf("non-positive duration")
	}
	return seconds, nil
}
