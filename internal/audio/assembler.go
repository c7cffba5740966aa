package audio

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/narravox/tts-studio/internal/observability"
)

// ErrNotMergeable signals that the clip set cannot be concatenated (wrong
// container format or mismatched PCM profiles). Callers fall back to Archive.
var ErrNotMergeable = errors.New("clips cannot be merged")

// Assembler turns an ordered list of clips into a single artifact: either one
// concatenated audio stream with a fixed silence gap between segments, or a
// zip archive of the individual clips.
type Assembler struct {
	outDir string
	gap    time.Duration
	logger zerolog.Logger
}

// NewAssembler creates an assembler writing artifacts under outDir with the
// given inter-segment silence gap
func NewAssembler(outDir string, gap time.Duration) (*Assembler, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create outputs dir: %w", err)
	}
	return &Assembler{
		outDir: outDir,
		gap:    gap,
		logger: observability.ComponentLogger("assembler"),
	}, nil
}

// Merge concatenates clips in list order into one WAV stream, inserting the
// configured silence between consecutive clips. No leading or trailing silence
// is added. The clip order must be the original script order, not completion
// order. Returns the path of the merged artifact.
func (a *Assembler) Merge(clips []Clip) (string, error) {
	if len(clips) == 0 {
		return "", fmt.Errorf("no clips to merge")
	}

	for _, c := range clips {
		if c.Format != FormatWAV {
			return "", fmt.Errorf("%w: clip %d is %s, only wav clips can be concatenated", ErrNotMergeable, c.Ordinal, c.Format)
		}
	}

	first, err := readWAV(clips[0].Path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotMergeable, err)
	}
	sampleRate := first.Format.SampleRate
	channels := first.Format.NumChannels

	// gap in samples at the stream's own rate
	gapSamples := int(a.gap.Seconds()*float64(sampleRate)) * channels

	combined := append([]int(nil), first.Data...)
	for _, c := range clips[1:] {
		buf, err := readWAV(c.Path)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrNotMergeable, err)
		}
		if buf.Format.SampleRate != sampleRate || buf.Format.NumChannels != channels {
			return "", fmt.Errorf("%w: clip %d has profile %dHz/%dch, expected %dHz/%dch",
				ErrNotMergeable, c.Ordinal, buf.Format.SampleRate, buf.Format.NumChannels, sampleRate, channels)
		}
		combined = append(combined, make([]int, gapSamples)...)
		combined = append(combined, buf.Data...)
	}

	outPath := filepath.Join(a.outDir, fmt.Sprintf("merged_%s.wav", shortToken()))
	if err := writeWAVSamples(outPath, combined, sampleRate, channels); err != nil {
		return "", fmt.Errorf("write merged stream: %w", err)
	}

	observability.RecordArtifact("merged")
	a.logger.Info().
		Int("clips", len(clips)).
		Str("path", outPath).
		Msg("Merged clips into single stream")

	return outPath, nil
}

// Archive packages the clips unmodified into a zip file, each entry named
// after the clip's basename with no directory structure. Returns the path of
// the archive artifact.
func (a *Assembler) Archive(clips []Clip) (string, error) {
	if len(clips) == 0 {
		return "", fmt.Errorf("no clips to archive")
	}

	outPath := filepath.Join(a.outDir, fmt.Sprintf("segments_%s.zip", shortToken()))
	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, c := range clips {
		entry, err := zw.Create(filepath.Base(c.Path))
		if err != nil {
			zw.Close()
			return "", fmt.Errorf("create archive entry: %w", err)
		}
		src, err := os.Open(c.Path)
		if err != nil {
			zw.Close()
			return "", fmt.Errorf("open clip %d: %w", c.Ordinal, err)
		}
		if _, err := io.Copy(entry, src); err != nil {
			src.Close()
			zw.Close()
			return "", fmt.Errorf("write clip %d to archive: %w", c.Ordinal, err)
		}
		src.Close()
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("finalize archive: %w", err)
	}

	observability.RecordArtifact("archive")
	a.logger.Info().
		Int("clips", len(clips)).
		Str("path", outPath).
		Msg("Archived clips")

	return outPath, nil
}

// Assemble merges when requested, falling back to archive packaging if the
// merge is unavailable or fails. Only a failure of the fallback itself is
// returned to the caller.
func (a *Assembler) Assemble(clips []Clip, merge bool) (string, error) {
	if merge {
		path, err := a.Merge(clips)
		if err == nil {
			return path, nil
		}
		observability.RecordMergeFallback()
		a.logger.Warn().Err(err).Msg("Merge failed, falling back to archive")
	}
	return a.Archive(clips)
}

func shortToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
