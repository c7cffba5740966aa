package audio

import (
	"fmt"
	"os"
	"path/filepath"
)

// Sink is a write-once file sink for clips and artifacts under a fixed output
// root. Files are keyed by generated names and never rewritten.
type Sink struct {
	dir string
}

// NewSink creates the output root if needed and returns a sink over it
func NewSink(dir string) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output root: %w", err)
	}
	return &Sink{dir: dir}, nil
}

// Dir returns the sink's output root
func (s *Sink) Dir() string {
	return s.dir
}

// SaveClip writes synthesized audio under a fresh generated filename. Raw PCM
// payloads are wrapped into a WAV container; anything else is written as-is.
// Returns the path and byte length of the stored file.
func (s *Sink) SaveClip(data []byte, format Format) (string, int64, error) {
	name := fmt.Sprintf("%s.%s", shortToken(), string(format))
	path := filepath.Join(s.dir, name)

	switch format {
	case FormatWAV:
		if err := WriteWAVFromPCM(path, data); err != nil {
			return "", 0, err
		}
	default:
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", 0, fmt.Errorf("write clip: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", 0, fmt.Errorf("stat clip: %w", err)
	}
	return path, info.Size(), nil
}

// Open opens a previously written file by basename for preview or download.
// Names containing path separators, "." and ".." are rejected.
func (s *Sink) Open(name string) (*os.File, error) {
	if name == "." || name == ".." || filepath.Base(name) != name {
		return nil, fmt.Errorf("invalid artifact name %q", name)
	}
	return os.Open(filepath.Join(s.dir, name))
}
