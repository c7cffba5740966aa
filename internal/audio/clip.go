package audio

// Format identifies the container format of a synthesized clip
type Format string

const (
	FormatWAV Format = "wav"
	FormatMP3 Format = "mp3"
)

// Clip is one successfully synthesized segment, transient for the duration of
// a generation batch. Ownership passes from the batch synthesizer to the
// assembler and the clip is discarded once the final artifact exists.
type Clip struct {
	SegmentID string // ID of the source segment
	Ordinal   int    // 1-based position in the original script
	Path      string // location of the audio file on disk
	Format    Format
	Bytes     int64 // byte length of the audio file
}

// FormatForOutput maps a provider output format string to a clip format.
// Raw PCM responses are wrapped into WAV containers on save, so pcm_* maps
// to FormatWAV.
func FormatForOutput(outputFormat string) Format {
	if len(outputFormat) >= 3 && outputFormat[:3] == "pcm" {
		return FormatWAV
	}
	return FormatMP3
}
