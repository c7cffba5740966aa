package audio

import (
	"encoding/binary"
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// PCM profile for pcm_44100 provider output: 16-bit signed little-endian mono
const (
	pcmSampleRate = 44100
	pcmBitDepth   = 16
	pcmChannels   = 1
)

// WriteWAVFromPCM wraps raw 16-bit little-endian mono PCM bytes into a WAV
// container at the given path
func WriteWAVFromPCM(path string, pcm []byte) error {
	if len(pcm)%2 != 0 {
		return fmt.Errorf("pcm data has odd length %d", len(pcm))
	}

	samples := make([]int, len(pcm)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}

	return writeWAVSamples(path, samples, pcmSampleRate, pcmChannels)
}

func writeWAVSamples(path string, samples []int, sampleRate, channels int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav file: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, pcmBitDepth, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: pcmBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}

// readWAV decodes a WAV file into its full PCM sample buffer
func readWAV(path string) (*goaudio.IntBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s is not a valid wav file", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav samples: %w", err)
	}
	return buf, nil
}
