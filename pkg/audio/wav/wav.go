// Package wav decodes and encodes RIFF/WAV files holding 16-bit mono PCM.
//
// Decoding is strict: a file whose channel count, bit depth or sample rate
// differs from the expected format is rejected with ErrFormatMismatch rather
// than converted.
package wav

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/haivivi/wordsplice/pkg/audio/pcm"
)

// formatPCM is the WAVE_FORMAT_PCM tag.
const formatPCM = 1

var (
	// ErrFormatMismatch is returned when a file is valid WAV but not in the
	// expected PCM format.
	ErrFormatMismatch = errors.New("wav: format mismatch")

	// ErrTruncated is returned when the data chunk holds fewer samples than
	// its header declares.
	ErrTruncated = errors.New("wav: truncated data")
)

// Header holds the fields of the fmt chunk that decoding checks.
type Header struct {
	SampleRate  int
	BitDepth    int
	NumChannels int
	AudioFormat int
}

// Decode reads a whole WAV stream and returns its samples. The stream must be
// PCM in exactly the format want.
func Decode(r io.ReadSeeker, want pcm.Format) (pcm.Buffer, error) {
	d := gowav.NewDecoder(r)
	d.ReadInfo()
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("wav: read header: %w", err)
	}
	h := Header{
		SampleRate:  int(d.SampleRate),
		BitDepth:    int(d.BitDepth),
		NumChannels: int(d.NumChans),
		AudioFormat: int(d.WavAudioFormat),
	}
	if err := h.check(want); err != nil {
		return nil, err
	}

	if err := d.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("wav: find PCM data: %w", err)
	}
	if d.PCMChunk == nil {
		return nil, errors.New("wav: PCM data not found")
	}

	// Read exactly the declared data chunk; chunks after it are ignored.
	frame := h.BitDepth / 8 * h.NumChannels
	data := make([]byte, d.PCMSize-d.PCMSize%frame)
	n, err := io.ReadFull(d.PCMChunk, data)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("%w: header declares %d samples, got %d", ErrTruncated, len(data)/frame, n/frame)
	}
	if err != nil {
		return nil, fmt.Errorf("wav: read PCM data: %w", err)
	}
	return pcm.FromBytes(data), nil
}

func (h Header) check(want pcm.Format) error {
	if h.AudioFormat != formatPCM {
		return fmt.Errorf("%w: unsupported audio format %d (only PCM=1 supported)", ErrFormatMismatch, h.AudioFormat)
	}
	if h.NumChannels != want.Channels() {
		return fmt.Errorf("%w: not mono (current %d channels)", ErrFormatMismatch, h.NumChannels)
	}
	if h.BitDepth != want.Depth() {
		return fmt.Errorf("%w: not 16-bit (current %d bits)", ErrFormatMismatch, h.BitDepth)
	}
	if h.SampleRate != want.SampleRate() {
		return fmt.Errorf("%w: sample rate error (current %dHz, want %dHz)", ErrFormatMismatch, h.SampleRate, want.SampleRate())
	}
	return nil
}

// Encode writes b as a complete WAV file in format f. The encoder patches the
// RIFF sizes on close, so w must be seekable.
func Encode(w io.WriteSeeker, f pcm.Format, b pcm.Buffer) error {
	enc := gowav.NewEncoder(w, f.SampleRate(), f.Depth(), f.Channels(), formatPCM)
	ib := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: f.Channels(),
			SampleRate:  f.SampleRate(),
		},
		Data:           b.Ints(),
		SourceBitDepth: f.Depth(),
	}
	if err := enc.Write(ib); err != nil {
		return fmt.Errorf("wav: write samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav: finalize: %w", err)
	}
	return nil
}
