// Package audio provides audio processing utilities.
//
// This package serves as an umbrella for audio-related sub-packages:
//
//   - pcm: PCM formats and sample buffers
//   - wav: RIFF/WAV container decoding and encoding with strict format checks
//
// Example usage:
//
//	import (
//	    "github.com/haivivi/wordsplice/pkg/audio/pcm"
//	    "github.com/haivivi/wordsplice/pkg/audio/wav"
//	)
//
//	buf, err := wav.Decode(r, pcm.L16Mono44K)
package audio
