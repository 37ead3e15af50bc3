// Package pcm provides types and utilities for working with PCM (Pulse Code
// Modulation) audio data.
//
// The package defines the 16-bit mono formats used by fragment libraries and
// an owned sample buffer type that every splicing stage passes along.
//
// Key types:
//   - Format: audio format (sample rate, channels, bit depth)
//   - Buffer: signed 16-bit mono samples
//
// Example usage:
//
//	format := pcm.L16Mono44K
//
//	// 50ms of silence between syllables
//	gap := format.Silence(50 * time.Millisecond)
//
//	word := pcm.Concat(first, gap, second)
package pcm
