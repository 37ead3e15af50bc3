package pcm

import (
	"encoding/binary"
	"math"
)

// Buffer is an owned run of signed 16-bit mono samples. Operations in this
// module never mutate a Buffer they receive; they return a new one.
type Buffer []int16

// Clamp16 saturates v to the signed 16-bit range and truncates toward zero.
func Clamp16(v float64) int16 {
	if v >= math.MaxInt16 {
		return math.MaxInt16
	}
	if v <= math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// Concat returns a new buffer holding every part in order.
func Concat(parts ...Buffer) Buffer {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make(Buffer, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Clone returns a copy of b.
func (b Buffer) Clone() Buffer {
	if b == nil {
		return Buffer{}
	}
	out := make(Buffer, len(b))
	copy(out, b)
	return out
}

// Bytes encodes the samples as little-endian 16-bit PCM.
func (b Buffer) Bytes() []byte {
	data := make([]byte, len(b)*2)
	for i, s := range b {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	return data
}

// FromBytes decodes little-endian 16-bit PCM. A trailing odd byte is ignored.
func FromBytes(data []byte) Buffer {
	out := make(Buffer, len(data)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return out
}

// Ints widens the samples to int, the sample type used by go-audio buffers.
func (b Buffer) Ints() []int {
	out := make([]int, len(b))
	for i, s := range b {
		out[i] = int(s)
	}
	return out
}

// FromInts narrows int samples, saturating anything outside the 16-bit range.
func FromInts(samples []int) Buffer {
	out := make(Buffer, len(samples))
	for i, s := range samples {
		out[i] = Clamp16(float64(s))
	}
	return out
}
