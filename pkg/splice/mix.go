// Package splice joins phoneme fragments into syllables with linear
// cross-fades.
//
// Mix is the single place samples are blended; Policy.Splice decides where
// the overlaps go for each syllable shape.
package splice

import "github.com/haivivi/wordsplice/pkg/audio/pcm"

// Mix overlaps the tail of a with the head of b.
//
// With overlap <= 0 the result is a followed by b. Otherwise the overlap is
// clamped to min(overlap, len(a), len(b)) and, over those n samples,
//
//	out[i] = clamp16(a[len(a)-n+i]*(1-i/n) + b[i]*(i/n))
//
// The result is a's unblended prefix, the blended window, then b's
// unblended suffix. Neither input is modified.
func Mix(a, b pcm.Buffer, overlap int) pcm.Buffer {
	if overlap <= 0 {
		return pcm.Concat(a, b)
	}
	n := min(overlap, len(a), len(b))
	if n == 0 {
		return pcm.Concat(a, b)
	}

	head := len(a) - n
	out := make(pcm.Buffer, 0, len(a)+len(b)-n)
	out = append(out, a[:head]...)
	fn := float64(n)
	for i := range n {
		in := float64(i) / fn
		v := float64(a[head+i])*(1-in) + float64(b[i])*in
		out = append(out, pcm.Clamp16(v))
	}
	out = append(out, b[n:]...)
	return out
}
