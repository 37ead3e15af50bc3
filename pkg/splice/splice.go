package splice

import (
	"errors"
	"fmt"

	"github.com/haivivi/wordsplice/pkg/audio/pcm"
	"github.com/haivivi/wordsplice/pkg/phoneme"
)

// ErrUnsupportedShape is returned for syllables that are not [V], [C V] or
// [C V C], or whose fragment count does not match.
var ErrUnsupportedShape = errors.New("splice: unsupported syllable shape")

// Default ratios of the bundled fragment library.
const (
	DefaultConsonantOverlap = 0.55
	DefaultEndFade          = 0.3
	DefaultEndFadeLimit     = 0.9
)

// Policy holds the overlap ratios used at each boundary.
type Policy struct {
	// ConsonantOverlap is the position within an initial consonant where the
	// vowel starts, as a fraction of the consonant's length.
	ConsonantOverlap float64 `json:"consonant_overlap" yaml:"consonant_overlap"`

	// EndFade is the final-consonant fade length as a fraction of the vowel.
	EndFade float64 `json:"end_fade" yaml:"end_fade"`

	// EndFadeLimit caps how much of a non-nasal final consonant the fade may
	// consume. The rest always plays unblended.
	EndFadeLimit float64 `json:"end_fade_limit" yaml:"end_fade_limit"`
}

// DefaultPolicy returns the ratios of the bundled fragment library.
func DefaultPolicy() Policy {
	return Policy{
		ConsonantOverlap: DefaultConsonantOverlap,
		EndFade:          DefaultEndFade,
		EndFadeLimit:     DefaultEndFadeLimit,
	}
}

// Ratios overrides individual ratios of DefaultPolicy. A nil field keeps
// the default; an explicit 0 is kept as 0.
type Ratios struct {
	ConsonantOverlap *float64 `json:"consonant_overlap,omitempty" yaml:"consonant_overlap,omitempty"`
	EndFade          *float64 `json:"end_fade,omitempty" yaml:"end_fade,omitempty"`
	EndFadeLimit     *float64 `json:"end_fade_limit,omitempty" yaml:"end_fade_limit,omitempty"`
}

// Policy applies r over DefaultPolicy.
func (r Ratios) Policy() Policy {
	p := DefaultPolicy()
	if r.ConsonantOverlap != nil {
		p.ConsonantOverlap = *r.ConsonantOverlap
	}
	if r.EndFade != nil {
		p.EndFade = *r.EndFade
	}
	if r.EndFadeLimit != nil {
		p.EndFadeLimit = *r.EndFadeLimit
	}
	return p
}

// Validate rejects ratios outside [0, 1], NaN included.
func (p Policy) Validate() error {
	for _, r := range []struct {
		name string
		v    float64
	}{
		{"consonant_overlap", p.ConsonantOverlap},
		{"end_fade", p.EndFade},
		{"end_fade_limit", p.EndFadeLimit},
	} {
		if !(r.v >= 0 && r.v <= 1) {
			return fmt.Errorf("splice: %s must be within [0, 1], got %v", r.name, r.v)
		}
	}
	return nil
}

// Splice assembles one syllable from its fragments, given in component
// order. The policy is validated first.
func (p Policy) Splice(syl phoneme.Syllable, frags []pcm.Buffer) (pcm.Buffer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(frags) != len(syl) {
		return nil, fmt.Errorf("%w: %d components but %d fragments", ErrUnsupportedShape, len(syl), len(frags))
	}
	switch len(syl) {
	case 1:
		return frags[0].Clone(), nil
	case 2:
		return p.onset(frags[0], frags[1]), nil
	case 3:
		mid := p.onset(frags[0], frags[1])
		fade := int(float64(len(frags[1])) * p.EndFade)
		if syl[2].Role == phoneme.FinalNasal {
			return p.nasalCoda(mid, frags[2], fade), nil
		}
		return p.coda(mid, frags[2], fade), nil
	}
	return nil, fmt.Errorf("%w: %d components", ErrUnsupportedShape, len(syl))
}

// onset lets the vowel start ConsonantOverlap of the way into the consonant.
func (p Policy) onset(consonant, vowel pcm.Buffer) pcm.Buffer {
	start := int(float64(len(consonant)) * p.ConsonantOverlap)
	n := min(len(consonant)-start, len(vowel))
	blended := Mix(consonant[start:start+n], vowel[:n], n)
	return pcm.Concat(consonant[:start], blended, vowel[n:])
}

// nasalCoda fades the syllable into the nasal. The nasal past the fade is
// dropped so the syllable trails off.
func (p Policy) nasalCoda(mid, nasal pcm.Buffer, fade int) pcm.Buffer {
	fade = min(fade, len(mid), len(nasal))
	cut := len(mid) - fade
	return pcm.Concat(mid[:cut], Mix(mid[cut:], nasal[:fade], fade))
}

// coda fades the syllable into the final consonant and keeps the
// consonant's unconsumed remainder for an audible release.
func (p Policy) coda(mid, final pcm.Buffer, fade int) pcm.Buffer {
	fade = min(fade, len(mid), int(float64(len(final))*p.EndFadeLimit))
	cut := len(mid) - fade
	return pcm.Concat(mid[:cut], Mix(mid[cut:], final[:fade], fade), final[fade:])
}
