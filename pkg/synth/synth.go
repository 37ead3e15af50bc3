// Package synth turns a mapping string into one continuous word waveform.
//
// The pipeline is decompose, resolve, load, splice, assemble. Every stage
// is pure except fragment loading, which goes through a fragment.Library.
package synth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/haivivi/wordsplice/pkg/audio/pcm"
	"github.com/haivivi/wordsplice/pkg/fragment"
	"github.com/haivivi/wordsplice/pkg/phoneme"
	"github.com/haivivi/wordsplice/pkg/splice"
)

// DefaultGap is the silence inserted between syllables.
const DefaultGap = 50 * time.Millisecond

// Assemble concatenates syllables with gap zero samples between consecutive
// syllables. No silence is added before the first or after the last.
func Assemble(syllables []pcm.Buffer, gap int) pcm.Buffer {
	if gap < 0 {
		gap = 0
	}
	n := 0
	for _, s := range syllables {
		n += len(s)
	}
	if len(syllables) > 1 {
		n += gap * (len(syllables) - 1)
	}
	out := make(pcm.Buffer, 0, n)
	for i, s := range syllables {
		if i > 0 {
			out = append(out, make(pcm.Buffer, gap)...)
		}
		out = append(out, s...)
	}
	return out
}

// SyllableError reports the syllable, and the component if known, at which
// synthesis failed.
type SyllableError struct {
	Index     int
	Syllable  phoneme.Syllable
	Component *phoneme.Component
	Err       error
}

func (e *SyllableError) Error() string {
	if e.Component != nil {
		return fmt.Sprintf("syllable %d %q, %s: %v", e.Index+1, e.Syllable, e.Component, e.Err)
	}
	return fmt.Sprintf("syllable %d %q: %v", e.Index+1, e.Syllable, e.Err)
}

func (e *SyllableError) Unwrap() error {
	return e.Err
}

// Synthesizer wires the stages together. The zero value is not usable; fill
// Resolver and Library at least.
type Synthesizer struct {
	Inventory *phoneme.Inventory
	Resolver  *fragment.Resolver
	Library   *fragment.Library
	// Policy is used as given; the zero Policy selects DefaultPolicy.
	Policy splice.Policy

	// Gap is the inter-syllable silence. Zero means DefaultGap; use a
	// negative value for none.
	Gap time.Duration
}

func (s *Synthesizer) inventory() *phoneme.Inventory {
	if s.Inventory != nil {
		return s.Inventory
	}
	return phoneme.DefaultInventory()
}

// GapSamples is the number of silent samples between syllables.
func (s *Synthesizer) GapSamples() int {
	switch {
	case s.Gap < 0:
		return 0
	case s.Gap == 0:
		return s.Library.Format().SamplesInDuration(DefaultGap)
	}
	return s.Library.Format().SamplesInDuration(s.Gap)
}

// Synthesize renders mapping into a word waveform.
func (s *Synthesizer) Synthesize(ctx context.Context, mapping string) (pcm.Buffer, error) {
	word, err := s.inventory().Decompose(mapping)
	if err != nil {
		return nil, err
	}
	return s.Render(ctx, word)
}

// Render splices and assembles an already decomposed word.
func (s *Synthesizer) Render(ctx context.Context, word phoneme.Word) (pcm.Buffer, error) {
	policy := s.Policy
	if policy == (splice.Policy{}) {
		policy = splice.DefaultPolicy()
	}
	syllables := make([]pcm.Buffer, 0, len(word))
	for i, syl := range word {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frags := make([]pcm.Buffer, len(syl))
		for j, c := range syl {
			b, err := s.load(ctx, c)
			if err != nil {
				return nil, &SyllableError{Index: i, Syllable: syl, Component: &syl[j], Err: err}
			}
			frags[j] = b
		}
		b, err := policy.Splice(syl, frags)
		if err != nil {
			return nil, &SyllableError{Index: i, Syllable: syl, Err: err}
		}
		slog.Debug("syllable spliced", "index", i, "syllable", syl.String(), "samples", len(b))
		syllables = append(syllables, b)
	}
	return Assemble(syllables, s.GapSamples()), nil
}

func (s *Synthesizer) load(ctx context.Context, c phoneme.Component) (pcm.Buffer, error) {
	h, err := s.Resolver.Resolve(ctx, c)
	if err != nil {
		return nil, err
	}
	return s.Library.Load(ctx, h)
}
