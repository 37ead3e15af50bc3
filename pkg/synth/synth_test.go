package synth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/haivivi/wordsplice/pkg/audio/pcm"
	"github.com/haivivi/wordsplice/pkg/audio/wav"
	"github.com/haivivi/wordsplice/pkg/fragment"
	"github.com/haivivi/wordsplice/pkg/kv"
	"github.com/haivivi/wordsplice/pkg/phoneme"
	"github.com/haivivi/wordsplice/pkg/storage"
)

func filled(n int, v int16) pcm.Buffer {
	b := make(pcm.Buffer, n)
	for i := range b {
		b[i] = v
	}
	return b
}

// newSynth lays out fragments (name -> length) in a consonant and a vowel
// directory and returns a Synthesizer over them.
func newSynth(t *testing.T, consonants, vowels map[string]int) *Synthesizer {
	t.Helper()
	cdir, vdir := t.TempDir(), t.TempDir()
	write := func(dir string, frags map[string]int) {
		for name, n := range frags {
			f, err := os.Create(filepath.Join(dir, name))
			if err != nil {
				t.Fatal(err)
			}
			if err := wav.Encode(f, pcm.L16Mono44K, filled(n, 1000)); err != nil {
				t.Fatal(err)
			}
			f.Close()
		}
	}
	write(cdir, consonants)
	write(vdir, vowels)

	open := func(dir string) storage.FileStore {
		s, err := storage.OpenLocal(dir)
		if err != nil {
			t.Fatal(err)
		}
		return storage.ReadOnly(s)
	}
	return &Synthesizer{
		Resolver: &fragment.Resolver{
			ConsonantStores: []storage.FileStore{open(cdir)},
			VowelStore:      open(vdir),
		},
		Library: fragment.NewLibrary(kv.NewMemory(nil)),
	}
}

func TestAssemble(t *testing.T) {
	a, b, c := filled(3, 1), filled(2, 2), filled(1, 3)

	got := Assemble([]pcm.Buffer{a, b, c}, 2)
	want := pcm.Buffer{1, 1, 1, 0, 0, 2, 2, 0, 0, 3}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Assemble = %v, want %v", got, want)
		}
	}

	if got := Assemble([]pcm.Buffer{a}, 2205); len(got) != 3 {
		t.Errorf("single syllable must get no gap, len = %d", len(got))
	}
	if got := Assemble(nil, 2205); len(got) != 0 {
		t.Errorf("empty input len = %d", len(got))
	}
	if got := Assemble([]pcm.Buffer{a, b}, -1); len(got) != 5 {
		t.Errorf("negative gap len = %d, want 5", len(got))
	}
}

func TestSynthesizeVowelChain(t *testing.T) {
	s := newSynth(t, nil, map[string]int{"a.wav": 1000, "i.wav": 700, "u.wav": 500, "e.wav": 300})

	got, err := s.Synthesize(context.Background(), "a_i_a_u_a_e")
	if err != nil {
		t.Fatal(err)
	}
	want := 1000 + 700 + 1000 + 500 + 1000 + 300 + 5*2205
	if len(got) != want {
		t.Fatalf("len = %d, want %d", len(got), want)
	}
	// first gap starts right after the first vowel
	for i := 1000; i < 1000+2205; i++ {
		if got[i] != 0 {
			t.Fatalf("sample %d = %d inside the gap, want 0", i, got[i])
		}
	}
}

func TestSynthesizeConsonantVowel(t *testing.T) {
	s := newSynth(t, map[string]int{"n-.wav": 4000}, map[string]int{"a.wav": 8000, "i.wav": 8000})

	first, err := s.Synthesize(context.Background(), "n-a")
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 10200 {
		t.Fatalf("n-a len = %d, want 10200", len(first))
	}

	word, err := s.Synthesize(context.Background(), "n-a_n-i")
	if err != nil {
		t.Fatal(err)
	}
	if len(word) != 10200+2205+10200 {
		t.Fatalf("n-a_n-i len = %d, want %d", len(word), 10200+2205+10200)
	}
}

func TestSynthesizeGap(t *testing.T) {
	s := newSynth(t, nil, map[string]int{"a.wav": 10})
	for _, tt := range []struct {
		gap  time.Duration
		want int
	}{
		{0, 20 + 2205},
		{-1, 20},
		{10 * time.Millisecond, 20 + 441},
	} {
		s.Gap = tt.gap
		got, err := s.Synthesize(context.Background(), "a_a")
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != tt.want {
			t.Errorf("gap %v: len = %d, want %d", tt.gap, len(got), tt.want)
		}
	}
}

func TestSynthesizeMissingFragment(t *testing.T) {
	s := newSynth(t, map[string]int{"b-.wav": 100}, map[string]int{"a.wav": 100})

	_, err := s.Synthesize(context.Background(), "b-a_b-a-ng")
	if !errors.Is(err, fragment.ErrFragmentNotFound) {
		t.Fatalf("err = %v, want ErrFragmentNotFound", err)
	}
	var se *SyllableError
	if !errors.As(err, &se) {
		t.Fatalf("err = %T, want *SyllableError", err)
	}
	if se.Index != 1 || se.Component == nil || se.Component.Token != "ng" || se.Component.Role != phoneme.FinalNasal {
		t.Errorf("SyllableError = %+v, want syllable 2 component ng(final-nasal)", se)
	}
}

func TestSynthesizeMalformed(t *testing.T) {
	s := newSynth(t, nil, map[string]int{"a.wav": 100})
	for _, m := range []string{"", "a__a", "b-b-a-t"} {
		if _, err := s.Synthesize(context.Background(), m); !errors.Is(err, phoneme.ErrMalformedMapping) {
			t.Errorf("Synthesize(%q) err = %v, want ErrMalformedMapping", m, err)
		}
	}
}

func TestSynthesizeCanceled(t *testing.T) {
	s := newSynth(t, nil, map[string]int{"a.wav": 100})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Synthesize(ctx, "a"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
