// Package phoneme models the units a word mapping is made of and decomposes
// mapping strings into typed syllables.
//
// A mapping string lists syllables separated by '_'; each syllable lists
// 1 to 3 tokens separated by '-':
//
//	n-a_n-i-ng    →  [n(initial) a(vowel)] [n(initial) i(vowel) ng(final nasal)]
//
// Every token carries an explicit Role from the moment it is decomposed, so
// downstream stages never re-derive roles from spelling.
package phoneme

import (
	"fmt"
	"strings"
)

// Delimiters used by mapping strings.
const (
	SyllableSep = "_"
	TokenSep    = "-"
)

// Token identifies one recorded unit, e.g. "ae", "b", "ng", "str".
type Token string

// Role is the positional function of a token within its syllable.
type Role int

const (
	// VowelCore is a vowel or diphthong.
	VowelCore Role = iota
	// InitialConsonant releases into the following vowel.
	InitialConsonant
	// FinalConsonant closes the preceding vowel.
	FinalConsonant
	// FinalNasal is a closing n or ng; it is faded out rather than released.
	FinalNasal
)

// String returns the role name used in logs and reports.
func (r Role) String() string {
	switch r {
	case VowelCore:
		return "vowel"
	case InitialConsonant:
		return "initial"
	case FinalConsonant:
		return "final"
	case FinalNasal:
		return "final-nasal"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(b []byte) error {
	for _, role := range []Role{VowelCore, InitialConsonant, FinalConsonant, FinalNasal} {
		if role.String() == string(b) {
			*r = role
			return nil
		}
	}
	return fmt.Errorf("phoneme: unknown role %q", b)
}

// IsConsonant reports whether the role belongs to a consonant.
func (r Role) IsConsonant() bool {
	return r != VowelCore
}

// Component is a token tagged with its role.
type Component struct {
	Token Token `json:"token" yaml:"token"`
	Role  Role  `json:"role" yaml:"role"`
}

func (c Component) String() string {
	return fmt.Sprintf("%s(%s)", c.Token, c.Role)
}

// Syllable is an ordered run of 1 to 3 components.
type Syllable []Component

// String renders the syllable back in mapping notation.
func (s Syllable) String() string {
	parts := make([]string, len(s))
	for i, c := range s {
		parts[i] = string(c.Token)
	}
	return strings.Join(parts, TokenSep)
}

// Word is the ordered syllables of one mapping string.
type Word []Syllable

// String renders the word back in mapping notation.
func (w Word) String() string {
	parts := make([]string, len(w))
	for i, s := range w {
		parts[i] = s.String()
	}
	return strings.Join(parts, SyllableSep)
}
