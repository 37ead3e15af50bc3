package phoneme

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedMapping is the class of every decomposition failure.
var ErrMalformedMapping = errors.New("phoneme: malformed mapping")

// MappingError describes which syllable of a mapping string was rejected.
type MappingError struct {
	// Index is the 0-based syllable position, or -1 for the whole mapping.
	Index  int
	Text   string
	Reason string
}

func (e *MappingError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%v: %q: %s", ErrMalformedMapping, e.Text, e.Reason)
	}
	return fmt.Sprintf("%v: syllable %d %q: %s", ErrMalformedMapping, e.Index+1, e.Text, e.Reason)
}

func (e *MappingError) Unwrap() error {
	return ErrMalformedMapping
}

// Decompose splits a mapping string into typed syllables.
//
// Roles are assigned by position: a consonant at index 0 is an initial, a
// consonant at the last index is a final (nasal for n/ng), anything else is
// a vowel. A consonant anywhere else, or a syllable that is not one of
// [V], [C V], [C V C], is rejected.
func (inv *Inventory) Decompose(mapping string) (Word, error) {
	mapping = strings.TrimSpace(mapping)
	if mapping == "" {
		return nil, &MappingError{Index: -1, Text: mapping, Reason: "empty mapping"}
	}

	parts := strings.Split(mapping, SyllableSep)
	out := make(Word, 0, len(parts))
	for i, part := range parts {
		syl, reason := inv.decomposeSyllable(part)
		if reason != "" {
			return nil, &MappingError{Index: i, Text: part, Reason: reason}
		}
		out = append(out, syl)
	}
	return out, nil
}

func (inv *Inventory) decomposeSyllable(s string) (Syllable, string) {
	if s == "" {
		return nil, "empty syllable"
	}
	tokens := strings.Split(s, TokenSep)
	n := len(tokens)
	if n > 3 {
		return nil, fmt.Sprintf("%d components (want 1-3)", n)
	}

	syl := make(Syllable, n)
	for i, raw := range tokens {
		tok := Token(raw)
		if tok == "" {
			return nil, fmt.Sprintf("empty component at position %d", i+1)
		}
		role := VowelCore
		if inv.IsConsonant(tok) {
			switch {
			case i == 0:
				role = InitialConsonant
			case i == n-1 && IsNasal(tok):
				role = FinalNasal
			case i == n-1:
				role = FinalConsonant
			default:
				return nil, fmt.Sprintf("ambiguous role for consonant %q at position %d", tok, i+1)
			}
		}
		syl[i] = Component{Token: tok, Role: role}
	}

	if reason := checkShape(syl); reason != "" {
		return nil, reason
	}
	return syl, ""
}

// checkShape accepts [V], [C V] and [C V C].
func checkShape(syl Syllable) string {
	switch len(syl) {
	case 1:
		if syl[0].Role != VowelCore {
			return fmt.Sprintf("single component %q is not a vowel", syl[0].Token)
		}
	case 2:
		if syl[0].Role != InitialConsonant || syl[1].Role != VowelCore {
			return fmt.Sprintf("two components must be consonant+vowel, got %s+%s", syl[0].Role, syl[1].Role)
		}
	case 3:
		if syl[0].Role != InitialConsonant || syl[1].Role != VowelCore || !syl[2].Role.IsConsonant() {
			return fmt.Sprintf("three components must be consonant+vowel+consonant, got %s+%s+%s",
				syl[0].Role, syl[1].Role, syl[2].Role)
		}
	}
	return ""
}
