// Package fragment locates and loads the recorded phoneme clips a word is
// spliced from.
//
// A Resolver maps a typed component onto a file name and finds the first
// store holding it. A Library reads, validates and caches the samples.
package fragment

import (
	"context"
	"errors"
	"fmt"

	"github.com/haivivi/wordsplice/pkg/phoneme"
	"github.com/haivivi/wordsplice/pkg/storage"
)

// ErrFragmentNotFound is the class of every failure to produce a fragment's
// samples: missing file, unreadable file or wrong format.
var ErrFragmentNotFound = errors.New("fragment: not found")

// ErrFormatMismatch is returned for a fragment that is not 44.1 kHz 16-bit
// mono PCM. It is in the ErrFragmentNotFound class.
var ErrFormatMismatch = fmt.Errorf("%w: format mismatch", ErrFragmentNotFound)

// Handle points at one fragment file.
type Handle struct {
	Store storage.FileStore
	Path  string

	// Found is false when no store holds the file. Store and Path then name
	// the first candidate, for error messages.
	Found bool
}

func (h Handle) String() string {
	if h.Store == nil {
		return h.Path
	}
	return h.Store.String() + "/" + h.Path
}

// FileName returns the fragment file name for c under the bundled library's
// naming policy:
//
//	initial or final consonant  <tok>-.wav
//	final nasal                 -<tok>.wav
//	vowel                       <canonical>.wav
//
// "hh" is always the consonant recording h-.wav, whatever its role.
func FileName(inv *phoneme.Inventory, c phoneme.Component) (string, error) {
	if c.Token == "" {
		return "", fmt.Errorf("%w: empty token", ErrFragmentNotFound)
	}
	if c.Token == aspirate {
		return "h-.wav", nil
	}
	switch c.Role {
	case phoneme.InitialConsonant, phoneme.FinalConsonant:
		return string(c.Token) + "-.wav", nil
	case phoneme.FinalNasal:
		return "-" + string(c.Token) + ".wav", nil
	case phoneme.VowelCore:
		return string(inv.CanonicalVowel(c.Token)) + ".wav", nil
	}
	return "", fmt.Errorf("%w: unknown role %v for %q", ErrFragmentNotFound, c.Role, c.Token)
}

// aspirate shares the h recordings.
const aspirate phoneme.Token = "hh"

// inVowelStore reports whether c is looked up in the vowel store.
func inVowelStore(c phoneme.Component) bool {
	return c.Role == phoneme.VowelCore && c.Token != aspirate
}

// Resolver finds fragment files. Consonants are looked up in
// ConsonantStores in order; vowels in VowelStore.
type Resolver struct {
	Inventory       *phoneme.Inventory
	ConsonantStores []storage.FileStore
	VowelStore      storage.FileStore
}

// Resolve returns the handle for c. A fragment that exists in no store is
// not an error here: the handle comes back with Found unset. An error means
// no candidate path could be built or a store failed to answer; both are in
// the ErrFragmentNotFound class.
func (r *Resolver) Resolve(ctx context.Context, c phoneme.Component) (Handle, error) {
	inv := r.Inventory
	if inv == nil {
		inv = phoneme.DefaultInventory()
	}
	name, err := FileName(inv, c)
	if err != nil {
		return Handle{}, err
	}

	stores := r.ConsonantStores
	if inVowelStore(c) {
		stores = nil
		if r.VowelStore != nil {
			stores = []storage.FileStore{r.VowelStore}
		}
	}
	if len(stores) == 0 {
		return Handle{}, fmt.Errorf("%w: no %s store configured for %q", ErrFragmentNotFound, c.Role, c.Token)
	}

	for _, fs := range stores {
		ok, err := fs.Exists(ctx, name)
		if err != nil {
			return Handle{}, fmt.Errorf("%w: lookup %s in %s: %w", ErrFragmentNotFound, name, fs, err)
		}
		if ok {
			return Handle{Store: fs, Path: name, Found: true}, nil
		}
	}
	return Handle{Store: stores[0], Path: name}, nil
}
