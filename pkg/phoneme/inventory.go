package phoneme

// DefaultConsonants is the consonant and cluster set of the bundled fragment
// library. "hh" is listed so that it takes consonant roles; the fragment
// resolver maps it onto the "h" recording.
var DefaultConsonants = []string{
	"b", "ch", "d", "th", "f", "g", "h", "hh", "j", "dr", "k", "l", "m", "n", "ng",
	"p", "r", "s", "sh", "t", "v", "w", "y", "z", "zh",
	"str", "spl", "skr", "tw", "dw", "thr",
	"fr", "pr", "br", "kr", "gr", "fl", "bl", "kl", "gl",
	"sw", "sp", "st", "sk",
}

// DefaultVowelAliases maps compound spellings to canonical vowel fragments.
var DefaultVowelAliases = map[string]string{
	"ae": "a",
	"aa": "a",
	"iy": "i",
	"uw": "u",
	"eh": "e",
	"ay": "ai",
	"ey": "ei",
	"oy": "oi",
	"ow": "ou",
	"ew": "ew",
}

// Nasals are the consonants that take the FinalNasal role at syllable end.
var Nasals = []Token{"n", "ng"}

// Inventory is the read-only phoneme table a decomposer and resolver share.
// It is safe for concurrent use once built.
type Inventory struct {
	consonants map[Token]struct{}
	aliases    map[Token]Token
}

// NewInventory builds an inventory from a consonant list and a vowel alias
// table. Nil arguments fall back to the defaults.
func NewInventory(consonants []string, aliases map[string]string) *Inventory {
	if consonants == nil {
		consonants = DefaultConsonants
	}
	if aliases == nil {
		aliases = DefaultVowelAliases
	}
	inv := &Inventory{
		consonants: make(map[Token]struct{}, len(consonants)),
		aliases:    make(map[Token]Token, len(aliases)),
	}
	for _, c := range consonants {
		inv.consonants[Token(c)] = struct{}{}
	}
	for from, to := range aliases {
		inv.aliases[Token(from)] = Token(to)
	}
	return inv
}

// DefaultInventory returns the inventory of the bundled fragment library.
func DefaultInventory() *Inventory {
	return NewInventory(nil, nil)
}

// IsConsonant reports whether t is in the consonant set.
func (inv *Inventory) IsConsonant(t Token) bool {
	_, ok := inv.consonants[t]
	return ok
}

// CanonicalVowel returns the fragment name for vowel t. Tokens missing from
// the alias table are their own canonical name.
func (inv *Inventory) CanonicalVowel(t Token) Token {
	if c, ok := inv.aliases[t]; ok {
		return c
	}
	return t
}

// IsNasal reports whether t closes a syllable as a FinalNasal.
func IsNasal(t Token) bool {
	for _, n := range Nasals {
		if t == n {
			return true
		}
	}
	return false
}
