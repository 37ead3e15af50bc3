package mapping

import (
	"errors"
	"testing"

	"github.com/haivivi/wordsplice/pkg/phoneme"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line            string
		target, mapping string
	}{
		{"aa-iy-aa-uw-aa-eh → a_i_a_u_a_e", "aa-iy-aa-uw-aa-eh", "a_i_a_u_a_e"},
		{"naa->n-a", "naa", "n-a"},
		{"  hello   →   h-e_l-ou  ", "hello", "h-e_l-ou"},
	}
	for _, tt := range tests {
		target, mapping, err := ParseLine(tt.line)
		if err != nil {
			t.Fatalf("ParseLine(%q): %v", tt.line, err)
		}
		if target != tt.target || mapping != tt.mapping {
			t.Errorf("ParseLine(%q) = %q, %q; want %q, %q", tt.line, target, mapping, tt.target, tt.mapping)
		}
	}
}

func TestParseLineMalformed(t *testing.T) {
	for _, line := range []string{
		"no arrow here",
		"a → b → c",
		" → a_i",
		"word →   ",
		"../escape → a",
		"dir/word → a",
		`dir\word → a`,
	} {
		_, _, err := ParseLine(line)
		if !errors.Is(err, ErrMalformedLine) {
			t.Errorf("ParseLine(%q) err = %v, want ErrMalformedLine", line, err)
		}
		if !errors.Is(err, phoneme.ErrMalformedMapping) {
			t.Errorf("ParseLine(%q) err = %v, want it in the malformed-mapping class", line, err)
		}
	}
}

func TestParse(t *testing.T) {
	const table = `# header comment

naa → n-a
broken line
   # indented comment
niy -> n-i
`
	entries, err := ParseString(table)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3: %+v", len(entries), entries)
	}

	if e := entries[0]; e.Target != "naa" || e.Mapping != "n-a" || e.LineNo != 3 || e.Err != nil {
		t.Errorf("entry 0 = %+v", e)
	}
	if e := entries[1]; e.LineNo != 4 || !errors.Is(e.Err, ErrMalformedLine) || e.Line() != "broken line" {
		t.Errorf("entry 1 = %+v", e)
	}
	if e := entries[2]; e.Target != "niy" || e.LineNo != 6 || e.FileName() != "niy.wav" {
		t.Errorf("entry 2 = %+v", e)
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize([]Entry{
		{Target: " naa ", Mapping: " n-a "},
		{Target: "", Mapping: "a"},
		{Target: "x", Mapping: ""},
	})
	if got[0].Target != "naa" || got[0].Mapping != "n-a" || got[0].LineNo != 1 || got[0].Err != nil {
		t.Errorf("entry 0 = %+v", got[0])
	}
	if got[0].Line() != "naa → n-a" {
		t.Errorf("Line = %q", got[0].Line())
	}
	for _, e := range got[1:] {
		if !errors.Is(e.Err, ErrMalformedLine) {
			t.Errorf("entry %d err = %v, want ErrMalformedLine", e.LineNo, e.Err)
		}
	}
}

func TestDefaultTable(t *testing.T) {
	entries := Default()
	if len(entries) != 139 {
		t.Fatalf("bundled table has %d entries, want 139", len(entries))
	}
	if e := entries[0]; e.Target != "aa-iy-aa-uw-aa-eh" || e.Mapping != "a_i_a_u_a_e" {
		t.Errorf("first entry = %+v", e)
	}

	inv := phoneme.DefaultInventory()
	seen := make(map[string]bool)
	for _, e := range entries {
		if e.Err != nil {
			t.Errorf("line %d: %v", e.LineNo, e.Err)
			continue
		}
		if seen[e.Target] {
			t.Errorf("duplicate target %q", e.Target)
		}
		seen[e.Target] = true
		if _, err := inv.Decompose(e.Mapping); err != nil {
			t.Errorf("line %d %q: %v", e.LineNo, e.Mapping, err)
		}
	}
}
