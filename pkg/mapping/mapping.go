// Package mapping reads word mapping tables: which output word is spliced
// from which mapping string.
//
// The text form has one entry per line:
//
//	aa-iy-aa-uw-aa-eh → a_i_a_u_a_e
//
// "->" works in place of the arrow. Blank lines and lines starting with '#'
// are skipped. A line that cannot be split is kept as an Entry with Err set
// so a batch can report it alongside synthesis failures.
package mapping

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/haivivi/wordsplice/pkg/phoneme"
)

// ErrMalformedLine marks a table line without a usable target and mapping.
var ErrMalformedLine = fmt.Errorf("%w: malformed table line", phoneme.ErrMalformedMapping)

// Arrows separating target from mapping, tried in order.
var Arrows = []string{"→", "->"}

// Entry is one table row.
type Entry struct {
	Target  string `json:"target" yaml:"target"`
	Mapping string `json:"mapping" yaml:"mapping"`

	// LineNo is 1-based within the source.
	LineNo int    `json:"-" yaml:"-"`
	Raw    string `json:"-" yaml:"-"`
	Err    error  `json:"-" yaml:"-"`
}

// Line returns the entry as written in the source.
func (e Entry) Line() string {
	if e.Raw != "" {
		return e.Raw
	}
	return e.Target + " → " + e.Mapping
}

// FileName is the output file for the entry.
func (e Entry) FileName() string {
	return e.Target + ".wav"
}

// ParseLine splits one table line.
func ParseLine(line string) (target, mapping string, err error) {
	for _, arrow := range Arrows {
		parts := strings.Split(line, arrow)
		if len(parts) == 1 {
			continue
		}
		if len(parts) != 2 {
			return "", "", fmt.Errorf("%w: %q: more than one %q", ErrMalformedLine, line, arrow)
		}
		target, mapping = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if err := checkTarget(target); err != nil {
			return "", "", fmt.Errorf("%w: %q: %v", ErrMalformedLine, line, err)
		}
		if mapping == "" {
			return "", "", fmt.Errorf("%w: %q: empty mapping", ErrMalformedLine, line)
		}
		return target, mapping, nil
	}
	return "", "", fmt.Errorf("%w: %q: missing arrow", ErrMalformedLine, line)
}

// checkTarget rejects targets that cannot be used as a file name.
func checkTarget(t string) error {
	switch {
	case t == "":
		return fmt.Errorf("empty target")
	case t == "." || t == "..":
		return fmt.Errorf("target %q is not a file name", t)
	case strings.ContainsAny(t, `/\`):
		return fmt.Errorf("target %q contains a path separator", t)
	}
	return nil
}

// Parse reads a text table. Malformed lines are returned as entries with Err
// set; the error result is only for read failures.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		raw := strings.TrimSpace(sc.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		target, mapping, err := ParseLine(raw)
		entries = append(entries, Entry{
			Target:  target,
			Mapping: mapping,
			LineNo:  n,
			Raw:     raw,
			Err:     err,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("mapping: read table: %w", err)
	}
	return entries, nil
}

// ParseString is Parse over a string.
func ParseString(s string) ([]Entry, error) {
	return Parse(strings.NewReader(s))
}

// Normalize validates entries decoded from a YAML or JSON dataset, numbering
// them by position.
func Normalize(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		e.Target = strings.TrimSpace(e.Target)
		e.Mapping = strings.TrimSpace(e.Mapping)
		e.LineNo = i + 1
		e.Raw = e.Target + " → " + e.Mapping
		if err := checkTarget(e.Target); err != nil {
			e.Err = fmt.Errorf("%w: entry %d: %v", ErrMalformedLine, i+1, err)
		} else if e.Mapping == "" {
			e.Err = fmt.Errorf("%w: entry %d: empty mapping", ErrMalformedLine, i+1)
		}
		out[i] = e
	}
	return out
}

//go:embed default.txt
var defaultTable string

// Default returns the bundled recording table.
func Default() []Entry {
	entries, err := ParseString(defaultTable)
	if err != nil {
		panic("mapping: bundled table: " + err.Error())
	}
	return entries
}
