package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/haivivi/wordsplice/pkg/cli"
	"github.com/haivivi/wordsplice/pkg/mapping"
	"github.com/haivivi/wordsplice/pkg/phoneme"
)

var decomposeCmd = &cobra.Command{
	Use:   "decompose [mapping...]",
	Short: "Show how mappings split into syllables",
	Long: `Decompose mappings into syllables and typed phonemes without touching
any audio. Mappings come from the arguments, or from the table given with -f
(the bundled table when neither is given).

The inventory of the selected context is used when one is available.

Examples:
  wordsplice decompose n-a_n-i-ng str-ee-t
  wordsplice decompose -f words.txt --format table`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inv := phoneme.DefaultInventory()
		if c, err := baseContext(); err == nil {
			inv = c.Inventory()
		}

		var entries []mapping.Entry
		if len(args) > 0 {
			for _, a := range args {
				entries = append(entries, mapping.Entry{Target: a, Mapping: a})
			}
		} else {
			var err error
			if entries, err = loadTable(getInputFile()); err != nil {
				return err
			}
		}

		out := make(decompositions, 0, len(entries))
		for _, e := range entries {
			d := decomposition{Target: e.Target, Mapping: e.Mapping}
			err := e.Err
			if err == nil {
				d.Syllables, err = inv.Decompose(e.Mapping)
			}
			if err != nil {
				d.Error = err.Error()
			}
			out = append(out, d)
		}
		return outputResult(out, cli.FormatYAML)
	},
}

type decomposition struct {
	Target    string       `json:"target" yaml:"target"`
	Mapping   string       `json:"mapping" yaml:"mapping"`
	Syllables phoneme.Word `json:"syllables,omitempty" yaml:"syllables,omitempty"`
	Error     string       `json:"error,omitempty" yaml:"error,omitempty"`
}

type decompositions []decomposition

func (ds decompositions) Table() cli.Table {
	t := cli.Table{Header: []string{"MAPPING", "SYLLABLE", "PHONEMES"}, MaxCellWidth: 60}
	for _, d := range ds {
		if d.Error != "" {
			t.Rows = append(t.Rows, []string{d.Mapping, "-", "error: " + d.Error})
			continue
		}
		for i, syl := range d.Syllables {
			name := d.Mapping
			if i > 0 {
				name = ""
			}
			parts := make([]string, len(syl))
			for j, c := range syl {
				parts[j] = c.String()
			}
			t.Rows = append(t.Rows, []string{name, syl.String(), strings.Join(parts, " ")})
		}
	}
	return t
}
