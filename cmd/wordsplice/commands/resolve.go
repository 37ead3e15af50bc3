package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/haivivi/wordsplice/pkg/cli"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <mapping>",
	Short: "Show which fragment files a mapping uses",
	Long: `Resolve every phoneme of a mapping to its fragment file in the voice
library, reporting the store it was found in or the path that is missing.

Example:
  wordsplice -c studio resolve n-a_n-i-ng`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getContext()
		if err != nil {
			return err
		}
		lib, err := openLibrary(c)
		if err != nil {
			return err
		}
		defer lib.Close()

		word, err := lib.synth.Inventory.Decompose(args[0])
		if err != nil {
			return err
		}

		var out resolutions
		missing := 0
		for i, syl := range word {
			for _, comp := range syl {
				r := resolution{Syllable: i, Token: string(comp.Token), Role: comp.Role.String()}
				h, err := lib.synth.Resolver.Resolve(cmd.Context(), comp)
				switch {
				case err != nil:
					r.Error = err.Error()
					missing++
				case h.Found:
					r.Store, r.Path, r.Found = h.Store.String(), h.Path, true
				default:
					r.Store, r.Path = h.Store.String(), h.Path
					missing++
				}
				out = append(out, r)
			}
		}
		if err := outputResult(out, cli.FormatTable); err != nil {
			return err
		}
		if missing > 0 && !isJSONOutput() {
			cli.PrintWarning("%d fragment(s) missing", missing)
		}
		return nil
	},
}

type resolution struct {
	Syllable int    `json:"syllable" yaml:"syllable"`
	Token    string `json:"token" yaml:"token"`
	Role     string `json:"role" yaml:"role"`
	Store    string `json:"store,omitempty" yaml:"store,omitempty"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	Found    bool   `json:"found" yaml:"found"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

type resolutions []resolution

func (rs resolutions) Table() cli.Table {
	t := cli.Table{Header: []string{"SYL", "TOKEN", "ROLE", "FILE", "STORE"}}
	for _, r := range rs {
		store := r.Store
		switch {
		case r.Error != "":
			store = "error: " + r.Error
		case !r.Found:
			store = "(missing)"
		}
		t.Rows = append(t.Rows, []string{strconv.Itoa(r.Syllable + 1), r.Token, r.Role, r.Path, store})
	}
	return t
}
