package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/haivivi/wordsplice/pkg/cli"
	"github.com/haivivi/wordsplice/pkg/fragment"
	"github.com/haivivi/wordsplice/pkg/kv"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the fragment cache",
	Long: `Decoded fragments are cached per context in
~/.giztoy/wordsplice/cache/<context> (or the context's cache_dir), so
repeated runs do not re-read the voice library. Clear the cache after
re-recording fragments.`,
}

var cacheListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List cached fragments",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := cacheStore()
		if err != nil {
			return err
		}
		defer cache.Close()

		list, err := fragment.NewLibrary(cache).Cached(cmd.Context())
		if err != nil {
			return err
		}
		if len(list) == 0 && !isJSONOutput() && formatOutput == "" {
			cli.PrintInfo("Cache is empty")
			return nil
		}
		return outputResult(cachedFragments(list), cli.FormatTable)
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached fragments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := cacheStore()
		if err != nil {
			return err
		}
		defer cache.Close()

		n, err := fragment.NewLibrary(cache).Purge(cmd.Context())
		if err != nil {
			return err
		}
		cli.PrintSuccess("Removed %d cached fragment(s)", n)
		return nil
	},
}

// cacheStore opens the cache of the selected context.
func cacheStore() (kv.Store, error) {
	c, err := baseContext()
	if err != nil {
		return nil, err
	}
	return openCache(c)
}

type cachedFragments []fragment.CachedFragment

func (cs cachedFragments) Table() cli.Table {
	t := cli.Table{Header: []string{"STORE", "PATH", "SAMPLES", "SIZE"}, MaxCellWidth: 48}
	var total int64
	for _, c := range cs {
		t.Rows = append(t.Rows, []string{c.Store, c.Path, strconv.Itoa(c.Samples), cli.FormatBytes(int64(c.Bytes))})
		total += int64(c.Bytes)
	}
	t.Rows = append(t.Rows, []string{"", strconv.Itoa(len(cs)) + " fragment(s)", "", cli.FormatBytes(total)})
	return t
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
