package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haivivi/wordsplice/pkg/cli"
	"github.com/haivivi/wordsplice/pkg/splice"
	"github.com/haivivi/wordsplice/pkg/storage"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration and contexts.

Each context describes one voice library: where its consonant and vowel
fragments live, where generated words go and how fragments are spliced.

Configuration is stored in ~/.giztoy/wordsplice/config.yaml`,
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Add or replace a context",
	Long: `Add a context with the specified name. An existing context with the
same name is replaced.

Examples:
  wordsplice config add-context studio \
    --consonant-dir ./initial --consonant-dir ./final \
    --vowel-dir ./vowels --output-dir ./words

  wordsplice config add-context cloud \
    --consonant-dir s3://voices/consonants --vowel-dir s3://voices/vowels \
    --output-dir s3://voices/words --s3-endpoint http://localhost:9000 --s3-path-style`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		flags := cmd.Flags()

		ctx := &cli.Context{
			ConsonantDirs: overrides.consonantDirs,
			VowelDir:      overrides.vowelDir,
			OutputDir:     overrides.outputDir,
			CacheDir:      overrides.cacheDir,
			GapMs:         overrides.gapMs,
		}
		if v, _ := flags.GetString("output-dir"); v != "" {
			ctx.OutputDir = v
		}

		var err error
		if ctx.Workers, err = flags.GetInt("workers"); err != nil {
			return fmt.Errorf("failed to read 'workers' flag: %w", err)
		}
		if ctx.Consonants, err = flags.GetStringSlice("consonants"); err != nil {
			return fmt.Errorf("failed to read 'consonants' flag: %w", err)
		}
		if len(ctx.Consonants) == 0 {
			ctx.Consonants = nil
		}
		aliases, err := flags.GetStringToString("vowel-alias")
		if err != nil {
			return fmt.Errorf("failed to read 'vowel-alias' flag: %w", err)
		}
		if len(aliases) > 0 {
			ctx.VowelAliases = aliases
		}

		var s3 storage.S3Config
		s3.Region, _ = flags.GetString("s3-region")
		s3.Endpoint, _ = flags.GetString("s3-endpoint")
		s3.AccessKey, _ = flags.GetString("s3-access-key")
		s3.SecretKey, _ = flags.GetString("s3-secret-key")
		s3.PathStyle, _ = flags.GetBool("s3-path-style")
		if s3 != (storage.S3Config{}) {
			ctx.S3 = &s3
		}

		var r splice.Ratios
		for name, dst := range map[string]**float64{
			"consonant-overlap": &r.ConsonantOverlap,
			"end-fade":          &r.EndFade,
			"end-fade-limit":    &r.EndFadeLimit,
		} {
			if !flags.Changed(name) {
				continue
			}
			v, err := flags.GetFloat64(name)
			if err != nil {
				return fmt.Errorf("failed to read '%s' flag: %w", name, err)
			}
			*dst = &v
		}
		if r != (splice.Ratios{}) {
			ctx.Splice = &r
		}

		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if err := cfg.AddContext(name, ctx); err != nil {
			return err
		}

		cli.PrintSuccess("Context %q added successfully", name)
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if err := cfg.DeleteContext(name); err != nil {
			return err
		}

		cli.PrintSuccess("Context %q deleted", name)
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if err := cfg.UseContext(name); err != nil {
			return err
		}

		cli.PrintSuccess("Switched to context %q", name)
		return nil
	},
}

var configCurrentContextCmd = &cobra.Command{
	Use:     "current-context",
	Aliases: []string{"get-context"},
	Short:   "Display the current context",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}

		if cfg.CurrentContext == "" {
			fmt.Println("No current context set")
			return nil
		}

		fmt.Println(cfg.CurrentContext)
		return nil
	},
}

var configGetContextsCmd = &cobra.Command{
	Use:     "get-contexts",
	Aliases: []string{"list-contexts"},
	Short:   "List all contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}

		if len(cfg.Contexts) == 0 {
			fmt.Println("No contexts configured")
			return nil
		}

		var list contextList
		for _, name := range cfg.ListContexts() {
			ctx := cfg.Contexts[name]
			list = append(list, contextRow{
				Current:       name == cfg.CurrentContext,
				Name:          name,
				ConsonantDirs: ctx.ConsonantDirs,
				VowelDir:      ctx.VowelDir,
				OutputDir:     ctx.OutputDir,
				GapMs:         ctx.GapMs,
			})
		}
		return outputResult(list, cli.FormatTable)
	},
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "View the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}

		view := configView{
			Path:           cfg.Path(),
			CurrentContext: cfg.CurrentContext,
			Contexts:       make(map[string]*cli.Context, len(cfg.Contexts)),
		}
		for name, ctx := range cfg.Contexts {
			view.Contexts[name] = ctx.Redacted()
		}
		return outputResult(view, cli.FormatYAML)
	},
}

type configView struct {
	Path           string                  `json:"path" yaml:"path"`
	CurrentContext string                  `json:"current_context" yaml:"current_context"`
	Contexts       map[string]*cli.Context `json:"contexts" yaml:"contexts"`
}

type contextRow struct {
	Current       bool     `json:"current" yaml:"current"`
	Name          string   `json:"name" yaml:"name"`
	ConsonantDirs []string `json:"consonant_dirs" yaml:"consonant_dirs"`
	VowelDir      string   `json:"vowel_dir" yaml:"vowel_dir"`
	OutputDir     string   `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	GapMs         int      `json:"gap_ms,omitempty" yaml:"gap_ms,omitempty"`
}

type contextList []contextRow

func (l contextList) Table() cli.Table {
	t := cli.Table{Header: []string{"CURRENT", "NAME", "CONSONANTS", "VOWELS", "OUTPUT", "GAP"}, MaxCellWidth: 40}
	for _, r := range l {
		current := ""
		if r.Current {
			current = "*"
		}
		gap := "(default)"
		switch {
		case r.GapMs < 0:
			gap = "none"
		case r.GapMs > 0:
			gap = strconv.Itoa(r.GapMs) + "ms"
		}
		t.Rows = append(t.Rows, []string{
			current, r.Name, strings.Join(r.ConsonantDirs, ","), r.VowelDir, r.OutputDir, gap,
		})
	}
	return t
}

func init() {
	// add-context flags; --consonant-dir, --vowel-dir, --out-dir,
	// --cache-dir and --gap-ms are global.
	f := configAddContextCmd.Flags()
	f.String("output-dir", "", "directory or s3://bucket/prefix for generated words")
	f.Int("workers", 0, "words processed concurrently")
	f.StringSlice("consonants", nil, "replace the consonant set (comma separated)")
	f.StringToString("vowel-alias", nil, "replace the vowel aliases, e.g. ae=a,ow=ou")
	f.String("s3-region", "", "S3 region")
	f.String("s3-endpoint", "", "S3-compatible endpoint URL")
	f.String("s3-access-key", "", "S3 access key (default: AWS_ACCESS_KEY_ID)")
	f.String("s3-secret-key", "", "S3 secret key (default: AWS_SECRET_ACCESS_KEY)")
	f.Bool("s3-path-style", false, "use path-style S3 addressing")
	f.Float64("consonant-overlap", 0, "where the vowel starts within an initial consonant (default 0.55)")
	f.Float64("end-fade", 0, "final consonant fade as a fraction of the vowel (default 0.3)")
	f.Float64("end-fade-limit", 0, "largest share of a final consonant the fade may consume (default 0.9)")

	// Add subcommands
	configCmd.AddCommand(configAddContextCmd)
	configCmd.AddCommand(configDeleteContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configCurrentContextCmd)
	configCmd.AddCommand(configGetContextsCmd)
	configCmd.AddCommand(configViewCmd)
}
