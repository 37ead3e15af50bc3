package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/wordsplice/cmd/wordsplice/internal/build"
	"github.com/haivivi/wordsplice/pkg/cli"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if isJSONOutput() || formatOutput != "" {
			return outputResult(build.Get(), cli.FormatYAML)
		}
		fmt.Println(build.String())
		if isVerbose() {
			fmt.Printf("  go:     %s\n", build.Get().Go)
			if cfg, err := getConfig(); err == nil {
				fmt.Printf("  config: %s\n", cfg.Path())
			} else {
				fmt.Printf("  config: (unavailable: %v)\n", err)
			}
		}
		return nil
	},
}
