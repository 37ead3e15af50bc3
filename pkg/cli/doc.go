// Package cli provides the command-line plumbing shared by wordsplice
// commands.
//
// This package includes:
//   - Configuration management (voice library contexts)
//   - Output formatting (JSON, YAML, table)
//   - Dataset file loading (YAML/JSON)
//
// Configuration is stored in ~/.giztoy/<app>/ directory, supporting
// multiple contexts similar to kubectl. Each context names the fragment
// directories of one voice library and where its words are written.
//
// Example usage:
//
//	cfg, err := cli.LoadConfig("wordsplice")
//	ctx, err := cfg.ResolveContext(name)
//
//	cli.Output(result, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    File:   outputPath,
//	})
package cli
