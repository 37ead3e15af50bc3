// Package main provides the wordsplice CLI tool.
//
// Usage:
//
//	wordsplice [flags] <command> [args]
//
// Commands:
//
//	run        - Generate every word of a mapping table
//	word       - Generate a single word
//	decompose  - Show how mappings split into syllables
//	resolve    - Show which fragment files a mapping uses
//	cache      - Inspect or clear the fragment cache
//	config     - Configuration management
//	version    - Show version information
//
// Configuration:
//
//	The CLI stores configuration in ~/.giztoy/wordsplice/
//	Use 'wordsplice config' commands to manage voice library contexts.
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/wordsplice/cmd/wordsplice/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
