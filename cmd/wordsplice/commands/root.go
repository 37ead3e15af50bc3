package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/wordsplice/pkg/cli"
)

const appName = "wordsplice"

var (
	// Global flags
	cfgFile      string
	contextName  string
	outputFile   string
	inputFile    string
	outputJSON   bool
	formatOutput string
	verbose      bool

	// Voice library overrides
	overrides libraryFlags

	// Global configuration
	globalConfig *cli.Config

	// configLoadErr is reported by commands that need the config file.
	configLoadErr error
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wordsplice",
	Short: "Concatenative word synthesis from phoneme fragments",
	Long: `wordsplice - Builds spoken words from pre-recorded phoneme fragments.

A word is described by a mapping such as "n-a_n-i": syllables separated by
"_", phonemes within a syllable by "-". Each phoneme is looked up in the
voice library and the fragments are cross-faded into one waveform.

Fragments must be 44100 Hz, 16-bit, mono PCM WAV files:
  <consonant>-.wav   initial and final consonants (b-.wav, str-.wav)
  -<nasal>.wav       final nasals (-n.wav, -ng.wav)
  <vowel>.wav        vowels and diphthongs (a.wav, ou.wav)

Configuration is stored in ~/.giztoy/wordsplice/ and supports multiple voice
library contexts, similar to kubectl's context management.

Examples:
  # Describe a voice library
  wordsplice config add-context studio \
    --consonant-dir ./initial --consonant-dir ./final \
    --vowel-dir ./vowels --output-dir ./words

  # Generate the bundled word table
  wordsplice -c studio run

  # Generate one word without a config file
  wordsplice --consonant-dir ./c --vowel-dir ./v word n-a_n-i -o nani.wav
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "", "", "config file (default is ~/.giztoy/wordsplice/config.yaml)")
	pf.StringVarP(&contextName, "context", "c", "", "context name to use")
	pf.StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	pf.StringVarP(&inputFile, "file", "f", "", "input mapping table (text, YAML or JSON)")
	pf.BoolVar(&outputJSON, "json", false, "output as JSON (for piping)")
	pf.StringVar(&formatOutput, "format", "", "output format: yaml, json, table or raw")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	overrides.register(pf)

	// Add subcommands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(wordCmd)
	rootCmd.AddCommand(decomposeCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	// Configure slog based on verbose flag
	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	globalConfig, configLoadErr = cli.LoadConfigWithPath(appName, cfgFile)
	if configLoadErr != nil {
		globalConfig = nil
		slog.Debug("config not loaded", "error", configLoadErr)
	}
}

// getConfig returns the global configuration
func getConfig() (*cli.Config, error) {
	if globalConfig == nil {
		if configLoadErr != nil {
			return nil, fmt.Errorf("load config: %w", configLoadErr)
		}
		return nil, fmt.Errorf("configuration not initialized")
	}
	return globalConfig, nil
}

// getContext returns the voice library to use: the selected context with
// command-line overrides applied. Without a context the overrides alone must
// describe the library.
func getContext() (*cli.Context, error) {
	c, err := baseContext()
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// baseContext is getContext without validation, for commands that only need
// part of the library (the cache, the inventory).
func baseContext() (*cli.Context, error) {
	var c cli.Context
	cfg, cfgErr := getConfig()
	if cfgErr == nil {
		ctx, err := cfg.ResolveContext(contextName)
		switch {
		case err == nil:
			c = *ctx
		case contextName != "":
			return nil, err
		case !overrides.any():
			return nil, fmt.Errorf("no context specified. Use -c flag, set a default context with 'wordsplice config use-context', or pass --consonant-dir and --vowel-dir")
		}
	} else if contextName != "" || !overrides.any() {
		return nil, cfgErr
	}
	overrides.apply(&c)
	return &c, nil
}

// getInputFile returns the input file path
func getInputFile() string {
	return inputFile
}

// getOutputFile returns the output file path
func getOutputFile() string {
	return outputFile
}

// isJSONOutput returns whether output should be JSON
func isJSONOutput() bool {
	return outputJSON || formatOutput == string(cli.FormatJSON)
}

// isVerbose returns whether verbose mode is enabled
func isVerbose() bool {
	return verbose
}

// outputResult outputs the result using cli package. def is the format used
// when neither --json nor --format is given.
func outputResult(result any, def cli.OutputFormat) error {
	format, err := resolveFormat(def)
	if err != nil {
		return err
	}
	return cli.Output(result, cli.OutputOptions{
		Format: format,
		File:   getOutputFile(),
	})
}

// resolveFormat applies --json and --format over def.
func resolveFormat(def cli.OutputFormat) (cli.OutputFormat, error) {
	switch {
	case outputJSON:
		return cli.FormatJSON, nil
	case formatOutput != "":
		return cli.ParseOutputFormat(formatOutput)
	}
	return def, nil
}

// printVerbose prints verbose output if enabled
func printVerbose(format string, args ...any) {
	cli.PrintVerbose(verbose, format, args...)
}
