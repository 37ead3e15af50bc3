package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/wordsplice/pkg/audio/wav"
	"github.com/haivivi/wordsplice/pkg/cli"
	"github.com/haivivi/wordsplice/pkg/mapping"
	"github.com/haivivi/wordsplice/pkg/storage"
)

var wordTarget string

var wordCmd = &cobra.Command{
	Use:   "word <mapping>",
	Short: "Generate a single word",
	Long: `Generate one word from a mapping.

With -o the WAV file is written to that local path. Otherwise it is stored
as <target>.wav in the context's output directory, where --target defaults
to the mapping itself.

Examples:
  wordsplice -c studio word n-a_n-i -o nani.wav
  wordsplice -c studio word str-ee-t --target street`,
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

		m := args[0]
		printVerbose("synthesizing %s", m)
		buf, err := lib.synth.Synthesize(cmd.Context(), m)
		if err != nil {
			return err
		}
		format := lib.synth.Library.Format()

		result := wordResult{
			Mapping:  m,
			Samples:  len(buf),
			Duration: cli.FormatDuration(format.Duration(len(buf))),
		}

		if path := getOutputFile(); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			if err := wav.Encode(f, format, buf); err != nil {
				f.Close()
				os.Remove(path)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			result.Path = path
		} else {
			target := wordTarget
			if target == "" {
				target = m
			}
			e := mapping.Entry{Target: target, Mapping: m}
			if err := checkEntry(e); err != nil {
				return err
			}
			out, err := lib.openOutput()
			if err != nil {
				return err
			}
			dir, err := stagingDir()
			if err != nil {
				return err
			}
			tmp, err := os.CreateTemp(dir, "wordsplice-*.wav")
			if err != nil {
				return err
			}
			defer os.Remove(tmp.Name())
			defer tmp.Close()
			if err := wav.Encode(tmp, format, buf); err != nil {
				return err
			}
			if _, err := tmp.Seek(0, io.SeekStart); err != nil {
				return err
			}
			if _, err := storage.Put(cmd.Context(), out, e.FileName(), tmp); err != nil {
				return err
			}
			result.Path = out.String() + "/" + e.FileName()
		}

		if isJSONOutput() || formatOutput != "" {
			format, err := resolveFormat(cli.FormatYAML)
			if err != nil {
				return err
			}
			return cli.Output(result, cli.OutputOptions{Format: format, Writer: os.Stdout})
		}
		cli.PrintSuccess("Successfully generated: %s (%d samples, %s)", result.Path, result.Samples, result.Duration)
		return nil
	},
}

type wordResult struct {
	Mapping  string `json:"mapping" yaml:"mapping"`
	Path     string `json:"path" yaml:"path"`
	Samples  int    `json:"samples" yaml:"samples"`
	Duration string `json:"duration" yaml:"duration"`
}

// checkEntry rejects targets that are not a plain file name.
func checkEntry(e mapping.Entry) error {
	if n := mapping.Normalize([]mapping.Entry{e}); n[0].Err != nil {
		return n[0].Err
	}
	return nil
}

func init() {
	wordCmd.Flags().StringVar(&wordTarget, "target", "", "output name without .wav (default: the mapping)")
}
