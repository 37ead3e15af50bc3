package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haivivi/wordsplice/cmd/wordsplice/internal/build"
	"github.com/haivivi/wordsplice/pkg/batch"
	"github.com/haivivi/wordsplice/pkg/cli"
	"github.com/haivivi/wordsplice/pkg/mapping"
	"github.com/haivivi/wordsplice/pkg/observe"
)

var (
	runWorkers     int
	runMetricsFile string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate every word of a mapping table",
	Long: `Generate one WAV file per entry of a mapping table.

The table is read from -f: a text file with one "<target> → <mapping>" per
line ("->" also works, '#' starts a comment), a YAML or JSON list of
{target, mapping} objects, or "-" for text on stdin. Without -f the bundled
recording table is used.

A failing entry never stops the batch. Failures are collected in
error_report.txt next to the generated words.

Examples:
  wordsplice -c studio run
  wordsplice -c studio run -f words.txt --workers 8
  wordsplice -c studio run -f words.yaml --json > summary.json
  wordsplice -c studio run --metrics-file /var/lib/node_exporter/wordsplice.prom`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "words processed concurrently (default: context workers, else 1)")
	runCmd.Flags().StringVar(&runMetricsFile, "metrics-file", "", "write Prometheus metrics to this file when done")
}

func runBatch(cmd *cobra.Command, args []string) error {
	c, err := getContext()
	if err != nil {
		return err
	}
	entries, err := loadTable(getInputFile())
	if err != nil {
		return err
	}

	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()
	out, err := lib.openOutput()
	if err != nil {
		return err
	}

	prov, err := observe.NewProvider(observe.Config{ServiceVersion: build.Version})
	if err != nil {
		return err
	}
	prov.Install()
	defer prov.Shutdown(context.WithoutCancel(cmd.Context()))
	metrics, err := batch.NewMetrics(prov.MeterProvider())
	if err != nil {
		return err
	}

	tmp, err := stagingDir()
	if err != nil {
		return err
	}

	workers := runWorkers
	if workers <= 0 {
		workers = c.Workers
	}

	quiet := isJSONOutput()
	runner := &batch.Runner{
		Synth:   lib.synth,
		Output:  out,
		Workers: workers,
		TempDir: tmp,
		Metrics: metrics,
		OnResult: func(r batch.Result) {
			switch {
			case quiet:
			case r.Err == nil:
				cli.PrintSuccess("Successfully generated: %s", r.Path)
			default:
				cli.PrintError("%s - %v", entries[r.Index].Line(), r.Err)
			}
		},
	}

	printVerbose("table: %d entries, output: %s", len(entries), out)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	sum, runErr := runner.Run(ctx, entries)

	if runMetricsFile != "" {
		if err := prov.WriteTextfile(runMetricsFile); err != nil {
			return err
		}
		printVerbose("metrics written to %s", runMetricsFile)
	}
	if sum == nil {
		return runErr
	}

	if quiet || getOutputFile() != "" {
		if err := outputResult(sum, cli.FormatYAML); err != nil {
			return err
		}
	}
	if !quiet {
		if sum.ReportPath != "" {
			fmt.Printf("Error report saved to: %s\n", sum.ReportPath)
		} else if runErr == nil {
			fmt.Println("All audio processing completed, no errors")
		}
		printVerbose("%d generated, %d failed, %d skipped in %s",
			sum.Succeeded, sum.Failed, sum.Skipped, cli.FormatDuration(sum.Elapsed))
	}
	return runErr
}

// loadTable reads a mapping table. An empty path is the bundled table and
// "-" reads text from stdin.
func loadTable(path string) ([]mapping.Entry, error) {
	switch {
	case path == "":
		return mapping.Default(), nil
	case path == "-":
		return mapping.Parse(os.Stdin)
	case cli.IsDataFile(path):
		var entries []mapping.Entry
		if err := cli.LoadData(path, &entries); err != nil {
			return nil, err
		}
		return mapping.Normalize(entries), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table: %w", err)
	}
	defer f.Close()
	return mapping.Parse(f)
}

// stagingDir returns the directory encoded words are staged in.
func stagingDir() (string, error) {
	paths, err := cli.NewPaths(appName)
	if err != nil {
		return "", err
	}
	return cli.EnsureDir(paths.TempDir())
}
