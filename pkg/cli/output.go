package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-yaml"
)

// OutputFormat selects how command results are rendered.
type OutputFormat string

const (
	FormatYAML  OutputFormat = "yaml"
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
	// FormatRaw writes strings and byte slices as is.
	FormatRaw OutputFormat = "raw"
)

// ParseOutputFormat validates a --format flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case "":
		return FormatYAML, nil
	case FormatYAML, FormatJSON, FormatTable, FormatRaw:
		return f, nil
	}
	return "", fmt.Errorf("unsupported output format: %s", s)
}

// OutputOptions configures Output.
type OutputOptions struct {
	Format OutputFormat

	// File receives the result instead of stdout. It is replaced only once
	// the result has been rendered completely.
	File string

	// Indent is the JSON indentation, two spaces by default.
	Indent string

	// Writer overrides File and stdout.
	Writer io.Writer
}

// Output renders result in the requested format.
func Output(result any, opts OutputOptions) error {
	var buf bytes.Buffer
	if err := render(&buf, result, opts); err != nil {
		return err
	}

	switch {
	case opts.Writer != nil:
		_, err := opts.Writer.Write(buf.Bytes())
		return err
	case opts.File != "":
		return writeFileAtomic(opts.File, buf.Bytes())
	}
	_, err := os.Stdout.Write(buf.Bytes())
	return err
}

func render(w *bytes.Buffer, result any, opts OutputOptions) error {
	switch opts.Format {
	case FormatJSON:
		indent := opts.Indent
		if indent == "" {
			indent = "  "
		}
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", indent)
		return enc.Encode(result)
	case FormatYAML, "":
		return renderYAML(w, result)
	case FormatTable:
		var t Table
		switch v := result.(type) {
		case Table:
			t = v
		case Tabler:
			t = v.Table()
		default:
			return renderYAML(w, result)
		}
		w.WriteString(t.Render(NewStyles(DefaultTheme)))
		return nil
	case FormatRaw:
		switch v := result.(type) {
		case []byte:
			w.Write(v)
			return nil
		case string:
			w.WriteString(v)
			return nil
		}
		return renderYAML(w, result)
	}
	return fmt.Errorf("unsupported output format: %s", opts.Format)
}

func renderYAML(w *bytes.Buffer, result any) error {
	data, err := yaml.MarshalWithOptions(result, yaml.UseLiteralStyleIfMultiline(true))
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	w.Write(data)
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := os.Chmod(f.Name(), 0o644); err != nil {
		os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), path)
}

// Status lines. The mark is colored when the terminal supports it.

func mark(c lipgloss.Color, s string) string {
	return lipgloss.NewStyle().Foreground(c).Render(s)
}

// PrintSuccess prints a success line to stdout.
func PrintSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stdout, mark(DefaultTheme.Primary, "✓")+" "+format+"\n", args...)
}

// PrintError prints an error line to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, mark(DefaultTheme.Error, "Error:")+" "+format+"\n", args...)
}

func PrintInfo(format string, args ...any) {
	fmt.Fprintf(os.Stdout, mark(DefaultTheme.Dim, "ℹ")+" "+format+"\n", args...)
}

func PrintWarning(format string, args ...any) {
	fmt.Fprintf(os.Stdout, mark(DefaultTheme.Warning, "⚠")+" "+format+"\n", args...)
}

// PrintVerbose prints to stderr when verbose is set.
func PrintVerbose(verbose bool, format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}
