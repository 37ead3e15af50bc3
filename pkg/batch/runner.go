// Package batch renders a whole mapping table into word files.
//
// Entries are independent: a failing entry is recorded in the error report
// and the batch moves on. Words are processed by a bounded pool of workers;
// the default of one worker reproduces the original sequential order.
package batch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/haivivi/wordsplice/pkg/audio/wav"
	"github.com/haivivi/wordsplice/pkg/mapping"
	"github.com/haivivi/wordsplice/pkg/observe"
	"github.com/haivivi/wordsplice/pkg/storage"
	"github.com/haivivi/wordsplice/pkg/synth"
)

// Result is the outcome of one table entry.
type Result struct {
	Index   int           `json:"index" yaml:"index"`
	Target  string        `json:"target" yaml:"target"`
	Path    string        `json:"path,omitempty" yaml:"path,omitempty"`
	Samples int           `json:"samples,omitempty" yaml:"samples,omitempty"`
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
	Kind    Kind          `json:"kind,omitempty" yaml:"kind,omitempty"`
	Err     error         `json:"-" yaml:"-"`
}

// Summary describes a finished run.
type Summary struct {
	RunID     string        `json:"run_id" yaml:"run_id"`
	Total     int           `json:"total" yaml:"total"`
	Succeeded int           `json:"succeeded" yaml:"succeeded"`
	Failed    int           `json:"failed" yaml:"failed"`
	Skipped   int           `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Elapsed   time.Duration `json:"elapsed" yaml:"elapsed"`

	// ReportPath is set when an error report was written.
	ReportPath string `json:"report_path,omitempty" yaml:"report_path,omitempty"`
}

// Runner renders table entries through a Synthesizer into Output.
type Runner struct {
	Synth  *synth.Synthesizer
	Output storage.FileStore

	// Workers bounds concurrent words. Values below 1 mean 1.
	Workers int

	// TempDir holds encoded files before they are copied to Output. Empty
	// means os.TempDir.
	TempDir string

	// Metrics is optional.
	Metrics *Metrics

	// OnResult is called once per entry, never concurrently.
	OnResult func(Result)

	Logger *slog.Logger
}

// Run processes entries and writes the error report if anything failed.
// Per-entry failures never make Run fail; the error result is for a
// canceled context or an error report that could not be saved.
func (r *Runner) Run(ctx context.Context, entries []mapping.Entry) (*Summary, error) {
	runID := uuid.NewString()
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("run", runID)

	report := NewReport(runID)
	sum := &Summary{RunID: runID, Total: len(entries)}
	start := time.Now()

	var mu sync.Mutex
	done := func(res Result) {
		mu.Lock()
		defer mu.Unlock()
		if res.Err != nil {
			sum.Failed++
		} else {
			sum.Succeeded++
		}
		if r.OnResult != nil {
			r.OnResult(res)
		}
	}

	workers := max(r.Workers, 1)
	log.Info("batch started", "entries", len(entries), "workers", workers, "output", r.Output.String())

	var g errgroup.Group
	g.SetLimit(workers)
	for i, e := range entries {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res := r.process(ctx, log, i, e)
			if res.Err != nil {
				report.Add(i, e.Line(), res.Err)
			}
			done(res)
			return nil
		})
	}
	g.Wait()

	sum.Skipped = sum.Total - sum.Succeeded - sum.Failed
	sum.Elapsed = time.Since(start)

	if report.Len() > 0 {
		var buf bytes.Buffer
		if _, err := report.WriteTo(&buf); err != nil {
			return sum, fmt.Errorf("batch: render error report: %w", err)
		}
		// The report is saved even when the run was canceled.
		if _, err := storage.Put(context.WithoutCancel(ctx), r.Output, ReportName, &buf); err != nil {
			return sum, fmt.Errorf("batch: save error report: %w", err)
		}
		sum.ReportPath = r.Output.String() + "/" + ReportName
	}
	log.Info("batch finished",
		"succeeded", sum.Succeeded,
		"failed", sum.Failed,
		"skipped", sum.Skipped,
		"elapsed", sum.Elapsed,
	)
	return sum, ctx.Err()
}

func (r *Runner) process(ctx context.Context, log *slog.Logger, index int, e mapping.Entry) Result {
	res := Result{Index: index, Target: e.Target}
	start := time.Now()
	ctx, span := observe.StartSpan(ctx, "wordsplice.word", trace.WithAttributes(
		attribute.Int("index", index),
		attribute.String("target", e.Target),
		attribute.String("mapping", e.Mapping),
	))
	log = observe.Logger(ctx, log)
	if r.Metrics != nil {
		r.Metrics.InFlight.Add(ctx, 1)
		defer r.Metrics.InFlight.Add(ctx, -1)
	}

	err := e.Err
	if err == nil {
		err = r.render(ctx, e, &res)
	}
	res.Elapsed = time.Since(start)
	res.Err = err
	res.Kind = Classify(err)
	if err == nil {
		span.SetAttributes(attribute.Int("samples", res.Samples))
	} else {
		span.SetAttributes(attribute.String("kind", string(res.Kind)))
	}
	observe.EndSpan(span, err)

	if err != nil {
		log.Warn("word failed", "line", e.Line(), "kind", res.Kind, "error", err)
	} else {
		log.Debug("word generated", "target", e.Target, "samples", res.Samples, "elapsed", res.Elapsed)
	}
	r.record(ctx, res)
	return res
}

func (r *Runner) render(ctx context.Context, e mapping.Entry, res *Result) error {
	buf, err := r.Synth.Synthesize(ctx, e.Mapping)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(r.TempDir, "wordsplice-*.wav")
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailure, e.FileName(), err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if err := wav.Encode(tmp, r.Synth.Library.Format(), buf); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailure, e.FileName(), err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailure, e.FileName(), err)
	}
	if _, err := storage.Put(ctx, r.Output, e.FileName(), tmp); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	res.Path = e.FileName()
	res.Samples = len(buf)
	return nil
}

func (r *Runner) record(ctx context.Context, res Result) {
	if r.Metrics == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String("status", "ok")}
	if res.Err != nil {
		attrs = []attribute.KeyValue{attribute.String("status", "failed"), attribute.String("kind", string(res.Kind))}
	}
	r.Metrics.Words.Add(ctx, 1, metric.WithAttributes(attrs...))
	r.Metrics.WordDuration.Record(ctx, res.Elapsed.Seconds())
	if res.Err == nil {
		r.Metrics.Samples.Add(ctx, int64(res.Samples))
	}
}
