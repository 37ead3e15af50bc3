package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/haivivi/wordsplice/pkg/audio/pcm"
	"github.com/haivivi/wordsplice/pkg/audio/wav"
	"github.com/haivivi/wordsplice/pkg/fragment"
	"github.com/haivivi/wordsplice/pkg/kv"
	"github.com/haivivi/wordsplice/pkg/mapping"
	"github.com/haivivi/wordsplice/pkg/phoneme"
	"github.com/haivivi/wordsplice/pkg/splice"
	"github.com/haivivi/wordsplice/pkg/storage"
	"github.com/haivivi/wordsplice/pkg/synth"
)

type fixture struct {
	synth  *synth.Synthesizer
	outDir string
	out    storage.FileStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cdir, vdir, odir := t.TempDir(), t.TempDir(), t.TempDir()
	frags := map[string]map[string]int{
		cdir: {"n-.wav": 4000, "b-.wav": 2000},
		vdir: {"a.wav": 8000, "i.wav": 6000},
	}
	for dir, files := range frags {
		for name, n := range files {
			f, err := os.Create(filepath.Join(dir, name))
			if err != nil {
				t.Fatal(err)
			}
			if err := wav.Encode(f, pcm.L16Mono44K, make(pcm.Buffer, n)); err != nil {
				t.Fatal(err)
			}
			f.Close()
		}
	}
	open := func(dir string) storage.FileStore {
		s, err := storage.OpenLocal(dir)
		if err != nil {
			t.Fatal(err)
		}
		return s
	}
	return &fixture{
		synth: &synth.Synthesizer{
			Resolver: &fragment.Resolver{
				ConsonantStores: []storage.FileStore{storage.ReadOnly(open(cdir))},
				VowelStore:      storage.ReadOnly(open(vdir)),
			},
			Library: fragment.NewLibrary(kv.NewMemory(nil)),
		},
		outDir: odir,
		out:    open(odir),
	}
}

func (f *fixture) runner() *Runner {
	return &Runner{Synth: f.synth, Output: f.out, TempDir: os.TempDir()}
}

func mustParse(t *testing.T, table string) []mapping.Entry {
	t.Helper()
	entries, err := mapping.ParseString(table)
	if err != nil {
		t.Fatal(err)
	}
	return entries
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, ""},
		{&phoneme.MappingError{Index: 0, Text: "x", Reason: "r"}, KindMalformedMapping},
		{mapping.ErrMalformedLine, KindMalformedMapping},
		{fmt.Errorf("wrap: %w", fragment.ErrFragmentNotFound), KindFragmentNotFound},
		{fragment.ErrFormatMismatch, KindFragmentNotFound},
		{&synth.SyllableError{Err: splice.ErrUnsupportedShape}, KindUnsupportedShape},
		{fmt.Errorf("%w: disk full", ErrWriteFailure), KindWriteFailure},
		{context.Canceled, KindCanceled},
		{errors.New("boom"), KindUnknown},
	}
	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("Classify(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestRunWritesWordsAndReport(t *testing.T) {
	f := newFixture(t)
	entries := mustParse(t, `
naa → n-a
broken line
bii → b-i_z-i
ai → a_i
`)
	var results []Result
	r := f.runner()
	r.OnResult = func(res Result) { results = append(results, res) }

	sum, err := r.Run(context.Background(), entries)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Total != 4 || sum.Succeeded != 2 || sum.Failed != 2 || sum.Skipped != 0 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.RunID == "" {
		t.Error("missing run ID")
	}
	if len(results) != 4 {
		t.Fatalf("OnResult called %d times, want 4", len(results))
	}

	naa, err := os.Open(filepath.Join(f.outDir, "naa.wav"))
	if err != nil {
		t.Fatal(err)
	}
	defer naa.Close()
	got, err := wav.Decode(naa, pcm.L16Mono44K)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 10200 {
		t.Errorf("naa.wav has %d samples, want 10200", len(got))
	}
	if results[0].Samples != 10200 || results[0].Path != "naa.wav" {
		t.Errorf("result 0 = %+v", results[0])
	}

	if results[3].Samples != 8000+2205+6000 {
		t.Errorf("ai samples = %d, want %d", results[3].Samples, 8000+2205+6000)
	}
	if _, err := os.Stat(filepath.Join(f.outDir, "bii.wav")); !os.IsNotExist(err) {
		t.Error("failed word must not leave an output file")
	}

	data, err := os.ReadFile(filepath.Join(f.outDir, ReportName))
	if err != nil {
		t.Fatal(err)
	}
	report := string(data)
	for _, want := range []string{
		"Audio Processing Error Report (Generated: ",
		"Run: " + sum.RunID,
		strings.Repeat("=", 50),
		"Processing failed: broken line\nError kind: MalformedMapping\n",
		"Processing failed: bii → b-i_z-i\nError kind: FragmentNotFound\n",
		"z-.wav",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
	if strings.Index(report, "broken line") > strings.Index(report, "bii") {
		t.Error("report entries must follow table order")
	}
	if sum.ReportPath != f.out.String()+"/"+ReportName {
		t.Errorf("ReportPath = %q", sum.ReportPath)
	}
}

func TestRunNoFailuresNoReport(t *testing.T) {
	f := newFixture(t)
	sum, err := f.runner().Run(context.Background(), mustParse(t, "naa → n-a\n"))
	if err != nil {
		t.Fatal(err)
	}
	if sum.ReportPath != "" {
		t.Errorf("ReportPath = %q, want none", sum.ReportPath)
	}
	if _, err := os.Stat(filepath.Join(f.outDir, ReportName)); !os.IsNotExist(err) {
		t.Error("error report must not exist when nothing failed")
	}
}

func TestRunConcurrentWorkers(t *testing.T) {
	f := newFixture(t)
	var table strings.Builder
	for i := 0; i < 24; i++ {
		fmt.Fprintf(&table, "w%02d → n-a_b-i\n", i)
	}
	var mu sync.Mutex
	seen := make(map[string]bool)
	r := f.runner()
	r.Workers = 6
	r.OnResult = func(res Result) {
		mu.Lock()
		seen[res.Target] = true
		mu.Unlock()
	}

	sum, err := r.Run(context.Background(), mustParse(t, table.String()))
	if err != nil {
		t.Fatal(err)
	}
	if sum.Succeeded != 24 || len(seen) != 24 {
		t.Fatalf("succeeded %d, seen %d, want 24", sum.Succeeded, len(seen))
	}
	files, err := filepath.Glob(filepath.Join(f.outDir, "w*.wav"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 24 {
		t.Errorf("%d output files, want 24", len(files))
	}
}

// failingStore rejects writes of word files.
type failingStore struct {
	storage.FileStore
}

func (s failingStore) Write(ctx context.Context, path string) (io.WriteCloser, error) {
	if path == ReportName {
		return s.FileStore.Write(ctx, path)
	}
	return nil, errors.New("disk full")
}

func TestRunWriteFailure(t *testing.T) {
	f := newFixture(t)
	r := f.runner()
	r.Output = failingStore{f.out}

	var got Result
	r.OnResult = func(res Result) { got = res }
	sum, err := r.Run(context.Background(), mustParse(t, "naa → n-a\n"))
	if err != nil {
		t.Fatal(err)
	}
	if sum.Failed != 1 || got.Kind != KindWriteFailure || !errors.Is(got.Err, ErrWriteFailure) {
		t.Errorf("summary %+v, result %+v", sum, got)
	}
	data, err := os.ReadFile(filepath.Join(f.outDir, ReportName))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Error kind: WriteFailure") || !strings.Contains(string(data), "disk full") {
		t.Errorf("report:\n%s", data)
	}
}

func TestRunCanceled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sum, err := f.runner().Run(ctx, mustParse(t, "naa → n-a\nnii → n-i\n"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if sum.Skipped != 2 || sum.Succeeded != 0 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestReportFormat(t *testing.T) {
	r := NewReport("run-1")
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	r.now = func() time.Time { return at }

	r.Add(2, "second → x", fmt.Errorf("%w: b-.wav", fragment.ErrFragmentNotFound))
	r.Add(0, "first → y", errors.New("boom"))

	var sb strings.Builder
	n, err := r.WriteTo(&sb)
	if err != nil {
		t.Fatal(err)
	}
	want := "Audio Processing Error Report (Generated: 2026-03-04 05:06:07)\n" +
		"Run: run-1\n" +
		strings.Repeat("=", 50) + "\n" +
		"[2026-03-04 05:06:07] Processing failed: first → y\n" +
		"Error kind: Unknown\n" +
		"Error message: boom\n" +
		"\n" +
		"[2026-03-04 05:06:07] Processing failed: second → x\n" +
		"Error kind: FragmentNotFound\n" +
		"Error message: fragment: not found: b-.wav\n"
	if sb.String() != want {
		t.Errorf("report =\n%s\nwant\n%s", sb.String(), want)
	}
	if n != int64(len(want)) {
		t.Errorf("n = %d, want %d", n, len(want))
	}
	if r.Len() != 2 {
		t.Errorf("Len = %d", r.Len())
	}
}

func TestRunMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	f := newFixture(t)
	r := f.runner()
	r.Metrics = m
	if _, err := r.Run(context.Background(), mustParse(t, "naa → n-a\nbad\nai → a_i\n")); err != nil {
		t.Fatal(err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	find := func(name string) *metricdata.Metrics {
		for _, sm := range rm.ScopeMetrics {
			for i := range sm.Metrics {
				if sm.Metrics[i].Name == name {
					return &sm.Metrics[i]
				}
			}
		}
		t.Fatalf("metric %q not found", name)
		return nil
	}

	words, ok := find("wordsplice.words").Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatal("wordsplice.words is not an int64 sum")
	}
	byStatus := map[string]int64{}
	for _, dp := range words.DataPoints {
		status, _ := dp.Attributes.Value("status")
		byStatus[status.AsString()] += dp.Value
	}
	if byStatus["ok"] != 2 || byStatus["failed"] != 1 {
		t.Errorf("words by status = %v, want ok=2 failed=1", byStatus)
	}

	hist, ok := find("wordsplice.word.duration").Data.(metricdata.Histogram[float64])
	if !ok || len(hist.DataPoints) == 0 || hist.DataPoints[0].Count != 3 {
		t.Errorf("duration histogram = %+v", hist)
	}

	samples, ok := find("wordsplice.samples").Data.(metricdata.Sum[int64])
	if !ok || len(samples.DataPoints) != 1 || samples.DataPoints[0].Value != 10200+8000+2205+6000 {
		t.Errorf("samples = %+v", samples)
	}
}

func TestRunSpans(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	orig := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(orig)
		_ = tp.Shutdown(context.Background())
	})

	f := newFixture(t)
	if _, err := f.runner().Run(context.Background(), mustParse(t, "naa → n-a\nbii → b-i-z\n")); err != nil {
		t.Fatal(err)
	}

	spans := exp.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	byTarget := map[string]tracetest.SpanStub{}
	for _, s := range spans {
		if s.Name != "wordsplice.word" {
			t.Errorf("span name = %q", s.Name)
		}
		for _, kv := range s.Attributes {
			if kv.Key == "target" {
				byTarget[kv.Value.AsString()] = s
			}
		}
	}
	if byTarget["naa"].Status.Code != codes.Unset {
		t.Errorf("naa span status = %v", byTarget["naa"].Status)
	}
	if byTarget["bii"].Status.Code != codes.Error {
		t.Errorf("bii span status = %v, want error", byTarget["bii"].Status)
	}
}
