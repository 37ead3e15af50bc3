package batch

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"
)

// ReportName is the file the error report is saved as in the output store.
const ReportName = "error_report.txt"

const timeLayout = "2006-01-02 15:04:05"

// Failure is one failed table entry.
type Failure struct {
	// Index orders failures by their position in the table.
	Index int
	Time  time.Time
	Line  string
	Kind  Kind
	Err   error
}

// Report collects failures. It is append-only and safe for concurrent use.
type Report struct {
	runID string
	now   func() time.Time

	mu       sync.Mutex
	failures []Failure
}

// NewReport returns an empty report for run runID.
func NewReport(runID string) *Report {
	return &Report{runID: runID, now: time.Now}
}

// Add records a failure of the table entry at index.
func (r *Report) Add(index int, line string, err error) Failure {
	f := Failure{
		Index: index,
		Time:  r.now(),
		Line:  line,
		Kind:  Classify(err),
		Err:   err,
	}
	r.mu.Lock()
	r.failures = append(r.failures, f)
	r.mu.Unlock()
	return f
}

// Len returns the number of failures so far.
func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.failures)
}

// Failures returns the failures in table order.
func (r *Report) Failures() []Failure {
	r.mu.Lock()
	out := slices.Clone(r.failures)
	r.mu.Unlock()
	slices.SortStableFunc(out, func(a, b Failure) int { return a.Index - b.Index })
	return out
}

// WriteTo renders the report as text.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	cw := &countingWriter{w: bw}
	fmt.Fprintf(cw, "Audio Processing Error Report (Generated: %s)\n", r.now().Format(timeLayout))
	if r.runID != "" {
		fmt.Fprintf(cw, "Run: %s\n", r.runID)
	}
	fmt.Fprintln(cw, strings.Repeat("=", 50))
	for i, f := range r.Failures() {
		if i > 0 {
			fmt.Fprintln(cw)
		}
		fmt.Fprintf(cw, "[%s] Processing failed: %s\n", f.Time.Format(timeLayout), f.Line)
		fmt.Fprintf(cw, "Error kind: %s\n", f.Kind)
		fmt.Fprintf(cw, "Error message: %v\n", f.Err)
	}
	if cw.err != nil {
		return cw.n, cw.err
	}
	return cw.n, bw.Flush()
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
