// Package runlog implements the run-scoped, append-only machining
// record. The pipeline appends one line per notable event (transform
// applied, spacing computed, pass counts); the finished log is written
// next to the numerical-control program as the run's paper trail.
//
// Appends are safe under the pipeline's per-polygon parallelism. Order
// across polygons is not deterministic, but each polygon buffers its
// own lines through a Recorder and flushes them as one block, so order
// within one polygon's messages is always preserved.
package runlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Log is the append-only text sink the pipeline writes to.
type Log interface {
	Appendf(format string, args ...any)
}

// Run is the default Log implementation: an in-memory line buffer with
// optional echo to a leveled logger.
type Run struct {
	mu    sync.Mutex
	lines []string
	echo  *log.Logger
}

// New creates an empty run log.
func New() *Run {
	return &Run{}
}

// Echo forwards every subsequently appended line to logger at debug
// level, in addition to recording it. Pass nil to stop echoing.
func (r *Run) Echo(logger *log.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.echo = logger
}

// Appendf records one formatted line.
func (r *Run) Appendf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
	if r.echo != nil {
		r.echo.Debug(line)
	}
}

// appendBlock records a group of lines as one atomic unit.
func (r *Run) appendBlock(lines []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, lines...)
	if r.echo != nil {
		for _, line := range lines {
			r.echo.Debug(line)
		}
	}
}

// Lines returns a copy of the recorded lines in append order.
func (r *Run) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// WriteTo writes the log as text, one line per record.
func (r *Run) WriteTo(w io.Writer) (int64, error) {
	text := strings.Join(r.Lines(), "\n") + "\n"
	n, err := io.WriteString(w, text)
	return int64(n), err
}

// WriteFile writes the log to path with the run date inserted before
// the extension, e.g. report.log -> report_2026-08-31.log.
func (r *Run) WriteFile(path string) error {
	date := time.Now().Format("2006-01-02")
	ext := filepath.Ext(path)
	dated := strings.TrimSuffix(path, ext) + "_" + date + ext

	f, err := os.Create(dated)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "date: %s\n", date); err != nil {
		return err
	}
	_, err = r.WriteTo(f)
	return err
}

// Recorder buffers one polygon's lines during parallel generation.
// Not safe for concurrent use; each worker owns its own Recorder.
type Recorder struct {
	run    *Run
	prefix string
	lines  []string
}

// Recorder creates a buffered recorder whose lines are prefixed with
// label and appended to the run as one block on Flush.
func (r *Run) Recorder(label string) *Recorder {
	return &Recorder{run: r, prefix: label}
}

// Appendf buffers one formatted line.
func (rc *Recorder) Appendf(format string, args ...any) {
	rc.lines = append(rc.lines, rc.prefix+": "+fmt.Sprintf(format, args...))
}

// Flush appends all buffered lines to the parent run atomically and
// clears the buffer.
func (rc *Recorder) Flush() {
	if len(rc.lines) == 0 {
		return
	}
	rc.run.appendBlock(rc.lines)
	rc.lines = nil
}

// Discard is a Log that drops everything. Useful for library callers
// that do not keep a machining record.
type Discard struct{}

// Appendf implements Log.
func (Discard) Appendf(string, ...any) {}
