package htmlform

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

type Level int

const (
	LevelInfo Level = iota
	LevelWarn
)

func (l Level) String() string {
	if l == LevelWarn {
		return "warn"
	}
	return "info"
}

// Diagnostic is a non-fatal note about how a form was interpreted.
type Diagnostic struct {
	Level   Level
	Message string
}

type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a plain function to the Reporter interface.
type ReporterFunc func(d Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// Discard drops every diagnostic.
var Discard Reporter = ReporterFunc(func(Diagnostic) {})

// ConsoleReporter prints diagnostics in the "[*] ..." / "[!] ..." style.
// It is safe to share between the goroutines of a parallel ParseForms.
type ConsoleReporter struct {
	Out io.Writer

	mu sync.Mutex
}

func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	if w == nil {
		w = os.Stderr
	}
	return &ConsoleReporter{Out: w}
}

func (r *ConsoleReporter) Report(d Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch d.Level {
	case LevelWarn:
		color.New(color.FgYellow).Fprintf(r.Out, "[!] %s\n", d.Message)
	default:
		color.New(color.FgCyan).Fprintf(r.Out, "[*] %s\n", d.Message)
	}
}

type options struct {
	reporter Reporter
	workers  int
}

// Option configures parsing, mutation and request derivation.
type Option func(*options)

func WithReporter(r Reporter) Option {
	return func(o *options) {
		if r != nil {
			o.reporter = r
		}
	}
}

// WithWorkers parses the forms of a document on n goroutines.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

func buildOptions(opts []Option) *options {
	o := &options{
		reporter: NewConsoleReporter(nil),
		workers:  1,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) infof(format string, args ...interface{}) {
	o.reporter.Report(Diagnostic{Level: LevelInfo, Message: fmt.Sprintf(format, args...)})
}

func (o *options) warnf(format string, args ...interface{}) {
	o.reporter.Report(Diagnostic{Level: LevelWarn, Message: fmt.Sprintf(format, args...)})
}
