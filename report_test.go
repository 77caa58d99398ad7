package htmlform

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
)

func TestConsoleReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)

	r.Report(Diagnostic{Level: LevelInfo, Message: "Submitting with 'go'"})
	r.Report(Diagnostic{Level: LevelWarn, Message: "Setting value of hidden field 'token'."})

	out := buf.String()
	for _, want := range []string{"[*] Submitting with 'go'", "[!] Setting value of hidden field 'token'."} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got: %q", want, out)
		}
	}
}

func TestWithReporterIgnoresNil(t *testing.T) {
	o := buildOptions([]Option{WithReporter(nil), WithWorkers(0)})
	if o.reporter == nil {
		t.Error("Expected default reporter to be kept")
	}
	if o.workers != 1 {
		t.Errorf("Expected 1 worker, got %d", o.workers)
	}
}

func TestConsoleReporterConcurrent(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Report(Diagnostic{Level: LevelWarn, Message: fmt.Sprintf("message %d", i)})
		}(i)
	}
	wg.Wait()

	if got := strings.Count(buf.String(), "[!] message "); got != 20 {
		t.Errorf("Expected 20 lines, got %d: %q", got, buf.String())
	}
}
