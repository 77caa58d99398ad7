package htmlform

import (
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustDocument(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("failed to parse HTML: %v", err)
	}
	return doc
}

func mustForm(t *testing.T, markup string, opts ...Option) *Form {
	t.Helper()
	opts = append([]Option{WithReporter(Discard)}, opts...)
	forms, err := ParseForms(mustDocument(t, markup).Selection, opts...)
	if err != nil {
		t.Fatalf("ParseForms failed: %v", err)
	}
	if len(forms) != 1 {
		t.Fatalf("Expected 1 form, got %d", len(forms))
	}
	return forms[0]
}

// recorder collects diagnostics for assertions.
type recorder struct {
	mu    sync.Mutex
	diags []Diagnostic
}

func (r *recorder) Report(d Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diags = append(r.diags, d)
}

func (r *recorder) count(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, d := range r.diags {
		if d.Level == level {
			n++
		}
	}
	return n
}

func (r *recorder) contains(substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.diags {
		if strings.Contains(d.Message, substr) {
			return true
		}
	}
	return false
}
