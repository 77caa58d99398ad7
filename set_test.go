package htmlform

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const setValuesHTML = `<form action="/search">
	<input type="text" name="q" value="">
	<input type="hidden" name="token" value="abc">
	<select name="lang"><option value="en" selected>English</option><option value="fr">French</option></select>
	<textarea name="notes"></textarea>
	<input type="submit" name="go" value="Search">
</form>`

func TestSetValuesUnknownFields(t *testing.T) {
	form := mustForm(t, setValuesHTML)

	_, err := SetValues(form, map[string]string{"zeta": "1", "q": "pony", "alpha": "2"}, WithReporter(Discard))

	var unknown *UnknownFieldError
	if !errors.As(err, &unknown) {
		t.Fatalf("Expected UnknownFieldError, got %v", err)
	}
	if !errors.Is(err, ErrUnknownField) {
		t.Error("Expected error to match ErrUnknownField")
	}
	if diff := cmp.Diff([]string{"alpha", "zeta"}, unknown.Names); diff != "" {
		t.Errorf("unknown names mismatch (-want +got):\n%s", diff)
	}
	if f, _ := form.Fields.Get("q"); f.Value != "" {
		t.Errorf("Form changed despite failure: q = %q", f.Value)
	}
}

func TestSetValuesSubmitIsImmutable(t *testing.T) {
	form := mustForm(t, setValuesHTML)

	_, err := SetValues(form, map[string]string{"q": "pony", "go": "Other"}, WithReporter(Discard))

	var immutable *ImmutableFieldError
	if !errors.As(err, &immutable) {
		t.Fatalf("Expected ImmutableFieldError, got %v", err)
	}
	if immutable.Name != "go" {
		t.Errorf("Expected offending field go, got %s", immutable.Name)
	}
	if f, _ := form.Fields.Get("go"); f.Value != "Search" {
		t.Errorf("Submit value changed: %q", f.Value)
	}
	if f, _ := form.Fields.Get("q"); f.Value != "" {
		t.Errorf("Form partially changed: q = %q", f.Value)
	}
}

func TestSetValuesHiddenWarns(t *testing.T) {
	form := mustForm(t, setValuesHTML)
	rec := &recorder{}

	updated, err := SetValues(form, map[string]string{"token": "xyz"}, WithReporter(rec))
	if err != nil {
		t.Fatalf("SetValues failed: %v", err)
	}
	if f, _ := updated.Fields.Get("token"); f.Value != "xyz" {
		t.Errorf("Expected token xyz, got %q", f.Value)
	}
	if rec.count(LevelWarn) != 1 || !rec.contains("token") {
		t.Errorf("Expected one warning naming token, got %+v", rec.diags)
	}
	if f, _ := form.Fields.Get("token"); f.Value != "abc" {
		t.Errorf("Original form changed: token = %q", f.Value)
	}
}

func TestSetValuesNonInputFields(t *testing.T) {
	form := mustForm(t, setValuesHTML)
	rec := &recorder{}

	updated, err := SetValues(form, map[string]string{"lang": "fr", "notes": "hi"}, WithReporter(rec))
	if err != nil {
		t.Fatalf("SetValues failed: %v", err)
	}
	if f, _ := updated.Fields.Get("lang"); !cmp.Equal([]string{"fr"}, f.Values()) {
		t.Errorf("Expected lang [fr], got %v", f.Values())
	}
	if f, _ := updated.Fields.Get("notes"); f.Value != "hi" {
		t.Errorf("Expected notes hi, got %q", f.Value)
	}
	if len(rec.diags) != 0 {
		t.Errorf("Expected no diagnostics, got %+v", rec.diags)
	}
}

func TestSetValuesSubmitButtonElementIsNotGuarded(t *testing.T) {
	form := mustForm(t, `<form><button type="submit" name="b" value="1">B</button></form>`)

	updated, err := SetValues(form, map[string]string{"b": "2"}, WithReporter(Discard))
	if err != nil {
		t.Fatalf("SetValues failed: %v", err)
	}
	if f, _ := updated.Fields.Get("b"); f.Value != "2" {
		t.Errorf("Expected button value 2, got %q", f.Value)
	}
}

func TestSetValuesGuardsIgnoreTypeCase(t *testing.T) {
	form := mustForm(t, `<form>
		<input type="Hidden" name="token" value="abc">
		<input type="SUBMIT" name="a" value="A">
	</form>`)

	tests := []struct {
		name      string
		overrides map[string]string
		immutable bool
		warnings  int
	}{
		{"Upper case submit", map[string]string{"a": "z"}, true, 0},
		{"Mixed case hidden", map[string]string{"token": "xyz"}, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			_, err := SetValues(form, tt.overrides, WithReporter(rec))
			if tt.immutable != errors.Is(err, ErrImmutableField) {
				t.Fatalf("Expected immutable=%v, got err %v", tt.immutable, err)
			}
			if !tt.immutable && err != nil {
				t.Fatalf("SetValues failed: %v", err)
			}
			if got := rec.count(LevelWarn); got != tt.warnings {
				t.Errorf("Expected %d warnings, got %d", tt.warnings, got)
			}
		})
	}

	if f, _ := form.Fields.Get("a"); f.Value != "A" || f.Type != "SUBMIT" {
		t.Errorf("Submit field changed or type rewritten: %+v", f)
	}
}
