// Package htmlform reads HTML forms into an editable model and turns them
// back into the HTTP request a browser would send.
package htmlform

import (
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Encoding is how a POST body is serialized.
type Encoding string

const (
	EncodingForm      Encoding = "form"
	EncodingMultipart Encoding = "multipart"
)

const (
	MethodGet  = "GET"
	MethodPost = "POST"
)

type Form struct {
	Name    string
	Method  string
	URL     string
	HasURL  bool
	Enctype Encoding
	Fields  *FieldMap
}

// Submits returns the submit controls in document order.
func (f *Form) Submits() []*Field {
	var submits []*Field
	f.Fields.Each(func(_ string, field *Field) bool {
		if field.IsSubmit() {
			submits = append(submits, field)
		}
		return true
	})
	return submits
}

func (f *Form) submitNames() []string {
	var names []string
	f.Fields.Each(func(key string, field *Field) bool {
		if field.IsSubmit() {
			names = append(names, key)
		}
		return true
	})
	return names
}

// Clone returns a deep copy that shares nothing with f.
func (f *Form) Clone() *Form {
	c := *f
	c.Fields = f.Fields.Clone()
	return &c
}

func (f *Form) Description() string {
	action := f.URL
	if !f.HasURL {
		action = "<none>"
	}
	parts := []string{
		fmt.Sprintf("Name: %s", f.Name),
		fmt.Sprintf("Method: %s", f.Method),
		fmt.Sprintf("Action: %s", action),
		fmt.Sprintf("Fields: %d", f.Fields.Len()),
	}

	if names := f.submitNames(); len(names) > 0 {
		parts = append(parts, fmt.Sprintf("Submit: %s", strings.Join(names, "|")))
	}

	return strings.Join(parts, ", ")
}

// ParseForms parses every form in sel, which may be a whole document or a
// single form element. Forms come back in document order.
func ParseForms(sel *goquery.Selection, opts ...Option) ([]*Form, error) {
	o := buildOptions(opts)

	nodes := sel.Filter("form")
	if nodes.Length() == 0 {
		nodes = sel.Find("form")
	}

	forms := make([]*Form, nodes.Length())
	errs := make([]error, nodes.Length())

	jobs := make(chan int, nodes.Length())
	var wg sync.WaitGroup

	workers := o.workers
	if workers > len(forms) {
		workers = len(forms)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				forms[idx], errs[idx] = parseForm(nodes.Eq(idx), o)
			}
		}()
	}

	for i := range forms {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("form %d: %w", i, err)
		}
	}
	return forms, nil
}

// ParseForm parses a single <form> element.
func ParseForm(sel *goquery.Selection, opts ...Option) (*Form, error) {
	return parseForm(sel, buildOptions(opts))
}

func parseForm(sel *goquery.Selection, o *options) (*Form, error) {
	if err := expectTag(sel, "form"); err != nil {
		return nil, err
	}

	name := attr(sel, "id", attr(sel, "name", Unnamed))
	action, hasAction := sel.Attr("action")

	form := &Form{
		Name:    name,
		Method:  strings.ToUpper(strings.TrimSpace(attr(sel, "method", MethodGet))),
		URL:     action,
		HasURL:  hasAction,
		Enctype: parseEnctype(sel, name, o),
		Fields:  NewFieldMap(),
	}

	var err error
	sel.Find(controlSelector).EachWithBreak(func(_ int, control *goquery.Selection) bool {
		var field *Field
		field, err = parseField(control)
		if err != nil {
			return false
		}
		form.Fields.Set(field.Name, field)
		return true
	})
	if err != nil {
		return nil, err
	}

	return form, nil
}

func parseEnctype(sel *goquery.Selection, formName string, o *options) Encoding {
	enctype, ok := sel.Attr("enctype")
	if !ok {
		return EncodingForm
	}
	switch strings.ToLower(strings.TrimSpace(enctype)) {
	case "application/x-www-form-urlencoded":
		return EncodingForm
	case "multipart/form-data":
		return EncodingMultipart
	}
	o.warnf("Unknown enctype (%s) in form %s, defaulting to form encoded", enctype, formName)
	return EncodingForm
}
