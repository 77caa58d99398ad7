package htmlform

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Unnamed stands in for a missing name on buttons and forms.
const Unnamed = "<unnamed>"

// Kind is the closed set of form controls a Field can come from.
type Kind uint8

const (
	KindInput Kind = iota + 1
	KindSelect
	KindTextarea
	KindButton
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindSelect:
		return "select"
	case KindTextarea:
		return "textarea"
	case KindButton:
		return "button"
	}
	return "unknown"
}

// controlSelector matches every element that parseField understands.
const controlSelector = "input, select, textarea, button"

type SelectOption struct {
	Label    string
	Value    string
	Selected bool
}

// Field is one parsed form control. Which members are meaningful depends
// on Kind: Selected and Options only apply to selects, Type and the boolean
// attributes only to inputs and buttons.
type Field struct {
	Kind     Kind
	Name     string
	Type     string
	Value    string
	HasValue bool
	Selected []string
	Options  []SelectOption
	Checked  bool
	Disabled bool
	Readonly bool
	Required bool

	anonymous bool
}

// Named reports whether the control carried a usable name attribute.
// Anonymous controls never contribute to a request.
func (f *Field) Named() bool {
	return !f.anonymous && f.Name != ""
}

func (f *Field) IsSubmit() bool {
	return (f.Kind == KindInput || f.Kind == KindButton) && strings.EqualFold(f.Type, "submit")
}

// guardType is the lowercased type the value guards look at. Only inputs
// have one.
func (f *Field) guardType() string {
	if f.Kind != KindInput {
		return "non-input"
	}
	return strings.ToLower(f.Type)
}

// Values returns what the field contributes to a request, nil when it has
// no value at all.
func (f *Field) Values() []string {
	if f.Kind == KindSelect {
		if len(f.Selected) == 0 {
			return nil
		}
		return append([]string(nil), f.Selected...)
	}
	if !f.HasValue {
		return nil
	}
	return []string{f.Value}
}

// OptionValue looks up the value behind a display label. Later options with
// the same label win.
func (f *Field) OptionValue(label string) (string, bool) {
	value, found := "", false
	for _, opt := range f.Options {
		if opt.Label == label {
			value, found = opt.Value, true
		}
	}
	return value, found
}

func (f *Field) set(value string) {
	if f.Kind == KindSelect {
		f.Selected = []string{value}
		for i := range f.Options {
			f.Options[i].Selected = f.Options[i].Value == value
		}
		return
	}
	f.Value = value
	f.HasValue = true
}

func (f *Field) clone() *Field {
	c := *f
	c.Selected = append([]string(nil), f.Selected...)
	c.Options = append([]SelectOption(nil), f.Options...)
	return &c
}

func tagName(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	n := sel.Get(0)
	if n.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(n.Data)
}

// attr returns the attribute value, or def when the attribute is missing.
func attr(sel *goquery.Selection, name, def string) string {
	if v, ok := sel.Attr(name); ok {
		return v
	}
	return def
}

func hasAttr(sel *goquery.Selection, name string) bool {
	_, ok := sel.Attr(name)
	return ok
}

func expectTag(sel *goquery.Selection, want string) error {
	if got := tagName(sel); got != want {
		return &ShapeMismatchError{Want: want, Got: got}
	}
	return nil
}

func parseField(sel *goquery.Selection) (*Field, error) {
	switch tagName(sel) {
	case "input":
		return parseInput(sel)
	case "select":
		return parseSelect(sel)
	case "textarea":
		return parseTextarea(sel)
	case "button":
		return parseButton(sel)
	}
	return nil, &ShapeMismatchError{Want: controlSelector, Got: tagName(sel)}
}

func parseInput(sel *goquery.Selection) (*Field, error) {
	if err := expectTag(sel, "input"); err != nil {
		return nil, err
	}
	f := parseControl(sel, KindInput)
	f.Type = attr(sel, "type", "text")
	return f, nil
}

func parseButton(sel *goquery.Selection) (*Field, error) {
	if err := expectTag(sel, "button"); err != nil {
		return nil, err
	}
	f := parseControl(sel, KindButton)
	f.Type = attr(sel, "type", "")
	if f.Name == "" {
		f.Name = Unnamed
	}
	return f, nil
}

// parseControl reads the attribute set shared by inputs and buttons.
func parseControl(sel *goquery.Selection, kind Kind) *Field {
	name := attr(sel, "name", "")
	value, hasValue := sel.Attr("value")
	return &Field{
		Kind:      kind,
		Name:      name,
		Value:     value,
		HasValue:  hasValue,
		Checked:   hasAttr(sel, "checked"),
		Disabled:  hasAttr(sel, "disabled"),
		Readonly:  hasAttr(sel, "readonly"),
		Required:  hasAttr(sel, "required"),
		anonymous: name == "",
	}
}

func parseSelect(sel *goquery.Selection) (*Field, error) {
	if err := expectTag(sel, "select"); err != nil {
		return nil, err
	}
	name := attr(sel, "name", "")
	f := &Field{
		Kind:      KindSelect,
		Name:      name,
		Disabled:  hasAttr(sel, "disabled"),
		Required:  hasAttr(sel, "required"),
		anonymous: name == "",
	}
	sel.Find("option").Each(func(_ int, option *goquery.Selection) {
		label := strings.TrimSpace(option.Text())
		opt := SelectOption{
			Label:    label,
			Value:    attr(option, "value", label),
			Selected: hasAttr(option, "selected"),
		}
		f.Options = append(f.Options, opt)
		if opt.Selected && !containsString(f.Selected, opt.Value) {
			f.Selected = append(f.Selected, opt.Value)
		}
	})
	return f, nil
}

func parseTextarea(sel *goquery.Selection) (*Field, error) {
	if err := expectTag(sel, "textarea"); err != nil {
		return nil, err
	}
	name := attr(sel, "name", "")
	return &Field{
		Kind:      KindTextarea,
		Name:      name,
		Value:     sel.Text(),
		HasValue:  true,
		Disabled:  hasAttr(sel, "disabled"),
		Readonly:  hasAttr(sel, "readonly"),
		Required:  hasAttr(sel, "required"),
		anonymous: name == "",
	}, nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
