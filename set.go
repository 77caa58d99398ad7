package htmlform

import "sort"

// SetValues returns a copy of form with the named fields overwritten. Every
// name is checked before anything is written, so on error form is untouched
// and no copy is made.
func SetValues(form *Form, overrides map[string]string, opts ...Option) (*Form, error) {
	o := buildOptions(opts)

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	var unknown []string
	for _, name := range names {
		if !form.Fields.Has(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return nil, &UnknownFieldError{Names: unknown}
	}

	for _, name := range names {
		field, _ := form.Fields.Get(name)
		if field.guardType() == "submit" {
			return nil, &ImmutableFieldError{Name: name}
		}
	}

	updated := form.Clone()
	for _, name := range names {
		field, _ := updated.Fields.Get(name)
		if field.guardType() == "hidden" {
			o.warnf("Setting value of hidden field '%s'.", name)
		}
		field.set(overrides[name])
	}

	return updated, nil
}
