package htmlform

// FieldMap keeps a form's fields keyed by name in document order. Setting
// an existing key replaces the field in its original slot.
type FieldMap struct {
	keys   []string
	fields map[string]*Field
}

func NewFieldMap() *FieldMap {
	return &FieldMap{fields: make(map[string]*Field)}
}

func (m *FieldMap) Set(key string, f *Field) {
	if _, exists := m.fields[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.fields[key] = f
}

func (m *FieldMap) Get(key string) (*Field, bool) {
	f, ok := m.fields[key]
	return f, ok
}

func (m *FieldMap) Has(key string) bool {
	_, ok := m.fields[key]
	return ok
}

func (m *FieldMap) Len() int {
	return len(m.keys)
}

// Names returns the keys in insertion order.
func (m *FieldMap) Names() []string {
	return append([]string(nil), m.keys...)
}

// Each visits fields in insertion order until fn returns false.
func (m *FieldMap) Each(fn func(key string, f *Field) bool) {
	for _, key := range m.keys {
		if !fn(key, m.fields[key]) {
			return
		}
	}
}

// Clone copies the map and every field in it.
func (m *FieldMap) Clone() *FieldMap {
	c := &FieldMap{
		keys:   append([]string(nil), m.keys...),
		fields: make(map[string]*Field, len(m.fields)),
	}
	for key, f := range m.fields {
		c.fields[key] = f.clone()
	}
	return c
}
