package form

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
)

// FormValidator runs after every field validated. It may return a
// ValidationError (form-level when Field is empty), a FieldErrors payload, or
// a fault.
type FormValidator func(ctx context.Context, f *Form) error

// Schema is an ordered mapping of field name to descriptor plus form-level
// validators. A Schema stands in for a generated form type: it is immutable
// once built and binds any number of submissions.
type Schema struct {
	name       string
	fields     []Field
	index      map[string]int
	validators []FormValidator
}

// NewSchema builds a schema from descriptors, preserving their order.
func NewSchema(name string, fields ...Field) (*Schema, error) {
	s := &Schema{
		name:  strings.TrimSpace(name),
		index: make(map[string]int, len(fields)),
	}
	for _, field := range fields {
		if err := s.add(field); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustSchema is NewSchema that panics on error.
func MustSchema(name string, fields ...Field) *Schema {
	s, err := NewSchema(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Base returns an empty schema suitable as the base of generated forms.
func Base() *Schema {
	return MustSchema("BaseForm")
}

func (s *Schema) add(field Field) error {
	name := strings.TrimSpace(field.Name)
	if name == "" {
		return errors.New("form: field name is required")
	}
	if _, exists := s.index[name]; exists {
		return errors.Newf("form: duplicate field %q", name)
	}
	field.Name = name
	s.index[name] = len(s.fields)
	s.fields = append(s.fields, field)
	return nil
}

// Name returns the schema name, e.g. "UserForm".
func (s *Schema) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Fields returns the descriptors in order.
func (s *Schema) Fields() []Field {
	if s == nil {
		return nil
	}
	return append([]Field(nil), s.fields...)
}

// Field looks up a descriptor by name.
func (s *Schema) Field(name string) (Field, bool) {
	if s == nil {
		return Field{}, false
	}
	idx, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[idx], true
}

// Has reports whether the schema contains name.
func (s *Schema) Has(name string) bool {
	_, ok := s.Field(name)
	return ok
}

// Names lists field names in order.
func (s *Schema) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.fields))
	for _, field := range s.fields {
		names = append(names, field.Name)
	}
	return names
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}

// Validators returns the form-level validators.
func (s *Schema) Validators() []FormValidator {
	if s == nil {
		return nil
	}
	return append([]FormValidator(nil), s.validators...)
}

// WithValidators returns a copy of s with extra form-level validators.
func (s *Schema) WithValidators(validators ...FormValidator) *Schema {
	clone := s.clone(s.Name())
	for _, v := range validators {
		if v != nil {
			clone.validators = append(clone.validators, v)
		}
	}
	return clone
}

// Extend derives a new schema named name whose fields are exactly fields and
// which inherits the form-level validators of s.
func (s *Schema) Extend(name string, fields ...Field) (*Schema, error) {
	derived, err := NewSchema(name, fields...)
	if err != nil {
		return nil, err
	}
	derived.validators = s.Validators()
	return derived, nil
}

func (s *Schema) clone(name string) *Schema {
	out := &Schema{
		name:  name,
		index: make(map[string]int),
	}
	if s == nil {
		return out
	}
	out.fields = append([]Field(nil), s.fields...)
	for k, v := range s.index {
		out.index[k] = v
	}
	out.validators = append([]FormValidator(nil), s.validators...)
	return out
}
