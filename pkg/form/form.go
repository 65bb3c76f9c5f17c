package form

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
)

// FormErrorsKey is the Errors() key holding form-level messages.
const FormErrorsKey = "_form"

// Getter resolves the current value of a named attribute on an object.
type Getter func(name string) (any, bool)

// BoundField is a descriptor bound to one submission.
type BoundField struct {
	Field

	// Raw holds the submitted strings; nil when the submission omitted the
	// field.
	Raw    []string
	Data   any
	Errors []string

	processErrors []string
}

func (b *BoundField) emptyInput(strip bool) bool {
	if len(b.Raw) == 0 {
		return true
	}
	value := b.Raw[0]
	if strip {
		value = strings.TrimSpace(value)
	}
	return value == ""
}

// Form is a bound form instance. It is not safe for concurrent use; bind one
// form per request.
type Form struct {
	schema     *Schema
	fields     []*BoundField
	index      map[string]*BoundField
	formErrors []string
	validated  bool
}

// Bind creates a form from submitted values. Fields missing from values take
// their declared default.
func (s *Schema) Bind(values map[string][]string) *Form {
	return s.Load(nil).Submit(values)
}

// New creates a form pre-populated from obj, which may be a struct, a pointer
// to a struct, or a map keyed by field name.
func (s *Schema) New(obj any) *Form {
	return s.Load(ObjectGetter(obj, ""))
}

// Load creates a form whose initial values come from get. Filters run on the
// loaded values.
func (s *Schema) Load(get Getter) *Form {
	f := &Form{
		schema: s,
		index:  make(map[string]*BoundField, s.Len()),
	}
	for _, field := range s.Fields() {
		bound := &BoundField{Field: field, Data: field.Default}
		if get != nil {
			if value, ok := get(field.Name); ok {
				bound.Data = value
			}
		}
		bound.Data = applyFilters(field, bound.Data)
		f.fields = append(f.fields, bound)
		f.index[field.Name] = bound
	}
	return f
}

// Submit overlays submitted values onto the form. Fields absent from values
// keep their loaded data, except booleans which read as unchecked.
func (f *Form) Submit(values map[string][]string) *Form {
	f.validated = false
	f.formErrors = nil
	for _, bound := range f.fields {
		bound.Errors = nil
		bound.processErrors = nil
		if bound.ReadOnly {
			continue
		}
		raw, ok := values[bound.Name]
		if !ok {
			bound.Raw = nil
			if bound.Kind == KindBoolean && values != nil {
				bound.Data = false
			}
			continue
		}
		bound.Raw = append([]string(nil), raw...)
		data, err := coerce(bound.Field, bound.Raw)
		if err != nil {
			bound.Data = nil
			bound.processErrors = append(bound.processErrors, err.Error())
			continue
		}
		bound.Data = applyFilters(bound.Field, data)
	}
	return f
}

// Schema returns the schema the form was bound from.
func (f *Form) Schema() *Schema {
	return f.schema
}

// Field returns the bound field by name.
func (f *Form) Field(name string) (*BoundField, bool) {
	bound, ok := f.index[name]
	return bound, ok
}

// Fields returns the bound fields in schema order.
func (f *Form) Fields() []*BoundField {
	return append([]*BoundField(nil), f.fields...)
}

// Validate runs every validator and reports whether the form is valid. Faults
// raised by validators are recorded as form-level errors.
func (f *Form) Validate() bool {
	ok, err := f.ValidateContext(context.Background())
	if err != nil {
		f.formErrors = MergeFormErrors(f.formErrors, err.Error())
		return false
	}
	return ok
}

// ValidateContext validates the form. Validation failures are collected in
// Errors(); the returned error is reserved for faults such as a failing
// uniqueness lookup.
func (f *Form) ValidateContext(ctx context.Context) (bool, error) {
	f.formErrors = nil
	for _, bound := range f.fields {
		if err := f.validateField(ctx, bound); err != nil {
			return false, err
		}
	}

	for _, validator := range f.schema.Validators() {
		if err := f.applyFormValidator(ctx, validator); err != nil {
			return false, err
		}
	}

	f.validated = true
	return !f.HasErrors(), nil
}

func (f *Form) validateField(ctx context.Context, bound *BoundField) error {
	bound.Errors = append([]string(nil), bound.processErrors...)
	if bound.ReadOnly {
		bound.Errors = nil
		return nil
	}
	for _, validator := range bound.Validators {
		if validator == nil {
			continue
		}
		err := validator.Validate(ctx, f, bound)
		if err == nil {
			continue
		}
		var stop StopValidation
		if errors.As(err, &stop) {
			if stop.Message != "" {
				bound.Errors = append(bound.Errors, stop.Message)
			}
			break
		}
		var invalid ValidationError
		if errors.As(err, &invalid) {
			bound.Errors = append(bound.Errors, invalid.Message)
			continue
		}
		return errors.Wrapf(err, "form: validator %s on field %s", validator.Name(), bound.Name)
	}
	bound.Errors = normalizeMessages(bound.Errors)
	return nil
}

func (f *Form) applyFormValidator(ctx context.Context, validator FormValidator) error {
	if validator == nil {
		return nil
	}
	err := validator(ctx, f)
	if err == nil {
		return nil
	}

	var payload FieldErrors
	if errors.As(err, &payload) {
		f.MergeErrors(payload)
		return nil
	}
	var invalid ValidationError
	if errors.As(err, &invalid) {
		if bound, ok := f.index[invalid.Field]; ok {
			bound.Errors = normalizeMessages(append(bound.Errors, invalid.Message))
		} else {
			f.formErrors = MergeFormErrors(f.formErrors, invalid.Message)
		}
		return nil
	}
	return errors.Wrap(err, "form: form validator")
}

// Validated reports whether validation has completed since the last submit.
func (f *Form) Validated() bool {
	return f.validated
}

// HasErrors reports whether any field or form-level error is recorded.
func (f *Form) HasErrors() bool {
	if len(f.formErrors) > 0 {
		return true
	}
	for _, bound := range f.fields {
		if len(bound.Errors) > 0 {
			return true
		}
	}
	return false
}

// Errors returns field messages keyed by field name. Form-level messages are
// stored under FormErrorsKey.
func (f *Form) Errors() map[string][]string {
	out := make(map[string][]string)
	for _, bound := range f.fields {
		if len(bound.Errors) > 0 {
			out[bound.Name] = append([]string(nil), bound.Errors...)
		}
	}
	if len(f.formErrors) > 0 {
		out[FormErrorsKey] = append([]string(nil), f.formErrors...)
	}
	return out
}

// FormErrors returns the form-level messages.
func (f *Form) FormErrors() []string {
	return append([]string(nil), f.formErrors...)
}

// Data returns the current value of every field keyed by name.
func (f *Form) Data() map[string]any {
	out := make(map[string]any, len(f.fields))
	for _, bound := range f.fields {
		out[bound.Name] = bound.Data
	}
	return out
}

// Value returns the current value of a field.
func (f *Form) Value(name string) (any, bool) {
	bound, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return bound.Data, true
}

func applyFilters(field Field, value any) any {
	for _, filter := range field.Filters {
		if filter != nil {
			value = filter(value)
		}
	}
	return value
}
