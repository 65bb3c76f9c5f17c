package form

import (
	"fmt"
	"strings"
)

// Kind is the fixed form vocabulary a descriptor can take.
type Kind string

const (
	KindText           Kind = "text"
	KindTextArea       Kind = "textarea"
	KindPassword       Kind = "password"
	KindInteger        Kind = "integer"
	KindDecimal        Kind = "decimal"
	KindBoolean        Kind = "boolean"
	KindDate           Kind = "date"
	KindDateTime       Kind = "datetime"
	KindSelect         Kind = "select"
	KindFile           Kind = "file"
	KindModelReference Kind = "model-reference"
)

// Default layouts used when a descriptor does not set Format.
const (
	DefaultDateFormat     = "2006-01-02"
	DefaultDateTimeFormat = "2006-01-02 15:04:05"
	TimeOnlyFormat        = "15:04:05"
)

// Choice is a selectable option of a select descriptor.
type Choice struct {
	Value any    `json:"value"`
	Label string `json:"label"`
}

// Filter transforms a value before it is exposed as field data. Filters run
// on both submitted and object-loaded values.
type Filter func(value any) any

// CoerceFunc converts a raw submitted string into the typed value compared
// against a select descriptor's choices.
type CoerceFunc func(raw string) (any, error)

// Field is a form-field descriptor: the backend-agnostic representation of one
// editable field.
type Field struct {
	Name         string
	Kind         Kind
	Label        string
	Description  string
	Default      any
	Validators   []Validator
	Filters      []Filter
	Widget       string
	Format       string
	Choices      []Choice
	Coerce       CoerceFunc
	RelatedModel string
	ReadOnly     bool
	Metadata     map[string]string
}

// IsOptional reports whether the validator chain starts accepting empty input.
func (f Field) IsOptional() bool {
	for _, v := range f.Validators {
		if _, ok := v.(Optional); ok {
			return true
		}
	}
	return false
}

// ValidatorNames lists validator identifiers in chain order.
func (f Field) ValidatorNames() []string {
	if len(f.Validators) == 0 {
		return nil
	}
	names := make([]string, 0, len(f.Validators))
	for _, v := range f.Validators {
		if v == nil {
			continue
		}
		names = append(names, v.Name())
	}
	return names
}

// MaxLength returns the tightest maximum declared by Length validators.
func (f Field) MaxLength() (int, bool) {
	limit, found := 0, false
	for _, v := range f.Validators {
		length, ok := v.(Length)
		if !ok || length.Max <= 0 {
			continue
		}
		if !found || length.Max < limit {
			limit, found = length.Max, true
		}
	}
	return limit, found
}

func (f Field) layout() string {
	if strings.TrimSpace(f.Format) != "" {
		return f.Format
	}
	switch f.Kind {
	case KindDate:
		return DefaultDateFormat
	case KindDateTime:
		return DefaultDateTimeFormat
	default:
		return ""
	}
}

func (f Field) String() string {
	return fmt.Sprintf("Field[name=%s,kind=%s]", f.Name, f.Kind)
}
