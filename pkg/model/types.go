package model

import (
	"fmt"
	"strings"
)

// Choice is one entry of an enumerated choice set. Value is the stored value,
// Label the human-readable text.
type Choice struct {
	Value any    `json:"value"`
	Label string `json:"label"`
}

// Field describes a single native field as declared by a storage backend.
type Field struct {
	Name       string   `json:"name"`
	Kind       Kind     `json:"kind"`
	Label      string   `json:"label,omitempty"`
	HelpText   string   `json:"helpText,omitempty"`
	Nullable   bool     `json:"nullable,omitempty"`
	MaxLength  int      `json:"maxLength,omitempty"`
	Default    any      `json:"default,omitempty"`
	Choices    []Choice `json:"choices,omitempty"`
	Related    string   `json:"related,omitempty"`
	PrimaryKey bool     `json:"primaryKey,omitempty"`
	Unique     bool     `json:"unique,omitempty"`
}

// HasChoices reports whether the field declares an enumerated choice set.
func (f Field) HasChoices() bool {
	return len(f.Choices) > 0
}

func (f Field) String() string {
	return fmt.Sprintf("Field[name=%s,kind=%s]", f.Name, f.Kind)
}

// Model is the contract every backend model declaration satisfies.
type Model interface {
	// Name returns the declared type name, e.g. "User".
	Name() string
	// Fields returns the native fields in declaration order.
	Fields() []Field
	// PrimaryKey returns the name of the primary-key field.
	PrimaryKey() string
}

// Declared is a static Model assembled from explicit field declarations.
// Backends embed or return it once their own declarations are parsed.
type Declared struct {
	TypeName string
	PKName   string
	Columns  []Field
}

var _ Model = (*Declared)(nil)

// NewDeclared builds a Declared model. The primary key defaults to the first
// field flagged PrimaryKey, then to "id".
func NewDeclared(name string, fields ...Field) *Declared {
	decl := &Declared{
		TypeName: strings.TrimSpace(name),
		Columns:  append([]Field(nil), fields...),
	}
	for _, field := range decl.Columns {
		if field.PrimaryKey {
			decl.PKName = field.Name
			break
		}
	}
	if decl.PKName == "" {
		decl.PKName = "id"
	}
	return decl
}

// Name implements Model.
func (d *Declared) Name() string {
	if d == nil {
		return ""
	}
	return d.TypeName
}

// Fields implements Model. The returned slice is a copy.
func (d *Declared) Fields() []Field {
	if d == nil {
		return nil
	}
	return append([]Field(nil), d.Columns...)
}

// PrimaryKey implements Model.
func (d *Declared) PrimaryKey() string {
	if d == nil {
		return ""
	}
	return d.PKName
}

// FieldByName looks up a field of m by name.
func FieldByName(m Model, name string) (Field, bool) {
	if m == nil {
		return Field{}, false
	}
	for _, field := range m.Fields() {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// FieldNames lists the field names of m in declaration order.
func FieldNames(m Model) []string {
	if m == nil {
		return nil
	}
	fields := m.Fields()
	names := make([]string, 0, len(fields))
	for _, field := range fields {
		names = append(names, field.Name)
	}
	return names
}
