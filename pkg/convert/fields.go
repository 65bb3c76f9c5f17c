package convert

import (
	"github.com/cockroachdb/errors"

	"github.com/goliatone/go-modeladmin/pkg/form"
	"github.com/goliatone/go-modeladmin/pkg/model"
)

// FieldOption configures ModelFields and ModelForm.
type FieldOption func(*fieldOptions)

type fieldOptions struct {
	include    []string
	exclude    []string
	readonly   []string
	fieldArgs  map[string]FieldArgs
	converter  Converter
	primaryKey bool
}

// Include keeps only the named fields. It takes precedence over Exclude.
func Include(names ...string) FieldOption {
	return func(o *fieldOptions) {
		o.include = append(o.include, names...)
	}
}

// Exclude drops the named fields.
func Exclude(names ...string) FieldOption {
	return func(o *fieldOptions) {
		o.exclude = append(o.exclude, names...)
	}
}

// Readonly converts the named fields but marks them read-only: submitted
// values are ignored and never written back.
func Readonly(names ...string) FieldOption {
	return func(o *fieldOptions) {
		o.readonly = append(o.readonly, names...)
	}
}

// WithFieldArgs sets per-field construction overrides.
func WithFieldArgs(args map[string]FieldArgs) FieldOption {
	return func(o *fieldOptions) {
		if o.fieldArgs == nil {
			o.fieldArgs = make(map[string]FieldArgs, len(args))
		}
		for name, arg := range args {
			o.fieldArgs[name] = arg
		}
	}
}

// WithConverter replaces the default converter.
func WithConverter(c Converter) FieldOption {
	return func(o *fieldOptions) {
		o.converter = c
	}
}

// WithPrimaryKey keeps the primary key in ModelForm output. Creation flows
// that accept manual keys use it.
func WithPrimaryKey() FieldOption {
	return func(o *fieldOptions) {
		o.primaryKey = true
	}
}

var defaultConverter = NewRegistry()

func newFieldOptions(opts []FieldOption) fieldOptions {
	var o fieldOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.converter == nil {
		o.converter = defaultConverter
	}
	return o
}

// ModelFields converts every selected field of m in declaration order.
// Fields without a conversion rule are omitted.
func ModelFields(m model.Model, opts ...FieldOption) ([]form.Field, error) {
	if m == nil {
		return nil, errors.New("convert: model is nil")
	}
	return modelFields(m, newFieldOptions(opts), ""), nil
}

func modelFields(m model.Model, o fieldOptions, skip string) []form.Field {
	include := toSet(o.include)
	exclude := toSet(o.exclude)
	readonly := toSet(o.readonly)

	var out []form.Field
	for _, field := range m.Fields() {
		if skip != "" && field.Name == skip {
			continue
		}
		if include != nil {
			if _, ok := include[field.Name]; !ok {
				continue
			}
		} else if exclude != nil {
			if _, ok := exclude[field.Name]; ok {
				continue
			}
		}

		var args *FieldArgs
		if override, ok := o.fieldArgs[field.Name]; ok {
			args = &override
		}
		converted, ok := o.converter.Convert(m, field, args)
		if !ok {
			continue
		}
		if _, ok := readonly[field.Name]; ok {
			converted.ReadOnly = true
		}
		out = append(out, converted)
	}
	return out
}

// ModelForm builds a schema named after m ("User" becomes "UserForm") that
// extends base. The primary key is always excluded unless WithPrimaryKey is
// given.
func ModelForm(m model.Model, base *form.Schema, opts ...FieldOption) (*form.Schema, error) {
	if m == nil {
		return nil, errors.New("convert: model is nil")
	}
	o := newFieldOptions(opts)

	skip := m.PrimaryKey()
	if o.primaryKey {
		skip = ""
	}
	if base == nil {
		base = form.Base()
	}

	schema, err := base.Extend(m.Name()+"Form", modelFields(m, o, skip)...)
	if err != nil {
		return nil, errors.Wrapf(err, "convert: build form for %s", m.Name())
	}
	return schema, nil
}

func toSet(names []string) map[string]struct{} {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}
