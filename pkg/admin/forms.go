package admin

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/goliatone/go-modeladmin/pkg/convert"
	"github.com/goliatone/go-modeladmin/pkg/form"
	"github.com/goliatone/go-modeladmin/pkg/model"
	"github.com/goliatone/go-modeladmin/pkg/widgets"
)

// ExistsFunc reports whether a stored record already holds value in field.
type ExistsFunc func(ctx context.Context, field string, value any) (bool, error)

var defaultWidgets = widgets.NewRegistry()

// BuildForm converts m under cfg. The primary key is exposed only when adding
// with AllowPK set. On creation forms, fields declared unique get a
// uniqueness validator backed by exists.
func BuildForm(m model.Model, cfg Config, adding bool, exists ExistsFunc) (*form.Schema, error) {
	opts := []convert.FieldOption{
		convert.Readonly(cfg.Readonly...),
		convert.WithFieldArgs(cfg.FieldArgs),
	}
	if len(cfg.Include) > 0 {
		opts = append(opts, convert.Include(cfg.Include...))
	}
	if len(cfg.Exclude) > 0 {
		opts = append(opts, convert.Exclude(cfg.Exclude...))
	}
	if cfg.Converter != nil {
		opts = append(opts, convert.WithConverter(cfg.Converter))
	}
	if adding && cfg.AllowPK {
		opts = append(opts, convert.WithPrimaryKey())
	}

	schema, err := convert.ModelForm(m, cfg.BaseForm, opts...)
	if err != nil {
		return nil, err
	}

	fields := schema.Fields()
	for idx, field := range fields {
		if adding && exists != nil {
			if native, ok := model.FieldByName(m, field.Name); ok && native.Unique {
				field.Validators = append(field.Validators, uniqueValidator(field.Name, exists))
			}
		}
		fields[idx] = defaultWidgets.DecorateField(field)
	}
	return schema.Extend(schema.Name(), fields...)
}

func uniqueValidator(name string, exists ExistsFunc) form.Validator {
	return form.Unique{
		Exists: func(ctx context.Context, value any) (bool, error) {
			if value == nil {
				return false, nil
			}
			return exists(ctx, name, value)
		},
		Message: "Already exists.",
	}
}

// CheckForm validates f when needed and reports ErrInvalidForm for a form
// carrying errors.
func CheckForm(ctx context.Context, f *form.Form) error {
	if f == nil {
		return errors.Wrap(ErrInvalidForm, "form is nil")
	}
	if !f.Validated() {
		if _, err := f.ValidateContext(ctx); err != nil {
			return err
		}
	}
	if f.HasErrors() {
		return errors.WithDetailf(ErrInvalidForm, "%v", f.Errors())
	}
	return nil
}

// EditForm builds the edit form of m pre-loaded with the columns of instance.
func EditForm(m ModelAdmin, instance any) (*form.Form, error) {
	schema, err := m.GetForm(false)
	if err != nil {
		return nil, err
	}
	return schema.Load(func(name string) (any, bool) {
		return m.GetColumn(instance, name)
	}), nil
}
