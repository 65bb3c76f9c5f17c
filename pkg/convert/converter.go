package convert

import (
	"strings"

	"github.com/goliatone/go-modeladmin/pkg/form"
	"github.com/goliatone/go-modeladmin/pkg/model"
	"github.com/goliatone/go-modeladmin/pkg/widgets"
)

// Converter turns one native field into a form descriptor. A false result
// means the field has no conversion rule and is omitted.
type Converter interface {
	Convert(m model.Model, field model.Field, args *FieldArgs) (form.Field, bool)
}

// Handler builds the descriptor for a native kind outside the simple table.
// base carries the merged label, description, default, validators and
// filters.
type Handler func(m model.Model, field model.Field, base form.Field) (form.Field, bool)

// FieldArgs overrides descriptor construction for one field. Non-zero values
// win over the derived ones; Validators and Filters, when set, replace the
// derived lists.
type FieldArgs struct {
	Label       string
	Description string
	Default     any
	Validators  []form.Validator
	Filters     []form.Filter
	Widget      string
	Format      string
	Metadata    map[string]string
}

func (a *FieldArgs) apply(base *form.Field) {
	if a == nil {
		return
	}
	if strings.TrimSpace(a.Label) != "" {
		base.Label = a.Label
	}
	if strings.TrimSpace(a.Description) != "" {
		base.Description = a.Description
	}
	if a.Default != nil {
		base.Default = a.Default
	}
	if a.Validators != nil {
		base.Validators = append([]form.Validator(nil), a.Validators...)
	}
	if a.Filters != nil {
		base.Filters = append([]form.Filter(nil), a.Filters...)
	}
	if strings.TrimSpace(a.Widget) != "" {
		base.Widget = a.Widget
	}
	if strings.TrimSpace(a.Format) != "" {
		base.Format = a.Format
	}
	if len(a.Metadata) > 0 {
		base.Metadata = make(map[string]string, len(a.Metadata))
		for k, v := range a.Metadata {
			base.Metadata[k] = v
		}
	}
}

// DefaultSimpleConversions groups native kinds by the form kind they map to
// without further configuration.
func DefaultSimpleConversions() map[form.Kind][]model.Kind {
	return map[form.Kind][]model.Kind{
		form.KindInteger: {
			model.KindAuto, model.KindInteger, model.KindSmallInteger,
			model.KindPositiveInteger, model.KindPositiveSmallInteger, model.KindBigInteger,
		},
		form.KindDecimal:  {model.KindDecimal, model.KindFloat},
		form.KindFile:     {model.KindFile, model.KindFilePath, model.KindImage},
		form.KindBoolean:  {model.KindBoolean},
		form.KindText:     {model.KindChar, model.KindPhone, model.KindSlug, model.KindUUID, model.KindObjectID},
		form.KindTextArea: {model.KindString, model.KindXML, model.KindText},
	}
}

// Option configures a Registry.
type Option func(*Registry)

// WithSimpleConversions replaces the simple conversion table.
func WithSimpleConversions(table map[form.Kind][]model.Kind) Option {
	return func(r *Registry) {
		r.simple = flattenSimple(table)
	}
}

// WithHandler registers the handler for a native kind. Registered handlers
// take precedence over the simple table and the built-in handlers.
func WithHandler(kind model.Kind, handler Handler) Option {
	return func(r *Registry) {
		if handler == nil {
			delete(r.extra, kind)
			return
		}
		r.extra[kind] = handler
	}
}

// WithRegionProvider supplies the choices used by region fields.
func WithRegionProvider(provider RegionProvider) Option {
	return func(r *Registry) {
		if provider != nil {
			r.regions = provider
		}
	}
}

// WithLabeler overrides how labels are derived from field names.
func WithLabeler(labeler func(string) string) Option {
	return func(r *Registry) {
		if labeler != nil {
			r.labeler = labeler
		}
	}
}

// Registry is the default Converter. It is immutable after construction and
// safe for concurrent use.
type Registry struct {
	simple   map[model.Kind]form.Kind
	extra    map[model.Kind]Handler
	handlers map[model.Kind]Handler
	regions  RegionProvider
	labeler  func(string) string
}

var _ Converter = (*Registry)(nil)

// NewRegistry builds a registry with the default table and handlers.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		simple:   flattenSimple(DefaultSimpleConversions()),
		extra:    make(map[model.Kind]Handler),
		handlers: make(map[model.Kind]Handler),
		regions:  EmptyRegions{},
		labeler:  DefaultLabeler,
	}
	r.registerBuiltins()
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Convert implements Converter.
func (r *Registry) Convert(m model.Model, field model.Field, args *FieldArgs) (form.Field, bool) {
	base := form.Field{
		Name:        field.Name,
		Label:       field.Label,
		Description: field.HelpText,
		Default:     field.Default,
	}
	if strings.TrimSpace(base.Label) == "" {
		base.Label = r.labeler(field.Name)
	}
	args.apply(&base)

	if field.Nullable {
		base.Validators = append(base.Validators, form.Optional{})
	}
	if field.MaxLength > 0 {
		base.Validators = append(base.Validators, form.Length{Max: field.MaxLength})
	}

	if field.HasChoices() {
		base.Kind = form.KindSelect
		base.Choices = convertChoices(field.Choices)
		if base.Widget == "" {
			base.Widget = widgets.WidgetChosenSelect
		}
		return base, true
	}

	if handler, ok := r.extra[field.Kind]; ok {
		return handler(m, field, base)
	}

	if kind, ok := r.simple[field.Kind]; ok {
		base.Kind = kind
		return base, true
	}

	if handler, ok := r.handlers[field.Kind]; ok {
		return handler(m, field, base)
	}

	return form.Field{}, false
}

// Supports reports whether the registry has a rule for the native kind.
func (r *Registry) Supports(kind model.Kind) bool {
	if _, ok := r.extra[kind]; ok {
		return true
	}
	if _, ok := r.simple[kind]; ok {
		return true
	}
	_, ok := r.handlers[kind]
	return ok
}

func flattenSimple(table map[form.Kind][]model.Kind) map[model.Kind]form.Kind {
	out := make(map[model.Kind]form.Kind)
	for formKind, kinds := range table {
		for _, kind := range kinds {
			out[kind] = formKind
		}
	}
	return out
}

func convertChoices(choices []model.Choice) []form.Choice {
	out := make([]form.Choice, 0, len(choices))
	for _, choice := range choices {
		label := choice.Label
		if label == "" {
			label = toLabel(choice.Value)
		}
		out = append(out, form.Choice{Value: choice.Value, Label: label})
	}
	return out
}
