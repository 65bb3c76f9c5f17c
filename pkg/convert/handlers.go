package convert

import (
	"github.com/goliatone/go-modeladmin/pkg/form"
	"github.com/goliatone/go-modeladmin/pkg/model"
	"github.com/goliatone/go-modeladmin/pkg/widgets"
)

func (r *Registry) registerBuiltins() {
	r.handlers[model.KindForeignKey] = convertForeignKey
	r.handlers[model.KindTime] = convertTime
	r.handlers[model.KindDateTime] = convertTime
	r.handlers[model.KindDate] = convertDate
	r.handlers[model.KindEmail] = withValidator(form.Email{})
	r.handlers[model.KindIPAddress] = withValidator(form.IPAddress{})
	r.handlers[model.KindURL] = withValidator(form.URL{})
	r.handlers[model.KindUSState] = r.convertRegion
	r.handlers[model.KindNullBoolean] = convertNullBoolean
}

func convertForeignKey(_ model.Model, field model.Field, base form.Field) (form.Field, bool) {
	base.Kind = form.KindModelReference
	base.RelatedModel = field.Related
	if base.Widget == "" {
		base.Widget = widgets.WidgetChosenSelect
	}
	return base, true
}

// Both time and datetime columns keep the time of day only. The widget is
// left to the widget registry, which picks the time picker for that format.
func convertTime(_ model.Model, _ model.Field, base form.Field) (form.Field, bool) {
	base.Kind = form.KindDateTime
	base.Filters = append(base.Filters, form.TimeOnly)
	if base.Format == "" {
		base.Format = form.TimeOnlyFormat
	}
	return base, true
}

func convertDate(_ model.Model, _ model.Field, base form.Field) (form.Field, bool) {
	base.Kind = form.KindDate
	base.Filters = append(base.Filters, form.DateOnly)
	if base.Widget == "" {
		base.Widget = widgets.WidgetDatePicker
	}
	return base, true
}

func withValidator(validator form.Validator) Handler {
	return func(_ model.Model, _ model.Field, base form.Field) (form.Field, bool) {
		base.Kind = form.KindText
		base.Validators = append(base.Validators, validator)
		return base, true
	}
}

func (r *Registry) convertRegion(_ model.Model, _ model.Field, base form.Field) (form.Field, bool) {
	base.Kind = form.KindSelect
	base.Choices = append([]form.Choice{}, r.regions.Regions()...)
	return base, true
}

func convertNullBoolean(_ model.Model, _ model.Field, base form.Field) (form.Field, bool) {
	base.Kind = form.KindSelect
	base.Choices = NullBoolChoices()
	base.Coerce = func(raw string) (any, error) {
		return CoerceNullBool(raw)
	}
	return base, true
}
