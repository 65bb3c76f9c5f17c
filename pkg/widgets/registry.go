package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-modeladmin/pkg/form"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetChosenSelect   = "chosen-select"
	WidgetSelect         = "select"
	WidgetToggle         = "toggle"
	WidgetTimePicker     = "time-picker"
	WidgetDateTimePicker = "datetime-picker"
	WidgetDatePicker     = "date-picker"
	WidgetTextArea       = "textarea"
	WidgetPassword       = "password"
	WidgetFileUpload     = "file-upload"
	WidgetNumber         = "number"
)

// Matcher decides whether a widget should handle the supplied descriptor.
type Matcher func(field form.Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widgets for descriptors based on explicit hints or
// registered matchers. Higher priority wins; ties fall back to registration
// order. An empty registry never resolves a widget.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in widget matchers
// registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a widget matcher with the provided name and priority. Higher
// priority values take precedence. Callers should avoid duplicate names; the
// latest registration wins during resolution.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget name for a descriptor. An explicit Widget or
// admin.widget metadata is honoured before matcher evaluation.
func (r *Registry) Resolve(field form.Field) (string, bool) {
	if explicit := explicitWidget(field); explicit != "" {
		return explicit, true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

// Decorate returns a copy of schema whose descriptors carry a resolved Widget.
// Descriptors that already name a widget keep it.
func (r *Registry) Decorate(schema *form.Schema) (*form.Schema, error) {
	if r == nil || schema == nil {
		return schema, nil
	}
	fields := schema.Fields()
	for idx, field := range fields {
		fields[idx] = r.DecorateField(field)
	}
	return schema.Extend(schema.Name(), fields...)
}

// DecorateField fills Widget on a single descriptor.
func (r *Registry) DecorateField(field form.Field) form.Field {
	if strings.TrimSpace(field.Widget) != "" {
		return field
	}
	if widget, ok := r.Resolve(field); ok && widget != "" {
		field.Widget = widget
	}
	return field
}

func explicitWidget(field form.Field) string {
	if widget := strings.TrimSpace(field.Widget); widget != "" {
		return widget
	}
	if field.Metadata != nil {
		if widget := strings.TrimSpace(field.Metadata["admin.widget"]); widget != "" {
			return widget
		}
		if widget := strings.TrimSpace(field.Metadata["widget"]); widget != "" {
			return widget
		}
	}
	return ""
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetChosenSelect, 100, func(field form.Field) bool {
		return field.Kind == form.KindModelReference
	})

	r.Register(WidgetSelect, 90, func(field form.Field) bool {
		return field.Kind == form.KindSelect || len(field.Choices) > 0
	})

	r.Register(WidgetToggle, 80, func(field form.Field) bool {
		return field.Kind == form.KindBoolean
	})

	r.Register(WidgetTimePicker, 75, func(field form.Field) bool {
		return field.Kind == form.KindDateTime && field.Format == form.TimeOnlyFormat
	})

	r.Register(WidgetDateTimePicker, 70, func(field form.Field) bool {
		return field.Kind == form.KindDateTime
	})

	r.Register(WidgetDatePicker, 70, func(field form.Field) bool {
		return field.Kind == form.KindDate
	})

	r.Register(WidgetTextArea, 60, func(field form.Field) bool {
		return field.Kind == form.KindTextArea
	})

	r.Register(WidgetPassword, 60, func(field form.Field) bool {
		return field.Kind == form.KindPassword
	})

	r.Register(WidgetFileUpload, 50, func(field form.Field) bool {
		return field.Kind == form.KindFile
	})

	r.Register(WidgetNumber, 40, func(field form.Field) bool {
		return field.Kind == form.KindInteger || field.Kind == form.KindDecimal
	})
}
