// Package prompt fills a form schema interactively, one prompt per field,
// producing a submission ready for form.Schema.Bind.
package prompt

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/goliatone/go-modeladmin/pkg/form"
)

// OptionsFunc lists the choices for a model-reference field pointing at
// related.
type OptionsFunc func(ctx context.Context, related string) ([]form.Choice, error)

// Option configures Fill.
type Option func(*filler)

type filler struct {
	driver  Driver
	options OptionsFunc
	current form.Getter
	skip    map[string]struct{}
}

// WithDriver replaces the survey driver.
func WithDriver(driver Driver) Option {
	return func(f *filler) {
		f.driver = driver
	}
}

// WithOptions supplies the choices offered for model-reference fields.
// Without it those fields are asked as free text.
func WithOptions(fn OptionsFunc) Option {
	return func(f *filler) {
		f.options = fn
	}
}

// WithCurrent pre-fills prompts with existing values, as when editing.
func WithCurrent(get form.Getter) Option {
	return func(f *filler) {
		f.current = get
	}
}

// WithSkip leaves the named fields out of the submission.
func WithSkip(names ...string) Option {
	return func(f *filler) {
		for _, name := range names {
			f.skip[name] = struct{}{}
		}
	}
}

// Fill asks for every editable field of s in order. Read-only fields are
// skipped.
func Fill(ctx context.Context, s *form.Schema, opts ...Option) (map[string][]string, error) {
	if s == nil {
		return nil, errors.New("prompt: schema is nil")
	}
	f := &filler{skip: make(map[string]struct{})}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if f.driver == nil {
		f.driver = SurveyDriver()
	}

	values := make(map[string][]string, s.Len())
	for _, field := range s.Fields() {
		if field.ReadOnly {
			continue
		}
		if _, skipped := f.skip[field.Name]; skipped {
			continue
		}
		value, err := f.ask(ctx, field)
		if err != nil {
			return nil, errors.Wrapf(err, "prompt: field %s", field.Name)
		}
		values[field.Name] = []string{value}
	}
	return values, nil
}

func (f *filler) ask(ctx context.Context, field form.Field) (string, error) {
	message := field.Label
	if message == "" {
		message = field.Name
	}
	current, hasCurrent := f.value(field)

	switch field.Kind {
	case form.KindBoolean:
		def := hasCurrent && isTrue(current)
		ok, err := f.driver.Confirm(ctx, ConfirmConfig{Message: message, Help: field.Description, Default: def})
		if err != nil {
			return "", err
		}
		if ok {
			return "true", nil
		}
		return "false", nil
	case form.KindSelect:
		return f.choose(ctx, field, message, field.Choices, current)
	case form.KindModelReference:
		if f.options != nil {
			choices, err := f.options(ctx, field.RelatedModel)
			if err != nil {
				return "", err
			}
			if len(choices) > 0 {
				return f.choose(ctx, field, message, choices, current)
			}
		}
	case form.KindTextArea:
		return f.driver.TextArea(ctx, TextAreaConfig{Message: message, Help: field.Description, Default: current})
	case form.KindPassword:
		return f.driver.Password(ctx, InputConfig{Message: message, Help: field.Description, Validator: validator(field)})
	}
	return f.driver.Input(ctx, InputConfig{
		Message:   message,
		Help:      help(field),
		Default:   current,
		Validator: validator(field),
	})
}

// choose offers choices by label and answers with the chosen value. Optional
// fields get a leading blank option.
func (f *filler) choose(ctx context.Context, field form.Field, message string, choices []form.Choice, current string) (string, error) {
	offset := 0
	labels := make([]string, 0, len(choices)+1)
	if field.IsOptional() {
		labels = append(labels, "(none)")
		offset = 1
	}
	selected := 0
	for idx, choice := range choices {
		label := choice.Label
		if label == "" {
			label = fmt.Sprint(choice.Value)
		}
		labels = append(labels, label)
		if current != "" && fmt.Sprint(choice.Value) == current {
			selected = idx + offset
		}
	}

	idx, err := f.driver.Select(ctx, SelectConfig{Message: message, Help: field.Description, Options: labels, DefaultIndex: selected})
	if err != nil {
		return "", err
	}
	idx -= offset
	if idx < 0 || idx >= len(choices) {
		return "", nil
	}
	return fmt.Sprint(choices[idx].Value), nil
}

func (f *filler) value(field form.Field) (string, bool) {
	if f.current != nil {
		if value, ok := f.current(field.Name); ok && value != nil {
			return format(field, value), true
		}
	}
	if field.Default != nil {
		return format(field, field.Default), true
	}
	return "", false
}

func format(field form.Field, value any) string {
	type timeFormatter interface {
		Format(layout string) string
	}
	if t, ok := value.(timeFormatter); ok {
		layout := field.Format
		if layout == "" {
			layout = form.DefaultDateTimeFormat
			if field.Kind == form.KindDate {
				layout = form.DefaultDateFormat
			}
		}
		return t.Format(layout)
	}
	return fmt.Sprint(value)
}

func help(field form.Field) string {
	if field.Format == "" {
		return field.Description
	}
	if field.Description == "" {
		return "Format: " + field.Format
	}
	return field.Description + " (format: " + field.Format + ")"
}

// validator rejects empty required answers and answers over the field's
// maximum length before they reach the form.
func validator(field form.Field) func(string) error {
	limit, bounded := field.MaxLength()
	optional := field.IsOptional()
	return func(answer string) error {
		if strings.TrimSpace(answer) == "" {
			if optional {
				return nil
			}
			return errors.New("This field is required.")
		}
		if bounded && utf8.RuneCountInString(answer) > limit {
			return errors.Newf("Field cannot be longer than %d characters.", limit)
		}
		return nil
	}
}

func isTrue(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "y", "on":
		return true
	}
	return false
}
