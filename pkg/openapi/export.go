// Package openapi exports form schemas as OpenAPI 3 component schemas so
// clients can describe the payloads an admin form accepts.
package openapi

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-modeladmin/pkg/form"
)

// Version is the OpenAPI version written by Document.
const Version = "3.0.3"

// Extension keys set on exported properties.
const (
	ExtRelation = "x-admin-relation"
	ExtWidget   = "x-admin-widget"
	ExtLabels   = "x-admin-choice-labels"
)

// SchemaFor describes s as an object schema. Properties keep the descriptor
// order in the required list; optional descriptors are nullable.
func SchemaFor(s *form.Schema) *openapi3.Schema {
	out := openapi3.NewObjectSchema()
	if s == nil {
		return out
	}
	out.Title = s.Name()
	for _, field := range s.Fields() {
		out.Properties[field.Name] = openapi3.NewSchemaRef("", propertyFor(field))
		if required(field) {
			out.Required = append(out.Required, field.Name)
		}
	}
	return out
}

// Components collects one schema per form, keyed by form name. Later forms
// replace earlier ones with the same name.
func Components(schemas ...*form.Schema) openapi3.Components {
	components := openapi3.NewComponents()
	components.Schemas = make(openapi3.Schemas, len(schemas))
	for _, s := range schemas {
		if s == nil {
			continue
		}
		components.Schemas[s.Name()] = openapi3.NewSchemaRef("", SchemaFor(s))
	}
	return components
}

// Document wraps the components of schemas in a validated OpenAPI document
// without paths.
func Document(ctx context.Context, title, version string, schemas ...*form.Schema) (*openapi3.T, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errors.New("openapi: title is required")
	}
	if strings.TrimSpace(version) == "" {
		version = "0.0.0"
	}
	components := Components(schemas...)
	doc := &openapi3.T{
		OpenAPI:    Version,
		Info:       &openapi3.Info{Title: title, Version: version},
		Paths:      openapi3.NewPaths(),
		Components: &components,
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, errors.Wrap(err, "openapi: validate document")
	}
	return doc, nil
}

func required(field form.Field) bool {
	return !field.ReadOnly && !field.IsOptional() && field.Kind != form.KindBoolean
}

func propertyFor(field form.Field) *openapi3.Schema {
	var prop *openapi3.Schema
	switch field.Kind {
	case form.KindInteger:
		prop = openapi3.NewInt64Schema()
	case form.KindDecimal:
		prop = openapi3.NewFloat64Schema()
	case form.KindBoolean:
		prop = openapi3.NewBoolSchema()
	case form.KindDate:
		prop = openapi3.NewStringSchema().WithFormat("date")
	case form.KindDateTime:
		prop = openapi3.NewDateTimeSchema()
		if field.Format == form.TimeOnlyFormat {
			prop.Format = "time"
		}
	case form.KindPassword:
		prop = openapi3.NewStringSchema().WithFormat("password")
		prop.WriteOnly = true
	case form.KindFile:
		prop = openapi3.NewStringSchema().WithFormat("binary")
	case form.KindSelect:
		prop = choiceSchema(field.Choices)
	case form.KindModelReference:
		prop = openapi3.NewStringSchema()
		if field.RelatedModel != "" {
			prop.Extensions = map[string]any{ExtRelation: field.RelatedModel}
		}
	default:
		prop = openapi3.NewStringSchema()
		prop.Format = stringFormat(field)
	}

	prop.Title = field.Label
	prop.Description = field.Description
	prop.ReadOnly = field.ReadOnly
	if field.Default != nil {
		prop.Default = field.Default
	}
	if field.IsOptional() {
		prop.Nullable = true
	}
	if prop.Type.Is(openapi3.TypeString) {
		applyLength(prop, field)
	}
	if field.Widget != "" {
		if prop.Extensions == nil {
			prop.Extensions = make(map[string]any, 1)
		}
		prop.Extensions[ExtWidget] = field.Widget
	}
	return prop
}

func choiceSchema(choices []form.Choice) *openapi3.Schema {
	prop := openapi3.NewStringSchema()
	if len(choices) == 0 {
		return prop
	}
	switch choiceType(choices) {
	case openapi3.TypeInteger:
		prop = openapi3.NewInt64Schema()
	case openapi3.TypeNumber:
		prop = openapi3.NewFloat64Schema()
	case openapi3.TypeBoolean:
		prop = openapi3.NewBoolSchema()
	}
	labels := make([]string, 0, len(choices))
	for _, choice := range choices {
		prop.Enum = append(prop.Enum, choice.Value)
		labels = append(labels, choice.Label)
	}
	prop.Extensions = map[string]any{ExtLabels: labels}
	return prop
}

// choiceType picks the JSON type shared by every choice value, falling back
// to string for mixed or unknown values.
func choiceType(choices []form.Choice) string {
	kind := ""
	for _, choice := range choices {
		var current string
		switch choice.Value.(type) {
		case string:
			current = openapi3.TypeString
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			current = openapi3.TypeInteger
		case float32, float64:
			current = openapi3.TypeNumber
		case bool:
			current = openapi3.TypeBoolean
		default:
			return openapi3.TypeString
		}
		if kind != "" && kind != current {
			return openapi3.TypeString
		}
		kind = current
	}
	return kind
}

func stringFormat(field form.Field) string {
	for _, v := range field.Validators {
		switch v.(type) {
		case form.Email:
			return "email"
		case form.URL:
			return "uri"
		}
	}
	return ""
}

func applyLength(prop *openapi3.Schema, field form.Field) {
	if limit, ok := field.MaxLength(); ok {
		prop.WithMaxLength(int64(limit))
	}
	for _, v := range field.Validators {
		if length, ok := v.(form.Length); ok && length.Min > 0 && uint64(length.Min) > prop.MinLength {
			prop.MinLength = uint64(length.Min)
		}
	}
}
