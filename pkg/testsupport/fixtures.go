package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-modeladmin/pkg/form"
)

// FieldSummary is a comparable snapshot of a form descriptor. Validators and
// filters are functions or interfaces go-cmp cannot diff, so they are reduced
// to names and a count.
type FieldSummary struct {
	Name         string        `json:"name"`
	Kind         form.Kind     `json:"kind"`
	Label        string        `json:"label,omitempty"`
	Widget       string        `json:"widget,omitempty"`
	Format       string        `json:"format,omitempty"`
	Validators   []string      `json:"validators,omitempty"`
	Filters      int           `json:"filters,omitempty"`
	Choices      []form.Choice `json:"choices,omitempty"`
	Coerce       bool          `json:"coerce,omitempty"`
	RelatedModel string        `json:"relatedModel,omitempty"`
	ReadOnly     bool          `json:"readOnly,omitempty"`
}

// Summarize reduces descriptors to their comparable summaries.
func Summarize(fields []form.Field) []FieldSummary {
	out := make([]FieldSummary, 0, len(fields))
	for _, field := range fields {
		out = append(out, SummarizeField(field))
	}
	return out
}

// SummarizeField reduces a single descriptor.
func SummarizeField(field form.Field) FieldSummary {
	var choices []form.Choice
	if len(field.Choices) > 0 {
		choices = field.Choices
	}
	return FieldSummary{
		Name:         field.Name,
		Kind:         field.Kind,
		Label:        field.Label,
		Widget:       field.Widget,
		Format:       field.Format,
		Validators:   field.ValidatorNames(),
		Filters:      len(field.Filters),
		Choices:      choices,
		Coerce:       field.Coerce != nil,
		RelatedModel: field.RelatedModel,
		ReadOnly:     field.ReadOnly,
	}
}

// SummarizeSchema summarises every descriptor of schema in order.
func SummarizeSchema(schema *form.Schema) []FieldSummary {
	return Summarize(schema.Fields())
}

// MustLoadSummaries loads a JSON golden file of field summaries.
func MustLoadSummaries(t *testing.T, path string) []FieldSummary {
	t.Helper()

	out, err := LoadSummaries(path)
	if err != nil {
		t.Fatalf("load summaries: %v", err)
	}
	return out
}

// LoadSummaries reads a JSON fixture of field summaries, returning an error for
// callers managing setup outside of *testing.T.
func LoadSummaries(path string) ([]FieldSummary, error) {
	if path == "" {
		return nil, errors.New("testsupport: summaries path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read summaries: %w", err)
	}
	var out []FieldSummary
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("testsupport: unmarshal summaries: %w", err)
	}
	return out, nil
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
