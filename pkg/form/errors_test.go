package form_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-modeladmin/pkg/form"
)

func TestMapErrorsResolvesPaths(t *testing.T) {
	schema := form.MustSchema("UserForm",
		form.Field{Name: "login", Kind: form.KindText},
		form.Field{Name: "email", Kind: form.KindText},
		form.Field{Name: "tags", Kind: form.KindText},
	)

	payload := map[string][]string{
		"/body/login":                {"Login is required"},
		"data.email":                 {"Email invalid", " Email invalid "},
		"$.body.tags[0]":             {"Tags must be unique"},
		"non_field_errors":           {"Form level error"},
		"request/body/unknown-field": {"Should fall back to form errors"},
		"":                           {"Unscoped form error"},
		"login":                      {"  "},
	}

	mapped := form.MapErrors(schema, payload)

	wantFields := map[string][]string{
		"login": {"Login is required"},
		"email": {"Email invalid"},
		"tags":  {"Tags must be unique"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Form level error", "Should fall back to form errors", "Unscoped form error"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeErrorsOntoForm(t *testing.T) {
	schema := form.MustSchema("UserForm", form.Field{Name: "login", Kind: form.KindText})
	f := schema.Bind(map[string][]string{"login": {"ada"}})
	if !f.Validate() {
		t.Fatalf("unexpected errors %v", f.Errors())
	}

	f.MergeErrors(form.FieldErrors{"login": {"Duplicate username"}, "__all__": {"Try again"}})
	if !f.HasErrors() {
		t.Fatalf("expected merged errors")
	}
	want := map[string][]string{
		"login":            {"Duplicate username"},
		form.FormErrorsKey: {"Try again"},
	}
	if diff := cmp.Diff(want, f.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := form.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}
