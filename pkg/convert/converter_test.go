package convert_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-modeladmin/pkg/convert"
	"github.com/goliatone/go-modeladmin/pkg/form"
	"github.com/goliatone/go-modeladmin/pkg/model"
	"github.com/goliatone/go-modeladmin/pkg/testsupport"
)

func userModel() *model.Declared {
	return model.NewDeclared("User",
		model.Field{Name: "id", Kind: model.KindAuto, PrimaryKey: true},
		model.Field{Name: "login", Kind: model.KindChar, MaxLength: 80, Unique: true},
		model.Field{Name: "email", Kind: model.KindEmail, Nullable: true},
		model.Field{Name: "password", Kind: model.KindChar, MaxLength: 64},
		model.Field{Name: "role", Kind: model.KindChar, Choices: []model.Choice{
			{Value: "admin", Label: "Admin"},
			{Value: "editor", Label: "Editor"},
		}},
		model.Field{Name: "bio", Kind: model.KindText, Nullable: true},
		model.Field{Name: "born", Kind: model.KindDate, Nullable: true},
		model.Field{Name: "wakes_at", Kind: model.KindTime},
		model.Field{Name: "owner_id", Kind: model.KindForeignKey, Related: "User"},
		model.Field{Name: "state", Kind: model.KindUSState},
		model.Field{Name: "subscribed", Kind: model.KindNullBoolean},
		model.Field{Name: "tags", Kind: model.KindList},
		model.Field{Name: "meta", Kind: model.KindJSON},
	)
}

func TestModelForm_UserGolden(t *testing.T) {
	schema, err := convert.ModelForm(userModel(), nil)
	if err != nil {
		t.Fatalf("model form: %v", err)
	}
	if schema.Name() != "UserForm" {
		t.Fatalf("expected UserForm, got %q", schema.Name())
	}

	got := testsupport.SummarizeSchema(schema)
	goldenPath := filepath.Join("testdata", "user_form.json")
	testsupport.WriteGolden(t, goldenPath, got)

	want := testsupport.MustLoadSummaries(t, goldenPath)
	if diff := testsupport.CompareGolden(want, got); diff != "" {
		t.Fatalf("user form mismatch (-want +got):\n%s", diff)
	}
}

func TestConvert_ChoicesWinOverKind(t *testing.T) {
	reg := convert.NewRegistry()
	choices := []model.Choice{{Value: 1, Label: "One"}, {Value: 2}}

	for _, kind := range []model.Kind{model.KindInteger, model.KindChar, model.KindText, model.KindDate, model.KindForeignKey} {
		field, ok := reg.Convert(userModel(), model.Field{Name: "pick", Kind: kind, Choices: choices}, nil)
		if !ok {
			t.Fatalf("kind %s: expected conversion", kind)
		}
		if field.Kind != form.KindSelect {
			t.Fatalf("kind %s: expected select, got %s", kind, field.Kind)
		}
		if field.Choices[1].Label != "2" {
			t.Fatalf("kind %s: expected label derived from value, got %q", kind, field.Choices[1].Label)
		}
	}
}

func TestConvert_OptionalTracksNullability(t *testing.T) {
	reg := convert.NewRegistry()
	for _, kind := range model.Kinds() {
		for _, nullable := range []bool{true, false} {
			field, ok := reg.Convert(userModel(), model.Field{Name: "f", Kind: kind, Nullable: nullable}, nil)
			if !ok {
				continue
			}
			if field.IsOptional() != nullable {
				t.Fatalf("kind %s nullable=%v: optional=%v", kind, nullable, field.IsOptional())
			}
		}
	}
}

func TestConvert_UnknownKindsAreSkipped(t *testing.T) {
	reg := convert.NewRegistry()
	for _, kind := range []model.Kind{model.KindJSON, model.KindList, model.Kind("geo-point")} {
		if _, ok := reg.Convert(userModel(), model.Field{Name: "f", Kind: kind}, nil); ok {
			t.Fatalf("kind %s: expected skip", kind)
		}
		if reg.Supports(kind) {
			t.Fatalf("kind %s: expected unsupported", kind)
		}
	}
}

func TestConvert_FieldArgsOverride(t *testing.T) {
	reg := convert.NewRegistry()
	args := &convert.FieldArgs{
		Label:      "Username",
		Validators: []form.Validator{form.InputRequired{}},
		Widget:     "login-input",
	}
	field, ok := reg.Convert(userModel(), model.Field{Name: "login", Kind: model.KindChar, MaxLength: 10}, args)
	if !ok {
		t.Fatalf("expected conversion")
	}
	if field.Label != "Username" || field.Widget != "login-input" {
		t.Fatalf("override not applied: %+v", testsupport.SummarizeField(field))
	}
	if diff := cmp.Diff([]string{"input-required", "length"}, field.ValidatorNames()); diff != "" {
		t.Fatalf("validators mismatch (-want +got):\n%s", diff)
	}
	if len(args.Validators) != 1 {
		t.Fatalf("override slice mutated: %v", args.Validators)
	}
}

func TestConvert_RegionProvider(t *testing.T) {
	field, ok := convert.NewRegistry().Convert(userModel(), model.Field{Name: "state", Kind: model.KindUSState}, nil)
	if !ok || field.Kind != form.KindSelect || len(field.Choices) != 0 {
		t.Fatalf("expected empty select without provider, got %+v", testsupport.SummarizeField(field))
	}

	regions := convert.StaticRegions{{Value: "CA", Label: "California"}, {Value: "NY", Label: "New York"}}
	field, _ = convert.NewRegistry(convert.WithRegionProvider(regions)).
		Convert(userModel(), model.Field{Name: "state", Kind: model.KindUSState}, nil)
	if diff := cmp.Diff([]form.Choice(regions), field.Choices); diff != "" {
		t.Fatalf("region choices mismatch (-want +got):\n%s", diff)
	}

	schema := form.MustSchema("AddressForm", field)
	f := schema.Bind(map[string][]string{"state": {"NY"}})
	if !f.Validate() {
		t.Fatalf("unexpected errors %v", f.Errors())
	}
}

func TestConvert_HandlerAndTableOverrides(t *testing.T) {
	reg := convert.NewRegistry(
		convert.WithSimpleConversions(map[form.Kind][]model.Kind{
			form.KindPassword: {model.KindChar},
		}),
		convert.WithHandler(model.KindJSON, func(_ model.Model, _ model.Field, base form.Field) (form.Field, bool) {
			base.Kind = form.KindTextArea
			return base, true
		}),
	)

	field, ok := reg.Convert(userModel(), model.Field{Name: "password", Kind: model.KindChar}, nil)
	if !ok || field.Kind != form.KindPassword {
		t.Fatalf("expected password from custom table, got %+v", testsupport.SummarizeField(field))
	}
	if _, ok := reg.Convert(userModel(), model.Field{Name: "n", Kind: model.KindInteger}, nil); ok {
		t.Fatalf("expected integer to be skipped after table replacement")
	}
	field, ok = reg.Convert(userModel(), model.Field{Name: "meta", Kind: model.KindJSON}, nil)
	if !ok || field.Kind != form.KindTextArea {
		t.Fatalf("expected custom json handler, got %+v", testsupport.SummarizeField(field))
	}
	if _, ok := reg.Convert(userModel(), model.Field{Name: "at", Kind: model.KindDate}, nil); !ok {
		t.Fatalf("built-in handlers should survive table replacement")
	}
}

func TestModelFields_IncludeKeepsDeclarationOrder(t *testing.T) {
	fields, err := convert.ModelFields(userModel(), convert.Include("password", "login", "tags"))
	if err != nil {
		t.Fatalf("model fields: %v", err)
	}
	names := make([]string, 0, len(fields))
	for _, field := range fields {
		names = append(names, field.Name)
	}
	if diff := cmp.Diff([]string{"login", "password"}, names); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	fields, err = convert.ModelFields(userModel(),
		convert.Include("login"),
		convert.Exclude("login"),
	)
	if err != nil {
		t.Fatalf("model fields: %v", err)
	}
	if len(fields) != 1 || fields[0].Name != "login" {
		t.Fatalf("include should win over exclude, got %v", testsupport.Summarize(fields))
	}

	fields, _ = convert.ModelFields(userModel(), convert.Exclude("id", "bio", "born", "wakes_at", "owner_id", "state", "subscribed", "role"))
	names = names[:0]
	for _, field := range fields {
		names = append(names, field.Name)
	}
	if diff := cmp.Diff([]string{"login", "email", "password"}, names); diff != "" {
		t.Fatalf("exclude mismatch (-want +got):\n%s", diff)
	}
}

func TestModelFields_Readonly(t *testing.T) {
	fields, err := convert.ModelFields(userModel(), convert.Include("login", "email"), convert.Readonly("login"))
	if err != nil {
		t.Fatalf("model fields: %v", err)
	}
	if !fields[0].ReadOnly || fields[1].ReadOnly {
		t.Fatalf("unexpected read-only flags %v", testsupport.Summarize(fields))
	}
}

func TestModelForm_PrimaryKeyHandling(t *testing.T) {
	schema, err := convert.ModelForm(userModel(), nil, convert.Include("id", "login"))
	if err != nil {
		t.Fatalf("model form: %v", err)
	}
	if schema.Has("id") {
		t.Fatalf("primary key leaked into form: %v", schema.Names())
	}

	schema, err = convert.ModelForm(userModel(), nil, convert.Include("id", "login"), convert.WithPrimaryKey())
	if err != nil {
		t.Fatalf("model form: %v", err)
	}
	if diff := cmp.Diff([]string{"id", "login"}, schema.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestModelForm_ExtendsBase(t *testing.T) {
	base := form.Base().WithValidators(func(context.Context, *form.Form) error {
		return form.ValidationError{Message: "closed for maintenance"}
	})
	schema, err := convert.ModelForm(userModel(), base, convert.Include("login"))
	if err != nil {
		t.Fatalf("model form: %v", err)
	}

	f := schema.Bind(map[string][]string{"login": {"ada"}})
	if f.Validate() {
		t.Fatalf("expected inherited form validator to fail the form")
	}
	if diff := cmp.Diff([]string{"closed for maintenance"}, f.FormErrors()); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestCoerceNullBool(t *testing.T) {
	cases := []struct {
		in   any
		want any
	}{
		{in: "True", want: true},
		{in: true, want: true},
		{in: "False", want: false},
		{in: false, want: false},
		{in: "None", want: nil},
		{in: nil, want: nil},
		{in: "1", want: true},
		{in: "0", want: false},
		{in: 7, want: true},
	}
	for _, tc := range cases {
		got, err := convert.CoerceNullBool(tc.in)
		if err != nil {
			t.Fatalf("coerce %#v: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("coerce %#v: got %#v, want %#v", tc.in, got, tc.want)
		}
	}

	if _, err := convert.CoerceNullBool("maybe"); err == nil {
		t.Fatalf("expected error for non-numeric input")
	}
}

func TestNullBooleanFieldBindsTriState(t *testing.T) {
	field, ok := convert.NewRegistry().Convert(userModel(), model.Field{Name: "subscribed", Kind: model.KindNullBoolean}, nil)
	if !ok {
		t.Fatalf("expected conversion")
	}
	schema := form.MustSchema("PrefsForm", field)

	for raw, want := range map[string]any{"True": true, "False": false, "None": nil, "1": true} {
		f := schema.Bind(map[string][]string{"subscribed": {raw}})
		if !f.Validate() {
			t.Fatalf("raw %q: unexpected errors %v", raw, f.Errors())
		}
		if got, _ := f.Value("subscribed"); got != want {
			t.Fatalf("raw %q: got %#v, want %#v", raw, got, want)
		}
	}
}

func TestDefaultLabeler(t *testing.T) {
	cases := map[string]string{
		"owner_id":  "Owner ID",
		"createdAt": "Created At",
		"wakes-at":  "Wakes At",
		"homeURL":   "Home URL",
		"line2":     "Line 2",
		"":          "",
	}
	for in, want := range cases {
		if got := convert.DefaultLabeler(in); got != want {
			t.Fatalf("label %q: got %q, want %q", in, got, want)
		}
	}
}
