package form_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-modeladmin/pkg/form"
)

func TestSchemaPreservesOrderAndRejectsDuplicates(t *testing.T) {
	schema, err := form.NewSchema("UserForm",
		form.Field{Name: "login", Kind: form.KindText},
		form.Field{Name: "email", Kind: form.KindText},
		form.Field{Name: "password", Kind: form.KindPassword},
	)
	if err != nil {
		t.Fatalf("new schema: %v", err)
	}
	if diff := cmp.Diff([]string{"login", "email", "password"}, schema.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if !schema.Has("email") || schema.Has("id") {
		t.Fatalf("unexpected membership for %v", schema.Names())
	}

	if _, err := form.NewSchema("Broken", form.Field{Name: "a"}, form.Field{Name: "a"}); err == nil {
		t.Fatalf("expected duplicate field error")
	}
	if _, err := form.NewSchema("Broken", form.Field{Name: "  "}); err == nil {
		t.Fatalf("expected empty name error")
	}
}

func TestExtendInheritsFormValidators(t *testing.T) {
	calls := 0
	base := form.Base().WithValidators(func(context.Context, *form.Form) error {
		calls++
		return nil
	})

	derived, err := base.Extend("TagForm", form.Field{Name: "name", Kind: form.KindText})
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	if derived.Name() != "TagForm" || derived.Len() != 1 {
		t.Fatalf("unexpected derived schema %s with %d fields", derived.Name(), derived.Len())
	}
	if base.Len() != 0 {
		t.Fatalf("base schema mutated: %v", base.Names())
	}

	if !derived.Bind(map[string][]string{"name": {"go"}}).Validate() {
		t.Fatalf("expected valid form")
	}
	if calls != 1 {
		t.Fatalf("expected inherited validator to run once, ran %d", calls)
	}
}

func TestOptionalClearsCoercionErrorsOnEmptyInput(t *testing.T) {
	schema := form.MustSchema("AgeForm", form.Field{
		Name:       "age",
		Kind:       form.KindInteger,
		Validators: []form.Validator{form.Optional{}},
	})

	empty := schema.Bind(map[string][]string{"age": {"  "}})
	if !empty.Validate() {
		t.Fatalf("expected empty optional input to validate, got %v", empty.Errors())
	}
	if value, _ := empty.Value("age"); value != nil {
		t.Fatalf("expected nil data, got %#v", value)
	}

	missing := schema.Bind(map[string][]string{})
	if !missing.Validate() {
		t.Fatalf("expected absent optional input to validate, got %v", missing.Errors())
	}

	invalid := schema.Bind(map[string][]string{"age": {"abc"}})
	if invalid.Validate() {
		t.Fatalf("expected invalid integer to fail")
	}
	want := map[string][]string{"age": {"Not a valid integer value."}}
	if diff := cmp.Diff(want, invalid.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	valid := schema.Bind(map[string][]string{"age": {"42"}})
	if !valid.Validate() {
		t.Fatalf("expected valid integer, got %v", valid.Errors())
	}
	if value, _ := valid.Value("age"); value != int64(42) {
		t.Fatalf("expected int64(42), got %#v", value)
	}
}

func TestValidatorChain(t *testing.T) {
	schema := form.MustSchema("RegistrationForm",
		form.Field{
			Name:       "login",
			Kind:       form.KindText,
			Validators: []form.Validator{form.InputRequired{}, form.Length{Max: 5}},
		},
		form.Field{
			Name:       "email",
			Kind:       form.KindText,
			Validators: []form.Validator{form.Optional{}, form.Email{}},
		},
		form.Field{
			Name:       "site",
			Kind:       form.KindText,
			Validators: []form.Validator{form.Optional{}, form.URL{}},
		},
		form.Field{
			Name:       "addr",
			Kind:       form.KindText,
			Validators: []form.Validator{form.Optional{}, form.IPAddress{}},
		},
	)

	f := schema.Bind(map[string][]string{
		"login": {""},
		"email": {"not-an-email"},
		"site":  {"ftp://example.com"},
		"addr":  {"::1"},
	})
	if f.Validate() {
		t.Fatalf("expected invalid form")
	}
	want := map[string][]string{
		"login": {"This field is required."},
		"email": {"Invalid email address."},
		"site":  {"Invalid URL."},
		"addr":  {"Invalid IP address."},
	}
	if diff := cmp.Diff(want, f.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	f = schema.Bind(map[string][]string{
		"login": {"toolong"},
		"email": {"ada@example.com"},
		"site":  {"https://example.com/path"},
		"addr":  {"10.0.0.1"},
	})
	if f.Validate() {
		t.Fatalf("expected length failure")
	}
	want = map[string][]string{"login": {"Field cannot be longer than 5 characters."}}
	if diff := cmp.Diff(want, f.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatValidators(t *testing.T) {
	cases := []struct {
		name      string
		validator form.Validator
		value     string
		valid     bool
	}{
		{"email", form.Email{}, "ada@example.com", true},
		{"email without domain dot", form.Email{}, "ada@localhost", false},
		{"email display name", form.Email{}, "Ada <ada@example.com>", false},
		{"ipv4 default", form.IPAddress{}, "192.168.0.1", true},
		{"ipv6 rejected by default", form.IPAddress{}, "2001:db8::1", false},
		{"ipv6 only", form.IPAddress{IPv6: true}, "2001:db8::1", true},
		{"ipv4 under ipv6 only", form.IPAddress{IPv6: true}, "10.0.0.1", false},
		{"either family", form.IPAddress{IPv4: true, IPv6: true}, "::1", true},
		{"https url", form.URL{}, "https://example.com/a?b=c", true},
		{"local url", form.URL{}, "http://localhost:8080", false},
		{"local url allowed", form.URL{AllowLocal: true}, "http://localhost:8080", true},
		{"relative url", form.URL{AllowLocal: true}, "/just/a/path", false},
		{"empty", form.URL{}, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			schema := form.MustSchema("CheckForm", form.Field{
				Name:       "value",
				Kind:       form.KindText,
				Validators: []form.Validator{tc.validator},
			})
			f := schema.Bind(map[string][]string{"value": {tc.value}})
			if got := f.Validate(); got != tc.valid {
				t.Fatalf("%q: valid=%v, errors %v", tc.value, got, f.Errors())
			}
		})
	}
}

func TestSelectCoercesTriState(t *testing.T) {
	coerce := func(raw string) (any, error) {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "", "none":
			return nil, nil
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, errors.New("unrecognised")
	}
	schema := form.MustSchema("FlagForm", form.Field{
		Name:   "flag",
		Kind:   form.KindSelect,
		Coerce: coerce,
		Choices: []form.Choice{
			{Value: nil, Label: "Unknown"},
			{Value: true, Label: "Yes"},
			{Value: false, Label: "No"},
		},
	})

	cases := []struct {
		raw  string
		want any
	}{
		{raw: "", want: nil},
		{raw: "True", want: true},
		{raw: "false", want: false},
	}
	for _, tc := range cases {
		f := schema.Bind(map[string][]string{"flag": {tc.raw}})
		if !f.Validate() {
			t.Fatalf("raw %q: unexpected errors %v", tc.raw, f.Errors())
		}
		if got, _ := f.Value("flag"); got != tc.want {
			t.Fatalf("raw %q: got %#v, want %#v", tc.raw, got, tc.want)
		}
	}

	f := schema.Bind(map[string][]string{"flag": {"maybe"}})
	if f.Validate() {
		t.Fatalf("expected coercion failure")
	}
	if diff := cmp.Diff([]string{"Invalid Choice: could not coerce."}, f.Errors()["flag"]); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectWithoutChoicesRejectsInput(t *testing.T) {
	schema := form.MustSchema("AddressForm", form.Field{Name: "state", Kind: form.KindSelect})
	f := schema.Bind(map[string][]string{"state": {"CA"}})
	if f.Validate() {
		t.Fatalf("expected empty choice set to reject input")
	}
	if diff := cmp.Diff([]string{"Not a valid choice."}, f.Errors()["state"]); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadAppliesFilters(t *testing.T) {
	schema := form.MustSchema("ShiftForm",
		form.Field{
			Name:    "starts",
			Kind:    form.KindDateTime,
			Format:  form.TimeOnlyFormat,
			Filters: []form.Filter{form.TimeOnly},
		},
		form.Field{
			Name:    "day",
			Kind:    form.KindDate,
			Filters: []form.Filter{form.DateOnly},
		},
	)

	stamp := time.Date(2024, time.May, 6, 7, 8, 9, 0, time.UTC)
	f := schema.New(map[string]any{"starts": stamp, "day": stamp})

	starts, _ := f.Value("starts")
	if !starts.(time.Time).Equal(time.Date(0, time.January, 1, 7, 8, 9, 0, time.UTC)) {
		t.Fatalf("unexpected time-only value %v", starts)
	}
	day, _ := f.Value("day")
	if !day.(time.Time).Equal(time.Date(2024, time.May, 6, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date value %v", day)
	}

	f.Submit(map[string][]string{"starts": {"10:11:12"}})
	if !f.Validate() {
		t.Fatalf("unexpected errors %v", f.Errors())
	}
	starts, _ = f.Value("starts")
	if got := starts.(time.Time).Format(form.TimeOnlyFormat); got != "10:11:12" {
		t.Fatalf("unexpected submitted time %s", got)
	}
	day, _ = f.Value("day")
	if !day.(time.Time).Equal(time.Date(2024, time.May, 6, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("loaded value lost after submit: %v", day)
	}
}

func TestPopulateWritesStruct(t *testing.T) {
	type account struct {
		Login  string `form:"login"`
		Age    *int64
		Active bool
		Role   string
	}

	schema := form.MustSchema("AccountForm",
		form.Field{Name: "login", Kind: form.KindText},
		form.Field{Name: "age", Kind: form.KindInteger},
		form.Field{Name: "active", Kind: form.KindBoolean},
		form.Field{Name: "role", Kind: form.KindText, ReadOnly: true},
	)

	f := schema.Bind(map[string][]string{
		"login":  {"ada"},
		"age":    {"36"},
		"active": {"y"},
		"role":   {"admin"},
	})
	if !f.Validate() {
		t.Fatalf("unexpected errors %v", f.Errors())
	}

	target := account{Role: "viewer"}
	if err := f.Populate(&target); err != nil {
		t.Fatalf("populate: %v", err)
	}
	if target.Login != "ada" || target.Age == nil || *target.Age != 36 || !target.Active {
		t.Fatalf("unexpected populated value %+v", target)
	}
	if target.Role != "viewer" {
		t.Fatalf("read-only field overwritten: %q", target.Role)
	}
}

func TestFormValidatorsRouteMessages(t *testing.T) {
	schema := form.MustSchema("PasswordForm",
		form.Field{Name: "password", Kind: form.KindPassword},
		form.Field{Name: "confirm", Kind: form.KindPassword},
	).WithValidators(
		func(_ context.Context, f *form.Form) error {
			password, _ := f.Value("password")
			confirm, _ := f.Value("confirm")
			if password != confirm {
				return form.FieldErrors{"/body/confirm": {"Passwords must match"}}
			}
			return nil
		},
		func(context.Context, *form.Form) error {
			return form.ValidationError{Message: "Account locked"}
		},
	)

	f := schema.Bind(map[string][]string{"password": {"a"}, "confirm": {"b"}})
	if f.Validate() {
		t.Fatalf("expected invalid form")
	}
	want := map[string][]string{
		"confirm":          {"Passwords must match"},
		form.FormErrorsKey: {"Account locked"},
	}
	if diff := cmp.Diff(want, f.Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestUniqueFaultPropagates(t *testing.T) {
	boom := errors.New("lookup failed")
	schema := form.MustSchema("UserForm", form.Field{
		Name: "login",
		Kind: form.KindText,
		Validators: []form.Validator{form.Unique{
			Exists: func(context.Context, any) (bool, error) { return false, boom },
		}},
	})

	f := schema.Bind(map[string][]string{"login": {"ada"}})
	if _, err := f.ValidateContext(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped lookup error, got %v", err)
	}
	if f.Validate() {
		t.Fatalf("expected fault to invalidate form")
	}
	if len(f.FormErrors()) != 1 {
		t.Fatalf("expected fault recorded as form error, got %v", f.FormErrors())
	}

	taken := form.MustSchema("UserForm", form.Field{
		Name: "login",
		Kind: form.KindText,
		Validators: []form.Validator{form.Unique{
			Exists:  func(context.Context, any) (bool, error) { return true, nil },
			Message: "Duplicate username",
		}},
	})
	f = taken.Bind(map[string][]string{"login": {"ada"}})
	if f.Validate() {
		t.Fatalf("expected duplicate to fail")
	}
	if diff := cmp.Diff([]string{"Duplicate username"}, f.Errors()["login"]); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitizeHTML(t *testing.T) {
	if got := form.SanitizeHTML("<b>hello</b> world<script>x()</script>"); got != "hello world" {
		t.Fatalf("unexpected sanitized value %q", got)
	}
	if got := form.SanitizeHTML("Tom & Jerry <3"); got != "Tom & Jerry <3" {
		t.Fatalf("plain text changed to %q", got)
	}
	if got := form.SanitizeHTML(42); got != 42 {
		t.Fatalf("expected non-string passthrough, got %#v", got)
	}
}
