package form

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Validator checks one bound field. Returning a ValidationError (or
// StopValidation) records a field-scoped message; any other error is treated
// as a fault and aborts validation.
type Validator interface {
	Name() string
	Validate(ctx context.Context, form *Form, field *BoundField) error
}

// ValidationError is a field-scoped validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// StopValidation halts the remaining validator chain of a field. A non-empty
// Message is recorded as an error first.
type StopValidation struct {
	Message string
}

func (e StopValidation) Error() string {
	if e.Message == "" {
		return "validation stopped"
	}
	return e.Message
}

// Optional allows empty input: when the submission for the field is empty, any
// errors gathered so far are cleared and the chain stops. Submitted empty input
// reads as nil; an omitted field keeps its loaded data. Whitespace-only
// input counts as empty unless KeepWhitespace is set.
type Optional struct {
	KeepWhitespace bool
}

func (Optional) Name() string { return "optional" }

func (v Optional) Validate(_ context.Context, _ *Form, field *BoundField) error {
	if !field.emptyInput(!v.KeepWhitespace) {
		return nil
	}
	field.Errors = nil
	if field.Raw != nil {
		field.Data = nil
	}
	return StopValidation{}
}

// InputRequired rejects fields that received no input at all.
type InputRequired struct {
	Message string
}

func (InputRequired) Name() string { return "input-required" }

func (v InputRequired) Validate(_ context.Context, _ *Form, field *BoundField) error {
	if len(field.Raw) > 0 && field.Raw[0] != "" {
		return nil
	}
	return StopValidation{Message: messageOr(v.Message, "This field is required.")}
}

// Length bounds the rune length of a string value. Zero disables a bound.
type Length struct {
	Min     int
	Max     int
	Message string
}

func (Length) Name() string { return "length" }

func (v Length) Validate(_ context.Context, _ *Form, field *BoundField) error {
	value, ok := field.Data.(string)
	if !ok {
		if field.Data != nil {
			return nil
		}
		value = ""
	}
	n := utf8.RuneCountInString(value)
	if (v.Min > 0 && n < v.Min) || (v.Max > 0 && n > v.Max) {
		return ValidationError{Field: field.Name, Message: v.message()}
	}
	return nil
}

func (v Length) message() string {
	if v.Message != "" {
		return v.Message
	}
	switch {
	case v.Min > 0 && v.Max > 0:
		return fmt.Sprintf("Field must be between %d and %d characters long.", v.Min, v.Max)
	case v.Max > 0:
		return fmt.Sprintf("Field cannot be longer than %d characters.", v.Max)
	default:
		return fmt.Sprintf("Field must be at least %d characters long.", v.Min)
	}
}

// Email accepts a bare RFC 5322 address ("user@example.com").
type Email struct {
	Message string
}

func (Email) Name() string { return "email" }

func (v Email) Validate(_ context.Context, _ *Form, field *BoundField) error {
	value := strings.TrimSpace(stringData(field))
	if !matches(value, "email") || !strings.Contains(domainOf(value), ".") {
		return ValidationError{Field: field.Name, Message: messageOr(v.Message, "Invalid email address.")}
	}
	return nil
}

// IPAddress accepts IPv4 addresses, and IPv6 when enabled. With both flags
// unset only IPv4 is accepted.
type IPAddress struct {
	IPv4    bool
	IPv6    bool
	Message string
}

func (IPAddress) Name() string { return "ip-address" }

func (v IPAddress) Validate(_ context.Context, _ *Form, field *BoundField) error {
	tag := "ipv4"
	switch {
	case v.IPv4 && v.IPv6:
		tag = "ip"
	case v.IPv6:
		tag = "ipv6"
	}
	if matches(strings.TrimSpace(stringData(field)), tag) {
		return nil
	}
	return ValidationError{Field: field.Name, Message: messageOr(v.Message, "Invalid IP address.")}
}

// URL accepts absolute http(s) URLs. AllowLocal admits hosts without a
// top-level domain, e.g. "http://localhost".
type URL struct {
	AllowLocal bool
	Message    string
}

func (URL) Name() string { return "url" }

func (v URL) Validate(_ context.Context, _ *Form, field *BoundField) error {
	value := strings.TrimSpace(stringData(field))
	if matches(value, "http_url") {
		if parsed, err := url.Parse(value); err == nil && (v.AllowLocal || strings.Contains(parsed.Hostname(), ".")) {
			return nil
		}
	}
	return ValidationError{Field: field.Name, Message: messageOr(v.Message, "Invalid URL.")}
}

// AnyOf accepts only the listed values, compared by their printed form.
type AnyOf struct {
	Values  []any
	Message string
}

func (AnyOf) Name() string { return "any-of" }

func (v AnyOf) Validate(_ context.Context, _ *Form, field *BoundField) error {
	current := fmt.Sprint(field.Data)
	for _, allowed := range v.Values {
		if fmt.Sprint(allowed) == current {
			return nil
		}
	}
	return ValidationError{Field: field.Name, Message: messageOr(v.Message, "Invalid value.")}
}

// Unique rejects values for which Exists reports a conflicting record.
// Errors from Exists are faults and propagate out of validation.
type Unique struct {
	Exists  func(ctx context.Context, value any) (bool, error)
	Message string
}

func (Unique) Name() string { return "unique" }

func (v Unique) Validate(ctx context.Context, _ *Form, field *BoundField) error {
	if v.Exists == nil {
		return nil
	}
	exists, err := v.Exists(ctx, field.Data)
	if err != nil {
		return err
	}
	if exists {
		return ValidationError{Field: field.Name, Message: messageOr(v.Message, "Already exists.")}
	}
	return nil
}

func stringData(field *BoundField) string {
	switch value := field.Data.(type) {
	case nil:
		return ""
	case string:
		return value
	default:
		return fmt.Sprint(value)
	}
}

var (
	formatsOnce sync.Once
	formats     *validator.Validate
)

// matches reports whether value satisfies the validator tag.
func matches(value, tag string) bool {
	formatsOnce.Do(func() {
		formats = validator.New()
	})
	return value != "" && formats.Var(value, tag) == nil
}

func domainOf(address string) string {
	if idx := strings.LastIndex(address, "@"); idx >= 0 {
		return address[idx+1:]
	}
	return ""
}

func messageOr(message, fallback string) string {
	if strings.TrimSpace(message) != "" {
		return message
	}
	return fallback
}
