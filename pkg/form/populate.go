package form

import (
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-viper/mapstructure/v2"
)

// PopulateOption customises Populate and ObjectGetter.
type PopulateOption func(*populateConfig)

type populateConfig struct {
	tagName   string
	matchName func(key, fieldName string) bool
	only      map[string]struct{}
}

// WithTagName selects the struct tag consulted for field names. Defaults to
// "form"; untagged struct fields match case-insensitively by name.
func WithTagName(tag string) PopulateOption {
	return func(cfg *populateConfig) {
		cfg.tagName = strings.TrimSpace(tag)
	}
}

// WithNameMatcher overrides how form field names map to struct fields.
func WithNameMatcher(match func(key, fieldName string) bool) PopulateOption {
	return func(cfg *populateConfig) {
		cfg.matchName = match
	}
}

// WithFields restricts Populate to the named fields.
func WithFields(names ...string) PopulateOption {
	return func(cfg *populateConfig) {
		if cfg.only == nil {
			cfg.only = make(map[string]struct{}, len(names))
		}
		for _, name := range names {
			cfg.only[name] = struct{}{}
		}
	}
}

func newPopulateConfig(opts []PopulateOption) populateConfig {
	cfg := populateConfig{tagName: "form"}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.tagName == "" {
		cfg.tagName = "form"
	}
	return cfg
}

// Populate writes the form data onto obj, which must be a pointer to a struct
// or a map. Read-only fields are left untouched.
func (f *Form) Populate(obj any, opts ...PopulateOption) error {
	if obj == nil {
		return errors.New("form: populate target is nil")
	}
	cfg := newPopulateConfig(opts)

	data := make(map[string]any, len(f.fields))
	for _, bound := range f.fields {
		if bound.ReadOnly {
			continue
		}
		if cfg.only != nil {
			if _, ok := cfg.only[bound.Name]; !ok {
				continue
			}
		}
		data[bound.Name] = bound.Data
	}

	if target, ok := obj.(map[string]any); ok {
		for key, value := range data {
			target[key] = value
		}
		return nil
	}

	decoderConfig := &mapstructure.DecoderConfig{
		Result:           obj,
		TagName:          cfg.tagName,
		WeaklyTypedInput: true,
		ZeroFields:       true,
		MatchName:        cfg.matchName,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(DefaultDateTimeFormat),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	}
	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return errors.Wrap(err, "form: build decoder")
	}
	if err := decoder.Decode(data); err != nil {
		return errors.Wrapf(err, "form: populate %s", f.schema.Name())
	}
	return nil
}

// ObjectGetter returns a Getter reading attributes from obj. Struct fields
// resolve through tag (default "form"), then by case-insensitive name; pointer
// fields read as their target or nil.
func ObjectGetter(obj any, tag string) Getter {
	if obj == nil {
		return nil
	}
	if values, ok := obj.(map[string]any); ok {
		return func(name string) (any, bool) {
			value, exists := values[name]
			return value, exists
		}
	}

	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	if strings.TrimSpace(tag) == "" {
		tag = "form"
	}

	return func(name string) (any, bool) {
		field, ok := StructField(rv, name, tag)
		if !ok {
			return nil, false
		}
		if field.Kind() == reflect.Pointer {
			if field.IsNil() {
				return nil, true
			}
			field = field.Elem()
		}
		return field.Interface(), true
	}
}

// StructField resolves name on a struct value by tag, then by
// case-insensitive Go field name. Tag values are cut at the first comma.
func StructField(rv reflect.Value, name, tag string) (reflect.Value, bool) {
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		if tagged, _, _ := strings.Cut(sf.Tag.Get(tag), ","); tagged == name {
			return rv.Field(i), true
		}
	}
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if sf.IsExported() && strings.EqualFold(sf.Name, name) {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}
