// Package fieldtags parses the struct tag options shared by the struct-backed
// admin backends.
//
// An options list is comma separated. The first bare word, when it names a
// kind, sets the field kind; the rest are flags or key=value pairs:
//
//	admin:"char,max=80,unique,label=Login"
//	admin:"foreign-key,related=User,null"
//	admin:"choices=draft|published"
package fieldtags

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/goliatone/go-modeladmin/pkg/model"
)

var timeType = reflect.TypeOf(time.Time{})

// Apply merges parsed options into field.
func Apply(field *model.Field, options string) error {
	for idx, raw := range strings.Split(options, ",") {
		part := strings.TrimSpace(raw)
		if part == "" || part == "-" {
			continue
		}
		key, value, hasValue := strings.Cut(part, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		if !hasValue {
			switch key {
			case "pk", "primarykey", "primary_key":
				field.PrimaryKey = true
				continue
			case "null", "nullable", "blank":
				field.Nullable = true
				continue
			case "unique":
				field.Unique = true
				continue
			}
			if kind, ok := model.ParseKind(key); ok && (idx == 0 || field.Kind == "") {
				field.Kind = kind
				continue
			}
			return errors.Newf("fieldtags: unknown option %q on %s", part, field.Name)
		}

		switch key {
		case "kind":
			kind, ok := model.ParseKind(value)
			if !ok {
				return errors.Newf("fieldtags: unknown kind %q on %s", value, field.Name)
			}
			field.Kind = kind
		case "max", "max_length", "size":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return errors.Newf("fieldtags: invalid max length %q on %s", value, field.Name)
			}
			field.MaxLength = n
		case "label":
			field.Label = value
		case "help":
			field.HelpText = value
		case "related", "ref":
			field.Related = value
		case "default":
			field.Default = value
		case "choices":
			field.Choices = ParseChoices(value)
		default:
			return errors.Newf("fieldtags: unknown option %q on %s", key, field.Name)
		}
	}
	return nil
}

// ParseChoices parses "a|b|c" or "a:Label A|b:Label B".
func ParseChoices(raw string) []model.Choice {
	var out []model.Choice
	for _, item := range strings.Split(raw, "|") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		value, label, ok := strings.Cut(item, ":")
		if !ok {
			label = value
		}
		out = append(out, model.Choice{Value: strings.TrimSpace(value), Label: strings.TrimSpace(label)})
	}
	return out
}

// InferKind derives a kind from a Go type. Pointer types are nullable.
func InferKind(t reflect.Type) (kind model.Kind, nullable bool, ok bool) {
	if t.Kind() == reflect.Pointer {
		nullable = true
		t = t.Elem()
	}
	if t == timeType {
		return model.KindDateTime, nullable, true
	}
	switch t.Kind() {
	case reflect.Bool:
		return model.KindBoolean, nullable, true
	case reflect.Int, reflect.Int32, reflect.Uint, reflect.Uint32:
		return model.KindInteger, nullable, true
	case reflect.Int8, reflect.Int16, reflect.Uint8, reflect.Uint16:
		return model.KindSmallInteger, nullable, true
	case reflect.Int64, reflect.Uint64:
		return model.KindBigInteger, nullable, true
	case reflect.Float32, reflect.Float64:
		return model.KindFloat, nullable, true
	case reflect.String:
		return model.KindChar, nullable, true
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return model.KindFile, nullable, true
		}
		return model.KindList, nullable, true
	case reflect.Map, reflect.Struct:
		return model.KindJSON, nullable, true
	}
	return "", nullable, false
}

// Indirect dereferences pointers down to a struct value.
func Indirect(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	return rv, true
}

// StructType dereferences pointer types down to a struct type.
func StructType(t reflect.Type) (reflect.Type, bool) {
	if t == nil {
		return nil, false
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t, t.Kind() == reflect.Struct
}
