package docadmin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/go-viper/mapstructure/v2"

	"github.com/goliatone/go-modeladmin/pkg/model"
)

// document is a stored record decoded to its raw field map.
type document map[string]any

func (c *Collection) encode(rv reflect.Value) (string, error) {
	doc := make(document, len(c.fields))
	for _, name := range model.FieldNames(c) {
		field, _ := c.field(rv, name)
		doc[name] = field.Interface()
	}
	buf, err := json.Marshal(doc)
	if err != nil {
		return "", errors.Wrapf(err, "docadmin: encode %s", c.collection)
	}
	return string(buf), nil
}

func parseDocument(raw string) (document, error) {
	decoder := json.NewDecoder(bytes.NewReader([]byte(raw)))
	decoder.UseNumber()
	var doc document
	if err := decoder.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "docadmin: decode document")
	}
	return doc, nil
}

// matches reports whether doc holds every filter value.
func (d document) matches(filter map[string]any) bool {
	for key, want := range filter {
		got := d[key]
		if want == nil || got == nil {
			if want != got {
				return false
			}
			continue
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

// instance decodes doc into a new *T. A non-nil only restricts the fields
// read.
func (c *Collection) instance(doc document, only []string) (any, error) {
	if only != nil {
		projected := make(document, len(only))
		for _, name := range only {
			if value, ok := doc[name]; ok {
				projected[name] = value
			}
		}
		doc = projected
	}

	out := reflect.New(c.typ)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out.Interface(),
		TagName:          "doc",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.TextUnmarshallerHookFunc(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "docadmin: build decoder")
	}
	if err := decoder.Decode(map[string]any(doc)); err != nil {
		return nil, errors.Wrapf(err, "docadmin: decode %s", c.collection)
	}
	return out.Interface(), nil
}
