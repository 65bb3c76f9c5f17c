package gormadmin

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"gorm.io/gorm/schema"

	"github.com/goliatone/go-modeladmin/internal/fieldtags"
	"github.com/goliatone/go-modeladmin/pkg/model"
)

// Model exposes a parsed gorm schema as a native model. Field names are the
// column names gorm derived for the struct.
type Model struct {
	*model.Declared

	schema *schema.Schema
}

var _ model.Model = (*Model)(nil)

// Schema returns the parsed gorm schema.
func (m *Model) Schema() *schema.Schema {
	return m.schema
}

// Table returns the table gorm maps the model to.
func (m *Model) Table() string {
	return m.schema.Table
}

// New returns a pointer to a zero instance.
func (m *Model) New() any {
	return reflect.New(m.schema.ModelType).Interface()
}

func (m *Model) newSlice() reflect.Value {
	return reflect.New(reflect.SliceOf(reflect.PointerTo(m.schema.ModelType)))
}

func newModel(s *schema.Schema) (*Model, error) {
	if s.PrioritizedPrimaryField == nil {
		return nil, errors.Newf("gormadmin: %s has no primary key", s.Name)
	}

	related := make(map[string]string)
	for _, rel := range s.Relationships.BelongsTo {
		for _, ref := range rel.References {
			if ref.ForeignKey != nil && !ref.OwnPrimaryKey {
				related[ref.ForeignKey.DBName] = rel.FieldSchema.Name
			}
		}
	}

	fields := make([]model.Field, 0, len(s.DBNames))
	for _, name := range s.DBNames {
		gf := s.FieldsByDBName[name]
		field := fieldFromSchema(gf)
		if target, ok := related[name]; ok {
			field.Kind = model.KindForeignKey
			field.Related = target
		}
		if err := fieldtags.Apply(&field, gf.Tag.Get("admin")); err != nil {
			return nil, errors.Wrapf(err, "gormadmin: %s.%s", s.Name, gf.Name)
		}
		if field.Kind == "" {
			field.Kind = model.KindJSON
		}
		fields = append(fields, field)
	}
	return &Model{
		Declared: model.NewDeclared(s.Name, fields...),
		schema:   s,
	}, nil
}

func fieldFromSchema(gf *schema.Field) model.Field {
	field := model.Field{
		Name:       gf.DBName,
		PrimaryKey: gf.PrimaryKey && gf == gf.Schema.PrioritizedPrimaryField,
		Unique:     gf.Unique,
		Nullable:   gf.FieldType.Kind() == reflect.Pointer && !gf.NotNull && !gf.PrimaryKey,
		Default:    gf.DefaultValueInterface,
	}

	switch gf.GORMDataType {
	case schema.Bool:
		field.Kind = model.KindBoolean
	case schema.Int:
		field.Kind = model.KindInteger
		if gf.Size > 0 && gf.Size <= 16 {
			field.Kind = model.KindSmallInteger
		}
	case schema.Uint:
		field.Kind = model.KindPositiveInteger
		if gf.Size > 0 && gf.Size <= 16 {
			field.Kind = model.KindPositiveSmallInteger
		}
	case schema.Float:
		field.Kind = model.KindFloat
		if gf.Precision > 0 && gf.Scale > 0 {
			field.Kind = model.KindDecimal
		}
	case schema.String:
		field.Kind = model.KindChar
		field.MaxLength = gf.Size
	case schema.Time:
		field.Kind = model.KindDateTime
	case schema.Bytes:
		field.Kind = model.KindFile
	default:
		if kind, ok := model.ParseKind(string(gf.DataType)); ok {
			field.Kind = kind
		}
	}
	if field.PrimaryKey && gf.AutoIncrement && (gf.GORMDataType == schema.Int || gf.GORMDataType == schema.Uint) {
		field.Kind = model.KindAuto
	}
	return field
}

// parseKey converts a textual primary key to the key field's Go type. Keys
// that do not parse cannot match a row.
func (m *Model) parseKey(raw string) (any, bool) {
	typ := m.schema.PrioritizedPrimaryField.FieldType
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	raw = strings.TrimSpace(raw)
	switch typ.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		return n, err == nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, 64)
		return n, err == nil
	}
	return raw, raw != ""
}
