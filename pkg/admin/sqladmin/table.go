package sqladmin

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/goliatone/go-modeladmin/internal/fieldtags"
	"github.com/goliatone/go-modeladmin/pkg/model"
)

// Table is a relational model declared from a Go struct. Columns come from
// `db:"name"` tags; `admin:"kind,opts"` tags refine the inferred metadata.
//
//	type User struct {
//		ID    int64  `db:"id" admin:"auto,pk"`
//		Login string `db:"login" admin:"char,max=80,unique"`
//		Bio   *string `db:"bio" admin:"text"`
//	}
//
//	users, err := sqladmin.Declare[User]("users")
type Table struct {
	*model.Declared

	table   string
	typ     reflect.Type
	columns map[string][]int
}

var _ model.Model = (*Table)(nil)

// Declare builds a Table for struct type T stored in table.
func Declare[T any](table string) (*Table, error) {
	typ, ok := fieldtags.StructType(reflect.TypeOf((*T)(nil)).Elem())
	if !ok {
		return nil, errors.Newf("sqladmin: %T is not a struct", *new(T))
	}
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, errors.Newf("sqladmin: table name is required for %s", typ.Name())
	}

	t := &Table{
		table:   table,
		typ:     typ,
		columns: make(map[string][]int),
	}
	var fields []model.Field
	for _, sf := range reflect.VisibleFields(typ) {
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		name, _, _ := strings.Cut(sf.Tag.Get("db"), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" {
			continue
		}
		if _, dup := t.columns[name]; dup {
			return nil, errors.Newf("sqladmin: duplicate column %q on %s", name, typ.Name())
		}

		field := model.Field{Name: name}
		kind, nullable, inferred := fieldtags.InferKind(sf.Type)
		if inferred {
			field.Kind = kind
		}
		field.Nullable = nullable
		if err := fieldtags.Apply(&field, sf.Tag.Get("admin")); err != nil {
			return nil, errors.Wrapf(err, "sqladmin: %s.%s", typ.Name(), sf.Name)
		}
		if field.Kind == "" {
			return nil, errors.Newf("sqladmin: cannot infer kind of %s.%s", typ.Name(), sf.Name)
		}
		t.columns[name] = sf.Index
		fields = append(fields, field)
	}
	if len(fields) == 0 {
		return nil, errors.Newf("sqladmin: %s declares no db columns", typ.Name())
	}

	t.Declared = model.NewDeclared(typ.Name(), fields...)
	if _, ok := t.columns[t.PrimaryKey()]; !ok {
		return nil, errors.Newf("sqladmin: %s has no primary key column", typ.Name())
	}
	return t, nil
}

// MustDeclare is Declare that panics on error.
func MustDeclare[T any](table string) *Table {
	t, err := Declare[T](table)
	if err != nil {
		panic(err)
	}
	return t
}

// Table returns the table name.
func (t *Table) Table() string {
	return t.table
}

// Type returns the declared struct type.
func (t *Table) Type() reflect.Type {
	return t.typ
}

// New returns a pointer to a zero instance.
func (t *Table) New() any {
	return reflect.New(t.typ).Interface()
}

func (t *Table) value(instance any) (reflect.Value, error) {
	rv, ok := fieldtags.Indirect(instance)
	if !ok || rv.Type() != t.typ {
		return reflect.Value{}, errors.Newf("sqladmin: expected *%s, got %T", t.typ.Name(), instance)
	}
	return rv, nil
}

func (t *Table) column(rv reflect.Value, name string) (reflect.Value, bool) {
	index, ok := t.columns[name]
	if !ok {
		return reflect.Value{}, false
	}
	return rv.FieldByIndex(index), true
}

// autoKey reports whether the primary key of rv is left to the database.
func (t *Table) autoKey(rv reflect.Value) bool {
	pk, _ := model.FieldByName(t, t.PrimaryKey())
	switch pk.Kind {
	case model.KindAuto, model.KindInteger, model.KindBigInteger, model.KindSmallInteger,
		model.KindPositiveInteger, model.KindPositiveSmallInteger:
	default:
		return false
	}
	field, _ := t.column(rv, t.PrimaryKey())
	return field.IsZero()
}

// parseKey converts a textual primary key to the key column's Go type. Keys
// that do not parse cannot match a row.
func (t *Table) parseKey(raw string) (any, bool) {
	sf := t.typ.FieldByIndex(t.columns[t.PrimaryKey()])
	typ := sf.Type
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
