package docadmin

import (
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-modeladmin/internal/fieldtags"
	"github.com/goliatone/go-modeladmin/pkg/model"
)

var uuidType = reflect.TypeOf(uuid.UUID{})

// Collection is a document model declared from a Go struct. Each stored field
// carries a `doc:"name,kind,opts"` tag; the kind may be omitted when it can be
// inferred from the Go type. The primary key holds a uuid, as a string or a
// uuid.UUID.
//
//	type Post struct {
//		ID    uuid.UUID `doc:"id,pk"`
//		Title string    `doc:"title,char,max=120"`
//		State string    `doc:"state,choices=draft|published"`
//	}
//
//	posts, err := docadmin.Declare[Post]("posts")
type Collection struct {
	*model.Declared

	collection string
	typ        reflect.Type
	fields     map[string][]int
}

var _ model.Model = (*Collection)(nil)

// Declare builds a Collection for struct type T stored under collection.
func Declare[T any](collection string) (*Collection, error) {
	typ, ok := fieldtags.StructType(reflect.TypeOf((*T)(nil)).Elem())
	if !ok {
		return nil, errors.Newf("docadmin: %T is not a struct", *new(T))
	}
	collection = strings.TrimSpace(collection)
	if collection == "" || strings.ContainsAny(collection, ":*?") {
		return nil, errors.Newf("docadmin: invalid collection name %q", collection)
	}

	c := &Collection{
		collection: collection,
		typ:        typ,
		fields:     make(map[string][]int),
	}
	var fields []model.Field
	for _, sf := range reflect.VisibleFields(typ) {
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		name, options, _ := strings.Cut(sf.Tag.Get("doc"), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" {
			continue
		}
		if _, dup := c.fields[name]; dup {
			return nil, errors.Newf("docadmin: duplicate field %q on %s", name, typ.Name())
		}

		field := model.Field{Name: name}
		if sf.Type == uuidType {
			field.Kind = model.KindUUID
		} else if kind, nullable, inferred := fieldtags.InferKind(sf.Type); inferred {
			field.Kind = kind
			field.Nullable = nullable
		}
		if err := fieldtags.Apply(&field, options); err != nil {
			return nil, errors.Wrapf(err, "docadmin: %s.%s", typ.Name(), sf.Name)
		}
		if field.Kind == "" {
			return nil, errors.Newf("docadmin: cannot infer kind of %s.%s", typ.Name(), sf.Name)
		}
		c.fields[name] = sf.Index
		fields = append(fields, field)
	}
	if len(fields) == 0 {
		return nil, errors.Newf("docadmin: %s declares no doc fields", typ.Name())
	}

	c.Declared = model.NewDeclared(typ.Name(), fields...)
	index, ok := c.fields[c.PrimaryKey()]
	if !ok {
		return nil, errors.Newf("docadmin: %s has no primary key field", typ.Name())
	}
	if keyType := typ.FieldByIndex(index).Type; keyType != uuidType && keyType.Kind() != reflect.String {
		return nil, errors.Newf("docadmin: primary key of %s must be a string or uuid.UUID", typ.Name())
	}
	return c, nil
}

// MustDeclare is Declare that panics on error.
func MustDeclare[T any](collection string) *Collection {
	c, err := Declare[T](collection)
	if err != nil {
		panic(err)
	}
	return c
}

// Collection returns the collection name.
func (c *Collection) Collection() string {
	return c.collection
}

// New returns a pointer to a zero document.
func (c *Collection) New() any {
	return reflect.New(c.typ).Interface()
}

// Key returns the storage key of the document with id.
func (c *Collection) Key(id uuid.UUID) string {
	return c.collection + ":" + id.String()
}

func (c *Collection) pattern() string {
	return c.collection + ":*"
}

func (c *Collection) indexName(field string) string {
	return c.collection + "." + field
}

func (c *Collection) value(instance any) (reflect.Value, error) {
	rv, ok := fieldtags.Indirect(instance)
	if !ok || rv.Type() != c.typ {
		return reflect.Value{}, errors.Newf("docadmin: expected *%s, got %T", c.typ.Name(), instance)
	}
	return rv, nil
}

func (c *Collection) field(rv reflect.Value, name string) (reflect.Value, bool) {
	index, ok := c.fields[name]
	if !ok {
		return reflect.Value{}, false
	}
	return rv.FieldByIndex(index), true
}

// id reads the document id. A zero or malformed key reports false.
func (c *Collection) id(rv reflect.Value) (uuid.UUID, bool) {
	field, _ := c.field(rv, c.PrimaryKey())
	if field.Type() == uuidType {
		id := field.Interface().(uuid.UUID)
		return id, id != uuid.Nil
	}
	id, err := uuid.Parse(field.String())
	return id, err == nil && id != uuid.Nil
}

func (c *Collection) setID(rv reflect.Value, id uuid.UUID) {
	field, _ := c.field(rv, c.PrimaryKey())
	if field.Type() == uuidType {
		field.Set(reflect.ValueOf(id))
		return
	}
	field.SetString(id.String())
}
