package docadmin

import (
	"context"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/tidwall/buntdb"

	"github.com/goliatone/go-modeladmin/internal/logging"
	"github.com/goliatone/go-modeladmin/pkg/admin"
	"github.com/goliatone/go-modeladmin/pkg/form"
	"github.com/goliatone/go-modeladmin/pkg/model"
)

// Admin is the document ModelAdmin.
type Admin struct {
	db   *buntdb.DB
	coll *Collection
	cfg  admin.Config
	name string
	log  logging.Log
}

var _ admin.ModelAdmin = (*Admin)(nil)

func (a *Admin) Name() string                  { return a.name }
func (a *Admin) Model() model.Model            { return a.coll }
func (a *Admin) New() any                      { return a.coll.New() }
func (a *Admin) AllowPrimaryKeyOnCreate() bool { return a.cfg.AllowPK }

// Collection returns the declared collection.
func (a *Admin) Collection() *Collection { return a.coll }

func (a *Admin) GetColumn(instance any, name string) (any, bool) {
	rv, err := a.coll.value(instance)
	if err != nil {
		return nil, false
	}
	field, ok := a.coll.field(rv, name)
	if !ok {
		return nil, false
	}
	if field.Type() == uuidType {
		return field.Interface().(uuid.UUID).String(), true
	}
	if field.Kind() == reflect.Pointer {
		if field.IsNil() {
			return nil, true
		}
		return field.Elem().Interface(), true
	}
	return field.Interface(), true
}

func (a *Admin) GetPK(instance any) (string, error) {
	rv, err := a.coll.value(instance)
	if err != nil {
		return "", err
	}
	id, ok := a.coll.id(rv)
	if !ok {
		return "", nil
	}
	return id.String(), nil
}

func (a *Admin) GetForm(adding bool) (*form.Schema, error) {
	return admin.BuildForm(a.coll, a.cfg, adding, a.exists)
}

// GetObject loads one document. Keys that are not uuids never match.
func (a *Admin) GetObject(ctx context.Context, pk string) (any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	id, err := uuid.Parse(pk)
	if err != nil {
		return nil, false, nil
	}
	a.log.Trace("get %s pk=%s", a.name, pk)

	var raw string
	err = a.db.View(func(tx *buntdb.Tx) error {
		value, err := tx.Get(a.coll.Key(id))
		if err != nil {
			return err
		}
		raw = value
		return nil
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "docadmin: get %s", a.coll.Key(id))
	}
	doc, err := parseDocument(raw)
	if err != nil {
		return nil, false, err
	}
	instance, err := a.coll.instance(doc, nil)
	if err != nil {
		return nil, false, err
	}
	return instance, true, nil
}

func (a *Admin) GetObjects(ctx context.Context, pks ...string) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var raws []string
	err := a.db.View(func(tx *buntdb.Tx) error {
		for _, key := range a.keys(pks) {
			value, err := tx.Get(key)
			if errors.Is(err, buntdb.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			raws = append(raws, value)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "docadmin: get %s", a.coll.collection)
	}

	out := make([]any, 0, len(raws))
	for _, raw := range raws {
		doc, err := parseDocument(raw)
		if err != nil {
			return nil, err
		}
		instance, err := a.coll.instance(doc, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, instance)
	}
	return out, nil
}

// SaveModel populates instance from a valid form and stores it in a single
// write. New documents without an id get a random uuid.
func (a *Admin) SaveModel(ctx context.Context, instance any, f *form.Form, adding bool) (any, error) {
	if err := admin.CheckForm(ctx, f); err != nil {
		return nil, err
	}
	rv, err := a.coll.value(instance)
	if err != nil {
		return nil, err
	}
	if err := f.Populate(instance, form.WithTagName("doc")); err != nil {
		return nil, err
	}

	id, ok := a.coll.id(rv)
	if !ok {
		if !adding {
			return nil, errors.Newf("docadmin: %s document has no id", a.name)
		}
		id = uuid.New()
		a.coll.setID(rv, id)
	}
	raw, err := a.coll.encode(rv)
	if err != nil {
		return nil, err
	}
	err = a.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(a.coll.Key(id), raw, nil)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "docadmin: save %s", a.coll.Key(id))
	}
	a.log.Debug("saved %s %s adding=%v", a.name, id, adding)
	return instance, nil
}

// DeleteModels removes the documents for pks. Unknown keys are skipped.
func (a *Admin) DeleteModels(ctx context.Context, pks ...string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	removed := 0
	err := a.db.Update(func(tx *buntdb.Tx) error {
		for _, key := range a.keys(pks) {
			_, err := tx.Delete(key)
			if errors.Is(err, buntdb.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return false, errors.Wrapf(err, "docadmin: delete from %s", a.coll.collection)
	}
	a.log.Debug("deleted %d %s documents", removed, a.name)
	return true, nil
}

// GetList counts the filtered documents and returns the requested window.
func (a *Admin) GetList(ctx context.Context, q admin.ListQuery, execute bool) (int, admin.RowSource, error) {
	if err := a.cfg.CheckSort(a.coll, q); err != nil {
		return 0, nil, err
	}
	count := 0
	err := a.scan(ctx, q, a.cfg.Filter, func(document) (bool, error) {
		count++
		return true, nil
	})
	if err != nil {
		return 0, nil, err
	}
	window := a.cfg.Window(q, count)
	var only []string
	if a.cfg.Projection {
		only = a.cfg.Columns(a.coll)
	}

	a.log.Trace("list %s sort=%q desc=%v offset=%d limit=%d", a.name, q.Sort, q.Desc, window.Offset, window.Limit)
	fetch := admin.Query(func(ctx context.Context) ([]any, error) {
		var out []any
		skipped := 0
		err := a.scan(ctx, q, a.cfg.Filter, func(doc document) (bool, error) {
			if window.Paginated {
				if skipped < window.Offset {
					skipped++
					return true, nil
				}
				if len(out) >= window.Limit {
					return false, nil
				}
			}
			instance, err := a.coll.instance(doc, only)
			if err != nil {
				return false, err
			}
			out = append(out, instance)
			return true, nil
		})
		return out, err
	})
	rows, err := admin.Resolve(ctx, fetch, execute)
	if err != nil {
		return 0, nil, err
	}
	return count, rows, nil
}

func (a *Admin) exists(ctx context.Context, field string, value any) (bool, error) {
	found := false
	err := a.scan(ctx, admin.ListQuery{}, map[string]any{field: value}, func(document) (bool, error) {
		found = true
		return false, nil
	})
	return found, err
}

// scan walks the documents matching filter in q's order until visit stops.
func (a *Admin) scan(ctx context.Context, q admin.ListQuery, filter map[string]any, visit func(document) (bool, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var visitErr error
	iter := func(_, value string) bool {
		if err := ctx.Err(); err != nil {
			visitErr = err
			return false
		}
		doc, err := parseDocument(value)
		if err != nil {
			visitErr = err
			return false
		}
		if !doc.matches(filter) {
			return true
		}
		more, err := visit(doc)
		if err != nil {
			visitErr = err
			return false
		}
		return more
	}

	err := a.db.View(func(tx *buntdb.Tx) error {
		switch {
		case q.Sort == "":
			return tx.AscendKeys(a.coll.pattern(), iter)
		case q.Desc:
			return tx.Descend(a.coll.indexName(q.Sort), iter)
		default:
			return tx.Ascend(a.coll.indexName(q.Sort), iter)
		}
	})
	if err != nil {
		return errors.Wrapf(err, "docadmin: scan %s", a.coll.collection)
	}
	return visitErr
}

// keys maps textual ids to storage keys, dropping malformed and repeated ids.
func (a *Admin) keys(pks []string) []string {
	keys := make([]string, 0, len(pks))
	seen := make(map[uuid.UUID]struct{}, len(pks))
	for _, pk := range pks {
		id, err := uuid.Parse(pk)
		if err != nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, a.coll.Key(id))
	}
	return keys
}
