package gormadmin

import (
	"context"
	"fmt"
	"reflect"

	"github.com/cockroachdb/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/goliatone/go-modeladmin/internal/fieldtags"
	"github.com/goliatone/go-modeladmin/internal/logging"
	"github.com/goliatone/go-modeladmin/pkg/admin"
	"github.com/goliatone/go-modeladmin/pkg/form"
	"github.com/goliatone/go-modeladmin/pkg/model"
)

// Admin is the gorm ModelAdmin.
type Admin struct {
	db    *gorm.DB
	model *Model
	cfg   admin.Config
	name  string
	log   logging.Log
}

var _ admin.ModelAdmin = (*Admin)(nil)

func (a *Admin) Name() string                  { return a.name }
func (a *Admin) Model() model.Model            { return a.model }
func (a *Admin) New() any                      { return a.model.New() }
func (a *Admin) AllowPrimaryKeyOnCreate() bool { return a.cfg.AllowPK }

func (a *Admin) GetColumn(instance any, name string) (any, bool) {
	rv, ok := a.value(instance)
	if !ok {
		return nil, false
	}
	field := a.model.schema.LookUpField(name)
	if field == nil || field.DBName == "" {
		return nil, false
	}
	return deref(rv.FieldByIndex(field.StructField.Index)), true
}

func (a *Admin) GetPK(instance any) (string, error) {
	rv, ok := a.value(instance)
	if !ok {
		return "", errors.Newf("gormadmin: expected *%s, got %T", a.model.Name(), instance)
	}
	field := a.model.schema.PrioritizedPrimaryField
	value := reflect.Indirect(rv.FieldByIndex(field.StructField.Index))
	if !value.IsValid() || value.IsZero() {
		return "", nil
	}
	return fmt.Sprint(value.Interface()), nil
}

func (a *Admin) GetForm(adding bool) (*form.Schema, error) {
	return admin.BuildForm(a.model, a.cfg, adding, a.exists)
}

func (a *Admin) GetObject(ctx context.Context, pk string) (any, bool, error) {
	key, ok := a.model.parseKey(pk)
	if !ok {
		return nil, false, nil
	}
	instance := a.model.New()
	err := a.db.WithContext(ctx).Where(a.pkEq(key)).Take(instance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "gormadmin: get %s", a.model.Table())
	}
	return instance, true, nil
}

func (a *Admin) GetObjects(ctx context.Context, pks ...string) ([]any, error) {
	keys := a.parseKeys(pks)
	if len(keys) == 0 {
		return nil, nil
	}
	slice := a.model.newSlice()
	err := a.db.WithContext(ctx).Where(clause.IN{Column: a.pkColumn(), Values: keys}).Find(slice.Interface()).Error
	if err != nil {
		return nil, errors.Wrapf(err, "gormadmin: get %s", a.model.Table())
	}
	return toAny(slice), nil
}

// SaveModel populates instance from a valid form and writes it inside
// db.Transaction. Associations are never written.
func (a *Admin) SaveModel(ctx context.Context, instance any, f *form.Form, adding bool) (any, error) {
	if err := admin.CheckForm(ctx, f); err != nil {
		return nil, err
	}
	if _, ok := a.value(instance); !ok {
		return nil, errors.Newf("gormadmin: expected *%s, got %T", a.model.Name(), instance)
	}
	if err := f.Populate(instance, form.WithNameMatcher(a.matchColumn)); err != nil {
		return nil, err
	}

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tx = tx.Omit(clause.Associations)
		if adding {
			return tx.Create(instance).Error
		}
		return tx.Save(instance).Error
	})
	if err != nil {
		return nil, errors.Wrapf(err, "gormadmin: save %s", a.model.Table())
	}
	a.log.Debug("saved %s adding=%v", a.name, adding)
	return instance, nil
}

// DeleteModels removes the rows for pks. Unknown keys are skipped.
func (a *Admin) DeleteModels(ctx context.Context, pks ...string) (bool, error) {
	existing, err := a.GetObjects(ctx, pks...)
	if err != nil {
		return false, err
	}
	if len(existing) == 0 {
		return true, nil
	}
	keys := make([]any, 0, len(existing))
	for _, instance := range existing {
		pk, _ := a.GetPK(instance)
		key, _ := a.model.parseKey(pk)
		keys = append(keys, key)
	}

	var removed int64
	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where(clause.IN{Column: a.pkColumn(), Values: keys}).Delete(a.model.New())
		removed = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return false, errors.Wrapf(err, "gormadmin: delete from %s", a.model.Table())
	}
	a.log.Debug("deleted %d of %d %s rows", removed, len(keys), a.name)
	return int(removed) == len(keys), nil
}

// GetList counts the filtered rows and returns the requested window.
func (a *Admin) GetList(ctx context.Context, q admin.ListQuery, execute bool) (int, admin.RowSource, error) {
	if err := a.cfg.CheckSort(a.model, q); err != nil {
		return 0, nil, err
	}
	var count int64
	if err := a.filtered(a.db.WithContext(ctx)).Count(&count).Error; err != nil {
		return 0, nil, errors.Wrapf(err, "gormadmin: count %s", a.model.Table())
	}
	window := a.cfg.Window(q, int(count))

	a.log.Trace("list %s sort=%q desc=%v offset=%d limit=%d", a.name, q.Sort, q.Desc, window.Offset, window.Limit)
	fetch := admin.Query(func(ctx context.Context) ([]any, error) {
		tx := a.filtered(a.db.WithContext(ctx))
		if a.cfg.Projection {
			tx = tx.Select(a.cfg.Columns(a.model))
		}
		if q.Sort != "" {
			tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: q.Sort}, Desc: q.Desc})
		}
		if window.Paginated {
			tx = tx.Offset(window.Offset).Limit(window.Limit)
		}
		slice := a.model.newSlice()
		if err := tx.Find(slice.Interface()).Error; err != nil {
			return nil, errors.Wrapf(err, "gormadmin: list %s", a.model.Table())
		}
		return toAny(slice), nil
	})
	rows, err := admin.Resolve(ctx, fetch, execute)
	if err != nil {
		return 0, nil, err
	}
	return int(count), rows, nil
}

func (a *Admin) exists(ctx context.Context, column string, value any) (bool, error) {
	var count int64
	err := a.db.WithContext(ctx).Model(a.model.New()).
		Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrapf(err, "gormadmin: lookup %s.%s", a.model.Table(), column)
	}
	return count > 0, nil
}

func (a *Admin) filtered(tx *gorm.DB) *gorm.DB {
	tx = tx.Model(a.model.New())
	if len(a.cfg.Filter) > 0 {
		tx = tx.Where(map[string]any(a.cfg.Filter))
	}
	return tx
}

// matchColumn pairs form keys, which are column names, with struct fields.
func (a *Admin) matchColumn(key, fieldName string) bool {
	field := a.model.schema.LookUpField(key)
	return field != nil && field.Name == fieldName
}

func (a *Admin) pkColumn() clause.Column {
	return clause.Column{Name: a.model.schema.PrioritizedPrimaryField.DBName}
}

func (a *Admin) pkEq(key any) clause.Eq {
	return clause.Eq{Column: a.pkColumn(), Value: key}
}

func (a *Admin) parseKeys(pks []string) []any {
	keys := make([]any, 0, len(pks))
	seen := make(map[string]struct{}, len(pks))
	for _, pk := range pks {
		key, ok := a.model.parseKey(pk)
		if !ok {
			continue
		}
		id := fmt.Sprint(key)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

func (a *Admin) value(instance any) (reflect.Value, bool) {
	rv, ok := fieldtags.Indirect(instance)
	if !ok || rv.Type() != a.model.schema.ModelType {
		return reflect.Value{}, false
	}
	return rv, true
}

func deref(v reflect.Value) any {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		return v.Elem().Interface()
	}
	return v.Interface()
}

func toAny(slice reflect.Value) []any {
	items := slice.Elem()
	out := make([]any, 0, items.Len())
	for i := 0; i < items.Len(); i++ {
		out = append(out, items.Index(i).Interface())
	}
	return out
}
