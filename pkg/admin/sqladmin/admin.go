package sqladmin

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"

	"github.com/cockroachdb/errors"

	"github.com/goliatone/go-modeladmin/internal/logging"
	"github.com/goliatone/go-modeladmin/pkg/admin"
	"github.com/goliatone/go-modeladmin/pkg/form"
	"github.com/goliatone/go-modeladmin/pkg/model"
)

// Admin is the relational ModelAdmin.
type Admin struct {
	db      *sql.DB
	dialect Dialect
	table   *Table
	cfg     admin.Config
	name    string
	log     logging.Log
}

var _ admin.ModelAdmin = (*Admin)(nil)

func (a *Admin) Name() string                  { return a.name }
func (a *Admin) Model() model.Model            { return a.table }
func (a *Admin) New() any                      { return a.table.New() }
func (a *Admin) AllowPrimaryKeyOnCreate() bool { return a.cfg.AllowPK }

// Table returns the declared table.
func (a *Admin) Table() *Table { return a.table }

func (a *Admin) GetColumn(instance any, name string) (any, bool) {
	rv, err := a.table.value(instance)
	if err != nil {
		return nil, false
	}
	field, ok := a.table.column(rv, name)
	if !ok {
		return nil, false
	}
	return argValue(field), true
}

func (a *Admin) GetPK(instance any) (string, error) {
	rv, err := a.table.value(instance)
	if err != nil {
		return "", err
	}
	field, _ := a.table.column(rv, a.table.PrimaryKey())
	value := argValue(field)
	if value == nil {
		return "", nil
	}
	return fmt.Sprint(value), nil
}

func (a *Admin) GetForm(adding bool) (*form.Schema, error) {
	return admin.BuildForm(a.table, a.cfg, adding, a.exists)
}

func (a *Admin) GetObject(ctx context.Context, pk string) (any, bool, error) {
	key, ok := a.table.parseKey(pk)
	if !ok {
		return nil, false, nil
	}
	b := a.selectFrom(model.FieldNames(a.table))
	b.write(" WHERE ").ident(a.table.PrimaryKey()).write(" = ").arg(key)

	a.log.Trace("get %s pk=%s", a.name, pk)
	rows, err := a.query(ctx, b, model.FieldNames(a.table))
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0], true, nil
}

func (a *Admin) GetObjects(ctx context.Context, pks ...string) ([]any, error) {
	keys := a.parseKeys(pks)
	if len(keys) == 0 {
		return nil, nil
	}
	b := a.selectFrom(model.FieldNames(a.table))
	b.write(" WHERE ").ident(a.table.PrimaryKey()).write(" IN ").argList(keys)

	a.log.Trace("get %s pks=%v", a.name, pks)
	return a.query(ctx, b, model.FieldNames(a.table))
}

// SaveModel populates instance from a valid form and writes it in a
// transaction. Creation with a zero integer key lets the database assign it.
func (a *Admin) SaveModel(ctx context.Context, instance any, f *form.Form, adding bool) (any, error) {
	if err := admin.CheckForm(ctx, f); err != nil {
		return nil, err
	}
	rv, err := a.table.value(instance)
	if err != nil {
		return nil, err
	}
	if err := f.Populate(instance, form.WithTagName("db")); err != nil {
		return nil, err
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "sqladmin: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	if adding {
		err = a.insert(ctx, tx, rv)
	} else {
		err = a.update(ctx, tx, rv)
	}
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "sqladmin: commit")
	}
	a.log.Debug("saved %s adding=%v", a.name, adding)
	return instance, nil
}

func (a *Admin) insert(ctx context.Context, tx *sql.Tx, rv reflect.Value) error {
	pk := a.table.PrimaryKey()
	generated := a.table.autoKey(rv)

	var columns []string
	var values []any
	for _, name := range model.FieldNames(a.table) {
		if name == pk && generated {
			continue
		}
		field, _ := a.table.column(rv, name)
		columns = append(columns, name)
		values = append(values, argValue(field))
	}

	b := &builder{dialect: a.dialect}
	b.write("INSERT INTO ").ident(a.table.table).write(" (").idents(columns).write(")")
	if generated && a.dialect.keyClause == "output" {
		b.write(" OUTPUT INSERTED.").ident(pk)
	}
	b.write(" VALUES ").argList(values)

	if !generated {
		if _, err := tx.ExecContext(ctx, b.String(), b.args...); err != nil {
			return errors.Wrapf(err, "sqladmin: insert into %s", a.table.table)
		}
		return nil
	}

	keyField, _ := a.table.column(rv, pk)
	if a.dialect.keyClause != "" {
		if a.dialect.keyClause == "returning" {
			b.write(" RETURNING ").ident(pk)
		}
		if err := tx.QueryRowContext(ctx, b.String(), b.args...).Scan(keyField.Addr().Interface()); err != nil {
			return errors.Wrapf(err, "sqladmin: insert into %s", a.table.table)
		}
		return nil
	}

	result, err := tx.ExecContext(ctx, b.String(), b.args...)
	if err != nil {
		return errors.Wrapf(err, "sqladmin: insert into %s", a.table.table)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return errors.Wrapf(err, "sqladmin: generated key of %s", a.table.table)
	}
	return setInt(keyField, id)
}

func (a *Admin) update(ctx context.Context, tx *sql.Tx, rv reflect.Value) error {
	pk := a.table.PrimaryKey()
	b := &builder{dialect: a.dialect}
	b.write("UPDATE ").ident(a.table.table).write(" SET ")
	first := true
	for _, name := range model.FieldNames(a.table) {
		if name == pk {
			continue
		}
		if !first {
			b.write(", ")
		}
		first = false
		field, _ := a.table.column(rv, name)
		b.ident(name).write(" = ").arg(argValue(field))
	}
	keyField, _ := a.table.column(rv, pk)
	b.write(" WHERE ").ident(pk).write(" = ").arg(argValue(keyField))

	if _, err := tx.ExecContext(ctx, b.String(), b.args...); err != nil {
		return errors.Wrapf(err, "sqladmin: update %s", a.table.table)
	}
	return nil
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
		rv, _ := a.table.value(instance)
		field, _ := a.table.column(rv, a.table.PrimaryKey())
		keys = append(keys, argValue(field))
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return false, errors.Wrap(err, "sqladmin: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	b := &builder{dialect: a.dialect}
	b.write("DELETE FROM ").ident(a.table.table).write(" WHERE ").ident(a.table.PrimaryKey()).write(" IN ").argList(keys)
	result, err := tx.ExecContext(ctx, b.String(), b.args...)
	if err != nil {
		return false, errors.Wrapf(err, "sqladmin: delete from %s", a.table.table)
	}
	if err := tx.Commit(); err != nil {
		return false, errors.Wrap(err, "sqladmin: commit")
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "sqladmin: rows affected")
	}
	a.log.Debug("deleted %d of %d %s rows", removed, len(keys), a.name)
	return int(removed) == len(keys), nil
}

// GetList counts the filtered rows and returns the requested window.
func (a *Admin) GetList(ctx context.Context, q admin.ListQuery, execute bool) (int, admin.RowSource, error) {
	if err := a.cfg.CheckSort(a.table, q); err != nil {
		return 0, nil, err
	}
	count, err := a.count(ctx)
	if err != nil {
		return 0, nil, err
	}
	window := a.cfg.Window(q, count)
	columns := a.cfg.Columns(a.table)

	b := a.selectFrom(columns)
	where(b, a.cfg.Filter)
	if q.Sort != "" {
		b.write(" ORDER BY ").ident(q.Sort)
		if q.Desc {
			b.write(" DESC")
		}
	}
	b.page(window, q.Sort != "", a.table.PrimaryKey())

	a.log.Trace("list %s sort=%q desc=%v offset=%d limit=%d", a.name, q.Sort, q.Desc, window.Offset, window.Limit)
	fetch := admin.Query(func(ctx context.Context) ([]any, error) {
		return a.query(ctx, b, columns)
	})
	rows, err := admin.Resolve(ctx, fetch, execute)
	if err != nil {
		return 0, nil, err
	}
	return count, rows, nil
}

func (a *Admin) count(ctx context.Context) (int, error) {
	b := &builder{dialect: a.dialect}
	b.write("SELECT COUNT(*) FROM ").ident(a.table.table)
	where(b, a.cfg.Filter)
	var count int
	if err := a.db.QueryRowContext(ctx, b.String(), b.args...).Scan(&count); err != nil {
		return 0, errors.Wrapf(err, "sqladmin: count %s", a.table.table)
	}
	return count, nil
}

// exists backs the uniqueness validator of creation forms.
func (a *Admin) exists(ctx context.Context, column string, value any) (bool, error) {
	b := &builder{dialect: a.dialect}
	b.write("SELECT COUNT(*) FROM ").ident(a.table.table)
	where(b, map[string]any{column: value})
	var count int
	if err := a.db.QueryRowContext(ctx, b.String(), b.args...).Scan(&count); err != nil {
		return false, errors.Wrapf(err, "sqladmin: lookup %s.%s", a.table.table, column)
	}
	return count > 0, nil
}

// where appends conditions as equality tests in column order.
func where(b *builder, conditions map[string]any) {
	for i, key := range sortedKeys(conditions) {
		if i == 0 {
			b.write(" WHERE ")
		} else {
			b.write(" AND ")
		}
		if conditions[key] == nil {
			b.ident(key).write(" IS NULL")
			continue
		}
		b.ident(key).write(" = ").arg(conditions[key])
	}
}

func (a *Admin) selectFrom(columns []string) *builder {
	b := &builder{dialect: a.dialect}
	b.write("SELECT ").idents(columns).write(" FROM ").ident(a.table.table)
	return b
}

func (a *Admin) query(ctx context.Context, b *builder, columns []string) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := a.db.QueryContext(ctx, b.String(), b.args...)
	if err != nil {
		return nil, errors.Wrapf(err, "sqladmin: query %s", a.table.table)
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		instance := reflect.New(a.table.typ)
		dest := make([]any, len(columns))
		for i, name := range columns {
			field, _ := a.table.column(instance.Elem(), name)
			dest[i] = field.Addr().Interface()
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Wrapf(err, "sqladmin: scan %s", a.table.table)
		}
		out = append(out, instance.Interface())
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "sqladmin: rows %s", a.table.table)
	}
	return out, nil
}

func (a *Admin) parseKeys(pks []string) []any {
	keys := make([]any, 0, len(pks))
	seen := make(map[string]struct{}, len(pks))
	for _, pk := range pks {
		key, ok := a.table.parseKey(pk)
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

// argValue unwraps pointer fields so drivers receive plain values.
func argValue(field reflect.Value) any {
	if field.Kind() == reflect.Pointer {
		if field.IsNil() {
			return nil
		}
		return field.Elem().Interface()
	}
	return field.Interface()
}

func setInt(field reflect.Value, id int64) error {
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		field.SetInt(id)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		field.SetUint(uint64(id))
	default:
		return errors.Newf("sqladmin: cannot store generated key in %s", field.Type())
	}
	return nil
}
