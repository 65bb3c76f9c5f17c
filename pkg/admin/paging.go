package admin

import (
	"github.com/cockroachdb/errors"

	"github.com/goliatone/go-modeladmin/pkg/model"
)

// Window is the slice of a listing to fetch.
type Window struct {
	Offset    int
	Limit     int
	Paginated bool
}

// PageSize returns the effective page size of q.
func (c Config) PageSize(q ListQuery) int {
	if q.PerPage > 0 {
		return q.PerPage
	}
	if c.PerPage > 0 {
		return c.PerPage
	}
	return DefaultPerPage
}

// Window computes offset and limit for q given the filtered row count.
// Negative pages read as the first page; with ClampPage, pages past the end
// read as the last page.
func (c Config) Window(q ListQuery, count int) Window {
	if q.Page == nil {
		return Window{}
	}
	size := c.PageSize(q)
	page := *q.Page
	if page < 0 {
		page = 0
	}
	if c.ClampPage {
		last := 0
		if count > 0 {
			last = (count - 1) / size
		}
		if page > last {
			page = last
		}
	}
	return Window{Offset: page * size, Limit: size, Paginated: true}
}

// AllowedSort resolves the allowed sort set for m: the configured set, else
// ListDisplay plus the primary key, else every field. Names that are not
// fields of m are dropped.
func (c Config) AllowedSort(m model.Model) []string {
	fields := make(map[string]struct{})
	for _, name := range model.FieldNames(m) {
		fields[name] = struct{}{}
	}

	candidates := c.SortColumns
	if len(candidates) == 0 && len(c.ListDisplay) > 0 {
		candidates = append(append([]string(nil), c.ListDisplay...), m.PrimaryKey())
	}
	if len(candidates) == 0 {
		return model.FieldNames(m)
	}

	out := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, name := range candidates {
		if _, ok := fields[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// CheckSort validates q.Sort against the allowed set. An empty sort is
// always accepted.
func (c Config) CheckSort(m model.Model, q ListQuery) error {
	if q.Sort == "" {
		return nil
	}
	for _, name := range c.AllowedSort(m) {
		if name == q.Sort {
			return nil
		}
	}
	return errors.Wrapf(ErrSortColumn, "%q", q.Sort)
}

// Columns returns the columns a listing fetches: ListDisplay plus the primary
// key under Projection, else every field.
func (c Config) Columns(m model.Model) []string {
	all := model.FieldNames(m)
	if !c.Projection || len(c.ListDisplay) == 0 {
		return all
	}
	known := make(map[string]struct{}, len(all))
	for _, name := range all {
		known[name] = struct{}{}
	}
	out := []string{m.PrimaryKey()}
	for _, name := range c.ListDisplay {
		if _, ok := known[name]; ok && name != m.PrimaryKey() {
			out = append(out, name)
		}
	}
	return out
}

// DisplayColumns returns ListDisplay, or every field when unset.
func (c Config) DisplayColumns(m model.Model) []string {
	if len(c.ListDisplay) > 0 {
		return append([]string(nil), c.ListDisplay...)
	}
	return model.FieldNames(m)
}
