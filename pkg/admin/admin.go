package admin

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/shopmonkeyus/go-common/logger"

	"github.com/goliatone/go-modeladmin/pkg/convert"
	"github.com/goliatone/go-modeladmin/pkg/form"
	"github.com/goliatone/go-modeladmin/pkg/model"
)

// DefaultPerPage is the page size used when Config.PerPage is unset.
const DefaultPerPage = 20

var (
	// ErrSortColumn is returned by GetList for a sort column outside the
	// allowed set.
	ErrSortColumn = errors.New("admin: sort column not allowed")
	// ErrNoBackend is returned by Registry.Register when no backend detects
	// the candidate.
	ErrNoBackend = errors.New("admin: no backend accepts model")
	// ErrInvalidForm is returned by SaveModel for a form that failed
	// validation.
	ErrInvalidForm = errors.New("admin: form is not valid")
	// ErrDuplicate is returned when an admin name is registered twice.
	ErrDuplicate = errors.New("admin: duplicate registration")
)

// ModelAdmin is the uniform CRUD and listing contract every backend adapter
// implements. Adapters are long-lived and safe for concurrent use; the
// per-request session lives behind the backend handle.
type ModelAdmin interface {
	// Name is the registration name, e.g. "user".
	Name() string
	// Model returns the native model the adapter serves.
	Model() model.Model
	// New returns a fresh, empty instance for creation flows.
	New() any

	AllowPrimaryKeyOnCreate() bool
	GetColumn(instance any, name string) (any, bool)
	GetForm(adding bool) (*form.Schema, error)
	GetObject(ctx context.Context, pk string) (any, bool, error)
	GetObjects(ctx context.Context, pks ...string) ([]any, error)
	GetPK(instance any) (string, error)
	SaveModel(ctx context.Context, instance any, f *form.Form, adding bool) (any, error)
	DeleteModels(ctx context.Context, pks ...string) (bool, error)
	GetList(ctx context.Context, q ListQuery, execute bool) (int, RowSource, error)
}

// Backend builds adapters for the model types it recognises.
type Backend interface {
	Name() string
	// ModelDetect reports whether candidate belongs to this backend. It must
	// never panic and must not touch storage.
	ModelDetect(candidate any) bool
	NewAdmin(candidate any, cfg Config) (ModelAdmin, error)
}

// Config holds per-adapter settings.
type Config struct {
	// Name overrides the registration name derived from the model.
	Name string
	// ListDisplay names the columns shown in listings.
	ListDisplay []string
	Include     []string
	Exclude     []string
	Readonly    []string
	FieldArgs   map[string]convert.FieldArgs
	Converter   convert.Converter
	BaseForm    *form.Schema
	PerPage     int
	// SortColumns is the allowed sort set. Empty allows ListDisplay plus the
	// primary key.
	SortColumns []string
	// Projection restricts listing fetches to ListDisplay plus the primary
	// key where the backend supports it.
	Projection bool
	// ClampPage bounds page indexes past the end to the last page.
	ClampPage bool
	// AllowPK exposes the primary key on creation forms.
	AllowPK bool
	// Filter is a base equality filter (column to value) applied to listings
	// and counts.
	Filter map[string]any
	Logger logger.Logger
}

// ListQuery is a sort and pagination request.
type ListQuery struct {
	Sort string
	Desc bool
	// Page is the zero-based page index; nil disables pagination.
	Page *int
	// PerPage overrides Config.PerPage when positive.
	PerPage int
}

// Page returns a pointer to index, for ListQuery literals.
func Page(index int) *int {
	return &index
}
