// Package sqladmin serves models stored in relational tables through
// database/sql. Models are Go structs declared with Declare; the backend
// builds dialect-aware statements for sqlite, postgres, mysql and sqlserver.
package sqladmin

import (
	"database/sql"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/shopmonkeyus/go-common/logger"

	"github.com/goliatone/go-modeladmin/internal/logging"
	"github.com/goliatone/go-modeladmin/pkg/admin"
	"github.com/goliatone/go-modeladmin/pkg/model"
)

// BackendName identifies the relational backend in an admin.Registry.
const BackendName = "sql"

// Backend builds adapters for declared tables sharing one database handle.
type Backend struct {
	db      *sql.DB
	dialect Dialect
	logger  logger.Logger
}

var _ admin.Backend = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

// WithDialect selects the SQL dialect. SQLite is the default.
func WithDialect(d Dialect) Option {
	return func(b *Backend) {
		if d.Name != "" {
			b.dialect = d
		}
	}
}

// WithLogger sets the logger used when an adapter's config carries none.
func WithLogger(l logger.Logger) Option {
	return func(b *Backend) {
		b.logger = l
	}
}

// New creates a backend over db.
func New(db *sql.DB, opts ...Option) *Backend {
	b := &Backend{db: db, dialect: SQLite}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *Backend) Name() string { return BackendName }

// Dialect returns the configured dialect.
func (b *Backend) Dialect() Dialect { return b.dialect }

// ModelDetect accepts tables built by Declare.
func (b *Backend) ModelDetect(candidate any) bool {
	t, ok := candidate.(*Table)
	return ok && t != nil && t.Declared != nil
}

// NewAdmin builds the adapter for a declared table.
func (b *Backend) NewAdmin(candidate any, cfg admin.Config) (admin.ModelAdmin, error) {
	if b.db == nil {
		return nil, errors.New("sqladmin: database handle is required")
	}
	t, ok := candidate.(*Table)
	if !ok || t == nil || t.Declared == nil {
		return nil, errors.Newf("sqladmin: unsupported model %T", candidate)
	}
	for _, key := range sortedKeys(cfg.Filter) {
		if _, ok := model.FieldByName(t, key); !ok {
			return nil, errors.Newf("sqladmin: filter column %q is not a column of %s", key, t.table)
		}
	}

	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = strings.ToLower(t.Name())
	}
	l := cfg.Logger
	if l == nil {
		l = b.logger
	}
	return &Admin{
		db:      b.db,
		dialect: b.dialect,
		table:   t,
		cfg:     cfg,
		name:    name,
		log:     logging.New(l, "[sqladmin]"),
	}, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
