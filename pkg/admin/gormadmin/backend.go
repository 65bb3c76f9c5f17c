// Package gormadmin serves gorm models. Field metadata comes from gorm's
// schema parser; an optional `admin:"kind,opts"` struct tag refines it.
package gormadmin

import (
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/shopmonkeyus/go-common/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/goliatone/go-modeladmin/internal/logging"
	"github.com/goliatone/go-modeladmin/pkg/admin"
	"github.com/goliatone/go-modeladmin/pkg/model"
)

// BackendName identifies the gorm backend in an admin.Registry.
const BackendName = "gorm"

// Backend builds adapters for gorm model structs.
type Backend struct {
	db     *gorm.DB
	logger logger.Logger
	cache  sync.Map
}

var _ admin.Backend = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger used when an adapter's config carries none.
func WithLogger(l logger.Logger) Option {
	return func(b *Backend) {
		b.logger = l
	}
}

// New creates a backend over db.
func New(db *gorm.DB, opts ...Option) *Backend {
	b := &Backend{db: db}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *Backend) Name() string { return BackendName }

// Parse reads the gorm schema of candidate, a struct or pointer to one.
func (b *Backend) Parse(candidate any) (m *Model, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("gormadmin: parse %T: %v", candidate, r)
		}
	}()
	if candidate == nil {
		return nil, errors.New("gormadmin: model is nil")
	}
	if _, declared := candidate.(model.Model); declared {
		return nil, errors.Newf("gormadmin: %T is not a gorm model", candidate)
	}
	var namer schema.Namer = schema.NamingStrategy{}
	if b.db != nil && b.db.Config != nil && b.db.NamingStrategy != nil {
		namer = b.db.NamingStrategy
	}
	s, err := schema.Parse(candidate, &b.cache, namer)
	if err != nil {
		return nil, errors.Wrapf(err, "gormadmin: parse %T", candidate)
	}
	return newModel(s)
}

// ModelDetect accepts structs gorm can map to a table with a primary key.
func (b *Backend) ModelDetect(candidate any) bool {
	_, err := b.Parse(candidate)
	return err == nil
}

// NewAdmin builds the adapter for a gorm model struct.
func (b *Backend) NewAdmin(candidate any, cfg admin.Config) (admin.ModelAdmin, error) {
	if b.db == nil {
		return nil, errors.New("gormadmin: database handle is required")
	}
	m, err := b.Parse(candidate)
	if err != nil {
		return nil, err
	}
	for key := range cfg.Filter {
		if _, ok := model.FieldByName(m, key); !ok {
			return nil, errors.Newf("gormadmin: filter column %q is not a column of %s", key, m.Table())
		}
	}

	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = strings.ToLower(m.Name())
	}
	l := cfg.Logger
	if l == nil {
		l = b.logger
	}
	return &Admin{
		db:    b.db,
		model: m,
		cfg:   cfg,
		name:  name,
		log:   logging.New(l, "[gormadmin]"),
	}, nil
}
