// Package docadmin serves document collections stored as JSON in buntdb.
// Documents live under "<collection>:<uuid>" keys; every sortable field gets
// a JSON index so listings can be ordered without loading the collection.
package docadmin

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/shopmonkeyus/go-common/logger"
	"github.com/tidwall/buntdb"

	"github.com/goliatone/go-modeladmin/internal/logging"
	"github.com/goliatone/go-modeladmin/pkg/admin"
	"github.com/goliatone/go-modeladmin/pkg/model"
)

// BackendName identifies the document backend in an admin.Registry.
const BackendName = "document"

// Backend builds adapters for declared collections sharing one database.
type Backend struct {
	db     *buntdb.DB
	logger logger.Logger
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
func New(db *buntdb.DB, opts ...Option) *Backend {
	b := &Backend{db: db}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Open opens a buntdb database at path; ":memory:" keeps it in memory.
func Open(path string) (*buntdb.DB, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "docadmin: open %s", path)
	}
	return db, nil
}

func (b *Backend) Name() string { return BackendName }

// ModelDetect accepts collections built by Declare.
func (b *Backend) ModelDetect(candidate any) bool {
	c, ok := candidate.(*Collection)
	return ok && c != nil && c.Declared != nil
}

// NewAdmin builds the adapter for a collection and creates the JSON indexes
// of its sortable fields.
func (b *Backend) NewAdmin(candidate any, cfg admin.Config) (admin.ModelAdmin, error) {
	if b.db == nil {
		return nil, errors.New("docadmin: database handle is required")
	}
	c, ok := candidate.(*Collection)
	if !ok || c == nil || c.Declared == nil {
		return nil, errors.Newf("docadmin: unsupported model %T", candidate)
	}
	for key := range cfg.Filter {
		if _, ok := model.FieldByName(c, key); !ok {
			return nil, errors.Newf("docadmin: filter field %q is not a field of %s", key, c.collection)
		}
	}
	for _, name := range cfg.AllowedSort(c) {
		err := b.db.CreateIndex(c.indexName(name), c.pattern(), buntdb.IndexJSON(name))
		if err != nil && !errors.Is(err, buntdb.ErrIndexExists) {
			return nil, errors.Wrapf(err, "docadmin: index %s", c.indexName(name))
		}
	}

	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = strings.ToLower(c.Name())
	}
	l := cfg.Logger
	if l == nil {
		l = b.logger
	}
	return &Admin{
		db:   b.db,
		coll: c,
		cfg:  cfg,
		name: name,
		log:  logging.New(l, "[docadmin]"),
	}, nil
}
