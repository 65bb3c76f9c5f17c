package admin_test

import (
	"context"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/shopmonkeyus/go-common/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-modeladmin/pkg/admin"
	"github.com/goliatone/go-modeladmin/pkg/form"
	"github.com/goliatone/go-modeladmin/pkg/model"
)

type stubAdmin struct {
	name    string
	backend string
	m       model.Model
}

func (s *stubAdmin) Name() string                                         { return s.name }
func (s *stubAdmin) Model() model.Model                                   { return s.m }
func (s *stubAdmin) New() any                                             { return map[string]any{} }
func (s *stubAdmin) AllowPrimaryKeyOnCreate() bool                        { return false }
func (s *stubAdmin) GetColumn(any, string) (any, bool)                    { return nil, false }
func (s *stubAdmin) GetForm(bool) (*form.Schema, error)                   { return form.Base(), nil }
func (s *stubAdmin) GetObject(context.Context, string) (any, bool, error) { return nil, false, nil }
func (s *stubAdmin) GetObjects(context.Context, ...string) ([]any, error) { return nil, nil }
func (s *stubAdmin) GetPK(any) (string, error)                            { return "", nil }
func (s *stubAdmin) SaveModel(context.Context, any, *form.Form, bool) (any, error) {
	return nil, nil
}
func (s *stubAdmin) DeleteModels(context.Context, ...string) (bool, error) { return true, nil }
func (s *stubAdmin) GetList(context.Context, admin.ListQuery, bool) (int, admin.RowSource, error) {
	return 0, admin.Rows(nil), nil
}

// stubBackend accepts declared models whose name starts with prefix.
type stubBackend struct {
	name   string
	prefix string
	panics bool
}

func (b stubBackend) Name() string { return b.name }

func (b stubBackend) ModelDetect(candidate any) bool {
	if b.panics {
		panic("detect exploded")
	}
	m, ok := candidate.(model.Model)
	return ok && strings.HasPrefix(m.Name(), b.prefix)
}

func (b stubBackend) NewAdmin(candidate any, cfg admin.Config) (admin.ModelAdmin, error) {
	m := candidate.(model.Model)
	name := cfg.Name
	if name == "" {
		name = strings.ToLower(m.Name())
	}
	return &stubAdmin{name: name, backend: b.name, m: m}, nil
}

func TestRegistryBindsFirstDetectingBackend(t *testing.T) {
	registry := admin.NewRegistry(
		stubBackend{name: "broken", panics: true},
		stubBackend{name: "docs", prefix: "Doc"},
		stubBackend{name: "any"},
	)
	cfg := admin.Config{Logger: logger.NewTestLogger()}

	doc, err := registry.Register(model.NewDeclared("DocPage"), cfg)
	require.NoError(t, err)
	assert.Equal(t, "docs", doc.(*stubAdmin).backend)

	other, err := registry.Register(model.NewDeclared("Invoice"), cfg)
	require.NoError(t, err)
	assert.Equal(t, "any", other.(*stubAdmin).backend)

	assert.Equal(t, []string{"docpage", "invoice"}, registry.Names())
	assert.True(t, registry.Has("Invoice"))

	got, err := registry.Get(" invoice ")
	require.NoError(t, err)
	assert.Same(t, other, got)

	_, err = registry.Get("missing")
	assert.Error(t, err)
	assert.Equal(t, []string{"broken", "docs", "any"}, registry.Backends())
}

func TestRegistryErrors(t *testing.T) {
	registry := admin.NewRegistry(stubBackend{name: "docs", prefix: "Doc"})

	_, err := registry.Register(model.NewDeclared("Invoice"), admin.Config{})
	assert.True(t, errors.Is(err, admin.ErrNoBackend))
	_, err = registry.Register(nil, admin.Config{})
	assert.True(t, errors.Is(err, admin.ErrNoBackend))

	_, err = registry.Register(model.NewDeclared("DocPage"), admin.Config{})
	require.NoError(t, err)
	_, err = registry.Register(model.NewDeclared("DocPage"), admin.Config{})
	assert.True(t, errors.Is(err, admin.ErrDuplicate))

	_, err = registry.Register(model.NewDeclared("DocPage"), admin.Config{Name: "pages"})
	assert.NoError(t, err)

	assert.True(t, errors.Is(registry.AddBackend(stubBackend{name: "DOCS"}), admin.ErrDuplicate))
	assert.Error(t, registry.AddBackend(nil))
	assert.NoError(t, registry.AddBackend(stubBackend{name: "any"}))

	invoice, err := registry.Register(model.NewDeclared("Invoice"), admin.Config{})
	require.NoError(t, err)
	assert.Equal(t, "any", invoice.(*stubAdmin).backend)

	assert.Panics(t, func() {
		registry.MustRegister(model.NewDeclared("Invoice"), admin.Config{})
	})
}
