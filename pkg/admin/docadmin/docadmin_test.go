package docadmin_test

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/shopmonkeyus/go-common/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/buntdb"

	"github.com/goliatone/go-modeladmin/pkg/admin"
	"github.com/goliatone/go-modeladmin/pkg/admin/docadmin"
	"github.com/goliatone/go-modeladmin/pkg/form"
	"github.com/goliatone/go-modeladmin/pkg/model"
)

type post struct {
	ID      uuid.UUID `doc:"id,pk"`
	Title   string    `doc:"title,char,max=80,unique"`
	State   string    `doc:"state,choices=draft|published"`
	Views   int64     `doc:"views"`
	Summary *string   `doc:"summary,text"`
}

func openDB(t *testing.T) *buntdb.DB {
	t.Helper()
	db, err := docadmin.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newAdmin(t *testing.T, db *buntdb.DB, cfg admin.Config) admin.ModelAdmin {
	t.Helper()
	registry := admin.NewRegistry(docadmin.New(db, docadmin.WithLogger(logger.NewTestLogger())))
	adapter, err := registry.Register(docadmin.MustDeclare[post]("posts"), cfg)
	require.NoError(t, err)
	return adapter
}

func create(t *testing.T, adapter admin.ModelAdmin, values map[string][]string) *post {
	t.Helper()
	schema, err := adapter.GetForm(true)
	require.NoError(t, err)
	saved, err := adapter.SaveModel(context.Background(), adapter.New(), schema.Bind(values), true)
	require.NoError(t, err)
	return saved.(*post)
}

func seed(t *testing.T, adapter admin.ModelAdmin, n int) []*post {
	t.Helper()
	var out []*post
	for i := 1; i <= n; i++ {
		state := "draft"
		if i%5 == 0 {
			state = "published"
		}
		out = append(out, create(t, adapter, map[string][]string{
			"title": {fmt.Sprintf("post %02d", i)},
			"state": {state},
			"views": {strconv.Itoa(i)},
		}))
	}
	return out
}

func TestDeclare(t *testing.T) {
	posts, err := docadmin.Declare[post]("posts")
	require.NoError(t, err)
	assert.Equal(t, "post", posts.Name())
	assert.Equal(t, "posts", posts.Collection())
	assert.Equal(t, "id", posts.PrimaryKey())

	id, _ := model.FieldByName(posts, "id")
	assert.Equal(t, model.KindUUID, id.Kind)
	state, _ := model.FieldByName(posts, "state")
	assert.Equal(t, []model.Choice{{Value: "draft", Label: "draft"}, {Value: "published", Label: "published"}}, state.Choices)
	summary, _ := model.FieldByName(posts, "summary")
	assert.Equal(t, model.KindText, summary.Kind)
	assert.True(t, summary.Nullable)

	type intKey struct {
		ID int `doc:"id,pk"`
	}
	_, err = docadmin.Declare[intKey]("things")
	assert.Error(t, err)
	_, err = docadmin.Declare[post]("bad:name")
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	db := openDB(t)
	adapter := newAdmin(t, db, admin.Config{})
	ctx := context.Background()

	created := create(t, adapter, map[string][]string{
		"title":   {"Hello"},
		"state":   {"draft"},
		"views":   {"3"},
		"summary": {"Tom & Jerry <3"},
	})
	assert.NotEqual(t, uuid.Nil, created.ID)
	require.NotNil(t, created.Summary)
	assert.Equal(t, "Tom & Jerry <3", *created.Summary)

	pk, err := adapter.GetPK(created)
	require.NoError(t, err)
	assert.Equal(t, created.ID.String(), pk)

	loaded, ok, err := adapter.GetObject(ctx, pk)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, created, loaded)

	value, ok := adapter.GetColumn(loaded, "id")
	assert.True(t, ok)
	assert.Equal(t, pk, value)

	edit, err := admin.EditForm(adapter, loaded)
	require.NoError(t, err)
	edit.Submit(map[string][]string{"title": {"Hello again"}, "state": {"published"}, "views": {"4"}})
	_, err = adapter.SaveModel(ctx, loaded, edit, false)
	require.NoError(t, err)

	reloaded, _, err := adapter.GetObject(ctx, pk)
	require.NoError(t, err)
	got := reloaded.(*post)
	assert.Equal(t, "Hello again", got.Title)
	assert.Equal(t, "published", got.State)
	assert.Equal(t, int64(4), got.Views)
	require.NotNil(t, got.Summary, "omitted optional fields keep their value")
	assert.Equal(t, "Tom & Jerry <3", *got.Summary)
}

func TestGetObjectMisses(t *testing.T) {
	db := openDB(t)
	adapter := newAdmin(t, db, admin.Config{})
	ctx := context.Background()
	created := seed(t, adapter, 2)

	for _, pk := range []string{"not-a-uuid", "", uuid.NewString()} {
		instance, ok, err := adapter.GetObject(ctx, pk)
		require.NoError(t, err)
		assert.False(t, ok, pk)
		assert.Nil(t, instance)
	}

	objects, err := adapter.GetObjects(ctx, created[0].ID.String(), "junk", uuid.NewString(), created[1].ID.String())
	require.NoError(t, err)
	assert.Len(t, objects, 2)
}

func TestGetListPaginatesBySortedIndex(t *testing.T) {
	db := openDB(t)
	adapter := newAdmin(t, db, admin.Config{PerPage: 10})
	seed(t, adapter, 25)
	ctx := context.Background()

	count, rows, err := adapter.GetList(ctx, admin.ListQuery{Sort: "views", Page: admin.Page(2)}, true)
	require.NoError(t, err)
	assert.Equal(t, 25, count)
	items, err := rows.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, items, 5)
	assert.Equal(t, int64(21), items[0].(*post).Views)
	assert.Equal(t, int64(25), items[4].(*post).Views)

	_, lazy, err := adapter.GetList(ctx, admin.ListQuery{Sort: "views", Page: admin.Page(2)}, false)
	require.NoError(t, err)
	assert.False(t, lazy.Materialized())
	again, err := lazy.Rows(ctx)
	require.NoError(t, err)
	assert.Equal(t, items, again)

	_, desc, err := adapter.GetList(ctx, admin.ListQuery{Sort: "views", Desc: true, Page: admin.Page(0), PerPage: 3}, true)
	require.NoError(t, err)
	top, _ := desc.Rows(ctx)
	require.Len(t, top, 3)
	assert.Equal(t, int64(25), top[0].(*post).Views)
	assert.Equal(t, int64(23), top[2].(*post).Views)

	_, all, err := adapter.GetList(ctx, admin.ListQuery{}, true)
	require.NoError(t, err)
	everything, _ := all.Rows(ctx)
	assert.Len(t, everything, 25)
}

func TestGetListFilterProjectionAndSort(t *testing.T) {
	db := openDB(t)
	seed(t, newAdmin(t, db, admin.Config{}), 25)
	adapter := newAdmin(t, db, admin.Config{
		Name:        "published",
		ListDisplay: []string{"title", "views"},
		Filter:      map[string]any{"state": "published"},
		Projection:  true,
		ClampPage:   true,
		PerPage:     2,
	})
	ctx := context.Background()

	count, rows, err := adapter.GetList(ctx, admin.ListQuery{Sort: "views", Page: admin.Page(7)}, true)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
	items, _ := rows.Rows(ctx)
	require.Len(t, items, 1)
	last := items[0].(*post)
	assert.Equal(t, int64(25), last.Views)
	assert.Equal(t, "post 25", last.Title)
	assert.NotEqual(t, uuid.Nil, last.ID)
	assert.Empty(t, last.State, "state is not projected")

	_, _, err = adapter.GetList(ctx, admin.ListQuery{Sort: "state"}, true)
	assert.True(t, errors.Is(err, admin.ErrSortColumn))
}

func TestUniqueTitle(t *testing.T) {
	db := openDB(t)
	adapter := newAdmin(t, db, admin.Config{})
	seed(t, adapter, 1)

	schema, err := adapter.GetForm(true)
	require.NoError(t, err)
	f := schema.Bind(map[string][]string{"title": {"post 01"}, "state": {"archived"}, "views": {"1"}})
	_, err = adapter.SaveModel(context.Background(), adapter.New(), f, true)
	assert.True(t, errors.Is(err, admin.ErrInvalidForm))
	assert.Equal(t, map[string][]string{
		"title": {"Already exists."},
		"state": {"Not a valid choice."},
	}, f.Errors())
}

func TestDeleteModels(t *testing.T) {
	db := openDB(t)
	adapter := newAdmin(t, db, admin.Config{})
	created := seed(t, adapter, 3)
	ctx := context.Background()

	removed, err := adapter.DeleteModels(ctx, created[0].ID.String(), uuid.NewString(), "junk", created[2].ID.String())
	require.NoError(t, err)
	assert.True(t, removed)

	count, _, err := adapter.GetList(ctx, admin.ListQuery{}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, ok, err := adapter.GetObject(ctx, created[0].ID.String())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveModelRequiresIDOnEdit(t *testing.T) {
	db := openDB(t)
	adapter := newAdmin(t, db, admin.Config{})

	schema, err := adapter.GetForm(false)
	require.NoError(t, err)
	f := schema.Bind(map[string][]string{"title": {"orphan"}, "state": {"draft"}, "views": {"0"}})
	_, err = adapter.SaveModel(context.Background(), adapter.New(), f, false)
	assert.Error(t, err)
}

func TestBackendDetection(t *testing.T) {
	backend := docadmin.New(nil)
	assert.Equal(t, docadmin.BackendName, backend.Name())
	assert.True(t, backend.ModelDetect(docadmin.MustDeclare[post]("posts")))
	assert.False(t, backend.ModelDetect(post{}))
	assert.False(t, backend.ModelDetect(form.Base()))

	_, err := backend.NewAdmin(docadmin.MustDeclare[post]("posts"), admin.Config{})
	assert.Error(t, err)

	_, err = docadmin.New(openDB(t)).NewAdmin(docadmin.MustDeclare[post]("posts"), admin.Config{
		Filter: map[string]any{"ghost": 1},
	})
	assert.Error(t, err)
}
