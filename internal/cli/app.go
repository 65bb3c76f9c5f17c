package cli

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/shopmonkeyus/go-common/logger"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-modeladmin/internal/logging"
	"github.com/goliatone/go-modeladmin/internal/regions"
	"github.com/goliatone/go-modeladmin/pkg/admin"
	"github.com/goliatone/go-modeladmin/pkg/admin/docadmin"
	"github.com/goliatone/go-modeladmin/pkg/admin/gormadmin"
	"github.com/goliatone/go-modeladmin/pkg/admin/sqladmin"
	"github.com/goliatone/go-modeladmin/pkg/convert"
	"github.com/goliatone/go-modeladmin/pkg/form"
)

// session is an open storage handle plus the user admin bound to it.
type session struct {
	admin    admin.ModelAdmin
	registry *admin.Registry
	config   admin.Config
	migrate  func(ctx context.Context) error
	close    func() error
}

func (s *session) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}

// adminConfig is the demo user admin configuration.
func adminConfig(cfg *Config, log logger.Logger) admin.Config {
	return admin.Config{
		Name:        "user",
		ListDisplay: []string{"login", "email", "role", "active"},
		SortColumns: []string{"id", "login", "email", "role"},
		PerPage:     cfg.PerPage,
		ClampPage:   true,
		Converter:   convert.NewRegistry(convert.WithRegionProvider(regions.Provider())),
		FieldArgs: map[string]convert.FieldArgs{
			"bio": {Filters: []form.Filter{form.SanitizeHTML}},
		},
		Logger: log,
	}
}

// sqlDriver maps a dialect name to the database/sql driver registered for it.
func sqlDriver(d sqladmin.Dialect) string {
	switch d.Name {
	case sqladmin.SQLite.Name:
		return "sqlite"
	case sqladmin.Postgres.Name:
		return "postgres"
	case sqladmin.MySQL.Name:
		return "mysql"
	default:
		return "sqlserver"
	}
}

func openSession(ctx context.Context, cfg *Config, log logger.Logger) (*session, error) {
	switch cfg.Backend {
	case sqladmin.BackendName:
		return openSQL(ctx, cfg, log)
	case docadmin.BackendName:
		return openDocument(cfg, log)
	case gormadmin.BackendName:
		return openGorm(ctx, cfg, log)
	}
	return nil, errors.Newf("unknown backend %q", cfg.Backend)
}

func openSQL(ctx context.Context, cfg *Config, log logger.Logger) (*session, error) {
	dialect, err := sqladmin.DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(sqlDriver(dialect), cfg.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", dialect.Name)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "connect %s", dialect.Name)
	}
	if dialect.Name == sqladmin.SQLite.Name {
		db.SetMaxOpenConns(1)
	}

	s, err := bind(sqladmin.New(db, sqladmin.WithDialect(dialect), sqladmin.WithLogger(log)), userTable, cfg, log)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.close = db.Close
	s.migrate = func(ctx context.Context) error {
		_, err := db.ExecContext(ctx, createUsers[dialect.Name])
		return errors.Wrap(err, "create users table")
	}
	return s, nil
}

func openDocument(cfg *Config, log logger.Logger) (*session, error) {
	db, err := docadmin.Open(cfg.Path)
	if err != nil {
		return nil, err
	}
	s, err := bind(docadmin.New(db, docadmin.WithLogger(log)), docadmin.MustDeclare[UserDocument](usersTable), cfg, log)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.close = db.Close
	s.migrate = func(context.Context) error { return nil }
	return s, nil
}

func openGorm(ctx context.Context, cfg *Config, log logger.Logger) (*session, error) {
	dialect, err := sqladmin.DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	var dialector gorm.Dialector
	switch dialect.Name {
	case sqladmin.Postgres.Name:
		dialector = postgres.Open(cfg.DSN)
	case sqladmin.MySQL.Name:
		dialector = mysql.Open(cfg.DSN)
	case sqladmin.SQLServer.Name:
		dialector = sqlserver.Open(cfg.DSN)
	default:
		return nil, errors.Newf("the gorm backend does not serve %s; use the %s backend", dialect.Name, sqladmin.BackendName)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logging.NewGormLogAdapter(log)})
	if err != nil {
		return nil, errors.Wrapf(err, "connect %s", dialect.Name)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "gorm connection pool")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, errors.Wrapf(err, "connect %s", dialect.Name)
	}
	s, err := bind(gormadmin.New(db, gormadmin.WithLogger(log)), &User{}, cfg, log)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	s.close = sqlDB.Close
	s.migrate = func(ctx context.Context) error {
		return errors.Wrap(db.WithContext(ctx).AutoMigrate(&User{}), "migrate users")
	}
	return s, nil
}

func bind(backend admin.Backend, candidate any, cfg *Config, log logger.Logger) (*session, error) {
	registry := admin.NewRegistry(backend)
	config := adminConfig(cfg, log)
	adapter, err := registry.Register(candidate, config)
	if err != nil {
		return nil, err
	}
	return &session{admin: adapter, registry: registry, config: config}, nil
}

// parseAssignments turns key=value pairs into a form submission. Repeated
// keys accumulate values.
func parseAssignments(pairs []string) (map[string][]string, error) {
	values := make(map[string][]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.Newf("expected key=value, got %q", pair)
		}
		values[key] = append(values[key], value)
	}
	return values, nil
}
