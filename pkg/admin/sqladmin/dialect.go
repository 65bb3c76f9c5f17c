package sqladmin

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/lib/pq"

	"github.com/goliatone/go-modeladmin/pkg/admin"
)

// Dialect captures the SQL differences between the supported databases:
// placeholder style, identifier quoting, pagination and how generated keys
// come back from an INSERT.
type Dialect struct {
	Name string

	placeholder func(n int) string
	quote       func(ident string) string
	// keyClause is "returning" for INSERT ... RETURNING, "output" for
	// INSERT ... OUTPUT INSERTED, empty for LastInsertId.
	keyClause string
	// orderedPaging requires an ORDER BY before a page window.
	orderedPaging bool
}

var (
	SQLite = Dialect{
		Name:        "sqlite",
		placeholder: func(int) string { return "?" },
		quote:       doubleQuote,
	}
	Postgres = Dialect{
		Name:        "postgres",
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		quote:       pq.QuoteIdentifier,
		keyClause:   "returning",
	}
	MySQL = Dialect{
		Name:        "mysql",
		placeholder: func(int) string { return "?" },
		quote: func(ident string) string {
			return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
		},
	}
	SQLServer = Dialect{
		Name:        "sqlserver",
		placeholder: func(n int) string { return "@p" + strconv.Itoa(n) },
		quote: func(ident string) string {
			return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
		},
		keyClause:     "output",
		orderedPaging: true,
	}
)

// DialectFor resolves a dialect by name or driver alias.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pq", "pgx":
		return Postgres, nil
	case "mysql", "mariadb":
		return MySQL, nil
	case "sqlserver", "mssql":
		return SQLServer, nil
	}
	return Dialect{}, errors.Newf("sqladmin: unknown dialect %q", name)
}

func doubleQuote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// builder accumulates a statement and its arguments, numbering placeholders
// as they are added.
type builder struct {
	dialect Dialect
	sb      strings.Builder
	args    []any
}

func (b *builder) write(parts ...string) *builder {
	for _, part := range parts {
		b.sb.WriteString(part)
	}
	return b
}

func (b *builder) ident(name string) *builder {
	b.sb.WriteString(b.dialect.quote(name))
	return b
}

func (b *builder) idents(names []string) *builder {
	for i, name := range names {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.ident(name)
	}
	return b
}

func (b *builder) arg(value any) *builder {
	b.args = append(b.args, value)
	b.sb.WriteString(b.dialect.placeholder(len(b.args)))
	return b
}

func (b *builder) argList(values []any) *builder {
	b.sb.WriteString("(")
	for i, value := range values {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.arg(value)
	}
	b.sb.WriteString(")")
	return b
}

// page appends the window. Dialects that page with OFFSET ... FETCH need an
// ORDER BY, so fallback is used when the statement has none.
func (b *builder) page(w admin.Window, ordered bool, fallback string) *builder {
	if !w.Paginated {
		return b
	}
	if b.dialect.orderedPaging {
		if !ordered {
			b.write(" ORDER BY ").ident(fallback)
		}
		return b.write(" OFFSET ", strconv.Itoa(w.Offset), " ROWS FETCH NEXT ", strconv.Itoa(w.Limit), " ROWS ONLY")
	}
	return b.write(" LIMIT ", strconv.Itoa(w.Limit), " OFFSET ", strconv.Itoa(w.Offset))
}

func (b *builder) String() string {
	return b.sb.String()
}
