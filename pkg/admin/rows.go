package admin

import "context"

// RowSource yields listing rows. Lazy sources run their query on every call,
// so a source can be iterated more than once.
type RowSource interface {
	Rows(ctx context.Context) ([]any, error)
	// Materialized reports whether the rows were fetched eagerly.
	Materialized() bool
}

// Rows is an eagerly fetched RowSource.
type Rows []any

func (r Rows) Rows(context.Context) ([]any, error) {
	return append([]any(nil), r...), nil
}

func (Rows) Materialized() bool { return true }

// Query is a lazy RowSource backed by a fetch function.
type Query func(ctx context.Context) ([]any, error)

func (q Query) Rows(ctx context.Context) ([]any, error) {
	if q == nil {
		return nil, nil
	}
	return q(ctx)
}

func (Query) Materialized() bool { return false }

// Resolve returns q materialized when execute is set.
func Resolve(ctx context.Context, q Query, execute bool) (RowSource, error) {
	if !execute {
		return q, nil
	}
	rows, err := q.Rows(ctx)
	if err != nil {
		return nil, err
	}
	return Rows(rows), nil
}
