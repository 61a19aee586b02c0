package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqlgraph"
)

// ErrVersionConflict is returned by compare-and-swap updates whose
// expected version no longer matches the stored row.
var ErrVersionConflict = errors.New("version conflict")

// IsUniqueViolation reports whether err came from a unique index.
func IsUniqueViolation(err error) bool {
	return sqlgraph.IsUniqueConstraintError(err)
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repos groups all table accessors over a single querier. A Store's Repos
// use the pooled handle; InTx binds a fresh Repos to the transaction.
type Repos struct {
	q       querier
	dialect string
}

func (r *Repos) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.dialect)
}

func (r *Repos) exec(ctx context.Context, b entsql.Querier) (sql.Result, error) {
	query, args := b.Query()
	return r.q.ExecContext(ctx, query, args...)
}

func (r *Repos) query(ctx context.Context, b entsql.Querier) (*sql.Rows, error) {
	query, args := b.Query()
	return r.q.QueryContext(ctx, query, args...)
}

func (r *Repos) queryRow(ctx context.Context, b entsql.Querier) *sql.Row {
	query, args := b.Query()
	return r.q.QueryRowContext(ctx, query, args...)
}

// Timestamps are stored as unix milliseconds.
func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
