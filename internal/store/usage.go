package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var usageColumnNames = []string{
	"id", "user_id", "purpose", "provider", "model", "input_tokens", "output_tokens",
	"cost_cents", "latency_ms", "success", "error_message", "created_at",
}

// InsertUsage appends a usage record.
func (r *Repos) InsertUsage(ctx context.Context, rec *UsageRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	ins := r.builder().Insert(TableUsageRecords).
		Columns(usageColumnNames...).
		Values(
			rec.ID, rec.UserID, rec.Purpose, rec.Provider, rec.Model, rec.InputTokens, rec.OutputTokens,
			rec.CostCents, rec.LatencyMs, rec.Success, rec.ErrorMessage, toMillis(rec.CreatedAt),
		)
	if _, err := r.exec(ctx, ins); err != nil {
		return fmt.Errorf("insert usage record: %w", err)
	}
	return nil
}

// UsageSince sums a user's usage records created at or after since.
func (r *Repos) UsageSince(ctx context.Context, userID string, since time.Time) (UsageTotals, error) {
	sel := r.builder().Select(
		entsql.Count("*"),
		entsql.Sum("cost_cents"),
		entsql.Sum("input_tokens"),
		entsql.Sum("output_tokens"),
	).
		From(r.builder().Table(TableUsageRecords)).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.GTE("created_at", toMillis(since)),
		))

	var (
		t             UsageTotals
		cost, in, out sql.NullInt64
	)
	if err := r.queryRow(ctx, sel).Scan(&t.Calls, &cost, &in, &out); err != nil {
		return UsageTotals{}, fmt.Errorf("sum usage: %w", err)
	}
	t.CostCents = cost.Int64
	t.InputTokens = in.Int64
	t.OutputTokens = out.Int64
	return t, nil
}

// RecentUsage returns a user's latest usage records, newest first.
func (r *Repos) RecentUsage(ctx context.Context, userID string, limit int) ([]UsageRecord, error) {
	sel := r.builder().Select(usageColumnNames...).
		From(r.builder().Table(TableUsageRecords)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("created_at"))
	if limit > 0 {
		sel.Limit(limit)
	}

	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}
	defer rows.Close()

	var recs []UsageRecord
	for rows.Next() {
		var (
			rec       UsageRecord
			createdAt int64
		)
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.Purpose, &rec.Provider, &rec.Model, &rec.InputTokens,
			&rec.OutputTokens, &rec.CostCents, &rec.LatencyMs, &rec.Success, &rec.ErrorMessage, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan usage record: %w", err)
		}
		rec.CreatedAt = fromMillis(createdAt)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
