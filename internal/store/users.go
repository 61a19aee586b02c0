package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var userColumns = []string{"id", "display_name", "tier", "created_at", "updated_at"}

// UpsertUser creates the user or updates its display name and tier.
func (r *Repos) UpsertUser(ctx context.Context, u User) error {
	now := toMillis(time.Now())
	if u.Tier == "" {
		u.Tier = TierNone
	}

	ins := r.builder().Insert(TableUsers).
		Columns(userColumns...).
		Values(u.ID, u.DisplayName, string(u.Tier), now, now).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWith(func(s *entsql.UpdateSet) {
				s.SetExcluded("tier")
				s.SetExcluded("updated_at")
				if u.DisplayName != "" {
					s.SetExcluded("display_name")
				}
			}),
		)
	if _, err := r.exec(ctx, ins); err != nil {
		return fmt.Errorf("upsert user %s: %w", u.ID, err)
	}
	return nil
}

// GetUser returns the user, or nil if it does not exist.
func (r *Repos) GetUser(ctx context.Context, id string) (*User, error) {
	sel := r.builder().Select(userColumns...).
		From(r.builder().Table(TableUsers)).
		Where(entsql.EQ("id", id))

	var (
		u                    User
		tier                 string
		createdAt, updatedAt int64
	)
	err := r.queryRow(ctx, sel).Scan(&u.ID, &u.DisplayName, &tier, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}

	u.Tier = Tier(tier)
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return &u, nil
}
