package crdb

import (
	"context"
	"time"

	"github.com/adhilsalahh/package-booking/internal/domain"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (r *Repository) GetProfile(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	var p domain.Profile
	err := r.pool.QueryRow(ctx, `
		SELECT id, username, phone, role, created_at, updated_at FROM profiles WHERE id = $1
	`, id).Scan(&p.ID, &p.Username, &p.Phone, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("profile", id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "get profile")
	}
	return &p, nil
}

func (r *Repository) UpsertProfile(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	now := time.Now().UTC()
	out := p
	err := r.pool.QueryRow(ctx, `
		INSERT INTO profiles (id, username, phone, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (id) DO UPDATE SET username = excluded.username, phone = excluded.phone,
			role = excluded.role, updated_at = excluded.updated_at
		RETURNING created_at, updated_at
	`, p.ID, p.Username, p.Phone, p.Role, now).Scan(&out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "upsert profile")
	}
	return &out, nil
}

func (r *Repository) GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Profile, error) {
	out := make(map[uuid.UUID]domain.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, username, phone, role, created_at, updated_at FROM profiles WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "list profiles")
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.ID, &p.Username, &p.Phone, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scan profile")
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (r *Repository) CountProfiles(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM profiles`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count profiles")
	}
	return n, nil
}
