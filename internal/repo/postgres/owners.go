package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/recipehub/internal/auth"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OwnersRepo answers ownership lookups for the authorizer.
type OwnersRepo struct {
	base
	pool *pgxpool.Pool
}

func NewOwnersRepo(pool *pgxpool.Pool, obs Observer) *OwnersRepo {
	return &OwnersRepo{base: base{obs: obs}, pool: pool}
}

func (r *OwnersRepo) OwnerOf(ctx context.Context, res auth.Resource, id int64) (int64, error) {
	if res.Table == "" || res.IDColumn == "" {
		return 0, fmt.Errorf("owner lookup: resource %q has no table", res.Name)
	}

	query := fmt.Sprintf(`SELECT user_id FROM %s WHERE %s = $1`,
		pgx.Identifier{res.Table}.Sanitize(),
		pgx.Identifier{res.IDColumn}.Sanitize(),
	)

	var owner int64

	err := r.observe(res.Name+".owner_of", func() error {
		return r.pool.QueryRow(ctx, query, id).Scan(&owner)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, auth.ErrResourceNotFound
		}
		return 0, err
	}

	return owner, nil
}
