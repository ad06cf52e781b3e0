package postgres

import (
	"errors"

	"github.com/geocoder89/recipehub/internal/domain/cuisine"
	"github.com/geocoder89/recipehub/internal/domain/recipe"
	"github.com/geocoder89/recipehub/internal/domain/user"
	"github.com/jackc/pgx/v5/pgconn"
)

// Observer times a store operation; *observability.Prom satisfies it.
type Observer interface {
	ObserveDB(op string, fn func() error) error
}

type base struct {
	obs Observer
}

func (b base) observe(op string, fn func() error) error {
	if b.obs == nil {
		return fn()
	}
	return b.obs.ObserveDB(op, fn)
}

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// uniqueViolation reports the violated constraint name for a 23505 error.
func uniqueViolation(err error) (string, bool) {
	pgErr, ok := pgError(err)
	if !ok || pgErr.Code != "23505" {
		return "", false
	}
	return pgErr.ConstraintName, true
}

// foreignKeyViolation reports the violated constraint name for a 23503 error.
func foreignKeyViolation(err error) (string, bool) {
	pgErr, ok := pgError(err)
	if !ok || pgErr.Code != "23503" {
		return "", false
	}
	return pgErr.ConstraintName, true
}

// referenceTargets names the row each foreign key points at.
var referenceTargets = map[string]error{
	"recipes_user_fk":          user.ErrNotFound,
	"recipes_cuisine_fk":       cuisine.ErrNotFound,
	"recipe_ratings_recipe_fk": recipe.ErrNotFound,
	"recipe_ratings_user_fk":   user.ErrNotFound,
	"user_favorites_user_fk":   user.ErrNotFound,
	"user_favorites_recipe_fk": recipe.ErrNotFound,
}

// missingReference turns a foreign key violation into the not-found error of
// the referenced row. It returns nil for anything else, including keys it
// does not know.
func missingReference(err error) error {
	constraint, ok := foreignKeyViolation(err)
	if !ok {
		return nil
	}
	return referenceTargets[constraint]
}
