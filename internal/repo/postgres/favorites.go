package postgres

import (
	"context"

	"github.com/geocoder89/recipehub/internal/domain/recipe"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FavoritesRepo struct {
	base
	pool *pgxpool.Pool
}

func NewFavoritesRepo(pool *pgxpool.Pool, obs Observer) *FavoritesRepo {
	return &FavoritesRepo{base: base{obs: obs}, pool: pool}
}

func (r *FavoritesRepo) List(ctx context.Context, userID int64) ([]recipe.Favorite, error) {
	out := []recipe.Favorite{}

	err := r.observe("favorites.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT r.recipe_id, r.user_id, r.title, r.description, r.image_url, r.cuisine_id, c.name,
				COALESCE(ROUND(AVG(rr.rating), 1), 0)::float8, COUNT(rr.rating), r.created_at, r.updated_at, f.added_at
			 FROM user_favorites f
			 JOIN recipes r ON r.recipe_id = f.recipe_id
			 LEFT JOIN cuisines c ON c.cuisine_id = r.cuisine_id
			 LEFT JOIN recipe_ratings rr ON rr.recipe_id = r.recipe_id
			 WHERE f.user_id = $1
			 GROUP BY r.recipe_id, c.name, f.added_at
			 ORDER BY f.added_at DESC`,
			userID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var f recipe.Favorite
			err := rows.Scan(
				&f.ID, &f.UserID, &f.Title, &f.Description, &f.ImageURL, &f.CuisineID, &f.CuisineName,
				&f.AverageRating, &f.TotalRatings, &f.CreatedAt, &f.UpdatedAt, &f.FavoritedAt,
			)
			if err != nil {
				return err
			}
			out = append(out, f)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *FavoritesRepo) Add(ctx context.Context, userID, recipeID int64) error {
	err := r.observe("favorites.add", func() error {
		_, err := r.pool.Exec(ctx, `INSERT INTO user_favorites (user_id, recipe_id) VALUES ($1, $2)`, userID, recipeID)
		return err
	})

	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return recipe.ErrAlreadyFavorited
		}
		if missing := missingReference(err); missing != nil {
			return missing
		}
		return err
	}

	return nil
}

func (r *FavoritesRepo) Remove(ctx context.Context, userID, recipeID int64) error {
	var affected int64

	err := r.observe("favorites.remove", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM user_favorites WHERE user_id = $1 AND recipe_id = $2`, userID, recipeID)
		affected = tag.RowsAffected()
		return err
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return recipe.ErrFavoriteNotFound
	}

	return nil
}

func (r *FavoritesRepo) IsFavorited(ctx context.Context, userID, recipeID int64) (bool, error) {
	var ok bool

	err := r.observe("favorites.exists", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM user_favorites WHERE user_id = $1 AND recipe_id = $2)`,
			userID, recipeID,
		).Scan(&ok)
	})

	return ok, err
}
