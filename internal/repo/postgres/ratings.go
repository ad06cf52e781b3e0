package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/recipehub/internal/domain/recipe"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RatingsRepo struct {
	base
	pool *pgxpool.Pool
}

func NewRatingsRepo(pool *pgxpool.Pool, obs Observer) *RatingsRepo {
	return &RatingsRepo{base: base{obs: obs}, pool: pool}
}

// Upsert keeps a single rating per user and recipe.
func (r *RatingsRepo) Upsert(ctx context.Context, recipeID, userID int64, req recipe.RatingRequest) (recipe.Rating, error) {
	rt := recipe.Rating{RecipeID: recipeID, UserID: userID}

	err := r.observe("ratings.upsert", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO recipe_ratings (recipe_id, user_id, rating, review_text)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (recipe_id, user_id)
			 DO UPDATE SET rating = EXCLUDED.rating, review_text = EXCLUDED.review_text, updated_at = NOW()
			 RETURNING rating, review_text, created_at, updated_at`,
			recipeID, userID, req.Rating, req.Review,
		).Scan(&rt.Rating, &rt.Review, &rt.CreatedAt, &rt.UpdatedAt)
	})

	if err != nil {
		if missing := missingReference(err); missing != nil {
			return recipe.Rating{}, missing
		}
		return recipe.Rating{}, err
	}

	return rt, nil
}

func (r *RatingsRepo) Update(ctx context.Context, recipeID, userID int64, req recipe.RatingRequest) (recipe.Rating, error) {
	rt := recipe.Rating{RecipeID: recipeID, UserID: userID}

	err := r.observe("ratings.update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE recipe_ratings
			 SET rating = $3, review_text = $4, updated_at = NOW()
			 WHERE recipe_id = $1 AND user_id = $2
			 RETURNING rating, review_text, created_at, updated_at`,
			recipeID, userID, req.Rating, req.Review,
		).Scan(&rt.Rating, &rt.Review, &rt.CreatedAt, &rt.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return recipe.Rating{}, recipe.ErrRatingNotFound
		}
		return recipe.Rating{}, err
	}

	return rt, nil
}

func (r *RatingsRepo) Delete(ctx context.Context, recipeID, userID int64) error {
	var affected int64

	err := r.observe("ratings.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM recipe_ratings WHERE recipe_id = $1 AND user_id = $2`, recipeID, userID)
		affected = tag.RowsAffected()
		return err
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return recipe.ErrRatingNotFound
	}

	return nil
}

func (r *RatingsRepo) ListForRecipe(ctx context.Context, recipeID int64) ([]recipe.Rating, error) {
	return r.list(ctx, "ratings.list_for_recipe", `rr.recipe_id = $1`, recipeID)
}

func (r *RatingsRepo) ListByUser(ctx context.Context, userID int64) ([]recipe.Rating, error) {
	return r.list(ctx, "ratings.list_by_user", `rr.user_id = $1`, userID)
}

func (r *RatingsRepo) list(ctx context.Context, op, where string, arg int64) ([]recipe.Rating, error) {
	out := []recipe.Rating{}

	err := r.observe(op, func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT rr.recipe_id, rc.title, rr.user_id, u.username, rr.rating, rr.review_text, rr.created_at, rr.updated_at
			 FROM recipe_ratings rr
			 JOIN recipes rc ON rc.recipe_id = rr.recipe_id
			 JOIN users u ON u.user_id = rr.user_id
			 WHERE `+where+`
			 ORDER BY rr.created_at DESC`,
			arg,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var rt recipe.Rating
			if err := rows.Scan(&rt.RecipeID, &rt.RecipeTitle, &rt.UserID, &rt.Username, &rt.Rating, &rt.Review, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
				return err
			}
			out = append(out, rt)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}
