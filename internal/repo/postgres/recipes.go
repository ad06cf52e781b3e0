package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/recipehub/internal/domain/recipe"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const recipeSelect = `
	SELECT r.recipe_id,
		r.user_id,
		r.title,
		r.description,
		r.image_url,
		r.cuisine_id,
		c.name,
		COALESCE(ROUND(AVG(rr.rating), 1), 0)::float8,
		COUNT(rr.rating),
		r.created_at,
		r.updated_at
	FROM recipes r
	LEFT JOIN cuisines c ON c.cuisine_id = r.cuisine_id
	LEFT JOIN recipe_ratings rr ON rr.recipe_id = r.recipe_id
`

const recipeGroupBy = ` GROUP BY r.recipe_id, c.name`

type RecipesRepo struct {
	base
	pool *pgxpool.Pool
}

func NewRecipesRepo(pool *pgxpool.Pool, obs Observer) *RecipesRepo {
	return &RecipesRepo{base: base{obs: obs}, pool: pool}
}

func scanRecipe(row pgx.Row) (recipe.Recipe, error) {
	var rc recipe.Recipe

	err := row.Scan(
		&rc.ID,
		&rc.UserID,
		&rc.Title,
		&rc.Description,
		&rc.ImageURL,
		&rc.CuisineID,
		&rc.CuisineName,
		&rc.AverageRating,
		&rc.TotalRatings,
		&rc.CreatedAt,
		&rc.UpdatedAt,
	)

	return rc, err
}

func (r *RecipesRepo) List(ctx context.Context, filter recipe.ListFilter) ([]recipe.Recipe, error) {
	var conds []string
	var args []any

	argsPosition := 1

	if filter.UserID != nil {
		conds = append(conds, fmt.Sprintf("r.user_id = $%d", argsPosition))
		args = append(args, *filter.UserID)
		argsPosition++
	}

	if filter.CuisineID != nil {
		conds = append(conds, fmt.Sprintf("r.cuisine_id = $%d", argsPosition))
		args = append(args, *filter.CuisineID)
	}

	query := recipeSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += recipeGroupBy + " ORDER BY r.created_at DESC, r.recipe_id DESC"

	out := []recipe.Recipe{}

	err := r.observe("recipes.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			rc, err := scanRecipe(rows)
			if err != nil {
				return err
			}
			out = append(out, rc)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *RecipesRepo) Get(ctx context.Context, id int64) (recipe.Recipe, error) {
	var rc recipe.Recipe

	err := r.observe("recipes.get", func() error {
		var err error
		rc, err = scanRecipe(r.pool.QueryRow(ctx, recipeSelect+` WHERE r.recipe_id = $1`+recipeGroupBy, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return recipe.Recipe{}, recipe.ErrNotFound
		}
		return recipe.Recipe{}, err
	}

	return rc, nil
}

func (r *RecipesRepo) Create(ctx context.Context, userID int64, req recipe.CreateRecipeRequest) (recipe.Recipe, error) {
	var id int64

	err := r.observe("recipes.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO recipes (user_id, title, description, image_url, cuisine_id)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING recipe_id`,
			userID, req.Title, req.Description, req.ImageURL, req.CuisineID,
		).Scan(&id)
	})

	if err != nil {
		if missing := missingReference(err); missing != nil {
			return recipe.Recipe{}, missing
		}
		return recipe.Recipe{}, err
	}

	return r.Get(ctx, id)
}

// UpdateTitle returns recipe.ErrNotFound when no row matched, which covers a
// recipe deleted between the ownership check and the write.
func (r *RecipesRepo) UpdateTitle(ctx context.Context, id int64, title string) (recipe.Recipe, error) {
	var affected int64

	err := r.observe("recipes.update_title", func() error {
		tag, err := r.pool.Exec(ctx, `UPDATE recipes SET title = $2, updated_at = NOW() WHERE recipe_id = $1`, id, title)
		affected = tag.RowsAffected()
		return err
	})

	if err != nil {
		return recipe.Recipe{}, err
	}

	if affected == 0 {
		return recipe.Recipe{}, recipe.ErrNotFound
	}

	return r.Get(ctx, id)
}

func (r *RecipesRepo) Delete(ctx context.Context, id int64) error {
	var affected int64

	err := r.observe("recipes.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM recipes WHERE recipe_id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return recipe.ErrNotFound
	}

	return nil
}
