package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/recipehub/internal/domain/cuisine"
	"github.com/geocoder89/recipehub/internal/domain/ingredient"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CuisinesRepo struct {
	base
	pool *pgxpool.Pool
}

func NewCuisinesRepo(pool *pgxpool.Pool, obs Observer) *CuisinesRepo {
	return &CuisinesRepo{base: base{obs: obs}, pool: pool}
}

func (r *CuisinesRepo) List(ctx context.Context) ([]cuisine.Cuisine, error) {
	out := []cuisine.Cuisine{}

	err := r.observe("cuisines.list", func() error {
		rows, err := r.pool.Query(ctx, `SELECT cuisine_id, name, description, created_at FROM cuisines ORDER BY name`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var c cuisine.Cuisine
			if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
				return err
			}
			out = append(out, c)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *CuisinesRepo) Get(ctx context.Context, id int64) (cuisine.Cuisine, error) {
	var c cuisine.Cuisine

	err := r.observe("cuisines.get", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT cuisine_id, name, description, created_at FROM cuisines WHERE cuisine_id = $1`, id,
		).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	})

	return c, mapCuisineErr(err)
}

func (r *CuisinesRepo) Create(ctx context.Context, req cuisine.UpsertCuisineRequest) (cuisine.Cuisine, error) {
	c := cuisine.Cuisine{Name: req.Name, Description: req.Description}

	err := r.observe("cuisines.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO cuisines (name, description) VALUES ($1, $2) RETURNING cuisine_id, created_at`,
			req.Name, req.Description,
		).Scan(&c.ID, &c.CreatedAt)
	})

	if err != nil {
		return cuisine.Cuisine{}, mapCuisineErr(err)
	}

	return c, nil
}

func (r *CuisinesRepo) Update(ctx context.Context, id int64, req cuisine.UpsertCuisineRequest) (cuisine.Cuisine, error) {
	c := cuisine.Cuisine{ID: id, Name: req.Name, Description: req.Description}

	err := r.observe("cuisines.update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE cuisines SET name = $2, description = $3 WHERE cuisine_id = $1 RETURNING created_at`,
			id, req.Name, req.Description,
		).Scan(&c.CreatedAt)
	})

	if err != nil {
		return cuisine.Cuisine{}, mapCuisineErr(err)
	}

	return c, nil
}

func (r *CuisinesRepo) Delete(ctx context.Context, id int64) error {
	var affected int64

	err := r.observe("cuisines.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM cuisines WHERE cuisine_id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return cuisine.ErrNotFound
	}

	return nil
}

func mapCuisineErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return cuisine.ErrNotFound
	}

	if _, ok := uniqueViolation(err); ok {
		return cuisine.ErrNameTaken
	}

	return err
}

type IngredientsRepo struct {
	base
	pool *pgxpool.Pool
}

func NewIngredientsRepo(pool *pgxpool.Pool, obs Observer) *IngredientsRepo {
	return &IngredientsRepo{base: base{obs: obs}, pool: pool}
}

func (r *IngredientsRepo) List(ctx context.Context) ([]ingredient.Ingredient, error) {
	out := []ingredient.Ingredient{}

	err := r.observe("ingredients.list", func() error {
		rows, err := r.pool.Query(ctx, `SELECT ingredient_id, name, unit, created_at FROM ingredients ORDER BY name`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var in ingredient.Ingredient
			if err := rows.Scan(&in.ID, &in.Name, &in.Unit, &in.CreatedAt); err != nil {
				return err
			}
			out = append(out, in)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *IngredientsRepo) Get(ctx context.Context, id int64) (ingredient.Ingredient, error) {
	var in ingredient.Ingredient

	err := r.observe("ingredients.get", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT ingredient_id, name, unit, created_at FROM ingredients WHERE ingredient_id = $1`, id,
		).Scan(&in.ID, &in.Name, &in.Unit, &in.CreatedAt)
	})

	return in, mapIngredientErr(err)
}

func (r *IngredientsRepo) Create(ctx context.Context, req ingredient.UpsertIngredientRequest) (ingredient.Ingredient, error) {
	in := ingredient.Ingredient{Name: req.Name, Unit: req.Unit}

	err := r.observe("ingredients.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO ingredients (name, unit) VALUES ($1, $2) RETURNING ingredient_id, created_at`,
			req.Name, req.Unit,
		).Scan(&in.ID, &in.CreatedAt)
	})

	if err != nil {
		return ingredient.Ingredient{}, mapIngredientErr(err)
	}

	return in, nil
}

func (r *IngredientsRepo) Update(ctx context.Context, id int64, req ingredient.UpsertIngredientRequest) (ingredient.Ingredient, error) {
	in := ingredient.Ingredient{ID: id, Name: req.Name, Unit: req.Unit}

	err := r.observe("ingredients.update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE ingredients SET name = $2, unit = $3 WHERE ingredient_id = $1 RETURNING created_at`,
			id, req.Name, req.Unit,
		).Scan(&in.CreatedAt)
	})

	if err != nil {
		return ingredient.Ingredient{}, mapIngredientErr(err)
	}

	return in, nil
}

func (r *IngredientsRepo) Delete(ctx context.Context, id int64) error {
	var affected int64

	err := r.observe("ingredients.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM ingredients WHERE ingredient_id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return ingredient.ErrNotFound
	}

	return nil
}

func mapIngredientErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return ingredient.ErrNotFound
	}

	if _, ok := uniqueViolation(err); ok {
		return ingredient.ErrNameTaken
	}

	return err
}
