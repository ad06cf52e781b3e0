package memory

import (
	"context"
	"sort"

	"github.com/geocoder89/recipehub/internal/domain/cuisine"
	"github.com/geocoder89/recipehub/internal/domain/ingredient"
)

type CuisinesRepo struct {
	s *Store
}

func (r *CuisinesRepo) List(_ context.Context) ([]cuisine.Cuisine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []cuisine.Cuisine{}
	for _, c := range r.s.cuisines {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

func (r *CuisinesRepo) Get(_ context.Context, id int64) (cuisine.Cuisine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.cuisines[id]
	if !ok {
		return cuisine.Cuisine{}, cuisine.ErrNotFound
	}
	return c, nil
}

// nameTaken must be called with mu held.
func (r *CuisinesRepo) nameTaken(selfID int64, name string) bool {
	for id, c := range r.s.cuisines {
		if id != selfID && c.Name == name {
			return true
		}
	}
	return false
}

func (r *CuisinesRepo) Create(_ context.Context, req cuisine.UpsertCuisineRequest) (cuisine.Cuisine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.nameTaken(0, req.Name) {
		return cuisine.Cuisine{}, cuisine.ErrNameTaken
	}

	c := cuisine.Cuisine{
		ID:          r.s.next("cuisines"),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   r.s.now(),
	}
	r.s.cuisines[c.ID] = c

	return c, nil
}

func (r *CuisinesRepo) Update(_ context.Context, id int64, req cuisine.UpsertCuisineRequest) (cuisine.Cuisine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.cuisines[id]
	if !ok {
		return cuisine.Cuisine{}, cuisine.ErrNotFound
	}

	if r.nameTaken(id, req.Name) {
		return cuisine.Cuisine{}, cuisine.ErrNameTaken
	}

	c.Name = req.Name
	c.Description = req.Description
	r.s.cuisines[id] = c

	return c, nil
}

func (r *CuisinesRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.cuisines[id]; !ok {
		return cuisine.ErrNotFound
	}

	delete(r.s.cuisines, id)

	for rid, rc := range r.s.recipes {
		if rc.CuisineID != nil && *rc.CuisineID == id {
			rc.CuisineID = nil
			r.s.recipes[rid] = rc
		}
	}

	return nil
}

type IngredientsRepo struct {
	s *Store
}

func (r *IngredientsRepo) List(_ context.Context) ([]ingredient.Ingredient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []ingredient.Ingredient{}
	for _, in := range r.s.ingredients {
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

func (r *IngredientsRepo) Get(_ context.Context, id int64) (ingredient.Ingredient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	in, ok := r.s.ingredients[id]
	if !ok {
		return ingredient.Ingredient{}, ingredient.ErrNotFound
	}
	return in, nil
}

// nameTaken must be called with mu held.
func (r *IngredientsRepo) nameTaken(selfID int64, name string) bool {
	for id, in := range r.s.ingredients {
		if id != selfID && in.Name == name {
			return true
		}
	}
	return false
}

func (r *IngredientsRepo) Create(_ context.Context, req ingredient.UpsertIngredientRequest) (ingredient.Ingredient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.nameTaken(0, req.Name) {
		return ingredient.Ingredient{}, ingredient.ErrNameTaken
	}

	in := ingredient.Ingredient{
		ID:        r.s.next("ingredients"),
		Name:      req.Name,
		Unit:      req.Unit,
		CreatedAt: r.s.now(),
	}
	r.s.ingredients[in.ID] = in

	return in, nil
}

func (r *IngredientsRepo) Update(_ context.Context, id int64, req ingredient.UpsertIngredientRequest) (ingredient.Ingredient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	in, ok := r.s.ingredients[id]
	if !ok {
		return ingredient.Ingredient{}, ingredient.ErrNotFound
	}

	if r.nameTaken(id, req.Name) {
		return ingredient.Ingredient{}, ingredient.ErrNameTaken
	}

	in.Name = req.Name
	in.Unit = req.Unit
	r.s.ingredients[id] = in

	return in, nil
}

func (r *IngredientsRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.ingredients[id]; !ok {
		return ingredient.ErrNotFound
	}

	delete(r.s.ingredients, id)
	return nil
}
