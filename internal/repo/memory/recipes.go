package memory

import (
	"context"
	"sort"

	"github.com/geocoder89/recipehub/internal/auth"
	"github.com/geocoder89/recipehub/internal/domain/cuisine"
	"github.com/geocoder89/recipehub/internal/domain/recipe"
	"github.com/geocoder89/recipehub/internal/domain/user"
)

type RecipesRepo struct {
	s *Store
}

// view fills the derived columns; must be called with mu held.
func (s *Store) view(rc recipe.Recipe) recipe.Recipe {
	rc.CuisineName = nil
	if rc.CuisineID != nil {
		if c, ok := s.cuisines[*rc.CuisineID]; ok {
			name := c.Name
			rc.CuisineName = &name
		}
	}

	var ratings []recipe.Rating
	for k, rt := range s.ratings {
		if k.a == rc.ID {
			ratings = append(ratings, rt)
		}
	}
	sum := recipe.Summarize(ratings)
	rc.AverageRating = sum.Average
	rc.TotalRatings = sum.Count

	return rc
}

func (r *RecipesRepo) List(_ context.Context, filter recipe.ListFilter) ([]recipe.Recipe, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []recipe.Recipe{}
	for _, rc := range r.s.recipes {
		if filter.UserID != nil && rc.UserID != *filter.UserID {
			continue
		}
		if filter.CuisineID != nil && (rc.CuisineID == nil || *rc.CuisineID != *filter.CuisineID) {
			continue
		}
		out = append(out, r.s.view(rc))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })

	return out, nil
}

func (r *RecipesRepo) Get(_ context.Context, id int64) (recipe.Recipe, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rc, ok := r.s.recipes[id]
	if !ok {
		return recipe.Recipe{}, recipe.ErrNotFound
	}

	return r.s.view(rc), nil
}

func (r *RecipesRepo) Create(_ context.Context, userID int64, req recipe.CreateRecipeRequest) (recipe.Recipe, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return recipe.Recipe{}, user.ErrNotFound
	}
	if req.CuisineID != nil {
		if _, ok := r.s.cuisines[*req.CuisineID]; !ok {
			return recipe.Recipe{}, cuisine.ErrNotFound
		}
	}

	now := r.s.now()
	rc := recipe.Recipe{
		ID:          r.s.next("recipes"),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		CuisineID:   req.CuisineID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.s.recipes[rc.ID] = rc

	return r.s.view(rc), nil
}

func (r *RecipesRepo) UpdateTitle(_ context.Context, id int64, title string) (recipe.Recipe, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rc, ok := r.s.recipes[id]
	if !ok {
		return recipe.Recipe{}, recipe.ErrNotFound
	}

	rc.Title = title
	rc.UpdatedAt = r.s.now()
	r.s.recipes[id] = rc

	return r.s.view(rc), nil
}

func (r *RecipesRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.recipes[id]; !ok {
		return recipe.ErrNotFound
	}

	r.s.deleteRecipe(id)
	return nil
}

type RatingsRepo struct {
	s *Store
}

func (r *RatingsRepo) Upsert(_ context.Context, recipeID, userID int64, req recipe.RatingRequest) (recipe.Rating, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.recipes[recipeID]; !ok {
		return recipe.Rating{}, recipe.ErrNotFound
	}
	if _, ok := r.s.users[userID]; !ok {
		return recipe.Rating{}, user.ErrNotFound
	}

	k := pair{recipeID, userID}
	now := r.s.now()

	rt, exists := r.s.ratings[k]
	if exists {
		rt.UpdatedAt = &now
	} else {
		rt = recipe.Rating{RecipeID: recipeID, UserID: userID, CreatedAt: now}
	}
	rt.Rating = req.Rating
	rt.Review = req.Review
	r.s.ratings[k] = rt

	return rt, nil
}

func (r *RatingsRepo) Update(_ context.Context, recipeID, userID int64, req recipe.RatingRequest) (recipe.Rating, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := pair{recipeID, userID}
	rt, ok := r.s.ratings[k]
	if !ok {
		return recipe.Rating{}, recipe.ErrRatingNotFound
	}

	now := r.s.now()
	rt.Rating = req.Rating
	rt.Review = req.Review
	rt.UpdatedAt = &now
	r.s.ratings[k] = rt

	return rt, nil
}

func (r *RatingsRepo) Delete(_ context.Context, recipeID, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := pair{recipeID, userID}
	if _, ok := r.s.ratings[k]; !ok {
		return recipe.ErrRatingNotFound
	}

	delete(r.s.ratings, k)
	return nil
}

func (r *RatingsRepo) ListForRecipe(_ context.Context, recipeID int64) ([]recipe.Rating, error) {
	return r.list(func(k pair) bool { return k.a == recipeID }), nil
}

func (r *RatingsRepo) ListByUser(_ context.Context, userID int64) ([]recipe.Rating, error) {
	return r.list(func(k pair) bool { return k.b == userID }), nil
}

func (r *RatingsRepo) list(match func(pair) bool) []recipe.Rating {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []recipe.Rating{}
	for k, rt := range r.s.ratings {
		if !match(k) {
			continue
		}
		rt.RecipeTitle = r.s.recipes[k.a].Title
		rt.Username = r.s.users[k.b].Username
		out = append(out, rt)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].RecipeID != out[j].RecipeID {
			return out[i].RecipeID < out[j].RecipeID
		}
		return out[i].UserID < out[j].UserID
	})

	return out
}

type FavoritesRepo struct {
	s *Store
}

func (r *FavoritesRepo) List(_ context.Context, userID int64) ([]recipe.Favorite, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []recipe.Favorite{}
	for k, at := range r.s.favorites {
		if k.a != userID {
			continue
		}
		rc, ok := r.s.recipes[k.b]
		if !ok {
			continue
		}
		out = append(out, recipe.Favorite{Recipe: r.s.view(rc), FavoritedAt: at})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *FavoritesRepo) Add(_ context.Context, userID, recipeID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return user.ErrNotFound
	}
	if _, ok := r.s.recipes[recipeID]; !ok {
		return recipe.ErrNotFound
	}

	k := pair{userID, recipeID}
	if _, ok := r.s.favorites[k]; ok {
		return recipe.ErrAlreadyFavorited
	}

	r.s.favorites[k] = r.s.now()
	return nil
}

func (r *FavoritesRepo) Remove(_ context.Context, userID, recipeID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := pair{userID, recipeID}
	if _, ok := r.s.favorites[k]; !ok {
		return recipe.ErrFavoriteNotFound
	}

	delete(r.s.favorites, k)
	return nil
}

func (r *FavoritesRepo) IsFavorited(_ context.Context, userID, recipeID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.favorites[pair{userID, recipeID}]
	return ok, nil
}

// OwnersRepo resolves owners for the authorizer.
type OwnersRepo struct {
	s *Store
}

func (r *OwnersRepo) OwnerOf(_ context.Context, res auth.Resource, id int64) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	switch res {
	case auth.Recipes:
		rc, ok := r.s.recipes[id]
		if !ok {
			return 0, auth.ErrResourceNotFound
		}
		return rc.UserID, nil
	default:
		return 0, auth.ErrResourceNotFound
	}
}
