package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/recipehub/internal/domain/recipe"
	"github.com/gin-gonic/gin"
)

type RatingStore interface {
	Upsert(ctx context.Context, recipeID, userID int64, req recipe.RatingRequest) (recipe.Rating, error)
	Update(ctx context.Context, recipeID, userID int64, req recipe.RatingRequest) (recipe.Rating, error)
	Delete(ctx context.Context, recipeID, userID int64) error
	ListForRecipe(ctx context.Context, recipeID int64) ([]recipe.Rating, error)
}

type RecipeGetter interface {
	Get(ctx context.Context, id int64) (recipe.Recipe, error)
}

// RatingsHandler manages the caller's own rating of a recipe. A rating is
// keyed by (recipe, caller), so no ownership lookup is involved.
type RatingsHandler struct {
	ratings RatingStore
	recipes RecipeGetter
}

func NewRatingsHandler(ratings RatingStore, recipes RecipeGetter) *RatingsHandler {
	return &RatingsHandler{ratings: ratings, recipes: recipes}
}

func (h *RatingsHandler) RateRecipe(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	recipeID, ok := ParseID(ctx, "id")
	if !ok {
		return
	}

	var req recipe.RatingRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx, 2*time.Second)
	defer cancel()

	rt, err := h.ratings.Upsert(cctx, recipeID, p.UserID, req)

	if err != nil {
		respondStoreError(ctx, err, "Could not save rating")
		return
	}

	RespondOK(ctx, http.StatusCreated, "Rating saved successfully", rt)
}

func (h *RatingsHandler) UpdateRating(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	recipeID, ok := ParseID(ctx, "id")
	if !ok {
		return
	}

	var req recipe.RatingRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx, 2*time.Second)
	defer cancel()

	rt, err := h.ratings.Update(cctx, recipeID, p.UserID, req)

	if err != nil {
		respondStoreError(ctx, err, "Could not update rating")
		return
	}

	RespondOK(ctx, http.StatusOK, "Rating updated successfully", rt)
}

func (h *RatingsHandler) DeleteRating(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	recipeID, ok := ParseID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := requestContext(ctx, 2*time.Second)
	defer cancel()

	if err := h.ratings.Delete(cctx, recipeID, p.UserID); err != nil {
		respondStoreError(ctx, err, "Could not delete rating")
		return
	}

	RespondOK(ctx, http.StatusOK, "Rating deleted successfully", nil)
}

func (h *RatingsHandler) ListRatings(ctx *gin.Context) {
	recipeID, ok := ParseID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := requestContext(ctx, 2*time.Second)
	defer cancel()

	if _, err := h.recipes.Get(cctx, recipeID); err != nil {
		respondStoreError(ctx, err, "Could not list ratings")
		return
	}

	ratings, err := h.ratings.ListForRecipe(cctx, recipeID)

	if err != nil {
		respondStoreError(ctx, err, "Could not list ratings")
		return
	}

	RespondOK(ctx, http.StatusOK, "", recipe.Summarize(ratings))
}
