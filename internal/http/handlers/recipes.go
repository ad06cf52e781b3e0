package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/recipehub/internal/actorctx"
	"github.com/geocoder89/recipehub/internal/domain/recipe"
	"github.com/gin-gonic/gin"
)

type RecipeStore interface {
	List(ctx context.Context, filter recipe.ListFilter) ([]recipe.Recipe, error)
	Get(ctx context.Context, id int64) (recipe.Recipe, error)
	Create(ctx context.Context, userID int64, req recipe.CreateRecipeRequest) (recipe.Recipe, error)
	UpdateTitle(ctx context.Context, id int64, title string) (recipe.Recipe, error)
	Delete(ctx context.Context, id int64) error
}

type FavoriteChecker interface {
	IsFavorited(ctx context.Context, userID, recipeID int64) (bool, error)
}

type RecipesHandler struct {
	recipes   RecipeStore
	favorites FavoriteChecker
}

func NewRecipesHandler(recipes RecipeStore, favorites FavoriteChecker) *RecipesHandler {
	return &RecipesHandler{recipes: recipes, favorites: favorites}
}

type recipeView struct {
	recipe.Recipe
	Favorited *bool `json:"favorited,omitempty"`
}

func (h *RecipesHandler) ListRecipes(ctx *gin.Context) {
	var filter recipe.ListFilter

	if raw := ctx.Query("cuisine_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			RespondBadRequest(ctx, "Invalid cuisine_id", nil)
			return
		}
		filter.CuisineID = &id
	}

	h.list(ctx, filter)
}

func (h *RecipesHandler) ListMine(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	h.list(ctx, recipe.ListFilter{UserID: &p.UserID})
}

func (h *RecipesHandler) list(ctx *gin.Context, filter recipe.ListFilter) {
	cctx, cancel := requestContext(ctx, 3*time.Second)
	defer cancel()

	items, err := h.recipes.List(cctx, filter)

	if err != nil {
		respondStoreError(ctx, err, "Could not list recipes")
		return
	}

	RespondOK(ctx, http.StatusOK, "", gin.H{
		"items": items,
		"count": len(items),
	})
}

// GetRecipe runs under optional auth; authenticated callers also learn
// whether the recipe is in their favorites.
func (h *RecipesHandler) GetRecipe(ctx *gin.Context) {
	id, ok := ParseID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := requestContext(ctx, 2*time.Second)
	defer cancel()

	rc, err := h.recipes.Get(cctx, id)

	if err != nil {
		respondStoreError(ctx, err, "Could not fetch recipe")
		return
	}

	view := recipeView{Recipe: rc}

	if p, ok := actorctx.PrincipalFrom(ctx.Request.Context()); ok && h.favorites != nil {
		fav, err := h.favorites.IsFavorited(cctx, p.UserID, id)
		if err != nil {
			respondStoreError(ctx, err, "Could not fetch recipe")
			return
		}
		view.Favorited = &fav
	}

	RespondOK(ctx, http.StatusOK, "", view)
}

func (h *RecipesHandler) CreateRecipe(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	var req recipe.CreateRecipeRequest

	if !BindJSON(ctx, &req) {
		return
	}

	req.Title = strings.TrimSpace(req.Title)

	cctx, cancel := requestContext(ctx, 3*time.Second)
	defer cancel()

	rc, err := h.recipes.Create(cctx, p.UserID, req)

	if err != nil {
		respondStoreError(ctx, err, "Could not create recipe")
		return
	}

	RespondOK(ctx, http.StatusCreated, "Recipe created successfully", rc)
}

// UpdateTitle is mounted behind RequireOwnership. A row deleted since that
// check surfaces as 404 from the store.
func (h *RecipesHandler) UpdateTitle(ctx *gin.Context) {
	id, ok := ParseID(ctx, "id")
	if !ok {
		return
	}

	var req recipe.UpdateTitleRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx, 3*time.Second)
	defer cancel()

	rc, err := h.recipes.UpdateTitle(cctx, id, strings.TrimSpace(req.Title))

	if err != nil {
		respondStoreError(ctx, err, "Could not update recipe")
		return
	}

	RespondOK(ctx, http.StatusOK, "Recipe title updated successfully", rc)
}

// DeleteRecipe is mounted behind RequireOwnership.
func (h *RecipesHandler) DeleteRecipe(ctx *gin.Context) {
	id, ok := ParseID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := requestContext(ctx, 3*time.Second)
	defer cancel()

	if err := h.recipes.Delete(cctx, id); err != nil {
		respondStoreError(ctx, err, "Could not delete recipe")
		return
	}

	RespondOK(ctx, http.StatusOK, "Recipe deleted successfully", gin.H{"recipe_id": id})
}
