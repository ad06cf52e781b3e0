package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/recipehub/internal/domain/cuisine"
	"github.com/geocoder89/recipehub/internal/domain/ingredient"
	"github.com/gin-gonic/gin"
)

type CuisineStore interface {
	List(ctx context.Context) ([]cuisine.Cuisine, error)
	Get(ctx context.Context, id int64) (cuisine.Cuisine, error)
	Create(ctx context.Context, req cuisine.UpsertCuisineRequest) (cuisine.Cuisine, error)
	Update(ctx context.Context, id int64, req cuisine.UpsertCuisineRequest) (cuisine.Cuisine, error)
	Delete(ctx context.Context, id int64) error
}

// CuisinesHandler serves the cuisine catalog. Writes are admin only; the
// router enforces that.
type CuisinesHandler struct {
	store CuisineStore
}

func NewCuisinesHandler(store CuisineStore) *CuisinesHandler {
	return &CuisinesHandler{store: store}
}

func (h *CuisinesHandler) List(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx, 2*time.Second)
	defer cancel()

	items, err := h.store.List(cctx)

	if err != nil {
		respondStoreError(ctx, err, "Could not list cuisines")
		return
	}

	RespondOK(ctx, http.StatusOK, "", gin.H{"items": items, "count": len(items)})
}

func (h *CuisinesHandler) Get(ctx *gin.Context) {
	id, ok := ParseID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := requestContext(ctx, 2*time.Second)
	defer cancel()

	c, err := h.store.Get(cctx, id)

	if err != nil {
		respondStoreError(ctx, err, "Could not fetch cuisine")
		return
	}

	RespondOK(ctx, http.StatusOK, "", c)
}

func (h *CuisinesHandler) Create(ctx *gin.Context) {
	var req cuisine.UpsertCuisineRequest

	if !BindJSON(ctx, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)

	cctx, cancel := requestContext(ctx, 2*time.Second)
	defer cancel()

	c, err := h.store.Create(cctx, req)

	if err != nil {
		respondStoreError(ctx, err, "Could not create cuisine")
		return
	}

	RespondOK(ctx, http.StatusCreated, "Cuisine created successfully", c)
}

func (h *CuisinesHandler) Update(ctx *gin.Context) {
	id, ok := ParseID(ctx, "id")
	if !ok {
		return
	}

	var req cuisine.UpsertCuisineRequest

	if !BindJSON(ctx, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)

	cctx, cancel := requestContext(ctx, 2*time.Second)
	defer cancel()

	c, err := h.store.Update(cctx, id, req)

	if err != nil {
		respondStoreError(ctx, err, "Could not update cuisine")
		return
	}

	RespondOK(ctx, http.StatusOK, "Cuisine updated successfully", c)
}

func (h *CuisinesHandler) Delete(ctx *gin.Context) {
	id, ok := ParseID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := requestContext(ctx, 2*time.Second)
	defer cancel()

	if err := h.store.Delete(cctx, id); err != nil {
		respondStoreError(ctx, err, "Could not delete cuisine")
		return
	}

	RespondOK(ctx, http.StatusOK, "Cuisine deleted successfully", nil)
}

type IngredientStore interface {
	List(ctx context.Context) ([]ingredient.Ingredient, error)
	Get(ctx context.Context, id int64) (ingredient.Ingredient, error)
	Create(ctx context.Context, req ingredient.UpsertIngredientRequest) (ingredient.Ingredient, error)
	Update(ctx context.Context, id int64, req ingredient.UpsertIngredientRequest) (ingredient.Ingredient, error)
	Delete(ctx context.Context, id int64) error
}

// IngredientsHandler serves the shared ingredient list. Any authenticated
// user may write to it.
type IngredientsHandler struct {
	store IngredientStore
}

func NewIngredientsHandler(store IngredientStore) *IngredientsHandler {
	return &IngredientsHandler{store: store}
}

func (h *IngredientsHandler) List(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx, 2*time.Second)
	defer cancel()

	items, err := h.store.List(cctx)

	if err != nil {
		respondStoreError(ctx, err, "Could not list ingredients")
		return
	}

	RespondOK(ctx, http.StatusOK, "", gin.H{"items": items, "count": len(items)})
}

func (h *IngredientsHandler) Get(ctx *gin.Context) {
	id, ok := ParseID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := requestContext(ctx, 2*time.Second)
	defer cancel()

	in, err := h.store.Get(cctx, id)

	if err != nil {
		respondStoreError(ctx, err, "Could not fetch ingredient")
		return
	}

	RespondOK(ctx, http.StatusOK, "", in)
}

func (h *IngredientsHandler) Create(ctx *gin.Context) {
	var req ingredient.UpsertIngredientRequest

	if !BindJSON(ctx, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)

	cctx, cancel := requestContext(ctx, 2*time.Second)
	defer cancel()

	in, err := h.store.Create(cctx, req)

	if err != nil {
		respondStoreError(ctx, err, "Could not create ingredient")
		return
	}

	RespondOK(ctx, http.StatusCreated, "Ingredient created successfully", in)
}

func (h *IngredientsHandler) Update(ctx *gin.Context) {
	id, ok := ParseID(ctx, "id")
	if !ok {
		return
	}

	var req ingredient.UpsertIngredientRequest

	if !BindJSON(ctx, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)

	cctx, cancel := requestContext(ctx, 2*time.Second)
	defer cancel()

	in, err := h.store.Update(cctx, id, req)

	if err != nil {
		respondStoreError(ctx, err, "Could not update ingredient")
		return
	}

	RespondOK(ctx, http.StatusOK, "Ingredient updated successfully", in)
}

func (h *IngredientsHandler) Delete(ctx *gin.Context) {
	id, ok := ParseID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := requestContext(ctx, 2*time.Second)
	defer cancel()

	if err := h.store.Delete(cctx, id); err != nil {
		respondStoreError(ctx, err, "Could not delete ingredient")
		return
	}

	RespondOK(ctx, http.StatusOK, "Ingredient deleted successfully", nil)
}
