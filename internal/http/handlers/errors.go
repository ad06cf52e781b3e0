package handlers

import (
	"errors"

	"github.com/geocoder89/recipehub/internal/apperr"
	"github.com/geocoder89/recipehub/internal/domain/cuisine"
	"github.com/geocoder89/recipehub/internal/domain/ingredient"
	"github.com/geocoder89/recipehub/internal/domain/recipe"
	"github.com/geocoder89/recipehub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// classify turns store sentinels into client-facing errors. Anything it does
// not recognise is internal and carries fallback as its message.
func classify(err error, fallback string) *apperr.Error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}

	switch {
	case errors.Is(err, user.ErrNotFound):
		return apperr.E(apperr.KindNotFound, "User not found", err)
	case errors.Is(err, user.ErrEmailTaken):
		return apperr.E(apperr.KindConflict, "Email already registered", err)
	case errors.Is(err, user.ErrUsernameTaken):
		return apperr.E(apperr.KindConflict, "Username already taken", err)
	case errors.Is(err, recipe.ErrNotFound):
		return apperr.E(apperr.KindNotFound, "Recipe not found", err)
	case errors.Is(err, recipe.ErrRatingNotFound):
		return apperr.E(apperr.KindNotFound, "Rating not found", err)
	case errors.Is(err, recipe.ErrAlreadyFavorited):
		return apperr.E(apperr.KindConflict, "Recipe already in favorites", err)
	case errors.Is(err, recipe.ErrFavoriteNotFound):
		return apperr.E(apperr.KindNotFound, "Recipe not in favorites", err)
	case errors.Is(err, cuisine.ErrNotFound):
		return apperr.E(apperr.KindNotFound, "Cuisine not found", err)
	case errors.Is(err, cuisine.ErrNameTaken):
		return apperr.E(apperr.KindConflict, "Cuisine already exists", err)
	case errors.Is(err, ingredient.ErrNotFound):
		return apperr.E(apperr.KindNotFound, "Ingredient not found", err)
	case errors.Is(err, ingredient.ErrNameTaken):
		return apperr.E(apperr.KindConflict, "Ingredient already exists", err)
	}

	return apperr.Internal(fallback, err)
}

func respondStoreError(ctx *gin.Context, err error, fallback string) {
	RespondAppError(ctx, classify(err, fallback))
}
