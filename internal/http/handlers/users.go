package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/recipehub/internal/actorctx"
	"github.com/geocoder89/recipehub/internal/apperr"
	"github.com/geocoder89/recipehub/internal/auth"
	"github.com/geocoder89/recipehub/internal/domain/recipe"
	"github.com/geocoder89/recipehub/internal/domain/user"
	"github.com/geocoder89/recipehub/internal/security"
	"github.com/gin-gonic/gin"
)

type FavoriteStore interface {
	List(ctx context.Context, userID int64) ([]recipe.Favorite, error)
	Add(ctx context.Context, userID, recipeID int64) error
	Remove(ctx context.Context, userID, recipeID int64) error
	IsFavorited(ctx context.Context, userID, recipeID int64) (bool, error)
}

type UserRatingsLister interface {
	ListByUser(ctx context.Context, userID int64) ([]recipe.Rating, error)
}

type UsersHandler struct {
	users     CredentialStore
	hasher    security.Hasher
	strategy  auth.Strategy
	favorites FavoriteStore
	ratings   UserRatingsLister
}

func NewUsersHandler(users CredentialStore, hasher security.Hasher, strategy auth.Strategy, favorites FavoriteStore, ratings UserRatingsLister) *UsersHandler {
	return &UsersHandler{
		users:     users,
		hasher:    hasher,
		strategy:  strategy,
		favorites: favorites,
		ratings:   ratings,
	}
}

// principal returns the caller; routes using it sit behind RequireAuth, so a
// missing principal is answered with 401 rather than trusted.
func principal(ctx *gin.Context) (auth.Principal, bool) {
	p, ok := actorctx.PrincipalFrom(ctx.Request.Context())
	if !ok {
		RespondUnauthorized(ctx)
		return auth.Anonymous, false
	}
	return p, true
}

func (h *UsersHandler) GetProfile(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	cctx, cancel := requestContext(ctx, 2*time.Second)
	defer cancel()

	u, err := h.users.FindByID(cctx, p.UserID)

	if err != nil {
		respondStoreError(ctx, err, "Could not load profile")
		return
	}

	RespondOK(ctx, http.StatusOK, "", u)
}

func (h *UsersHandler) UpdateProfile(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	var req user.UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx, 3*time.Second)
	defer cancel()

	current, err := h.users.FindByID(cctx, p.UserID)

	if err != nil {
		respondStoreError(ctx, err, "Could not update profile")
		return
	}

	upd := user.ProfileUpdate{
		Username:  current.Username,
		Email:     current.Email,
		FirstName: current.FirstName,
		LastName:  current.LastName,
	}

	if req.Username != "" {
		upd.Username = strings.TrimSpace(req.Username)
	}
	if req.Email != "" {
		upd.Email = normalizeEmail(req.Email)
	}
	if req.FirstName != nil {
		upd.FirstName = req.FirstName
	}
	if req.LastName != nil {
		upd.LastName = req.LastName
	}

	u, err := h.users.Update(cctx, p.UserID, upd)

	if err != nil {
		respondStoreError(ctx, err, "Could not update profile")
		return
	}

	RespondOK(ctx, http.StatusOK, "Profile updated successfully", u)
}

func (h *UsersHandler) UpdatePassword(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	var req user.UpdatePasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx, 3*time.Second)
	defer cancel()

	current, err := h.users.FindByID(cctx, p.UserID)

	if err != nil {
		respondStoreError(ctx, err, "Could not update password")
		return
	}

	if !h.hasher.Verify(req.CurrentPassword, current.PasswordHash) {
		RespondAppError(ctx, apperr.Unauthenticated("Current password is incorrect"))
		return
	}

	hash, err := h.hasher.Hash(req.NewPassword)

	if err != nil {
		if errors.Is(err, security.ErrPasswordTooLong) {
			RespondBadRequest(ctx, "Password is too long", nil)
			return
		}
		RespondInternal(ctx, "Could not update password", err)
		return
	}

	if err := h.users.UpdatePassword(cctx, p.UserID, hash); err != nil {
		respondStoreError(ctx, err, "Could not update password")
		return
	}

	RespondOK(ctx, http.StatusOK, "Password updated successfully", nil)
}

// DeleteProfile removes the account and discards the caller's artifact.
func (h *UsersHandler) DeleteProfile(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	cctx, cancel := requestContext(ctx, 3*time.Second)
	defer cancel()

	if err := h.users.Delete(cctx, p.UserID); err != nil {
		respondStoreError(ctx, err, "Could not delete account")
		return
	}

	if _, err := h.strategy.Revoke(ctx.Writer, ctx.Request); err != nil {
		RespondInternal(ctx, "Account deleted but session could not be cleared", err)
		return
	}

	RespondOK(ctx, http.StatusOK, "Account deleted successfully", nil)
}

func (h *UsersHandler) ListFavorites(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	cctx, cancel := requestContext(ctx, 2*time.Second)
	defer cancel()

	favs, err := h.favorites.List(cctx, p.UserID)

	if err != nil {
		respondStoreError(ctx, err, "Could not list favorites")
		return
	}

	RespondOK(ctx, http.StatusOK, "", gin.H{
		"items": favs,
		"count": len(favs),
	})
}

func (h *UsersHandler) AddFavorite(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	recipeID, ok := ParseID(ctx, "recipeId")
	if !ok {
		return
	}

	cctx, cancel := requestContext(ctx, 2*time.Second)
	defer cancel()

	if err := h.favorites.Add(cctx, p.UserID, recipeID); err != nil {
		respondStoreError(ctx, err, "Could not add favorite")
		return
	}

	RespondOK(ctx, http.StatusCreated, "Recipe added to favorites", gin.H{"recipe_id": recipeID})
}

func (h *UsersHandler) RemoveFavorite(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	recipeID, ok := ParseID(ctx, "recipeId")
	if !ok {
		return
	}

	cctx, cancel := requestContext(ctx, 2*time.Second)
	defer cancel()

	if err := h.favorites.Remove(cctx, p.UserID, recipeID); err != nil {
		respondStoreError(ctx, err, "Could not remove favorite")
		return
	}

	RespondOK(ctx, http.StatusOK, "Recipe removed from favorites", nil)
}

func (h *UsersHandler) ListRatings(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}

	cctx, cancel := requestContext(ctx, 2*time.Second)
	defer cancel()

	ratings, err := h.ratings.ListByUser(cctx, p.UserID)

	if err != nil {
		respondStoreError(ctx, err, "Could not list ratings")
		return
	}

	RespondOK(ctx, http.StatusOK, "", gin.H{
		"items": ratings,
		"count": len(ratings),
	})
}

// ListUsers is mounted behind RequireAdmin.
func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx, 3*time.Second)
	defer cancel()

	users, err := h.users.List(cctx)

	if err != nil {
		respondStoreError(ctx, err, "Could not list users")
		return
	}

	if users == nil {
		users = []user.User{}
	}

	RespondOK(ctx, http.StatusOK, "", gin.H{
		"items": users,
		"count": len(users),
	})
}
