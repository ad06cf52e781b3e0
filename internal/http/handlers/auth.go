package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/recipehub/internal/apperr"
	"github.com/geocoder89/recipehub/internal/auth"
	"github.com/geocoder89/recipehub/internal/domain/user"
	"github.com/geocoder89/recipehub/internal/security"
	"github.com/gin-gonic/gin"
)

// CredentialStore is everything the user endpoints need from the users table.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (user.User, error)
	FindByUsername(ctx context.Context, username string) (user.User, error)
	FindByID(ctx context.Context, id int64) (user.User, error)
	Insert(ctx context.Context, nu user.NewUser) (user.User, error)
	Update(ctx context.Context, id int64, upd user.ProfileUpdate) (user.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]user.User, error)
}

type AuthHandler struct {
	users    CredentialStore
	hasher   security.Hasher
	strategy auth.Strategy

	decoyOnce sync.Once
	decoy     string
}

func NewAuthHandler(users CredentialStore, hasher security.Hasher, strategy auth.Strategy) *AuthHandler {
	return &AuthHandler{
		users:    users,
		hasher:   hasher,
		strategy: strategy,
	}
}

type authResponse struct {
	User      user.User  `json:"user"`
	Token     string     `json:"token,omitempty"`
	TokenType string     `json:"token_type,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// requestContext bounds a store round trip by the request's own context.
func requestContext(ctx *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), d)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	hash, err := h.hasher.Hash(req.Password)

	if err != nil {
		if errors.Is(err, security.ErrPasswordTooLong) {
			RespondBadRequest(ctx, "Password is too long", nil)
			return
		}
		RespondInternal(ctx, "Could not create user", err)
		return
	}

	cctx, cancel := requestContext(ctx, 3*time.Second)
	defer cancel()

	// self registration never grants admin
	u, err := h.users.Insert(cctx, user.NewUser{
		Username:     strings.TrimSpace(req.Username),
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	})

	if err != nil {
		respondStoreError(ctx, err, "Could not create user")
		return
	}

	h.issue(ctx, http.StatusCreated, "User registered successfully", u)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx, 2*time.Second)
	defer cancel()

	found, err := h.users.FindByEmail(cctx, normalizeEmail(req.Email))

	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			RespondInternal(ctx, "Could not log in", err)
			return
		}

		// spend the same bcrypt time as a real check so unknown emails are
		// not distinguishable by latency
		h.hasher.Verify(req.Password, h.decoyHash())
		RespondAppError(ctx, apperr.Unauthenticated("Invalid email or password"))
		return
	}

	if !h.hasher.Verify(req.Password, found.PasswordHash) {
		RespondAppError(ctx, apperr.Unauthenticated("Invalid email or password"))
		return
	}

	h.issue(ctx, http.StatusOK, "Login successful", found)
}

// Logout is idempotent and needs no valid artifact.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	revoked, err := h.strategy.Revoke(ctx.Writer, ctx.Request)

	if err != nil {
		RespondInternal(ctx, "Could not log out", err)
		return
	}

	if !revoked {
		RespondOK(ctx, http.StatusOK, "Already logged out", nil)
		return
	}

	RespondOK(ctx, http.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) issue(ctx *gin.Context, status int, message string, u user.User) {
	issued, err := h.strategy.Issue(ctx.Writer, ctx.Request, auth.FromUser(u))

	if err != nil {
		RespondInternal(ctx, "Could not start session", err)
		return
	}

	resp := authResponse{
		User:      u,
		Token:     issued.Token,
		TokenType: issued.TokenType,
	}

	if !issued.ExpiresAt.IsZero() {
		resp.ExpiresAt = &issued.ExpiresAt
	}

	RespondOK(ctx, status, message, resp)
}

// fallbackDecoyHash is a well-formed cost-10 bcrypt hash, used when the
// configured hasher cannot produce a decoy of its own.
const fallbackDecoyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func (h *AuthHandler) decoyHash() string {
	h.decoyOnce.Do(func() {
		decoy, err := h.hasher.Hash("recipehub-decoy-password")
		if err != nil || decoy == "" {
			slog.Default().Warn("decoy hash failed, using fallback", "err", err)
			decoy = fallbackDecoyHash
		}
		h.decoy = decoy
	})
	return h.decoy
}
