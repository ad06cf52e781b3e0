package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/geocoder89/recipehub/internal/auth"
	"github.com/geocoder89/recipehub/internal/config"
	"github.com/geocoder89/recipehub/internal/db"
	apphttp "github.com/geocoder89/recipehub/internal/http"
	"github.com/geocoder89/recipehub/internal/http/handlers"
	"github.com/geocoder89/recipehub/internal/observability"
	"github.com/geocoder89/recipehub/internal/repo/postgres"
	"github.com/geocoder89/recipehub/internal/security"
	"github.com/geocoder89/recipehub/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func testConfigAuth(strategy string) config.Config {
	return config.Config{
		Env:                    "test",
		AuthStrategy:           strategy,
		JWTSecret:              "test-secret-key",
		JWTAccessTTLMinutes:    60,
		SessionSecret:          "test-session-secret-0123456789abcdef",
		SessionTTLHours:        1,
		AdminEmail:             "admin@example.com",
		AdminUsername:          "admin",
		AdminPassword:          "admin-password",
		AuthRateLimitPerMinute: 1000,
	}
}

func setupAuthTestRouter(t *testing.T, strategyName string) (*gin.Engine, *pgxpool.Pool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to create pgx pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	resetAuthDB(t, pool)
	t.Cleanup(func() { resetAuthDB(t, pool) })

	cfg := testConfigAuth(strategyName)
	prom := observability.NewProm()
	hasher := security.NewBcryptHasher(4, prom.ObservePassword)
	users := postgres.NewUsersRepo(pool, prom)

	if _, err := db.EnsureAdminUser(ctx, users, hasher, cfg); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	var strategy auth.Strategy = auth.NewTokenStrategy(cfg.JWTSecret, cfg.AccessTTL())
	if strategyName == config.StrategySession {
		strategy = auth.NewSessionStrategy(session.NewMemoryStore(), []byte(cfg.SessionSecret), auth.SessionOptions{TTL: cfg.SessionTTL()})
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	router := apphttp.NewRouter(logger, apphttp.Deps{
		Config:      cfg,
		Strategy:    strategy,
		Hasher:      hasher,
		Users:       users,
		Recipes:     postgres.NewRecipesRepo(pool, prom),
		Ratings:     postgres.NewRatingsRepo(pool, prom),
		Favorites:   postgres.NewFavoritesRepo(pool, prom),
		Cuisines:    postgres.NewCuisinesRepo(pool, prom),
		Ingredients: postgres.NewIngredientsRepo(pool, prom),
		Owners:      postgres.NewOwnersRepo(pool, prom),
		Prom:        prom,
		Checks:      map[string]handlers.Check{"db": pool.Ping},
	})

	return router, pool
}

func resetAuthDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		TRUNCATE user_favorites, recipe_ratings, recipes, ingredients, cuisines, users
		RESTART IDENTITY CASCADE
	`)
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

// helpers

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// caller tracks whichever credential the router handed back.
type caller struct {
	token   string
	cookies []*http.Cookie
}

func doRequest(router http.Handler, s *caller, method, path, body string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rdr)

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	if s != nil {
		if s.token != "" {
			req.Header.Set("Authorization", "Bearer "+s.token)
		}
		for _, c := range s.cookies {
			req.AddCookie(c)
		}
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if s != nil {
		for _, c := range w.Result().Cookies() {
			if c.MaxAge >= 0 && c.Value != "" {
				s.cookies = []*http.Cookie{c}
			} else {
				s.cookies = nil
			}
		}
	}

	return w
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), out)
	if err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

func mustStatus(t *testing.T, w *httptest.ResponseRecorder, want int, step string) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("%s got status %d, want %d, body=%s", step, w.Code, want, w.Body.String())
	}
}

func login(t *testing.T, router http.Handler, email, password string) *caller {
	t.Helper()

	s := &caller{}
	w := doRequest(router, s, http.MethodPost, "/api/users/login",
		`{"email":"`+email+`","password":"`+password+`"}`)
	mustStatus(t, w, http.StatusOK, "login "+email)

	var resp apiResponse
	mustReadJSON(t, w, &resp)

	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("login data: %v", err)
	}
	s.token = data.Token

	return s
}

func register(t *testing.T, router http.Handler, username, email string) {
	t.Helper()

	w := doRequest(router, nil, http.MethodPost, "/api/users/register",
		`{"username":"`+username+`","email":"`+email+`","password":"password123"}`)
	mustStatus(t, w, http.StatusCreated, "register "+username)
}

func createRecipe(t *testing.T, router http.Handler, s *caller, title string) string {
	t.Helper()

	w := doRequest(router, s, http.MethodPost, "/api/recipes",
		`{"title":"`+title+`","description":"slow cooked"}`)
	mustStatus(t, w, http.StatusCreated, "create recipe")

	var resp apiResponse
	mustReadJSON(t, w, &resp)

	var rc struct {
		ID int64 `json:"recipe_id"`
	}
	if err := json.Unmarshal(resp.Data, &rc); err != nil {
		t.Fatalf("recipe data: %v", err)
	}

	return strconv.FormatInt(rc.ID, 10)
}

func TestAuthIntegration_OwnershipLifecycle(t *testing.T) {
	for _, strategy := range []string{config.StrategyToken, config.StrategySession} {
		t.Run(strategy, func(t *testing.T) {
			router, _ := setupAuthTestRouter(t, strategy)

			register(t, router, "alice", "alice@example.com")
			register(t, router, "bob", "bob@example.com")

			alice := login(t, router, "alice@example.com", "password123")
			bob := login(t, router, "bob@example.com", "password123")

			bobs := createRecipe(t, router, bob, "Bob's stew")
			mine := createRecipe(t, router, alice, "Alice's soup")

			w := doRequest(router, alice, http.MethodDelete, "/api/recipes/"+bobs, "")
			mustStatus(t, w, http.StatusForbidden, "delete foreign recipe")

			w = doRequest(router, alice, http.MethodDelete, "/api/recipes/"+mine, "")
			mustStatus(t, w, http.StatusOK, "delete own recipe")

			w = doRequest(router, alice, http.MethodDelete, "/api/recipes/"+mine, "")
			mustStatus(t, w, http.StatusNotFound, "delete again")

			w = doRequest(router, nil, http.MethodGet, "/api/recipes/"+mine, "")
			mustStatus(t, w, http.StatusNotFound, "get deleted")

			admin := login(t, router, "admin@example.com", "admin-password")

			w = doRequest(router, admin, http.MethodDelete, "/api/recipes/"+bobs, "")
			mustStatus(t, w, http.StatusOK, "admin delete")

			w = doRequest(router, admin, http.MethodDelete, "/api/recipes/"+bobs, "")
			mustStatus(t, w, http.StatusNotFound, "admin delete again")
		})
	}
}

func TestAuthIntegration_RegisterConflicts(t *testing.T) {
	router, _ := setupAuthTestRouter(t, config.StrategyToken)

	register(t, router, "sam", "sam@example.com")

	w := doRequest(router, nil, http.MethodPost, "/api/users/register",
		`{"username":"sam2","email":"SAM@example.com","password":"password123"}`)
	mustStatus(t, w, http.StatusConflict, "duplicate email")

	w = doRequest(router, nil, http.MethodPost, "/api/users/register",
		`{"username":"sam","email":"other@example.com","password":"password123"}`)
	mustStatus(t, w, http.StatusConflict, "duplicate username")

	var resp apiResponse
	mustReadJSON(t, w, &resp)
	if !strings.Contains(strings.ToLower(resp.Message), "username") {
		t.Fatalf("expected a username conflict message, got %q", resp.Message)
	}
}

func TestAuthIntegration_Login_InvalidCredentials(t *testing.T) {
	router, _ := setupAuthTestRouter(t, config.StrategyToken)

	// no user created
	w := doRequest(router, nil, http.MethodPost, "/api/users/login", `{"email":"nope@example.com","password":"wrong"}`)
	mustStatus(t, w, http.StatusUnauthorized, "login(invalid creds)")
}

func TestAuthIntegration_SessionLogoutRevokes(t *testing.T) {
	router, _ := setupAuthTestRouter(t, config.StrategySession)

	register(t, router, "sam", "sam@example.com")
	sam := login(t, router, "sam@example.com", "password123")

	stale := &caller{cookies: append([]*http.Cookie(nil), sam.cookies...)}
	if len(stale.cookies) == 0 {
		t.Fatalf("login did not set a session cookie")
	}

	w := doRequest(router, sam, http.MethodGet, "/api/users/profile", "")
	mustStatus(t, w, http.StatusOK, "profile")

	w = doRequest(router, sam, http.MethodPost, "/api/users/logout", "")
	mustStatus(t, w, http.StatusOK, "logout")

	w = doRequest(router, sam, http.MethodPost, "/api/users/logout", "")
	mustStatus(t, w, http.StatusOK, "logout again")

	var resp apiResponse
	mustReadJSON(t, w, &resp)
	if resp.Message != "Already logged out" {
		t.Fatalf("second logout message %q", resp.Message)
	}

	w = doRequest(router, stale, http.MethodGet, "/api/users/profile", "")
	mustStatus(t, w, http.StatusUnauthorized, "replayed cookie after logout")
}
