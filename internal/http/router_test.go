package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/recipehub/internal/auth"
	"github.com/geocoder89/recipehub/internal/config"
	"github.com/geocoder89/recipehub/internal/domain/recipe"
	"github.com/geocoder89/recipehub/internal/domain/user"
	apphttp "github.com/geocoder89/recipehub/internal/http"
	"github.com/geocoder89/recipehub/internal/observability"
	"github.com/geocoder89/recipehub/internal/repo/memory"
	"github.com/geocoder89/recipehub/internal/security"
	"github.com/geocoder89/recipehub/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router *gin.Engine
	store  *memory.Store
	hasher security.Hasher
}

func newEnv(t *testing.T, strategyName string) testEnv {
	t.Helper()
	return newEnvWith(t, strategyName, nil)
}

func newEnvWith(t *testing.T, strategyName string, tune func(*config.Config)) testEnv {
	t.Helper()

	store := memory.NewStore()
	hasher := security.NewBcryptHasher(4, nil)

	var strategy auth.Strategy
	switch strategyName {
	case config.StrategySession:
		strategy = auth.NewSessionStrategy(session.NewMemoryStore(), []byte("0123456789abcdef0123456789abcdef"), auth.SessionOptions{TTL: time.Hour})
	default:
		strategy = auth.NewTokenStrategy("router-test-secret", time.Hour)
	}

	cfg := config.Config{Env: "test", AuthStrategy: strategyName, AuthRateLimitPerMinute: 1000}
	if tune != nil {
		tune(&cfg)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := apphttp.NewRouter(log, apphttp.Deps{
		Config:      cfg,
		Strategy:    strategy,
		Hasher:      hasher,
		Users:       store.Users(),
		Recipes:     store.Recipes(),
		Ratings:     store.Ratings(),
		Favorites:   store.Favorites(),
		Cuisines:    store.Cuisines(),
		Ingredients: store.Ingredients(),
		Owners:      store.Owners(),
		Prom:        observability.NewProm(),
	})

	return testEnv{router: router, store: store, hasher: hasher}
}

// client carries whichever artifact the active strategy hands out.
type client struct {
	t       *testing.T
	router  *gin.Engine
	token   string
	cookies []*http.Cookie
}

type response struct {
	Code    int
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *client) do(method, path string, body any) response {
	c.t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		rdr = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		c.setCookie(ck)
	}

	resp := response{Code: w.Code}
	if w.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	resp.Code = w.Code

	return resp
}

func (c *client) setCookie(ck *http.Cookie) {
	kept := c.cookies[:0]
	for _, existing := range c.cookies {
		if existing.Name != ck.Name {
			kept = append(kept, existing)
		}
	}
	c.cookies = kept

	if ck.MaxAge >= 0 && ck.Value != "" {
		c.cookies = append(c.cookies, ck)
	}
}

func (c *client) login(email, password string) response {
	c.t.Helper()

	resp := c.do(http.MethodPost, "/api/users/login", map[string]string{"email": email, "password": password})
	if resp.Code == http.StatusOK {
		var data struct {
			Token string `json:"token"`
		}
		require.NoError(c.t, json.Unmarshal(resp.Data, &data))
		c.token = data.Token
	}
	return resp
}

func (c *client) createRecipe(title string) int64 {
	c.t.Helper()

	resp := c.do(http.MethodPost, "/api/recipes", map[string]string{"title": title, "description": "tasty"})
	require.Equal(c.t, http.StatusCreated, resp.Code, resp.Message)

	var rc struct {
		ID int64 `json:"recipe_id"`
	}
	require.NoError(c.t, json.Unmarshal(resp.Data, &rc))
	return rc.ID
}

func path(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10)
}

func forEachStrategy(t *testing.T, fn func(t *testing.T, env testEnv)) {
	for _, name := range []string{config.StrategyToken, config.StrategySession} {
		t.Run(name, func(t *testing.T) {
			fn(t, newEnv(t, name))
		})
	}
}

func TestScenario_OwnershipLifecycle(t *testing.T) {
	forEachStrategy(t, func(t *testing.T, env testEnv) {
		alice := &client{t: t, router: env.router}
		bob := &client{t: t, router: env.router}

		resp := alice.do(http.MethodPost, "/api/users/register", map[string]string{
			"username": "alice", "email": "a@x.test", "password": "pw123456",
		})
		require.Equal(t, http.StatusCreated, resp.Code, resp.Message)

		resp = bob.do(http.MethodPost, "/api/users/register", map[string]string{
			"username": "bob", "email": "b@x.test", "password": "pw123456",
		})
		require.Equal(t, http.StatusCreated, resp.Code, resp.Message)

		resp = alice.login("a@x.test", "pw123456")
		require.Equal(t, http.StatusOK, resp.Code)

		var login struct {
			User struct {
				IsAdmin bool `json:"is_admin"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &login))
		assert.False(t, login.User.IsAdmin)

		require.Equal(t, http.StatusOK, bob.login("b@x.test", "pw123456").Code)

		bobs := bob.createRecipe("Bob's stew")
		mine := alice.createRecipe("Alice's soup")

		// someone else's recipe
		resp = alice.do(http.MethodDelete, path("/api/recipes/", bobs), nil)
		assert.Equal(t, http.StatusForbidden, resp.Code)
		assert.False(t, resp.Success)

		resp = alice.do(http.MethodPut, path("/api/recipes/", bobs)+"/title", map[string]string{"title": "mine now"})
		assert.Equal(t, http.StatusForbidden, resp.Code)

		// own recipe
		resp = alice.do(http.MethodDelete, path("/api/recipes/", mine), nil)
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.True(t, resp.Success)

		_, err := env.store.Recipes().Get(context.Background(), mine)
		assert.Error(t, err, "the row must be gone")

		// already deleted: not found, never forbidden
		resp = alice.do(http.MethodDelete, path("/api/recipes/", mine), nil)
		assert.Equal(t, http.StatusNotFound, resp.Code)

		resp = bob.do(http.MethodDelete, path("/api/recipes/", mine), nil)
		assert.Equal(t, http.StatusNotFound, resp.Code)

		// bob's recipe survived alice's attempts
		got, err := env.store.Recipes().Get(context.Background(), bobs)
		require.NoError(t, err)
		assert.Equal(t, "Bob's stew", got.Title)
	})
}

func TestScenario_AdminDeletesAnyRecipe(t *testing.T) {
	forEachStrategy(t, func(t *testing.T, env testEnv) {
		hash, err := env.hasher.Hash("admin-password")
		require.NoError(t, err)

		_, err = env.store.Users().Insert(context.Background(), user.NewUser{
			Username: "root", Email: "root@x.test", PasswordHash: hash, IsAdmin: true,
		})
		require.NoError(t, err)

		bob := &client{t: t, router: env.router}
		require.Equal(t, http.StatusCreated, bob.do(http.MethodPost, "/api/users/register", map[string]string{
			"username": "bob", "email": "b@x.test", "password": "pw123456",
		}).Code)
		require.Equal(t, http.StatusOK, bob.login("b@x.test", "pw123456").Code)
		bobs := bob.createRecipe("Bob's stew")

		admin := &client{t: t, router: env.router}
		require.Equal(t, http.StatusOK, admin.login("root@x.test", "admin-password").Code)

		resp := admin.do(http.MethodPut, path("/api/recipes/", bobs)+"/title", map[string]string{"title": "Renamed"})
		assert.Equal(t, http.StatusOK, resp.Code)

		resp = admin.do(http.MethodDelete, path("/api/recipes/", bobs), nil)
		assert.Equal(t, http.StatusOK, resp.Code)

		// admin skips the lookup; the mutation itself reports the missing row
		resp = admin.do(http.MethodDelete, path("/api/recipes/", bobs), nil)
		assert.Equal(t, http.StatusNotFound, resp.Code)

		// admin only surfaces
		assert.Equal(t, http.StatusOK, admin.do(http.MethodGet, "/api/users", nil).Code)
		assert.Equal(t, http.StatusForbidden, bob.do(http.MethodGet, "/api/users", nil).Code)

		assert.Equal(t, http.StatusCreated, admin.do(http.MethodPost, "/api/cuisines", map[string]string{"name": "Thai"}).Code)
		assert.Equal(t, http.StatusForbidden, bob.do(http.MethodPost, "/api/cuisines", map[string]string{"name": "Greek"}).Code)
		assert.Equal(t, http.StatusConflict, admin.do(http.MethodPost, "/api/cuisines", map[string]string{"name": "Thai"}).Code)
	})
}

func TestScenario_AuthenticationFailures(t *testing.T) {
	forEachStrategy(t, func(t *testing.T, env testEnv) {
		anon := &client{t: t, router: env.router}

		resp := anon.do(http.MethodPost, "/api/recipes", map[string]string{"title": "x", "description": "y"})
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.False(t, resp.Success)

		assert.Equal(t, http.StatusUnauthorized, anon.do(http.MethodGet, "/api/users/profile", nil).Code)

		require.Equal(t, http.StatusCreated, anon.do(http.MethodPost, "/api/users/register", map[string]string{
			"username": "alice", "email": "a@x.test", "password": "pw123456",
		}).Code)

		// duplicate registration
		dup := &client{t: t, router: env.router}
		assert.Equal(t, http.StatusConflict, dup.do(http.MethodPost, "/api/users/register", map[string]string{
			"username": "alice2", "email": "a@x.test", "password": "pw123456",
		}).Code)

		wrong := &client{t: t, router: env.router}
		bad := wrong.login("a@x.test", "not-the-password")
		unknown := wrong.login("nobody@x.test", "pw123456")
		assert.Equal(t, http.StatusUnauthorized, bad.Code)
		assert.Equal(t, http.StatusUnauthorized, unknown.Code)
		assert.Equal(t, bad.Message, unknown.Message)

		// forged artifacts
		forged := &client{t: t, router: env.router, token: "not.a.jwt"}
		forged.cookies = []*http.Cookie{{Name: auth.DefaultSessionCookie, Value: "garbage"}}
		assert.Equal(t, http.StatusUnauthorized, forged.do(http.MethodGet, "/api/users/profile", nil).Code)

		// optional auth tolerates them
		assert.Equal(t, http.StatusNotFound, forged.do(http.MethodGet, "/api/recipes/1", nil).Code)
	})
}

func TestScenario_LogoutTwice(t *testing.T) {
	forEachStrategy(t, func(t *testing.T, env testEnv) {
		alice := &client{t: t, router: env.router}
		require.Equal(t, http.StatusCreated, alice.do(http.MethodPost, "/api/users/register", map[string]string{
			"username": "alice", "email": "a@x.test", "password": "pw123456",
		}).Code)
		require.Equal(t, http.StatusOK, alice.login("a@x.test", "pw123456").Code)
		require.Equal(t, http.StatusOK, alice.do(http.MethodGet, "/api/users/profile", nil).Code)

		stale := append([]*http.Cookie(nil), alice.cookies...)

		first := alice.do(http.MethodPost, "/api/users/logout", nil)
		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, "Logged out successfully", first.Message)

		// token variant: discarding is the client's job
		alice.token = ""

		second := alice.do(http.MethodPost, "/api/users/logout", nil)
		assert.Equal(t, http.StatusOK, second.Code)
		assert.Equal(t, "Already logged out", second.Message)

		assert.Equal(t, http.StatusUnauthorized, alice.do(http.MethodGet, "/api/users/profile", nil).Code)

		if len(stale) > 0 {
			// a replayed session cookie points at a destroyed record
			replay := &client{t: t, router: env.router, cookies: stale}
			assert.Equal(t, http.StatusUnauthorized, replay.do(http.MethodGet, "/api/users/profile", nil).Code)
		}
	})
}

func TestScenario_DeletedAccountCannotWrite(t *testing.T) {
	forEachStrategy(t, func(t *testing.T, env testEnv) {
		alice := &client{t: t, router: env.router}
		require.Equal(t, http.StatusCreated, alice.do(http.MethodPost, "/api/users/register", map[string]string{
			"username": "alice", "email": "a@x.test", "password": "pw123456",
		}).Code)
		require.Equal(t, http.StatusOK, alice.login("a@x.test", "pw123456").Code)

		// whatever the caller held before the account went away
		leftover := &client{t: t, router: env.router, token: alice.token, cookies: append([]*http.Cookie(nil), alice.cookies...)}

		require.Equal(t, http.StatusOK, alice.do(http.MethodDelete, "/api/users/profile", nil).Code)

		resp := leftover.do(http.MethodPost, "/api/recipes", map[string]string{"title": "Orphan", "description": "no author"})
		if leftover.token != "" {
			// a signed token outlives the account row
			assert.Equal(t, http.StatusNotFound, resp.Code)
			assert.Equal(t, "User not found", resp.Message)
		} else {
			assert.Equal(t, http.StatusUnauthorized, resp.Code)
		}

		list, err := env.store.Recipes().List(context.Background(), recipe.ListFilter{})
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestScenario_FavoritesAndRatings(t *testing.T) {
	forEachStrategy(t, func(t *testing.T, env testEnv) {
		alice := &client{t: t, router: env.router}
		require.Equal(t, http.StatusCreated, alice.do(http.MethodPost, "/api/users/register", map[string]string{
			"username": "alice", "email": "a@x.test", "password": "pw123456",
		}).Code)
		require.Equal(t, http.StatusOK, alice.login("a@x.test", "pw123456").Code)

		id := alice.createRecipe("Soup")

		assert.Equal(t, http.StatusCreated, alice.do(http.MethodPost, path("/api/users/favorites/", id), nil).Code)
		assert.Equal(t, http.StatusConflict, alice.do(http.MethodPost, path("/api/users/favorites/", id), nil).Code)
		assert.Equal(t, http.StatusNotFound, alice.do(http.MethodPost, "/api/users/favorites/999", nil).Code)

		resp := alice.do(http.MethodGet, path("/api/recipes/", id), nil)
		require.Equal(t, http.StatusOK, resp.Code)
		var view struct {
			Favorited *bool `json:"favorited"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &view))
		require.NotNil(t, view.Favorited)
		assert.True(t, *view.Favorited)

		assert.Equal(t, http.StatusNotFound, alice.do(http.MethodPut, path("/api/recipes/", id)+"/ratings", map[string]int{"rating": 3}).Code)
		assert.Equal(t, http.StatusCreated, alice.do(http.MethodPost, path("/api/recipes/", id)+"/ratings", map[string]int{"rating": 4}).Code)
		assert.Equal(t, http.StatusOK, alice.do(http.MethodPut, path("/api/recipes/", id)+"/ratings", map[string]int{"rating": 2}).Code)

		anon := &client{t: t, router: env.router}
		resp = anon.do(http.MethodGet, path("/api/recipes/", id)+"/ratings", nil)
		require.Equal(t, http.StatusOK, resp.Code)
		var sum struct {
			Average float64 `json:"average_rating"`
			Count   int     `json:"total_ratings"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &sum))
		assert.Equal(t, 2.0, sum.Average)
		assert.Equal(t, 1, sum.Count)

		assert.Equal(t, http.StatusOK, alice.do(http.MethodDelete, path("/api/recipes/", id)+"/ratings", nil).Code)
		assert.Equal(t, http.StatusNotFound, alice.do(http.MethodDelete, path("/api/recipes/", id)+"/ratings", nil).Code)

		assert.Equal(t, http.StatusOK, alice.do(http.MethodDelete, path("/api/users/favorites/", id), nil).Code)
		assert.Equal(t, http.StatusNotFound, alice.do(http.MethodDelete, path("/api/users/favorites/", id), nil).Code)
	})
}

func TestAuthRateLimit_ForwardedFor(t *testing.T) {
	// httptest requests arrive from 192.0.2.1
	loginFrom := func(env testEnv, forwardedFor string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/users/login", strings.NewReader(`{"email":"nobody@x.test","password":"wrong-pass"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", forwardedFor)

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		return w.Code
	}

	tests := []struct {
		name    string
		proxies []string
		want    []int
	}{
		{"untrusted peer shares one bucket", nil, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}},
		{"trusted proxy forwards the client", []string{"192.0.2.1"}, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusUnauthorized}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnvWith(t, config.StrategyToken, func(c *config.Config) {
				c.AuthRateLimitPerMinute = 2
				c.TrustedProxies = tt.proxies
			})

			got := make([]int, 0, len(tt.want))
			for i := range tt.want {
				got = append(got, loginFrom(env, fmt.Sprintf("203.0.113.%d", i+1)))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	env := newEnv(t, config.StrategyToken)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
