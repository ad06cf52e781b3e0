package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/recipehub/internal/actorctx"
	"github.com/geocoder89/recipehub/internal/auth"
	"github.com/geocoder89/recipehub/internal/domain/recipe"
	"github.com/geocoder89/recipehub/internal/domain/user"
	"github.com/geocoder89/recipehub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test
func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUsers struct {
	findByEmailFn    func(ctx context.Context, email string) (user.User, error)
	findByUsernameFn func(ctx context.Context, username string) (user.User, error)
	findByIDFn       func(ctx context.Context, id int64) (user.User, error)
	insertFn         func(ctx context.Context, nu user.NewUser) (user.User, error)
	updateFn         func(ctx context.Context, id int64, upd user.ProfileUpdate) (user.User, error)
	updatePasswordFn func(ctx context.Context, id int64, hash string) error
	deleteFn         func(ctx context.Context, id int64) error
	listFn           func(ctx context.Context) ([]user.User, error)
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (user.User, error) {
	if f.findByEmailFn != nil {
		return f.findByEmailFn(ctx, email)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsers) FindByUsername(ctx context.Context, username string) (user.User, error) {
	if f.findByUsernameFn != nil {
		return f.findByUsernameFn(ctx, username)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsers) FindByID(ctx context.Context, id int64) (user.User, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsers) Insert(ctx context.Context, nu user.NewUser) (user.User, error) {
	if f.insertFn != nil {
		return f.insertFn(ctx, nu)
	}
	return user.User{ID: 1, Username: nu.Username, Email: nu.Email, PasswordHash: nu.PasswordHash, IsAdmin: nu.IsAdmin}, nil
}

func (f *fakeUsers) Update(ctx context.Context, id int64, upd user.ProfileUpdate) (user.User, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, upd)
	}
	return user.User{ID: id, Username: upd.Username, Email: upd.Email}, nil
}

func (f *fakeUsers) UpdatePassword(ctx context.Context, id int64, hash string) error {
	if f.updatePasswordFn != nil {
		return f.updatePasswordFn(ctx, id, hash)
	}
	return nil
}

func (f *fakeUsers) Delete(ctx context.Context, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeUsers) List(ctx context.Context) ([]user.User, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

type fakeRecipes struct {
	listFn        func(ctx context.Context, filter recipe.ListFilter) ([]recipe.Recipe, error)
	getFn         func(ctx context.Context, id int64) (recipe.Recipe, error)
	createFn      func(ctx context.Context, userID int64, req recipe.CreateRecipeRequest) (recipe.Recipe, error)
	updateTitleFn func(ctx context.Context, id int64, title string) (recipe.Recipe, error)
	deleteFn      func(ctx context.Context, id int64) error
}

func (f *fakeRecipes) List(ctx context.Context, filter recipe.ListFilter) ([]recipe.Recipe, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}
	return []recipe.Recipe{}, nil
}

func (f *fakeRecipes) Get(ctx context.Context, id int64) (recipe.Recipe, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return recipe.Recipe{}, recipe.ErrNotFound
}

func (f *fakeRecipes) Create(ctx context.Context, userID int64, req recipe.CreateRecipeRequest) (recipe.Recipe, error) {
	if f.createFn != nil {
		return f.createFn(ctx, userID, req)
	}
	return recipe.Recipe{ID: 1, UserID: userID, Title: req.Title, Description: req.Description}, nil
}

func (f *fakeRecipes) UpdateTitle(ctx context.Context, id int64, title string) (recipe.Recipe, error) {
	if f.updateTitleFn != nil {
		return f.updateTitleFn(ctx, id, title)
	}
	return recipe.Recipe{ID: id, Title: title}, nil
}

func (f *fakeRecipes) Delete(ctx context.Context, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type fakeFavorites struct {
	listFn        func(ctx context.Context, userID int64) ([]recipe.Favorite, error)
	addFn         func(ctx context.Context, userID, recipeID int64) error
	removeFn      func(ctx context.Context, userID, recipeID int64) error
	isFavoritedFn func(ctx context.Context, userID, recipeID int64) (bool, error)
}

func (f *fakeFavorites) List(ctx context.Context, userID int64) ([]recipe.Favorite, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID)
	}
	return []recipe.Favorite{}, nil
}

func (f *fakeFavorites) Add(ctx context.Context, userID, recipeID int64) error {
	if f.addFn != nil {
		return f.addFn(ctx, userID, recipeID)
	}
	return nil
}

func (f *fakeFavorites) Remove(ctx context.Context, userID, recipeID int64) error {
	if f.removeFn != nil {
		return f.removeFn(ctx, userID, recipeID)
	}
	return nil
}

func (f *fakeFavorites) IsFavorited(ctx context.Context, userID, recipeID int64) (bool, error) {
	if f.isFavoritedFn != nil {
		return f.isFavoritedFn(ctx, userID, recipeID)
	}
	return false, nil
}

type fakeRatings struct {
	upsertFn        func(ctx context.Context, recipeID, userID int64, req recipe.RatingRequest) (recipe.Rating, error)
	updateFn        func(ctx context.Context, recipeID, userID int64, req recipe.RatingRequest) (recipe.Rating, error)
	deleteFn        func(ctx context.Context, recipeID, userID int64) error
	listForRecipeFn func(ctx context.Context, recipeID int64) ([]recipe.Rating, error)
	listByUserFn    func(ctx context.Context, userID int64) ([]recipe.Rating, error)
}

func (f *fakeRatings) Upsert(ctx context.Context, recipeID, userID int64, req recipe.RatingRequest) (recipe.Rating, error) {
	if f.upsertFn != nil {
		return f.upsertFn(ctx, recipeID, userID, req)
	}
	return recipe.Rating{RecipeID: recipeID, UserID: userID, Rating: req.Rating}, nil
}

func (f *fakeRatings) Update(ctx context.Context, recipeID, userID int64, req recipe.RatingRequest) (recipe.Rating, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, recipeID, userID, req)
	}
	return recipe.Rating{RecipeID: recipeID, UserID: userID, Rating: req.Rating}, nil
}

func (f *fakeRatings) Delete(ctx context.Context, recipeID, userID int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, recipeID, userID)
	}
	return nil
}

func (f *fakeRatings) ListForRecipe(ctx context.Context, recipeID int64) ([]recipe.Rating, error) {
	if f.listForRecipeFn != nil {
		return f.listForRecipeFn(ctx, recipeID)
	}
	return []recipe.Rating{}, nil
}

func (f *fakeRatings) ListByUser(ctx context.Context, userID int64) ([]recipe.Rating, error) {
	if f.listByUserFn != nil {
		return f.listByUserFn(ctx, userID)
	}
	return []recipe.Rating{}, nil
}

// withPrincipal stands in for the auth middleware.
func withPrincipal(p auth.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(actorctx.WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

// small helper function which returns the gin engine to mount one handler per test
func setupRouter(method, path string, h ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h...)

	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode body: %v body=%s", err, w.Body.String())
	}
	return env
}

var _ handlers.CredentialStore = (*fakeUsers)(nil)

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

func serveRequest(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
