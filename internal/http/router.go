package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/recipehub/internal/auth"
	"github.com/geocoder89/recipehub/internal/config"
	"github.com/geocoder89/recipehub/internal/domain/recipe"
	"github.com/geocoder89/recipehub/internal/http/handlers"
	"github.com/geocoder89/recipehub/internal/http/middlewares"
	"github.com/geocoder89/recipehub/internal/observability"
	"github.com/geocoder89/recipehub/internal/security"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20

type RatingsStore interface {
	handlers.RatingStore
	ListByUser(ctx context.Context, userID int64) ([]recipe.Rating, error)
}

// Deps are the collaborators the router wires into handlers. Prom and
// Checks and ShuttingDown are optional.
type Deps struct {
	Config   config.Config
	Strategy auth.Strategy
	Hasher   security.Hasher

	Users       handlers.CredentialStore
	Recipes     handlers.RecipeStore
	Ratings     RatingsStore
	Favorites   handlers.FavoriteStore
	Cuisines    handlers.CuisineStore
	Ingredients handlers.IngredientStore
	Owners      auth.OwnerLookup

	Prom         *observability.Prom
	Checks       map[string]handlers.Check
	ShuttingDown func() bool
}

func NewRouter(log *slog.Logger, d Deps) *gin.Engine {
	if d.Config.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// ClientIP keys the auth rate limiter; only listed proxies may set X-Forwarded-For
	if err := r.SetTrustedProxies(d.Config.TrustedProxies); err != nil {
		log.Error("invalid trusted proxies, trusting none", "err", err)
		_ = r.SetTrustedProxies(nil)
	}

	// middleware

	r.Use(gin.Recovery())
	if d.Config.OTelEnabled {
		r.Use(otelgin.Middleware(observability.ServiceName))
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.ExposeErrors(!d.Config.IsProd()))
	r.Use(middlewares.RequestLogger(log))

	var metrics middlewares.AuthMetrics
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
		r.GET("/metrics", gin.WrapH(d.Prom.Handler()))
		metrics = d.Prom
	}

	// health
	h := handlers.NewHealthHandler(d.Checks, d.ShuttingDown)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	am := middlewares.NewAuthMiddleware(d.Strategy, auth.NewAuthorizer(d.Owners), d.Strategy.Name(), metrics)

	limit := d.Config.AuthRateLimitPerMinute
	if limit <= 0 {
		limit = 20
	}
	authLimiter := middlewares.NewRateLimiter(limit, time.Minute)

	authHandler := handlers.NewAuthHandler(d.Users, d.Hasher, d.Strategy)
	usersHandler := handlers.NewUsersHandler(d.Users, d.Hasher, d.Strategy, d.Favorites, d.Ratings)
	recipesHandler := handlers.NewRecipesHandler(d.Recipes, d.Favorites)
	ratingsHandler := handlers.NewRatingsHandler(d.Ratings, d.Recipes)
	cuisinesHandler := handlers.NewCuisinesHandler(d.Cuisines)
	ingredientsHandler := handlers.NewIngredientsHandler(d.Ingredients)

	api := r.Group("/api")
	api.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	api.Use(middlewares.RequireJSON())

	// users
	users := api.Group("/users")
	users.POST("/register", authLimiter.Middleware(middlewares.KeyByIP), authHandler.Register)
	users.POST("/login", authLimiter.Middleware(middlewares.KeyByIP), authHandler.Login)
	users.POST("/logout", authHandler.Logout)

	me := users.Group("", am.RequireAuth())
	me.GET("/profile", usersHandler.GetProfile)
	me.PUT("/profile", usersHandler.UpdateProfile)
	me.DELETE("/profile", usersHandler.DeleteProfile)
	me.PUT("/password", usersHandler.UpdatePassword)
	me.GET("/favorites", usersHandler.ListFavorites)
	me.POST("/favorites/:recipeId", usersHandler.AddFavorite)
	me.DELETE("/favorites/:recipeId", usersHandler.RemoveFavorite)
	me.GET("/ratings", usersHandler.ListRatings)
	me.GET("", am.RequireAdmin(), usersHandler.ListUsers)

	// recipes
	recipes := api.Group("/recipes")
	recipes.GET("", recipesHandler.ListRecipes)
	recipes.GET("/mine", am.RequireAuth(), recipesHandler.ListMine)
	recipes.GET("/:id", am.OptionalAuth(), recipesHandler.GetRecipe)
	recipes.POST("", am.RequireAuth(), recipesHandler.CreateRecipe)
	recipes.PUT("/:id/title", am.RequireAuth(), am.RequireOwnership(auth.Recipes, "id"), recipesHandler.UpdateTitle)
	recipes.DELETE("/:id", am.RequireAuth(), am.RequireOwnership(auth.Recipes, "id"), recipesHandler.DeleteRecipe)

	recipes.GET("/:id/ratings", ratingsHandler.ListRatings)
	recipes.POST("/:id/ratings", am.RequireAuth(), ratingsHandler.RateRecipe)
	recipes.PUT("/:id/ratings", am.RequireAuth(), ratingsHandler.UpdateRating)
	recipes.DELETE("/:id/ratings", am.RequireAuth(), ratingsHandler.DeleteRating)

	// cuisines
	cuisines := api.Group("/cuisines")
	cuisines.GET("", cuisinesHandler.List)
	cuisines.GET("/:id", cuisinesHandler.Get)
	cuisines.POST("", am.RequireAuth(), am.RequireAdmin(), cuisinesHandler.Create)
	cuisines.PUT("/:id", am.RequireAuth(), am.RequireAdmin(), cuisinesHandler.Update)
	cuisines.DELETE("/:id", am.RequireAuth(), am.RequireAdmin(), cuisinesHandler.Delete)

	// ingredients
	ingredients := api.Group("/ingredients")
	ingredients.GET("", ingredientsHandler.List)
	ingredients.GET("/:id", ingredientsHandler.Get)
	ingredients.POST("", am.RequireAuth(), ingredientsHandler.Create)
	ingredients.PUT("/:id", am.RequireAuth(), ingredientsHandler.Update)
	ingredients.DELETE("/:id", am.RequireAuth(), ingredientsHandler.Delete)

	return r
}
