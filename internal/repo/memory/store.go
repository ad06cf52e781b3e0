// Package memory holds in-process stores with the same behaviour as the
// postgres repositories. They back the handler and scenario tests and a
// database-less dev mode.
package memory

import (
	"sync"
	"time"

	"github.com/geocoder89/recipehub/internal/domain/cuisine"
	"github.com/geocoder89/recipehub/internal/domain/ingredient"
	"github.com/geocoder89/recipehub/internal/domain/recipe"
	"github.com/geocoder89/recipehub/internal/domain/user"
)

type pair struct {
	a, b int64
}

// Store is one shared dataset; the typed repos are views over it so that
// cascades (deleting a recipe drops its ratings and favorites) stay
// consistent.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	seq map[string]int64

	users       map[int64]user.User
	recipes     map[int64]recipe.Recipe
	ratings     map[pair]recipe.Rating // recipe, user
	favorites   map[pair]time.Time     // user, recipe
	cuisines    map[int64]cuisine.Cuisine
	ingredients map[int64]ingredient.Ingredient
}

func NewStore() *Store {
	return &Store{
		now:         func() time.Time { return time.Now().UTC() },
		seq:         make(map[string]int64),
		users:       make(map[int64]user.User),
		recipes:     make(map[int64]recipe.Recipe),
		ratings:     make(map[pair]recipe.Rating),
		favorites:   make(map[pair]time.Time),
		cuisines:    make(map[int64]cuisine.Cuisine),
		ingredients: make(map[int64]ingredient.Ingredient),
	}
}

// next must be called with mu held.
func (s *Store) next(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

func (s *Store) Users() *UsersRepo             { return &UsersRepo{s: s} }
func (s *Store) Recipes() *RecipesRepo         { return &RecipesRepo{s: s} }
func (s *Store) Ratings() *RatingsRepo         { return &RatingsRepo{s: s} }
func (s *Store) Favorites() *FavoritesRepo     { return &FavoritesRepo{s: s} }
func (s *Store) Owners() *OwnersRepo           { return &OwnersRepo{s: s} }
func (s *Store) Cuisines() *CuisinesRepo       { return &CuisinesRepo{s: s} }
func (s *Store) Ingredients() *IngredientsRepo { return &IngredientsRepo{s: s} }

// deleteRecipe must be called with mu held.
func (s *Store) deleteRecipe(id int64) {
	delete(s.recipes, id)
	for k := range s.ratings {
		if k.a == id {
			delete(s.ratings, k)
		}
	}
	for k := range s.favorites {
		if k.b == id {
			delete(s.favorites, k)
		}
	}
}
