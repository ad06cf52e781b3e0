package recipe

import (
	"errors"
	"math"
	"time"
)

var (
	ErrNotFound         = errors.New("recipe not found")
	ErrRatingNotFound   = errors.New("rating not found")
	ErrAlreadyFavorited = errors.New("recipe already in favorites")
	ErrFavoriteNotFound = errors.New("recipe not in favorites")
)

type Recipe struct {
	ID            int64     `json:"recipe_id"`
	UserID        int64     `json:"user_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	ImageURL      *string   `json:"image_url"`
	CuisineID     *int64    `json:"cuisine_id"`
	CuisineName   *string   `json:"cuisine_name,omitempty"`
	AverageRating float64   `json:"average_rating"`
	TotalRatings  int       `json:"total_ratings"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CreateRecipeRequest struct {
	Title       string  `json:"title" binding:"required,min=1,max=200"`
	Description string  `json:"description" binding:"required,max=5000"`
	ImageURL    *string `json:"image_url" binding:"omitempty,url,max=500"`
	CuisineID   *int64  `json:"cuisine_id" binding:"omitempty,min=1"`
}

type UpdateTitleRequest struct {
	Title string `json:"title" binding:"required,min=1,max=200"`
}

type Rating struct {
	RecipeID    int64      `json:"recipe_id"`
	RecipeTitle string     `json:"recipe_title,omitempty"`
	UserID      int64      `json:"user_id"`
	Username    string     `json:"username,omitempty"`
	Rating      int        `json:"rating"`
	Review      *string    `json:"review_text"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type RatingRequest struct {
	Rating int     `json:"rating" binding:"required,min=1,max=5"`
	Review *string `json:"review" binding:"omitempty,max=2000"`
}

// RatingSummary is the aggregate reported alongside a recipe's ratings.
type RatingSummary struct {
	Average float64  `json:"average_rating"`
	Count   int      `json:"total_ratings"`
	Ratings []Rating `json:"ratings"`
}

// Summarize computes the average over ratings, rounded to one decimal place;
// an unrated recipe averages 0.
func Summarize(ratings []Rating) RatingSummary {
	s := RatingSummary{Count: len(ratings), Ratings: ratings}
	if len(ratings) == 0 {
		s.Ratings = []Rating{}
		return s
	}

	total := 0
	for _, r := range ratings {
		total += r.Rating
	}
	s.Average = math.Round(float64(total)/float64(len(ratings))*10) / 10
	return s
}

type Favorite struct {
	Recipe
	FavoritedAt time.Time `json:"favorited_at"`
}

// ListFilter narrows a recipe listing; nil fields do not filter.
type ListFilter struct {
	UserID    *int64
	CuisineID *int64
}
