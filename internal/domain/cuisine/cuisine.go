package cuisine

import (
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("cuisine not found")
	ErrNameTaken = errors.New("cuisine already exists")
)

type Cuisine struct {
	ID          int64     `json:"cuisine_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type UpsertCuisineRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
}
