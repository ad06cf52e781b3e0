package ingredient

import (
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("ingredient not found")
	ErrNameTaken = errors.New("ingredient already exists")
)

type Ingredient struct {
	ID        int64     `json:"ingredient_id"`
	Name      string    `json:"name"`
	Unit      *string   `json:"unit"`
	CreatedAt time.Time `json:"created_at"`
}

type UpsertIngredientRequest struct {
	Name string  `json:"name" binding:"required,min=1,max=100"`
	Unit *string `json:"unit" binding:"omitempty,max=30"`
}
