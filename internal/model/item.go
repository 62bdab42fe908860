package model

import (
	"encoding/json"
	"math"
	"time"
)

// Item is an inventory entry (a sweet) as returned by the API.
type Item struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Price       float64    `json:"price"`
	Quantity    int        `json:"quantity"`
	Image       string     `json:"image,omitempty"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at,omitzero"`
	UpdatedAt   time.Time  `json:"updated_at,omitzero"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// UnmarshalJSON accepts both "id" and the document-store style "_id".
func (it *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	var raw struct {
		plain
		DocumentID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*it = Item(raw.plain)
	if it.ID == "" {
		it.ID = raw.DocumentID
	}
	return nil
}

// Input returns the editable fields of the item.
func (it Item) Input() ItemInput {
	return ItemInput{
		Name:        it.Name,
		Category:    it.Category,
		Price:       it.Price,
		Quantity:    it.Quantity,
		Image:       it.Image,
		Description: it.Description,
	}
}

// Item categories.
const (
	CategoryChocolate = "chocolate"
	CategoryCandy     = "candy"
	CategoryGummy     = "gummy"
	CategoryHardCandy = "hard candy"
	CategoryLollipop  = "lollipop"
)

// Categories lists the categories in display order.
var Categories = []string{
	CategoryChocolate,
	CategoryCandy,
	CategoryGummy,
	CategoryHardCandy,
	CategoryLollipop,
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ValidPrice reports whether p is a finite price above zero.
func ValidPrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0)
}

// DefaultRestockAmount is how many units a single restock adds.
const DefaultRestockAmount = 10

// ItemInput is the payload for creating or updating an item.
type ItemInput struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Category    string  `json:"category" validate:"required,category"`
	Price       float64 `json:"price" validate:"gt=0,finite"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
	Image       string  `json:"image,omitempty"`
	Description string  `json:"description,omitempty" validate:"max=1000"`
}

// Validate checks the input against its field rules.
func (in ItemInput) Validate() error {
	return validateStruct(in)
}

// RestockInput is the payload for a restock request.
type RestockInput struct {
	Quantity int `json:"quantity" validate:"gt=0"`
}
