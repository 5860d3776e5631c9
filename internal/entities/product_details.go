package entities

import (
	"time"

	"github.com/google/uuid"
)

// MaxProductDetailsLength caps a single snippet, counted in characters.
const MaxProductDetailsLength = 5000

// ProductDetails is a free-text knowledge snippet the bot uses as context.
type ProductDetails struct {
	ID                 string    `json:"_id" bson:"_id"`
	CompanyInstagramID string    `json:"company_instagram_id" bson:"company_instagram_id"`
	Details            string    `json:"details" bson:"details"`
	CreatedAt          time.Time `json:"created_at" bson:"created_at"`
}

// NewProductDetailsID returns a UUIDv7. The ids sort in creation order, so
// every backend breaks created_at ties the same way: (created_at, id).
func NewProductDetailsID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Page selects a window of a listing.
type Page struct {
	Page      int
	Limit     int
	SortBy    string
	Ascending bool
}

// Offset returns the number of records to skip.
func (p Page) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}
