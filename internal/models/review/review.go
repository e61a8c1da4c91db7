package review

import "time"

// Star rating bounds, inclusive.
const (
	MinStar = 1
	MaxStar = 5
)

// ValidStar reports whether star lies within [MinStar, MaxStar].
func ValidStar(star int) bool {
	return star >= MinStar && star <= MaxStar
}

// Review is attached to exactly one finished order. The restaurant id
// is denormalized to support listing by restaurant and star range.
type Review struct {
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	ID           string    `db:"id" json:"id"`
	OrderID      string    `db:"order_id" json:"order_id"`
	Content      string    `db:"content" json:"content"`
	RestaurantID int       `db:"restaurant_id" json:"restaurant_id"`
	Star         int       `db:"star" json:"star"`
}
