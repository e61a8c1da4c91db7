package restaurant

import "github.com/shopspring/decimal"

// Restaurant is a read-only catalog aggregate. The order core never
// mutates it; CRUD belongs to the catalog administration surface.
type Restaurant struct {
	Name         string          `db:"name" json:"name"`
	OpeningTime  TimeOfDay       `db:"opening_time" json:"opening_time"`
	ClosingTime  TimeOfDay       `db:"closing_time" json:"closing_time"`
	MinimumPrice decimal.Decimal `db:"minimum_price" json:"minimum_price"`
	ID           int             `db:"id" json:"id"`
	OwnerID      int             `db:"owner_id" json:"owner_id"`
}

// OpenAt reports whether the restaurant accepts orders at the given
// wall time. Both boundaries are exclusive: an order exactly at the
// opening or the closing time is rejected.
func (r *Restaurant) OpenAt(t TimeOfDay) bool {
	return r.OpeningTime < t && t < r.ClosingTime
}

// Menu is a single orderable item of a restaurant.
type Menu struct {
	Name         string          `db:"name" json:"name"`
	Price        decimal.Decimal `db:"price" json:"price"`
	ID           int             `db:"id" json:"id"`
	RestaurantID int             `db:"restaurant_id" json:"restaurant_id"`
}
