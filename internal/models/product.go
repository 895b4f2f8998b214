package models

import "time"

type Product struct {
	ID            string
	Name          string
	Description   string
	Category      string
	OriginalPrice int64
	DiscountPrice int64
	Stock         int
	ImageURLs     []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ShopStock is the per-shop slice of a product's total stock.
type ShopStock struct {
	ProductID string
	ShopID    string
	Stock     int
	UpdatedAt time.Time
}
