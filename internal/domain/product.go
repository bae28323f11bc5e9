package domain

import "time"

// ProductStatus enumerates listing states.
type ProductStatus string

const (
	ProductStatusActive  ProductStatus = "active"
	ProductStatusSold    ProductStatus = "sold"
	ProductStatusRemoved ProductStatus = "removed"
)

// Product is a marketplace listing priced in RotCoins.
type Product struct {
	ID          string
	SellerID    string
	Title       string
	Description string
	Price       int64
	Status      ProductStatus
	BuyerID     *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
