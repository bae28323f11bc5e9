package dto

import "time"

// CreateProductRequest payload for new listings.
type CreateProductRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
}

// ProductResponse is the listing shape.
type ProductResponse struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"seller_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Price       int64     `json:"price"`
	Status      string    `json:"status"`
	BuyerID     *string   `json:"buyer_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
