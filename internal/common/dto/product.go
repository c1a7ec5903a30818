package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductRequest is the body of create, full update and partial update.
// Price accepts a JSON number or string.
type ProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Status      *string          `json:"status"`
}

// ApproveRequest is the body of the approve action
type ApproveRequest struct {
	Approved *bool `json:"approved"`
}

// ProductQuery holds the collection query parameters
type ProductQuery struct {
	Status   string `form:"status"`
	Business string `form:"business"`
	MinPrice string `form:"min_price"`
	MaxPrice string `form:"max_price"`
	Search   string `form:"search"`
	Ordering string `form:"ordering"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ProductResponse is the public view of a product
type ProductResponse struct {
	ID           uint       `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Price        string     `json:"price"`
	Status       string     `json:"status"`
	BusinessID   uint       `json:"business_id"`
	BusinessName string     `json:"business_name"`
	CreatedBy    *uint      `json:"created_by"`
	ApprovedBy   *uint      `json:"approved_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	ApprovedAt   *time.Time `json:"approved_at"`
}

// Page is one page of a collection
type Page[T any] struct {
	Count    int64 `json:"count"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Results  []T   `json:"results"`
}
