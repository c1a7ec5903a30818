package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/amoylab/catalog/internal/apiserver/database"
	"github.com/amoylab/catalog/internal/common/dto"
	"github.com/amoylab/catalog/internal/common/errorx"
	"github.com/amoylab/catalog/internal/lifecycle"
	"github.com/shopspring/decimal"
)

const (
	maxNameLength = 255
	priceScale    = 2
)

// maxPrice is the first value that no longer fits decimal(10,2)
var maxPrice = decimal.New(1, 10-priceScale)

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errorx.Required("name")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", errorx.NewFieldError("name", "must be at most 255 characters", nil)
	}
	return name, nil
}

func validateDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", errorx.Required("description")
	}
	return description, nil
}

// validatePrice accepts non-negative amounts with at most two decimal places and ten digits
func validatePrice(price decimal.Decimal) (decimal.Decimal, error) {
	if price.IsNegative() {
		return price, errorx.NewFieldError("price", "must not be negative", price.String())
	}
	if !price.Equal(price.Round(priceScale)) {
		return price, errorx.NewFieldError("price", "must have at most 2 decimal places", price.String())
	}
	if price.GreaterThanOrEqual(maxPrice) {
		return price, errorx.NewFieldError("price", "must have at most 10 digits", price.String())
	}
	return price.Round(priceScale), nil
}

// applyFields copies the fields present in in onto p. With partial false
// name, description and price must all be present.
func applyFields(p *database.Product, in *dto.ProductRequest, partial bool) error {
	if !partial {
		switch {
		case in.Name == nil:
			return errorx.Required("name")
		case in.Description == nil:
			return errorx.Required("description")
		case in.Price == nil:
			return errorx.Required("price")
		}
	}
	if in.Name != nil {
		name, err := validateName(*in.Name)
		if err != nil {
			return err
		}
		p.Name = name
	}
	if in.Description != nil {
		description, err := validateDescription(*in.Description)
		if err != nil {
			return err
		}
		p.Description = description
	}
	if in.Price != nil {
		price, err := validatePrice(*in.Price)
		if err != nil {
			return err
		}
		p.Price = price
	}
	return nil
}

// orderings maps the ordering parameter onto store columns
var orderings = map[string]string{
	"created_at": database.OrderCreatedAt,
	"price":      database.OrderPrice,
	"name":       database.OrderName,
}

// parseOrdering reads "field" or "-field"; anything else orders newest first
func parseOrdering(s string) (string, bool) {
	s = strings.TrimSpace(s)
	desc := strings.HasPrefix(s, "-")
	if col, ok := orderings[strings.TrimPrefix(s, "-")]; ok {
		return col, desc
	}
	return database.OrderCreatedAt, true
}

func parsePriceBound(field, raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, errorx.NewFieldError(field, "must be a decimal number", raw)
	}
	return &d, nil
}

// buildQuery converts collection parameters into a store query.
// It returns the normalized page and page size alongside.
func buildQuery(in *dto.ProductQuery) (database.ProductQuery, int, int, error) {
	if in == nil {
		in = &dto.ProductQuery{}
	}
	q := database.ProductQuery{
		BusinessName: strings.TrimSpace(in.Business),
		Search:       strings.TrimSpace(in.Search),
	}
	if in.Status != "" {
		st, err := lifecycle.ParseStatus(in.Status)
		if err != nil {
			return q, 0, 0, err
		}
		q.Status = &st
	}
	var err error
	if q.MinPrice, err = parsePriceBound("min_price", in.MinPrice); err != nil {
		return q, 0, 0, err
	}
	if q.MaxPrice, err = parsePriceBound("max_price", in.MaxPrice); err != nil {
		return q, 0, 0, err
	}
	q.OrderBy, q.Desc = parseOrdering(in.Ordering)

	page, pageSize := normalizePage(in.Page, in.PageSize)
	q.Offset = (page - 1) * pageSize
	q.Limit = pageSize
	return q, page, pageSize, nil
}
