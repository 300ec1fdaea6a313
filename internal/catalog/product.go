package catalog

import "cloud.google.com/go/civil"

type Product struct {
	SKU         string      `json:"sku"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       float64     `json:"price"`
	Brand       string      `json:"brand"`
	Category    string      `json:"category"`
	Stock       int         `json:"stock"`
	CreatedAt   civil.Date  `json:"created_at"`
	UpdatedAt   *civil.Date `json:"updated_at"`
}

// Equal reports full-field equality. UpdatedAt compares by value, so two
// products loaded separately are equal when their dates match.
func (p Product) Equal(o Product) bool {
	if p.SKU != o.SKU ||
		p.Name != o.Name ||
		p.Description != o.Description ||
		p.Price != o.Price ||
		p.Brand != o.Brand ||
		p.Category != o.Category ||
		p.Stock != o.Stock ||
		p.CreatedAt != o.CreatedAt {
		return false
	}
	if p.UpdatedAt == nil || o.UpdatedAt == nil {
		return p.UpdatedAt == nil && o.UpdatedAt == nil
	}
	return *p.UpdatedAt == *o.UpdatedAt
}

// clone detaches UpdatedAt so callers cannot mutate repository state through it.
func (p Product) clone() Product {
	if p.UpdatedAt != nil {
		d := *p.UpdatedAt
		p.UpdatedAt = &d
	}
	return p
}

type NewProduct struct {
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Brand       string  `json:"brand"`
	Category    string  `json:"category"`
	Stock       int     `json:"stock"`
}

// ProductPatch carries an edit; nil fields keep their current value.
type ProductPatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Brand       *string  `json:"brand"`
	Category    *string  `json:"category"`
	Stock       *int     `json:"stock"`
}

func (pp ProductPatch) apply(p Product) Product {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Brand != nil {
		p.Brand = *pp.Brand
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.Stock != nil {
		p.Stock = *pp.Stock
	}
	return p
}
