package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
)

const (
	colSKU = iota
	colName
	colDescription
	colPrice
	colBrand
	colCategory
	colStock
	colCreatedAt
	colUpdatedAt

	numColumns
)

// Header is the on-disk column layout. Row order is the codec's contract.
var Header = []string{
	"sku",
	"name",
	"description",
	"price",
	"brand",
	"category",
	"stock",
	"created_at",
	"updated_at",
}

func EncodeRow(p Product) []string {
	row := make([]string, numColumns)
	row[colSKU] = p.SKU
	row[colName] = p.Name
	row[colDescription] = p.Description
	row[colPrice] = strconv.FormatFloat(p.Price, 'f', -1, 64)
	row[colBrand] = p.Brand
	row[colCategory] = p.Category
	row[colStock] = strconv.Itoa(p.Stock)
	row[colCreatedAt] = p.CreatedAt.String()
	if p.UpdatedAt != nil {
		row[colUpdatedAt] = p.UpdatedAt.String()
	}
	return row
}

func DecodeRow(row []string) (Product, error) {
	if len(row) != numColumns {
		return Product{}, fmt.Errorf("%w: want %d columns, got %d", ErrMalformedRecord, numColumns, len(row))
	}
	if row[colSKU] == "" {
		return Product{}, malformed("sku", "empty")
	}

	price, err := strconv.ParseFloat(row[colPrice], 64)
	if err != nil {
		return Product{}, malformed("price", err)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return Product{}, malformed("price", row[colPrice])
	}

	stock, err := strconv.Atoi(row[colStock])
	if err != nil {
		return Product{}, malformed("stock", err)
	}
	if stock < 0 {
		return Product{}, malformed("stock", row[colStock])
	}

	created, err := civil.ParseDate(row[colCreatedAt])
	if err != nil {
		return Product{}, malformed("created_at", err)
	}

	var updated *civil.Date
	if s := row[colUpdatedAt]; s != "" {
		d, err := civil.ParseDate(s)
		if err != nil {
			return Product{}, malformed("updated_at", err)
		}
		updated = &d
	}

	return Product{
		SKU:         row[colSKU],
		Name:        row[colName],
		Description: row[colDescription],
		Price:       price,
		Brand:       row[colBrand],
		Category:    row[colCategory],
		Stock:       stock,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}, nil
}

// CheckRecord reports whether p survives a write and reload of the catalog
// file unchanged. CSV readers fold "\r\n" into "\n" even inside quoted
// fields, so carriage returns are refused in text fields.
func CheckRecord(p Product) error {
	for _, f := range []struct{ name, v string }{
		{"sku", p.SKU},
		{"name", p.Name},
		{"description", p.Description},
		{"brand", p.Brand},
		{"category", p.Category},
	} {
		if strings.ContainsRune(f.v, '\r') {
			return malformed(f.name, "carriage return")
		}
	}
	_, err := DecodeRow(EncodeRow(p))
	return err
}

func malformed(field string, cause any) error {
	return fmt.Errorf("%w: %s: %v", ErrMalformedRecord, field, cause)
}
