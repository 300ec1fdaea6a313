package catalog

import "errors"

var (
	ErrDuplicateSKU    = errors.New("product with sku already exists")
	ErrNotFound        = errors.New("product not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrLockTimeout     = errors.New("catalog lock timeout")
	ErrMalformedRecord = errors.New("malformed record")
	ErrNoScope         = errors.New("unit of work not started")
)
