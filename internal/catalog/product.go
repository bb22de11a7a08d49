// Package catalog is the product catalog served through the cached pipeline:
// paged product lists and product details are read through scopecache, and
// mutations bump the list scopes they affect.
package catalog

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("catalog: product not found")

type Product struct {
	ID          string    `json:"id" cbor:"id" msgpack:"id"`
	Name        string    `json:"name" cbor:"name" msgpack:"name"`
	Description string    `json:"description,omitempty" cbor:"description,omitempty" msgpack:"description,omitempty"`
	ImageFile   string    `json:"image_file,omitempty" cbor:"image_file,omitempty" msgpack:"image_file,omitempty"`
	Category    []string  `json:"category" cbor:"category" msgpack:"category"`
	PriceCents  int64     `json:"price_cents" cbor:"price_cents" msgpack:"price_cents"`
	Quantity    int       `json:"quantity" cbor:"quantity" msgpack:"quantity"`
	CreatedAt   time.Time `json:"created_at" cbor:"created_at" msgpack:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" cbor:"updated_at" msgpack:"updated_at"`
}

// Page is one page of a product listing.
type Page struct {
	PageIndex int       `json:"page_index" cbor:"page_index" msgpack:"page_index"`
	PageSize  int       `json:"page_size" cbor:"page_size" msgpack:"page_size"`
	Count     int64     `json:"count" cbor:"count" msgpack:"count"`
	Data      []Product `json:"data" cbor:"data" msgpack:"data"`
}
