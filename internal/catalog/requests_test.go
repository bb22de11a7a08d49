package catalog

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/scopecache/keys"
)

func TestGetProductsQueryBaseKey(t *testing.T) {
	q := GetProductsQuery{Page: 1, Size: 5}
	require.Equal(t, "product:list:7994b746b94d4a87", q.BaseKey())

	// name and category fold case and whitespace; sort does not
	a := GetProductsQuery{Page: 1, Size: 5, Name: " iPhone ", Category: "Apple"}
	b := GetProductsQuery{Page: 1, Size: 5, Name: "iphone", Category: "apple"}
	require.Equal(t, a.BaseKey(), b.BaseKey())
	require.NotEqual(t,
		GetProductsQuery{Page: 1, Size: 5, SortBy: "Name"}.BaseKey(),
		GetProductsQuery{Page: 1, Size: 5, SortBy: "name"}.BaseKey())
	require.NotEqual(t, q.BaseKey(), GetProductsQuery{Page: 2, Size: 5}.BaseKey())
	require.NotEqual(t, q.BaseKey(), GetProductsQuery{Page: 1, Size: 5, Desc: true}.BaseKey())
}

func TestGetProductsQueryScopes(t *testing.T) {
	require.Equal(t, keys.Scopes{"product:list:ver"}, GetProductsQuery{Page: 1, Size: 5}.VersionScopes())
	require.Equal(t,
		keys.Scopes{"product:list:ver", "product:list:ver:name:iphone", "product:list:ver:category:apple"},
		GetProductsQuery{Page: 1, Size: 5, Name: " iPhone", Category: "Apple "}.VersionScopes())
}

func TestCommandScopes(t *testing.T) {
	create := CreateProductCommand{ProductInput{Name: "x", Category: []string{"apple", "Phones", "APPLE"}}}
	require.Equal(t,
		keys.Scopes{"product:list:ver", "product:list:ver:category:apple", "product:list:ver:category:phones"},
		create.VersionScopesToBump())

	update := UpdateProductCommand{ID: "p1", ProductInput: ProductInput{Name: "x"}}
	require.Equal(t, keys.Scopes{"product:list:ver"}, update.VersionScopesToBump())

	del := DeleteProductCommand{ID: "p1"}
	require.Equal(t, keys.Scopes{"product:list:ver"}, del.VersionScopesToBump())
	require.Equal(t, "product:detail:p1", del.InvalidateKey())
	require.Equal(t, "product:detail:p1", EvictProductCommand{ID: "p1"}.InvalidateKey())
	require.Equal(t, "product:detail:p1", GetProductQuery{ID: "p1"}.CacheKey())
}

func TestValidation(t *testing.T) {
	require.NoError(t, GetProductsQuery{Page: 1, Size: 200}.Validate())
	require.Error(t, GetProductsQuery{Page: 0, Size: 5}.Validate())
	require.NoError(t, GetProductsQuery{Page: maxPage, Size: maxPageSize}.Validate())
	require.Error(t, GetProductsQuery{Page: maxPage + 1, Size: 5}.Validate())
	require.Error(t, GetProductsQuery{Page: math.MaxInt/128 + 2, Size: 128}.Validate())
	require.Error(t, GetProductsQuery{Page: 1, Size: 201}.Validate())
	require.Error(t, GetProductQuery{}.Validate())

	require.NoError(t, CreateProductCommand{ProductInput{Name: "iPhone", PriceCents: 100}}.Validate())
	require.Error(t, CreateProductCommand{ProductInput{Name: " "}}.Validate())
	require.Error(t, CreateProductCommand{ProductInput{Name: "x", PriceCents: -1}}.Validate())
	require.Error(t, CreateProductCommand{ProductInput{Name: "x", Category: []string{" "}}}.Validate())
	require.Error(t, UpdateProductCommand{ProductInput: ProductInput{Name: "x"}}.Validate())
	require.Error(t, DeleteProductCommand{}.Validate())
}
