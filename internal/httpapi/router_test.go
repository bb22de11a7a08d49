package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/unkn0wn-root/scopecache"
	"github.com/unkn0wn-root/scopecache/internal/catalog"
	"github.com/unkn0wn-root/scopecache/provider/ristretto"
	vs "github.com/unkn0wn-root/scopecache/versionstore"
)

func newServer(t *testing.T) (*httptest.Server, *prometheus.Registry) {
	t.Helper()
	p, err := ristretto.New(ristretto.Config{NumCounters: 1e4, MaxCost: 1 << 20, BufferItems: 64, SyncWrites: true})
	require.NoError(t, err)
	c, err := scopecache.New(scopecache.Options{Provider: p, Versions: vs.NewLocal()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(context.Background()) })

	svc, err := catalog.NewService(c, catalog.NewMemory(), zaptest.NewLogger(t), "json")
	require.NoError(t, err)
	return newServerFor(t, svc)
}

func newServerFor(t *testing.T, svc Catalog) (*httptest.Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	h, err := NewRouter(Config{Catalog: svc, Logger: zaptest.NewLogger(t), Registry: reg})
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, reg
}

func do(t *testing.T, method, url, payload string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(payload))
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, body
}

func TestProductLifecycle(t *testing.T) {
	srv, _ := newServer(t)
	base := srv.URL + "/v1/products"

	res, body := do(t, http.MethodPost, base, `{"name":"iPhone 15","category":["apple"],"price_cents":90000,"quantity":3}`)
	require.Equal(t, http.StatusCreated, res.StatusCode, string(body))
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
	var created catalog.Product
	require.NoError(t, json.Unmarshal(body, &created))
	require.Equal(t, "p000001", created.ID)

	res, body = do(t, http.MethodGet, base+"?page=1&size=5&category=Apple", "")
	require.Equal(t, http.StatusOK, res.StatusCode, string(body))
	var page catalog.Page
	require.NoError(t, json.Unmarshal(body, &page))
	require.EqualValues(t, 1, page.Count)
	require.Equal(t, 5, page.PageSize)
	require.Equal(t, "iPhone 15", page.Data[0].Name)

	res, body = do(t, http.MethodPut, base+"/"+created.ID, `{"name":"iPhone 15 Pro","category":["apple"],"quantity":1}`)
	require.Equal(t, http.StatusOK, res.StatusCode, string(body))

	res, body = do(t, http.MethodGet, base+"/"+created.ID, "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var got catalog.Product
	require.NoError(t, json.Unmarshal(body, &got))
	require.Equal(t, "iPhone 15 Pro", got.Name)

	res, _ = do(t, http.MethodDelete, base+"/"+created.ID+"/cache", "")
	require.Equal(t, http.StatusNoContent, res.StatusCode)

	res, _ = do(t, http.MethodDelete, base+"/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, res.StatusCode)

	res, _ = do(t, http.MethodGet, base+"/"+created.ID, "")
	require.Equal(t, http.StatusNotFound, res.StatusCode)

	res, body = do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, json.Unmarshal(body, &page))
	require.Empty(t, page.Data)
	require.Equal(t, 10, page.PageSize)
}

func TestBadRequests(t *testing.T) {
	srv, _ := newServer(t)
	base := srv.URL + "/v1/products"

	cases := []struct {
		method, url, body string
		status            int
	}{
		{http.MethodGet, base + "?page=x", "", http.StatusBadRequest},
		{http.MethodGet, base + "?size=0", "", http.StatusBadRequest},
		{http.MethodGet, base + "?desc=maybe", "", http.StatusBadRequest},
		{http.MethodPost, base, `{"name":`, http.StatusBadRequest},
		{http.MethodPost, base, `{"name":"x","colour":"red"}`, http.StatusBadRequest},
		{http.MethodPost, base, `{"name":" "}`, http.StatusBadRequest},
		{http.MethodPost, base, `{"name":"x","price_cents":-5}`, http.StatusBadRequest},
		{http.MethodPut, base + "/p999999", `{"name":"x"}`, http.StatusNotFound},
	}
	for _, tc := range cases {
		res, body := do(t, tc.method, tc.url, tc.body)
		assert.Equal(t, tc.status, res.StatusCode, "%s %s: %s", tc.method, tc.url, body)
	}

	res, body := do(t, http.MethodGet, base+"?size=0", "")
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	var eb errorBody
	require.NoError(t, json.Unmarshal(body, &eb))
	require.Equal(t, "invalid_request", eb.Error)
	require.Contains(t, eb.Message, "size must be between 1 and 200")
}

func TestBodyLimit(t *testing.T) {
	h, err := NewRouter(Config{Catalog: stubCatalog{}, MaxBody: 64})
	require.NoError(t, err)

	body := `{"name":"` + strings.Repeat("a", 100) + `"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/products", strings.NewReader(body)))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	srv, reg := newServer(t)

	res, body := do(t, http.MethodGet, srv.URL+"/healthz", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "ok", string(body))

	do(t, http.MethodGet, srv.URL+"/v1/products/p000042", "")

	n, err := testutil.GatherAndCount(reg, "catalog_http_latency_seconds")
	require.NoError(t, err)
	require.Equal(t, 2, n, "one series per route/method/status")

	res, body = do(t, http.MethodGet, srv.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, string(body), `route="/v1/products/{id}`)
	require.NotContains(t, string(body), "p000042")
}

// stubCatalog fails every call with err.
type stubCatalog struct{ err error }

func (s stubCatalog) ListProducts(context.Context, catalog.GetProductsQuery) (catalog.Page, error) {
	return catalog.Page{}, s.err
}
func (s stubCatalog) GetProduct(context.Context, string) (catalog.Product, error) {
	return catalog.Product{}, s.err
}
func (s stubCatalog) CreateProduct(context.Context, catalog.ProductInput) (catalog.Product, error) {
	return catalog.Product{}, s.err
}
func (s stubCatalog) UpdateProduct(context.Context, string, catalog.ProductInput) (catalog.Product, error) {
	return catalog.Product{}, s.err
}
func (s stubCatalog) DeleteProduct(context.Context, string) (catalog.Product, error) {
	return catalog.Product{}, s.err
}
func (s stubCatalog) EvictProduct(context.Context, string) error { return s.err }

func TestStoreFailuresLookLikeInternalErrors(t *testing.T) {
	storeErr := &scopecache.StoreError{Op: "versions", Err: errors.New("connection refused")}
	core, logs := observer.New(zap.ErrorLevel)
	h, err := NewRouter(Config{Catalog: stubCatalog{err: storeErr}, Logger: zap.New(core)})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/products/p1", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"internal_server_error"}`, rec.Body.String())

	entries := logs.FilterMessage("request failed").All()
	require.Len(t, entries, 1)
	require.Equal(t, "versions", entries[0].ContextMap()["store_op"])

	plain := httptest.NewRecorder()
	h2, err := NewRouter(Config{Catalog: stubCatalog{err: errors.New("disk on fire")}})
	require.NoError(t, err)
	h2.ServeHTTP(plain, httptest.NewRequest(http.MethodGet, "/v1/products/p1", nil))
	require.Equal(t, plain.Code, rec.Code)
	require.Equal(t, plain.Body.String(), rec.Body.String(), "cache failures are indistinguishable from other internal errors")

	inv := &scopecache.InvalidateError{Bumps: map[string]error{"product:list:ver": storeErr}}
	srv, _ := newServerFor(t, stubCatalog{err: inv})
	res, body := do(t, http.MethodDelete, srv.URL+"/v1/products/p1", "")
	require.Equal(t, http.StatusInternalServerError, res.StatusCode)
	require.NotContains(t, string(body), "cache")
}

func TestRecovererReturns500(t *testing.T) {
	core := zap.NewNop()
	h := Recoverer()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	h = LoggingContext(core)(h)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "internal_server_error")
}
