package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/scopecache"
	"github.com/unkn0wn-root/scopecache/internal/catalog"
	"github.com/unkn0wn-root/scopecache/pipeline"
)

const (
	defaultPage = 1
	defaultSize = 10
)

type productHandler struct {
	svc Catalog
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// GET /v1/products?page=&size=&sort=&desc=&name=&category=
func (h *productHandler) list(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.svc.ListProducts(r.Context(), q)
	if errors.Is(err, catalog.ErrNotFound) {
		page, err = catalog.Page{PageIndex: q.Page, PageSize: q.Size, Data: []catalog.Product{}}, nil
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *productHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *productHandler) create(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.svc.CreateProduct(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *productHandler) update(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.svc.UpdateProduct(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *productHandler) delete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *productHandler) evict(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.EvictProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func listQuery(r *http.Request) (catalog.GetProductsQuery, error) {
	v := r.URL.Query()
	q := catalog.GetProductsQuery{
		Page:     defaultPage,
		Size:     defaultSize,
		SortBy:   v.Get("sort"),
		Name:     v.Get("name"),
		Category: v.Get("category"),
	}
	var err error
	if s := v.Get("page"); s != "" {
		if q.Page, err = strconv.Atoi(s); err != nil {
			return q, invalid("page must be an integer")
		}
	}
	if s := v.Get("size"); s != "" {
		if q.Size, err = strconv.Atoi(s); err != nil {
			return q, invalid("size must be an integer")
		}
	}
	if s := v.Get("desc"); s != "" {
		if q.Desc, err = strconv.ParseBool(s); err != nil {
			return q, invalid("desc must be a boolean")
		}
	}
	return q, nil
}

func decodeInput(r *http.Request) (catalog.ProductInput, error) {
	var in catalog.ProductInput
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return in, errBodyTooLarge
		}
		return in, invalid("invalid JSON body")
	}
	return in, nil
}

var errBodyTooLarge = errors.New("request body too large")

func invalid(msg string) error {
	return &badRequest{msg: msg}
}

type badRequest struct{ msg string }

func (e *badRequest) Error() string { return e.msg }
func (e *badRequest) Unwrap() error { return pipeline.ErrInvalid }

// writeError maps service errors to status codes. Cache store failures are
// plain internal errors to the client; only the log names the store op.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, "internal_server_error"
	switch {
	case errors.Is(err, errBodyTooLarge):
		status, code = http.StatusRequestEntityTooLarge, "body_too_large"
	case errors.Is(err, pipeline.ErrInvalid):
		status, code = http.StatusBadRequest, "invalid_request"
	case errors.Is(err, catalog.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	}

	l := loggerFrom(r)
	var se *scopecache.StoreError
	if errors.As(err, &se) {
		l = l.With(zap.String("store_op", se.Op))
	}
	if status >= http.StatusInternalServerError {
		l.Error("request failed", zap.Int("status", status), zap.Error(err))
	} else {
		l.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}

	body := errorBody{Error: code}
	if status == http.StatusBadRequest {
		body.Message = strings.TrimPrefix(err.Error(), pipeline.ErrInvalid.Error()+": ")
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
