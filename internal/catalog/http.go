package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ProductCatalog/pkg/kit"
)

const readyTimeout = 1 * time.Second

type Server struct {
	Service *Service
	Log     *zap.Logger
	// Ping reports whether the backing store can take writes. Nil means
	// always ready.
	Ping func(ctx context.Context) error
}

type createReq struct {
	SKU         *string  `json:"sku"`
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Brand       *string  `json:"brand"`
	Category    *string  `json:"category"`
	Stock       *int     `json:"stock"`
}

// product converts the request, listing every field that was not sent.
func (c createReq) product() (NewProduct, []string) {
	var missing []string
	str := func(name string, v *string) string {
		if v == nil {
			missing = append(missing, name)
			return ""
		}
		return *v
	}

	in := NewProduct{
		SKU:         str("sku", c.SKU),
		Name:        str("name", c.Name),
		Description: str("description", c.Description),
		Brand:       str("brand", c.Brand),
		Category:    str("category", c.Category),
	}
	if c.Price == nil {
		missing = append(missing, "price")
	} else {
		in.Price = *c.Price
	}
	if c.Stock == nil {
		missing = append(missing, "stock")
	} else {
		in.Stock = *c.Stock
	}
	return in, missing
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if s.Ping == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.Ping(ctx); err != nil {
		s.log().Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	in, missing := req.product()
	if len(missing) > 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "missing fields", map[string]any{"fields": missing})
		return
	}

	p, err := s.Service.AddProduct(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err, in.SKU)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	products, err := s.Service.ListProducts(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	sku, ok := skuParam(w, r)
	if !ok {
		return
	}

	p, err := s.Service.GetProduct(r.Context(), sku)
	if err != nil {
		s.writeServiceError(w, r, err, sku)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) edit(w http.ResponseWriter, r *http.Request) {
	sku, ok := skuParam(w, r)
	if !ok {
		return
	}

	var patch ProductPatch
	if err := kit.DecodeJSON(w, r, &patch); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	p, err := s.Service.EditProduct(r.Context(), sku, patch)
	if err != nil {
		s.writeServiceError(w, r, err, sku)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	sku, ok := skuParam(w, r)
	if !ok {
		return
	}

	if err := s.Service.RemoveProduct(r.Context(), sku); err != nil {
		s.writeServiceError(w, r, err, sku)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// skuParam returns the decoded {sku} segment. chi routes on the escaped path
// whenever the request carries one, for example a SKU containing "/" sent as
// "%2F", and hands back the segment still escaped.
func skuParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	sku := chi.URLParam(r, "sku")
	if r.URL.RawPath == "" {
		return sku, true
	}

	decoded, err := url.PathUnescape(sku)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad sku", map[string]any{"sku": sku})
		return "", false
	}
	return decoded, true
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, sku string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, ErrDuplicateSKU):
		kit.WriteError(w, r, http.StatusConflict, "duplicate sku", map[string]any{"sku": sku})
	case errors.Is(err, ErrNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"sku": sku})
	case errors.Is(err, ErrLockTimeout):
		w.Header().Set("Retry-After", "1")
		kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog busy", nil)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		kit.WriteError(w, r, http.StatusGatewayTimeout, "timeout", nil)
	default:
		s.log().Error("catalog operation failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("sku", sku),
		)
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func (s *Server) log() *zap.Logger { return orNop(s.Log) }
