package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/talkincode/warehouse/internal/auth"
	"github.com/talkincode/warehouse/internal/domain"
	"github.com/talkincode/warehouse/internal/events"
	"github.com/talkincode/warehouse/internal/store"
	"github.com/talkincode/warehouse/internal/webserver"
	"go.uber.org/zap"
)

const livenessMessage = "Warehouse Management server is running!"

// Result is the envelope returned by mutating routes
type Result struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	InsertedID string `json:"insertedId,omitempty"`
}

// Options tune handler behavior
type Options struct {
	// LegacyMode answers misses with empty payloads and upserts on
	// update, as the first revisions of the service did.
	LegacyMode bool
	// OpTimeout bounds each store call; zero disables the bound.
	OpTimeout time.Duration
}

// Handler serves the warehouse routes over a ProductStore
type Handler struct {
	store  store.ProductStore
	tokens *auth.TokenService
	bus    *events.Bus
	opts   Options
}

func NewHandler(st store.ProductStore, tokens *auth.TokenService, bus *events.Bus, opts Options) *Handler {
	return &Handler{store: st, tokens: tokens, bus: bus, opts: opts}
}

// Register mounts every route on srv
func Register(srv *webserver.Server, h *Handler) {
	srv.GET("/", h.liveness)
	srv.GET("/healthz", h.health)

	registerAuthRoutes(srv, h)
	registerProductRoutes(srv, h)
	registerStockRoutes(srv, h)
	registerExportRoutes(srv, h)
}

func (h *Handler) liveness(c echo.Context) error {
	return c.String(http.StatusOK, livenessMessage)
}

func (h *Handler) health(c echo.Context) error {
	ctx, cancel := h.opContext(c)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		zap.L().Warn("store ping failed", zap.String("namespace", "api"), zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) opContext(c echo.Context) (context.Context, context.CancelFunc) {
	if h.opts.OpTimeout <= 0 {
		return context.WithCancel(c.Request().Context())
	}
	return context.WithTimeout(c.Request().Context(), h.opts.OpTimeout)
}

func (h *Handler) publish(action, id string, stock *int64) {
	h.bus.Publish(domain.ProductEvent{Action: action, ID: id, Stock: stock})
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func done(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, Result{Success: true, Message: msg})
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, webserver.ErrorResponse{Message: msg})
}

// storeError turns a store failure into the matching HTTP error
func storeError(err error) error {
	switch {
	case errors.Is(err, store.ErrInvalidID):
		return echo.NewHTTPError(http.StatusBadRequest, store.ErrInvalidID.Error()).SetInternal(err)
	case errors.Is(err, store.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, store.ErrNotFound.Error()).SetInternal(err)
	default:
		return errors.Wrap(err, "store")
	}
}

func bindBody(c echo.Context, i interface{}) error {
	return (&echo.DefaultBinder{}).BindBody(c, i)
}
