package api

import (
	"math"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/talkincode/warehouse/internal/domain"
	"github.com/talkincode/warehouse/internal/webserver"
)

// registerStockRoutes registers the stock overwrite endpoints. Delivery
// and restocking both set the absolute quantity sent by the client.
func registerStockRoutes(srv *webserver.Server, h *Handler) {
	srv.PUT("/delivered/:id", h.setStock)
	srv.PUT("/addstock/:id", h.setStock)
}

func (h *Handler) setStock(c echo.Context) error {
	var body domain.StockUpdate
	if err := bindBody(c, &body); err != nil {
		return err
	}
	stock, err := parseStock(body.Stock)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}

	ctx, cancel := h.opContext(c)
	defer cancel()

	id := c.Param("id")
	result, err := h.store.SetStock(ctx, id, stock, h.opts.LegacyMode)
	if err != nil {
		return storeError(err)
	}
	if !result.Found() {
		return c.JSON(http.StatusNotFound, Result{Success: false, Message: "Product not found"})
	}
	h.publish(domain.ProductUpdated, id, &stock)
	return done(c, "Stock updated successfully")
}

var errBadStock = errors.New("stock must be a number")

// parseStock accepts whole JSON numbers and numeric strings. Missing,
// null, boolean and fractional values are rejected.
func parseStock(v interface{}) (int64, error) {
	switch n := v.(type) {
	case nil, bool:
		return 0, errBadStock
	case float64:
		if n != math.Trunc(n) {
			return 0, errBadStock
		}
	}
	stock, err := cast.ToInt64E(v)
	if err != nil {
		return 0, errBadStock
	}
	return stock, nil
}
