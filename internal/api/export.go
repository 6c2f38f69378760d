package api

import (
	"net/http"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/talkincode/warehouse/internal/domain"
	"github.com/talkincode/warehouse/internal/webserver"
)

type productCSV struct {
	ID           string  `csv:"_id"`
	Name         string  `csv:"name"`
	Price        float64 `csv:"price"`
	Stock        int64   `csv:"stock"`
	SupplierName string  `csv:"supplierName"`
	Image        string  `csv:"image"`
	Quote        string  `csv:"quote"`
	Email        string  `csv:"email"`
}

func toCSV(products []domain.Product) []productCSV {
	rows := make([]productCSV, 0, len(products))
	for _, p := range products {
		rows = append(rows, productCSV{
			ID:           p.ID.Hex(),
			Name:         p.Name,
			Price:        p.Price,
			Stock:        p.Stock,
			SupplierName: p.SupplierName,
			Image:        p.Image,
			Quote:        p.Quote,
			Email:        p.Email,
		})
	}
	return rows
}

func registerExportRoutes(srv *webserver.Server, h *Handler) {
	srv.GET("/export/products.csv", h.exportProducts)
}

func (h *Handler) exportProducts(c echo.Context) error {
	ctx, cancel := h.opContext(c)
	defer cancel()

	products, err := h.store.ListAll(ctx)
	if err != nil {
		return storeError(err)
	}
	data, err := gocsv.MarshalBytes(toCSV(products))
	if err != nil {
		return errors.Wrap(err, "encode csv")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}
