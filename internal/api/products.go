package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/talkincode/warehouse/internal/domain"
	"github.com/talkincode/warehouse/internal/store"
	"github.com/talkincode/warehouse/internal/webserver"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// registerProductRoutes registers the product read and CRUD endpoints
func registerProductRoutes(srv *webserver.Server, h *Handler) {
	srv.GET("/products", h.listProducts)
	srv.GET("/productsList", h.listProductPage)
	srv.GET("/productsCount", h.countProducts)
	srv.GET("/inventory/:id", h.getProduct)
	srv.GET("/product/:id", h.getProduct)
	srv.POST("/product", h.createProduct)
	srv.PUT("/product/:id", h.updateProduct)
	srv.DELETE("/product/:id", h.deleteProduct)
}

func (h *Handler) listProducts(c echo.Context) error {
	ctx, cancel := h.opContext(c)
	defer cancel()

	products, err := h.store.ListAll(ctx)
	if err != nil {
		return storeError(err)
	}
	return ok(c, products)
}

// listProductPage passes page and limit through unchecked; unparseable
// values count as zero.
func (h *Handler) listProductPage(c echo.Context) error {
	page := cast.ToInt64(c.QueryParam("page"))
	limit := cast.ToInt64(c.QueryParam("limit"))

	ctx, cancel := h.opContext(c)
	defer cancel()

	products, err := h.store.ListPage(ctx, page, limit)
	if err != nil {
		return storeError(err)
	}
	return ok(c, products)
}

func (h *Handler) countProducts(c echo.Context) error {
	ctx, cancel := h.opContext(c)
	defer cancel()

	count, err := h.store.Count(ctx)
	if err != nil {
		return storeError(err)
	}
	return ok(c, map[string]int64{"count": count})
}

func (h *Handler) getProduct(c echo.Context) error {
	ctx, cancel := h.opContext(c)
	defer cancel()

	p, err := h.store.GetByID(ctx, c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		if h.opts.LegacyMode {
			return ok(c, nil)
		}
		return fail(c, http.StatusNotFound, "Product not found")
	} else if err != nil {
		return storeError(err)
	}
	return ok(c, p)
}

func (h *Handler) createProduct(c echo.Context) error {
	var p domain.Product
	if err := bindBody(c, &p); err != nil {
		return err
	}
	p.ID = primitive.NilObjectID

	ctx, cancel := h.opContext(c)
	defer cancel()

	id, err := h.store.Insert(ctx, &p)
	if err != nil {
		return storeError(err)
	}
	h.publish(domain.ProductCreated, id.Hex(), &p.Stock)

	return c.JSON(http.StatusOK, Result{
		Success:    true,
		Message:    "Product added successfully",
		InsertedID: id.Hex(),
	})
}

// updateProduct replaces every editable field; omitted fields are
// cleared, not kept.
func (h *Handler) updateProduct(c echo.Context) error {
	var p domain.Product
	if err := bindBody(c, &p); err != nil {
		return err
	}

	ctx, cancel := h.opContext(c)
	defer cancel()

	id := c.Param("id")
	result, err := h.store.Replace(ctx, id, &p, h.opts.LegacyMode)
	if err != nil {
		return storeError(err)
	}
	if !result.Found() {
		return c.JSON(http.StatusNotFound, Result{Success: false, Message: "Product not found"})
	}
	h.publish(domain.ProductUpdated, id, &p.Stock)
	return done(c, "Product updated successfully")
}

func (h *Handler) deleteProduct(c echo.Context) error {
	ctx, cancel := h.opContext(c)
	defer cancel()

	id := c.Param("id")
	deleted, err := h.store.Delete(ctx, id)
	if err != nil {
		return storeError(err)
	}
	if deleted == 0 && !h.opts.LegacyMode {
		return c.JSON(http.StatusNotFound, Result{Success: false, Message: "Product not found"})
	}
	if deleted > 0 {
		h.publish(domain.ProductDeleted, id, nil)
	}
	return done(c, "Product deleted successfully")
}
