package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/talkincode/warehouse/internal/auth"
	"github.com/talkincode/warehouse/internal/webserver"
)

func registerAuthRoutes(srv *webserver.Server, h *Handler) {
	srv.POST("/signin", h.signin)
	srv.GET("/myproduct", h.myProducts, h.AccessGate())
}

// signin signs whatever JSON object the caller sends
func (h *Handler) signin(c echo.Context) error {
	payload := map[string]interface{}{}
	if err := bindBody(c, &payload); err != nil {
		return err
	}
	token, err := h.tokens.Issue(payload)
	if err != nil {
		return errors.Wrap(err, "issue token")
	}
	return ok(c, map[string]string{"accessToken": token})
}

// myProducts lists the caller's own products; the email query parameter
// must match the token's email claim.
func (h *Handler) myProducts(c echo.Context) error {
	email := c.QueryParam("email")
	identity, err := auth.DecodeIdentity(tokenPayload(c))
	if err != nil || identity.Email == "" || identity.Email != email {
		return fail(c, http.StatusForbidden, forbiddenMessage)
	}

	ctx, cancel := h.opContext(c)
	defer cancel()

	products, err := h.store.ListByOwner(ctx, email)
	if err != nil {
		return storeError(err)
	}
	return ok(c, products)
}
