package api

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	// payloadContextKey holds the verified token payload
	payloadContextKey = "user"
	gateErrorKey      = "gate_error"

	unauthorizedMessage = "unauthorized access"
	forbiddenMessage    = "Forbidden access"
)

// AccessGate requires "Authorization: Bearer <token>". A missing or
// malformed header stops the request with 401, a token that fails
// verification with 403.
func (h *Handler) AccessGate() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  payloadContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			payload, err := h.tokens.Verify(token)
			if err != nil {
				c.Set(gateErrorKey, err)
				return nil, err
			}
			return payload, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if verr, ok := c.Get(gateErrorKey).(error); ok {
				zap.L().Debug("token rejected", zap.String("namespace", "api"), zap.Error(verr))
				return fail(c, http.StatusForbidden, forbiddenMessage)
			}
			return fail(c, http.StatusUnauthorized, unauthorizedMessage)
		},
	})
}

// tokenPayload returns the payload stored by AccessGate
func tokenPayload(c echo.Context) map[string]interface{} {
	payload, _ := c.Get(payloadContextKey).(map[string]interface{})
	return payload
}
