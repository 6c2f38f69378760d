package webserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/talkincode/warehouse/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := *config.DefaultAppConfig
	return NewServer(&cfg)
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestHTTPErrorRendering(t *testing.T) {
	s := newTestServer(t)
	s.GET("/teapot", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})
	s.GET("/boom", func(c echo.Context) error {
		return errors.New("disk on fire")
	})
	s.GET("/panic", func(c echo.Context) error {
		panic("unreachable")
	})

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/teapot", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.JSONEq(t, `{"message":"short and stout"}`, rec.Body.String())

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Internal Server Error"}`, rec.Body.String())

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Not Found"}`, rec.Body.String())
}

func TestRequestIDIsUnique(t *testing.T) {
	s := newTestServer(t)
	s.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	first := serve(s, httptest.NewRequest(http.MethodGet, "/", nil)).Header().Get(echo.HeaderXRequestID)
	second := serve(s, httptest.NewRequest(http.MethodGet, "/", nil)).Header().Get(echo.HeaderXRequestID)
	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

func TestInvalidJSONBody(t *testing.T) {
	s := newTestServer(t)
	s.POST("/echo", func(c echo.Context) error {
		var body map[string]interface{}
		if err := (&echo.DefaultBinder{}).BindBody(c, &body); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, body)
	})

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"name":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := serve(s, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"invalid JSON body"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"name":"ok"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = serve(s, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"ok"}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	s.GET("/products", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/products", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodGet)
	rec := serve(s, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
