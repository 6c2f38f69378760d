package webserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bwmarrin/snowflake"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/talkincode/warehouse/config"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Message string `json:"message"`
}

// Server wraps the echo instance serving the warehouse API
type Server struct {
	root   *echo.Echo
	config *config.AppConfig
}

func NewServer(cfg *config.AppConfig) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.System.Debug
	e.JSONSerializer = jsonSerializer{}
	e.HTTPErrorHandler = httpErrorHandler

	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return node.Generate().String() },
	}))
	e.Use(middleware.CORS())
	e.Use(requestLogger())

	if cfg.Web.Metrics {
		prometheus.NewPrometheus("warehouse", nil).Use(e)
	}

	return &Server{root: e, config: cfg}
}

// Echo exposes the underlying router, mostly for tests
func (s *Server) Echo() *echo.Echo {
	return s.root
}

func (s *Server) GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.root.GET(path, h, m...)
}

func (s *Server) POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.root.POST(path, h, m...)
}

func (s *Server) PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.root.PUT(path, h, m...)
}

func (s *Server) DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.root.DELETE(path, h, m...)
}

// Start blocks serving HTTP until Shutdown is called
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Web.Host, s.config.Web.Port)
	zap.L().Info("warehouse server listening", zap.String("namespace", "web"), zap.String("addr", addr))
	err := s.root.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.root.Shutdown(ctx)
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("namespace", "web"),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				zap.L().Warn("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			zap.L().Debug("request", fields...)
			return nil
		},
	})
}

// httpErrorHandler renders errors as {"message": ...}; anything that is
// not an echo.HTTPError is an internal failure.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	} else {
		zap.L().Error("unhandled request error",
			zap.String("namespace", "web"),
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, ErrorResponse{Message: message})
	}
	if err != nil {
		zap.L().Error("write error response", zap.Error(err))
	}
}

type jsonSerializer struct{}

func (jsonSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i interface{}) error {
	err := json.NewDecoder(c.Request().Body).Decode(i)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body").SetInternal(err)
	}
	return nil
}
