package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/perion0x/trading-supervisor/internal/errs"
	"github.com/perion0x/trading-supervisor/internal/logger"
	"github.com/perion0x/trading-supervisor/internal/supervisor"
)

// Server exposes the supervisor over HTTP.
type Server struct {
	echo       *echo.Echo
	supervisor *supervisor.Supervisor
	addr       string
}

// AnalyzeRequest is the inbound query envelope.
type AnalyzeRequest struct {
	Query     string `json:"query" validate:"required,max=1000"`
	SessionID string `json:"session_id"`
}

// ErrorResponse is returned when a request fails before synthesis.
type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

var validate = validator.New()

// New creates the HTTP server and registers routes.
func New(addr string, sup *supervisor.Supervisor) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())

	s := &Server{
		echo:       e,
		supervisor: sup,
		addr:       addr,
	}

	e.POST("/analyze", s.handleAnalyze)
	e.GET("/healthz", s.handleHealthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return s
}

// handleAnalyze runs one query through the supervisor. Tool failures come
// back inside the recommendation; only malformed requests and total
// analysis failure change the status code.
func (s *Server) handleAnalyze(c echo.Context) error {
	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			ErrorCode: string(errs.CodeInvalidQuery),
			Message:   "request body must be JSON with a query field",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			ErrorCode: string(errs.CodeInvalidQuery),
			Message:   validationMessage(err),
		})
	}

	ctx := c.Request().Context()
	rec, err := s.supervisor.HandleQuery(ctx, req.Query)
	if err != nil {
		code := errs.CodeOf(err)
		if code == "" {
			code = errs.CodeToolUnavailable
		}
		return c.JSON(errs.HTTPStatus(code), ErrorResponse{
			ErrorCode: string(code),
			Message:   err.Error(),
		})
	}

	return c.JSON(errs.HTTPStatus(errs.Code(rec.ErrorCode)), rec)
}

func (s *Server) handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// validationMessage flattens validator output into one plain sentence.
func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}
	for _, fe := range validationErrors {
		switch fe.Tag() {
		case "required":
			return "query is required"
		case "max":
			return "query must be at most " + fe.Param() + " characters"
		}
	}
	return "query failed validation"
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	logger.Info(context.Background(), "HTTP server listening", "addr", s.addr)
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
