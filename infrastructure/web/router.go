// Package web serves dashboard queries over HTTP.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"api-monitor/domain"
	"api-monitor/infrastructure/logging"
)

// Dashboard is the query surface the handlers need.
type Dashboard interface {
	Requests(ctx context.Context, q domain.RequestQuery) (domain.Result[domain.Request], error)
	Problems(ctx context.Context, q domain.ProblemQuery) (domain.Result[domain.Problem], error)
	Timeline(ctx context.Context, q domain.RequestQuery) (domain.Timeline, error)
}

type Handler struct {
	dash Dashboard
	now  func() time.Time
	log  zerolog.Logger
}

func NewHandler(dash Dashboard, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{dash: dash, now: now, log: logging.Component("web")}
}

// NewRouter builds the engine with recovery, request logging and all routes.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.log))

	r.GET("/health", h.Health)
	api := r.Group("/api")
	{
		api.GET("/requests", h.ListRequests)
		api.GET("/requests/timeline", h.RequestTimeline)
		api.GET("/problems", h.ListProblems)
	}
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (h *Handler) fail(c *gin.Context, err error) {
	var argErr *domain.ArgumentError
	switch {
	case errors.As(err, &argErr):
		c.JSON(http.StatusBadRequest, errorResponse{Code: "invalid_argument", Message: err.Error(), Field: argErr.Field})
	case errors.Is(err, domain.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, errorResponse{Code: "invalid_argument", Message: err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, errorResponse{Code: "timeout", Message: err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("source failure")
		c.JSON(http.StatusBadGateway, errorResponse{Code: "source_unavailable", Message: err.Error()})
	}
}

func bindRaw(c *gin.Context) (domain.RawQuery, error) {
	var raw domain.RawQuery
	if err := c.ShouldBindQuery(&raw); err != nil {
		return domain.RawQuery{}, &domain.ArgumentError{Field: "query", Value: c.Request.URL.RawQuery, Reason: err.Error()}
	}
	return raw, nil
}

func (h *Handler) ListRequests(c *gin.Context) {
	raw, err := bindRaw(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	q, err := domain.ParseRequestQuery(raw)
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.dash.Requests(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res.Page)
}

func (h *Handler) ListProblems(c *gin.Context) {
	raw, err := bindRaw(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	q, err := domain.ParseProblemQuery(raw)
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.dash.Problems(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res.Page)
}

func (h *Handler) RequestTimeline(c *gin.Context) {
	raw, err := bindRaw(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	q, err := domain.ParseRequestQuery(raw)
	if err != nil {
		h.fail(c, err)
		return
	}
	tl, err := h.dash.Timeline(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tl)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": h.now().UTC()})
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		if query != "" {
			path = path + "?" + query
		}
		status := c.Writer.Status()
		event := logger.Debug()
		if status >= http.StatusInternalServerError {
			event = logger.Warn()
		}
		event.
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("ip", c.ClientIP()).
			Msg("http request")
	}
}
