package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coatline/boothlag/internal/entry"
	"github.com/coatline/boothlag/internal/export"
	"github.com/coatline/boothlag/internal/models"
	"github.com/coatline/boothlag/internal/summary"
	"github.com/coatline/boothlag/internal/utils"
)

// IdempotencyHeader carries the idempotency key on HTTP calls.
const IdempotencyHeader = "Idempotency-Key"

// RequestIDHeader is echoed on every response.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// Backend is the service surface the HTTP handlers call.
type Backend interface {
	AddLine(ctx context.Context, line, key string) (models.LineResult, error)
	Table(ctx context.Context) (models.Analysis, error)
	Summary(ctx context.Context) ([]summary.GroupSummary, error)
}

// Handler serves the HTTP API.
type Handler struct {
	backend Backend
	logger  *slog.Logger
}

// NewRouter builds the gin engine exposing the HTTP API.
func NewRouter(logger *slog.Logger, backend Backend) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{backend: backend, logger: logger}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), accessLog(logger))

	router.GET("/healthz", h.Health)
	router.POST("/addLine", h.AddLine)
	router.GET("/table", h.Table)
	router.GET("/summary", h.Summary)
	router.GET("/exportExcel", h.ExportExcel)
	router.GET("/export.csv", h.ExportCSV)
	return router
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": StatusOK})
}

// AddLine appends a record line or applies the retraction directive.
func (h *Handler) AddLine(c *gin.Context) {
	var req AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	key := strings.TrimSpace(c.GetHeader(IdempotencyHeader))
	result, err := h.backend.AddLine(c.Request.Context(), req.Line, key)
	if err != nil {
		respondError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, NewAnalysisResponse(result.Analysis, result.Outcome))
}

// Table returns the current annotated view.
func (h *Handler) Table(c *gin.Context) {
	analysis, err := h.backend.Table(c.Request.Context())
	if err != nil {
		respondError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, NewAnalysisResponse(analysis, ""))
}

// Summary returns per-group avoidable-lag aggregates.
func (h *Handler) Summary(c *gin.Context) {
	groups, err := h.backend.Summary(c.Request.Context())
	if err != nil {
		respondError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, NewSummaryResponse(groups))
}

// ExportExcel downloads the annotated table as a workbook.
func (h *Handler) ExportExcel(c *gin.Context) {
	h.download(c, export.XLSXFilename,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", export.WriteXLSX)
}

// ExportCSV downloads the annotated table as CSV.
func (h *Handler) ExportCSV(c *gin.Context) {
	h.download(c, "paint_records.csv", "text/csv; charset=utf-8", export.WriteCSV)
}

func (h *Handler) download(c *gin.Context, filename, contentType string,
	write func(w io.Writer, table []models.AnnotatedRecord) error) {
	analysis, err := h.backend.Table(c.Request.Context())
	if err != nil {
		respondError(c, statusFor(err), err)
		return
	}
	var buf bytes.Buffer
	if err := write(&buf, analysis.Table); err != nil {
		h.logger.Error("export failed", slog.String("file", filename), slog.Any("error", err))
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func statusFor(err error) int {
	if errors.Is(err, entry.ErrMalformedLine) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, status int, err error) {
	c.JSON(status, ErrorResponse{Status: StatusError, Error: utils.Message(err)})
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func accessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.String("request_id", c.GetString(requestIDKey)))
	}
}
