package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/healthcalc/internal/domain/calculator"
	"github.com/yanqian/healthcalc/internal/domain/healthcalc"
	"github.com/yanqian/healthcalc/internal/domain/healthtips"
	"github.com/yanqian/healthcalc/internal/domain/session"
	apperrors "github.com/yanqian/healthcalc/pkg/errors"
)

// ReadinessProbe checks one backing dependency.
type ReadinessProbe struct {
	Name  string
	Check func(ctx context.Context) error
}

// Readiness lists the dependencies reported by the ready probe.
type Readiness struct {
	Probes []ReadinessProbe
	// LLMState reports the tip backend circuit state; an open circuit degrades tips but not readiness.
	LLMState func() string
}

// Handler wires the HTTP transport to domain services.
type Handler struct {
	calc      healthcalc.Service
	sessions  session.Service
	readiness Readiness
	logger    *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(calc healthcalc.Service, sessions session.Service, readiness Readiness, logger *slog.Logger) *Handler {
	return &Handler{
		calc:      calc,
		sessions:  sessions,
		readiness: readiness,
		logger:    logger.With("component", "http.handler"),
	}
}

// ListCalculators returns the supported calculators and their tip popularity.
func (h *Handler) ListCalculators(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"calculators": h.calc.Catalog(c.Request.Context())})
}

// Calculate runs one calculator and attaches tips.
func (h *Handler) Calculate(c *gin.Context) {
	raw, ok := bindRawInput(c)
	if !ok {
		return
	}
	resp, err := h.calc.Calculate(c.Request.Context(), c.Param("type"), raw)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Tips forwards a preformatted tip request.
func (h *Handler) Tips(c *gin.Context) {
	var req healthtips.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.calc.GenerateTips(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateSession starts an idle session.
func (h *Handler) CreateSession(c *gin.Context) {
	st, err := h.sessions.Create(c.Request.Context())
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusCreated, st)
}

// GetSession returns the current session view.
func (h *Handler) GetSession(c *gin.Context) {
	st, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, st)
}

// SubmitSession computes inside a session; tips arrive asynchronously.
func (h *Handler) SubmitSession(c *gin.Context) {
	raw, ok := bindRawInput(c)
	if !ok {
		return
	}
	st, err := h.sessions.Submit(c.Request.Context(), c.Param("id"), c.Param("type"), raw)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusAccepted, st)
}

// SessionHistory lists recent calculations of a session.
func (h *Handler) SessionHistory(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer", err))
			return
		}
		limit = parsed
	}
	records, err := h.sessions.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"calculations": records})
}

// Live reports the process is up.
func (h *Handler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready pings every configured dependency.
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.readiness.Probes))
	for _, probe := range h.readiness.Probes {
		if err := probe.Check(ctx); err != nil {
			h.logger.Warn("readiness probe failed", "dependency", probe.Name, "error", err)
			checks[probe.Name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[probe.Name] = "ok"
	}
	body := gin.H{"status": "ok", "checks": checks}
	if status != http.StatusOK {
		body["status"] = "unavailable"
	}
	if h.readiness.LLMState != nil {
		body["llm"] = h.readiness.LLMState()
	}
	c.JSON(status, body)
}

// bindRawInput decodes the calculator form; an empty body is an empty form.
func bindRawInput(c *gin.Context) (calculator.RawInput, bool) {
	var raw calculator.RawInput
	if err := c.ShouldBindJSON(&raw); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return calculator.RawInput{}, false
	}
	return raw, true
}

func domainError(err error) *HTTPError {
	if vErr, ok := calculator.AsValidationError(err); ok {
		httpErr := NewHTTPError(http.StatusBadRequest, "invalid_request", vErr.Error(), err)
		httpErr.Field = vErr.Field
		return httpErr
	}
	switch apperrors.CodeOf(err) {
	case apperrors.CodeInvalidInput:
		return NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err)
	case apperrors.CodeNotFound:
		return NewHTTPError(http.StatusNotFound, "not_found", errMessage(err), err)
	case apperrors.CodeHistory:
		return NewHTTPError(http.StatusBadGateway, "history_unavailable", "calculation history unavailable", err)
	}
	return NewHTTPError(http.StatusInternalServerError, "internal_error", "something went wrong", err)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
