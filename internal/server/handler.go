package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/suykerbuyk/devflow/internal/completion"
	"github.com/suykerbuyk/devflow/internal/segment"
)

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	Description string `json:"description"`
}

// GenerateResponse carries the raw reply as Code and its display segments.
type GenerateResponse struct {
	Code     string            `json:"code"`
	Segments []segment.Segment `json:"segments"`
}

// SegmentsRequest is the body of POST /api/segments.
type SegmentsRequest struct {
	Text string `json:"text"`
}

// SegmentsResponse lists the segments of the submitted text.
type SegmentsResponse struct {
	Segments []segment.Segment `json:"segments"`
}

// ErrorResponse is returned for every failed request. Details holds the
// redacted provider diagnostics when there are any.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// Handler serves the API endpoints. It keeps no per-request state.
type Handler struct {
	completer completion.Completer
	logger    *zap.Logger
}

// NewHandler returns a Handler that sends prompts to c.
func NewHandler(c completion.Completer, logger *zap.Logger) *Handler {
	return &Handler{completer: c, logger: logger}
}

// Generate sends the description to the model and returns the raw reply
// with its segments.
func (h *Handler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "description is required"})
		return
	}

	reply, err := h.completer.Complete(c.Request.Context(), req.Description)
	if err != nil {
		h.logger.Warn("generate failed", zap.Error(err))
		c.JSON(completion.StatusOf(err), errorResponse(err))
		return
	}

	segs := segment.Parse(reply)
	if segs == nil {
		segs = []segment.Segment{}
	}
	c.JSON(http.StatusOK, GenerateResponse{Code: reply, Segments: segs})
}

// Segments splits caller-supplied text without calling the model.
func (h *Handler) Segments(c *gin.Context) {
	var req SegmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	segs := segment.Parse(req.Text)
	if segs == nil {
		segs = []segment.Segment{}
	}
	c.JSON(http.StatusOK, SegmentsResponse{Segments: segs})
}

// errorResponse carries provider diagnostics through as JSON when they
// parse, and as a string otherwise.
func errorResponse(err error) ErrorResponse {
	var cerr *completion.Error
	if !errors.As(err, &cerr) {
		return ErrorResponse{Error: "completion request failed"}
	}
	resp := ErrorResponse{Error: cerr.Message}
	if cerr.Details == "" {
		return resp
	}
	if json.Valid([]byte(cerr.Details)) {
		resp.Details = json.RawMessage(cerr.Details)
	} else {
		resp.Details = cerr.Details
	}
	return resp
}
