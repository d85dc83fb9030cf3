package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/terrascribe/llm-api/internal/gateway"
	"github.com/terrascribe/llm-api/internal/metrics"
	"github.com/terrascribe/llm-api/internal/server/validator"
	"github.com/terrascribe/llm-api/pkg/api"
)

const (
	actionModels   = "models"
	actionComplete = "complete"

	// maxBodyBytes bounds the request body; large manuscripts arrive as
	// documents, and 10 MiB is far above any realistic payload.
	maxBodyBytes = 10 << 20

	// excerptRadius is how many bytes around a JSON parse failure are
	// echoed back in the error details.
	excerptRadius = 20
)

// actionEnvelope is the single-endpoint request shape: the action selector
// plus the completion fields, which are only read for "complete".
type actionEnvelope struct {
	Action string `json:"action"`
	api.CompletionRequest
}

type LLMHandler struct {
	service gateway.Service
}

func NewLLMHandler(service gateway.Service) *LLMHandler {
	return &LLMHandler{service: service}
}

// Dispatch is the action-routed entry point. The body carries an "action"
// field naming the operation; everything else about the request shape
// depends on the action chosen.
func (h *LLMHandler) Dispatch(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		_ = c.Error(api.NewError(http.StatusBadRequest, "Failed to read request body", err.Error()))
		return
	}

	var env actionEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		_ = c.Error(malformedJSONError(body, err))
		return
	}

	switch env.Action {
	case actionModels:
		h.listModels(c)
	case actionComplete:
		h.complete(c, &env.CompletionRequest)
	default:
		metrics.RequestCount.WithLabelValues("unknown", "400").Inc()
		_ = c.Error(api.ValidationError(fmt.Sprintf("Invalid action: %q", env.Action)))
	}
}

// CreateCompletion is the path-routed variant of the "complete" action.
func (h *LLMHandler) CreateCompletion(c *gin.Context) {
	var req api.CompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindingError(err))
		return
	}
	h.complete(c, &req)
}

// ListModels is the path-routed variant of the "models" action.
func (h *LLMHandler) ListModels(c *gin.Context) {
	h.listModels(c)
}

func (h *LLMHandler) complete(c *gin.Context, req *api.CompletionRequest) {
	if req.Prompt == "" || req.ModelID == "" {
		metrics.RequestCount.WithLabelValues(actionComplete, "400").Inc()
		_ = c.Error(api.ValidationError("Missing required parameters: prompt and modelId"))
		return
	}
	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > 1) {
		metrics.RequestCount.WithLabelValues(actionComplete, "400").Inc()
		_ = c.Error(api.ValidationError("temperature must be between 0 and 1"))
		return
	}
	if req.MaxTokens != nil && *req.MaxTokens <= 0 {
		metrics.RequestCount.WithLabelValues(actionComplete, "400").Inc()
		_ = c.Error(api.ValidationError("maxTokens must be greater than 0"))
		return
	}

	resp, err := h.service.Complete(c.Request.Context(), req)
	if err != nil {
		status := http.StatusBadGateway
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			status = apiErr.Code
			metrics.RequestCount.WithLabelValues(actionComplete, fmt.Sprint(status)).Inc()
			_ = c.Error(apiErr)
			return
		}
		metrics.RequestCount.WithLabelValues(actionComplete, fmt.Sprint(status)).Inc()
		_ = c.Error(api.VendorError("Completion request failed", err))
		return
	}

	metrics.RequestCount.WithLabelValues(actionComplete, "200").Inc()
	c.JSON(http.StatusOK, resp)
}

func (h *LLMHandler) listModels(c *gin.Context) {
	models, err := h.service.ListModels(c.Request.Context())
	if err != nil {
		metrics.RequestCount.WithLabelValues(actionModels, "500").Inc()
		_ = c.Error(api.InternalError("Failed to list models", err))
		return
	}

	metrics.RequestCount.WithLabelValues(actionModels, "200").Inc()
	c.JSON(http.StatusOK, api.ModelsResponse{Models: models})
}

// bindingError maps gin binding failures to the wire envelope: parse
// failures carry the byte offset, validation failures a field summary.
func bindingError(err error) *api.Error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return api.MalformedRequestError(syntaxErr.Error(), syntaxErr.Offset)
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		details := fmt.Sprintf("field %q expects %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value)
		return api.MalformedRequestError(details, typeErr.Offset)
	}
	return api.ValidationError(validator.Summarize(validator.ParseValidationError(err)))
}

// malformedJSONError builds the 400 envelope for an unparseable body,
// echoing a short excerpt around the failure offset so clients can locate
// the problem without re-deriving it.
func malformedJSONError(body []byte, err error) *api.Error {
	var offset int64 = -1

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	}

	details := err.Error()
	if offset >= 0 && int(offset) <= len(body) {
		lo := int(offset) - excerptRadius
		if lo < 0 {
			lo = 0
		}
		hi := int(offset) + excerptRadius
		if hi > len(body) {
			hi = len(body)
		}
		details = fmt.Sprintf("%s near %q (offset %d)", err.Error(), body[lo:hi], offset)
	}
	if offset < 0 {
		offset = 0
	}
	return api.MalformedRequestError(details, offset)
}
