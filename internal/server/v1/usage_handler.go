package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/terrascribe/llm-api/internal/identity"
	"github.com/terrascribe/llm-api/internal/store"
	"github.com/terrascribe/llm-api/pkg/api"
)

type UsageHandler struct {
	requests store.RequestRepository
}

func NewUsageHandler(requests store.RequestRepository) *UsageHandler {
	return &UsageHandler{requests: requests}
}

// GetUsage returns the authenticated user's recent requests and daily
// aggregates. Scoped strictly to the caller's identity.
func (h *UsageHandler) GetUsage(c *gin.Context) {
	user, ok := identity.FromContext(c.Request.Context())
	if !ok {
		_ = c.Error(api.UnauthorizedError("No session on request"))
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days <= 0 {
		_ = c.Error(api.ValidationError("Invalid 'days' parameter"))
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		_ = c.Error(api.ValidationError("Invalid 'limit' parameter"))
		return
	}

	recent, err := h.requests.GetRecent(c.Request.Context(), user.ID, limit)
	if err != nil {
		_ = c.Error(api.InternalError("Failed to fetch usage", err))
		return
	}

	daily, err := h.requests.GetDailyStats(c.Request.Context(), user.ID, days)
	if err != nil {
		_ = c.Error(api.InternalError("Failed to fetch usage", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recent": recent,
		"daily":  daily,
	})
}
