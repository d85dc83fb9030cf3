package store

import (
	"context"

	"github.com/terrascribe/llm-api/internal/store/model"
)

// Repository is the main contract for the data layer.
type Repository interface {
	Requests() RequestRepository
	Close() error
}

type RequestRepository interface {
	// Log stores a completed request.
	Log(ctx context.Context, log *model.RequestLog) error
	// GetRecent returns the last N logs for a user.
	GetRecent(ctx context.Context, userID string, limit int) ([]model.RequestLog, error)
	// GetDailyStats returns per-user aggregates grouped by day.
	GetDailyStats(ctx context.Context, userID string, days int) ([]model.DailyStats, error)
}
