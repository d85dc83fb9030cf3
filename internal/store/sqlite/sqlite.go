package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/terrascribe/llm-api/internal/store"
	"github.com/terrascribe/llm-api/internal/store/model"
)

type sqliteRepository struct {
	db *sqlx.DB
}

func (r *sqliteRepository) Close() error {
	return r.db.Close()
}

func (r *sqliteRepository) Requests() store.RequestRepository {
	return &requestRepo{db: r.db}
}

type requestRepo struct {
	db *sqlx.DB
}

func (r *requestRepo) Log(ctx context.Context, log *model.RequestLog) error {
	query := `
	INSERT INTO request_logs (
		id, user_id, provider, model_id,
		prompt_tokens, completion_tokens, total_tokens,
		document_count, latency_ms, status_code, created_at
	) VALUES (
		:id, :user_id, :provider, :model_id,
		:prompt_tokens, :completion_tokens, :total_tokens,
		:document_count, :latency_ms, :status_code, :created_at
	)`
	_, err := r.db.NamedExecContext(ctx, query, log)
	return err
}

func (r *requestRepo) GetRecent(ctx context.Context, userID string, limit int) ([]model.RequestLog, error) {
	var logs []model.RequestLog
	query := `SELECT * FROM request_logs WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`
	err := r.db.SelectContext(ctx, &logs, query, userID, limit)
	return logs, err
}

func (r *requestRepo) GetDailyStats(ctx context.Context, userID string, days int) ([]model.DailyStats, error) {
	var stats []model.DailyStats
	query := `
		SELECT
			DATE(created_at) as date,
			COUNT(*) as total_requests,
			COALESCE(SUM(total_tokens), 0) as total_tokens,
			COALESCE(AVG(latency_ms), 0) as avg_latency
		FROM request_logs
		WHERE user_id = ? AND created_at >= DATE('now', ?)
		GROUP BY date
		ORDER BY date DESC
	`
	err := r.db.SelectContext(ctx, &stats, query, userID, fmt.Sprintf("-%d days", days))
	return stats, err
}
