package model

import "time"

// RequestLog captures one served completion for usage accounting.
type RequestLog struct {
	ID               string    `db:"id" json:"id"`
	UserID           string    `db:"user_id" json:"user_id"`
	Provider         string    `db:"provider" json:"provider"`
	ModelID          string    `db:"model_id" json:"model_id"`
	PromptTokens     int       `db:"prompt_tokens" json:"prompt_tokens"`
	CompletionTokens int       `db:"completion_tokens" json:"completion_tokens"`
	TotalTokens      int       `db:"total_tokens" json:"total_tokens"`
	DocumentCount    int       `db:"document_count" json:"document_count"`
	LatencyMS        int64     `db:"latency_ms" json:"latency_ms"`
	StatusCode       int       `db:"status_code" json:"status_code"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// DailyStats is an aggregate row for the usage endpoint.
type DailyStats struct {
	Date          string  `db:"date" json:"date"`
	TotalRequests int     `db:"total_requests" json:"total_requests"`
	TotalTokens   int     `db:"total_tokens" json:"total_tokens"`
	AvgLatency    float64 `db:"avg_latency" json:"avg_latency"`
}
