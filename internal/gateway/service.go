// Package gateway holds the proxy's business logic: selecting the vendor
// adapter for a request, aggregating model listings, and recording usage.
package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/terrascribe/llm-api/internal/analytics"
	"github.com/terrascribe/llm-api/internal/identity"
	"github.com/terrascribe/llm-api/internal/llm"
	"github.com/terrascribe/llm-api/internal/metrics"
	"github.com/terrascribe/llm-api/internal/store/model"
	"github.com/terrascribe/llm-api/pkg/api"
	"go.uber.org/zap"
)

// Service is the contract the HTTP layer depends on.
type Service interface {
	Complete(ctx context.Context, req *api.CompletionRequest) (*api.CompletionResponse, error)
	ListModels(ctx context.Context) ([]api.ModelInfo, error)
}

type service struct {
	logger    *zap.Logger
	ingestor  analytics.Ingestor
	providers map[api.ProviderName]llm.Provider
	// listing order is fixed so the aggregated response is deterministic
	listOrder []api.ProviderName
}

func NewService(logger *zap.Logger, ingestor analytics.Ingestor, providers ...llm.Provider) Service {
	s := &service{
		logger:    logger,
		ingestor:  ingestor,
		providers: make(map[api.ProviderName]llm.Provider, len(providers)),
	}
	for _, p := range providers {
		s.providers[p.Name()] = p
		s.listOrder = append(s.listOrder, p.Name())
	}
	return s
}

// Complete forwards the request to exactly one adapter, chosen by the model
// identifier's naming convention. All-or-nothing: a vendor failure is the
// request failure, with no fallback and no retry.
func (s *service) Complete(ctx context.Context, req *api.CompletionRequest) (*api.CompletionResponse, error) {
	name := llm.ProviderFor(req.ModelID)
	provider, ok := s.providers[name]
	if !ok {
		// the caller asked for a model no configured adapter serves; that
		// is a bad request, not an upstream failure
		return nil, api.ValidationError(fmt.Sprintf("No provider configured for model: %s", req.ModelID))
	}

	start := time.Now()
	resp, err := provider.Complete(ctx, req)
	latency := time.Since(start)

	statusCode := 200
	if err != nil {
		statusCode = 502
		if apiErr, ok := err.(*api.Error); ok {
			statusCode = apiErr.Code
		}
	}

	userID := ""
	if user, ok := identity.FromContext(ctx); ok {
		userID = user.ID
	}

	log := &model.RequestLog{
		ID:            uuid.New().String(),
		UserID:        userID,
		Provider:      string(name),
		ModelID:       req.ModelID,
		DocumentCount: len(req.Documents),
		LatencyMS:     latency.Milliseconds(),
		StatusCode:    statusCode,
		CreatedAt:     time.Now().UTC(),
	}
	if resp != nil {
		log.PromptTokens = resp.Usage.PromptTokens
		log.CompletionTokens = resp.Usage.CompletionTokens
		log.TotalTokens = resp.Usage.TotalTokens

		metrics.PromptTokens.WithLabelValues(string(name), req.ModelID).Add(float64(resp.Usage.PromptTokens))
		metrics.CompletionTokens.WithLabelValues(string(name), req.ModelID).Add(float64(resp.Usage.CompletionTokens))
	}
	metrics.CompletionDuration.WithLabelValues(string(name), req.ModelID).Observe(latency.Seconds())
	s.ingestor.Log(log)

	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ListModels concatenates every provider's listing in registration order.
// Best-effort by design: a failing provider contributes zero entries and is
// logged for operators, never surfaced to the caller.
func (s *service) ListModels(ctx context.Context) ([]api.ModelInfo, error) {
	models := make([]api.ModelInfo, 0)
	for _, name := range s.listOrder {
		provider := s.providers[name]
		listed, err := provider.ListModels(ctx)
		if err != nil {
			s.logger.Error("model listing failed",
				zap.String("provider", string(name)),
				zap.Error(err),
			)
			metrics.ProviderListingFailures.WithLabelValues(string(name)).Inc()
			continue
		}
		models = append(models, listed...)
	}
	return models, nil
}
