package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/terrascribe/llm-api/internal/server/middleware"
	v1 "github.com/terrascribe/llm-api/internal/server/v1"
)

func (s *Server) SetupRoutes() {
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.ErrorHandler(s.logger))

	healthHandler := v1.NewHealthHandler()
	s.router.GET("/health", healthHandler.Health)

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limiter := middleware.NewRateLimiter(
		s.config.RateLimit.RequestsPerSecond,
		s.config.RateLimit.Burst,
		s.logger,
	)

	llm := s.router.Group("/llm")
	llm.Use(middleware.Auth(s.verifier))
	llm.Use(limiter.Middleware())
	{
		llmHandler := v1.NewLLMHandler(s.service)
		llm.POST("", llmHandler.Dispatch)
		llm.POST("/completion", llmHandler.CreateCompletion)
		llm.GET("/models", llmHandler.ListModels)

		if s.requests != nil {
			usageHandler := v1.NewUsageHandler(s.requests)
			llm.GET("/usage", usageHandler.GetUsage)
		}
	}
}
