package server

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/terrascribe/llm-api/internal/config"
	"github.com/terrascribe/llm-api/internal/gateway"
	"github.com/terrascribe/llm-api/internal/identity"
	"github.com/terrascribe/llm-api/internal/server/validator"
	"github.com/terrascribe/llm-api/internal/store"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

type Server struct {
	router   *gin.Engine
	config   *config.Config
	logger   *zap.Logger
	service  gateway.Service
	verifier identity.Verifier
	requests store.RequestRepository
}

func New(cfg *config.Config, logger *zap.Logger, service gateway.Service, verifier identity.Verifier, requests store.RequestRepository) *Server {

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	validator.InitValidator()

	engine := gin.New()

	engine.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	engine.Use(ginzap.RecoveryWithZap(logger, true))

	if cfg.Tracing.Enabled {
		engine.Use(otelgin.Middleware("llm-api"))
	}

	s := &Server{
		router:   engine,
		config:   cfg,
		logger:   logger,
		service:  service,
		verifier: verifier,
		requests: requests,
	}

	s.SetupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}
