package server

import (
	"net/http"
	"time"

	"trustlens/internal/config"
	"trustlens/internal/handler"
	"trustlens/internal/inference"
	"trustlens/internal/middleware"
	"trustlens/internal/repository"
	"trustlens/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	cfg    *config.Config
	svc    *inference.Service
	logger *zap.Logger
	log    *logrus.Logger
}

func NewServer(db *sqlx.DB, cfg *config.Config, svc *inference.Service, logger *zap.Logger, log *logrus.Logger) *Server {
	router := gin.Default()

	s := &Server{
		router: router,
		db:     db,
		cfg:    cfg,
		svc:    svc,
		logger: logger,
		log:    log,
	}

	// Setup routes
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// Initialize Auth components
	authRepo := repository.NewAuthRepository(s.db, s.log)
	authService := service.NewAuthService(authRepo, time.Duration(s.cfg.Auth.TokenTTLHours)*time.Hour, s.logger)
	authHandler := handler.NewAuthHandler(authService, s.log)

	// Pipeline handlers
	feedbackRepo := repository.NewFeedbackRepository(s.db, s.log)
	predictHandler := handler.NewPredictHandler(s.svc, s.log)
	feedbackHandler := handler.NewFeedbackHandler(feedbackRepo, s.log)
	modelHandler := handler.NewModelHandler(s.svc, s.log)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Authentication routes
	authGroup := s.router.Group("/api/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	// Authenticated routes
	authRequired := s.router.Group("/api")
	authRequired.Use(middleware.AuthMiddleware(s.logger))
	{
		authRequired.POST("/auth/logout", authHandler.Logout)

		authRequired.POST("/v1/predict", predictHandler.Predict)
		authRequired.POST("/v1/feedback", feedbackHandler.SubmitFeedback)
		authRequired.GET("/v1/feedback", feedbackHandler.GetAllFeedback)
		authRequired.GET("/v1/model/info", modelHandler.GetModelInfo)

		adminOnly := authRequired.Group("/v1/model", middleware.RequireRole("admin"))
		adminOnly.POST("/retrain", modelHandler.Retrain)
	}
}

func (s *Server) Run(addr string) {
	s.log.Infof("Server starting on port %s...", addr)
	if err := s.router.Run(addr); err != nil {
		s.log.Fatalf("Server failed to start: %v", err)
	}
}
