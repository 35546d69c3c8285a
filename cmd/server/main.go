package main

import (
	"github.com/fransouzacb/fenafar-plataforma/internal/auth"
	"github.com/fransouzacb/fenafar-plataforma/internal/handler"
	"github.com/fransouzacb/fenafar-plataforma/internal/identity"
	"github.com/fransouzacb/fenafar-plataforma/internal/invite"
	"github.com/fransouzacb/fenafar-plataforma/internal/middleware"
	"github.com/fransouzacb/fenafar-plataforma/pkg/config"
	"github.com/fransouzacb/fenafar-plataforma/pkg/database"
	"github.com/fransouzacb/fenafar-plataforma/pkg/jwtutil"
	"github.com/fransouzacb/fenafar-plataforma/pkg/logger"
	"github.com/fransouzacb/fenafar-plataforma/pkg/mailer"
	"github.com/fransouzacb/fenafar-plataforma/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting FENAFAR platform service...", cfg.LogConfig()...)

	// Initialize database. The handle lives for the whole process and
	// is injected into every component that needs it.
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()
	log.Info("Database connection established")

	// Core components
	codec := jwtutil.NewCodec(&jwtutil.JWTConfig{
		SigningKey:      cfg.JWT.SigningKey,
		ExpirationHours: cfg.JWT.ExpirationHours,
	})
	resolver := auth.NewResolver(codec, auth.Defaults{
		Role:   cfg.Auth.DefaultRole,
		Active: cfg.Auth.DefaultActive,
	})
	gate := middleware.NewGate(resolver)

	idp := identity.NewLocalProvider(db, log)
	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP)
	convites := invite.NewService(db, idp, smtpMailer, cfg.Server.BaseURL, cfg.Invite.ExpirationDays, log)

	// Handlers
	authHandler := handler.NewAuthHandler(db, idp, codec, resolver)
	conviteHandler := handler.NewConviteHandler(convites)
	sindicatoHandler := handler.NewSindicatoHandler(db)
	userHandler := handler.NewUserHandler(db)

	// Initialize Echo framework
	e := echo.New()
	e.HideBanner = true

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())
	e.Use(gate.Middleware())

	// Public routes
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)
	e.GET("/login", handler.LoginPage)
	e.POST("/auth/login", authHandler.Login)

	// Invitation acceptance - the token in the URL is the credential
	e.GET("/convites/aceitar/:token", conviteHandler.Validate)
	e.POST("/convites/aceitar/:token", conviteHandler.Accept)

	// Client-managed routes - the handler resolves the principal itself
	e.GET("/api/auth/me", authHandler.Me)
	e.POST("/api/auth/logout", authHandler.Logout)

	// Role-gated API routes - the gate enforces the role table
	e.POST("/api/convites", conviteHandler.Create)
	e.GET("/api/convites", conviteHandler.List)
	e.POST("/api/convites/:id/reenviar", conviteHandler.Reissue)

	e.POST("/api/sindicatos", sindicatoHandler.Create)
	e.GET("/api/sindicatos", sindicatoHandler.List)
	e.GET("/api/sindicatos/:id", sindicatoHandler.Get)
	e.PATCH("/api/sindicatos/:id/aprovar", sindicatoHandler.Approve)
	e.DELETE("/api/sindicatos/:id", sindicatoHandler.Deactivate)

	e.GET("/api/usuarios", userHandler.List)

	// Authenticated routes without a specific role requirement
	e.GET("/api/perfil", userHandler.GetProfile)
	e.PATCH("/api/perfil", userHandler.UpdateProfile)

	// Page routes
	e.GET("/dashboard", handler.DashboardPage)
	e.GET("/membro", handler.MemberPage)

	// Start server
	log.Info("Starting server", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
