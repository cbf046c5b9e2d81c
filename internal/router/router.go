package router

import (
	"time"

	"cashdesk/internal/config"
	"cashdesk/internal/handler"
	"cashdesk/internal/infra"
	"cashdesk/internal/middleware"
	"cashdesk/internal/model"
	"cashdesk/internal/repository"
	"cashdesk/internal/service"
	"cashdesk/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	operatorRepo := repository.NewOperatorRepository(db)
	registerRepo := repository.NewRegisterRepository(db)
	methodRepo := repository.NewPaymentMethodRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(operatorRepo, cfg)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	sessionSvc := service.NewSessionService(sessionRepo, registerRepo, methodRepo, dispatcher, cfg.EnforceOperatorSession)
	reportSvc := service.NewReportService(sessionRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	sessionsH := handler.NewSessionsHandler(sessionSvc)
	reportsH := handler.NewReportsHandler(reportSvc)
	registersH := handler.NewRegistersHandler(registerRepo)
	methodsH := handler.NewPaymentMethodsHandler(methodRepo)
	healthH := handler.NewHealthHandler(db, rdb, mailCB)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", healthH.Check)

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole(model.RoleCashier, model.RoleSupervisor, model.RoleAdmin)
	supervisorUp := middleware.RequireRole(model.RoleSupervisor, model.RoleAdmin)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	v1 := r.Group("/v1", jwtMW)
	{
		sessions := v1.Group("/sessions")
		{
			sessions.POST("/open", anyRole, sessionsH.Open)
			sessions.POST("/:id/transactions", anyRole, sessionsH.Record)
			sessions.POST("/:id/close", anyRole, sessionsH.Close)
			sessions.PATCH("/:id/notes", anyRole, sessionsH.UpdateNotes)
			sessions.GET("/active", anyRole, sessionsH.Active)
			sessions.GET("/:id", anyRole, sessionsH.Get)
			sessions.GET("/:id/transactions", anyRole, sessionsH.ListTransactions)
			sessions.GET("", supervisorUp, sessionsH.List)
		}

		reports := v1.Group("/reports", supervisorUp)
		{
			reports.GET("/summary", reportsH.Summary)
			reports.GET("/sessions/:id/buckets", reportsH.SessionBuckets)
		}

		v1.GET("/registers", anyRole, registersH.List)
		registers := v1.Group("/registers", adminOnly)
		{
			registers.POST("", registersH.Create)
			registers.DELETE("/:id", registersH.Deactivate)
		}

		v1.GET("/payment-methods", anyRole, methodsH.List)
		v1.POST("/payment-methods", adminOnly, methodsH.Create)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
