package handler

import (
	"hms-wallet-service/internal/adapter/http/middleware"
	redisStore "hms-wallet-service/internal/adapter/storage/redis"
	"hms-wallet-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	LedgerSvc      ports.LedgerService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes — everything sits behind staff JWT auth.
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	walletHandler := NewWalletHandler(deps.LedgerSvc)

	v1 := r.Group("/api/v1", jwtAuth)

	wallets := v1.Group("/wallets")
	{
		wallets.POST("", rl("wallets_write"), walletHandler.Create)
		wallets.GET("", rl("dashboard"), walletHandler.List)
		wallets.GET("/stats", rl("dashboard"), walletHandler.GetStats)
		wallets.GET("/:id", rl("dashboard"), walletHandler.Get)
		wallets.POST("/:id/topup", rl("wallets_topup"), walletHandler.TopUp)
		wallets.POST("/:id/deduct", rl("wallets_deduct"), walletHandler.Deduct)
		wallets.PATCH("/:id/status", rl("wallets_write"), walletHandler.SetStatus)
		wallets.GET("/:id/transactions", rl("dashboard"), walletHandler.ListTransactions)
	}

	patients := v1.Group("/patients")
	{
		patients.GET("/:patientId/wallet", rl("dashboard"), walletHandler.GetByPatient)
	}

	return r
}
