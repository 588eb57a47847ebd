package http

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/stackquiz/accounts-api/internal/auth"
	"github.com/stackquiz/accounts-api/internal/config"
	"github.com/stackquiz/accounts-api/internal/http/handlers"
	"github.com/stackquiz/accounts-api/internal/http/middlewares"
	"github.com/stackquiz/accounts-api/internal/mail"
	"github.com/stackquiz/accounts-api/internal/observability"
	"github.com/stackquiz/accounts-api/internal/repo/postgres"
)

const maxBodyBytes = 1 << 20 // 1 MiB is plenty for account payloads

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, rdb *redis.Client, mailer mail.Mailer, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// own registry so routers can be built repeatedly in tests
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	// middleware
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		handlers.RespondInternal(c, fmt.Errorf("%v", recovered))
	}))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	}

	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(otelgin.Middleware("accounts-api"))
	r.Use(prom.GinHandleMiddleware())

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// wire up store, tokens and handlers
	usersRepo := postgres.NewUsersRepo(pool, prom)
	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.ResetTokenTTL)

	authMw := middlewares.NewAuthMiddleware(tokens, usersRepo)
	limiter := middlewares.NewRateLimiter(rdb, cfg.LoginRateLimit, cfg.LoginRateWindow)

	authHandler := handlers.NewAuthHandler(usersRepo, tokens, mailer, prom, cfg)
	accountHandler := handlers.NewAccountHandler(usersRepo)
	adminHandler := handlers.NewAdminHandler(usersRepo)

	// public routes
	r.POST("/register", authHandler.Register)
	r.POST("/login", limiter.Middleware("login"), authHandler.Login)
	r.POST("/password/forgot", limiter.Middleware("forgot"), authHandler.ForgotPassword)
	r.PUT("/password/reset/:token", authHandler.ResetPassword)

	// self-service routes
	session := r.Group("", authMw.RequireAuth())
	session.GET("/myaccount", accountHandler.GetUserDetails)
	session.PUT("/password/update", accountHandler.UpdateUserPassword)
	session.PUT("/myaccount/update", accountHandler.UpdateUserProfile)

	// admin routes
	admin := r.Group("/admin", authMw.RequireAuth(), authMw.RequireRole("Admin"))
	admin.GET("/users", adminHandler.GetAllUsers)
	admin.GET("/user/:id", adminHandler.GetSingleUser)
	admin.PUT("/account/update/:id", adminHandler.UpdateUser)
	admin.DELETE("/user/delete/:id", adminHandler.DeleteUser)

	return r
}
