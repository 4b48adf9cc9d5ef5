package app

import (
	"context"
	"net/http"

	"member-portal/internal/auth/credentials"
	"member-portal/internal/auth/handler"
	"member-portal/internal/config"
	"member-portal/internal/logger"
	"member-portal/internal/middleware"
	"member-portal/internal/seed"
	"member-portal/internal/session"
	"member-portal/internal/view"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func(context.Context) error, error) {
	gin.SetMode(cfg.GinMode)

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	router, err := newRouter(ctx, cfg, infra)
	if err != nil {
		_ = infra.Close(ctx)
		return nil, nil, err
	}

	return router, infra.Close, nil
}

func newRouter(ctx context.Context, cfg config.Config, infra *Infra) (*gin.Engine, error) {

	// ----------------------------
	// Dependencies
	// ----------------------------

	sessionStore := session.NewRedisStore(infra.Redis.Client)
	credentialService := credentials.NewService(infra.Users, cfg.BcryptCost)

	if cfg.SeedFile != "" {
		file, err := seed.Load(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		created, err := seed.Apply(ctx, credentialService, file)
		if err != nil {
			return nil, err
		}
		logger.Info("seed applied", map[string]any{
			"file":    cfg.SeedFile,
			"created": created,
		})
	}

	views, err := view.New()
	if err != nil {
		return nil, err
	}

	authHandler := handler.NewHandler(
		credentialService,
		infra.Users,
		sessionStore,
		views,
		session.CookieOptions{
			Secure:   cfg.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		},
	)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(),
		middleware.LoadSession(sessionStore),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler.RegisterRoutes(router)

	return router, nil
}
