package main

import (
	"context"
	"net/http"

	"github.com/tech-arch1tect/loggate/config"
	"github.com/tech-arch1tect/loggate/internal/account"
	"github.com/tech-arch1tect/loggate/internal/auth"
	"github.com/tech-arch1tect/loggate/internal/health"
	"github.com/tech-arch1tect/loggate/internal/logging"
	"github.com/tech-arch1tect/loggate/internal/logtail"
	"github.com/tech-arch1tect/loggate/internal/requestlog"
	"github.com/tech-arch1tect/loggate/internal/resolver"
	"github.com/tech-arch1tect/loggate/internal/sanitize"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		config.Module,
		logging.Module,
		sanitize.Module,
		requestlog.Module,
		resolver.Module,
		logtail.Module,
		health.Module,
		account.Module,
		fx.Provide(NewEcho),
		fx.Invoke(RegisterRoutes),
		fx.Invoke(StartServer),
	).Run()
}

func NewEcho(cfg *config.Config, logger *logging.Logger, interceptor *requestlog.Interceptor) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Recover())
	e.Use(auth.Middleware(cfg.JWTSecret, logger))
	e.Use(interceptor.Middleware())
	return e
}

func RegisterRoutes(
	e *echo.Echo,
	cfg *config.Config,
	healthHandler *health.Handler,
	accountHandler *account.Handler,
	tailHandler *logtail.Handler,
) {
	e.GET("/health", healthHandler.Health)
	e.POST("/api/login", accountHandler.Login)
	e.GET("/api/profile", accountHandler.Profile)

	if cfg.LogTailEnabled {
		e.GET("/__logtail", tailHandler.HandleLogTail)
	}
}

func StartServer(lc fx.Lifecycle, e *echo.Echo, cfg *config.Config, logger *logging.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
					e.Logger.Fatal("Server failed to start:", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}
