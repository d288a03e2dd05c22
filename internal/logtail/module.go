package logtail

import (
	"context"

	"github.com/tech-arch1tect/loggate/config"
	"github.com/tech-arch1tect/loggate/internal/logging"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(NewHub),
	fx.Provide(NewHandler),
	fx.Decorate(AttachTail),
	fx.Invoke(StartHub),
)

// AttachTail tees the application logger into the hub when the tail is
// enabled; otherwise the logger passes through untouched.
func AttachTail(cfg *config.Config, hub *Hub, logger *logging.Logger) *logging.Logger {
	if !cfg.LogTailEnabled {
		return logger
	}
	return logger.Tee(NewCore(hub, logger.GetZap().Core()))
}

func StartHub(lc fx.Lifecycle, hub *Hub) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go hub.Run()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			hub.Stop()
			return nil
		},
	})
}
