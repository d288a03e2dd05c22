package sanitize

import (
	"github.com/tech-arch1tect/loggate/config"
	"github.com/tech-arch1tect/loggate/internal/logging"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg *config.Config, logger *logging.Logger) (*Sanitizer, error) {
	return New(Options{
		SensitiveKeys:   cfg.SensitiveKeys,
		ExcludedHeaders: cfg.ExcludedHeaders,
		MaskStyle:       cfg.MaskStyle,
		MaxStrLen:       cfg.MaxStrLen,
		MaxListLen:      cfg.MaxListLen,
		MaxDepth:        cfg.MaxDepth,
	}, logger)
}
