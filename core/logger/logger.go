package logger

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds configuration for the logger.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `mapstructure:"level" default:"info"`
	// Format is the output encoding (json or console).
	Format string `mapstructure:"format" default:"json"`
}

// New builds a zap logger from the configuration. Debug level switches to
// zap's development preset; console format adds colored levels and drops
// stacktraces.
func New(cfg *Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Level == "debug" {
		zc = zap.NewDevelopmentConfig()
	}

	switch cfg.Format {
	case "console":
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zc.DisableStacktrace = true
	default:
		zc.Encoding = "json"
	}

	zc.EncoderConfig.LevelKey = "level"
	zc.EncoderConfig.TimeKey = "time"
	zc.EncoderConfig.MessageKey = "message"

	return zc.Build()
}

// WithRayID returns a logger with the ray_id field set from the Fiber context.
func WithRayID(l *zap.Logger, c *fiber.Ctx) *zap.Logger {
	if rid, ok := c.Locals("ray_id").(string); ok && rid != "" {
		return l.With(zap.String("ray_id", rid))
	}
	return l
}
