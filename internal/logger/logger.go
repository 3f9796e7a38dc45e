package logger

import (
	"context"

	"go-analytics/internal/config"
	"go-analytics/internal/database"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewLogger builds the zap logger and tees every entry into the service_logs collection
func NewLogger(lc fx.Lifecycle, cfg *config.Config, mongodb *database.MongodbDB) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.IsProduction() {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	// Important: Enable Caller to get Function Name
	zapConfig.EncoderConfig.FunctionKey = "func"

	baseLogger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	dbWriter := NewDBLogWriter(mongodb.DB, cfg.AppId)
	finalCore := NewDBCore(baseLogger.Core(), dbWriter)
	log := zap.New(finalCore, zap.AddCaller()).With(zap.String("app", cfg.AppId))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = log.Sync()
			dbWriter.Close()
			return nil
		},
	})

	return log, nil
}
