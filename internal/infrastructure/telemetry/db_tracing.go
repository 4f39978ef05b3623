package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterOtelGorm instruments the database handle so every statement a
// lifecycle transition or the outbox loop runs becomes a span under the
// calling operation. Query variables stay out of span attributes.
func RegisterOtelGorm(db *gorm.DB, cfg Config, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("tracing disabled, skipping otelgorm registration")
		return nil
	}

	plugin := otelgorm.NewPlugin(
		otelgorm.WithDBName("postgresql"),
		otelgorm.WithoutQueryVariables(),
	)
	if err := db.Use(plugin); err != nil {
		return err
	}

	logger.Info("database tracing enabled")
	return nil
}
