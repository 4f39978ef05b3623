package telemetry_test

import (
	"context"
	"testing"

	"github.com/bizbook/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	cfg := telemetry.Config{
		Enabled:           false,
		CollectorEndpoint: "localhost:4317",
		SamplingRatio:     1.0,
		ServiceName:       "bizbook-worker",
	}

	tp, err := telemetry.NewTracerProvider(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, tp)

	assert.False(t, tp.IsEnabled())
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestRegisterOtelGorm(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("disabled skips registration", func(t *testing.T) {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		require.NoError(t, err)

		require.NoError(t, telemetry.RegisterOtelGorm(db, telemetry.Config{}, logger))
		_, registered := db.Config.Plugins["otelgorm"]
		assert.False(t, registered)
	})

	t.Run("enabled installs the plugin", func(t *testing.T) {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		require.NoError(t, err)

		require.NoError(t, telemetry.RegisterOtelGorm(db, telemetry.Config{Enabled: true}, logger))
		_, registered := db.Config.Plugins["otelgorm"]
		assert.True(t, registered)
	})
}
