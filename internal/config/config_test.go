package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sokocrafts/sokoni/internal/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("API_SECRET", "test-secret")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "sokoni", cfg.AppConfig.ServiceName)
	require.Equal(t, 8080, cfg.AppConfig.Port)
	require.Equal(t, 24, cfg.JWTConfig.ExpireDelta)
	require.Equal(t, "sokoni.events", cfg.RabbitMQConfig.Exchange)
	require.Equal(t, int64(2097152), cfg.MediaConfig.MaxFileSizeBytes)
}

func TestAllowedMediaTypes(t *testing.T) {
	cfg := &config.Config{}
	cfg.MediaConfig.AllowedTypesRaw = "image/png, image/jpeg ,,image/webp"

	require.Equal(t,
		[]string{"image/png", "image/jpeg", "image/webp"},
		cfg.AllowedMediaTypes(),
	)
}
