package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratyek/medical-amount-detection/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "development", cfg.Server.Environment)

	assert.Equal(t, "tesseract", cfg.OCR.Engine)
	assert.Equal(t, "eng", cfg.OCR.Language)
	assert.InDelta(t, 0.5, cfg.OCR.MinConfidence, 1e-9)

	assert.InDelta(t, 0.3, cfg.Normalization.MinConfidence, 1e-9)

	assert.True(t, cfg.Classifier.AIEnabled)
	assert.True(t, cfg.Classifier.FallbackEnabled)
	assert.Equal(t, "gemini", cfg.Classifier.Provider)
	assert.Equal(t, 3, cfg.Classifier.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Classifier.Timeout())

	assert.True(t, cfg.Guardrails.InputEnabled)
	assert.Equal(t, int64(10), cfg.Guardrails.MaxFileSizeMB)
	assert.Equal(t, int64(10*1024*1024), cfg.Guardrails.MaxFileSizeBytes())
	assert.Equal(t, 50000, cfg.Guardrails.MaxTextLength)
	assert.InDelta(t, 0.02, cfg.Guardrails.ArithmeticTolerance, 1e-9)

	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MEDAMOUNT_SERVER_PORT", ":9090")
	t.Setenv("MEDAMOUNT_OCR_ENGINE", "none")
	t.Setenv("MEDAMOUNT_CLASSIFIER_AI_ENABLED", "false")
	t.Setenv("MEDAMOUNT_CLASSIFIER_PROVIDER", "openai")
	t.Setenv("MEDAMOUNT_GUARDRAILS_MAX_FILE_SIZE_MB", "2")
	t.Setenv("MEDAMOUNT_CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, "none", cfg.OCR.Engine)
	assert.False(t, cfg.Classifier.AIEnabled)
	assert.Equal(t, "openai", cfg.Classifier.Provider)
	assert.Equal(t, int64(2*1024*1024), cfg.Guardrails.MaxFileSizeBytes())
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_PlatformPortFallback(t *testing.T) {
	t.Setenv("PORT", "7777")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.Server.Port)
}

func TestLoad_ExplicitPortWinsOverPlatformPort(t *testing.T) {
	t.Setenv("PORT", "7777")
	t.Setenv("MEDAMOUNT_SERVER_PORT", ":9999")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Port)
}
