package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration. Built once at startup and
// passed explicitly into every component.
type Config struct {
	Server        ServerConfig
	Log           LogConfig
	CORS          CORSConfig
	OCR           OCRConfig
	Normalization NormalizationConfig
	Classifier    ClassifierConfig
	Guardrails    GuardrailsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// OCRConfig holds OCR engine settings.
type OCRConfig struct {
	Engine        string  `mapstructure:"engine"`
	Language      string  `mapstructure:"language"`
	MinConfidence float64 `mapstructure:"min_confidence"`
}

// NormalizationConfig holds amount normalization settings.
type NormalizationConfig struct {
	MinConfidence float64 `mapstructure:"min_confidence"`
}

// ClassifierConfig holds AI classification settings.
type ClassifierConfig struct {
	AIEnabled       bool   `mapstructure:"ai_enabled"`
	FallbackEnabled bool   `mapstructure:"fallback_enabled"`
	Provider        string `mapstructure:"provider"`
	APIKey          string `mapstructure:"api_key"`
	Model           string `mapstructure:"model"`
	MaxRetries      int    `mapstructure:"max_retries"`
	TimeoutSecs     int    `mapstructure:"timeout_secs"`
}

// Timeout returns the per-attempt AI call timeout.
func (c *ClassifierConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// GuardrailsConfig holds validation gate settings.
type GuardrailsConfig struct {
	InputEnabled        bool    `mapstructure:"input_enabled"`
	OutputEnabled       bool    `mapstructure:"output_enabled"`
	AISafetyEnabled     bool    `mapstructure:"ai_safety_enabled"`
	MaxFileSizeMB       int64   `mapstructure:"max_file_size_mb"`
	MaxTextLength       int     `mapstructure:"max_text_length"`
	ArithmeticTolerance float64 `mapstructure:"arithmetic_tolerance"`
}

// MaxFileSizeBytes returns the upload ceiling in bytes.
func (g *GuardrailsConfig) MaxFileSizeBytes() int64 {
	return g.MaxFileSizeMB * 1024 * 1024
}

// Load reads configuration from environment variables with the MEDAMOUNT_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MEDAMOUNT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// OCR defaults
	v.SetDefault("ocr.engine", "tesseract")
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.min_confidence", 0.5)

	// Normalization defaults
	v.SetDefault("normalization.min_confidence", 0.3)

	// Classifier defaults
	v.SetDefault("classifier.ai_enabled", true)
	v.SetDefault("classifier.fallback_enabled", true)
	v.SetDefault("classifier.provider", "gemini")
	v.SetDefault("classifier.api_key", "")
	v.SetDefault("classifier.model", "")
	v.SetDefault("classifier.max_retries", 3)
	v.SetDefault("classifier.timeout_secs", 30)

	// Guardrails defaults
	v.SetDefault("guardrails.input_enabled", true)
	v.SetDefault("guardrails.output_enabled", true)
	v.SetDefault("guardrails.ai_safety_enabled", true)
	v.SetDefault("guardrails.max_file_size_mb", 10)
	v.SetDefault("guardrails.max_text_length", 50000)
	v.SetDefault("guardrails.arithmetic_tolerance", 0.02)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                     "MEDAMOUNT_SERVER_PORT",
		"server.read_timeout":             "MEDAMOUNT_SERVER_READ_TIMEOUT",
		"server.write_timeout":            "MEDAMOUNT_SERVER_WRITE_TIMEOUT",
		"server.environment":              "MEDAMOUNT_SERVER_ENVIRONMENT",
		"log.level":                       "MEDAMOUNT_LOG_LEVEL",
		"log.format":                      "MEDAMOUNT_LOG_FORMAT",
		"cors.allowed_origins":            "MEDAMOUNT_CORS_ALLOWED_ORIGINS",
		"ocr.engine":                      "MEDAMOUNT_OCR_ENGINE",
		"ocr.language":                    "MEDAMOUNT_OCR_LANGUAGE",
		"ocr.min_confidence":              "MEDAMOUNT_OCR_MIN_CONFIDENCE",
		"normalization.min_confidence":    "MEDAMOUNT_NORMALIZATION_MIN_CONFIDENCE",
		"classifier.ai_enabled":           "MEDAMOUNT_CLASSIFIER_AI_ENABLED",
		"classifier.fallback_enabled":     "MEDAMOUNT_CLASSIFIER_FALLBACK_ENABLED",
		"classifier.provider":             "MEDAMOUNT_CLASSIFIER_PROVIDER",
		"classifier.api_key":              "MEDAMOUNT_CLASSIFIER_API_KEY",
		"classifier.model":                "MEDAMOUNT_CLASSIFIER_MODEL",
		"classifier.max_retries":          "MEDAMOUNT_CLASSIFIER_MAX_RETRIES",
		"classifier.timeout_secs":         "MEDAMOUNT_CLASSIFIER_TIMEOUT_SECS",
		"guardrails.input_enabled":        "MEDAMOUNT_GUARDRAILS_INPUT_ENABLED",
		"guardrails.output_enabled":       "MEDAMOUNT_GUARDRAILS_OUTPUT_ENABLED",
		"guardrails.ai_safety_enabled":    "MEDAMOUNT_GUARDRAILS_AI_SAFETY_ENABLED",
		"guardrails.max_file_size_mb":     "MEDAMOUNT_GUARDRAILS_MAX_FILE_SIZE_MB",
		"guardrails.max_text_length":      "MEDAMOUNT_GUARDRAILS_MAX_TEXT_LENGTH",
		"guardrails.arithmetic_tolerance": "MEDAMOUNT_GUARDRAILS_ARITHMETIC_TOLERANCE",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if MEDAMOUNT_SERVER_PORT
	// is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("MEDAMOUNT_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.OCR = OCRConfig{
		Engine:        v.GetString("ocr.engine"),
		Language:      v.GetString("ocr.language"),
		MinConfidence: v.GetFloat64("ocr.min_confidence"),
	}
	cfg.Normalization = NormalizationConfig{
		MinConfidence: v.GetFloat64("normalization.min_confidence"),
	}
	cfg.Classifier = ClassifierConfig{
		AIEnabled:       v.GetBool("classifier.ai_enabled"),
		FallbackEnabled: v.GetBool("classifier.fallback_enabled"),
		Provider:        v.GetString("classifier.provider"),
		APIKey:          v.GetString("classifier.api_key"),
		Model:           v.GetString("classifier.model"),
		MaxRetries:      v.GetInt("classifier.max_retries"),
		TimeoutSecs:     v.GetInt("classifier.timeout_secs"),
	}
	cfg.Guardrails = GuardrailsConfig{
		InputEnabled:        v.GetBool("guardrails.input_enabled"),
		OutputEnabled:       v.GetBool("guardrails.output_enabled"),
		AISafetyEnabled:     v.GetBool("guardrails.ai_safety_enabled"),
		MaxFileSizeMB:       v.GetInt64("guardrails.max_file_size_mb"),
		MaxTextLength:       v.GetInt("guardrails.max_text_length"),
		ArithmeticTolerance: v.GetFloat64("guardrails.arithmetic_tolerance"),
	}

	return cfg, nil
}
