package config

import (
	"fmt"
	"strconv"
	"time"
)

// parseEnv overlays environment variables. lookup is os.LookupEnv outside
// tests; main loads .env into the process environment beforehand.
func parseEnv(config *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("HTTP_ADDR", &config.HTTPAddr)
	str("DATABASE_URL", &config.DatabaseDSN)
	str("SESSION_SECRET", &config.SessionSecret)
	str("AI_PROVIDER", &config.AIProvider)
	str("AI_MODEL", &config.AIModel)
	str("OPENAI_API_KEY", &config.OpenAIAPIKey)
	str("OPENAI_BASE_URL", &config.OpenAIBaseURL)
	str("GEMINI_API_KEY", &config.GeminiAPIKey)
	str("S3_ACCESS_KEY", &config.S3AccessKey)
	str("S3_SECRET_KEY", &config.S3SecretKey)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_ENDPOINT", &config.S3BaseEndpoint)

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SESSION_TTL", &config.SessionTTL},
		{"AI_TIMEOUT", &config.AITimeout},
		{"REQUEST_TIMEOUT", &config.RequestTimeout},
	}
	for _, d := range durations {
		v, ok := lookup(d.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"AUTO_MIGRATE", &config.AutoMigrate},
		{"SECURE_COOKIES", &config.SecureCookies},
		{"LOG_DEBUG", &config.Debug},
	}
	for _, b := range bools {
		v, ok := lookup(b.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", b.key, err)
		}
		*b.dst = parsed
	}

	return nil
}
