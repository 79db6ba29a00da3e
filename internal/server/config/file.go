package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/lawhelper/internal/flagx"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the config file. YAML is a superset of
// JSON, so either format is accepted. Durations use Go syntax ("45s").
type FileConfig struct {
	HTTPAddr        string        `yaml:"http_addr"`
	DatabaseDSN     string        `yaml:"database_dsn"`
	AutoMigrate     *bool         `yaml:"auto_migrate"`
	SessionSecret   string        `yaml:"session_secret"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
	SecureCookies   *bool         `yaml:"secure_cookies"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	AIProvider      string        `yaml:"ai_provider"`
	AIModel         string        `yaml:"ai_model"`
	OpenAIBaseURL   string        `yaml:"openai_base_url"`
	AITimeout       time.Duration `yaml:"ai_timeout"`
	UploadMaxBytes  int64         `yaml:"upload_max_bytes"`
	AnalyzeMaxBytes int64         `yaml:"analyze_max_bytes"`
	HistoryLimit    int           `yaml:"history_limit"`
	S3Bucket        string        `yaml:"s3_bucket"`
	S3Region        string        `yaml:"s3_region"`
	S3BaseEndpoint  string        `yaml:"s3_base_endpoint"`
	Debug           *bool         `yaml:"debug"`
}

// parseFile overlays the file named by -c/-config onto config. Keys absent
// from the file keep their current value. Secrets are read from the
// environment only.
func parseFile(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	fc := &FileConfig{}
	if err := yaml.Unmarshal(b, fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&config.HTTPAddr, fc.HTTPAddr)
	setString(&config.DatabaseDSN, fc.DatabaseDSN)
	setBool(&config.AutoMigrate, fc.AutoMigrate)
	setString(&config.SessionSecret, fc.SessionSecret)
	setDuration(&config.SessionTTL, fc.SessionTTL)
	setBool(&config.SecureCookies, fc.SecureCookies)
	setDuration(&config.RequestTimeout, fc.RequestTimeout)
	setString(&config.AIProvider, fc.AIProvider)
	setString(&config.AIModel, fc.AIModel)
	setString(&config.OpenAIBaseURL, fc.OpenAIBaseURL)
	setDuration(&config.AITimeout, fc.AITimeout)
	if fc.UploadMaxBytes > 0 {
		config.UploadMaxBytes = fc.UploadMaxBytes
	}
	if fc.AnalyzeMaxBytes > 0 {
		config.AnalyzeMaxBytes = fc.AnalyzeMaxBytes
	}
	if fc.HistoryLimit > 0 {
		config.HistoryLimit = fc.HistoryLimit
	}
	setString(&config.S3Bucket, fc.S3Bucket)
	setString(&config.S3Region, fc.S3Region)
	setString(&config.S3BaseEndpoint, fc.S3BaseEndpoint)
	setBool(&config.Debug, fc.Debug)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
