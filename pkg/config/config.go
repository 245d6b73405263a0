// pkg/config/config.go

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv           string
	HTTPPort         string
	LogFormat        string
	LogLevel         string
	MetricsNamespace string

	CatalogSource  string
	InvoicePrefix  string
	CurrencySymbol string
	CompanyProfile string
	FontPath       string
	BoldFontPath   string

	OutputDir       string
	ArchiveS3Bucket string
	ArchiveS3Prefix string
	AWSRegion       string

	SMTP SMTPConfig
	Mail MailConfig
}

// SMTPConfig carries delivery transport settings. Address and Credential are
// the sender login; both stay out of source control.
type SMTPConfig struct {
	Host       string
	Port       int
	Address    string
	Credential string
	FromName   string
	TLS        string
	Timeout    time.Duration
}

// MailConfig carries the message templates.
type MailConfig struct {
	Subject string
	Body    string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:           valueOrDefault(k.String("APP_ENV"), "development"),
		HTTPPort:         valueOrDefault(k.String("HTTP_PORT"), "8080"),
		LogFormat:        valueOrDefault(k.String("LOG_FORMAT"), "json"),
		LogLevel:         valueOrDefault(k.String("LOG_LEVEL"), "info"),
		MetricsNamespace: valueOrDefault(k.String("METRICS_NAMESPACE"), "invoicer"),
		CatalogSource:    valueOrDefault(k.String("CATALOG_SOURCE"), "."),
		InvoicePrefix:    valueOrDefault(k.String("INVOICE_PREFIX"), "ITCAM"),
		CurrencySymbol:   valueOrDefault(k.String("CURRENCY_SYMBOL"), "₹"),
		CompanyProfile:   strings.TrimSpace(k.String("COMPANY_PROFILE")),
		FontPath:         strings.TrimSpace(k.String("FONT_PATH")),
		BoldFontPath:     strings.TrimSpace(k.String("FONT_BOLD_PATH")),
		OutputDir:        valueOrDefault(k.String("OUTPUT_DIR"), "."),
		ArchiveS3Bucket:  strings.TrimSpace(k.String("ARCHIVE_S3_BUCKET")),
		ArchiveS3Prefix:  strings.TrimSpace(k.String("ARCHIVE_S3_PREFIX")),
		AWSRegion:        valueOrDefault(k.String("AWS_REGION"), "ap-south-1"),
		SMTP: SMTPConfig{
			Host:       strings.TrimSpace(k.String("SMTP_HOST")),
			Port:       parseInt(k.String("SMTP_PORT"), 587),
			Address:    strings.TrimSpace(k.String("SMTP_ADDRESS")),
			Credential: k.String("SMTP_CREDENTIAL"),
			FromName:   strings.TrimSpace(k.String("SMTP_FROM_NAME")),
			TLS:        valueOrDefault(k.String("SMTP_TLS"), "mandatory"),
			Timeout:    parseDuration(k.String("SMTP_TIMEOUT"), "30s"),
		},
		Mail: MailConfig{
			Subject: k.String("MAIL_SUBJECT"),
			Body:    strings.ReplaceAll(k.String("MAIL_BODY"), `\n`, "\n"),
		},
	}

	if cfg.SMTP.Host != "" && cfg.SMTP.Address == "" {
		return nil, errors.New("SMTP_ADDRESS is required when SMTP_HOST is set")
	}
	if cfg.SMTP.Port <= 0 || cfg.SMTP.Port > 65535 {
		return nil, fmt.Errorf("SMTP_PORT %d out of range", cfg.SMTP.Port)
	}

	return cfg, nil
}

// DeliveryEnabled reports whether an SMTP relay is configured.
func (c *Config) DeliveryEnabled() bool {
	return c.SMTP.Host != ""
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.HTTPPort)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return v
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
