package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure.
// It contains settings for the environment, the HTTP server, the OCR engine,
// the recognition pipeline and graceful shutdown behavior.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"30s" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
		// APIKey, when set, is required in the X-API-Key header of read requests
		APIKey string `env:"HTTP_API_KEY" env-default:"" yaml:"apiKey"`
		// AllowedOrigins restricts CORS to the listed origins; empty allows any origin
		AllowedOrigins []string `env:"HTTP_ALLOWED_ORIGINS" env-default:"" yaml:"allowedOrigins"`
		// MaxUploadBytes caps the size of an uploaded document image
		MaxUploadBytes int64 `env:"HTTP_MAX_UPLOAD_BYTES" env-default:"10485760" yaml:"maxUploadBytes"`
	} `yaml:"http"`

	// OCR contains the text recognition engine configurations
	OCR struct {
		// Language selects the trained model; OCR-B is the typeface MRZs are printed in
		Language string `env:"OCR_LANGUAGE" env-default:"ocrb" yaml:"language"`
		// TessdataPrefix overrides the directory searched for trained models
		TessdataPrefix string `env:"OCR_TESSDATA_PREFIX" env-default:"" yaml:"tessdataPrefix"`
		// Timeout bounds a single recognition call on one candidate band
		Timeout time.Duration `env:"OCR_TIMEOUT" env-default:"10s" yaml:"timeout"`
	} `yaml:"ocr"`

	// Pipeline contains the MRZ reading pipeline configurations
	Pipeline struct {
		// MaxBands is the maximum number of candidate MRZ bands recognized per image
		MaxBands int `env:"PIPELINE_MAX_BANDS" env-default:"3" yaml:"maxBands"`
		// MaxAge bounds the age implied by decoded birth dates, steering century inference
		MaxAge int `env:"PIPELINE_MAX_AGE" env-default:"100" yaml:"maxAge"`
		// MinFieldFraction is the minimum fraction of cleanly decoded fields below
		// which a result is reported unreadable
		MinFieldFraction float64 `env:"PIPELINE_MIN_FIELD_FRACTION" env-default:"0.5" yaml:"minFieldFraction"`
		// Parallelism limits concurrent recognition calls per request
		Parallelism int `env:"PIPELINE_PARALLELISM" env-default:"2" yaml:"parallelism"`
	} `yaml:"pipeline"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
func Load(configPath string) (*Config, error) {
	var cfg Config
	err := cleanenv.ReadConfig(configPath, &cfg)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}
