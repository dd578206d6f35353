// Package config handles application configuration loading from YAML files and environment variables.
package config

import (
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	contextutils "github.com/Vijayy-ai/EduTube/internal/utils"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server" yaml:"server"`

	// Database configuration
	Database DatabaseConfig `json:"database" yaml:"database"`

	// YouTube content configuration
	YouTube YouTubeConfig `json:"youtube" yaml:"youtube"`

	// Gemini generation configuration
	Gemini GeminiConfig `json:"gemini" yaml:"gemini"`

	// Quiz pipeline configuration
	Quiz QuizConfig `json:"quiz" yaml:"quiz"`

	// OpenTelemetry Configuration
	OpenTelemetry OpenTelemetryConfig `json:"open_telemetry" yaml:"open_telemetry"`

	// Internal fields
	IsTest bool `json:"is_test" yaml:"is_test"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port        string   `json:"port" yaml:"port"`
	Debug       bool     `json:"debug" yaml:"debug"`
	LogLevel    string   `json:"log_level" yaml:"log_level"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	URL             string        `json:"url" yaml:"url"`
	MaxOpenConns    int           `json:"max_open_conns" yaml:"max_open_conns"`       // Maximum number of open connections to the database
	MaxIdleConns    int           `json:"max_idle_conns" yaml:"max_idle_conns"`       // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime"` // Maximum amount of time a connection may be reused
}

// YouTubeConfig represents YouTube Data API and caption fetching configuration
type YouTubeConfig struct {
	APIKey  string `json:"api_key" yaml:"api_key"`
	BaseURL string `json:"base_url" yaml:"base_url"` // Default: "https://www.googleapis.com/youtube/v3"
	// TimedTextURL is the caption endpoint queried per video when fetching transcripts
	TimedTextURL     string `json:"timed_text_url" yaml:"timed_text_url"` // Default: "https://www.youtube.com/api/timedtext"
	MaxPlaylistItems int    `json:"max_playlist_items" yaml:"max_playlist_items"`
}

// GeminiConfig represents the generation provider configuration
type GeminiConfig struct {
	APIKey  string `json:"api_key" yaml:"api_key"`
	BaseURL string `json:"base_url" yaml:"base_url"` // Default: "https://generativelanguage.googleapis.com/v1beta"
	// PreferredModels is walked in order during model resolution; each entry is
	// matched as a substring of the listed model names.
	PreferredModels []string `json:"preferred_models" yaml:"preferred_models"`
	// FallbackModel is tried once when generation against the resolved model fails.
	FallbackModel   string  `json:"fallback_model" yaml:"fallback_model"`
	Temperature     float64 `json:"temperature" yaml:"temperature"`
	TopP            float64 `json:"top_p" yaml:"top_p"`
	TopK            int     `json:"top_k" yaml:"top_k"`
	MaxOutputTokens int     `json:"max_output_tokens" yaml:"max_output_tokens"`
}

// QuizConfig represents quiz pipeline configuration
type QuizConfig struct {
	DefaultQuestionCount int `json:"default_question_count" yaml:"default_question_count"`
	MaxQuestionsPerTier  int `json:"max_questions_per_tier" yaml:"max_questions_per_tier"`
	MaxTranscriptChars   int `json:"max_transcript_chars" yaml:"max_transcript_chars"`
	PassingScore         int `json:"passing_score" yaml:"passing_score"`
}

// OpenTelemetryConfig holds all OpenTelemetry-related configuration
type OpenTelemetryConfig struct {
	Endpoint       string            `json:"endpoint" yaml:"endpoint"`               // Default: "http://localhost:4317"
	Protocol       string            `json:"protocol" yaml:"protocol"`               // "grpc" or "http", default: "grpc"
	Insecure       bool              `json:"insecure" yaml:"insecure"`               // Default: true (for localhost)
	Headers        map[string]string `json:"headers" yaml:"headers"`                 // For authenticated endpoints
	ServiceName    string            `json:"service_name" yaml:"service_name"`       // Default: "edutube-backend"
	ServiceVersion string            `json:"service_version" yaml:"service_version"` // From version package
	EnableTracing  bool              `json:"enable_tracing" yaml:"enable_tracing"`   // Default: true
	EnableMetrics  bool              `json:"enable_metrics" yaml:"enable_metrics"`   // Default: true
	EnableLogging  bool              `json:"enable_logging" yaml:"enable_logging"`   // Default: true
	SamplingRate   float64           `json:"sampling_rate" yaml:"sampling_rate"`     // Default: 1.0 (100%)
}

// NewConfig loads configuration from YAML file first, then overrides with environment variables
func NewConfig() (result0 *Config, err error) {
	// Load config from YAML file
	config, err := loadConfigWithOverrides()
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to load config: %w", err)
	}

	// Override with environment variables
	config.overrideFromEnv()
	config.applyDefaults()

	return config, nil
}

// applyDefaults fills in values the config file may omit
func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.YouTube.BaseURL == "" {
		c.YouTube.BaseURL = DefaultYouTubeBaseURL
	}
	if c.YouTube.TimedTextURL == "" {
		c.YouTube.TimedTextURL = DefaultTimedTextURL
	}
	if c.YouTube.MaxPlaylistItems <= 0 {
		c.YouTube.MaxPlaylistItems = DefaultMaxPlaylistItems
	}
	if c.Gemini.BaseURL == "" {
		c.Gemini.BaseURL = DefaultGeminiBaseURL
	}
	if len(c.Gemini.PreferredModels) == 0 {
		c.Gemini.PreferredModels = []string{"gemini-1.5-flash", "gemini-1.5-pro", "gemini-pro"}
	}
	if c.Gemini.FallbackModel == "" {
		c.Gemini.FallbackModel = DefaultFallbackModel
	}
	if c.Gemini.Temperature == 0 {
		c.Gemini.Temperature = DefaultTemperature
	}
	if c.Gemini.TopP == 0 {
		c.Gemini.TopP = DefaultTopP
	}
	if c.Gemini.TopK == 0 {
		c.Gemini.TopK = DefaultTopK
	}
	if c.Gemini.MaxOutputTokens == 0 {
		c.Gemini.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if c.Quiz.DefaultQuestionCount <= 0 {
		c.Quiz.DefaultQuestionCount = DefaultQuestionCount
	}
	if c.Quiz.MaxQuestionsPerTier <= 0 {
		c.Quiz.MaxQuestionsPerTier = DefaultMaxQuestionsPerTier
	}
	if c.Quiz.MaxTranscriptChars <= 0 {
		c.Quiz.MaxTranscriptChars = DefaultMaxTranscriptChars
	}
	if c.Quiz.PassingScore <= 0 {
		c.Quiz.PassingScore = DefaultPassingScore
	}
}

// overrideFromEnv overrides config values with environment variables using reflection
func (c *Config) overrideFromEnv() {
	overrideStructFromEnv(c)
}

// overrideStructFromEnv recursively overrides struct fields with environment variables
func overrideStructFromEnv(v interface{}) {
	overrideStructFromEnvWithPrefix(v, "")
}

// overrideStructFromEnvWithPrefix recursively overrides struct fields with environment variables
func overrideStructFromEnvWithPrefix(v interface{}, prefix string) {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		// Skip unexported fields
		if !field.CanSet() {
			continue
		}

		// Get the yaml tag for the field
		yamlTag := fieldType.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}

		// Convert yaml tag to environment variable name
		envKey := strings.ToUpper(strings.ReplaceAll(yamlTag, "-", "_"))
		if prefix != "" {
			envKey = prefix + "_" + envKey
		}

		switch field.Kind() {
		case reflect.String:
			if envVal := os.Getenv(envKey); envVal != "" {
				field.SetString(envVal)
			}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if intVal, err := strconv.ParseInt(envVal, 10, 64); err == nil {
					field.SetInt(intVal)
				}
			}
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if uintVal, err := strconv.ParseUint(envVal, 10, 64); err == nil {
					field.SetUint(uintVal)
				}
			}
		case reflect.Float32, reflect.Float64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if floatVal, err := strconv.ParseFloat(envVal, 64); err == nil {
					field.SetFloat(floatVal)
				}
			}
		case reflect.Bool:
			if envVal := os.Getenv(envKey); envVal != "" {
				if boolVal, err := strconv.ParseBool(envVal); err == nil {
					field.SetBool(boolVal)
				}
			}
		case reflect.Slice:
			if envVal := os.Getenv(envKey); envVal != "" {
				// Handle string slices (like CORS_ORIGINS or GEMINI_PREFERRED_MODELS)
				if field.Type().Elem().Kind() == reflect.String {
					slice := strings.Split(envVal, ",")
					field.Set(reflect.ValueOf(slice))
				}
			}
		case reflect.Struct:
			// Recursively process nested structs with the field name as prefix
			if field.CanAddr() {
				fieldPrefix := strings.ToUpper(strings.ReplaceAll(yamlTag, "-", "_"))
				if prefix != "" {
					fieldPrefix = prefix + "_" + fieldPrefix
				}
				overrideStructFromEnvWithPrefix(field.Addr().Interface(), fieldPrefix)
			}
		case reflect.Ptr:
			// Handle pointer to struct
			if !field.IsNil() && field.Elem().Kind() == reflect.Struct {
				fieldPrefix := strings.ToUpper(strings.ReplaceAll(yamlTag, "-", "_"))
				if prefix != "" {
					fieldPrefix = prefix + "_" + fieldPrefix
				}
				overrideStructFromEnvWithPrefix(field.Interface(), fieldPrefix)
			}
		}
	}
}

// loadConfigWithOverrides loads the config file with potential local overrides
func loadConfigWithOverrides() (result0 *Config, err error) {
	// Try to load from environment variable first
	if envPath := os.Getenv("EDUTUBE_CONFIG_FILE"); envPath != "" {
		config, err := loadConfigFromFile(envPath)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to load config from %s: %w", envPath, err)
		}
		return config, nil
	}

	// If no environment variable is set, try default config.yaml
	return loadConfigFromFile("config.yaml")
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (result0 *Config, err error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(yamlFile, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
