package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/fx"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port               string
	LogLevel           string
	MiddlewareEnabled  bool
	MaxStrLen          int
	MaxListLen         int
	MaxDepth           int
	ExcludedEndpoints  []string
	SensitiveKeys      []string
	ExcludedHeaders    []string
	MaskStyle          string
	UserIDField        string
	UserDisplayField   string
	JWTSecret          string
	GoogleCloudProject string
	LogTailEnabled     bool
}

// fileConfig mirrors Config for the optional YAML file. Pointer fields so
// an omitted key falls through to the default instead of zeroing it.
type fileConfig struct {
	Port               *string  `yaml:"port"`
	LogLevel           *string  `yaml:"log_level"`
	MiddlewareEnabled  *bool    `yaml:"middleware_enabled"`
	MaxStrLen          *int     `yaml:"max_str_len"`
	MaxListLen         *int     `yaml:"max_list_len"`
	MaxDepth           *int     `yaml:"max_depth"`
	ExcludedEndpoints  []string `yaml:"excluded_endpoints"`
	SensitiveKeys      []string `yaml:"sensitive_keys"`
	ExcludedHeaders    []string `yaml:"excluded_headers"`
	MaskStyle          *string  `yaml:"mask_style"`
	UserIDField        *string  `yaml:"user_id_field"`
	UserDisplayField   *string  `yaml:"user_display_field"`
	JWTSecret          *string  `yaml:"jwt_secret"`
	GoogleCloudProject *string  `yaml:"google_cloud_project"`
	LogTailEnabled     *bool    `yaml:"log_tail_enabled"`
}

// NewConfig resolves configuration in order: built-in defaults, then the YAML
// file named by CONFIG_FILE (if set), then environment variables.
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:              "8080",
		LogLevel:          "info",
		MiddlewareEnabled: true,
		MaxStrLen:         200,
		MaxListLen:        10,
		MaxDepth:          4,
		MaskStyle:         "partial",
		UserIDField:       "id",
		UserDisplayField:  "email",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.loadEnv()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyString(&c.Port, fc.Port)
	applyString(&c.LogLevel, fc.LogLevel)
	applyBool(&c.MiddlewareEnabled, fc.MiddlewareEnabled)
	applyInt(&c.MaxStrLen, fc.MaxStrLen)
	applyInt(&c.MaxListLen, fc.MaxListLen)
	applyInt(&c.MaxDepth, fc.MaxDepth)
	applyString(&c.MaskStyle, fc.MaskStyle)
	applyString(&c.UserIDField, fc.UserIDField)
	applyString(&c.UserDisplayField, fc.UserDisplayField)
	applyString(&c.JWTSecret, fc.JWTSecret)
	applyString(&c.GoogleCloudProject, fc.GoogleCloudProject)
	applyBool(&c.LogTailEnabled, fc.LogTailEnabled)

	if fc.ExcludedEndpoints != nil {
		c.ExcludedEndpoints = fc.ExcludedEndpoints
	}
	if fc.SensitiveKeys != nil {
		c.SensitiveKeys = fc.SensitiveKeys
	}
	if fc.ExcludedHeaders != nil {
		c.ExcludedHeaders = fc.ExcludedHeaders
	}

	return nil
}

func (c *Config) loadEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.MiddlewareEnabled = getEnvBool("LOG_MIDDLEWARE_ENABLED", c.MiddlewareEnabled)
	c.MaxStrLen = getEnvInt("LOG_MAX_STR_LEN", c.MaxStrLen)
	c.MaxListLen = getEnvInt("LOG_MAX_LIST_LEN", c.MaxListLen)
	c.MaxDepth = getEnvInt("LOG_MAX_DEPTH", c.MaxDepth)
	c.ExcludedEndpoints = getEnvList("LOG_EXCLUDED_ENDPOINTS", c.ExcludedEndpoints)
	c.SensitiveKeys = getEnvList("LOG_SENSITIVE_KEYS", c.SensitiveKeys)
	c.ExcludedHeaders = getEnvList("LOG_EXCLUDED_HEADERS", c.ExcludedHeaders)
	c.MaskStyle = getEnv("LOG_MASK_STYLE", c.MaskStyle)
	c.UserIDField = getEnv("LOG_USER_ID_FIELD", c.UserIDField)
	c.UserDisplayField = getEnv("LOG_USER_DISPLAY_FIELD", c.UserDisplayField)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.GoogleCloudProject = getEnv("GOOGLE_CLOUD_PROJECT", c.GoogleCloudProject)
	c.LogTailEnabled = getEnvBool("LOG_TAIL_ENABLED", c.LogTailEnabled)
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func applyBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func applyInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var Module = fx.Options(
	fx.Provide(NewConfig),
)
