// Package config provides configuration management for the reeltruth service.
// Values come from built-in defaults, an optional YAML file, an optional .env
// file and environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/reeltruth/reeltruth/internal/analysis"
)

const (
	// Default values
	DefaultPort           = 8787
	DefaultBind           = "127.0.0.1"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
	DefaultDataDir        = ".reeltruth"
	DefaultExtractModel   = analysis.DefaultExtractModel
	DefaultEvaluateModel  = analysis.DefaultEvaluateModel
	DefaultRetryAttempts  = 1
	DefaultRetryBaseDelay = 1 * time.Second
	DefaultRetryMaxDelay  = 10 * time.Second
	DefaultAnalyzeTimeout = 5 * time.Minute
	DefaultEnvFile        = ".env"

	// Environment variable names
	EnvConfigFile       = "REELTRUTH_CONFIG"
	EnvEnvFile          = "REELTRUTH_ENV_FILE"
	EnvPort             = "REELTRUTH_PORT"
	EnvBind             = "REELTRUTH_BIND"
	EnvLogLevel         = "REELTRUTH_LOG_LEVEL"
	EnvLogFormat        = "REELTRUTH_LOG_FORMAT"
	EnvDataDir          = "REELTRUTH_DATA_DIR"
	EnvExtractModel     = "REELTRUTH_EXTRACT_MODEL"
	EnvEvaluateModel    = "REELTRUTH_EVALUATE_MODEL"
	EnvRetryAttempts    = "REELTRUTH_RETRY_ATTEMPTS"
	EnvAnalyzeTimeout   = "REELTRUTH_ANALYZE_TIMEOUT"
	EnvAPIToken         = "REELTRUTH_API_TOKEN"
	EnvAuthDisabled     = "REELTRUTH_AUTH_DISABLED"
	EnvInferenceBaseURL = "REELTRUTH_INFERENCE_BASE_URL"
	EnvAllowedOrigins   = "REELTRUTH_ALLOWED_ORIGINS"
	EnvGeminiAPIKey     = "GEMINI_API_KEY"

	// Database filename
	DBFilename = "reeltruth.db"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	Bind() string
	Addr() string
	LogLevel() string
	LogFormat() string
	DataDir() string
	DBPath() string
	AllowedHosts() []string
	AllowedOrigins() []string
	AnalyzeTimeout() time.Duration
	APIToken() string
	AuthDisabled() bool
	GeminiAPIKey() string
	InferenceBaseURL() string
	InferenceTimeout() time.Duration
	ExtractModel() string
	EvaluateModel() string
	RetryAttempts() int
	RetryBaseDelay() time.Duration
	RetryMaxDelay() time.Duration
}

// Settings is the full configuration tree. It doubles as the YAML schema.
type Settings struct {
	Server    ServerSettings    `yaml:"server"`
	Log       LogSettings       `yaml:"log"`
	Models    ModelSettings     `yaml:"models"`
	Retry     RetrySettings     `yaml:"retry"`
	Inference InferenceSettings `yaml:"inference"`
	DataDir   string            `yaml:"data_dir" validate:"required"`
}

type ServerSettings struct {
	Port           int           `yaml:"port" validate:"min=0,max=65535"` // 0 picks a free port
	Bind           string        `yaml:"bind" validate:"required"`
	AllowedHosts   []string      `yaml:"allowed_hosts" validate:"dive,required,hostname"`
	AllowedOrigins []string      `yaml:"allowed_origins" validate:"dive,required,url"`
	AnalyzeTimeout time.Duration `yaml:"analyze_timeout" validate:"min=0"`
	APIToken       string        `yaml:"api_token"`
	AuthDisabled   bool          `yaml:"auth_disabled"`
}

type LogSettings struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

type ModelSettings struct {
	Extract  string `yaml:"extract" validate:"required"`
	Evaluate string `yaml:"evaluate" validate:"required"`
}

type RetrySettings struct {
	MaxAttempts int           `yaml:"max_attempts" validate:"min=1,max=10"`
	BaseDelay   time.Duration `yaml:"base_delay" validate:"min=0"`
	MaxDelay    time.Duration `yaml:"max_delay" validate:"min=0"`
}

type InferenceSettings struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url" validate:"omitempty,url"`
	Timeout time.Duration `yaml:"timeout" validate:"min=0"`
}

// DefaultSettings returns the built-in configuration.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{
			Port:           DefaultPort,
			Bind:           DefaultBind,
			AnalyzeTimeout: DefaultAnalyzeTimeout,
		},
		Log: LogSettings{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Models: ModelSettings{
			Extract:  DefaultExtractModel,
			Evaluate: DefaultEvaluateModel,
		},
		Retry: RetrySettings{
			MaxAttempts: DefaultRetryAttempts,
			BaseDelay:   DefaultRetryBaseDelay,
			MaxDelay:    DefaultRetryMaxDelay,
		},
		DataDir: defaultDataDir(),
	}
}

// EnvConfig is the resolved configuration.
type EnvConfig struct {
	s Settings
}

// New loads configuration using the file named by REELTRUTH_CONFIG, if any.
func New() (*EnvConfig, error) {
	return Load(os.Getenv(EnvConfigFile))
}

// Load builds the configuration from defaults, the YAML file at path (skipped
// when path is empty), the .env file and the environment, then validates it.
func Load(path string) (*EnvConfig, error) {
	s := DefaultSettings()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	if err := applyEnv(&s); err != nil {
		return nil, err
	}

	if err := Validate(s); err != nil {
		return nil, err
	}

	return &EnvConfig{s: s}, nil
}

// loadEnvFile reads KEY=VALUE pairs from the .env file. Variables already set
// in the process environment win.
func loadEnvFile() error {
	path := os.Getenv(EnvEnvFile)
	if path == "" {
		path = DefaultEnvFile
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func applyEnv(s *Settings) error {
	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		s.Server.Port = port
	}

	if v := os.Getenv(EnvBind); v != "" {
		s.Server.Bind = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		s.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		s.Log.Format = strings.ToLower(v)
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		s.DataDir = v
	}
	if v := os.Getenv(EnvExtractModel); v != "" {
		s.Models.Extract = v
	}
	if v := os.Getenv(EnvEvaluateModel); v != "" {
		s.Models.Evaluate = v
	}

	if v := os.Getenv(EnvRetryAttempts); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvRetryAttempts, err)
		}
		s.Retry.MaxAttempts = n
	}

	if v := os.Getenv(EnvAnalyzeTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvAnalyzeTimeout, err)
		}
		s.Server.AnalyzeTimeout = d
	}

	if v := os.Getenv(EnvAPIToken); v != "" {
		s.Server.APIToken = v
	}

	if v := os.Getenv(EnvAuthDisabled); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvAuthDisabled, err)
		}
		s.Server.AuthDisabled = b
	}

	if v := os.Getenv(EnvAllowedOrigins); v != "" {
		s.Server.AllowedOrigins = splitList(v)
	}

	if v := os.Getenv(EnvInferenceBaseURL); v != "" {
		s.Inference.BaseURL = v
	}
	if v := os.Getenv(EnvGeminiAPIKey); v != "" {
		s.Inference.APIKey = v
	}
	return nil
}

var validate = validator.New()

// Validate checks s against its struct tags and reports the first offending
// field by its YAML path.
func Validate(s Settings) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("invalid config: %s failed %q (value %v)", yamlPath(fe.Namespace()), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("invalid config: %w", err)
}

// yamlPath turns "Settings.Server.Port" into "server.port".
func yamlPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = toSnake(p)
	}
	return strings.Join(parts, ".")
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && s[i-1] >= 'a' && s[i-1] <= 'z' {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.s.Server.Port
}

// Bind returns the interface the HTTP server listens on
func (c *EnvConfig) Bind() string {
	return c.s.Server.Bind
}

// Addr returns host:port for the HTTP listener
func (c *EnvConfig) Addr() string {
	return net.JoinHostPort(c.s.Server.Bind, strconv.Itoa(c.s.Server.Port))
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.s.Log.Level
}

// LogFormat returns the log format (json, text)
func (c *EnvConfig) LogFormat() string {
	return c.s.Log.Format
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.s.DataDir
}

// DBPath returns the full path to the SQLite settings database
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.s.DataDir, DBFilename)
}

// AllowedOrigins returns the browser origins granted CORS access.
func (c *EnvConfig) AllowedOrigins() []string {
	return append([]string(nil), c.s.Server.AllowedOrigins...)
}

// AllowedHosts returns the video hosts accepted at the HTTP boundary.
// Empty means any host.
func (c *EnvConfig) AllowedHosts() []string {
	return append([]string(nil), c.s.Server.AllowedHosts...)
}

func (c *EnvConfig) AnalyzeTimeout() time.Duration {
	return c.s.Server.AnalyzeTimeout
}

func (c *EnvConfig) APIToken() string {
	return c.s.Server.APIToken
}

func (c *EnvConfig) AuthDisabled() bool {
	return c.s.Server.AuthDisabled
}

func (c *EnvConfig) GeminiAPIKey() string {
	return c.s.Inference.APIKey
}

func (c *EnvConfig) InferenceBaseURL() string {
	return c.s.Inference.BaseURL
}

func (c *EnvConfig) InferenceTimeout() time.Duration {
	return c.s.Inference.Timeout
}

func (c *EnvConfig) ExtractModel() string {
	return c.s.Models.Extract
}

func (c *EnvConfig) EvaluateModel() string {
	return c.s.Models.Evaluate
}

func (c *EnvConfig) RetryAttempts() int {
	return c.s.Retry.MaxAttempts
}

func (c *EnvConfig) RetryBaseDelay() time.Duration {
	return c.s.Retry.BaseDelay
}

func (c *EnvConfig) RetryMaxDelay() time.Duration {
	return c.s.Retry.MaxDelay
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
