package config

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"hoursync/everhour"
	"hoursync/submitter"
)

const (
	KeyTogglURL            = "toggl.url"
	KeyTogglAPIKey         = "toggl.api_key"
	KeyEverhourURL         = "everhour.url"
	KeyEverhourAPIKey      = "everhour.api_key"
	KeyHTTPTimeout         = "http.timeout"
	KeyRetryMaxAttempts    = "retry.max_attempts"
	KeyRetryMaxTotalWait   = "retry.max_total_wait"
	KeyRetryDefaultWait    = "retry.default_wait"
	KeyAggregateDayOrder   = "aggregate.day_order"
	KeyMetricsPushgateway  = "metrics.pushgateway_url"
	KeyLogLevel            = "log.level"
	EnvTogglAPIKey         = "TOGGL_API_KEY"
	EnvEverhourAPIKey      = "EVERHOUR_API_KEY"
	everhourTaskValidation = "everhour_task"
)

type Config struct {
	Toggl     TogglConfig     `mapstructure:"toggl" validate:"required"`
	Everhour  EverhourConfig  `mapstructure:"everhour" validate:"required"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Retry     RetryConfig     `mapstructure:"retry"`
	Aggregate AggregateConfig `mapstructure:"aggregate"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Log       LogConfig       `mapstructure:"log"`
}

// API keys are optional here; commands that talk to a service require them.
type TogglConfig struct {
	URL    string `mapstructure:"url" validate:"required,url"`
	APIKey string `mapstructure:"api_key"`
}

type EverhourConfig struct {
	URL    string `mapstructure:"url" validate:"required,url"`
	APIKey string `mapstructure:"api_key"`
}

type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type RetryConfig struct {
	MaxAttempts  int           `mapstructure:"max_attempts" validate:"gte=0"`
	MaxTotalWait time.Duration `mapstructure:"max_total_wait" validate:"gte=0"`
	DefaultWait  time.Duration `mapstructure:"default_wait" validate:"gte=0"`
}

type AggregateConfig struct {
	DayOrder string `mapstructure:"day_order" validate:"oneof=encounter chronological"`
}

type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url" validate:"omitempty,url"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// RetryPolicy converts the retry section for the deliverer.
func (c Config) RetryPolicy() submitter.RetryPolicy {
	return submitter.RetryPolicy{
		MaxAttempts:  c.Retry.MaxAttempts,
		MaxTotalWait: c.Retry.MaxTotalWait,
		DefaultWait:  c.Retry.DefaultWait,
	}
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# hoursync configuration
# API keys can also be provided via TOGGL_API_KEY and EVERHOUR_API_KEY.
toggl:
  url: "https://api.track.toggl.com"
  api_key: ""

everhour:
  url: "https://api.everhour.com"
  api_key: ""

http:
  timeout: 30s

retry:
  # 0 disables a limit.
  max_attempts: 10
  max_total_wait: 10m
  default_wait: 1s

aggregate:
  # encounter keeps days in the order the tracker returned them; chronological sorts by date.
  day_order: encounter

metrics:
  pushgateway_url: ""

log:
  level: info
`
}

// NewValidator returns a validator that also knows the everhour_task tag.
func NewValidator() *validator.Validate {
	validate := validator.New()
	// Registration only fails for empty tags or nil functions.
	_ = validate.RegisterValidation(everhourTaskValidation, func(fl validator.FieldLevel) bool {
		return everhour.ValidTaskID(fl.Field().String())
	})
	return validate
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.Aggregate.DayOrder = strings.ToLower(strings.TrimSpace(cfg.Aggregate.DayOrder))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	if err := NewValidator().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyTogglURL, "https://api.track.toggl.com")
	v.SetDefault(KeyTogglAPIKey, "")
	v.SetDefault(KeyEverhourURL, "https://api.everhour.com")
	v.SetDefault(KeyEverhourAPIKey, "")
	v.SetDefault(KeyHTTPTimeout, 30*time.Second)
	v.SetDefault(KeyRetryMaxAttempts, 10)
	v.SetDefault(KeyRetryMaxTotalWait, 10*time.Minute)
	v.SetDefault(KeyRetryDefaultWait, time.Second)
	v.SetDefault(KeyAggregateDayOrder, "encounter")
	v.SetDefault(KeyMetricsPushgateway, "")
	v.SetDefault(KeyLogLevel, "info")

	// Errors only occur when no key is given.
	_ = v.BindEnv(KeyTogglAPIKey, EnvTogglAPIKey)
	_ = v.BindEnv(KeyEverhourAPIKey, EnvEverhourAPIKey)
}
