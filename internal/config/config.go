package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".boardroom"
	envPrefix  = "BOARDROOM"

	// ConfigFileEnv points at an explicit config file, bypassing the search path.
	ConfigFileEnv = "BOARDROOM_CONFIG"

	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Generation GenerationConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	Slack      SlackConfig
	Notion     NotionConfig
	Google     GoogleConfig
	Twilio     TwilioConfig
	AMQP       AMQPConfig
	Personas   PersonasConfig
	History    HistoryConfig
	Context    ContextConfig
	Notify     NotifyConfig
	Log        LogConfig
}

type GenerationConfig struct {
	Provider string
	Timeout  time.Duration
	Retry    RetryConfig
}

type RetryConfig struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type SlackConfig struct {
	WebhookURL string
	Channel    string
}

type NotionConfig struct {
	APIKey  string
	BaseURL string
}

type GoogleConfig struct {
	APIKey string
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	BaseURL    string
}

type AMQPConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
}

type PersonasConfig struct {
	Path string
}

type HistoryConfig struct {
	MaxTurns int
}

type ContextConfig struct {
	Window int
}

type NotifyConfig struct {
	Timeout time.Duration
}

type LogConfig struct {
	Level string
	JSON  bool
}

var envAliases = map[string]string{
	"openai.api_key":     "OPENAI_API_KEY",
	"gemini.api_key":     "GEMINI_API_KEY",
	"slack.webhook_url":  "SLACK_WEBHOOK_URL",
	"notion.api_key":     "NOTION_API_KEY",
	"google.api_key":     "GOOGLE_API_KEY",
	"twilio.account_sid": "TWILIO_ACCOUNT_SID",
	"twilio.auth_token":  "TWILIO_AUTH_TOKEN",
}

func setDefaults(cfg *viper.Viper) {
	cfg.SetDefault("generation.provider", ProviderOpenAI)
	cfg.SetDefault("generation.timeout", "60s")
	cfg.SetDefault("generation.retry.attempts", 1)
	cfg.SetDefault("generation.retry.base_delay", "500ms")
	cfg.SetDefault("generation.retry.max_delay", "5s")
	cfg.SetDefault("openai.base_url", "https://api.openai.com/v1")
	cfg.SetDefault("openai.model", "gpt-4")
	cfg.SetDefault("openai.max_tokens", 300)
	cfg.SetDefault("openai.temperature", 0.7)
	cfg.SetDefault("gemini.model", "gemini-2.0-flash")
	cfg.SetDefault("slack.channel", "#executive-insights")
	cfg.SetDefault("notion.base_url", "https://api.notion.com")
	cfg.SetDefault("twilio.base_url", "https://api.twilio.com")
	cfg.SetDefault("amqp.exchange", "boardroom")
	cfg.SetDefault("amqp.routing_key", "boardroom.discussion")
	cfg.SetDefault("history.max_turns", 1000)
	cfg.SetDefault("context.window", 3)
	cfg.SetDefault("notify.timeout", "10s")
	cfg.SetDefault("log.level", "info")
	cfg.SetDefault("log.json", false)
}

// Load reads ~/.boardroom/config.toml (when present) and the environment
// into a validated Config. A missing config file is not an error.
func Load(cfg *viper.Viper) (Config, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	setDefaults(cfg)

	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()
	for key, alias := range envAliases {
		envKey := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := cfg.BindEnv(key, envKey, alias); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", alias, err)
		}
	}

	if explicit := os.Getenv(ConfigFileEnv); explicit != "" {
		cfg.SetConfigFile(explicit)
	} else {
		cfg.SetConfigName(configName)
		cfg.SetConfigType(configType)
		if homeDir, err := os.UserHomeDir(); err == nil {
			cfg.AddConfigPath(filepath.Join(homeDir, configDir))
		}
	}

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	loaded := Config{
		Generation: GenerationConfig{
			Provider: strings.ToLower(strings.TrimSpace(cfg.GetString("generation.provider"))),
			Timeout:  cfg.GetDuration("generation.timeout"),
			Retry: RetryConfig{
				Attempts:  cfg.GetInt("generation.retry.attempts"),
				BaseDelay: cfg.GetDuration("generation.retry.base_delay"),
				MaxDelay:  cfg.GetDuration("generation.retry.max_delay"),
			},
		},
		OpenAI: OpenAIConfig{
			APIKey:      cfg.GetString("openai.api_key"),
			BaseURL:     cfg.GetString("openai.base_url"),
			Model:       cfg.GetString("openai.model"),
			MaxTokens:   cfg.GetInt("openai.max_tokens"),
			Temperature: cfg.GetFloat64("openai.temperature"),
		},
		Gemini: GeminiConfig{
			APIKey: cfg.GetString("gemini.api_key"),
			Model:  cfg.GetString("gemini.model"),
		},
		Slack: SlackConfig{
			WebhookURL: cfg.GetString("slack.webhook_url"),
			Channel:    cfg.GetString("slack.channel"),
		},
		Notion: NotionConfig{
			APIKey:  cfg.GetString("notion.api_key"),
			BaseURL: cfg.GetString("notion.base_url"),
		},
		Google: GoogleConfig{APIKey: cfg.GetString("google.api_key")},
		Twilio: TwilioConfig{
			AccountSID: cfg.GetString("twilio.account_sid"),
			AuthToken:  cfg.GetString("twilio.auth_token"),
			BaseURL:    cfg.GetString("twilio.base_url"),
		},
		AMQP: AMQPConfig{
			URL:        cfg.GetString("amqp.url"),
			Exchange:   cfg.GetString("amqp.exchange"),
			RoutingKey: cfg.GetString("amqp.routing_key"),
		},
		Personas: PersonasConfig{Path: cfg.GetString("personas.path")},
		History:  HistoryConfig{MaxTurns: cfg.GetInt("history.max_turns")},
		Context:  ContextConfig{Window: cfg.GetInt("context.window")},
		Notify:   NotifyConfig{Timeout: cfg.GetDuration("notify.timeout")},
		Log: LogConfig{
			Level: cfg.GetString("log.level"),
			JSON:  cfg.GetBool("log.json"),
		},
	}

	if err := loaded.Validate(); err != nil {
		return Config{}, err
	}

	return loaded, nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.Generation.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("unknown generation provider %q", c.Generation.Provider))
	}
	if c.Generation.Timeout <= 0 {
		errs = append(errs, errors.New("generation.timeout must be positive"))
	}
	if c.Generation.Retry.Attempts < 1 {
		errs = append(errs, errors.New("generation.retry.attempts must be at least 1"))
	}
	if c.Generation.Retry.BaseDelay < 0 || c.Generation.Retry.MaxDelay < 0 {
		errs = append(errs, errors.New("generation.retry delays must not be negative"))
	}
	if c.Notify.Timeout <= 0 {
		errs = append(errs, errors.New("notify.timeout must be positive"))
	}
	if c.History.MaxTurns <= 0 {
		errs = append(errs, errors.New("history.max_turns must be positive"))
	}
	if c.Context.Window < 0 {
		errs = append(errs, errors.New("context.window must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validate config: %w", errors.Join(errs...))
	}

	return nil
}

// Services reports which external integrations have credentials configured.
func (c Config) Services() map[string]bool {
	return map[string]bool{
		"openai": c.OpenAI.APIKey != "",
		"gemini": c.Gemini.APIKey != "",
		"slack":  c.Slack.WebhookURL != "",
		"notion": c.Notion.APIKey != "",
		"google": c.Google.APIKey != "",
		"twilio": c.Twilio.AccountSID != "" && c.Twilio.AuthToken != "",
		"amqp":   c.AMQP.URL != "",
	}
}
