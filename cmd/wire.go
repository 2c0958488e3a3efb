package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bnema/boardroom/internal/adapters/generation"
	"github.com/bnema/boardroom/internal/adapters/generation/gemini"
	"github.com/bnema/boardroom/internal/adapters/generation/openai"
	"github.com/bnema/boardroom/internal/adapters/generation/retry"
	"github.com/bnema/boardroom/internal/adapters/httpapi"
	"github.com/bnema/boardroom/internal/adapters/notify/amqp"
	"github.com/bnema/boardroom/internal/adapters/notify/chain"
	"github.com/bnema/boardroom/internal/adapters/notify/slack"
	"github.com/bnema/boardroom/internal/adapters/personas"
	"github.com/bnema/boardroom/internal/adapters/probe"
	"github.com/bnema/boardroom/internal/adapters/secrets"
	"github.com/bnema/boardroom/internal/application"
	"github.com/bnema/boardroom/internal/config"
	"github.com/bnema/boardroom/internal/domain"
	"github.com/bnema/boardroom/internal/logging"
	"github.com/bnema/boardroom/internal/ports"
)

type app struct {
	logger    *zap.Logger
	boardroom *application.Boardroom
	probes    *application.ProbeService
	slack     *slack.Client
	closers   []io.Closer
}

type wireOptions struct {
	Verbose bool
	LogOut  io.Writer
}

func wireApp(ctx context.Context, opts wireOptions) (*app, error) {
	cfg, err := config.Load(viper.New())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := resolveCredentials(ctx, &cfg); err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if opts.Verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{Level: level, JSON: cfg.Log.JSON, Output: opts.LogOut})
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	source, err := personas.NewSource(cfg.Personas.Path)
	if err != nil {
		return nil, err
	}
	registry, err := loadRegistry(ctx, source)
	if err != nil {
		return nil, err
	}

	a := &app{logger: logger}

	generator, err := wireGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	httpClient := httpapi.Client{}
	a.slack = slack.New(slack.Options{
		WebhookURL: cfg.Slack.WebhookURL,
		Channel:    cfg.Slack.Channel,
		Client:     httpClient,
	})

	sinks := chain.New()
	if a.slack.Configured() {
		sinks.Add("slack", a.slack)
	}
	if cfg.AMQP.URL != "" {
		publisher, dialErr := amqp.Dial(amqp.Options{
			URL:        cfg.AMQP.URL,
			Exchange:   cfg.AMQP.Exchange,
			RoutingKey: cfg.AMQP.RoutingKey,
		})
		if dialErr != nil {
			logger.Warn("amqp sink disabled", zap.Error(dialErr))
		} else {
			sinks.Add("amqp", publisher)
			a.closers = append(a.closers, publisher)
		}
	}

	clock := ports.SystemClock{}
	var dispatcher *application.NotificationDispatcher
	if notifier := sinks.AsPort(); notifier != nil {
		dispatcher = application.NewNotificationDispatcher(notifier, registry, application.DispatcherOptions{
			Clock:   clock,
			Logger:  logger,
			Timeout: cfg.Notify.Timeout,
		})
	}

	orchestrator := application.NewOrchestrator(registry, generator, application.OrchestratorOptions{
		History:        application.NewChatHistoryLog(cfg.History.MaxTurns),
		Analytics:      application.NewAnalyticsAggregator(clock),
		Dispatcher:     dispatcher,
		Clock:          clock,
		Logger:         logger,
		PersonaTimeout: cfg.Generation.Timeout,
		ContextWindow:  cfg.Context.Window,
	})

	a.boardroom = application.NewBoardroom(registry, orchestrator, application.BoardroomOptions{
		Dispatcher: dispatcher,
		Clock:      clock,
		Services:   cfg.Services(),
	})

	a.probes = application.NewProbeService([]ports.Prober{
		a.slack,
		&probe.Notion{APIKey: cfg.Notion.APIKey, BaseURL: cfg.Notion.BaseURL, Client: httpClient},
		&probe.Google{APIKey: cfg.Google.APIKey},
		&probe.Twilio{AccountSID: cfg.Twilio.AccountSID, AuthToken: cfg.Twilio.AuthToken, BaseURL: cfg.Twilio.BaseURL, Client: httpClient},
		amqp.NewProber(cfg.AMQP.URL),
	}, logger, application.DefaultProbeTimeout)

	return a, nil
}

func loadRegistry(ctx context.Context, source ports.PersonaSource) (*application.PersonaRegistry, error) {
	catalogue, err := source.LoadPersonas(ctx)
	if err != nil {
		return nil, fmt.Errorf("load personas: %w", err)
	}

	registry, err := application.NewPersonaRegistry(catalogue)
	if err != nil {
		return nil, fmt.Errorf("build persona registry: %w", err)
	}

	return registry, nil
}

// resolveCredentials swaps "secret:<key>" values for the secret they name,
// read from pass with ~/.boardroom/secrets as fallback.
func resolveCredentials(ctx context.Context, cfg *config.Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve home directory: %w", err)
	}
	reader := secrets.NewPassFirstWithDirFallback(filepath.Join(homeDir, ".boardroom", "secrets"))

	fields := []struct {
		key   string
		value *string
	}{
		{"openai.api_key", &cfg.OpenAI.APIKey},
		{"gemini.api_key", &cfg.Gemini.APIKey},
		{"slack.webhook_url", &cfg.Slack.WebhookURL},
		{"notion.api_key", &cfg.Notion.APIKey},
		{"google.api_key", &cfg.Google.APIKey},
		{"twilio.auth_token", &cfg.Twilio.AuthToken},
		{"amqp.url", &cfg.AMQP.URL},
	}
	for _, field := range fields {
		resolved, err := secrets.Resolve(ctx, reader, *field.value)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", field.key, err)
		}
		*field.value = resolved
	}

	return nil
}

// wireGenerator picks the configured provider. A missing key degrades to a
// generator that always fails, so every persona answers with the fallback.
func wireGenerator(ctx context.Context, cfg config.Config, logger *zap.Logger) (ports.Generator, error) {
	var (
		generator ports.Generator
		err       error
	)

	switch cfg.Generation.Provider {
	case config.ProviderGemini:
		generator, err = gemini.NewGenerator(ctx, gemini.Options{
			APIKey:      cfg.Gemini.APIKey,
			Model:       cfg.Gemini.Model,
			MaxTokens:   gemini.DefaultMaxTokens,
			Temperature: gemini.DefaultTemperature,
		})
	default:
		generator, err = openai.NewGenerator(openai.Options{
			BaseURL:     cfg.OpenAI.BaseURL,
			APIKey:      cfg.OpenAI.APIKey,
			Model:       cfg.OpenAI.Model,
			MaxTokens:   cfg.OpenAI.MaxTokens,
			Temperature: cfg.OpenAI.Temperature,
		})
	}
	if err != nil {
		if !errors.Is(err, domain.ErrNotConfigured) {
			return nil, fmt.Errorf("wire %s generator: %w", cfg.Generation.Provider, err)
		}
		logger.Warn("generation provider not configured", zap.String("provider", cfg.Generation.Provider))
		return generation.Unavailable{Err: err}, nil
	}

	return retry.Wrap(generator, retry.Policy{
		Attempts:  cfg.Generation.Retry.Attempts,
		BaseDelay: cfg.Generation.Retry.BaseDelay,
		MaxDelay:  cfg.Generation.Retry.MaxDelay,
	}, logger), nil
}

// close waits for pending notifications, then releases broker connections.
func (a *app) close() error {
	a.boardroom.Close()

	var errs []error
	for _, closer := range a.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	_ = a.logger.Sync()

	return errors.Join(errs...)
}
