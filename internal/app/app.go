// Package app assembles the bot: configuration, infrastructure, the
// exercise catalog, the dialogue engine, and the Telegram wiring.
package app

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"lingobot/core/bootstrap"
	"lingobot/core/cmd"
	coreconfig "lingobot/core/config"
	coredatabase "lingobot/core/database"
	coretelegram "lingobot/core/telegram"
	"lingobot/core/telegram/router"
	"lingobot/internal/bot"
	"lingobot/internal/catalog"
	"lingobot/internal/dialogue"
	"lingobot/internal/progress"
	"lingobot/internal/session"
	"lingobot/internal/speech"

	tele "gopkg.in/telebot.v4"
)

// Config is the full application configuration: the core settings plus the
// progress database.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
}

// CoreConfig satisfies cmd.ConfigCarrier.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Config }

// LoadConfig reads YAML from path, overlays environment variables, and
// normalizes the result.
func LoadConfig(path string) (cmd.ConfigCarrier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("app: read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("app: parse config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("app: env overlay: %w", err)
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	return &cfg, nil
}

// App holds the assembled application.
type App struct {
	cfg      *Config
	registry *coretelegram.Registry
	service  *bot.Service
}

// Bootstrap initializes the logger and optional database, loads the
// exercise catalog, and wires the dialogue engine to Telegram handlers.
func Bootstrap(carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
	cfg, ok := carrier.(*Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:   &cfg.Config,
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("app: catalog: %w", err)
	}

	opts := dialogue.Options{}
	timeout := time.Duration(cfg.Speech.TimeoutSeconds) * time.Second
	if cfg.Speech.STTURL != "" {
		opts.Transcriber = speech.NewHTTPTranscriber(cfg.Speech.STTURL, timeout)
	}
	if cfg.Speech.TTSURL != "" {
		opts.Synthesizer = speech.NewHTTPSynthesizer(cfg.Speech.TTSURL, cfg.Speech.CacheDir, timeout)
	}

	var archive *progress.Repository
	if res.DB != nil {
		archive = progress.NewRepository(res.DB)
		opts.Recorder = archive
	}

	ctrl := dialogue.New(cat, session.NewStore(), opts)
	svc := &bot.Service{Ctrl: ctrl}
	if archive != nil {
		svc.Archive = archive
	}

	reg := coretelegram.NewRegistry()
	svc.Register(reg)

	return &App{cfg: cfg, registry: reg, service: svc}, nil
}

// TelegramRunOptions builds the run options consumed by cmd.Run.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	core := &a.cfg.Config

	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		AdminID: core.Telegram.AdminID,
	})
	routes = append(routes, router.TextRoutes(a.service, a.registry, router.TextOptions{})...)
	routes = append(routes, router.CallbackRoute(a.registry, router.CallbackOptions{}))
	routes = append(routes, a.service.VoiceRoute())

	mws := coretelegram.DefaultMiddlewares(core, func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: "Slow down a little"})
	})

	return coretelegram.RunOptions{
		Config:      core,
		Registry:    a.registry,
		Middlewares: mws,
		Routes:      routes,
	}, nil
}
