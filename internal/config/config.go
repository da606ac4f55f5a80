package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"

	"fpl-live-draft/internal/constants"
	"fpl-live-draft/internal/domain"
)

const (
	envPrefix     = "DRAFT_"
	configFileEnv = "DRAFT_CONFIG"
)

type Config struct {
	LogLevel   string `koanf:"log_level"`
	ServerPort string `koanf:"server_port"`

	// LeagueID, when set, is tracked from startup.
	LeagueID     string        `koanf:"league_id"`
	PollInterval time.Duration `koanf:"poll_interval"`
	RecentPicks  int           `koanf:"recent_picks"`
	Slots        string        `koanf:"slots"`

	RouteTimeout   time.Duration `koanf:"route_timeout"`
	RelayBaseURL   string        `koanf:"relay_base_url"`
	FantasyBaseURL string        `koanf:"fantasy_base_url"`
	DraftBaseURL   string        `koanf:"draft_base_url"`
	CORSProxies    []string      `koanf:"cors_proxies"`
	MirrorBaseURL  string        `koanf:"mirror_base_url"`

	// LiveOrigins are host patterns allowed to open /v1/live cross-origin.
	LiveOrigins []string `koanf:"live_origins"`

	SlotLayout []domain.SlotCapacity `koanf:"-"`
}

func defaults() Config {
	return Config{
		LogLevel:       "info",
		ServerPort:     "8080",
		PollInterval:   constants.DefaultPollInterval,
		RecentPicks:    constants.DefaultRecentPicks,
		Slots:          constants.DefaultSlots,
		RouteTimeout:   constants.ExternalAPITimeout,
		FantasyBaseURL: constants.DefaultFantasyBaseURL,
		DraftBaseURL:   constants.DefaultDraftBaseURL,
		MirrorBaseURL:  constants.DefaultMirrorBaseURL,
	}
}

// Load layers defaults, .env, an optional YAML file named by DRAFT_CONFIG and
// DRAFT_* environment variables, in increasing priority.
func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	k := koanf.New(".")
	if path := os.Getenv(configFileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := defaults()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	// Decoding a slice onto a populated one overwrites by index, so the
	// default proxy list is only applied when nothing was configured.
	if !k.Exists("cors_proxies") {
		cfg.CORSProxies = append([]string(nil), constants.DefaultCORSProxies...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("league_id", cfg.LeagueID).
		Dur("poll_interval", cfg.PollInterval).
		Dur("route_timeout", cfg.RouteTimeout).
		Int("recent_picks", cfg.RecentPicks).
		Str("slots", cfg.Slots).
		Bool("relay", cfg.RelayBaseURL != "").
		Int("cors_proxies", len(cfg.CORSProxies)).
		Strs("live_origins", cfg.LiveOrigins).
		Msg("configuration loaded")

	return &cfg, nil
}

// Validate checks the loaded values and fills SlotLayout.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ServerPort) == "" {
		return fmt.Errorf("%w: server_port must not be empty", ErrInvalidConfig)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalidConfig, err)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll_interval must be positive", ErrInvalidConfig)
	}
	if c.RouteTimeout <= 0 {
		return fmt.Errorf("%w: route_timeout must be positive", ErrInvalidConfig)
	}
	if c.RecentPicks <= 0 {
		return fmt.Errorf("%w: recent_picks must be positive", ErrInvalidConfig)
	}
	if c.LeagueID != "" {
		id, ok := domain.NormalizeLeagueID(c.LeagueID)
		if !ok {
			return fmt.Errorf("%w: league_id %q is not numeric", ErrInvalidConfig, c.LeagueID)
		}
		c.LeagueID = id
	}
	slots, err := domain.ParseSlots(c.Slots)
	if err != nil {
		return fmt.Errorf("%w: slots: %w", ErrInvalidConfig, err)
	}
	c.SlotLayout = slots
	return nil
}
