package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Log         LogConfig         `toml:"log"`
	Setlist     SetlistConfig     `toml:"setlist"`
	Tagging     TaggingConfig     `toml:"tagging"`
	Artist      ArtistConfig      `toml:"artist"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	YouTube YouTubeConfig `toml:"youtube"`
}

// SpotifyConfig contains Spotify client-credentials settings for catalog search.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	Market       string `toml:"market"`
}

// YouTubeConfig contains YouTube Data API settings.
type YouTubeConfig struct {
	APIKey    string `toml:"api_key"`
	ChannelID string `toml:"channel_id"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig controls logger verbosity.
type LogConfig struct {
	Level string `toml:"level"`
}

// SetlistConfig tunes comment-based setlist extraction.
type SetlistConfig struct {
	MaxComments       int      `toml:"max_comments"`
	RequestIntervalMS int      `toml:"request_interval_ms"`
	NoisePatterns     []string `toml:"noise_patterns"`
}

// TaggingConfig tunes the title tag classifier.
type TaggingConfig struct {
	Timezone string       `toml:"timezone"`
	Rules    []RuleConfig `toml:"rules"`
}

// RuleConfig describes one tag rule in configuration form.
//
// Kind is one of keyword, morning, serial, milestone, hashtag, scoped or duration.
type RuleConfig struct {
	Tag             string   `toml:"tag"`
	Kind            string   `toml:"kind"`
	Keywords        []string `toml:"keywords"`
	MorningKeywords []string `toml:"morning_keywords"`
	EventKeywords   []string `toml:"event_keywords"`
	Exclude         []string `toml:"exclude"`
	FoldCase        bool     `toml:"fold_case"`
	MinMinutes      int      `toml:"min_minutes"`
}

// ArtistConfig tunes catalog artist resolution.
type ArtistConfig struct {
	PriorityArtist    string `toml:"priority_artist"`
	SearchLimit       int    `toml:"search_limit"`
	FallbackMarket    string `toml:"fallback_market"` // empty searches every market
	RequestIntervalMS int    `toml:"request_interval_ms"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks numeric ranges and names that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	if c.Setlist.MaxComments < 1 || c.Setlist.MaxComments > 100 {
		return fmt.Errorf("%w: setlist.max_comments must be within 1-100, got %d", ErrInvalidConfig, c.Setlist.MaxComments)
	}
	if c.Artist.SearchLimit < 1 || c.Artist.SearchLimit > 50 {
		return fmt.Errorf("%w: artist.search_limit must be within 1-50, got %d", ErrInvalidConfig, c.Artist.SearchLimit)
	}
	if c.Setlist.RequestIntervalMS < 0 || c.Artist.RequestIntervalMS < 0 {
		return fmt.Errorf("%w: request intervals cannot be negative", ErrInvalidConfig)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
	}
	for i, rule := range c.Tagging.Rules {
		if rule.Tag == "" {
			return fmt.Errorf("%w: tagging.rules[%d] has no tag", ErrInvalidConfig, i)
		}
	}
	return nil
}

// Location returns the time zone used to derive local stream hours.
func (c *Config) Location() (*time.Location, error) {
	if c.Tagging.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Tagging.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: tagging.timezone: %v", ErrInvalidConfig, err)
	}
	return loc, nil
}

// Interval converts a millisecond setting to a [time.Duration].
func Interval(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
