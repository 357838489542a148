package core

import (
	"time"
)

const (
	// DefaultServerHost binds on all interfaces; the Android emulator reaches the host via 10.0.2.2.
	DefaultServerHost = "0.0.0.0"
	// DefaultServerPort matches the port the mobile client is built against.
	DefaultServerPort = 3000
	// DefaultSearchLimit is the number of raw results requested from the upstream search.
	DefaultSearchLimit = 25
	// DefaultSearchMaxResults is the maximum number of songs returned to clients.
	DefaultSearchMaxResults = 20
	// DefaultSearchTimeoutSecs bounds a single upstream search call.
	DefaultSearchTimeoutSecs = 10
	// DefaultStrategyTimeoutSecs bounds a single resolution strategy attempt.
	DefaultStrategyTimeoutSecs = 15
	// DefaultStrategyRatePerMinute is the number of attempts each strategy may start per minute.
	DefaultStrategyRatePerMinute = 60
	// DefaultPlaylistTTLMins is the retention window of a playlist from its creation.
	DefaultPlaylistTTLMins = 60
	// DefaultPlaylistMax caps the number of live playlists held in memory.
	DefaultPlaylistMax = 10000
	// DefaultAPIURL is where client subcommands reach a running server.
	DefaultAPIURL = "http://127.0.0.1:3000"
)

const ServiceName = "soundbex"

var (
	// Version is stamped at build time with -ldflags "-X soundbex/internal/core.Version=...".
	Version = "dev"

	// DefaultStrategies is the resolution order used when none is configured.
	DefaultStrategies = []string{"loader", "y2mate", "convert2mp3"}
)

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Search   SearchConfig
	Resolver ResolverConfig
	Playlist PlaylistConfig
	Client   ClientConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type SearchConfig struct {
	// APIKey selects the YouTube Data API upstream; without it the keyless InnerTube search is used.
	APIKey     string
	BaseURL    string
	Limit      int
	MaxResults int
	Timeout    time.Duration
}

type ResolverConfig struct {
	Strategies      []string
	StrategyTimeout time.Duration
	RatePerMinute   int
}

type PlaylistConfig struct {
	TTL      time.Duration
	MaxLists int
}

type ClientConfig struct {
	APIURL string
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           DefaultServerHost,
			Port:           DefaultServerPort,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   90 * time.Second,
			RequestTimeout: 80 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Search: SearchConfig{
			Limit:      DefaultSearchLimit,
			MaxResults: DefaultSearchMaxResults,
			Timeout:    DefaultSearchTimeoutSecs * time.Second,
		},
		Resolver: ResolverConfig{
			Strategies:      append([]string(nil), DefaultStrategies...),
			StrategyTimeout: DefaultStrategyTimeoutSecs * time.Second,
			RatePerMinute:   DefaultStrategyRatePerMinute,
		},
		Playlist: PlaylistConfig{
			TTL:      DefaultPlaylistTTLMins * time.Minute,
			MaxLists: DefaultPlaylistMax,
		},
		Client: ClientConfig{
			APIURL: DefaultAPIURL,
		},
	}
}
