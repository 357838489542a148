// Package main provides the soundbex CLI: the API server and a small client for it.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"soundbex/internal/core"
	httpserver "soundbex/internal/http"
	"soundbex/internal/playlist"
	"soundbex/internal/resolver"
	"soundbex/internal/search"
	"soundbex/internal/upstream"
)

const (
	envPrefix = "SOUNDBEX"
	// requestBudgetSlack is added on top of the worst-case resolution time.
	requestBudgetSlack = 5 * time.Second
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "soundbex",
	Short: "SoundBex - music search, audio stream resolution and playlists",
	Long: `SoundBex is the backend of a music player. It searches YouTube, resolves playable
audio URLs through a chain of third-party extractors and keeps short-lived playlists.

Running soundbex without a subcommand starts the HTTP API server.`,
	SilenceUsage: true,
	RunE:         runServer,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := core.DefaultConfig()
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "", "config file (default is .env)")
	flags.String("log-level", defaults.Log.Level, "log level (debug, info, warn, error)")
	flags.String("log-format", defaults.Log.Format, "log format (json, text)")
	flags.String("server-host", defaults.Server.Host, "HTTP server host")
	flags.Int("server-port", defaults.Server.Port, "HTTP server port")
	flags.String("search-api-key", "", "YouTube Data API key (empty uses the keyless web search)")
	flags.String("search-base-url", "", "Override the search endpoint of the selected search backend")
	flags.Int("search-timeout-secs", core.DefaultSearchTimeoutSecs, "Upstream search timeout in seconds")
	flags.StringSlice("resolver-strategies", defaults.Resolver.Strategies,
		"Resolution strategies in priority order (loader, y2mate, convert2mp3, vevioz, innertube)")
	flags.Int("resolver-timeout-secs", core.DefaultStrategyTimeoutSecs, "Timeout of a single resolution strategy attempt in seconds")
	flags.Int("resolver-rate-per-minute", core.DefaultStrategyRatePerMinute, "Attempts each strategy may start per minute (0 disables)")
	flags.Int("playlist-ttl-mins", core.DefaultPlaylistTTLMins, "Playlist retention window in minutes")
	flags.Int("playlist-max", core.DefaultPlaylistMax, "Maximum number of live playlists")
	flags.String("api-url", defaults.Client.APIURL, "Server URL used by client subcommands")
	flags.Bool("generate-env-example", false, "Generate .env.example file from current configuration and exit")

	if err := viper.BindPFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(newSearchCmd(), newStreamCmd(), newSongCmd(), newPlaylistCmd())
}

func initConfig() {
	envFile := ".env"
	if cfgFile != "" {
		envFile = cfgFile
	}

	if err := gotenv.Load(envFile); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(config.Log.Level, config.Log.Format)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	configureServer(cfg)
	configureSearch(cfg)
	configureResolver(cfg)
	configurePlaylist(cfg)
	cfg.Client.APIURL = viper.GetString("api-url")

	return cfg
}

func configureServer(cfg *core.Config) {
	cfg.Server.Host = viper.GetString("server-host")
	if cfg.Server.Host == "" {
		cfg.Server.Host = core.DefaultServerHost
	}
	cfg.Server.Port = viper.GetInt("server-port")
	cfg.Log.Level = viper.GetString("log-level")
	cfg.Log.Format = viper.GetString("log-format")
}

func configureSearch(cfg *core.Config) {
	cfg.Search.APIKey = viper.GetString("search-api-key")
	cfg.Search.BaseURL = viper.GetString("search-base-url")
	if secs := viper.GetInt("search-timeout-secs"); secs > 0 {
		cfg.Search.Timeout = time.Duration(secs) * time.Second
	}
}

func configureResolver(cfg *core.Config) {
	if names := splitList(viper.GetStringSlice("resolver-strategies")); len(names) > 0 {
		cfg.Resolver.Strategies = names
	}
	if secs := viper.GetInt("resolver-timeout-secs"); secs > 0 {
		cfg.Resolver.StrategyTimeout = time.Duration(secs) * time.Second
	}
	cfg.Resolver.RatePerMinute = viper.GetInt("resolver-rate-per-minute")

	// A stream request must outlive the whole chain.
	budget := time.Duration(len(cfg.Resolver.Strategies))*cfg.Resolver.StrategyTimeout + requestBudgetSlack
	if cfg.Server.RequestTimeout < budget {
		cfg.Server.RequestTimeout = budget
	}
	if cfg.Server.WriteTimeout <= cfg.Server.RequestTimeout {
		cfg.Server.WriteTimeout = cfg.Server.RequestTimeout + requestBudgetSlack
	}
}

func configurePlaylist(cfg *core.Config) {
	if mins := viper.GetInt("playlist-ttl-mins"); mins > 0 {
		cfg.Playlist.TTL = time.Duration(mins) * time.Minute
	}
	if maxLists := viper.GetInt("playlist-max"); maxLists > 0 {
		cfg.Playlist.MaxLists = maxLists
	}
}

// splitList accepts both repeated flags and comma separated environment values.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func buildLogger(level, format string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if strings.EqualFold(format, "text") {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func validateConfig(cfg *core.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", cfg.Server.Port)
	}

	switch strings.ToLower(cfg.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported log format %q (use json or text)", cfg.Log.Format)
	}

	if len(cfg.Resolver.Strategies) == 0 {
		return errors.New("at least one resolver strategy is required")
	}

	return resolver.KnownStrategies(cfg.Resolver.Strategies)
}

type services struct {
	httpServer *httpserver.Server
}

func runServer(cmd *cobra.Command, _ []string) error {
	if viper.GetBool("generate-env-example") {
		return generateEnvExample(cmd)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting SoundBex",
		zap.String("version", core.Version),
		zap.Strings("strategies", config.Resolver.Strategies),
		zap.Bool("search_api_key", config.Search.APIKey != ""))

	if err := validateConfig(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	svcs, err := initializeServices(config, prometheus.NewRegistry(), logger)
	if err != nil {
		return err
	}

	return runServices(ctx, svcs)
}

func initializeServices(cfg *core.Config, registry *prometheus.Registry, log *zap.Logger) (*services, error) {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := httpserver.NewMetrics(registry)

	searchClient := upstream.NewHTTPClient(cfg.Search.Timeout)
	adapter := search.NewAdapter(newSearchUpstream(cfg, searchClient, log), &cfg.Search, log.Named("search"))
	lookup := search.NewOEmbedLookup("", searchClient, log.Named("search"))

	strategies, err := resolver.NewStrategies(&cfg.Resolver, upstream.NewHTTPClient(cfg.Resolver.StrategyTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to build resolver strategies: %w", err)
	}
	chain := resolver.NewChain(strategies, cfg.Resolver.StrategyTimeout, metrics, log.Named("resolver"))

	store := playlist.NewStore(&cfg.Playlist, log.Named("playlist"))
	metrics.RegisterPlaylistGauge(store.Len)

	server := httpserver.NewServer(&cfg.Server, httpserver.Services{
		Search:    adapter,
		Songs:     lookup,
		Resolver:  chain,
		Playlists: store,
	}, metrics, registry, log.Named("http"))

	return &services{httpServer: server}, nil
}

func newSearchUpstream(cfg *core.Config, client *http.Client, log *zap.Logger) search.Upstream {
	if cfg.Search.APIKey != "" {
		return search.NewDataAPIClient(cfg.Search.APIKey, cfg.Search.BaseURL, client, log.Named("search"))
	}
	return search.NewInnerTubeClient(cfg.Search.BaseURL, client)
}

func runServices(ctx context.Context, svcs *services) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return svcs.httpServer.Start(gCtx)
	})

	logger.Info("SoundBex started successfully",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))

	if err := g.Wait(); err != nil {
		logger.Error("SoundBex stopped with error", zap.Error(err))
		return err
	}

	logger.Info("SoundBex stopped gracefully")
	return nil
}
