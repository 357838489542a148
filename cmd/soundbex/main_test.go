package main

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"soundbex/internal/core"
)

func TestFlagToEnvVar(t *testing.T) {
	tests := []struct {
		flag string
		want string
	}{
		{"server-port", "SOUNDBEX_SERVER_PORT"},
		{"resolver-strategies", "SOUNDBEX_RESOLVER_STRATEGIES"},
		{"api-url", "SOUNDBEX_API_URL"},
	}

	for _, tt := range tests {
		if got := flagToEnvVar(tt.flag); got != tt.want {
			t.Errorf("flagToEnvVar(%q) = %q, want %q", tt.flag, got, tt.want)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := splitList([]string{"loader, y2mate", "", " innertube "})
	want := []string{"loader", "y2mate", "innertube"}

	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("splitList() = %v, want %v", got, want)
	}
}

func TestBuildConfigDefaults(t *testing.T) {
	cfg := buildConfig()

	if cfg.Server.Port != core.DefaultServerPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, core.DefaultServerPort)
	}
	if strings.Join(cfg.Resolver.Strategies, ",") != "loader,y2mate,convert2mp3" {
		t.Errorf("Resolver.Strategies = %v", cfg.Resolver.Strategies)
	}
	if cfg.Playlist.TTL != time.Hour {
		t.Errorf("Playlist.TTL = %v, want 1h", cfg.Playlist.TTL)
	}
	if err := validateConfig(cfg); err != nil {
		t.Errorf("validateConfig() on defaults = %v", err)
	}
}

func TestBuildConfigStretchesRequestTimeout(t *testing.T) {
	viper.Set("resolver-strategies", []string{"loader", "y2mate", "convert2mp3", "vevioz", "innertube"})
	viper.Set("resolver-timeout-secs", 30)
	t.Cleanup(func() {
		viper.Set("resolver-strategies", core.DefaultStrategies)
		viper.Set("resolver-timeout-secs", core.DefaultStrategyTimeoutSecs)
	})

	cfg := buildConfig()

	budget := 5 * 30 * time.Second
	if cfg.Server.RequestTimeout < budget {
		t.Errorf("RequestTimeout = %v, want at least %v", cfg.Server.RequestTimeout, budget)
	}
	if cfg.Server.WriteTimeout <= cfg.Server.RequestTimeout {
		t.Errorf("WriteTimeout = %v must exceed RequestTimeout %v", cfg.Server.WriteTimeout, cfg.Server.RequestTimeout)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*core.Config)
		wantErr bool
	}{
		{"defaults", func(*core.Config) {}, false},
		{"bad port", func(c *core.Config) { c.Server.Port = 70000 }, true},
		{"bad log format", func(c *core.Config) { c.Log.Format = "xml" }, true},
		{"no strategies", func(c *core.Config) { c.Resolver.Strategies = nil }, true},
		{"unknown strategy", func(c *core.Config) { c.Resolver.Strategies = []string{"loader", "ytmp3"} }, true},
		{"opt-in strategies", func(c *core.Config) { c.Resolver.Strategies = []string{"innertube", "vevioz"} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := core.DefaultConfig()
			tt.modify(cfg)
			if err := validateConfig(cfg); (err != nil) != tt.wantErr {
				t.Errorf("validateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerateEnvExampleContent(t *testing.T) {
	content := generateEnvExampleContent(rootCmd)

	for _, want := range []string{
		"SOUNDBEX_SERVER_PORT=3000",
		"SOUNDBEX_RESOLVER_STRATEGIES=loader,y2mate,convert2mp3",
		"SOUNDBEX_PLAYLIST_TTL_MINS=60",
		"SOUNDBEX_LOG_FORMAT=json",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("generated .env.example is missing %q", want)
		}
	}
}

func TestInitializeServices(t *testing.T) {
	cfg := core.DefaultConfig()

	svcs, err := initializeServices(cfg, prometheus.NewRegistry(), zap.NewNop())
	if err != nil {
		t.Fatalf("initializeServices() error = %v", err)
	}
	if svcs.httpServer == nil || svcs.httpServer.Handler() == nil {
		t.Fatal("initializeServices() returned no HTTP server")
	}

	cfg.Resolver.Strategies = []string{"nope"}
	if _, err := initializeServices(cfg, prometheus.NewRegistry(), zap.NewNop()); err == nil {
		t.Error("initializeServices() with unknown strategy should fail")
	}
}
