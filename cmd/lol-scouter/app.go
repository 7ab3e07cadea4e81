package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jo-urn/lol-scouter/internal/config"
	"github.com/jo-urn/lol-scouter/pkg/cache"
	"github.com/jo-urn/lol-scouter/pkg/client"
	"github.com/jo-urn/lol-scouter/pkg/collector"
	"github.com/jo-urn/lol-scouter/pkg/logging"
	"github.com/jo-urn/lol-scouter/pkg/metrics"
	"github.com/jo-urn/lol-scouter/pkg/storage"
)

// globalFlags override the loaded configuration when set.
type globalFlags struct {
	configPath  string
	envFile     string
	output      string
	input       string
	logLevel    string
	pretty      bool
	redisAddr   string
	metricsAddr string
}

func (g *globalFlags) register(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&g.configPath, "config", "", "TOML configuration file")
	f.StringVar(&g.envFile, "env-file", "", "dotenv file with RIOT_API_KEY (default .env when present)")
	f.StringVar(&g.output, "out", "", "output directory or bucket URL (s3://, gs://, mem://)")
	f.StringVar(&g.input, "input", "", "location of earlier jobs' tables (default: --out)")
	f.StringVar(&g.logLevel, "log-level", "", "debug, info, warn or error")
	f.BoolVar(&g.pretty, "pretty", false, "human-readable console logs")
	f.StringVar(&g.redisAddr, "redis", "", "Redis address for the response cache")
	f.StringVar(&g.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
}

func (g *globalFlags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(g.configPath, g.envFile)
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("out") {
		cfg.Storage.Output = g.output
	}
	if f.Changed("input") {
		cfg.Storage.Input = g.input
	}
	if f.Changed("log-level") {
		cfg.Logging.Level = logging.LogLevel(g.logLevel)
	}
	if f.Changed("pretty") {
		cfg.Logging.Pretty = g.pretty
	}
	if f.Changed("redis") {
		cfg.Cache.RedisAddr = g.redisAddr
	}
	if f.Changed("metrics-addr") {
		cfg.Metrics.Addr = g.metricsAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// app holds the collaborators of one command invocation.
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	collector *collector.Collector

	closers []func() error
}

// newApp wires a collector. online commands require an API key; offline
// ones get a getter that refuses every request.
func newApp(cmd *cobra.Command, g *globalFlags, online bool) (*app, error) {
	ctx := cmd.Context()

	cfg, err := g.load(cmd)
	if err != nil {
		return nil, err
	}

	lcfg := cfg.Logging
	lcfg.Output = cmd.ErrOrStderr()
	lcfg.RunID = uuid.NewString()
	logger := logging.Setup(lcfg)

	a := &app{cfg: cfg, logger: logger}

	if cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr); err != nil {
				logger.Error().Err(err).Msg("Metrics server failed")
			}
		}()
	}

	output, err := storage.Open(ctx, cfg.Storage.Output)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, output.Close)

	input := output
	if cfg.Storage.Input != "" && cfg.Storage.Input != cfg.Storage.Output {
		input, err = storage.Open(ctx, cfg.Storage.Input)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, input.Close)
	}

	deps := collector.Deps{Output: output, Input: input, Getter: offlineGetter{}}

	if online {
		if err := cfg.RequireAPIKey(); err != nil {
			a.Close()
			return nil, err
		}
		cl, err := client.New(cfg.ClientConfig())
		if err != nil {
			a.Close()
			return nil, err
		}
		deps.Getter = cl
		deps.Champions = cl

		if cfg.Cache.RedisAddr != "" {
			rdb := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
			a.closers = append(a.closers, rdb.Close)

			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := rdb.Ping(pingCtx).Err()
			cancel()
			if err != nil {
				a.Close()
				return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Cache.RedisAddr, err)
			}
			deps.Cache = cache.NewManager(rdb, cfg.Cache.TTL)
			logger.Info().Str("addr", cfg.Cache.RedisAddr).Dur("ttl", cfg.Cache.TTL).Msg("Response cache enabled")
		}
	}

	a.collector, err = collector.New(deps, cfg.Collector)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.logger.Info().
		Str("command", cmd.Name()).
		Str("output", cfg.Storage.Output).
		Str("input", cfg.Storage.Input).
		Bool("online", online).
		Msg("Starting")
	return a, nil
}

// Close releases stores and connections in reverse order.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

var errOffline = errors.New("command runs offline and cannot issue API requests")

type offlineGetter struct{}

func (offlineGetter) Get(context.Context, string, url.Values) (*client.Response, error) {
	return nil, errOffline
}
