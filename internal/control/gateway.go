package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vietddude/paygate/internal/api"
	"github.com/vietddude/paygate/internal/auth"
	"github.com/vietddude/paygate/internal/core/config"
	"github.com/vietddude/paygate/internal/core/registry"
	"github.com/vietddude/paygate/internal/infra/chain/evm"
	redisclient "github.com/vietddude/paygate/internal/infra/redis"
	"github.com/vietddude/paygate/internal/payment"
	"github.com/vietddude/paygate/internal/revenue"
)

// Gateway is the main application struct that manages the service lifecycle.
type Gateway struct {
	cfg         *config.AppConfig
	registry    *registry.Registry
	pool        *evm.Pool
	server      *api.Server
	watcher     *revenue.Watcher
	redisClient *redisclient.Client
	log         *slog.Logger

	cancel      context.CancelFunc
	watcherDone chan struct{}
}

// LoadRegistry returns the chain table: the override when one is
// configured, otherwise the built-in defaults.
func LoadRegistry(cfg *config.AppConfig) (*registry.Registry, error) {
	if cfg.ChainsJSON != "" {
		reg, err := registry.FromJSON([]byte(cfg.ChainsJSON))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", config.EnvChainsJSON, err)
		}
		return reg, nil
	}
	return registry.Default()
}

// NewGateway creates a new Gateway with all dependencies initialized.
func NewGateway(cfg *config.AppConfig, dial evm.DialFunc) (*Gateway, error) {
	log := slog.Default()

	reg, err := LoadRegistry(cfg)
	if err != nil {
		return nil, err
	}
	if len(reg.Keys()) == 0 {
		log.Warn("No usable chains configured")
	}

	issuer, err := auth.NewIssuer(cfg.JWTSecret, nil)
	if err != nil {
		return nil, err
	}

	pool := evm.NewPool(dial)
	verifier := payment.NewVerifier(reg, pool, cfg.PayTo, cfg.PriceUnits, log)

	sinks := []revenue.Sink{revenue.NewFileSink(cfg.RevenueLogDir)}
	var rc *redisclient.Client
	if cfg.Redis.Enabled() {
		rc, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		sinks = append(sinks, rc)
		log.Info("Mirroring revenue records to Redis")
	}

	watcher := revenue.NewWatcher(revenue.Config{
		PayTo:      cfg.PayTo,
		PriceUnits: cfg.PriceUnits,
	}, reg.Chains(), pool, log, sinks...)

	server := api.NewServer(api.Options{
		Port:        cfg.Port,
		PayTo:       cfg.PayTo,
		PriceUnits:  cfg.PriceUnits,
		Chains:      reg.Chains(),
		Verifier:    verifier,
		Issuer:      issuer,
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
	})

	return &Gateway{
		cfg:         cfg,
		registry:    reg,
		pool:        pool,
		server:      server,
		watcher:     watcher,
		redisClient: rc,
		log:         log,
	}, nil
}

// Start binds the HTTP listener and launches the server and the revenue
// watcher. A bind failure is returned before anything is started.
func (g *Gateway) Start(ctx context.Context) error {
	if err := g.server.Listen(); err != nil {
		return err
	}
	go func() {
		if err := g.server.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.log.Error("HTTP server failed", "error", err)
		}
	}()

	ctx, g.cancel = context.WithCancel(ctx)
	g.watcherDone = make(chan struct{})
	go func() {
		defer close(g.watcherDone)
		if err := g.watcher.Run(ctx); err != nil {
			g.log.Error("Revenue watcher failed", "error", err)
		}
	}()

	g.log.Info("Gateway started",
		"port", g.cfg.Port,
		"chains", g.registry.Keys(),
		"price", g.cfg.PriceUnits,
		"revenue_log", g.cfg.RevenueLogDir,
	)
	return nil
}

// Stop stops scheduling ticks, drains HTTP requests and releases clients.
// In-flight ticks complete unless ctx expires first.
func (g *Gateway) Stop(ctx context.Context) error {
	g.log.Info("Stopping Gateway...")

	if g.cancel != nil {
		g.cancel()
	}
	err := g.server.Stop(ctx)

	if g.watcherDone != nil {
		select {
		case <-g.watcherDone:
		case <-ctx.Done():
			g.log.Warn("Revenue tick still running at shutdown")
		}
	}

	g.pool.Close()

	// Close Redis
	if g.redisClient != nil {
		if cerr := g.redisClient.Close(); cerr != nil {
			g.log.Warn("Failed to close Redis", "error", cerr)
		}
	}
	return err
}
