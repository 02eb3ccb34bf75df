package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cacheadapter "github.com/KabiruH/attendance-agent/internal/adapters/cache"
	"github.com/KabiruH/attendance-agent/internal/adapters/credentials"
	httpadapter "github.com/KabiruH/attendance-agent/internal/adapters/http"
	"github.com/KabiruH/attendance-agent/internal/adapters/journal"
	"github.com/KabiruH/attendance-agent/internal/adapters/ledger"
	"github.com/KabiruH/attendance-agent/internal/adapters/platform"
	"github.com/KabiruH/attendance-agent/internal/application"
	"github.com/KabiruH/attendance-agent/internal/domain"
	"github.com/KabiruH/attendance-agent/internal/ports"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	service    *application.Service
	httpServer *http.Server
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("bootstrapping attendance agent",
		"http_addr", cfg.HTTPAddr,
		"platform_mode", cfg.PlatformMode,
		"biometric_mode", cfg.BiometricMode,
		"geofence_radius_m", cfg.Geofence.RadiusMeters,
	)

	cleanups := make([]func(), 0, 3)

	var (
		locator    ports.Geolocator
		biometrics ports.BiometricAuthenticator
	)
	if cfg.PlatformMode == PlatformModeGRPC || cfg.BiometricMode == BiometricModeGRPC {
		daemon, dialErr := platform.DialDaemon(cfg.PlatformEndpoint)
		if dialErr != nil {
			return nil, fmt.Errorf("platform daemon: %w", dialErr)
		}
		cleanups = append(cleanups, func() { _ = daemon.Close() })
		if cfg.PlatformMode == PlatformModeGRPC {
			locator = platform.NewGRPCGeolocator(daemon)
		}
		if cfg.BiometricMode == BiometricModeGRPC {
			biometrics = platform.NewGRPCBiometric(daemon)
		}
	}
	if locator == nil {
		locator = platform.NewStaticGeolocator(domain.Coordinate{
			Latitude:  cfg.StaticLatitude,
			Longitude: cfg.StaticLongitude,
		}, cfg.StaticAccuracy)
	}
	if biometrics == nil {
		biometrics = platform.NewApproveBiometric()
		logger.Warn("biometric challenges auto-approved; do not run this mode in production")
	}

	var (
		locations ports.LocationCache
		snapshots ports.SnapshotCache
	)
	if cfg.RedisURL != "" {
		redisClient, redisErr := cacheadapter.Connect(ctx, cfg.RedisURL)
		if redisErr != nil {
			return nil, fmt.Errorf("connect redis: %w", redisErr)
		}
		if pingErr := redisClient.Ping(ctx).Err(); pingErr != nil {
			return nil, fmt.Errorf("ping redis: %w", pingErr)
		}
		cleanups = append(cleanups, func() { _ = redisClient.Close() })
		locations = cacheadapter.NewRedisLocationCache(redisClient)
		snapshots = cacheadapter.NewRedisSnapshotCache(redisClient)
	} else {
		locations = cacheadapter.NewMemoryLocationCache()
		snapshots = cacheadapter.NewMemorySnapshotCache()
	}

	actionJournal, err := journal.Open(cfg.JournalPath)
	if err != nil {
		runCleanups(cleanups)
		return nil, fmt.Errorf("open action journal: %w", err)
	}
	cleanups = append(cleanups, func() { _ = actionJournal.Close() })

	tokenStore := credentials.NewFileTokenStore(cfg.SessionTokenPath)
	ledgerClient, err := ledger.NewClient(ledger.ClientConfig{
		BaseURL:     cfg.LedgerBaseURL,
		Timeout:     cfg.LedgerTimeout,
		Credentials: tokenStore,
	})
	if err != nil {
		runCleanups(cleanups)
		return nil, fmt.Errorf("ledger client: %w", err)
	}

	svc, err := application.NewService(application.Dependencies{
		Config: application.Config{
			Geofence:         cfg.Geofence,
			BiometricPrompt:  cfg.BiometricPrompt,
			LocationTimeout:  cfg.LocationTimeout,
			LocationCacheTTL: cfg.LocationCacheTTL,
			SnapshotCacheTTL: cfg.SnapshotCacheTTL,
		},
		Locator:    locator,
		Biometrics: biometrics,
		Ledger:     ledgerClient,
		Locations:  locations,
		Snapshots:  snapshots,
		Journal:    actionJournal,
	})
	if err != nil {
		runCleanups(cleanups)
		return nil, err
	}

	handler := httpadapter.NewHandler(svc)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpadapter.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		service:    svc,
		httpServer: httpServer,
		cleanupFn: func(context.Context) {
			runCleanups(cleanups)
		},
	}, nil
}

// Service exposes the application layer for CLI invocations that bypass HTTP.
func (r *Runtime) Service() *application.Service {
	return r.service
}

// Run serves the local API until a signal arrives. The initial reconciliation
// runs before the listener comes up so the first UI read is not empty; a
// failed initial refresh is tolerated and logged, the view is just stale.
func (r *Runtime) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := r.service.Refresh(ctx); err != nil {
		r.logger.Warn("initial attendance refresh failed", "error", err)
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("local api started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case runErr = <-errCh:
		r.logger.Error("server failure", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.cleanupFn(shutdownCtx)
	return runErr
}

// Close releases runtime resources for non-serving (one-shot CLI) uses.
func (r *Runtime) Close(ctx context.Context) {
	r.cleanupFn(ctx)
}

func runCleanups(cleanups []func()) {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}
