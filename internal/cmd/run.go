package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joshdurbin/bodycode-mcp/internal/bodytype"
	"github.com/joshdurbin/bodycode-mcp/internal/habits"
	"github.com/joshdurbin/bodycode-mcp/internal/logging"
	"github.com/joshdurbin/bodycode-mcp/internal/server"
	"github.com/joshdurbin/bodycode-mcp/internal/store"
	"github.com/joshdurbin/bodycode-mcp/internal/tracker"
	"github.com/joshdurbin/bodycode-mcp/internal/workers"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	_ "modernc.org/sqlite"
)

// RuntimeConfig holds all runtime configuration from flags and environment
type RuntimeConfig struct {
	DBPath           string
	MCPPort          int
	PlanInterval     time.Duration
	ReminderInterval time.Duration
	NoWorkers        bool
	Seed             uint64
	Metrics          bool
}

// Run is the main entry point for the server
func Run(cfg *RuntimeConfig) error {
	log := logging.Logger

	log.Info().
		Str("db_path", cfg.DBPath).
		Int("mcp_port", cfg.MCPPort).
		Bool("no_workers", cfg.NoWorkers).
		Dur("plan_interval", cfg.PlanInterval).
		Dur("reminder_interval", cfg.ReminderInterval).
		Msg("starting bodycode-mcp")

	ctx, cancel := signalContext()
	defer cancel()

	sqlDB, st, err := openStore(ctx, cfg.DBPath, true)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	svc, err := newTracker(st, cfg.Seed)
	if err != nil {
		return err
	}

	workers.LogStoreStats(ctx, st)

	// Start background workers with errgroup for graceful shutdown
	g, gCtx := errgroup.WithContext(ctx)

	if !cfg.NoWorkers {
		log.Info().Msg("starting background workers")

		precomputer := workers.NewPlanPrecomputer(svc, cfg.PlanInterval)
		g.Go(func() error {
			precomputer.Run(gCtx)
			return nil
		})

		notifier := workers.NewReminderNotifier(svc, cfg.ReminderInterval, nil)
		g.Go(func() error {
			notifier.Run(gCtx)
			return nil
		})
	} else {
		log.Info().Msg("running without background workers (--no-workers)")
	}

	// Start MCP server
	telemetry := server.NewTelemetry()
	telemetry.Registry().MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	srv := server.New(svc, telemetry)

	var serverErr error
	if cfg.MCPPort > 0 {
		var metrics http.Handler
		if cfg.Metrics {
			metrics = telemetry.Handler()
		}
		serverErr = runHTTPServer(ctx, srv.MCPServer(), metrics, cfg.MCPPort)
	} else {
		log.Info().Msg("MCP server running via stdio")
		serverErr = srv.Run(ctx)
	}

	// Stdio returns when the client disconnects, so stop the workers too
	cancel()

	if !cfg.NoWorkers {
		log.Info().Msg("waiting for workers to shut down")
		if err := g.Wait(); err != nil {
			log.Warn().Err(err).Msg("worker error during shutdown")
		} else {
			log.Info().Msg("all workers shut down gracefully")
		}
	}

	return serverErr
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	log := logging.Logger
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
	return ctx, cancel
}

// openStore opens, configures and migrates the SQLite database. exclusive
// refuses to start when another server holds the database.
func openStore(ctx context.Context, path string, exclusive bool) (*sql.DB, *store.SQLite, error) {
	log := logging.Logger

	log.Info().Str("path", path).Msg("opening database")
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	if err := store.ConfigureSQLite(sqlDB); err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("configuring SQLite: %w", err)
	}

	if exclusive {
		if err := checkDatabaseLock(sqlDB); err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
	}

	if _, err := store.Migrate(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, nil, err
	}

	return sqlDB, store.NewSQLite(sqlDB), nil
}

// newTracker loads the embedded catalogs and builds the tracker service
func newTracker(st store.Store, seed uint64) (*tracker.Service, error) {
	engine, err := bodytype.New(bodytype.Options{Scoring: bodytype.ScoringWeightedShare})
	if err != nil {
		return nil, fmt.Errorf("loading body type rules: %w", err)
	}
	catalog, err := habits.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("loading habit catalog: %w", err)
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	logging.Logger.Debug().Uint64("seed", seed).Int("habits", catalog.Len()).Msg("tracker ready")

	return tracker.New(st, engine, habits.NewSelector(catalog, seed), time.Now), nil
}

// runHTTPServer runs the MCP server over HTTP/SSE. A non-nil metrics handler
// is served on /metrics.
func runHTTPServer(ctx context.Context, mcpServer *mcp.Server, metrics http.Handler, port int) error {
	log := logging.Logger

	handler := mcp.NewSSEHandler(func(r *http.Request) *mcp.Server {
		return mcpServer
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/", handler)
	if metrics != nil {
		mux.Handle("/metrics", metrics)
	}

	addr := fmt.Sprintf(":%d", port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info().
			Str("address", addr).
			Str("endpoint", fmt.Sprintf("http://localhost%s", addr)).
			Bool("metrics", metrics != nil).
			Msg("MCP server running via HTTP/SSE")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// checkDatabaseLock verifies no other process has the database locked
func checkDatabaseLock(sqlDB *sql.DB) error {
	log := logging.Logger

	// Try to acquire an exclusive lock with immediate timeout
	// This will fail if another process has the database open
	_, err := sqlDB.Exec("PRAGMA locking_mode=EXCLUSIVE")
	if err != nil {
		return fmt.Errorf("another instance may be running (database locked): %w", err)
	}

	_, err = sqlDB.Exec("BEGIN EXCLUSIVE")
	if err != nil {
		if strings.Contains(err.Error(), "locked") || strings.Contains(err.Error(), "busy") {
			return fmt.Errorf("another instance is already running (database is locked)")
		}
		return fmt.Errorf("checking database lock: %w", err)
	}

	_, err = sqlDB.Exec("COMMIT")
	if err != nil {
		return fmt.Errorf("releasing lock check: %w", err)
	}

	log.Debug().Msg("database lock check passed")
	return nil
}
