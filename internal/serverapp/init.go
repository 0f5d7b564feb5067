package serverapp

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/tanglisha/text-pair/internal/alignments"
	"github.com/tanglisha/text-pair/internal/dbexec"
	"github.com/tanglisha/text-pair/internal/observability"
)

// telemetryProviders bundles what initTelemetry hands back to Init.
type telemetryProviders struct {
	meterProvider  *observability.MeterProvider
	tracerProvider *observability.TracerProvider
	apiMetrics     *observability.APIMetrics
	guardMetrics   *observability.GuardMetrics
}

// Init builds every runtime resource the server needs: telemetry, the
// database pool, the alignment service, and the HTTP stack. It is
// idempotent, and a failed call tears down whatever it had built so far.
func (a *App) Init(ctx context.Context) error {
	a.stateMu.Lock()
	if a.initialized {
		a.stateMu.Unlock()
		return nil
	}
	a.stateMu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}

	var (
		cleanup cleanupStack
		success bool
	)
	defer func() {
		if !success {
			cleanup.run(context.Background(), a.logger)
		}
	}()

	if a.loggerProvider != nil {
		cleanup.push("logger provider", func(shutdownCtx context.Context) error {
			return a.loggerProvider.Shutdown(shutdownCtx, a.logger.Logger)
		})
	}

	telemetry, err := a.initTelemetry(&cleanup)
	if err != nil {
		return err
	}

	db, dbStatsReg, err := a.openDatabase(ctx, &cleanup)
	if err != nil {
		return err
	}

	service := alignments.NewService(dbexec.NewPoolExecutor(db))

	mux := buildRouter(a.cfg, a.logger, db, service, telemetry.apiMetrics, telemetry.guardMetrics, telemetry.meterProvider)
	handler := wrapHTTPHandler(a.cfg, a.logger, telemetry.guardMetrics, mux)

	serverAddr := fmt.Sprintf(":%d", a.cfg.Server.Port)
	srv, tlsManager, err := buildServer(a.cfg, a.logger, handler, serverAddr)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}
	cleanup.push("HTTP server", func(shutdownCtx context.Context) error {
		return srv.Shutdown(shutdownCtx)
	})
	if tlsManager != nil {
		cleanup.push("TLS manager", func(_ context.Context) error {
			return tlsManager.Shutdown()
		})
	}

	a.stateMu.Lock()
	a.meterProvider = telemetry.meterProvider
	a.tracerProvider = telemetry.tracerProvider
	a.apiMetrics = telemetry.apiMetrics
	a.guardMetrics = telemetry.guardMetrics
	a.db = db
	a.dbStatsReg = dbStatsReg
	a.service = service
	a.mux = mux
	a.handler = handler
	a.serverAddr = serverAddr
	a.srv = srv
	a.tlsManager = tlsManager
	a.cleanup = cleanup
	a.initialized = true
	a.stateMu.Unlock()

	success = true
	return nil
}

// initTelemetry stands up the meter and tracer providers and registers
// their shutdown hooks. Either provider may be nil when its export path is
// disabled in config.
func (a *App) initTelemetry(cleanup *cleanupStack) (telemetryProviders, error) {
	var tp telemetryProviders

	meterProvider, apiMetrics, guardMetrics, err := initMetrics(a.cfg, a.logger)
	if err != nil {
		return tp, fmt.Errorf("failed to initialize OpenTelemetry metrics: %w", err)
	}
	if meterProvider != nil {
		cleanup.push("meter provider", func(shutdownCtx context.Context) error {
			return meterProvider.Shutdown(shutdownCtx, a.logger.Logger)
		})
	}

	tracerProvider, err := initTracing(a.cfg, a.logger)
	if err != nil {
		return tp, fmt.Errorf("failed to initialize OpenTelemetry tracing: %w", err)
	}
	if tracerProvider != nil {
		cleanup.push("tracer provider", func(shutdownCtx context.Context) error {
			return tracerProvider.Shutdown(shutdownCtx, a.logger.Logger)
		})
	}

	tp.meterProvider = meterProvider
	tp.tracerProvider = tracerProvider
	tp.apiMetrics = apiMetrics
	tp.guardMetrics = guardMetrics
	return tp, nil
}

// openDatabase connects the pool, registers its close hook, and verifies
// the catalog is reachable.
func (a *App) openDatabase(ctx context.Context, cleanup *cleanupStack) (*sql.DB, interface{ Unregister() error }, error) {
	a.logger.Info("connecting to PostgreSQL",
		slog.String("host", a.cfg.Database.Host),
		slog.Int("port", a.cfg.Database.Port),
		slog.String("database_effective", a.effectiveDatabase),
		slog.String("database_source", a.databaseSource),
		slog.Bool("dsn_present", a.dsnPresent),
	)

	db, dbStatsReg, err := connectDB(a.cfg, a.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	cleanup.push("database", func(_ context.Context) error {
		if dbStatsReg != nil {
			if err := dbStatsReg.Unregister(); err != nil {
				a.logger.Warn("failed to unregister DB stats metrics", slog.String("error", err.Error()))
			}
		}
		return db.Close()
	})

	if err := configureDatabase(ctx, a.cfg, a.logger, db, a.effectiveDatabase, a.databaseSource, a.dsnPresent); err != nil {
		return nil, nil, fmt.Errorf("failed to verify database connection: %w", err)
	}

	return db, dbStatsReg, nil
}
