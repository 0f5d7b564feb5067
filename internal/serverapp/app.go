package serverapp

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/tanglisha/text-pair/internal/alignments"
	"github.com/tanglisha/text-pair/internal/config"
	"github.com/tanglisha/text-pair/internal/logging"
	"github.com/tanglisha/text-pair/internal/observability"
	"github.com/tanglisha/text-pair/internal/tlscert"
)

// App owns the server's runtime resources across Init, Start, and Shutdown.
type App struct {
	cfg    *config.Config
	logger *logging.Logger

	// Resolved once in New; Init logs them and the catalog uses the name.
	effectiveDatabase string
	databaseSource    string
	dsnPresent        bool

	loggerProvider *observability.LoggerProvider
	meterProvider  *observability.MeterProvider
	tracerProvider *observability.TracerProvider
	apiMetrics     *observability.APIMetrics
	guardMetrics   *observability.GuardMetrics

	db         *sql.DB
	dbStatsReg interface{ Unregister() error }

	service *alignments.Service

	mux        *http.ServeMux
	handler    http.Handler
	serverAddr string
	srv        *http.Server
	tlsManager tlscert.Manager

	cleanup cleanupStack

	stateMu      sync.Mutex
	initialized  bool
	started      bool
	serverErrors chan error

	shutdownOnce sync.Once
}

// New wires a config and logger into an App and resolves the catalog
// database name up front, so a bad name/DSN combination fails before Init
// touches anything.
func New(cfg *config.Config, logger *logging.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	dbName, dbSource, err := cfg.Database.EffectiveDatabaseName()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve effective database configuration: %w", err)
	}

	return &App{
		cfg:               cfg,
		logger:            logger,
		effectiveDatabase: dbName,
		databaseSource:    dbSource,
		dsnPresent:        strings.TrimSpace(cfg.Database.ConnectionString) != "",
	}, nil
}

// AttachLoggerProvider hands the App a logger provider created before New,
// so Shutdown can flush it along with everything else.
func (a *App) AttachLoggerProvider(provider *observability.LoggerProvider) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	a.loggerProvider = provider
}
