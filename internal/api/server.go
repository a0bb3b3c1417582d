package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/fleetauth-core/internal/audit"
	"github.com/nerrad567/fleetauth-core/internal/auth"
	"github.com/nerrad567/fleetauth-core/internal/company"
	"github.com/nerrad567/fleetauth-core/internal/infrastructure/config"
	"github.com/nerrad567/fleetauth-core/internal/infrastructure/logging"
	"github.com/nerrad567/fleetauth-core/internal/ratelimit"
	"github.com/nerrad567/fleetauth-core/internal/team"
	"github.com/nerrad567/fleetauth-core/internal/user"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// storeSizeInterval is how often store counts are reported to StoreMetrics.
const storeSizeInterval = time.Minute

// HealthChecker is a dependency probed by /health.
// database.DB, mqtt.Client and influxdb.Client satisfy it.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// StoreMetrics receives periodic store counts. influxdb.Client satisfies it.
type StoreMetrics interface {
	RecordStoreSize(users, companies int)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	Logger    *logging.Logger
	Team      *team.Service
	Users     *user.Directory
	Companies *company.Registry
	Tokens    *auth.Tokens
	Limiter   *ratelimit.Limiter       // optional: no rate limiting when nil
	Audit     audit.Repository         // optional: audit trail disabled when nil
	Checks    map[string]HealthChecker // optional: reported by /health
	Metrics   StoreMetrics             // optional
	Version   string
}

// Server is the HTTP API server for FleetAuth.
//
// The server is created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	logger    *logging.Logger
	team      *team.Service
	users     *user.Directory
	companies *company.Registry
	tokens    *auth.Tokens
	limiter   *ratelimit.Limiter
	auditRepo audit.Repository
	auditCh   chan *audit.Entry
	checks    map[string]HealthChecker
	metrics   StoreMetrics
	version   string
	startTime time.Time
	server    *http.Server
	cancel    context.CancelFunc // cancels background goroutines on Close()
	wg        sync.WaitGroup
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	switch {
	case deps.Logger == nil:
		return nil, fmt.Errorf("logger is required")
	case deps.Team == nil:
		return nil, fmt.Errorf("team service is required")
	case deps.Users == nil:
		return nil, fmt.Errorf("user directory is required")
	case deps.Companies == nil:
		return nil, fmt.Errorf("company registry is required")
	case deps.Tokens == nil:
		return nil, fmt.Errorf("token issuer is required")
	}

	s := &Server{
		cfg:       deps.Config,
		logger:    deps.Logger,
		team:      deps.Team,
		users:     deps.Users,
		companies: deps.Companies,
		tokens:    deps.Tokens,
		limiter:   deps.Limiter,
		auditRepo: deps.Audit,
		checks:    deps.Checks,
		metrics:   deps.Metrics,
		version:   deps.Version,
		startTime: time.Now(),
	}
	if s.auditRepo != nil {
		s.auditCh = make(chan *audit.Entry, auditChanSize)
	}
	return s, nil
}

// Start begins listening for HTTP connections.
//
// It launches the audit writer and store metrics loop, then the HTTP
// listener, each in a background goroutine. The server can be stopped
// with Close().
func (s *Server) Start(ctx context.Context) error {
	// Internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if s.auditCh != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.drainAuditLog(srvCtx)
		}()
	}
	if s.metrics != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.storeSizeLoop(srvCtx)
		}()
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete, then
// stops the background goroutines. Queued audit entries are written
// before Close returns.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	err := s.server.Shutdown(ctx)

	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()

	if err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}

// storeSizeLoop reports user and company counts until ctx is cancelled.
func (s *Server) storeSizeLoop(ctx context.Context) {
	ticker := time.NewTicker(storeSizeInterval)
	defer ticker.Stop()

	s.metrics.RecordStoreSize(s.users.Count(), s.companies.Count())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.metrics.RecordStoreSize(s.users.Count(), s.companies.Count())
		}
	}
}
