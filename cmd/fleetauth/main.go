// FleetAuth Core - account, company and team service for fleet operators.
//
// This is the main entry point. It wires the encrypted user and company
// stores, the SQLite session and audit database, optional MQTT
// notifications and InfluxDB metrics, and serves the HTTP API until
// interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nerrad567/fleetauth-core/internal/api"
	"github.com/nerrad567/fleetauth-core/internal/audit"
	"github.com/nerrad567/fleetauth-core/internal/auth"
	"github.com/nerrad567/fleetauth-core/internal/company"
	"github.com/nerrad567/fleetauth-core/internal/infrastructure/config"
	"github.com/nerrad567/fleetauth-core/internal/infrastructure/database"
	"github.com/nerrad567/fleetauth-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/fleetauth-core/internal/infrastructure/logging"
	"github.com/nerrad567/fleetauth-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/fleetauth-core/internal/infrastructure/vault"
	"github.com/nerrad567/fleetauth-core/internal/notify"
	"github.com/nerrad567/fleetauth-core/internal/ratelimit"
	"github.com/nerrad567/fleetauth-core/internal/team"
	"github.com/nerrad567/fleetauth-core/internal/user"
	"github.com/nerrad567/fleetauth-core/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// sessionPruneInterval is how often expired refresh tokens are deleted.
const sessionPruneInterval = time.Hour

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// It returns nil on a clean shutdown.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting FleetAuth Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := config.PathFromEnv()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Encrypted stores
	users, companies, err := openStores(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	log.Info("stores loaded",
		"dir", cfg.Storage.Dir,
		"users", users.Count(),
		"companies", companies.Count(),
		"legacy_layout", cfg.Storage.LegacyLayout,
	)

	// Session and audit database
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	checks := map[string]api.HealthChecker{"database": db}

	// Notifications: MQTT when enabled, otherwise the log.
	var notifier interface {
		team.VerificationSender
		team.EventPublisher
	}
	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		n := notify.NewMQTT(mqttClient)
		n.SetLogger(log)
		notifier = n
		checks["mqtt"] = mqttClient
	} else {
		log.Info("MQTT disabled, notifications go to the log")
		notifier = notify.NewLog(log)
	}

	// Metrics (optional). Deps take interfaces, so a disabled client must
	// stay an untyped nil.
	var (
		teamMetrics  team.Metrics
		storeMetrics api.StoreMetrics
	)
	influxClient, err := influxdb.Connect(cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled")
	case err != nil:
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
		teamMetrics = influxClient
		storeMetrics = influxClient
		checks["influxdb"] = influxClient
	}

	// Auth
	tokens, err := auth.NewTokens(auth.TokenConfig{
		Secret:          cfg.Security.JWT.Secret,
		AccessTTL:       time.Duration(cfg.Security.JWT.AccessTokenTTL) * time.Minute,
		VerificationTTL: time.Duration(cfg.Security.JWT.VerificationTTL) * time.Minute,
	})
	if err != nil {
		return fmt.Errorf("configuring tokens: %w", err)
	}
	hasher := auth.NewHasher(auth.Params{
		Time:    cfg.Security.Password.Time,
		Memory:  cfg.Security.Password.Memory,
		Threads: cfg.Security.Password.Threads,
	})
	sessions := auth.NewTokenRepository(db.DB)

	svc, err := team.New(team.Deps{
		Users:     users,
		Companies: companies,
		Hasher:    hasher,
		Tokens:    tokens,
		Sessions:  sessions,
		Sender:    notifier,
		Events:    notifier,
		Metrics:   teamMetrics,
		Logger:    log,
		Config: team.Config{
			PublicURL:            cfg.Service.PublicURL,
			RefreshTTL:           time.Duration(cfg.Security.JWT.RefreshTokenTTL) * time.Minute,
			RequireVerifiedLogin: cfg.Security.JWT.RequireVerifiedLogin,
		},
	})
	if err != nil {
		return fmt.Errorf("creating team service: %w", err)
	}

	// Background loops are stopped and joined before the deferred closes
	// above run.
	bgCtx, stopBackground := context.WithCancel(ctx)
	var bg sync.WaitGroup
	defer func() {
		stopBackground()
		bg.Wait()
	}()

	var limiter *ratelimit.Limiter
	if cfg.Security.RateLimit.Enabled {
		limiter = ratelimit.New(ratelimit.Config{
			Limit:         cfg.Security.RateLimit.RequestsPerMinute,
			Window:        time.Minute,
			SweepInterval: time.Duration(cfg.Security.RateLimit.SweepInterval) * time.Second,
		})
		limiter.SetLogger(log)
		bg.Add(1)
		go func() {
			defer bg.Done()
			limiter.Run(bgCtx)
		}()
		log.Info("rate limiting enabled", "requests_per_minute", cfg.Security.RateLimit.RequestsPerMinute)
	}

	bg.Add(1)
	go func() {
		defer bg.Done()
		pruneSessions(bgCtx, sessions, sessionPruneInterval, log)
	}()

	server, err := api.New(api.Deps{
		Config:    cfg.API,
		Logger:    log,
		Team:      svc,
		Users:     users,
		Companies: companies,
		Tokens:    tokens,
		Limiter:   limiter,
		Audit:     audit.NewSQLiteRepository(db.DB),
		Checks:    checks,
		Metrics:   storeMetrics,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, checks); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred functions run in reverse order: API server, background
	// loops, InfluxDB, MQTT, database.

	log.Info("FleetAuth Core stopped")
	return nil
}

// openStores loads the encrypted user and company snapshots.
func openStores(ctx context.Context, cfg config.StorageConfig, log *logging.Logger) (*user.Directory, *company.Registry, error) {
	var opts []vault.Option
	if cfg.LegacyLayout {
		opts = append(opts, vault.WithLegacyLayout())
	}
	cipher, err := vault.NewCipher(vault.DeriveKey(cfg.Secret, cfg.Salt), opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("creating store cipher: %w", err)
	}

	users, err := user.Open(ctx, vault.NewFile[map[string]user.User](cfg.UsersPath(), cipher))
	if err != nil {
		return nil, nil, fmt.Errorf("opening user store: %w", err)
	}
	users.SetLogger(log)

	companies, err := company.Open(ctx, vault.NewFile[map[string]company.Company](cfg.CompaniesPath(), cipher))
	if err != nil {
		return nil, nil, fmt.Errorf("opening company store: %w", err)
	}
	companies.SetLogger(log)

	return users, companies, nil
}

// healthCheck verifies every configured dependency responds.
func healthCheck(ctx context.Context, checks map[string]api.HealthChecker) error {
	for name, c := range checks {
		if err := c.HealthCheck(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// pruneSessions deletes expired refresh tokens every interval until ctx is
// cancelled.
func pruneSessions(ctx context.Context, sessions *auth.SQLiteTokenRepository, interval time.Duration, log *logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.DeleteExpired(ctx)
			if err != nil {
				log.Warn("pruning expired sessions failed", "error", err)
				continue
			}
			if n > 0 {
				log.Debug("expired sessions pruned", "count", n)
			}
		}
	}
}
