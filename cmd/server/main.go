package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"tokengate/internal/assets"
	"tokengate/internal/claimtopics"
	"tokengate/internal/compliance"
	compliancemetrics "tokengate/internal/compliance/metrics"
	"tokengate/internal/compliance/modules/country"
	"tokengate/internal/compliance/modules/maxbalance"
	"tokengate/internal/compliance/modules/transferlimit"
	"tokengate/internal/identity"
	"tokengate/internal/ledger"
	"tokengate/internal/platform/config"
	"tokengate/internal/platform/events"
	"tokengate/internal/platform/httpserver"
	"tokengate/internal/platform/logger"
	platformpg "tokengate/internal/platform/postgres"
	platformredis "tokengate/internal/platform/redis"
	"tokengate/internal/platform/secrets"
	"tokengate/internal/platform/token"
	"tokengate/internal/reporting"
	reportingmetrics "tokengate/internal/reporting/metrics"
	httptransport "tokengate/internal/transport/http"
	"tokengate/pkg/domain"
	"tokengate/pkg/requestcontext"
)

// Transfer-limit defaults applied until an admin reconfigures them over the
// API. Amounts are in base token units.
const (
	defaultDailyLimit   = 1_000_000
	defaultMonthlyLimit = 10_000_000
	defaultBalanceCap   = 50_000_000
)

// main wires the stores, services, and modules, then runs the HTTP server
// until a shutdown signal. Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	tokens := token.NewService(cfg.JWTSigningKey, "tokengate")

	// Without a configured operator credential, mint a one-off dev secret so
	// the token exchange still works locally. The plaintext is only logged
	// here; production deployments set TOKENGATE_OPERATOR_SECRET_HASH.
	secretHash := cfg.OperatorSecretHash
	if secretHash == "" {
		devSecret, err := secrets.Generate()
		if err != nil {
			log.Error("generate dev secret", "error", err)
			os.Exit(1)
		}
		secretHash, err = secrets.Hash(devSecret)
		if err != nil {
			log.Error("hash dev secret", "error", err)
			os.Exit(1)
		}
		log.Warn("no operator secret configured, generated a dev secret", "secret", devSecret)
	}

	// Optional Postgres: assets persist through pgx, violation records
	// through database/sql. Both fall back to in-memory stores.
	var assetStore assets.Store = assets.NewInMemoryStore()
	var violationStore reporting.ViolationStore = reporting.NewInMemoryViolationStore()
	if cfg.PostgresDSN != "" {
		pool, err := platformpg.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		db, err := platformpg.NewDB(cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres db", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		assetStore = assets.NewPostgresStore(pool)
		violationStore = reporting.NewPostgresViolationStore(db)
	}

	// Optional Redis backs the transfer-limit rolling windows.
	var windowStore transferlimit.WindowStore = transferlimit.NewInMemoryWindowStore()
	if cfg.RedisURL != "" {
		client, err := platformredis.New(cfg.RedisURL)
		if err != nil {
			log.Error("redis client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		windowStore = transferlimit.NewRedisWindowStore(client)
	}

	// Optional Kafka publishes compliance and lifecycle events.
	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.ViolationTopic, log)
		if err != nil {
			log.Error("kafka publisher", "error", err)
			os.Exit(1)
		}
		defer kafka.Close()
		publisher = kafka
	}

	topics := claimtopics.NewRegistry(claimtopics.NewInMemoryStore(), log)
	identities := identity.NewRegistry(identity.NewInMemoryStore(), topics, cfg.MandatoryTopics, log,
		identity.WithPublisher(publisher))

	guard := compliance.NewService(log,
		compliance.WithMetrics(compliancemetrics.New()),
		compliance.WithPublisher(publisher))

	// Binding runs under a bootstrap actor; every later mutation comes in
	// over HTTP with the caller's own roles.
	bootCtx := requestcontext.WithRoles(
		requestcontext.WithActorID(ctx, "system-bootstrap"), domain.RoleAdmin)
	tokenID := domain.NewTokenID()
	if err := guard.BindToken(bootCtx, tokenID); err != nil {
		log.Error("bind token", "error", err)
		os.Exit(1)
	}
	book := ledger.NewMemoryLedger(tokenID, identities, guard)

	countryModule := country.New(identities)
	limitModule := transferlimit.New(windowStore, defaultDailyLimit, defaultMonthlyLimit)
	capModule := maxbalance.New(book, defaultBalanceCap)

	assetRegistry := assets.NewRegistry(assetStore, log)

	reports := reporting.NewService(violationStore, identities, book, assetRegistry, log,
		reporting.WithMetrics(reportingmetrics.New()),
		reporting.WithPublisher(publisher))

	router := httptransport.NewRouter(tokens, httptransport.NewAuthHandler(tokens, secretHash, log), log,
		httptransport.NewClaimTopicsHandler(topics, log),
		httptransport.NewIdentityHandler(identities, log),
		httptransport.NewComplianceHandler(guard, countryModule, limitModule, capModule, log),
		httptransport.NewAssetsHandler(assetRegistry, log),
		httptransport.NewReportsHandler(reports, log),
	)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting tokengate", "addr", cfg.Addr, "token_id", tokenID)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
