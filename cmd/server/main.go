package main

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

	"golang.org/x/sync/errgroup"

	"certledger/internal/artifact"
	"certledger/internal/audit"
	"certledger/internal/auth"
	"certledger/internal/auth/revocation"
	"certledger/internal/domain"
	"certledger/internal/jwttoken"
	"certledger/internal/ledger"
	"certledger/internal/platform/config"
	"certledger/internal/platform/httpserver"
	"certledger/internal/platform/logger"
	"certledger/internal/platform/metrics"
	pgplatform "certledger/internal/platform/postgres"
	redisplatform "certledger/internal/platform/redis"
	"certledger/internal/registry"
	httptransport "certledger/internal/transport/http"
	dErrors "certledger/pkg/domain-errors"
)

// main wires dependencies and runs the server plus the audit worker under
// one lifecycle. Business logic lives in the internal services.
func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	if cfg.OwnerIdentity == "" {
		return errors.New("CERTLEDGER_OWNER_IDENTITY is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: postgres when configured, in-memory otherwise.
	var (
		accountStore registry.AccountStore
		certStore    ledger.CertificateStore
		auditStore   audit.Store
	)
	healthChecks := map[string]httptransport.Health{}

	if cfg.DatabaseURL != "" {
		db, err := pgplatform.Open(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer db.Close()
		if err := pgplatform.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		accountStore = registry.NewPostgresStore(db, m)
		certStore = ledger.NewPostgresStore(db, m)
		auditStore = audit.NewPostgresStore(db)
		healthChecks["postgres"] = func() error { return db.PingContext(context.Background()) }
		log.Info("using postgres store")
	} else {
		accountStore = registry.NewMemoryStore()
		certStore = ledger.NewMemoryStore()
		auditStore = audit.NewMemoryStore()
		log.Warn("no database configured, using in-memory stores")
	}

	// Token revocation: redis when configured, in-memory otherwise.
	var revocations auth.RevocationList
	redisClient, err := redisplatform.New(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		revocations = revocation.NewRedisTRL(redisClient.Client)
		healthChecks["redis"] = func() error { return redisClient.Health(context.Background()) }
		log.Info("using redis token revocation list")
	} else {
		revocations = revocation.NewMemoryTRL()
		log.Warn("no redis configured, using in-memory token revocation list")
	}

	// Audit pipeline: services write to the inbox, the worker persists.
	inbox := make(chan audit.Event, 1024)
	auditSvc := audit.NewService(inbox, log)
	auditWorker := audit.NewWorker(auditStore, inbox, log)

	jwtSvc := jwttoken.NewJWTService(cfg.JWTSigningKey, "certledger", "certledger")

	registrySvc := registry.NewService(accountStore, cfg.OwnerIdentity, auditSvc, m)
	authSvc := auth.NewService(accountStore, jwtSvc, revocations, cfg.SessionTTL, auditSvc, m)
	ledgerSvc := ledger.NewService(certStore, accountStore, cfg.IssuanceMode, ledger.NewNotifier(), auditSvc, m)

	artifactStore, err := artifact.NewFileStore(cfg.ArtifactDir, log)
	if err != nil {
		return fmt.Errorf("open artifact store: %w", err)
	}

	if err := bootstrapOwner(ctx, cfg, accountStore, log); err != nil {
		return fmt.Errorf("bootstrap owner: %w", err)
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:       log,
		Metrics:      m,
		Auth:         httptransport.NewAuthHandler(registrySvc, authSvc, log, cfg.CollapseLoginErrors),
		Accounts:     httptransport.NewAccountsHandler(registrySvc, log),
		Certificates: httptransport.NewCertificatesHandler(ledgerSvc, log),
		Artifacts:    httptransport.NewArtifactsHandler(artifactStore, log),
		JWTValidator: jwttoken.NewJWTServiceAdapter(jwtSvc),
		Revocations:  revocations,
		HealthChecks: healthChecks,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return auditWorker.Run(gctx)
	})

	g.Go(func() error {
		log.Info("starting certledger",
			"addr", cfg.Addr,
			"issuance_mode", string(cfg.IssuanceMode),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// bootstrapOwner registers the owner's own account so the owner can log in
// on a fresh deployment. A no-op when the account exists or no commitment
// was configured.
func bootstrapOwner(ctx context.Context, cfg config.Server, store registry.AccountStore, log *slog.Logger) error {
	if cfg.OwnerCommitment == "" {
		return nil
	}

	commitment, err := domain.ParseCommitment(cfg.OwnerCommitment)
	if err != nil {
		return err
	}

	err = store.Create(ctx, domain.Account{
		Identity:     cfg.OwnerIdentity,
		DisplayName:  "owner",
		Commitment:   commitment,
		Role:         domain.RoleAdmin,
		RegisteredBy: cfg.OwnerIdentity,
		RegisteredAt: time.Now(),
	})
	if dErrors.HasCode(err, dErrors.CodeAlreadyExists) {
		return nil
	}
	if err != nil {
		return err
	}

	log.Info("bootstrapped owner account", "identity", cfg.OwnerIdentity)
	return nil
}
