package config

import (
	"os"
	"time"

	"certledger/internal/domain"
)

// Server captures process-level configuration. The registry owner identity is
// an explicit value injected at startup and checked on every privileged call;
// there is no mutable global owner.
type Server struct {
	Addr          string
	DatabaseURL   string
	RedisURL      string
	JWTSigningKey string
	// OwnerIdentity is the only identity allowed to register accounts.
	OwnerIdentity string
	// OwnerCommitment, when set, bootstraps the owner's own account at
	// startup so the owner can log in before anyone has been registered.
	OwnerCommitment string
	// IssuanceMode selects the issue-then-review or self-issue-and-finalize
	// model for the whole deployment.
	IssuanceMode domain.IssuanceMode
	// CollapseLoginErrors makes failed logins indistinguishable between
	// "no such account" and "wrong credential" at the HTTP edge, for
	// deployments that care about identity enumeration.
	CollapseLoginErrors bool
	ArtifactDir         string
	SessionTTL          time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CERTLEDGER_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("CERTLEDGER_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	mode, err := domain.ParseIssuanceMode(os.Getenv("CERTLEDGER_ISSUANCE_MODE"))
	if err != nil {
		mode = domain.IssuanceModeReview
	}

	artifactDir := os.Getenv("CERTLEDGER_ARTIFACT_DIR")
	if artifactDir == "" {
		artifactDir = "data/artifacts"
	}

	sessionTTL := 12 * time.Hour
	if raw := os.Getenv("CERTLEDGER_SESSION_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			sessionTTL = d
		}
	}

	return Server{
		Addr:                addr,
		DatabaseURL:         os.Getenv("CERTLEDGER_DATABASE_URL"),
		RedisURL:            os.Getenv("CERTLEDGER_REDIS_URL"),
		JWTSigningKey:       jwtSigningKey,
		OwnerIdentity:       os.Getenv("CERTLEDGER_OWNER_IDENTITY"),
		OwnerCommitment:     os.Getenv("CERTLEDGER_OWNER_COMMITMENT"),
		IssuanceMode:        mode,
		CollapseLoginErrors: os.Getenv("CERTLEDGER_COLLAPSE_LOGIN_ERRORS") == "true",
		ArtifactDir:         artifactDir,
		SessionTTL:          sessionTTL,
	}
}
