package auth

import (
	"context"
	"crypto/subtle"
	"time"

	"certledger/internal/audit"
	"certledger/internal/domain"
	"certledger/internal/platform/metrics"
	dErrors "certledger/pkg/domain-errors"
)

// AccountReader is the slice of the registry the authenticator needs.
type AccountReader interface {
	FindByIdentity(ctx context.Context, identity string) (domain.Account, error)
}

// TokenMinter issues a session token after a successful login.
type TokenMinter interface {
	GenerateSessionToken(identity string, role domain.Role, expiresIn time.Duration) (token string, jti string, err error)
}

// RevocationList tracks revoked session token ids (logout).
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Service verifies login attempts against stored credential commitments.
// It never mutates registry state.
type Service struct {
	accounts    AccountReader
	tokens      TokenMinter
	revocations RevocationList
	sessionTTL  time.Duration
	auditor     audit.Recorder
	metrics     *metrics.Metrics
}

func NewService(
	accounts AccountReader,
	tokens TokenMinter,
	revocations RevocationList,
	sessionTTL time.Duration,
	auditor audit.Recorder,
	m *metrics.Metrics,
) *Service {
	return &Service{
		accounts:    accounts,
		tokens:      tokens,
		revocations: revocations,
		sessionTTL:  sessionTTL,
		auditor:     auditor,
		metrics:     m,
	}
}

// LoginResult reports the outcome of one login attempt. Token is set only
// when Authenticated is true.
type LoginResult struct {
	Authenticated bool
	Role          domain.Role
	Token         string
}

// Login authenticates iff the account exists and the submitted commitment
// byte-equals the stored one. The compare is constant-time: the commitment
// is derived from a secret, so timing must not leak how close a guess got.
//
// A missing account returns a CodeNotRegistered error, distinguishable from
// a wrong commitment (Authenticated=false, nil error). Callers wanting
// anti-enumeration collapse the two downstream; the service itself always
// tells them apart.
func (s *Service) Login(ctx context.Context, identity string, submitted domain.Commitment) (LoginResult, error) {
	account, err := s.accounts.FindByIdentity(ctx, identity)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotRegistered) {
			s.recordLogin(ctx, identity, "not_registered")
		}
		return LoginResult{}, err
	}

	if subtle.ConstantTimeCompare(account.Commitment[:], submitted[:]) != 1 {
		s.recordLogin(ctx, identity, "wrong_credential")
		return LoginResult{Authenticated: false}, nil
	}

	token, _, err := s.tokens.GenerateSessionToken(identity, account.Role, s.sessionTTL)
	if err != nil {
		return LoginResult{}, dErrors.Wrap(dErrors.CodeInternal, "mint session token", err)
	}

	if s.metrics != nil {
		s.metrics.RecordLogin("success")
	}
	s.auditor.Record(ctx, audit.Event{
		Actor:   identity,
		Subject: identity,
		Action:  audit.ActionLoginSucceeded,
	})
	return LoginResult{Authenticated: true, Role: account.Role, Token: token}, nil
}

// Logout revokes the presented token id for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, identity, jti string) error {
	if jti == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "missing token id")
	}
	if err := s.revocations.Revoke(ctx, jti, s.sessionTTL); err != nil {
		return dErrors.Wrap(dErrors.CodeSubstrate, "revoke token", err)
	}
	s.auditor.Record(ctx, audit.Event{
		Actor:   identity,
		Subject: identity,
		Action:  audit.ActionSessionRevoked,
	})
	return nil
}

func (s *Service) recordLogin(ctx context.Context, identity, reason string) {
	if s.metrics != nil {
		s.metrics.RecordLogin(reason)
	}
	s.auditor.Record(ctx, audit.Event{
		Actor:   identity,
		Subject: identity,
		Action:  audit.ActionLoginFailed,
		Reason:  reason,
	})
}
