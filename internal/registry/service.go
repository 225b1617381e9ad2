package registry

import (
	"context"
	"strings"

	"certledger/internal/audit"
	"certledger/internal/domain"
	"certledger/internal/platform/metrics"
	dErrors "certledger/pkg/domain-errors"
	"certledger/pkg/requestcontext"
)

// Service owns the identity → account mapping. Registration is gated on the
// configured owner identity, injected at construction; there is no other
// way to create accounts.
type Service struct {
	store   AccountStore
	owner   string
	auditor audit.Recorder
	metrics *metrics.Metrics
}

func NewService(store AccountStore, owner string, auditor audit.Recorder, m *metrics.Metrics) *Service {
	return &Service{store: store, owner: owner, auditor: auditor, metrics: m}
}

// RegisterRequest carries one registration. Caller is the identity the
// request was authenticated as, not a form field.
type RegisterRequest struct {
	Caller      string
	Identity    string
	DisplayName string
	Commitment  domain.Commitment
	Role        domain.Role
}

// Register creates an account. Only the owner may call it; a duplicate
// identity fails with CodeAlreadyExists regardless of payload.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (domain.Account, error) {
	if req.Caller != s.owner {
		return domain.Account{}, dErrors.New(dErrors.CodeUnauthorized, "only the registry owner may register accounts")
	}
	if strings.TrimSpace(req.Identity) == "" {
		return domain.Account{}, dErrors.New(dErrors.CodeInvalidInput, "identity is required")
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		return domain.Account{}, dErrors.New(dErrors.CodeInvalidInput, "display name is required")
	}
	if !req.Role.Valid() {
		return domain.Account{}, dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}

	account := domain.Account{
		Identity:     req.Identity,
		DisplayName:  req.DisplayName,
		Commitment:   req.Commitment,
		Role:         req.Role,
		RegisteredBy: req.Caller,
		RegisteredAt: requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, account); err != nil {
		return domain.Account{}, err
	}

	if s.metrics != nil {
		s.metrics.AccountsRegistered.Inc()
	}
	s.auditor.Record(ctx, audit.Event{
		Actor:   req.Caller,
		Subject: req.Identity,
		Action:  audit.ActionAccountRegistered,
		Reason:  account.Role.String(),
	})
	return account, nil
}

// GetAccount is a pure read; callers decide which fields to expose.
func (s *Service) GetAccount(ctx context.Context, identity string) (domain.Account, error) {
	return s.store.FindByIdentity(ctx, identity)
}

// GetRole fails with CodeNotRegistered when the identity has no account, so
// callers can tell "absent" apart from the Student zero value.
func (s *Service) GetRole(ctx context.Context, identity string) (domain.Role, error) {
	account, err := s.store.FindByIdentity(ctx, identity)
	if err != nil {
		return 0, err
	}
	return account.Role, nil
}

// ListByRole returns accounts in registration order. Used to populate
// issuer-facing holder pickers.
func (s *Service) ListByRole(ctx context.Context, role domain.Role) ([]domain.Account, error) {
	if !role.Valid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}
	return s.store.ListByRole(ctx, role)
}

// Owner exposes the configured registry owner identity for wiring checks.
func (s *Service) Owner() string { return s.owner }
