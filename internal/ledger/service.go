package ledger

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"certledger/internal/audit"
	"certledger/internal/domain"
	"certledger/internal/platform/metrics"
	dErrors "certledger/pkg/domain-errors"
	"certledger/pkg/requestcontext"
)

// AccountReader is the slice of the registry the ledger needs for
// authorization and holder existence checks.
type AccountReader interface {
	FindByIdentity(ctx context.Context, identity string) (domain.Account, error)
}

// Service owns the certificate lifecycle. The issuance mode is fixed at
// construction for the whole deployment; the two models disagree about who
// is trusted at issuance time and are never mixed per call.
type Service struct {
	store    CertificateStore
	accounts AccountReader
	mode     domain.IssuanceMode
	notifier *Notifier
	auditor  audit.Recorder
	metrics  *metrics.Metrics
}

func NewService(
	store CertificateStore,
	accounts AccountReader,
	mode domain.IssuanceMode,
	notifier *Notifier,
	auditor audit.Recorder,
	m *metrics.Metrics,
) *Service {
	return &Service{
		store:    store,
		accounts: accounts,
		mode:     mode,
		notifier: notifier,
		auditor:  auditor,
		metrics:  m,
	}
}

// Mode exposes the configured issuance mode for wiring and handlers.
func (s *Service) Mode() domain.IssuanceMode { return s.mode }

// IssueRequest carries one issuance. Caller is the authenticated identity,
// never a form field. ID may be empty, in which case the ledger generates
// one; a retry after a submission fault must reuse the caller-supplied id or
// obtain a fresh generated one.
type IssueRequest struct {
	Caller      string
	Holder      string
	ID          string
	Title       string
	IssuedAt    int64
	ArtifactRef string
}

// Issue creates a certificate in the mode's initial state.
//
// In review mode the caller must be a Teacher and the holder a registered
// account; the certificate starts PendingReview. In self mode the caller
// issues for itself and the certificate is Verified immediately.
func (s *Service) Issue(ctx context.Context, req IssueRequest) (domain.Certificate, error) {
	if strings.TrimSpace(req.Title) == "" {
		return domain.Certificate{}, dErrors.New(dErrors.CodeInvalidInput, "title is required")
	}
	if req.IssuedAt <= 0 {
		return domain.Certificate{}, dErrors.New(dErrors.CodeInvalidInput, "issuedAt must be a positive unix timestamp")
	}

	caller, err := s.accounts.FindByIdentity(ctx, req.Caller)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotRegistered) {
			return domain.Certificate{}, dErrors.New(dErrors.CodeUnauthorized, "caller is not registered")
		}
		return domain.Certificate{}, err
	}

	var initial domain.Status
	switch s.mode {
	case domain.IssuanceModeReview:
		if caller.Role != domain.RoleTeacher {
			return domain.Certificate{}, dErrors.New(dErrors.CodeUnauthorized, "only teachers may issue certificates")
		}
		if _, err := s.accounts.FindByIdentity(ctx, req.Holder); err != nil {
			return domain.Certificate{}, err
		}
		initial = domain.StatusPendingReview
	case domain.IssuanceModeSelf:
		if req.Holder != req.Caller {
			return domain.Certificate{}, dErrors.New(dErrors.CodeUnauthorized, "self-issuance only covers the caller's own certificates")
		}
		initial = domain.StatusVerified
	default:
		return domain.Certificate{}, dErrors.New(dErrors.CodeInternal, "issuance mode not configured")
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}

	cert := domain.Certificate{
		ID:             id,
		HolderIdentity: req.Holder,
		IssuerIdentity: req.Caller,
		Title:          req.Title,
		IssuedAt:       req.IssuedAt,
		ArtifactRef:    req.ArtifactRef,
		Status:         initial,
		CreatedAt:      requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, cert); err != nil {
		return domain.Certificate{}, err
	}

	if s.metrics != nil {
		s.metrics.CertificatesIssued.Inc()
	}
	s.auditor.Record(ctx, audit.Event{
		Actor:    req.Caller,
		Subject:  cert.ID,
		Action:   audit.ActionCertificateIssued,
		Decision: string(initial),
	})
	if s.notifier != nil {
		s.notifier.Publish(Event{Kind: EventIssued, Certificate: cert})
	}
	return cert, nil
}

// Review resolves a pending certificate to Verified or Rejected. A second
// review of the same certificate fails with CodeInvalidTransition and leaves
// the status unchanged.
func (s *Service) Review(ctx context.Context, caller, certificateID string, approve bool) (domain.Certificate, error) {
	if s.mode != domain.IssuanceModeReview {
		return domain.Certificate{}, dErrors.New(dErrors.CodeInvalidTransition, "reviews do not apply to self-issued certificates")
	}

	reviewer, err := s.accounts.FindByIdentity(ctx, caller)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotRegistered) {
			return domain.Certificate{}, dErrors.New(dErrors.CodeUnauthorized, "caller is not registered")
		}
		return domain.Certificate{}, err
	}
	if reviewer.Role != domain.RoleTeacher {
		return domain.Certificate{}, dErrors.New(dErrors.CodeUnauthorized, "only teachers may review certificates")
	}

	cert, err := s.store.FindByID(ctx, certificateID)
	if err != nil {
		return domain.Certificate{}, err
	}
	if caller == cert.IssuerIdentity {
		return domain.Certificate{}, dErrors.New(dErrors.CodeUnauthorized, "issuer may not review their own certificate")
	}

	next := domain.StatusVerified
	if !approve {
		next = domain.StatusRejected
	}
	if !cert.Status.CanTransitionTo(next) {
		return domain.Certificate{}, dErrors.New(dErrors.CodeInvalidTransition, "certificate is not pending review")
	}

	reviewedAt := requestcontext.Now(ctx)
	if err := s.store.UpdateStatus(ctx, cert.ID, domain.StatusPendingReview, next, caller, reviewedAt); err != nil {
		return domain.Certificate{}, err
	}
	cert.Status = next
	cert.ReviewedBy = caller
	cert.ReviewedAt = reviewedAt

	decision := "approved"
	if !approve {
		decision = "rejected"
	}
	if s.metrics != nil {
		s.metrics.RecordReview(decision)
	}
	s.auditor.Record(ctx, audit.Event{
		Actor:    caller,
		Subject:  cert.ID,
		Action:   audit.ActionCertificateReviewed,
		Decision: decision,
	})
	if s.notifier != nil {
		s.notifier.Publish(Event{Kind: EventReviewed, Certificate: cert})
	}
	return cert, nil
}

// GetByHolder returns every certificate for the holder, newest-issued first.
func (s *Service) GetByHolder(ctx context.Context, holder string) ([]domain.Certificate, error) {
	if strings.TrimSpace(holder) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "holder is required")
	}
	return s.store.ListByHolder(ctx, holder)
}

// GetPending returns the reviewer work queue. Resolved certificates never
// appear here.
func (s *Service) GetPending(ctx context.Context) ([]domain.Certificate, error) {
	return s.store.ListPending(ctx)
}

// GetByID returns one certificate or CodeNotFound.
func (s *Service) GetByID(ctx context.Context, id string) (domain.Certificate, error) {
	return s.store.FindByID(ctx, id)
}
