package ledger

import (
	"context"
	"time"

	"certledger/internal/domain"
)

// CertificateStore is the keyed store for certificate id → record, plus the
// derived holder and status indexes. Implementations maintain the indexes in
// the same atomic step as the primary write; they are never rebuilt by
// scanning.
//
// UpdateStatus is conditional: it applies only when the current status still
// equals from, and fails with CodeInvalidTransition otherwise. That makes a
// retried or concurrent review fail instead of re-applying, preserving a
// single auditable decision point.
type CertificateStore interface {
	Create(ctx context.Context, cert domain.Certificate) error
	FindByID(ctx context.Context, id string) (domain.Certificate, error)
	// ListByHolder returns every certificate for the holder, newest-issued
	// first with id as the tie break.
	ListByHolder(ctx context.Context, holder string) ([]domain.Certificate, error)
	// ListPending returns all PendingReview certificates, oldest-issued
	// first so reviewer dashboards surface the longest-waiting items.
	ListPending(ctx context.Context) ([]domain.Certificate, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.Status, reviewedBy string, reviewedAt time.Time) error
}
