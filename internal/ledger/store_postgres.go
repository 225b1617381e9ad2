package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"certledger/internal/domain"
	"certledger/internal/platform/metrics"
	dErrors "certledger/pkg/domain-errors"
)

// PostgresStore persists certificates in PostgreSQL. Holder and status
// lookups are served by the indexes declared in the schema; because they are
// plain B-tree indexes on the certificates table, every write maintains them
// in the same transaction as the primary row.
type PostgresStore struct {
	db      *sql.DB
	metrics *metrics.Metrics
}

func NewPostgresStore(db *sql.DB, m *metrics.Metrics) *PostgresStore {
	return &PostgresStore{db: db, metrics: m}
}

func (s *PostgresStore) observe(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveStoreOp("certificates", op, time.Since(start).Seconds())
	}
}

func (s *PostgresStore) Create(ctx context.Context, cert domain.Certificate) error {
	defer s.observe("create", time.Now())
	query := `
		INSERT INTO certificates (id, holder_identity, issuer_identity, title, issued_at, artifact_ref, status, created_at, reviewed_by, reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	var reviewedAt any
	if !cert.ReviewedAt.IsZero() {
		reviewedAt = cert.ReviewedAt
	}
	_, err := s.db.ExecContext(ctx, query,
		cert.ID,
		cert.HolderIdentity,
		cert.IssuerIdentity,
		cert.Title,
		cert.IssuedAt,
		cert.ArtifactRef,
		string(cert.Status),
		cert.CreatedAt,
		cert.ReviewedBy,
		reviewedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code.Name() {
			case "unique_violation":
				return dErrors.New(dErrors.CodeAlreadyExists, "certificate id already exists")
			case "foreign_key_violation":
				return dErrors.New(dErrors.CodeNotRegistered, "holder not registered")
			}
		}
		return dErrors.Wrap(dErrors.CodeSubstrate, "create certificate", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (domain.Certificate, error) {
	defer s.observe("find_by_id", time.Now())
	query := selectCertificate + ` WHERE id = $1`
	cert, err := scanCertificate(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Certificate{}, dErrors.New(dErrors.CodeNotFound, "certificate not found")
		}
		return domain.Certificate{}, dErrors.Wrap(dErrors.CodeSubstrate, "find certificate", err)
	}
	return cert, nil
}

func (s *PostgresStore) ListByHolder(ctx context.Context, holder string) ([]domain.Certificate, error) {
	defer s.observe("list_by_holder", time.Now())
	query := selectCertificate + ` WHERE holder_identity = $1 ORDER BY issued_at DESC, id ASC`
	return s.list(ctx, query, holder)
}

func (s *PostgresStore) ListPending(ctx context.Context) ([]domain.Certificate, error) {
	defer s.observe("list_pending", time.Now())
	query := selectCertificate + ` WHERE status = $1 ORDER BY issued_at ASC, id ASC`
	return s.list(ctx, query, string(domain.StatusPendingReview))
}

// UpdateStatus applies the transition only when the row still holds the
// expected status. The conditional UPDATE makes concurrent or retried
// reviews lose cleanly instead of re-applying.
func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, from, to domain.Status, reviewedBy string, reviewedAt time.Time) error {
	defer s.observe("update_status", time.Now())
	query := `
		UPDATE certificates
		SET status = $3, reviewed_by = $4, reviewed_at = $5
		WHERE id = $1 AND status = $2
	`
	result, err := s.db.ExecContext(ctx, query, id, string(from), string(to), reviewedBy, reviewedAt)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeSubstrate, "update certificate status", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return dErrors.Wrap(dErrors.CodeSubstrate, "update certificate status", err)
	}
	if rows == 0 {
		// Distinguish a missing row from a resolved one.
		if _, err := s.FindByID(ctx, id); err != nil {
			return err
		}
		return dErrors.New(dErrors.CodeInvalidTransition, "certificate already resolved")
	}
	return nil
}

const selectCertificate = `
	SELECT id, holder_identity, issuer_identity, title, issued_at, artifact_ref, status, created_at, reviewed_by, reviewed_at
	FROM certificates`

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]domain.Certificate, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeSubstrate, "list certificates", err)
	}
	defer rows.Close()

	out := make([]domain.Certificate, 0)
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			return nil, dErrors.Wrap(dErrors.CodeSubstrate, "scan certificate", err)
		}
		out = append(out, cert)
	}
	if err := rows.Err(); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeSubstrate, "iterate certificates", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCertificate(row rowScanner) (domain.Certificate, error) {
	var (
		cert       domain.Certificate
		status     string
		reviewedAt sql.NullTime
	)
	err := row.Scan(
		&cert.ID,
		&cert.HolderIdentity,
		&cert.IssuerIdentity,
		&cert.Title,
		&cert.IssuedAt,
		&cert.ArtifactRef,
		&status,
		&cert.CreatedAt,
		&cert.ReviewedBy,
		&reviewedAt,
	)
	if err != nil {
		return domain.Certificate{}, err
	}
	cert.Status = domain.Status(status)
	if reviewedAt.Valid {
		cert.ReviewedAt = reviewedAt.Time
	}
	return cert, nil
}
