package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"certledger/internal/domain"
	"certledger/internal/platform/metrics"
	dErrors "certledger/pkg/domain-errors"
)

// PostgresStore persists accounts in PostgreSQL. This store is pure I/O;
// ownership checks and role validation belong in the service.
type PostgresStore struct {
	db      *sql.DB
	metrics *metrics.Metrics
}

func NewPostgresStore(db *sql.DB, m *metrics.Metrics) *PostgresStore {
	return &PostgresStore{db: db, metrics: m}
}

func (s *PostgresStore) observe(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveStoreOp("accounts", op, time.Since(start).Seconds())
	}
}

func (s *PostgresStore) Create(ctx context.Context, account domain.Account) error {
	defer s.observe("create", time.Now())
	query := `
		INSERT INTO accounts (identity, display_name, commitment, role, registered_by, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		account.Identity,
		account.DisplayName,
		account.Commitment[:],
		int(account.Role),
		account.RegisteredBy,
		account.RegisteredAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return dErrors.New(dErrors.CodeAlreadyExists, "identity already registered")
		}
		return dErrors.Wrap(dErrors.CodeSubstrate, "create account", err)
	}
	return nil
}

func (s *PostgresStore) FindByIdentity(ctx context.Context, identity string) (domain.Account, error) {
	defer s.observe("find_by_identity", time.Now())
	query := `
		SELECT identity, display_name, commitment, role, registered_by, registered_at
		FROM accounts
		WHERE identity = $1
	`
	account, err := scanAccount(s.db.QueryRowContext(ctx, query, identity))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, dErrors.New(dErrors.CodeNotRegistered, "identity not registered")
		}
		return domain.Account{}, dErrors.Wrap(dErrors.CodeSubstrate, "find account", err)
	}
	return account, nil
}

func (s *PostgresStore) ListByRole(ctx context.Context, role domain.Role) ([]domain.Account, error) {
	defer s.observe("list_by_role", time.Now())
	query := `
		SELECT identity, display_name, commitment, role, registered_by, registered_at
		FROM accounts
		WHERE role = $1
		ORDER BY seq
	`
	rows, err := s.db.QueryContext(ctx, query, int(role))
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeSubstrate, "list accounts by role", err)
	}
	defer rows.Close()

	out := make([]domain.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, dErrors.Wrap(dErrors.CodeSubstrate, "scan account", err)
		}
		out = append(out, account)
	}
	if err := rows.Err(); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeSubstrate, "iterate accounts", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		account    domain.Account
		commitment []byte
		role       int
	)
	err := row.Scan(
		&account.Identity,
		&account.DisplayName,
		&commitment,
		&role,
		&account.RegisteredBy,
		&account.RegisteredAt,
	)
	if err != nil {
		return domain.Account{}, err
	}
	if len(commitment) != domain.CommitmentSize {
		return domain.Account{}, fmt.Errorf("stored commitment has %d bytes", len(commitment))
	}
	copy(account.Commitment[:], commitment)
	account.Role = domain.Role(role)
	return account, nil
}
