package registry

import (
	"context"

	"certledger/internal/domain"
)

// AccountStore is the keyed store for identity → Account. Implementations
// must treat Create as atomic: a duplicate identity fails with
// CodeAlreadyExists and leaves the existing record untouched. ListByRole
// returns accounts in registration order, deterministically.
type AccountStore interface {
	Create(ctx context.Context, account domain.Account) error
	FindByIdentity(ctx context.Context, identity string) (domain.Account, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.Account, error)
}
