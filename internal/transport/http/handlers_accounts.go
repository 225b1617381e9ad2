package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"certledger/internal/domain"
	"certledger/internal/transport/http/shared"
	dErrors "certledger/pkg/domain-errors"
)

// AccountsHandler serves account lookups and role-scoped listings.
type AccountsHandler struct {
	registry RegistryService
	logger   *slog.Logger
}

func NewAccountsHandler(registrySvc RegistryService, logger *slog.Logger) *AccountsHandler {
	return &AccountsHandler{registry: registrySvc, logger: logger}
}

// HandleGetAccount returns the account for a registered identity.
func (h *AccountsHandler) HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")

	account, err := h.registry.GetAccount(r.Context(), identity)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toAccountResponse(account))
}

// HandleGetRole returns just the role, the cheap check issuance gating uses.
func (h *AccountsHandler) HandleGetRole(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")

	role, err := h.registry.GetRole(r.Context(), identity)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"identity": identity,
		"role":     int(role),
		"roleName": role.String(),
	})
}

// HandleListByRole lists accounts holding a role, in registration order.
func (h *AccountsHandler) HandleListByRole(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("role")
	if raw == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "role query parameter is required"))
		return
	}
	role, err := domain.ParseRole(raw)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	accounts, err := h.registry.ListByRole(r.Context(), role)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"accounts": out})
}
