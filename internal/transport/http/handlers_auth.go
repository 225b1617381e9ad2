// Package httptransport exposes the registry, authenticator, ledger, and
// artifact services over HTTP.
package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"certledger/internal/auth"
	"certledger/internal/domain"
	"certledger/internal/platform/middleware"
	"certledger/internal/registry"
	"certledger/internal/transport/http/shared"
	"certledger/pkg/requestcontext"
	dErrors "certledger/pkg/domain-errors"
)

// RegistryService is the slice of the registry the auth and account handlers
// need.
type RegistryService interface {
	Register(ctx context.Context, req registry.RegisterRequest) (domain.Account, error)
	GetAccount(ctx context.Context, identity string) (domain.Account, error)
	GetRole(ctx context.Context, identity string) (domain.Role, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.Account, error)
}

// AuthService verifies logins and revokes sessions.
type AuthService interface {
	Login(ctx context.Context, identity string, submitted domain.Commitment) (auth.LoginResult, error)
	Logout(ctx context.Context, identity, jti string) error
}

// AuthHandler serves registration, login, and logout.
type AuthHandler struct {
	registry RegistryService
	auth     AuthService
	logger   *slog.Logger

	// collapseLoginErrors makes an unknown identity indistinguishable from a
	// wrong commitment at the HTTP edge. The service always tells them apart.
	collapseLoginErrors bool
}

func NewAuthHandler(registrySvc RegistryService, authSvc AuthService, logger *slog.Logger, collapseLoginErrors bool) *AuthHandler {
	return &AuthHandler{
		registry:            registrySvc,
		auth:                authSvc,
		logger:              logger,
		collapseLoginErrors: collapseLoginErrors,
	}
}

type registerRequest struct {
	Identity    string `json:"identity"`
	DisplayName string `json:"displayName"`
	Commitment  string `json:"commitment"`
	Role        int    `json:"role"`
}

type accountResponse struct {
	Identity     string `json:"identity"`
	DisplayName  string `json:"displayName"`
	Role         int    `json:"role"`
	RoleName     string `json:"roleName"`
	RegisteredBy string `json:"registeredBy"`
	RegisteredAt int64  `json:"registeredAt"`
}

func toAccountResponse(a domain.Account) accountResponse {
	return accountResponse{
		Identity:     a.Identity,
		DisplayName:  a.DisplayName,
		Role:         int(a.Role),
		RoleName:     a.Role.String(),
		RegisteredBy: a.RegisteredBy,
		RegisteredAt: a.RegisteredAt.Unix(),
	}
}

// HandleRegister creates an account. RequireAuth has already run; the
// service rejects callers other than the configured owner.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	commitment, err := domain.ParseCommitment(req.Commitment)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	role := domain.Role(req.Role)
	if !role.Valid() {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "unknown role"))
		return
	}

	account, err := h.registry.Register(ctx, registry.RegisterRequest{
		Caller:      middleware.GetIdentity(ctx),
		Identity:    req.Identity,
		DisplayName: req.DisplayName,
		Commitment:  commitment,
		Role:        role,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "registration rejected",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, toAccountResponse(account))
}

type loginRequest struct {
	Identity   string `json:"identity"`
	Commitment string `json:"commitment"`
}

type loginResponse struct {
	Authenticated bool   `json:"authenticated"`
	Role          *int   `json:"role,omitempty"`
	Token         string `json:"token,omitempty"`
}

// HandleLogin verifies a credential commitment and mints a session token.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	commitment, err := domain.ParseCommitment(req.Commitment)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	result, err := h.auth.Login(ctx, req.Identity, commitment)
	if err != nil {
		if h.collapseLoginErrors && dErrors.HasCode(err, dErrors.CodeNotRegistered) {
			// Same response a wrong commitment gets.
			shared.WriteJSON(w, http.StatusOK, loginResponse{Authenticated: false})
			return
		}
		shared.WriteError(w, err)
		return
	}

	resp := loginResponse{Authenticated: result.Authenticated}
	if result.Authenticated {
		role := int(result.Role)
		resp.Role = &role
		resp.Token = result.Token
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

// HandleLogout revokes the presented session token.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity := middleware.GetIdentity(ctx)
	jti := requestcontext.TokenID(ctx)
	if err := h.auth.Logout(ctx, identity, jti); err != nil {
		h.logger.ErrorContext(ctx, "logout failed",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
