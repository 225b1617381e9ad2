package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"certledger/internal/domain"
	"certledger/internal/ledger"
	"certledger/internal/platform/middleware"
	"certledger/internal/transport/http/shared"
	"certledger/pkg/requestcontext"
	dErrors "certledger/pkg/domain-errors"
)

// LedgerService is the slice of the certificate ledger the handlers need.
type LedgerService interface {
	Issue(ctx context.Context, req ledger.IssueRequest) (domain.Certificate, error)
	Review(ctx context.Context, caller, certificateID string, approve bool) (domain.Certificate, error)
	GetByID(ctx context.Context, id string) (domain.Certificate, error)
	GetByHolder(ctx context.Context, holder string) ([]domain.Certificate, error)
	GetPending(ctx context.Context) ([]domain.Certificate, error)
}

// CertificatesHandler serves issuance, review, and certificate queries.
type CertificatesHandler struct {
	ledger LedgerService
	logger *slog.Logger
}

func NewCertificatesHandler(ledgerSvc LedgerService, logger *slog.Logger) *CertificatesHandler {
	return &CertificatesHandler{ledger: ledgerSvc, logger: logger}
}

type issueRequest struct {
	ID          string `json:"id,omitempty"`
	Holder      string `json:"holder"`
	Title       string `json:"title"`
	IssuedAt    int64  `json:"issuedAt"`
	ArtifactRef string `json:"artifactRef,omitempty"`
}

type certificateResponse struct {
	ID          string `json:"id"`
	Holder      string `json:"holder"`
	Issuer      string `json:"issuer"`
	Title       string `json:"title"`
	IssuedAt    int64  `json:"issuedAt"`
	ArtifactRef string `json:"artifactRef,omitempty"`
	Status      string `json:"status"`
	ReviewedBy  string `json:"reviewedBy,omitempty"`
	ReviewedAt  int64  `json:"reviewedAt,omitempty"`
}

func toCertificateResponse(c domain.Certificate) certificateResponse {
	resp := certificateResponse{
		ID:          c.ID,
		Holder:      c.HolderIdentity,
		Issuer:      c.IssuerIdentity,
		Title:       c.Title,
		IssuedAt:    c.IssuedAt,
		ArtifactRef: c.ArtifactRef,
		Status:      string(c.Status),
		ReviewedBy:  c.ReviewedBy,
	}
	if !c.ReviewedAt.IsZero() {
		resp.ReviewedAt = c.ReviewedAt.Unix()
	}
	return resp
}

// HandleIssue records a new certificate for the authenticated caller.
func (h *CertificatesHandler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	cert, err := h.ledger.Issue(ctx, ledger.IssueRequest{
		Caller:      middleware.GetIdentity(ctx),
		Holder:      req.Holder,
		ID:          req.ID,
		Title:       req.Title,
		IssuedAt:    req.IssuedAt,
		ArtifactRef: req.ArtifactRef,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "issuance rejected",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, toCertificateResponse(cert))
}

type reviewRequest struct {
	Approve bool `json:"approve"`
}

// HandleReview resolves a pending certificate.
func (h *CertificatesHandler) HandleReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	certificateID := chi.URLParam(r, "id")

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	cert, err := h.ledger.Review(ctx, middleware.GetIdentity(ctx), certificateID, req.Approve)
	if err != nil {
		h.logger.WarnContext(ctx, "review rejected",
			"certificate_id", certificateID,
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toCertificateResponse(cert))
}

// HandleGetByID returns one certificate.
func (h *CertificatesHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	cert, err := h.ledger.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toCertificateResponse(cert))
}

// HandleGetByHolder lists a holder's certificates, newest first.
func (h *CertificatesHandler) HandleGetByHolder(w http.ResponseWriter, r *http.Request) {
	holder := r.URL.Query().Get("holder")
	if holder == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "holder query parameter is required"))
		return
	}

	certs, err := h.ledger.GetByHolder(r.Context(), holder)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	out := make([]certificateResponse, 0, len(certs))
	for _, c := range certs {
		out = append(out, toCertificateResponse(c))
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"certificates": out})
}

// HandleGetPending lists unresolved certificates, oldest first.
func (h *CertificatesHandler) HandleGetPending(w http.ResponseWriter, r *http.Request) {
	certs, err := h.ledger.GetPending(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	out := make([]certificateResponse, 0, len(certs))
	for _, c := range certs {
		out = append(out, toCertificateResponse(c))
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"certificates": out})
}
