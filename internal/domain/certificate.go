package domain

import (
	"sort"
	"strings"
	"time"

	dErrors "certledger/pkg/domain-errors"
)

// Status is the lifecycle state of a certificate. A record is append-only:
// issuance creates it, review resolves it, nothing deletes it.
type Status string

const (
	StatusIssued        Status = "issued"
	StatusPendingReview Status = "pending_review"
	StatusVerified      Status = "verified"
	StatusRejected      Status = "rejected"
)

// CanTransitionTo enforces the monotone state machine: only a pending
// certificate may be resolved, and only to a terminal state. Verified and
// Rejected accept no further transitions, which is what makes a review an
// auditable single decision point.
func (s Status) CanTransitionTo(next Status) bool {
	if s != StatusPendingReview {
		return false
	}
	return next == StatusVerified || next == StatusRejected
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusVerified || s == StatusRejected
}

// IssuanceMode selects, once at startup, which of the two issuance semantics
// the deployment runs. The two models disagree about who is trusted at
// issuance time, so they are never mixed per call.
type IssuanceMode string

const (
	// IssuanceModeReview: a Teacher issues for a registered holder; the
	// certificate starts PendingReview and a second Teacher resolves it.
	IssuanceModeReview IssuanceMode = "review"
	// IssuanceModeSelf: a registered holder issues for itself; there is no
	// second-party sign-off, so the certificate is Verified immediately.
	IssuanceModeSelf IssuanceMode = "self"
)

func ParseIssuanceMode(s string) (IssuanceMode, error) {
	switch IssuanceMode(strings.ToLower(strings.TrimSpace(s))) {
	case IssuanceModeReview:
		return IssuanceModeReview, nil
	case IssuanceModeSelf:
		return IssuanceModeSelf, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown issuance mode")
	}
}

// Certificate is the evidentiary record for one issued credential.
// IssuedAt is a unix-seconds timestamp supplied by the issuing context, not
// a clock this service owns. ArtifactRef is opaque: stored and returned
// byte-identical, never inspected.
type Certificate struct {
	ID             string
	HolderIdentity string
	IssuerIdentity string
	Title          string
	IssuedAt       int64
	ArtifactRef    string
	Status         Status
	CreatedAt      time.Time
	ReviewedBy     string
	ReviewedAt     time.Time
}

// SortNewestFirst orders certificates by IssuedAt descending. Ties break on
// ID ascending so repeated queries over equal timestamps stay deterministic.
func SortNewestFirst(certs []Certificate) {
	sort.SliceStable(certs, func(i, j int) bool {
		if certs[i].IssuedAt != certs[j].IssuedAt {
			return certs[i].IssuedAt > certs[j].IssuedAt
		}
		return certs[i].ID < certs[j].ID
	})
}
