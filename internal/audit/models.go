package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	// Actor is the caller identity that performed the action.
	Actor string
	// Subject is the identity or certificate id the action applied to.
	Subject   string
	Action    Action
	Decision  string
	Reason    string
	RequestID string
}

// Action names one auditable operation.
type Action string

const (
	ActionAccountRegistered   Action = "account_registered"
	ActionLoginSucceeded      Action = "login_succeeded"
	ActionLoginFailed         Action = "login_failed"
	ActionSessionRevoked      Action = "session_revoked"
	ActionCertificateIssued   Action = "certificate_issued"
	ActionCertificateReviewed Action = "certificate_reviewed"
	ActionArtifactStored      Action = "artifact_stored"
)
