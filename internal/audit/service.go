package audit

import (
	"context"
	"log/slog"

	"certledger/pkg/requestcontext"
)

// Recorder is the narrow interface services emit through, so they do not
// depend on how events reach the store.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// Service hands events to a buffered inbox consumed by the Worker. Emission
// never blocks domain operations: when the inbox is full the event is
// dropped and counted in the log, not the caller's request.
type Service struct {
	inbox  chan<- Event
	logger *slog.Logger
}

func NewService(inbox chan<- Event, logger *slog.Logger) *Service {
	return &Service{inbox: inbox, logger: logger}
}

// Record stamps the event with request-scoped metadata and enqueues it.
func (s *Service) Record(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	select {
	case s.inbox <- event:
	default:
		s.logger.Warn("audit inbox full, dropping event",
			"action", string(event.Action),
			"subject", event.Subject,
		)
	}
}

// Nop discards events; used when wiring a service without an audit trail in
// tests.
type Nop struct{}

func (Nop) Record(context.Context, Event) {}
