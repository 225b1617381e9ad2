package audit

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestWorkerPersistsEvents(t *testing.T) {
	store := NewMemoryStore()
	inbox := make(chan Event, 8)
	worker := NewWorker(store, inbox, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = worker.Run(ctx)
		close(done)
	}()

	svc := NewService(inbox, discardLogger())
	svc.Record(ctx, Event{Actor: "0xowner", Subject: "0xstudent", Action: ActionAccountRegistered})
	svc.Record(ctx, Event{Actor: "0xteacher", Subject: "cert-1", Action: ActionCertificateIssued})

	require.Eventually(t, func() bool {
		events, err := store.ListBySubject(context.Background(), "cert-1")
		return err == nil && len(events) == 1
	}, time.Second, 10*time.Millisecond)

	events, err := store.ListBySubject(context.Background(), "0xstudent")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ActionAccountRegistered, events[0].Action)
	assert.False(t, events[0].Timestamp.IsZero(), "service should stamp time")

	cancel()
	<-done
}

func TestServiceDropsWhenInboxFull(t *testing.T) {
	inbox := make(chan Event, 1)
	svc := NewService(inbox, discardLogger())

	svc.Record(context.Background(), Event{Action: ActionLoginFailed})
	// Inbox is full now; this must not block.
	svc.Record(context.Background(), Event{Action: ActionLoginFailed})
	assert.Len(t, inbox, 1)
}
