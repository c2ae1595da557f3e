package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-bot/internal/events"
	"github.com/spec-kit/helpdesk-bot/internal/observability"
)

func TestNotifyTicketCreatedGoesToAdminChat(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	sender := &senderMock{}
	svc := NewNotificationService(dispatcher, sender, zap.NewNop(), observability.NewMetrics(), 777)
	svc.RegisterHandlers()

	sender.On("Send", mock.Anything, int64(777), mock.MatchedBy(func(text string) bool {
		return len(text) > 0
	}), mock.Anything).Return(nil)

	err := dispatcher.Publish(context.Background(), events.Event{
		Type: events.EventTicketCreated,
		Payload: events.TicketCreatedPayload{
			TicketID:      5,
			SubmitterID:   42,
			SubmitterName: "ivan",
			Message:       "printer broken",
		},
	})
	require.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestNotifyTicketClosedReachesSubmitterAndAdmin(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	sender := &senderMock{}
	svc := NewNotificationService(dispatcher, sender, zap.NewNop(), observability.NewMetrics(), 777)
	svc.RegisterHandlers()

	sender.On("Send", mock.Anything, int64(42), mock.Anything, mock.Anything).Return(nil).Once()
	sender.On("Send", mock.Anything, int64(100), mock.Anything, mock.Anything).Return(nil).Once()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type: events.EventTicketClosed,
		Payload: events.TicketClosedPayload{
			TicketID:     5,
			SubmitterID:  42,
			ClosedBy:     100,
			Comment:      "fixed cable",
			ElapsedHours: 3,
		},
	})
	require.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestNotifyDeliveryFailureIsSwallowed(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	sender := &senderMock{}
	metrics := observability.NewMetrics()
	svc := NewNotificationService(dispatcher, sender, zap.NewNop(), metrics, 777)
	svc.RegisterHandlers()

	sender.On("Send", mock.Anything, int64(42), mock.Anything, mock.Anything).Return(errors.New("blocked")).Once()
	sender.On("Send", mock.Anything, int64(100), mock.Anything, mock.Anything).Return(nil).Once()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type: events.EventTicketClosed,
		Payload: events.TicketClosedPayload{
			TicketID:    5,
			SubmitterID: 42,
			ClosedBy:    100,
		},
	})
	// One failed delivery must not stop the second one.
	require.NoError(t, err)
	sender.AssertExpectations(t)

	snapshot := metrics.Snapshot()
	require.Equal(t, int64(1), snapshot["transport_failures"])
}
