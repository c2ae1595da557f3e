package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-bot/internal/domain"
	"github.com/spec-kit/helpdesk-bot/internal/events"
	"github.com/spec-kit/helpdesk-bot/internal/observability"
	"github.com/spec-kit/helpdesk-bot/internal/repository"
	"github.com/spec-kit/helpdesk-bot/internal/timeutil"
	apperrors "github.com/spec-kit/helpdesk-bot/pkg/util"
)

// ProfileService owns the company profile: creation on first contact and
// single-field edits. Profile edits never touch existing tickets; those keep
// the snapshot taken when they were filed.
type ProfileService struct {
	users      repository.UserRepository
	clock      *timeutil.Normalizer
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
}

// NewProfileService constructs the service.
func NewProfileService(users repository.UserRepository, clock *timeutil.Normalizer, dispatcher events.Dispatcher, metrics *observability.Metrics) *ProfileService {
	return &ProfileService{users: users, clock: clock, dispatcher: dispatcher, metrics: metrics}
}

// EnsureUser returns the participant's profile, creating it with sentinel
// fields when the participant is new. The second result reports whether the
// profile was created by this call.
func (s *ProfileService) EnsureUser(ctx context.Context, telegramID int64, at time.Time) (*domain.User, bool, error) {
	user, err := s.users.GetByID(ctx, telegramID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, apperrors.NewInternalError(err)
	}

	user = domain.NewUser(telegramID, s.clock.FromTime(at))
	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, apperrors.NewInternalError(err)
	}
	return user, true, nil
}

// Get fetches the participant's profile.
func (s *ProfileService) Get(ctx context.Context, telegramID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, telegramID)
	if err != nil {
		return nil, notFoundOr("user", err)
	}
	return user, nil
}

// SetField updates a single profile field. The field must belong to the
// closed editable set; any non-empty text is accepted as the value. Returns
// the refreshed profile.
func (s *ProfileService) SetField(ctx context.Context, telegramID int64, field domain.ProfileField, value string) (*domain.User, error) {
	if !field.Valid() {
		return nil, apperrors.NewMalformedInput("unknown profile field")
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, apperrors.NewMalformedInput("empty value")
	}

	if err := s.users.UpdateField(ctx, telegramID, field, value); err != nil {
		return nil, notFoundOr("user", err)
	}

	s.publishProfileUpdated(ctx, telegramID, field)
	return s.Get(ctx, telegramID)
}

func (s *ProfileService) publishProfileUpdated(ctx context.Context, telegramID int64, field domain.ProfileField) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventProfileUpdated,
		Timestamp: time.Now(),
		Payload: events.ProfileUpdatedPayload{
			TelegramID: telegramID,
			Field:      string(field),
		},
	}
	s.metrics.RecordEvent(string(event.Type))
	_ = s.dispatcher.Publish(ctx, event)
}
