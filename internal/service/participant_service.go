package service

import (
	"context"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/Goh0809/Eventora-Backend/internal/repository"
	"github.com/Goh0809/Eventora-Backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ParticipantService defines the ticket holder registry
type ParticipantService interface {
	// Register issues a ticket to the user. Registering twice returns the same participant.
	Register(ctx context.Context, userID, eventID string) (*domain.Participant, error)
	// Count counts ticket holders of an event
	Count(ctx context.Context, eventID string) (int, error)
	// Exists reports whether the user already holds a ticket
	Exists(ctx context.Context, userID, eventID string) (bool, error)
}

type participantService struct {
	repo repository.ParticipantRepository
}

// NewParticipantService creates a new ParticipantService
func NewParticipantService(repo repository.ParticipantRepository) ParticipantService {
	return &participantService{repo: repo}
}

// Register issues a ticket to the user
func (s *participantService) Register(ctx context.Context, userID, eventID string) (*domain.Participant, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.participant.register")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID), attribute.String("event_id", eventID))

	p, err := s.repo.Upsert(ctx, userID, eventID)
	if err != nil {
		telemetry.FailSpan(span, err, "register failed")
		return nil, domain.Internal("Event Registration Failed", err)
	}

	span.SetStatus(codes.Ok, "")
	return p, nil
}

// Count counts ticket holders of an event
func (s *participantService) Count(ctx context.Context, eventID string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.participant.count")
	defer span.End()

	n, err := s.repo.Count(ctx, eventID)
	if err != nil {
		telemetry.FailSpan(span, err, "count failed")
		return 0, err
	}

	span.SetAttributes(attribute.Int("count", n))
	span.SetStatus(codes.Ok, "")
	return n, nil
}

// Exists reports whether the user already holds a ticket
func (s *participantService) Exists(ctx context.Context, userID, eventID string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.participant.exists")
	defer span.End()

	ok, err := s.repo.Exists(ctx, userID, eventID)
	if err != nil {
		telemetry.FailSpan(span, err, "exists failed")
		return false, err
	}

	span.SetStatus(codes.Ok, "")
	return ok, nil
}
