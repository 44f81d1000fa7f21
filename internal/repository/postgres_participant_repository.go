package repository

import (
	"context"
	"fmt"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/Goh0809/Eventora-Backend/pkg/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresParticipantRepository implements ParticipantRepository using PostgreSQL
type PostgresParticipantRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresParticipantRepository creates a new PostgresParticipantRepository
func NewPostgresParticipantRepository(pool *pgxpool.Pool) *PostgresParticipantRepository {
	return &PostgresParticipantRepository{pool: pool}
}

// Upsert registers a user for an event. A repeated call returns the existing row.
func (r *PostgresParticipantRepository) Upsert(ctx context.Context, userID, eventID string) (*domain.Participant, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.participant.upsert")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("event_id", eventID),
	)

	// DO UPDATE with a no-op assignment so RETURNING yields the row on conflict
	query := `
		INSERT INTO event_participants (event_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (event_id, user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id::text, event_id::text, user_id::text, created_at
	`

	p := &domain.Participant{}
	err := r.pool.QueryRow(ctx, query, eventID, userID).Scan(&p.ID, &p.EventID, &p.UserID, &p.CreatedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to register participant: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return p, nil
}

// Count counts participants of an event
func (r *PostgresParticipantRepository) Count(ctx context.Context, eventID string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.participant.count")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM event_participants WHERE event_id = $1`, eventID).Scan(&count); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return count, nil
}

// Exists reports whether the user is a participant of the event
func (r *PostgresParticipantRepository) Exists(ctx context.Context, userID, eventID string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.participant.exists")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("event_id", eventID),
	)

	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM event_participants WHERE user_id = $1 AND event_id = $2)`,
		userID, eventID,
	).Scan(&exists)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to check participant: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return exists, nil
}
