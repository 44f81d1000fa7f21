package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/Goh0809/Eventora-Backend/pkg/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresProfileRepository implements ProfileRepository using PostgreSQL
type PostgresProfileRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresProfileRepository creates a new PostgresProfileRepository
func NewPostgresProfileRepository(pool *pgxpool.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{pool: pool}
}

const profileColumns = `id::text, COALESCE(full_name, ''), COALESCE(email, ''),
	COALESCE(bio, ''), COALESCE(avatar_url, ''), updated_at`

// GetByID retrieves a profile by user ID
func (r *PostgresProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.profile.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", id))

	p := &domain.Profile{}
	err := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profile WHERE id = $1`, id).
		Scan(&p.ID, &p.FullName, &p.Email, &p.Bio, &p.AvatarURL, &p.UpdatedAt)
	if err != nil {
		if isMissing(err) {
			span.SetStatus(codes.Ok, "not found")
			return nil, domain.ErrProfileNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return p, nil
}

// Update applies only the fields set on update
func (r *PostgresProfileRepository) Update(ctx context.Context, id string, update *domain.ProfileUpdate, at time.Time) (*domain.Profile, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.profile.update")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", id))

	sets := []string{"updated_at = $2"}
	args := []interface{}{id, at}
	if update.FullName != nil {
		args = append(args, *update.FullName)
		sets = append(sets, fmt.Sprintf("full_name = $%d", len(args)))
	}
	if update.Bio != nil {
		args = append(args, *update.Bio)
		sets = append(sets, fmt.Sprintf("bio = $%d", len(args)))
	}
	if update.AvatarURL != nil {
		args = append(args, *update.AvatarURL)
		sets = append(sets, fmt.Sprintf("avatar_url = $%d", len(args)))
	}

	query := `UPDATE profile SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + profileColumns

	p := &domain.Profile{}
	err := r.pool.QueryRow(ctx, query, args...).
		Scan(&p.ID, &p.FullName, &p.Email, &p.Bio, &p.AvatarURL, &p.UpdatedAt)
	if err != nil {
		if isMissing(err) {
			return nil, domain.ErrProfileUpdateFailed
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return p, nil
}

// Touch bumps updated_at
func (r *PostgresProfileRepository) Touch(ctx context.Context, id string, at time.Time) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.profile.touch")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", id))

	if _, err := r.pool.Exec(ctx, `UPDATE profile SET updated_at = $2 WHERE id = $1`, id, at); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to touch profile: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
