package repository

import (
	"context"
	"fmt"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/Goh0809/Eventora-Backend/pkg/database"
	"github.com/Goh0809/Eventora-Backend/pkg/telemetry"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresCategoryRepository implements CategoryRepository using PostgreSQL
type PostgresCategoryRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCategoryRepository creates a new PostgresCategoryRepository
func NewPostgresCategoryRepository(pool *pgxpool.Pool) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{pool: pool}
}

// List returns every category ordered by name
func (r *PostgresCategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.category.list")
	defer span.End()

	rows, err := r.pool.Query(ctx, `SELECT id::text, name, created_at FROM event_categories ORDER BY name`)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(categories)))
	span.SetStatus(codes.Ok, "")
	return categories, nil
}

// ForEvents returns the categories mapped to each of the given events
func (r *PostgresCategoryRepository) ForEvents(ctx context.Context, eventIDs []string) (map[string][]domain.Category, error) {
	result := make(map[string][]domain.Category, len(eventIDs))
	if len(eventIDs) == 0 {
		return result, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.category.for_events")
	defer span.End()

	span.SetAttributes(attribute.Int("event_count", len(eventIDs)))

	query := `
		SELECT m.event_id::text, c.id::text, c.name, c.created_at
		FROM event_category_map m
		JOIN event_categories c ON c.id = m.category_id
		WHERE m.event_id::text = ANY($1)
		ORDER BY c.name
	`

	rows, err := r.pool.Query(ctx, query, eventIDs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to load event categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventID string
		var c domain.Category
		if err := rows.Scan(&eventID, &c.ID, &c.Name, &c.CreatedAt); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan event category: %w", err)
		}
		result[eventID] = append(result[eventID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate event categories: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return result, nil
}

// PrimaryFor returns the first category mapped to an event, or nil when unmapped
func (r *PostgresCategoryRepository) PrimaryFor(ctx context.Context, eventID string) (*domain.Category, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.category.primary_for")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	query := `
		SELECT c.id::text, c.name, c.created_at
		FROM event_category_map m
		JOIN event_categories c ON c.id = m.category_id
		WHERE m.event_id = $1
		ORDER BY c.name
		LIMIT 1
	`

	var c domain.Category
	err := r.pool.QueryRow(ctx, query, eventID).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		if isMissing(err) {
			span.SetStatus(codes.Ok, "unmapped")
			return nil, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get event category: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return &c, nil
}

// AssignToEvent maps an event to a category
func (r *PostgresCategoryRepository) AssignToEvent(ctx context.Context, eventID, categoryID string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.category.assign")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("category_id", categoryID),
	)

	_, err := r.pool.Exec(ctx,
		`INSERT INTO event_category_map (event_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		eventID, categoryID,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to map event category: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// ReplaceForEvent swaps an event's mapping for a single category in one transaction
func (r *PostgresCategoryRepository) ReplaceForEvent(ctx context.Context, eventID, categoryID string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.category.replace")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("category_id", categoryID),
	)

	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM event_category_map WHERE event_id = $1`, eventID); err != nil {
			return fmt.Errorf("failed to clear event categories: %w", err)
		}
		if categoryID == "" {
			return nil
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO event_category_map (event_id, category_id) VALUES ($1, $2)`,
			eventID, categoryID,
		); err != nil {
			return fmt.Errorf("failed to map event category: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
