package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/Goh0809/Eventora-Backend/pkg/telemetry"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresEventRepository implements EventRepository using PostgreSQL
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

// eventColumns uses COALESCE for nullable text columns to avoid scan errors
const eventColumns = `e.id::text, e.title,
	COALESCE(e.description, ''), COALESCE(e.location, ''),
	e.event_date, e.event_end_date, e.max_slots, e.is_paid,
	e.ticket_price::float8, e.currency, e.event_status,
	COALESCE(e.image_url, ''), COALESCE(e.stripe_product_id, ''), COALESCE(e.stripe_price_id, ''),
	e.created_by::text, e.created_at, e.updated_at`

func scanEvent(row pgx.Row) (*domain.Event, error) {
	event := &domain.Event{}
	var status string
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Location,
		&event.EventDate,
		&event.EventEndDate,
		&event.MaxSlots,
		&event.IsPaid,
		&event.TicketPrice,
		&event.Currency,
		&status,
		&event.ImageURL,
		&event.StripeProductID,
		&event.StripePriceID,
		&event.CreatedBy,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	event.Status = domain.EventStatus(status)
	return event, nil
}

func scanEvents(rows pgx.Rows) ([]*domain.Event, error) {
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// Create inserts a new event
func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", event.ID),
		attribute.String("created_by", event.CreatedBy),
	)

	query := `
		INSERT INTO event (
			id, title, description, location, event_date, event_end_date,
			max_slots, is_paid, ticket_price, currency, event_status, created_by
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12
		)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		event.ID,
		event.Title,
		nullString(event.Description),
		nullString(event.Location),
		event.EventDate,
		event.EventEndDate,
		event.MaxSlots,
		event.IsPaid,
		event.TicketPrice,
		event.Currency,
		string(event.Status),
		event.CreatedBy,
	).Scan(&event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves an event by ID
func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	query := `SELECT ` + eventColumns + ` FROM event e WHERE e.id = $1`

	event, err := scanEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isMissing(err) {
			span.SetStatus(codes.Ok, "not found")
			return nil, domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return event, nil
}

// GetOwned retrieves an event created by userID
func (r *PostgresEventRepository) GetOwned(ctx context.Context, id, userID string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.get_owned")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", id),
		attribute.String("user_id", userID),
	)

	query := `SELECT ` + eventColumns + ` FROM event e WHERE e.id = $1 AND e.created_by = $2`

	event, err := scanEvent(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if isMissing(err) {
			span.SetStatus(codes.Ok, "not found")
			return nil, domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return event, nil
}

// ListPublished lists published events with filters and pagination
func (r *PostgresEventRepository) ListPublished(ctx context.Context, filter *domain.EventFilter) ([]*domain.Event, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.list_published")
	defer span.End()

	span.SetAttributes(
		attribute.Int("page", filter.Page),
		attribute.Int("size", filter.Size),
	)

	var (
		joins      string
		conditions = []string{"e.event_status = 'published'"}
		args       []interface{}
	)

	if filter.CategoryID != "" {
		joins = " INNER JOIN event_category_map m ON m.event_id = e.id"
		args = append(args, filter.CategoryID)
		conditions = append(conditions, fmt.Sprintf("m.category_id = $%d", len(args)))
	}
	if filter.CreatedBy != "" {
		args = append(args, filter.CreatedBy)
		conditions = append(conditions, fmt.Sprintf("e.created_by = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("e.title ILIKE $%d", len(args)))
	}

	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM event e` + joins + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	args = append(args, filter.Size, filter.Offset())
	query := fmt.Sprintf(`SELECT %s FROM event e%s%s ORDER BY e.created_at DESC LIMIT $%d OFFSET $%d`,
		eventColumns, joins, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}

	events, err := scanEvents(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to scan events: %w", err)
	}

	span.SetAttributes(attribute.Int("total", total))
	span.SetStatus(codes.Ok, "")
	return events, total, nil
}

// ListByOrganizer lists every event created by userID
func (r *PostgresEventRepository) ListByOrganizer(ctx context.Context, userID string) ([]*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.list_by_organizer")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	query := `SELECT ` + eventColumns + ` FROM event e WHERE e.created_by = $1 ORDER BY e.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list organizer events: %w", err)
	}

	events, err := scanEvents(rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to scan events: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return events, nil
}

// SetMedia patches the image URL and gateway identifiers
func (r *PostgresEventRepository) SetMedia(ctx context.Context, id, imageURL, productID, priceID string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.set_media")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	query := `
		UPDATE event
		SET image_url = $2, stripe_product_id = $3, stripe_price_id = $4, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, nullString(imageURL), nullString(productID), nullString(priceID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update event media: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Update persists every mutable column of the event
func (r *PostgresEventRepository) Update(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.update")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", event.ID))

	query := `
		UPDATE event SET
			title = $2, description = $3, location = $4, event_date = $5, event_end_date = $6,
			max_slots = $7, is_paid = $8, ticket_price = $9, currency = $10, event_status = $11,
			image_url = $12, stripe_product_id = $13, stripe_price_id = $14, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		event.ID,
		event.Title,
		nullString(event.Description),
		nullString(event.Location),
		event.EventDate,
		event.EventEndDate,
		event.MaxSlots,
		event.IsPaid,
		event.TicketPrice,
		event.Currency,
		string(event.Status),
		nullString(event.ImageURL),
		nullString(event.StripeProductID),
		nullString(event.StripePriceID),
	).Scan(&event.UpdatedAt)
	if err != nil {
		if isMissing(err) {
			return domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Delete removes an event by ID
func (r *PostgresEventRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.delete")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	result, err := r.pool.Exec(ctx, `DELETE FROM event WHERE id = $1`, id)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
