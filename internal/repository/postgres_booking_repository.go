package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/Goh0809/Eventora-Backend/pkg/telemetry"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresBookingRepository implements BookingRepository using PostgreSQL with pgxpool
type PostgresBookingRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresBookingRepository creates a new PostgresBookingRepository
func NewPostgresBookingRepository(pool *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{pool: pool}
}

const bookingColumns = `b.id::text, b.event_id::text, b.user_id::text, b.amount_total, b.currency,
	b.payment_status, b.payment_method,
	COALESCE(b.stripe_session_id, ''), COALESCE(b.stripe_payment_intent_id, ''),
	b.created_at, b.updated_at`

// bookingScanner collects scan targets for bookingColumns and fixes up enum fields afterwards
type bookingScanner struct {
	booking *domain.Booking
	status  string
}

func newBookingScanner(b *domain.Booking) *bookingScanner {
	return &bookingScanner{booking: b}
}

func (s *bookingScanner) dest() []interface{} {
	b := s.booking
	return []interface{}{
		&b.ID,
		&b.EventID,
		&b.UserID,
		&b.AmountTotal,
		&b.Currency,
		&s.status,
		&b.PaymentMethod,
		&b.StripeSessionID,
		&b.StripePaymentIntentID,
		&b.CreatedAt,
		&b.UpdatedAt,
	}
}

func (s *bookingScanner) finish() {
	s.booking.PaymentStatus = domain.PaymentStatus(s.status)
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	b := &domain.Booking{}
	s := newBookingScanner(b)
	if err := row.Scan(s.dest()...); err != nil {
		return nil, err
	}
	s.finish()
	return b, nil
}

// Create creates a new booking record in the database
func (r *PostgresBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.String("user_id", booking.UserID),
		attribute.String("event_id", booking.EventID),
		attribute.String("payment_status", string(booking.PaymentStatus)),
	)

	query := `
		INSERT INTO bookings (
			id, event_id, user_id, amount_total, currency, payment_status, payment_method
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		booking.ID,
		booking.EventID,
		booking.UserID,
		booking.AmountTotal,
		booking.Currency,
		string(booking.PaymentStatus),
		booking.PaymentMethod,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create booking: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a booking by its ID
func (r *PostgresBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = $1`

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isMissing(err) {
			span.SetStatus(codes.Ok, "not found")
			return nil, domain.ErrBookingNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return booking, nil
}

// Delete removes a booking by ID
func (r *PostgresBookingRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.delete")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	if _, err := r.pool.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// AttachSession stores the checkout session id on a booking
func (r *PostgresBookingRepository) AttachSession(ctx context.Context, id, sessionID string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.attach_session")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", id),
		attribute.String("session_id", sessionID),
	)

	result, err := r.pool.Exec(ctx,
		`UPDATE bookings SET stripe_session_id = $2, updated_at = NOW() WHERE id = $1`,
		id, sessionID,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrBookingNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to attach checkout session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// MarkPaid settles a booking unless it is already paid
func (r *PostgresBookingRepository) MarkPaid(ctx context.Context, id, paymentIntentID string, amountTotal int64) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.mark_paid")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", id),
		attribute.Int64("amount_total", amountTotal),
	)

	query := `
		UPDATE bookings
		SET payment_status = 'paid', stripe_payment_intent_id = $2, amount_total = $3, updated_at = NOW()
		WHERE id = $1 AND payment_status <> 'paid'
	`

	result, err := r.pool.Exec(ctx, query, id, nullString(paymentIntentID), amountTotal)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to mark booking paid: %w", err)
	}

	changed := result.RowsAffected() > 0
	span.SetAttributes(attribute.Bool("changed", changed))
	span.SetStatus(codes.Ok, "")
	return changed, nil
}

// MarkExpired expires a booking while it is still pending
func (r *PostgresBookingRepository) MarkExpired(ctx context.Context, id string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.mark_expired")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	result, err := r.pool.Exec(ctx,
		`UPDATE bookings SET payment_status = 'expired', updated_at = NOW() WHERE id = $1 AND payment_status = 'pending'`,
		id,
	)
	if err != nil {
		if isInvalidUUID(err) {
			span.SetStatus(codes.Ok, "not found")
			return false, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to expire booking: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return result.RowsAffected() > 0, nil
}

// ExpirePending expires a batch of stale pending bookings.
// Rows locked by a concurrent writer are skipped and picked up on the next scan.
func (r *PostgresBookingRepository) ExpirePending(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.expire_pending")
	defer span.End()

	span.SetAttributes(attribute.Int("limit", limit))

	query := `
		UPDATE bookings AS b
		SET payment_status = 'expired', updated_at = NOW()
		WHERE b.id IN (
			SELECT id FROM bookings
			WHERE payment_status = 'pending' AND created_at < $1
			ORDER BY created_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		) AND b.payment_status = 'pending'
		RETURNING ` + bookingColumns

	rows, err := r.pool.Query(ctx, query, cutoff, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to expire pending bookings: %w", err)
	}
	defer rows.Close()

	expired := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan expired booking: %w", err)
		}
		expired = append(expired, booking)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to iterate expired bookings: %w", err)
	}

	span.SetAttributes(attribute.Int("expired_count", len(expired)))
	span.SetStatus(codes.Ok, "")
	return expired, nil
}

// CountPendingSince counts pending bookings for an event created at or after since
func (r *PostgresBookingRepository) CountPendingSince(ctx context.Context, eventID string, since time.Time) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.count_pending")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE event_id = $1 AND payment_status = 'pending' AND created_at >= $2`,
		eventID, since,
	).Scan(&count)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to count pending bookings: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return count, nil
}

// CountPaid counts paid bookings for an event
func (r *PostgresBookingRepository) CountPaid(ctx context.Context, eventID string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.count_paid")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE event_id = $1 AND payment_status = 'paid'`,
		eventID,
	).Scan(&count)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to count paid bookings: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return count, nil
}

// CountPaidByEvents counts paid bookings per event in one query
func (r *PostgresBookingRepository) CountPaidByEvents(ctx context.Context, eventIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.count_paid_by_events")
	defer span.End()

	span.SetAttributes(attribute.Int("event_count", len(eventIDs)))

	query := `
		SELECT event_id::text, COUNT(*)
		FROM bookings
		WHERE event_id::text = ANY($1) AND payment_status = 'paid'
		GROUP BY event_id
	`

	rows, err := r.pool.Query(ctx, query, eventIDs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to count paid bookings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventID string
		var count int
		if err := rows.Scan(&eventID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan booking count: %w", err)
		}
		counts[eventID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate booking counts: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return counts, nil
}

// ExistsForEvent reports whether any booking references the event
func (r *PostgresBookingRepository) ExistsForEvent(ctx context.Context, eventID string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.exists_for_event")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE event_id = $1)`, eventID).Scan(&exists)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to check event bookings: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return exists, nil
}

// FindPaid returns the user's paid booking for an event
func (r *PostgresBookingRepository) FindPaid(ctx context.Context, userID, eventID string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.find_paid")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("event_id", eventID),
	)

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings b
		WHERE b.user_id = $1 AND b.event_id = $2 AND b.payment_status = 'paid'
		ORDER BY b.created_at DESC
		LIMIT 1
	`

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, userID, eventID))
	if err != nil {
		if isMissing(err) {
			span.SetStatus(codes.Ok, "not found")
			return nil, domain.ErrBookingNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to find paid booking: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return booking, nil
}

// ListByUser lists a user's bookings with event info, newest first
func (r *PostgresBookingRepository) ListByUser(ctx context.Context, userID string) ([]*domain.BookingWithEvent, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.list_by_user")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	query := `
		SELECT ` + bookingColumns + `,
			e.title, COALESCE(e.location, ''), e.event_date, COALESCE(e.image_url, '')
		FROM bookings b
		JOIN event e ON e.id = b.event_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list user bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]*domain.BookingWithEvent, 0)
	for rows.Next() {
		item := &domain.BookingWithEvent{}
		s := newBookingScanner(&item.Booking)
		dest := append(s.dest(), &item.Event.Title, &item.Event.Location, &item.Event.EventDate, &item.Event.ImageURL)
		if err := rows.Scan(dest...); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan user booking: %w", err)
		}
		s.finish()
		bookings = append(bookings, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user bookings: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(bookings)))
	span.SetStatus(codes.Ok, "")
	return bookings, nil
}

// GetDetail retrieves a booking with its event and buyer
func (r *PostgresBookingRepository) GetDetail(ctx context.Context, id string) (*domain.BookingDetail, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.get_detail")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	query := `
		SELECT ` + bookingColumns + `, ` + eventColumns + `,
			COALESCE(p.full_name, ''), COALESCE(p.email, '')
		FROM bookings b
		JOIN event e ON e.id = b.event_id
		LEFT JOIN profile p ON p.id = b.user_id
		WHERE b.id = $1
	`

	detail := &domain.BookingDetail{Event: &domain.Event{}}
	s := newBookingScanner(&detail.Booking)
	var eventStatus string
	ev := detail.Event
	dest := append(s.dest(),
		&ev.ID, &ev.Title, &ev.Description, &ev.Location,
		&ev.EventDate, &ev.EventEndDate, &ev.MaxSlots, &ev.IsPaid,
		&ev.TicketPrice, &ev.Currency, &eventStatus,
		&ev.ImageURL, &ev.StripeProductID, &ev.StripePriceID,
		&ev.CreatedBy, &ev.CreatedAt, &ev.UpdatedAt,
		&detail.Profile.FullName, &detail.Profile.Email,
	)

	if err := r.pool.QueryRow(ctx, query, id).Scan(dest...); err != nil {
		if isMissing(err) {
			span.SetStatus(codes.Ok, "not found")
			return nil, domain.ErrBookingNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get booking detail: %w", err)
	}
	s.finish()
	ev.Status = domain.EventStatus(eventStatus)

	span.SetStatus(codes.Ok, "")
	return detail, nil
}

// ListPaidParticipants lists paid bookings for an event with buyer info, newest first
func (r *PostgresBookingRepository) ListPaidParticipants(ctx context.Context, eventID string) ([]*domain.EventParticipant, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.list_paid_participants")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	query := `
		SELECT b.id::text, b.user_id::text, e.title,
			COALESCE(p.full_name, ''), COALESCE(p.email, ''),
			b.amount_total, b.currency, b.created_at
		FROM bookings b
		JOIN event e ON e.id = b.event_id
		LEFT JOIN profile p ON p.id = b.user_id
		WHERE b.event_id = $1 AND b.payment_status = 'paid'
		ORDER BY b.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	participants := make([]*domain.EventParticipant, 0)
	for rows.Next() {
		p := &domain.EventParticipant{}
		if err := rows.Scan(&p.BookingID, &p.UserID, &p.EventTitle, &p.FullName, &p.Email,
			&p.AmountTotal, &p.Currency, &p.PaidAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return participants, nil
}

// ListPaidSales lists paid bookings across events with buyer info, newest first
func (r *PostgresBookingRepository) ListPaidSales(ctx context.Context, eventIDs []string) ([]*domain.SaleRecord, error) {
	sales := make([]*domain.SaleRecord, 0)
	if len(eventIDs) == 0 {
		return sales, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.list_paid_sales")
	defer span.End()

	span.SetAttributes(attribute.Int("event_count", len(eventIDs)))

	query := `
		SELECT b.id::text, b.event_id::text, b.amount_total, b.created_at,
			COALESCE(p.full_name, ''), COALESCE(p.email, '')
		FROM bookings b
		LEFT JOIN profile p ON p.id = b.user_id
		WHERE b.event_id::text = ANY($1) AND b.payment_status = 'paid'
		ORDER BY b.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, eventIDs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s := &domain.SaleRecord{}
		if err := rows.Scan(&s.BookingID, &s.EventID, &s.AmountTotal, &s.CreatedAt, &s.BuyerName, &s.BuyerEmail); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sales: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(sales)))
	span.SetStatus(codes.Ok, "")
	return sales, nil
}
