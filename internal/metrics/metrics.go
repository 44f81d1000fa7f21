package metrics

import (
	"context"
	"sync"

	"github.com/Goh0809/Eventora-Backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// Checkout counters
	CheckoutsStarted     *telemetry.Counter
	CheckoutsCompensated *telemetry.Counter
	CapacityRejections   *telemetry.Counter

	// Booking lifecycle counters
	BookingsConfirmed *telemetry.Counter
	BookingsExpired   *telemetry.Counter
	LatePayments      *telemetry.Counter

	// Webhook counters
	WebhooksReceived *telemetry.Counter
	WebhooksRejected *telemetry.Counter

	// Expiry worker
	ExpiryScanDuration *telemetry.Histogram

	initOnce sync.Once
)

// Init registers every instrument on the global meter. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		CheckoutsStarted = telemetry.NewCounter(telemetry.MetricOpts{
			Name:        "eventora_checkouts_started_total",
			Description: "Total number of checkout attempts that passed admission",
		})
		CheckoutsCompensated = telemetry.NewCounter(telemetry.MetricOpts{
			Name:        "eventora_checkouts_compensated_total",
			Description: "Total number of checkout sagas rolled back",
		})
		CapacityRejections = telemetry.NewCounter(telemetry.MetricOpts{
			Name:        "eventora_capacity_rejections_total",
			Description: "Total number of checkouts rejected because the event was full",
		})
		BookingsConfirmed = telemetry.NewCounter(telemetry.MetricOpts{
			Name:        "eventora_bookings_confirmed_total",
			Description: "Total number of bookings confirmed",
		})
		BookingsExpired = telemetry.NewCounter(telemetry.MetricOpts{
			Name:        "eventora_bookings_expired_total",
			Description: "Total number of pending bookings expired",
		})
		LatePayments = telemetry.NewCounter(telemetry.MetricOpts{
			Name:        "eventora_late_payments_total",
			Description: "Total number of payments received for already expired bookings",
		})
		WebhooksReceived = telemetry.NewCounter(telemetry.MetricOpts{
			Name:        "eventora_webhooks_received_total",
			Description: "Total number of verified payment callbacks",
		})
		WebhooksRejected = telemetry.NewCounter(telemetry.MetricOpts{
			Name:        "eventora_webhooks_rejected_total",
			Description: "Total number of payment callbacks failing verification",
		})
		ExpiryScanDuration = telemetry.NewHistogram(telemetry.MetricOpts{
			Name:        "eventora_expiry_scan_duration_seconds",
			Description: "Duration of one pending booking expiry scan",
			Unit:        "s",
		})
	})
}

// RecordCheckoutStarted records a checkout that passed admission
func RecordCheckoutStarted(ctx context.Context, eventID string, paid bool) {
	CheckoutsStarted.Inc(ctx, attribute.String("event_id", eventID), attribute.Bool("paid", paid))
}

// RecordCheckoutCompensated records a rolled back checkout
func RecordCheckoutCompensated(ctx context.Context, step string) {
	CheckoutsCompensated.Inc(ctx, attribute.String("step", step))
}

// RecordCapacityRejection records a sold out rejection
func RecordCapacityRejection(ctx context.Context, eventID string) {
	CapacityRejections.Inc(ctx, attribute.String("event_id", eventID))
}

// RecordBookingConfirmed records a confirmed booking
func RecordBookingConfirmed(ctx context.Context, source string) {
	BookingsConfirmed.Inc(ctx, attribute.String("source", source))
}

// RecordBookingsExpired records n expired bookings
func RecordBookingsExpired(ctx context.Context, n int, source string) {
	if n <= 0 {
		return
	}
	BookingsExpired.Add(ctx, int64(n), attribute.String("source", source))
}

// RecordLatePayment records a payment honoured after expiry
func RecordLatePayment(ctx context.Context) {
	LatePayments.Inc(ctx)
}

// RecordWebhook records a payment callback outcome
func RecordWebhook(ctx context.Context, eventType string, accepted bool) {
	if !accepted {
		WebhooksRejected.Inc(ctx)
		return
	}
	WebhooksReceived.Inc(ctx, attribute.String("type", eventType))
}

// RecordExpiryScan records the duration of one scan in seconds
func RecordExpiryScan(ctx context.Context, seconds float64, expired int) {
	ExpiryScanDuration.Record(ctx, seconds, attribute.Int("expired", expired))
}
