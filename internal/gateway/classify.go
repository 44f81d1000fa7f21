package gateway

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/stripe/stripe-go/v82"
)

// classifyStripeError maps a gateway failure onto the domain taxonomy
func classifyStripeError(err error) error {
	if err == nil {
		return nil
	}

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch {
		case stripeErr.HTTPStatusCode == http.StatusUnauthorized:
			return &domain.AppError{Kind: domain.KindConfiguration, Message: "Payment Gateway Is Not Configured Correctly", Err: err}
		case stripeErr.Type == stripe.ErrorTypeInvalidRequest && stripeErr.HTTPStatusCode < http.StatusInternalServerError:
			return &domain.AppError{Kind: domain.KindValidation, Message: "Payment Gateway Rejected the Request: " + stripeErr.Msg, Err: err}
		case stripeErr.Type == stripe.ErrorTypeCard:
			return &domain.AppError{Kind: domain.KindValidation, Message: "Card Declined: " + stripeErr.Msg, Err: err}
		}
		return domain.Upstream("Payment Gateway Unavailable", err)
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "no such price") || strings.Contains(msg, "no such product") {
		return &domain.AppError{Kind: domain.KindConfiguration, Message: "Payment Gateway Resource Missing", Err: err}
	}
	return domain.Upstream("Payment Gateway Unavailable", err)
}
