package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"venuebook/models"
	"venuebook/services/flow"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// StripeGateway implements the payment gateway contract with Stripe
// PaymentIntents. The flow applies its own deadline around Charge; this
// adapter only translates the request and classifies declines.
type StripeGateway struct {
	Logger *zap.Logger
}

func NewStripeGateway(logger *zap.Logger) *StripeGateway {
	return &StripeGateway{Logger: logger}
}

// Charge creates and confirms a PaymentIntent for the full amount. The
// request's Method carries the payment method id collected on the payment
// step. A card decline comes back as *flow.DeclinedError so the caller can
// distinguish it from infrastructure failures.
func (g *StripeGateway) Charge(ctx context.Context, req models.ChargeRequest) (*models.ChargeReceipt, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(toMinorUnits(req.Amount.Amount)),
		Currency:      stripe.String(strings.ToLower(req.Amount.Currency)),
		PaymentMethod: stripe.String(req.Method),
		Confirm:       stripe.Bool(true),
		Description:   stripe.String(req.Description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	if req.Idempotency != "" {
		params.IdempotencyKey = stripe.String(req.Idempotency)
	}
	params.AddMetadata("userId", req.UserID)

	pi, err := paymentintent.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			reason := string(stripeErr.DeclineCode)
			if reason == "" {
				reason = string(stripeErr.Code)
			}
			return nil, &flow.DeclinedError{Reason: reason}
		}
		return nil, fmt.Errorf("stripe charge failed: %w", err)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		g.Logger.Warn("payment intent did not succeed",
			zap.String("paymentIntent", pi.ID),
			zap.String("status", string(pi.Status)))
		return nil, &flow.DeclinedError{Reason: string(pi.Status)}
	}

	return &models.ChargeReceipt{
		PaymentID: pi.ID,
		Status:    string(pi.Status),
	}, nil
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
