package payment

import (
	"context"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type Stripe struct {
	sc *client.API
}

// NewStripe builds a gateway for key. backends may be nil to use the public API.
func NewStripe(key string, backends *stripe.Backends) *Stripe {
	return &Stripe{sc: client.New(key, backends)}
}

func (s *Stripe) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
		ClientReferenceID:  stripe.String(req.ClientReference),
	}
	params.Context = ctx

	for _, it := range req.Items {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(it.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(it.Name),
					Description: stripe.String(it.Description),
				},
			},
			Quantity: stripe.Int64(it.Quantity),
		})
	}

	cs, err := s.sc.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}
	return fromStripe(cs), nil
}

func (s *Stripe) GetSession(ctx context.Context, id string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	cs, err := s.sc.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, err
	}
	return fromStripe(cs), nil
}

func fromStripe(cs *stripe.CheckoutSession) *Session {
	return &Session{
		ID:              cs.ID,
		URL:             cs.URL,
		Paid:            cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		ClientReference: cs.ClientReferenceID,
		AmountTotal:     cs.AmountTotal,
	}
}
