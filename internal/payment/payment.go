// Package payment opens and inspects hosted checkout sessions.
package payment

import "context"

// SessionIDPlaceholder in a SuccessURL is replaced with the session id by the processor.
const SessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"

type LineItem struct {
	Name        string
	Description string
	UnitAmount  int64
	Quantity    int64
}

type SessionRequest struct {
	Currency        string
	Items           []LineItem
	SuccessURL      string
	CancelURL       string
	ClientReference string
}

type Session struct {
	ID              string
	URL             string
	Paid            bool
	ClientReference string
	AmountTotal     int64
}

type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
}
