package services

import "context"

// SessionState is the payment state of a checkout session as reported by
// the gateway. The application never invents these; it only mirrors them.
type SessionState string

const (
	SessionStatePaid      SessionState = "paid"
	SessionStateUnpaid    SessionState = "unpaid"
	SessionStateExpired   SessionState = "expired"
	SessionStateCancelled SessionState = "cancelled"
)

// IntentStatus is the outcome of a direct charge attempt
type IntentStatus string

const (
	IntentStatusSucceeded      IntentStatus = "succeeded"
	IntentStatusRequiresAction IntentStatus = "requires_action"
	IntentStatusFailed         IntentStatus = "failed"
)

// CreateSessionRequest describes the checkout session to open on the
// gateway. Amount is in decimal currency units; conversion to the gateway's
// smallest-unit representation happens inside the adapter.
type CreateSessionRequest struct {
	OrderID       string
	Amount        float64
	Currency      string
	CustomerName  string
	CustomerEmail string
	ItemID        string
	ItemName      string
	FinishURL     string
}

// CheckoutSession is a freshly created (or reused) gateway session
type CheckoutSession struct {
	SessionID   string
	Token       string
	RedirectURL string
}

// SessionStatus is the gateway's current record of a session
type SessionStatus struct {
	State          SessionState
	TransactionID  string
	PaymentChannel string
	GrossAmount    float64
}

// IntentResult is the gateway's answer to a direct charge confirmation
type IntentResult struct {
	Status      IntentStatus
	RedirectURL string
}

// CheckoutGateway is the payment-provider boundary the booking lifecycle
// depends on. Implementations must bound every call with a timeout and
// return errors wrapping ErrPaymentGateway on transport or upstream
// failures.
type CheckoutGateway interface {
	CreateSession(ctx context.Context, req CreateSessionRequest) (*CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*SessionStatus, error)
	ConfirmIntent(ctx context.Context, intentID, paymentMethodToken string) (*IntentResult, error)
	CancelSession(ctx context.Context, sessionID string) error
}
