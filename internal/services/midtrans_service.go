package services

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"

	"travelbook_app/internal/config"
)

// zeroDecimalCurrencies have no fractional unit; their amounts go to the
// gateway as whole units instead of being multiplied into cents
var zeroDecimalCurrencies = map[string]bool{
	"IDR": true,
	"JPY": true,
	"KRW": true,
	"VND": true,
}

// gatewayAmount converts a decimal currency amount into the smallest unit
// the gateway expects
func gatewayAmount(amount float64, currency string) int64 {
	if zeroDecimalCurrencies[currency] {
		return int64(math.Round(amount))
	}
	return int64(math.Round(amount * 100))
}

// MidtransGateway implements CheckoutGateway against Midtrans: Snap for
// hosted checkout sessions, the Core API for status checks, direct charges
// and cancellation. Midtrans keys everything by order id, so the order id
// doubles as the session id.
type MidtransGateway struct {
	SnapClient snap.Client
	CoreClient coreapi.Client
}

// NewMidtransGateway builds the gateway adapter from config
func NewMidtransGateway(cfg *config.Config) *MidtransGateway {
	env := midtrans.Sandbox
	if cfg.Midtrans.Production {
		env = midtrans.Production
	}

	midtrans.ServerKey = cfg.Midtrans.ServerKey
	midtrans.ClientKey = cfg.Midtrans.ClientKey
	midtrans.Environment = env
	// Bound every gateway round-trip; a hung call must fail, not block the
	// checkout request indefinitely
	midtrans.DefaultGoHttpClient = &http.Client{Timeout: cfg.GatewayTimeout}

	var s snap.Client
	s.New(cfg.Midtrans.ServerKey, env)

	var c coreapi.Client
	c.New(cfg.Midtrans.ServerKey, env)

	return &MidtransGateway{SnapClient: s, CoreClient: c}
}

// CreateSession opens a Snap transaction and returns its token and hosted
// checkout URL
func (g *MidtransGateway) CreateSession(ctx context.Context, req CreateSessionRequest) (*CheckoutSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}

	amount := gatewayAmount(req.Amount, req.Currency)
	param := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.CustomerName,
			Email: req.CustomerEmail,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    req.ItemID,
				Name:  req.ItemName,
				Price: amount,
				Qty:   1,
			},
		},
	}
	if req.FinishURL != "" {
		param.Callbacks = &snap.Callbacks{Finish: req.FinishURL}
	}

	resp, err := g.SnapClient.CreateTransaction(param)
	if err != nil {
		return nil, fmt.Errorf("%w: create transaction: %v", ErrPaymentGateway, err)
	}

	return &CheckoutSession{
		SessionID:   req.OrderID,
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}

// RetrieveSession fetches the gateway's own record of a session
func (g *MidtransGateway) RetrieveSession(ctx context.Context, sessionID string) (*SessionStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}

	resp, err := g.CoreClient.CheckTransaction(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: check transaction: %v", ErrPaymentGateway, err)
	}

	gross, _ := strconv.ParseFloat(resp.GrossAmount, 64)
	return &SessionStatus{
		State:          mapTransactionStatus(resp.TransactionStatus, resp.FraudStatus),
		TransactionID:  resp.TransactionID,
		PaymentChannel: resp.PaymentType,
		GrossAmount:    gross,
	}, nil
}

// ConfirmIntent performs a direct Core API charge with a tokenized payment
// method (the embedded, non-hosted flow)
func (g *MidtransGateway) ConfirmIntent(ctx context.Context, intentID, paymentMethodToken string) (*IntentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}

	resp, err := g.CoreClient.ChargeTransaction(&coreapi.ChargeReq{
		PaymentType: coreapi.PaymentTypeCreditCard,
		TransactionDetails: midtrans.TransactionDetails{
			OrderID: intentID,
		},
		CreditCard: &coreapi.CreditCardDetails{
			TokenID: paymentMethodToken,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: charge transaction: %v", ErrPaymentGateway, err)
	}

	switch resp.TransactionStatus {
	case "capture", "settlement":
		return &IntentResult{Status: IntentStatusSucceeded}, nil
	case "pending":
		return &IntentResult{Status: IntentStatusRequiresAction, RedirectURL: resp.RedirectURL}, nil
	default:
		return &IntentResult{Status: IntentStatusFailed}, nil
	}
}

// CancelSession voids a session on the gateway; used when a new session
// replaces an open one
func (g *MidtransGateway) CancelSession(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}

	if _, err := g.CoreClient.CancelTransaction(sessionID); err != nil {
		return fmt.Errorf("%w: cancel transaction: %v", ErrPaymentGateway, err)
	}
	return nil
}

// mapTransactionStatus folds Midtrans transaction/fraud status pairs into
// the session states the lifecycle manager reasons about
func mapTransactionStatus(transactionStatus, fraudStatus string) SessionState {
	switch transactionStatus {
	case "settlement":
		return SessionStatePaid
	case "capture":
		if fraudStatus == "challenge" {
			return SessionStateUnpaid
		}
		return SessionStatePaid
	case "expire":
		return SessionStateExpired
	case "cancel", "deny", "failure":
		return SessionStateCancelled
	default:
		// pending, authorize
		return SessionStateUnpaid
	}
}
