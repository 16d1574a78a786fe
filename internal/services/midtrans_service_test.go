package services

import "testing"

func TestMapTransactionStatus(t *testing.T) {
	tests := []struct {
		name              string
		transactionStatus string
		fraudStatus       string
		want              SessionState
	}{
		{name: "settlement is paid", transactionStatus: "settlement", want: SessionStatePaid},
		{name: "accepted capture is paid", transactionStatus: "capture", fraudStatus: "accept", want: SessionStatePaid},
		{name: "challenged capture stays unpaid", transactionStatus: "capture", fraudStatus: "challenge", want: SessionStateUnpaid},
		{name: "pending is unpaid", transactionStatus: "pending", want: SessionStateUnpaid},
		{name: "authorize is unpaid", transactionStatus: "authorize", want: SessionStateUnpaid},
		{name: "expire", transactionStatus: "expire", want: SessionStateExpired},
		{name: "cancel", transactionStatus: "cancel", want: SessionStateCancelled},
		{name: "deny", transactionStatus: "deny", want: SessionStateCancelled},
		{name: "failure", transactionStatus: "failure", want: SessionStateCancelled},
		{name: "unknown status stays unpaid", transactionStatus: "something_new", want: SessionStateUnpaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapTransactionStatus(tt.transactionStatus, tt.fraudStatus)
			if got != tt.want {
				t.Errorf("mapTransactionStatus(%q, %q) = %v, want %v", tt.transactionStatus, tt.fraudStatus, got, tt.want)
			}
		})
	}
}

func TestGatewayAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		currency string
		want     int64
	}{
		{name: "IDR passes whole units", amount: 150000, currency: "IDR", want: 150000},
		{name: "IDR rounds fractions", amount: 150000.6, currency: "IDR", want: 150001},
		{name: "JPY passes whole units", amount: 4200, currency: "JPY", want: 4200},
		{name: "USD converts to cents", amount: 99.99, currency: "USD", want: 9999},
		{name: "EUR converts to cents", amount: 10, currency: "EUR", want: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gatewayAmount(tt.amount, tt.currency)
			if got != tt.want {
				t.Errorf("gatewayAmount(%v, %q) = %d, want %d", tt.amount, tt.currency, got, tt.want)
			}
		})
	}
}
