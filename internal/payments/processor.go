package payments

import "context"

// Processor is the provider-agnostic payment port.
//
// Rules:
// - No processor SDK calls outside adapters (see stripe.go).
// - Amounts are in minor units of currency (cents for usd).
type Processor interface {
	Name() string
	CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string) (clientSecret string, err error)
}
