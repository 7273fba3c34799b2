package payments

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"classroom-api/internal/docstore"
)

var (
	ErrInvalidAmount = errors.New("payments: amount must be positive")
	ErrNotConfigured = errors.New("payments: processor not configured")
)

// Intent is what a client needs to confirm a payment.
type Intent struct {
	ClientSecret string `json:"clientSecret"`
	AmountMinor  int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// Service creates payment intents and records completed payments.
// Reconciliation with the processor is out of scope; recorded payments are trusted as sent.
type Service struct {
	processor       Processor
	payments        docstore.Collection
	defaultCurrency string
	clock           func() time.Time
}

// NewService accepts a nil processor; intent creation then fails with ErrNotConfigured.
func NewService(processor Processor, store docstore.Store, defaultCurrency string) *Service {
	if defaultCurrency == "" {
		defaultCurrency = "usd"
	}
	return &Service{
		processor:       processor,
		payments:        store.Collection(docstore.Payments),
		defaultCurrency: defaultCurrency,
		clock:           time.Now,
	}
}

// ToMinor converts a price in major units to minor units, rounding half away from zero.
func ToMinor(price float64) (int64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, ErrInvalidAmount
	}
	amount := int64(math.Round(price * 100))
	if amount < 1 {
		return 0, ErrInvalidAmount
	}
	return amount, nil
}

func (s *Service) CreateIntent(ctx context.Context, price float64, currency string) (Intent, error) {
	if s.processor == nil {
		return Intent{}, ErrNotConfigured
	}
	amount, err := ToMinor(price)
	if err != nil {
		return Intent{}, err
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = s.defaultCurrency
	}

	secret, err := s.processor.CreatePaymentIntent(ctx, amount, currency)
	if err != nil {
		return Intent{}, err
	}
	return Intent{ClientSecret: secret, AmountMinor: amount, Currency: currency}, nil
}

// Record stores a payment document, stamping date when the client did not.
func (s *Service) Record(ctx context.Context, doc docstore.Document) (docstore.InsertResult, error) {
	out := make(docstore.Document, len(doc)+1)
	for k, v := range doc {
		if k == "_id" {
			continue
		}
		out[k] = v
	}
	if _, ok := out["date"]; !ok {
		out["date"] = s.clock().UTC().Format(time.RFC3339)
	}
	return s.payments.InsertOne(ctx, out)
}

// History returns the payments recorded for email.
func (s *Service) History(ctx context.Context, email string) ([]docstore.Document, error) {
	return s.payments.Find(ctx, docstore.ByEmail(email))
}
