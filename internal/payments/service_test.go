package payments

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"classroom-api/internal/docstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcessor struct {
	amount   int64
	currency string
	err      error
}

func (f *fakeProcessor) Name() string { return "fake" }

func (f *fakeProcessor) CreatePaymentIntent(_ context.Context, amountMinor int64, currency string) (string, error) {
	f.amount, f.currency = amountMinor, currency
	if f.err != nil {
		return "", f.err
	}
	return "pi_123_secret_abc", nil
}

func TestToMinor(t *testing.T) {
	cases := []struct {
		price float64
		want  int64
		err   error
	}{
		{19.99, 1999, nil},
		{0.1 + 0.2, 30, nil},
		{100, 10000, nil},
		{0.005, 1, nil},
		{0.004, 0, ErrInvalidAmount},
		{0, 0, ErrInvalidAmount},
		{-5, 0, ErrInvalidAmount},
		{math.NaN(), 0, ErrInvalidAmount},
		{math.Inf(1), 0, ErrInvalidAmount},
	}
	for _, tc := range cases {
		got, err := ToMinor(tc.price)
		assert.ErrorIs(t, err, tc.err, "price %v", tc.price)
		assert.Equal(t, tc.want, got, "price %v", tc.price)
	}
}

func TestCreateIntent(t *testing.T) {
	proc := &fakeProcessor{}
	svc := NewService(proc, docstore.NewMemoryStore(), "usd")

	intent, err := svc.CreateIntent(context.Background(), 49.5, "")
	require.NoError(t, err)
	assert.Equal(t, "pi_123_secret_abc", intent.ClientSecret)
	assert.Equal(t, int64(4950), proc.amount)
	assert.Equal(t, "usd", proc.currency)

	_, err = svc.CreateIntent(context.Background(), 10, " EUR ")
	require.NoError(t, err)
	assert.Equal(t, "eur", proc.currency)
}

func TestCreateIntent_Errors(t *testing.T) {
	_, err := NewService(nil, docstore.NewMemoryStore(), "").CreateIntent(context.Background(), 10, "")
	assert.ErrorIs(t, err, ErrNotConfigured)

	proc := &fakeProcessor{err: errors.New("card_declined")}
	svc := NewService(proc, docstore.NewMemoryStore(), "")
	_, err = svc.CreateIntent(context.Background(), 10, "")
	assert.EqualError(t, err, "card_declined")

	_, err = svc.CreateIntent(context.Background(), -1, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestRecordAndHistory(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil, docstore.NewMemoryStore(), "")
	svc.clock = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	_, err := svc.Record(ctx, docstore.Document{"email": "a@x.com", "price": 10.0, "transactionId": "pi_1"})
	require.NoError(t, err)
	_, err = svc.Record(ctx, docstore.Document{"email": "a@x.com", "price": 5.0, "date": "yesterday"})
	require.NoError(t, err)
	_, err = svc.Record(ctx, docstore.Document{"email": "b@x.com", "price": 7.0})
	require.NoError(t, err)

	mine, err := svc.History(ctx, "a@x.com")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "2024-01-02T03:04:05Z", mine[0]["date"])
	assert.Equal(t, "yesterday", mine[1]["date"])
}
