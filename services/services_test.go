package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mentorlink/mentorlink/payments"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB opens a GORM handle over go-sqlmock with the same session options
// the application uses, so the statement stream the tests expect matches what
// production emits.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction:   true,
		DisableNestedTransaction: true,
		Logger:                   logger.Discard,
	})
	require.NoError(t, err)

	return db, mock
}

// fakeProvider records every call so tests can assert exactly how often the
// gateway was touched.
type fakeProvider struct {
	createdIntents   []string
	capturedIntents  []string
	cancelledIntents []string
	transfers        []int64

	intentStatus string
	captureErr   error
	cancelErr    error
	transferErr  error
}

func (f *fakeProvider) CreatePaymentIntent(amountCents, applicationFeeCents int64, currency, destinationAccountID string, metadata map[string]string) (*payments.PaymentIntent, error) {
	id := "pi_fake_1"
	f.createdIntents = append(f.createdIntents, id)
	return &payments.PaymentIntent{ID: id, ClientSecret: id + "_secret", Status: "requires_capture", AmountCents: amountCents}, nil
}

func (f *fakeProvider) CapturePaymentIntent(id string, amountCents int64) error {
	if f.captureErr != nil {
		return f.captureErr
	}
	f.capturedIntents = append(f.capturedIntents, id)
	return nil
}

func (f *fakeProvider) CancelPaymentIntent(id string) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelledIntents = append(f.cancelledIntents, id)
	return nil
}

func (f *fakeProvider) RetrievePaymentIntent(id string) (*payments.PaymentIntent, error) {
	status := f.intentStatus
	if status == "" {
		status = "requires_capture"
	}
	return &payments.PaymentIntent{ID: id, Status: status}, nil
}

func (f *fakeProvider) CreateAccount(email string) (string, error) {
	return "acct_fake_1", nil
}

func (f *fakeProvider) CreateAccountLink(accountID, refreshURL, returnURL string) (string, error) {
	return "https://connect.stripe.test/onboard", nil
}

func (f *fakeProvider) RetrieveAccount(accountID string) (*payments.AccountStatus, error) {
	return &payments.AccountStatus{DetailsSubmitted: true, PayoutsEnabled: true, ChargesEnabled: true}, nil
}

func (f *fakeProvider) CreateTransfer(amountCents int64, currency, destinationAccountID, description string) (string, error) {
	if f.transferErr != nil {
		return "", f.transferErr
	}
	f.transfers = append(f.transfers, amountCents)
	return "tr_fake_1", nil
}

func (f *fakeProvider) CreateCheckoutSession(amountCents int64, currency, customerEmail, successURL, cancelURL string, metadata map[string]string) (*payments.CheckoutSession, error) {
	return &payments.CheckoutSession{ID: "cs_fake_1", URL: "https://checkout.stripe.test/cs_fake_1"}, nil
}

func (f *fakeProvider) ConstructWebhookEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return stripe.Event{}, nil
}
