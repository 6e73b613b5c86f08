package payments

import (
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
)

type PaymentIntent struct {
	ID string
	// ClientSecret is what the client-side SDK needs to confirm the intent.
	// Stripe only returns it on create; retrievals may leave it empty.
	ClientSecret string
	Status       string
	AmountCents  int64
}

type AccountStatus struct {
	DetailsSubmitted bool
	PayoutsEnabled   bool
	ChargesEnabled   bool
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Provider is the payment-gateway surface the services depend on. The
// settlement coordinator receives a Provider at construction time so tests can
// inject a fake; nothing in the services imports Stripe directly.
type Provider interface {
	CreatePaymentIntent(amountCents, applicationFeeCents int64, currency, destinationAccountID string, metadata map[string]string) (*PaymentIntent, error)
	CapturePaymentIntent(id string, amountCents int64) error
	CancelPaymentIntent(id string) error
	RetrievePaymentIntent(id string) (*PaymentIntent, error)

	CreateAccount(email string) (string, error)
	CreateAccountLink(accountID, refreshURL, returnURL string) (string, error)
	RetrieveAccount(accountID string) (*AccountStatus, error)

	CreateTransfer(amountCents int64, currency, destinationAccountID, description string) (string, error)

	CreateCheckoutSession(amountCents int64, currency, customerEmail, successURL, cancelURL string, metadata map[string]string) (*CheckoutSession, error)
	ConstructWebhookEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

// Cents converts a decimal major-unit amount to the provider's minor units.
// This is the only place the decimal and cents representations meet.
func Cents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
