package payments

import (
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// StripeProvider implements Provider against the Stripe API. It holds its own
// client instance instead of configuring the package-level stripe key, so two
// providers with different keys can coexist and tests never touch globals.
type StripeProvider struct {
	api           *client.API
	webhookSecret string
}

func NewStripeProvider(secretKey, webhookSecret string) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProvider{api: api, webhookSecret: webhookSecret}
}

func (p *StripeProvider) CreatePaymentIntent(amountCents, applicationFeeCents int64, currency, destinationAccountID string, metadata map[string]string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:               stripe.Int64(amountCents),
		Currency:             stripe.String(currency),
		CaptureMethod:        stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		PaymentMethodTypes:   stripe.StringSlice([]string{"card"}),
		ApplicationFeeAmount: stripe.Int64(applicationFeeCents),
		TransferData: &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(destinationAccountID),
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	intent, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create payment intent: %w", err)
	}
	return &PaymentIntent{ID: intent.ID, ClientSecret: intent.ClientSecret, Status: string(intent.Status), AmountCents: intent.Amount}, nil
}

func (p *StripeProvider) CapturePaymentIntent(id string, amountCents int64) error {
	params := &stripe.PaymentIntentCaptureParams{
		AmountToCapture: stripe.Int64(amountCents),
	}
	if _, err := p.api.PaymentIntents.Capture(id, params); err != nil {
		return fmt.Errorf("stripe: capture payment intent %s: %w", id, err)
	}
	return nil
}

func (p *StripeProvider) CancelPaymentIntent(id string) error {
	if _, err := p.api.PaymentIntents.Cancel(id, nil); err != nil {
		return fmt.Errorf("stripe: cancel payment intent %s: %w", id, err)
	}
	return nil
}

func (p *StripeProvider) RetrievePaymentIntent(id string) (*PaymentIntent, error) {
	intent, err := p.api.PaymentIntents.Get(id, nil)
	if err != nil {
		return nil, fmt.Errorf("stripe: retrieve payment intent %s: %w", id, err)
	}
	return &PaymentIntent{ID: intent.ID, ClientSecret: intent.ClientSecret, Status: string(intent.Status), AmountCents: intent.Amount}, nil
}

func (p *StripeProvider) CreateAccount(email string) (string, error) {
	params := &stripe.AccountParams{
		Type:         stripe.String(string(stripe.AccountTypeExpress)),
		Email:        stripe.String(email),
		BusinessType: stripe.String("individual"),
		Capabilities: &stripe.AccountCapabilitiesParams{
			Transfers: &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
	}
	account, err := p.api.Accounts.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: create account: %w", err)
	}
	return account.ID, nil
}

func (p *StripeProvider) CreateAccountLink(accountID, refreshURL, returnURL string) (string, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String("account_onboarding"),
	}
	link, err := p.api.AccountLinks.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: create account link for %s: %w", accountID, err)
	}
	return link.URL, nil
}

func (p *StripeProvider) RetrieveAccount(accountID string) (*AccountStatus, error) {
	account, err := p.api.Accounts.GetByID(accountID, nil)
	if err != nil {
		return nil, fmt.Errorf("stripe: retrieve account %s: %w", accountID, err)
	}
	return &AccountStatus{
		DetailsSubmitted: account.DetailsSubmitted,
		PayoutsEnabled:   account.PayoutsEnabled,
		ChargesEnabled:   account.ChargesEnabled,
	}, nil
}

func (p *StripeProvider) CreateTransfer(amountCents int64, currency, destinationAccountID, description string) (string, error) {
	params := &stripe.TransferParams{
		Amount:      stripe.Int64(amountCents),
		Currency:    stripe.String(currency),
		Destination: stripe.String(destinationAccountID),
		Description: stripe.String(description),
	}
	transfer, err := p.api.Transfers.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: create transfer: %w", err)
	}
	return transfer.ID, nil
}

func (p *StripeProvider) CreateCheckoutSession(amountCents int64, currency, customerEmail, successURL, cancelURL string, metadata map[string]string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		CustomerEmail:      stripe.String(customerEmail),
		SuccessURL:         stripe.String(successURL),
		CancelURL:          stripe.String(cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(amountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("MentorLink Premium"),
					},
				},
			},
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	session, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}
	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

func (p *StripeProvider) ConstructWebhookEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, p.webhookSecret)
}
