package handlers

import (
	"github.com/mentorlink/mentorlink/payments"
	"github.com/stripe/stripe-go/v79"
)

func accountStatusFromStripe(account *stripe.Account) payments.AccountStatus {
	return payments.AccountStatus{
		DetailsSubmitted: account.DetailsSubmitted,
		PayoutsEnabled:   account.PayoutsEnabled,
		ChargesEnabled:   account.ChargesEnabled,
	}
}
