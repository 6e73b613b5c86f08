package services

import (
	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/payments"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Registry wires the services around one DB handle, one payment provider, and
// the platform (admin) user whose wallets receive fees.
type Registry struct {
	DB            *gorm.DB
	Provider      payments.Provider
	Wallets       *WalletService
	Accounts      *AccountService
	Bookings      *BookingService
	Settlement    *SettlementService
	Subscriptions *SubscriptionService
	Payouts       *PayoutService
}

func NewRegistry(db *gorm.DB, provider payments.Provider, platformUserID uuid.UUID, premiumPrice decimal.Decimal) *Registry {
	wallets := NewWalletService()
	accounts := NewAccountService(db, provider)
	return &Registry{
		DB:            db,
		Provider:      provider,
		Wallets:       wallets,
		Accounts:      accounts,
		Bookings:      NewBookingService(db, provider, accounts),
		Settlement:    NewSettlementService(db, provider, wallets, platformUserID),
		Subscriptions: NewSubscriptionService(db, provider, wallets, platformUserID, premiumPrice),
		Payouts:       NewPayoutService(db, provider, wallets, accounts),
	}
}
