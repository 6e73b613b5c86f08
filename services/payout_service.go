package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/models"
	"github.com/mentorlink/mentorlink/payments"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PayoutService drains wallet balances to the owner's external account.
type PayoutService struct {
	db       *gorm.DB
	provider payments.Provider
	wallets  *WalletService
	accounts *AccountService
}

func NewPayoutService(db *gorm.DB, provider payments.Provider, wallets *WalletService, accounts *AccountService) *PayoutService {
	return &PayoutService{db: db, provider: provider, wallets: wallets, accounts: accounts}
}

// Withdraw debits the wallet and transfers the funds to the user's connected
// account. The debit happens first, inside the transaction: an insufficient
// balance never reaches the provider, and a failed transfer rolls the debit
// back so the wallet is left untouched.
func (s *PayoutService) Withdraw(userID uuid.UUID, accountPurpose, walletPurpose string, amount decimal.Decimal) (*models.PayoutRequest, error) {
	account, err := s.accounts.SyncedAccount(userID, accountPurpose)
	if err != nil {
		return nil, err
	}
	if !account.OnboardingComplete {
		return nil, ErrMentorNotOnboarded
	}

	var request models.PayoutRequest
	err = s.db.Transaction(func(tx *gorm.DB) error {
		wallet, err := s.wallets.WithdrawFunds(tx, userID, walletPurpose, amount, "",
			fmt.Sprintf("Withdrawal to connected account %s", account.StripeAccountID))
		if err != nil {
			return err
		}

		transferID, err := s.provider.CreateTransfer(
			payments.Cents(amount),
			wallet.Currency,
			account.StripeAccountID,
			fmt.Sprintf("Wallet withdrawal for user %s", userID),
		)
		if err != nil {
			return fmt.Errorf("provider transfer failed: %w", err)
		}

		now := time.Now()
		request = models.PayoutRequest{
			UserID:           userID,
			Amount:           amount,
			Status:           models.PayoutStatusPaid,
			StripeTransferID: &transferID,
			RequestedAt:      now,
			ProcessedAt:      &now,
		}
		return tx.Create(&request).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}
