package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/models"
	"github.com/mentorlink/mentorlink/payments"
	"gorm.io/gorm"
)

var ErrAccountNotProvisioned = errors.New("payment account has not been provisioned")

type AccountService struct {
	db       *gorm.DB
	provider payments.Provider
}

func NewAccountService(db *gorm.DB, provider payments.Provider) *AccountService {
	return &AccountService{db: db, provider: provider}
}

// Provision is idempotent: an existing account for (user, purpose) is returned
// as-is once it carries a provider account id. The local placeholder is
// created before the provider call; if that call fails the placeholder's id
// stays empty and a retry re-provisions.
func (s *AccountService) Provision(user *models.User, purpose string) (*models.PaymentAccount, error) {
	var account models.PaymentAccount
	err := s.db.Where("user_id = ? AND purpose = ?", user.ID, purpose).First(&account).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		account = models.PaymentAccount{UserID: user.ID, Purpose: purpose, IsActive: true}
		if createErr := s.db.Create(&account).Error; createErr != nil {
			// Lost a concurrent first-touch race on the unique index.
			if retryErr := s.db.Where("user_id = ? AND purpose = ?", user.ID, purpose).First(&account).Error; retryErr != nil {
				return nil, createErr
			}
		}
	}

	if account.StripeAccountID != "" {
		return &account, nil
	}

	accountID, err := s.provider.CreateAccount(user.Email)
	if err != nil {
		return nil, fmt.Errorf("provider account creation failed: %w", err)
	}

	if err := s.db.Model(&models.PaymentAccount{}).Where("id = ?", account.ID).
		Update("stripe_account_id", accountID).Error; err != nil {
		return nil, err
	}
	account.StripeAccountID = accountID
	return &account, nil
}

// SyncOnboardingStatus refreshes the local capability flags from the provider.
// Safe to call repeatedly; it must run before any payout-eligibility check.
func (s *AccountService) SyncOnboardingStatus(account *models.PaymentAccount) error {
	if account.StripeAccountID == "" {
		return nil
	}

	status, err := s.provider.RetrieveAccount(account.StripeAccountID)
	if err != nil {
		return err
	}

	onboarding := status.DetailsSubmitted && status.PayoutsEnabled
	setup := status.ChargesEnabled
	if onboarding == account.OnboardingComplete && setup == account.SetupComplete {
		return nil
	}

	if err := s.db.Model(&models.PaymentAccount{}).Where("id = ?", account.ID).
		Updates(map[string]interface{}{
			"onboarding_complete": onboarding,
			"setup_complete":      setup,
		}).Error; err != nil {
		return err
	}
	account.OnboardingComplete = onboarding
	account.SetupComplete = setup
	return nil
}

// SyncedAccount loads the account for (user, purpose) and refreshes its flags
// in one step. This is the check callers run before money-moving actions.
func (s *AccountService) SyncedAccount(userID uuid.UUID, purpose string) (*models.PaymentAccount, error) {
	var account models.PaymentAccount
	if err := s.db.Where("user_id = ? AND purpose = ?", userID, purpose).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotProvisioned
		}
		return nil, err
	}
	if err := s.SyncOnboardingStatus(&account); err != nil {
		return nil, err
	}
	return &account, nil
}

// OnboardingLink returns a fresh hosted-onboarding URL for the account.
func (s *AccountService) OnboardingLink(account *models.PaymentAccount, refreshURL, returnURL string) (string, error) {
	if account.StripeAccountID == "" {
		return "", ErrAccountNotProvisioned
	}
	return s.provider.CreateAccountLink(account.StripeAccountID, refreshURL, returnURL)
}

// SyncByStripeID refreshes flags for the local account bound to a provider
// account id; used by the account.updated webhook.
func (s *AccountService) SyncByStripeID(stripeAccountID string, status payments.AccountStatus) error {
	var account models.PaymentAccount
	if err := s.db.Where("stripe_account_id = ?", stripeAccountID).First(&account).Error; err != nil {
		return err
	}
	return s.db.Model(&models.PaymentAccount{}).Where("id = ?", account.ID).
		Updates(map[string]interface{}{
			"onboarding_complete": status.DetailsSubmitted && status.PayoutsEnabled,
			"setup_complete":      status.ChargesEnabled,
		}).Error
}
