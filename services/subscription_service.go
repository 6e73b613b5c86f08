package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/models"
	"github.com/mentorlink/mentorlink/payments"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReferralShareRate is the referrer's cut of a premium purchase; the platform
// wallet receives the remainder.
var ReferralShareRate = decimal.RequireFromString("0.30")

type SubscriptionService struct {
	db             *gorm.DB
	provider       payments.Provider
	wallets        *WalletService
	platformUserID uuid.UUID
	premiumPrice   decimal.Decimal
}

func NewSubscriptionService(db *gorm.DB, provider payments.Provider, wallets *WalletService, platformUserID uuid.UUID, premiumPrice decimal.Decimal) *SubscriptionService {
	return &SubscriptionService{
		db:             db,
		provider:       provider,
		wallets:        wallets,
		platformUserID: platformUserID,
		premiumPrice:   premiumPrice,
	}
}

// CreateCheckout opens a provider checkout session for the premium price and
// parks an inactive subscription row holding the session id. Activation only
// ever happens through SettleCheckout.
func (s *SubscriptionService) CreateCheckout(user *models.User, successURL, cancelURL string) (string, error) {
	session, err := s.provider.CreateCheckoutSession(
		payments.Cents(s.premiumPrice),
		DefaultCurrency,
		user.Email,
		successURL,
		cancelURL,
		map[string]string{
			"user_id": user.ID.String(),
			"purpose": "premium_subscription",
		},
	)
	if err != nil {
		return "", fmt.Errorf("checkout session creation failed: %w", err)
	}

	var sub models.PremiumSubscription
	err = s.db.Where("user_id = ?", user.ID).First(&sub).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", err
		}
		sub = models.PremiumSubscription{UserID: user.ID, StripeCheckoutSessionID: &session.ID}
		if err := s.db.Create(&sub).Error; err != nil {
			return "", err
		}
		return session.URL, nil
	}

	if err := s.db.Model(&models.PremiumSubscription{}).Where("id = ?", sub.ID).
		Update("stripe_checkout_session_id", session.ID).Error; err != nil {
		return "", err
	}
	return session.URL, nil
}

// SettleCheckout applies the premium settlement for one checkout session:
// activate the subscription, credit the referrer's share if a valid referral
// applies, credit the platform with the remainder. The whole settlement is one
// transaction keyed by the session id; redelivery of the same session is a
// no-op detected through the transaction log.
func (s *SubscriptionService) SettleCheckout(sessionID string, userID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var applied models.WalletTransaction
		err := tx.Where("source_id = ?", sessionID).First(&applied).Error
		if err == nil {
			return nil // this checkout session has already been settled
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var sub models.PremiumSubscription
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).First(&sub).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			sub = models.PremiumSubscription{UserID: userID}
			if err := tx.Create(&sub).Error; err != nil {
				return err
			}
		}

		// Re-check under the subscription row lock: a concurrent settlement of
		// the same session (distinct provider event ids) may have committed
		// while we waited, and the credits must not be applied twice.
		err = tx.Where("source_id = ?", sessionID).First(&applied).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return err
		}

		platformShare := s.premiumPrice

		if user.ReferredByCode != nil && *user.ReferredByCode != "" {
			referrer, err := s.activeReferrer(tx, *user.ReferredByCode, userID)
			if err != nil {
				return err
			}
			if referrer != nil {
				share := s.premiumPrice.Mul(ReferralShareRate).Round(2)
				if _, err := s.wallets.AddFunds(tx, referrer.ID, models.WalletPurposeEarnings,
					share, models.TxnKindReferralCredit, sessionID,
					fmt.Sprintf("Referral reward for %s going premium", user.Email)); err != nil {
					return err
				}
				earning := models.ReferralEarning{
					ReferrerID:        referrer.ID,
					ReferredUserID:    userID,
					CheckoutSessionID: sessionID,
					Amount:            share,
				}
				if err := tx.Create(&earning).Error; err != nil {
					return err
				}
				platformShare = s.premiumPrice.Sub(share)
			}
		}

		if _, err := s.wallets.AddFunds(tx, s.platformUserID, models.WalletPurposePlatformFees,
			platformShare, models.TxnKindSubscriptionCredit, sessionID,
			fmt.Sprintf("Premium subscription payment from %s", user.Email)); err != nil {
			return err
		}

		return tx.Model(&models.PremiumSubscription{}).Where("id = ?", sub.ID).
			Updates(map[string]interface{}{
				"is_active":                  true,
				"stripe_checkout_session_id": sessionID,
			}).Error
	})
}

// activeReferrer resolves a referral code to its owner if the code is valid,
// not self-referential, and the owner's own subscription is active.
func (s *SubscriptionService) activeReferrer(tx *gorm.DB, code string, referredUserID uuid.UUID) (*models.User, error) {
	var referrer models.User
	err := tx.Where("referral_code = ?", code).First(&referrer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if referrer.ID == referredUserID {
		return nil, nil
	}

	var referrerSub models.PremiumSubscription
	err = tx.Where("user_id = ? AND is_active = ?", referrer.ID, true).First(&referrerSub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &referrer, nil
}

// Status reports whether the user's premium subscription is active.
func (s *SubscriptionService) Status(userID uuid.UUID) (bool, error) {
	var sub models.PremiumSubscription
	err := s.db.Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return sub.IsActive, nil
}
