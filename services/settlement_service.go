package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/models"
	"github.com/mentorlink/mentorlink/notifications"
	"github.com/mentorlink/mentorlink/payments"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNoPaymentIntent   = errors.New("booking has no payment intent")
	ErrFeeSplitMismatch  = errors.New("booking fee split does not add up to its amount")
	ErrBookingNotHolding = errors.New("booking payment is not in holding state")
)

// SettlementService moves a booking's held funds to their terminal state and
// applies the internal fee split exactly once. Three entry points converge
// here: the payment_intent.succeeded webhook, the explicit capture API, and
// the admin complete-and-capture action. Correctness under any interleaving
// rests on two things only: the booking row lock, and the
// "payment_status != holding means no-op" guard behind it.
type SettlementService struct {
	db             *gorm.DB
	provider       payments.Provider
	wallets        *WalletService
	platformUserID uuid.UUID
}

func NewSettlementService(db *gorm.DB, provider payments.Provider, wallets *WalletService, platformUserID uuid.UUID) *SettlementService {
	return &SettlementService{db: db, provider: provider, wallets: wallets, platformUserID: platformUserID}
}

// Capture settles through the synchronous path: instructs the provider to
// capture the held funds, then applies the fee split. Calling it on an
// already-settled booking succeeds without further effect.
func (s *SettlementService) Capture(bookingID uuid.UUID) (*models.SessionBooking, error) {
	return s.settle(bookingID, true)
}

// SettleCapturedIntent settles through the webhook path, where the provider
// has already captured the funds upstream; only the internal split is applied.
func (s *SettlementService) SettleCapturedIntent(paymentIntentID string) (*models.SessionBooking, error) {
	var booking models.SessionBooking
	if err := s.db.Where("stripe_payment_intent_id = ?", paymentIntentID).First(&booking).Error; err != nil {
		return nil, err
	}
	return s.settle(booking.ID, false)
}

func (s *SettlementService) settle(bookingID uuid.UUID, captureAtProvider bool) (*models.SessionBooking, error) {
	var booking models.SessionBooking
	settledNow := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&booking, "id = ?", bookingID).Error; err != nil {
			return err
		}

		if booking.PaymentStatus != models.PaymentStatusHolding {
			// Already settled (or refunded). A concurrent caller that waited
			// on the row lock lands here and must not re-apply the credits.
			return nil
		}
		if booking.StripePaymentIntentID == nil || *booking.StripePaymentIntentID == "" {
			return ErrNoPaymentIntent
		}
		if !booking.PlatformFee.Add(booking.MentorPayout).Equal(booking.Amount) {
			return ErrFeeSplitMismatch
		}

		intentID := *booking.StripePaymentIntentID

		if captureAtProvider {
			if err := s.provider.CapturePaymentIntent(intentID, payments.Cents(booking.Amount)); err != nil {
				// Abort everything: the booking stays holding and a retry is safe.
				return err
			}
		}

		now := time.Now()
		if err := tx.Model(&models.SessionBooking{}).Where("id = ?", booking.ID).
			Updates(map[string]interface{}{
				"status":              models.BookingStatusCompleted,
				"payment_status":      models.PaymentStatusReleased,
				"is_payment_captured": true,
				"captured_at":         now,
			}).Error; err != nil {
			return err
		}
		booking.Status = models.BookingStatusCompleted
		booking.PaymentStatus = models.PaymentStatusReleased
		booking.IsPaymentCaptured = true
		booking.CapturedAt = &now

		if _, err := s.wallets.AddFunds(tx, s.platformUserID, models.WalletPurposePlatformFees,
			booking.PlatformFee, models.TxnKindPlatformFeeCredit, intentID,
			fmt.Sprintf("Platform fee for session %s", booking.ID)); err != nil {
			return err
		}
		if _, err := s.wallets.AddFunds(tx, booking.MentorID, models.WalletPurposeEarnings,
			booking.MentorPayout, models.TxnKindSessionFeeCredit, intentID,
			fmt.Sprintf("Mentor payout for session %s", booking.ID)); err != nil {
			return err
		}

		settledNow = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if settledNow {
		go notifications.NotifyAdmins(s.db, fmt.Sprintf(
			"Session %s completed and payment captured: mentor payout %s, platform fee %s.",
			booking.ID, booking.MentorPayout.StringFixed(2), booking.PlatformFee.StringFixed(2)))
	}
	return &booking, nil
}

// Refund terminates a holding booking without releasing funds internally: the
// held intent is cancelled at the provider and payment_status becomes
// refunded. Same lock and no-op discipline as settle.
func (s *SettlementService) Refund(bookingID uuid.UUID, reason string) (*models.SessionBooking, error) {
	var booking models.SessionBooking
	refundedNow := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&booking, "id = ?", bookingID).Error; err != nil {
			return err
		}

		if booking.PaymentStatus == models.PaymentStatusRefunded {
			return nil
		}
		if booking.PaymentStatus != models.PaymentStatusHolding {
			return ErrBookingNotHolding
		}

		if booking.StripePaymentIntentID != nil && *booking.StripePaymentIntentID != "" {
			if err := s.provider.CancelPaymentIntent(*booking.StripePaymentIntentID); err != nil {
				return err
			}
		}

		if err := tx.Model(&models.SessionBooking{}).Where("id = ?", booking.ID).
			Update("payment_status", models.PaymentStatusRefunded).Error; err != nil {
			return err
		}
		booking.PaymentStatus = models.PaymentStatusRefunded
		refundedNow = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if refundedNow {
		go notifications.NotifyAdmins(s.db, fmt.Sprintf("Session %s payment refunded: %s", booking.ID, reason))
	}
	return &booking, nil
}
