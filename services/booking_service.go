package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/models"
	"github.com/mentorlink/mentorlink/payments"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrMentorNotOnboarded = errors.New("mentor has not completed payout onboarding")
	ErrSlotTaken          = errors.New("this time slot is already booked")
	ErrSlotInPast         = errors.New("cannot book sessions in the past")
	ErrInvalidTransition  = errors.New("invalid booking state transition")
	ErrCancelWindow       = errors.New("cannot cancel less than 12 hours before the session")
	ErrNotParticipant     = errors.New("user is not a participant of this booking")
)

// PlatformFeeRate is the single authoritative fee percentage. Both the booking
// creation path and the admin capture path read the split frozen on the
// booking row, so changing this constant never desynchronizes them.
var PlatformFeeRate = decimal.RequireFromString("0.20")

const CancelCutoff = 12 * time.Hour

// SplitFee freezes the fee split for an amount: the platform fee is rounded to
// cents and the mentor payout is the exact remainder, so the two always sum
// back to the amount.
func SplitFee(amount decimal.Decimal) (platformFee, mentorPayout decimal.Decimal) {
	platformFee = amount.Mul(PlatformFeeRate).Round(2)
	mentorPayout = amount.Sub(platformFee)
	return platformFee, mentorPayout
}

type BookingService struct {
	db       *gorm.DB
	provider payments.Provider
	accounts *AccountService
}

func NewBookingService(db *gorm.DB, provider payments.Provider, accounts *AccountService) *BookingService {
	return &BookingService{db: db, provider: provider, accounts: accounts}
}

// Create books an availability slot for a learner. The mentor must have a
// payout-ready account, the fee split is frozen here, and the payment intent
// is created in manual-capture mode inside the same transaction — a provider
// failure rolls the whole booking back. The returned client secret is what the
// learner's client needs to confirm the held payment.
func (s *BookingService) Create(learnerID, slotID uuid.UUID, topicFocus string) (*models.SessionBooking, string, error) {
	var slot models.MentorAvailability
	if err := s.db.First(&slot, "id = ?", slotID).Error; err != nil {
		return nil, "", err
	}
	if slot.StartTime.Before(time.Now()) {
		return nil, "", ErrSlotInPast
	}

	account, err := s.accounts.SyncedAccount(slot.MentorID, models.AccountPurposeMentor)
	if err != nil {
		return nil, "", err
	}
	if !account.OnboardingComplete {
		return nil, "", ErrMentorNotOnboarded
	}

	amount := slot.SessionPrice
	platformFee, mentorPayout := SplitFee(amount)

	var booking models.SessionBooking
	var clientSecret string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&slot, "id = ?", slotID).Error; err != nil {
			return err
		}
		if slot.IsBooked {
			return ErrSlotTaken
		}
		if err := tx.Model(&models.MentorAvailability{}).Where("id = ?", slot.ID).
			Update("is_booked", true).Error; err != nil {
			return err
		}

		booking = models.SessionBooking{
			LearnerID:     learnerID,
			MentorID:      slot.MentorID,
			Date:          slot.Date,
			StartTime:     slot.StartTime,
			EndTime:       slot.EndTime,
			Amount:        amount,
			PlatformFee:   platformFee,
			MentorPayout:  mentorPayout,
			Currency:      slot.Currency,
			Status:        models.BookingStatusPending,
			PaymentStatus: models.PaymentStatusHolding,
		}
		if topicFocus != "" {
			booking.TopicFocus = &topicFocus
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}

		intent, err := s.provider.CreatePaymentIntent(
			payments.Cents(amount),
			payments.Cents(platformFee),
			booking.Currency,
			account.StripeAccountID,
			map[string]string{
				"booking_id": booking.ID.String(),
				"learner_id": learnerID.String(),
				"mentor_id":  slot.MentorID.String(),
			},
		)
		if err != nil {
			return fmt.Errorf("payment intent creation failed: %w", err)
		}

		booking.StripePaymentIntentID = &intent.ID
		clientSecret = intent.ClientSecret
		return tx.Model(&models.SessionBooking{}).Where("id = ?", booking.ID).
			Update("stripe_payment_intent_id", intent.ID).Error
	})
	if err != nil {
		return nil, "", err
	}
	return &booking, clientSecret, nil
}

// Accept is a mentor action, valid only from pending.
func (s *BookingService) Accept(mentorID, bookingID uuid.UUID) (*models.SessionBooking, error) {
	var booking models.SessionBooking
	if err := s.db.First(&booking, "id = ?", bookingID).Error; err != nil {
		return nil, err
	}
	if booking.MentorID != mentorID {
		return nil, ErrNotParticipant
	}
	if booking.Status != models.BookingStatusPending {
		return nil, ErrInvalidTransition
	}

	if err := s.db.Model(&models.SessionBooking{}).Where("id = ?", booking.ID).
		Update("status", models.BookingStatusConfirmed).Error; err != nil {
		return nil, err
	}
	booking.Status = models.BookingStatusConfirmed
	return &booking, nil
}

// Reject is a mentor action, valid only from pending. The held payment is
// voided and the slot reopened in the same transaction as the status change.
func (s *BookingService) Reject(mentorID, bookingID uuid.UUID) (*models.SessionBooking, error) {
	var booking models.SessionBooking
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, "id = ?", bookingID).Error; err != nil {
			return err
		}
		if booking.MentorID != mentorID {
			return ErrNotParticipant
		}
		if booking.Status != models.BookingStatusPending {
			return ErrInvalidTransition
		}
		if err := tx.Model(&models.SessionBooking{}).Where("id = ?", booking.ID).
			Update("status", models.BookingStatusRejected).Error; err != nil {
			return err
		}
		return s.releaseHold(tx, &booking)
	})
	if err != nil {
		return nil, err
	}
	booking.Status = models.BookingStatusRejected
	return &booking, nil
}

// Cancel is a learner action, valid only from confirmed and only while the
// session start is more than 12 hours away. The held payment is voided and the
// slot reopened in the same transaction as the status change.
func (s *BookingService) Cancel(learnerID, bookingID uuid.UUID) (*models.SessionBooking, error) {
	var booking models.SessionBooking
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, "id = ?", bookingID).Error; err != nil {
			return err
		}
		if booking.LearnerID != learnerID {
			return ErrNotParticipant
		}
		if booking.Status != models.BookingStatusConfirmed {
			return ErrInvalidTransition
		}
		if time.Until(booking.StartTime) < CancelCutoff {
			return ErrCancelWindow
		}
		if err := tx.Model(&models.SessionBooking{}).Where("id = ?", booking.ID).
			Update("status", models.BookingStatusCancelled).Error; err != nil {
			return err
		}
		return s.releaseHold(tx, &booking)
	})
	if err != nil {
		return nil, err
	}
	booking.Status = models.BookingStatusCancelled
	return &booking, nil
}

// releaseHold voids an uncaptured hold and reopens the slot. The intent is
// cancelled at the provider before the row leaves `holding`, so a provider
// failure rolls the whole transition back and the booking stays as it was.
func (s *BookingService) releaseHold(tx *gorm.DB, booking *models.SessionBooking) error {
	if booking.PaymentStatus == models.PaymentStatusHolding {
		if booking.StripePaymentIntentID != nil {
			if err := s.provider.CancelPaymentIntent(*booking.StripePaymentIntentID); err != nil {
				return fmt.Errorf("payment intent cancellation failed: %w", err)
			}
		}
		if err := tx.Model(&models.SessionBooking{}).Where("id = ?", booking.ID).
			Update("payment_status", models.PaymentStatusRefunded).Error; err != nil {
			return err
		}
		booking.PaymentStatus = models.PaymentStatusRefunded
	}
	return tx.Model(&models.MentorAvailability{}).
		Where("mentor_id = ? AND date = ? AND start_time = ?", booking.MentorID, booking.Date, booking.StartTime).
		Update("is_booked", false).Error
}

// ForUser lists a user's bookings for their side of the marketplace.
func (s *BookingService) ForUser(userID uuid.UUID, role string) ([]models.SessionBooking, error) {
	var bookings []models.SessionBooking
	q := s.db.Order("created_at DESC")
	switch role {
	case "mentor":
		q = q.Where("mentor_id = ?", userID)
	default:
		q = q.Where("learner_id = ?", userID)
	}
	if err := q.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// Upcoming lists confirmed sessions that have not started yet, either side.
func (s *BookingService) Upcoming(userID uuid.UUID) ([]models.SessionBooking, error) {
	var bookings []models.SessionBooking
	err := s.db.
		Where("(mentor_id = ? OR learner_id = ?)", userID, userID).
		Where("status = ?", models.BookingStatusConfirmed).
		Where("start_time > ?", time.Now()).
		Order("start_time ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}
