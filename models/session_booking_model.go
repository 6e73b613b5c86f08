package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
	BookingStatusRejected  = "rejected"
	BookingStatusNoShow    = "no_show"
)

const (
	PaymentStatusHolding  = "holding"
	PaymentStatusReleased = "released"
	PaymentStatusRefunded = "refunded"
)

// SessionBooking is the financial subject of the settlement coordinator.
// The fee split (PlatformFee + MentorPayout == Amount) is computed once at
// creation and never recomputed. PaymentStatus leaves `holding` exactly once;
// released and refunded are terminal.
type SessionBooking struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	LearnerID uuid.UUID `gorm:"type:uuid;not null" json:"learner_id"`
	MentorID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bookings_mentor_slot" json:"mentor_id"`

	Date      time.Time `gorm:"type:date;not null;uniqueIndex:idx_bookings_mentor_slot" json:"date"`
	StartTime time.Time `gorm:"not null;uniqueIndex:idx_bookings_mentor_slot" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`

	Amount       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	PlatformFee  decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"platform_fee"`
	MentorPayout decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"mentor_payout"`
	Currency     string          `gorm:"size:3;not null;default:'USD'" json:"currency"`

	StripePaymentIntentID *string `gorm:"size:255;index" json:"stripe_payment_intent_id"`

	Status        string `gorm:"size:20;not null;default:'pending'" json:"status"`
	PaymentStatus string `gorm:"size:20;not null;default:'holding'" json:"payment_status"`

	IsPaymentCaptured bool       `gorm:"default:false" json:"is_payment_captured"`
	CapturedAt        *time.Time `json:"captured_at"`

	MeetingLink *string `gorm:"size:255" json:"meeting_link"`
	TopicFocus  *string `gorm:"size:255" json:"topic_focus"`

	Learner User `gorm:"foreignkey:LearnerID" json:"-"`
	Mentor  User `gorm:"foreignkey:MentorID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *SessionBooking) IsCompletedAndPaid() bool {
	return b.Status == BookingStatusCompleted && b.PaymentStatus == PaymentStatusReleased
}
