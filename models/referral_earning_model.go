package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReferralEarning records one referral credit. CheckoutSessionID is unique so
// a redelivered checkout-completed event cannot produce a second credit.
type ReferralEarning struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ReferrerID     uuid.UUID `gorm:"type:uuid;not null;index" json:"referrer_id"`
	ReferredUserID uuid.UUID `gorm:"type:uuid;not null" json:"referred_user_id"`

	CheckoutSessionID string          `gorm:"size:255;not null;unique" json:"checkout_session_id"`
	Amount            decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`

	Referrer     User `gorm:"foreignkey:ReferrerID" json:"-"`
	ReferredUser User `gorm:"foreignkey:ReferredUserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
