package models

import (
	"time"

	"github.com/google/uuid"
)

type PremiumSubscription struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;unique" json:"user_id"`
	IsActive bool      `gorm:"default:false" json:"is_active"`

	StripeCustomerID        *string `gorm:"size:255" json:"-"`
	StripeSubscriptionID    *string `gorm:"size:255" json:"-"`
	StripeCheckoutSessionID *string `gorm:"size:255;index" json:"-"`

	User User `gorm:"foreignkey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
