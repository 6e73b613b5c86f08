package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AccountPurposeMentor  = "mentor"
	AccountPurposeLearner = "learner"
	AccountPurposeAdmin   = "admin"
)

// PaymentAccount binds a user to an external payout account. StripeAccountID
// stays empty until provisioning at the provider succeeds, so a failed
// provisioning attempt can be retried without leaving a half-created binding.
type PaymentAccount struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_payment_accounts_user_purpose" json:"user_id"`
	Purpose string    `gorm:"size:20;not null;uniqueIndex:idx_payment_accounts_user_purpose" json:"purpose"`

	StripeAccountID    string `gorm:"size:255;index" json:"stripe_account_id"`
	OnboardingComplete bool   `gorm:"default:false" json:"onboarding_complete"`
	SetupComplete      bool   `gorm:"default:false" json:"setup_complete"`
	IsActive           bool   `gorm:"default:true" json:"is_active"`

	User User `gorm:"foreignkey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
