package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PayoutStatusPending  = "pending"
	PayoutStatusPaid     = "paid"
	PayoutStatusRejected = "rejected"
)

type PayoutRequest struct {
	ID     uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Status string          `gorm:"size:20;not null;default:'pending'" json:"status"`

	StripeTransferID *string `gorm:"size:255" json:"stripe_transfer_id"`
	AdminNotes       *string `gorm:"type:text" json:"admin_notes"`

	User User `gorm:"foreignkey:UserID" json:"-"`

	RequestedAt time.Time  `gorm:"not null" json:"requested_at"`
	ProcessedAt *time.Time `json:"processed_at"`
}
