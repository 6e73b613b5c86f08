package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TxnKindReferralCredit     = "referral_credit"
	TxnKindSessionFeeCredit   = "session_fee_credit"
	TxnKindPlatformFeeCredit  = "platform_fee_credit"
	TxnKindSubscriptionCredit = "subscription_credit"
	TxnKindPayoutDebit        = "payout_debit"
)

// WalletTransaction is an append-only record of one balance mutation.
// Amount is signed: positive for credits, negative for debits.
// CurrentBalance is the wallet balance immediately after this transaction.
// SourceID carries the upstream idempotency key (payment-intent or
// checkout-session id) so duplicate settlement attempts can be detected.
type WalletTransaction struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	WalletID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"wallet_id"`
	Amount         decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Kind           string          `gorm:"size:30;not null" json:"kind"`
	CurrentBalance decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"current_balance"`
	SourceID       *string         `gorm:"size:255;index" json:"source_id"`
	Description    string          `gorm:"type:text" json:"description"`

	Wallet Wallet `gorm:"foreignkey:WalletID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
