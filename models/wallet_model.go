package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet purposes. A user holds at most one wallet per purpose.
const (
	WalletPurposeEarnings     = "earnings"
	WalletPurposeBonus        = "bonus"
	WalletPurposePlatformFees = "platform_fees"
	WalletPurposeRefunds      = "refunds"
	WalletPurposeRewards      = "rewards"
)

// Wallet balances are mutated only through services.WalletService so that
// every change lands in the transaction log with a post-mutation snapshot.
type Wallet struct {
	ID       uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OwnerID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_wallets_owner_purpose" json:"owner_id"`
	Purpose  string          `gorm:"size:20;not null;uniqueIndex:idx_wallets_owner_purpose" json:"purpose"`
	Balance  decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"balance"`
	Currency string          `gorm:"size:3;not null;default:'USD'" json:"currency"`

	Owner User `gorm:"foreignkey:OwnerID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
