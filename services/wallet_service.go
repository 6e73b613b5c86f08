package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrNonPositiveAmount = errors.New("amount must be positive")
)

const DefaultCurrency = "USD"

// WalletService owns every wallet balance mutation. Both mutation methods run
// inside the caller's transaction so the balance update and the transaction-log
// append commit or roll back together with whatever settlement triggered them.
type WalletService struct{}

func NewWalletService() *WalletService {
	return &WalletService{}
}

// GetOrCreate returns the wallet for (ownerID, purpose), creating it on first
// touch. Two concurrent first touches race on the unique (owner, purpose)
// index; the loser re-reads the winner's row.
func (s *WalletService) GetOrCreate(tx *gorm.DB, ownerID uuid.UUID, purpose string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := tx.Where("owner_id = ? AND purpose = ?", ownerID, purpose).First(&wallet).Error
	if err == nil {
		return &wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	wallet = models.Wallet{
		OwnerID:  ownerID,
		Purpose:  purpose,
		Balance:  decimal.Zero,
		Currency: DefaultCurrency,
	}
	if createErr := tx.Create(&wallet).Error; createErr != nil {
		if retryErr := tx.Where("owner_id = ? AND purpose = ?", ownerID, purpose).First(&wallet).Error; retryErr == nil {
			return &wallet, nil
		}
		return nil, createErr
	}
	return &wallet, nil
}

// lockForMutation takes the row lock that serializes concurrent credits and
// debits against the same wallet. The row is created first if missing so there
// is something to lock.
func (s *WalletService) lockForMutation(tx *gorm.DB, ownerID uuid.UUID, purpose string) (*models.Wallet, error) {
	if _, err := s.GetOrCreate(tx, ownerID, purpose); err != nil {
		return nil, err
	}
	var wallet models.Wallet
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner_id = ? AND purpose = ?", ownerID, purpose).
		First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (s *WalletService) AddFunds(tx *gorm.DB, ownerID uuid.UUID, purpose string, amount decimal.Decimal, kind, sourceID, description string) (*models.Wallet, error) {
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}

	wallet, err := s.lockForMutation(tx, ownerID, purpose)
	if err != nil {
		return nil, err
	}

	wallet.Balance = wallet.Balance.Add(amount)
	if err := tx.Model(&models.Wallet{}).Where("id = ?", wallet.ID).
		Update("balance", wallet.Balance).Error; err != nil {
		return nil, err
	}

	if err := s.appendTransaction(tx, wallet, amount, kind, sourceID, description); err != nil {
		return nil, err
	}
	return wallet, nil
}

func (s *WalletService) WithdrawFunds(tx *gorm.DB, ownerID uuid.UUID, purpose string, amount decimal.Decimal, sourceID, description string) (*models.Wallet, error) {
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}

	wallet, err := s.lockForMutation(tx, ownerID, purpose)
	if err != nil {
		return nil, err
	}
	if wallet.Balance.LessThan(amount) {
		return nil, ErrInsufficientFunds
	}

	wallet.Balance = wallet.Balance.Sub(amount)
	if err := tx.Model(&models.Wallet{}).Where("id = ?", wallet.ID).
		Update("balance", wallet.Balance).Error; err != nil {
		return nil, err
	}

	if err := s.appendTransaction(tx, wallet, amount.Neg(), models.TxnKindPayoutDebit, sourceID, description); err != nil {
		return nil, err
	}
	return wallet, nil
}

func (s *WalletService) appendTransaction(tx *gorm.DB, wallet *models.Wallet, amount decimal.Decimal, kind, sourceID, description string) error {
	txn := models.WalletTransaction{
		WalletID:       wallet.ID,
		Amount:         amount,
		Kind:           kind,
		CurrentBalance: wallet.Balance,
		Description:    description,
	}
	if sourceID != "" {
		txn.SourceID = &sourceID
	}
	return tx.Create(&txn).Error
}

// Transactions returns the wallet's ledger, newest first.
func (s *WalletService) Transactions(db *gorm.DB, ownerID uuid.UUID, purpose string, limit, offset int) ([]models.WalletTransaction, error) {
	if limit <= 0 {
		limit = 50
	}

	var wallet models.Wallet
	err := db.Where("owner_id = ? AND purpose = ?", ownerID, purpose).First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []models.WalletTransaction{}, nil
		}
		return nil, err
	}

	var txns []models.WalletTransaction
	err = db.Where("wallet_id = ?", wallet.ID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}
