package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func subscriptionRow(id, userID uuid.UUID, active bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "user_id", "is_active", "created_at", "updated_at"}).
		AddRow(id.String(), userID.String(), active, now, now)
}

// userRow takes the referral columns as driver values: a string or nil.
func userRow(id uuid.UUID, email string, referralCode, referredByCode interface{}) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "full_name", "email", "role", "referral_code", "referred_by_code", "created_at", "updated_at"}).
		AddRow(id.String(), "Test User", email, "learner", referralCode, referredByCode, now, now)
}

func TestSettleCheckoutSplitsReferralShare(t *testing.T) {
	db, mock := newMockDB(t)
	wallets := NewWalletService()
	platformID := uuid.New()
	subs := NewSubscriptionService(db, &fakeProvider{}, wallets, platformID, decimal.NewFromInt(100))

	userID := uuid.New()
	referrerID := uuid.New()
	subID := uuid.New()
	referrerWalletID := uuid.New()
	platformWalletID := uuid.New()

	mock.ExpectBegin()

	// Redelivery guard: no ledger entry for this checkout session yet.
	mock.ExpectQuery(`SELECT \* FROM "wallet_transactions" WHERE source_id = \$1`).
		WithArgs("cs_123", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "wallet_id", "amount", "kind", "current_balance", "source_id", "created_at"}))

	mock.ExpectQuery(`SELECT \* FROM "premium_subscriptions" WHERE user_id = \$1 (.+)FOR UPDATE`).
		WithArgs(userID, 1).
		WillReturnRows(subscriptionRow(subID, userID, false))
	mock.ExpectQuery(`SELECT \* FROM "wallet_transactions" WHERE source_id = \$1`).
		WithArgs("cs_123", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "wallet_id", "amount", "kind", "current_balance", "source_id", "created_at"}))

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WithArgs(userID, 1).
		WillReturnRows(userRow(userID, "buyer@example.com", "BUYER1", "REF123"))

	// Referral code resolves to a premium referrer.
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE referral_code = \$1`).
		WithArgs("REF123", 1).
		WillReturnRows(userRow(referrerID, "referrer@example.com", "REF123", nil))
	mock.ExpectQuery(`SELECT \* FROM "premium_subscriptions" WHERE user_id = \$1 AND is_active = \$2`).
		WithArgs(referrerID, true, 1).
		WillReturnRows(subscriptionRow(uuid.New(), referrerID, true))

	// Referrer receives 30.
	mock.ExpectQuery(`SELECT \* FROM "wallets" WHERE owner_id = \$1 AND purpose = \$2`).
		WithArgs(referrerID, models.WalletPurposeEarnings, 1).
		WillReturnRows(walletRow(referrerWalletID, referrerID, models.WalletPurposeEarnings, "0"))
	mock.ExpectQuery(`SELECT \* FROM "wallets" WHERE owner_id = \$1 AND purpose = \$2 (.+)FOR UPDATE`).
		WithArgs(referrerID, models.WalletPurposeEarnings, 1).
		WillReturnRows(walletRow(referrerWalletID, referrerID, models.WalletPurposeEarnings, "0"))
	mock.ExpectExec(`UPDATE "wallets" SET "balance"=\$1`).
		WithArgs("30", sqlmock.AnyArg(), referrerWalletID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "wallet_transactions"`).
		WithArgs(referrerWalletID, "30", models.TxnKindReferralCredit, "30", "cs_123", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))

	mock.ExpectQuery(`INSERT INTO "referral_earnings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))

	// Platform receives the remainder.
	mock.ExpectQuery(`SELECT \* FROM "wallets" WHERE owner_id = \$1 AND purpose = \$2`).
		WithArgs(platformID, models.WalletPurposePlatformFees, 1).
		WillReturnRows(walletRow(platformWalletID, platformID, models.WalletPurposePlatformFees, "0"))
	mock.ExpectQuery(`SELECT \* FROM "wallets" WHERE owner_id = \$1 AND purpose = \$2 (.+)FOR UPDATE`).
		WithArgs(platformID, models.WalletPurposePlatformFees, 1).
		WillReturnRows(walletRow(platformWalletID, platformID, models.WalletPurposePlatformFees, "0"))
	mock.ExpectExec(`UPDATE "wallets" SET "balance"=\$1`).
		WithArgs("70", sqlmock.AnyArg(), platformWalletID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "wallet_transactions"`).
		WithArgs(platformWalletID, "70", models.TxnKindSubscriptionCredit, "70", "cs_123", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))

	mock.ExpectExec(`UPDATE "premium_subscriptions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectCommit()

	err := subs.SettleCheckout("cs_123", userID)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleCheckoutWithoutReferrerCreditsPlatformInFull(t *testing.T) {
	db, mock := newMockDB(t)
	wallets := NewWalletService()
	platformID := uuid.New()
	subs := NewSubscriptionService(db, &fakeProvider{}, wallets, platformID, decimal.NewFromInt(100))

	userID := uuid.New()
	subID := uuid.New()
	platformWalletID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "wallet_transactions" WHERE source_id = \$1`).
		WithArgs("cs_200", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "wallet_id", "amount", "kind", "current_balance", "source_id", "created_at"}))
	mock.ExpectQuery(`SELECT \* FROM "premium_subscriptions" WHERE user_id = \$1 (.+)FOR UPDATE`).
		WithArgs(userID, 1).
		WillReturnRows(subscriptionRow(subID, userID, false))
	mock.ExpectQuery(`SELECT \* FROM "wallet_transactions" WHERE source_id = \$1`).
		WithArgs("cs_200", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "wallet_id", "amount", "kind", "current_balance", "source_id", "created_at"}))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WithArgs(userID, 1).
		WillReturnRows(userRow(userID, "solo@example.com", "SOLO01", nil))

	mock.ExpectQuery(`SELECT \* FROM "wallets" WHERE owner_id = \$1 AND purpose = \$2`).
		WithArgs(platformID, models.WalletPurposePlatformFees, 1).
		WillReturnRows(walletRow(platformWalletID, platformID, models.WalletPurposePlatformFees, "0"))
	mock.ExpectQuery(`SELECT \* FROM "wallets" WHERE owner_id = \$1 AND purpose = \$2 (.+)FOR UPDATE`).
		WithArgs(platformID, models.WalletPurposePlatformFees, 1).
		WillReturnRows(walletRow(platformWalletID, platformID, models.WalletPurposePlatformFees, "0"))
	mock.ExpectExec(`UPDATE "wallets" SET "balance"=\$1`).
		WithArgs("100", sqlmock.AnyArg(), platformWalletID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "wallet_transactions"`).
		WithArgs(platformWalletID, "100", models.TxnKindSubscriptionCredit, "100", "cs_200", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))

	mock.ExpectExec(`UPDATE "premium_subscriptions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := subs.SettleCheckout("cs_200", userID)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleCheckoutIsIdempotentAcrossRedelivery(t *testing.T) {
	db, mock := newMockDB(t)
	platformID := uuid.New()
	subs := NewSubscriptionService(db, &fakeProvider{}, NewWalletService(), platformID, decimal.NewFromInt(100))

	userID := uuid.New()
	walletID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "wallet_transactions" WHERE source_id = \$1`).
		WithArgs("cs_123", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "wallet_id", "amount", "kind", "current_balance", "source_id", "created_at"}).
			AddRow(uuid.NewString(), walletID.String(), "70", models.TxnKindSubscriptionCredit, "70", "cs_123", time.Now()))
	mock.ExpectCommit()

	err := subs.SettleCheckout("cs_123", userID)
	require.NoError(t, err)

	// No subscription write and no wallet credit may follow a replay.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleCheckoutDuplicateCaughtUnderSubscriptionLock(t *testing.T) {
	db, mock := newMockDB(t)
	platformID := uuid.New()
	subs := NewSubscriptionService(db, &fakeProvider{}, NewWalletService(), platformID, decimal.NewFromInt(100))

	userID := uuid.New()
	subID := uuid.New()

	// A concurrent settlement of the same session commits between our first
	// dedupe read and the subscription row lock. The re-check under the lock
	// must catch it and apply no credits.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "wallet_transactions" WHERE source_id = \$1`).
		WithArgs("cs_123", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "wallet_id", "amount", "kind", "current_balance", "source_id", "created_at"}))
	mock.ExpectQuery(`SELECT \* FROM "premium_subscriptions" WHERE user_id = \$1 (.+)FOR UPDATE`).
		WithArgs(userID, 1).
		WillReturnRows(subscriptionRow(subID, userID, true))
	mock.ExpectQuery(`SELECT \* FROM "wallet_transactions" WHERE source_id = \$1`).
		WithArgs("cs_123", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "wallet_id", "amount", "kind", "current_balance", "source_id", "created_at"}).
			AddRow(uuid.NewString(), uuid.NewString(), "100", models.TxnKindSubscriptionCredit, "100", "cs_123", time.Now()))
	mock.ExpectCommit()

	err := subs.SettleCheckout("cs_123", userID)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSelfReferralIsIgnored(t *testing.T) {
	db, mock := newMockDB(t)
	wallets := NewWalletService()
	platformID := uuid.New()
	subs := NewSubscriptionService(db, &fakeProvider{}, wallets, platformID, decimal.NewFromInt(100))

	userID := uuid.New()
	subID := uuid.New()
	platformWalletID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "wallet_transactions" WHERE source_id = \$1`).
		WithArgs("cs_300", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "wallet_id", "amount", "kind", "current_balance", "source_id", "created_at"}))
	mock.ExpectQuery(`SELECT \* FROM "premium_subscriptions" WHERE user_id = \$1 (.+)FOR UPDATE`).
		WithArgs(userID, 1).
		WillReturnRows(subscriptionRow(subID, userID, false))
	mock.ExpectQuery(`SELECT \* FROM "wallet_transactions" WHERE source_id = \$1`).
		WithArgs("cs_300", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "wallet_id", "amount", "kind", "current_balance", "source_id", "created_at"}))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WithArgs(userID, 1).
		WillReturnRows(userRow(userID, "sneaky@example.com", "MINE01", "MINE01"))

	// The code resolves back to the buyer; no referral credit follows.
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE referral_code = \$1`).
		WithArgs("MINE01", 1).
		WillReturnRows(userRow(userID, "sneaky@example.com", "MINE01", "MINE01"))

	mock.ExpectQuery(`SELECT \* FROM "wallets" WHERE owner_id = \$1 AND purpose = \$2`).
		WithArgs(platformID, models.WalletPurposePlatformFees, 1).
		WillReturnRows(walletRow(platformWalletID, platformID, models.WalletPurposePlatformFees, "0"))
	mock.ExpectQuery(`SELECT \* FROM "wallets" WHERE owner_id = \$1 AND purpose = \$2 (.+)FOR UPDATE`).
		WithArgs(platformID, models.WalletPurposePlatformFees, 1).
		WillReturnRows(walletRow(platformWalletID, platformID, models.WalletPurposePlatformFees, "0"))
	mock.ExpectExec(`UPDATE "wallets" SET "balance"=\$1`).
		WithArgs("100", sqlmock.AnyArg(), platformWalletID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "wallet_transactions"`).
		WithArgs(platformWalletID, "100", models.TxnKindSubscriptionCredit, "100", "cs_300", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))

	mock.ExpectExec(`UPDATE "premium_subscriptions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := subs.SettleCheckout("cs_300", userID)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
