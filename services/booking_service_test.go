package services

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSplitFeeSumsBackToAmount(t *testing.T) {
	cases := []struct {
		amount string
		fee    string
		payout string
	}{
		{"1000", "200", "800"},
		{"100", "20", "80"},
		{"99.99", "20", "79.99"},
		{"0.01", "0", "0.01"},
		{"33.33", "6.67", "26.66"},
	}

	for _, tc := range cases {
		amount := decimal.RequireFromString(tc.amount)
		fee, payout := SplitFee(amount)
		require.True(t, fee.Equal(decimal.RequireFromString(tc.fee)), "fee for %s: got %s", tc.amount, fee)
		require.True(t, payout.Equal(decimal.RequireFromString(tc.payout)), "payout for %s: got %s", tc.amount, payout)
		require.True(t, fee.Add(payout).Equal(amount), "split for %s must sum back exactly", tc.amount)
	}
}

func scheduledBookingRow(id, learnerID, mentorID uuid.UUID, status string, startsIn time.Duration, intentID string) *sqlmock.Rows {
	start := time.Now().Add(startsIn)
	var intent interface{}
	if intentID != "" {
		intent = intentID
	}
	return sqlmock.NewRows([]string{
		"id", "learner_id", "mentor_id", "date", "start_time", "end_time",
		"amount", "platform_fee", "mentor_payout", "status", "payment_status",
		"stripe_payment_intent_id",
	}).AddRow(id.String(), learnerID.String(), mentorID.String(), start.Truncate(24*time.Hour), start, start.Add(time.Hour),
		"100", "20", "80", status, models.PaymentStatusHolding, intent)
}

func availabilityRow(id, mentorID uuid.UUID, startsIn time.Duration, booked bool) *sqlmock.Rows {
	start := time.Now().Add(startsIn)
	return sqlmock.NewRows([]string{
		"id", "mentor_id", "date", "start_time", "end_time", "is_booked",
		"session_price", "currency", "created_at", "updated_at",
	}).AddRow(id.String(), mentorID.String(), start.Truncate(24*time.Hour), start, start.Add(time.Hour), booked,
		"100", "USD", time.Now(), time.Now())
}

func TestCreateBookingReturnsClientSecret(t *testing.T) {
	db, mock := newMockDB(t)
	provider := &fakeProvider{}
	bookings := NewBookingService(db, provider, NewAccountService(db, provider))

	learnerID := uuid.New()
	mentorID := uuid.New()
	slotID := uuid.New()
	bookingID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "mentor_availabilities" WHERE id = \$1`).
		WithArgs(slotID, 1).
		WillReturnRows(availabilityRow(slotID, mentorID, 48*time.Hour, false))
	mock.ExpectQuery(`SELECT \* FROM "payment_accounts" WHERE user_id = \$1 AND purpose = \$2`).
		WithArgs(mentorID, models.AccountPurposeMentor, 1).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "purpose", "stripe_account_id",
			"onboarding_complete", "setup_complete", "is_active", "created_at", "updated_at",
		}).AddRow(uuid.NewString(), mentorID.String(), models.AccountPurposeMentor, "acct_ready",
			true, true, true, time.Now(), time.Now()))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "mentor_availabilities" WHERE id = \$1 (.+)FOR UPDATE`).
		WithArgs(slotID, slotID, 1).
		WillReturnRows(availabilityRow(slotID, mentorID, 48*time.Hour, false))
	mock.ExpectExec(`UPDATE "mentor_availabilities" SET "is_booked"=\$1`).
		WithArgs(true, sqlmock.AnyArg(), slotID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "session_bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(bookingID.String()))
	mock.ExpectExec(`UPDATE "session_bookings" SET "stripe_payment_intent_id"=\$1`).
		WithArgs("pi_fake_1", sqlmock.AnyArg(), bookingID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	booking, clientSecret, err := bookings.Create(learnerID, slotID, "systems design")
	require.NoError(t, err)
	require.Equal(t, "pi_fake_1_secret", clientSecret)
	require.Equal(t, []string{"pi_fake_1"}, provider.createdIntents)
	require.NotNil(t, booking.StripePaymentIntentID)
	require.Equal(t, "pi_fake_1", *booking.StripePaymentIntentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelInsideCutoffIsRefused(t *testing.T) {
	db, mock := newMockDB(t)
	bookings := NewBookingService(db, &fakeProvider{}, nil)

	learnerID := uuid.New()
	bookingID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "session_bookings" WHERE id = \$1 (.+)FOR UPDATE`).
		WithArgs(bookingID, 1).
		WillReturnRows(scheduledBookingRow(bookingID, learnerID, uuid.New(), models.BookingStatusConfirmed, 6*time.Hour, "pi_hold"))
	mock.ExpectRollback()

	_, err := bookings.Cancel(learnerID, bookingID)
	require.ErrorIs(t, err, ErrCancelWindow)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelVoidsHoldAndReopensSlot(t *testing.T) {
	db, mock := newMockDB(t)
	provider := &fakeProvider{}
	bookings := NewBookingService(db, provider, nil)

	learnerID := uuid.New()
	mentorID := uuid.New()
	bookingID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "session_bookings" WHERE id = \$1 (.+)FOR UPDATE`).
		WithArgs(bookingID, 1).
		WillReturnRows(scheduledBookingRow(bookingID, learnerID, mentorID, models.BookingStatusConfirmed, 48*time.Hour, "pi_hold"))
	mock.ExpectExec(`UPDATE "session_bookings" SET "status"=\$1`).
		WithArgs(models.BookingStatusCancelled, sqlmock.AnyArg(), bookingID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "session_bookings" SET "payment_status"=\$1`).
		WithArgs(models.PaymentStatusRefunded, sqlmock.AnyArg(), bookingID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "mentor_availabilities" SET "is_booked"=\$1`).
		WithArgs(false, sqlmock.AnyArg(), mentorID, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	booking, err := bookings.Cancel(learnerID, bookingID)
	require.NoError(t, err)
	require.Equal(t, models.BookingStatusCancelled, booking.Status)
	require.Equal(t, models.PaymentStatusRefunded, booking.PaymentStatus)
	require.Equal(t, []string{"pi_hold"}, provider.cancelledIntents)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelRollsBackWhenProviderRefusesVoid(t *testing.T) {
	db, mock := newMockDB(t)
	provider := &fakeProvider{cancelErr: errors.New("gateway unavailable")}
	bookings := NewBookingService(db, provider, nil)

	learnerID := uuid.New()
	bookingID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "session_bookings" WHERE id = \$1 (.+)FOR UPDATE`).
		WithArgs(bookingID, 1).
		WillReturnRows(scheduledBookingRow(bookingID, learnerID, uuid.New(), models.BookingStatusConfirmed, 48*time.Hour, "pi_hold"))
	mock.ExpectExec(`UPDATE "session_bookings" SET "status"=\$1`).
		WithArgs(models.BookingStatusCancelled, sqlmock.AnyArg(), bookingID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	_, err := bookings.Cancel(learnerID, bookingID)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelByNonParticipantIsRefused(t *testing.T) {
	db, mock := newMockDB(t)
	bookings := NewBookingService(db, &fakeProvider{}, nil)

	bookingID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "session_bookings" WHERE id = \$1 (.+)FOR UPDATE`).
		WithArgs(bookingID, 1).
		WillReturnRows(scheduledBookingRow(bookingID, uuid.New(), uuid.New(), models.BookingStatusConfirmed, 48*time.Hour, "pi_hold"))
	mock.ExpectRollback()

	_, err := bookings.Cancel(uuid.New(), bookingID)
	require.ErrorIs(t, err, ErrNotParticipant)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptOnlyFromPending(t *testing.T) {
	db, mock := newMockDB(t)
	bookings := NewBookingService(db, &fakeProvider{}, nil)

	mentorID := uuid.New()
	bookingID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "session_bookings" WHERE id = \$1`).
		WithArgs(bookingID, 1).
		WillReturnRows(scheduledBookingRow(bookingID, uuid.New(), mentorID, models.BookingStatusConfirmed, 48*time.Hour, "pi_hold"))

	_, err := bookings.Accept(mentorID, bookingID)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptConfirmsPendingBooking(t *testing.T) {
	db, mock := newMockDB(t)
	bookings := NewBookingService(db, &fakeProvider{}, nil)

	mentorID := uuid.New()
	bookingID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "session_bookings" WHERE id = \$1`).
		WithArgs(bookingID, 1).
		WillReturnRows(scheduledBookingRow(bookingID, uuid.New(), mentorID, models.BookingStatusPending, 48*time.Hour, "pi_hold"))
	mock.ExpectExec(`UPDATE "session_bookings" SET "status"=\$1`).
		WithArgs(models.BookingStatusConfirmed, sqlmock.AnyArg(), bookingID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	booking, err := bookings.Accept(mentorID, bookingID)
	require.NoError(t, err)
	require.Equal(t, models.BookingStatusConfirmed, booking.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectOnlyByOwningMentor(t *testing.T) {
	db, mock := newMockDB(t)
	bookings := NewBookingService(db, &fakeProvider{}, nil)

	bookingID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "session_bookings" WHERE id = \$1 (.+)FOR UPDATE`).
		WithArgs(bookingID, 1).
		WillReturnRows(scheduledBookingRow(bookingID, uuid.New(), uuid.New(), models.BookingStatusPending, 48*time.Hour, "pi_hold"))
	mock.ExpectRollback()

	_, err := bookings.Reject(uuid.New(), bookingID)
	require.ErrorIs(t, err, ErrNotParticipant)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectVoidsHoldAndReopensSlot(t *testing.T) {
	db, mock := newMockDB(t)
	provider := &fakeProvider{}
	bookings := NewBookingService(db, provider, nil)

	mentorID := uuid.New()
	bookingID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "session_bookings" WHERE id = \$1 (.+)FOR UPDATE`).
		WithArgs(bookingID, 1).
		WillReturnRows(scheduledBookingRow(bookingID, uuid.New(), mentorID, models.BookingStatusPending, 48*time.Hour, "pi_hold"))
	mock.ExpectExec(`UPDATE "session_bookings" SET "status"=\$1`).
		WithArgs(models.BookingStatusRejected, sqlmock.AnyArg(), bookingID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "session_bookings" SET "payment_status"=\$1`).
		WithArgs(models.PaymentStatusRefunded, sqlmock.AnyArg(), bookingID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "mentor_availabilities" SET "is_booked"=\$1`).
		WithArgs(false, sqlmock.AnyArg(), mentorID, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	booking, err := bookings.Reject(mentorID, bookingID)
	require.NoError(t, err)
	require.Equal(t, models.BookingStatusRejected, booking.Status)
	require.Equal(t, models.PaymentStatusRefunded, booking.PaymentStatus)
	require.Equal(t, []string{"pi_hold"}, provider.cancelledIntents)
	require.NoError(t, mock.ExpectationsWereMet())
}
