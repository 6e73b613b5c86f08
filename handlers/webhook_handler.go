package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mentorlink/mentorlink/database"
	"github.com/mentorlink/mentorlink/models"
	"github.com/mentorlink/mentorlink/notifications"
	"github.com/stripe/stripe-go/v79"
	"gorm.io/gorm"
)

// isDuplicateKey reports whether err is a Postgres unique violation. Only this
// error means "we have already recorded this event"; anything else on the
// event insert is a real failure.
func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "duplicate key value")
}

// HandleStripeWebhook verifies the event signature, records the event before
// dispatching (so provider redelivery is caught at the boundary), and then
// routes it. Internal processing failures are logged and surfaced to admins
// but still acknowledged with 200 — the per-booking idempotency guard and the
// reconciliation job cover the gap, and failing the webhook would only trigger
// a redelivery storm.
func HandleStripeWebhook(c *fiber.Ctx) error {
	event, err := svc.Provider.ConstructWebhookEvent(c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		log.Printf("⚠️ Webhook signature verification failed: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid signature"})
	}

	record := models.WebhookEvent{StripeEventID: event.ID, Type: string(event.Type)}
	if err := database.DB.Create(&record).Error; err != nil {
		if isDuplicateKey(err) {
			log.Printf("Webhook event %s already received, acknowledging.", event.ID)
			return c.JSON(fiber.Map{"message": "Event already received"})
		}
		// Any other insert failure means the event was neither recorded nor
		// processed; a 2xx here would stop the provider from redelivering.
		log.Printf("🔥 Failed to record webhook event %s (%s): %v", event.ID, event.Type, err)
		notifications.NotifyAdmins(database.DB, fmt.Sprintf(
			"Webhook event %s (%s) could not be recorded: %v — the provider will redeliver.",
			event.ID, event.Type, err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record event"})
	}

	procErr := dispatchWebhookEvent(event)
	if procErr != nil {
		log.Printf("🔥 CRITICAL: webhook event %s (%s) failed: %v", event.ID, event.Type, procErr)
		notifications.NotifyAdmins(database.DB, fmt.Sprintf(
			"Webhook event %s (%s) failed to process: %v — manual reconciliation may be required.",
			event.ID, event.Type, procErr))

		msg := procErr.Error()
		database.DB.Model(&models.WebhookEvent{}).Where("id = ?", record.ID).
			Update("processing_error", msg)
		return c.JSON(fiber.Map{"message": "Event acknowledged, processing deferred"})
	}

	database.DB.Model(&models.WebhookEvent{}).Where("id = ?", record.ID).
		Update("processed", true)
	return c.JSON(fiber.Map{"message": "Event processed"})
}

func dispatchWebhookEvent(event stripe.Event) error {
	switch event.Type {
	case "payment_intent.succeeded":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return fmt.Errorf("unmarshal payment intent: %w", err)
		}
		_, err := svc.Settlement.SettleCapturedIntent(intent.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Not a session payment (e.g. a premium checkout's intent).
			return nil
		}
		return err

	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("unmarshal checkout session: %w", err)
		}
		if session.Metadata["purpose"] != "premium_subscription" {
			return nil
		}
		userID, err := uuid.Parse(session.Metadata["user_id"])
		if err != nil {
			return fmt.Errorf("checkout session %s carries invalid user_id: %w", session.ID, err)
		}
		return svc.Subscriptions.SettleCheckout(session.ID, userID)

	case "account.updated":
		var account stripe.Account
		if err := json.Unmarshal(event.Data.Raw, &account); err != nil {
			return fmt.Errorf("unmarshal account: %w", err)
		}
		err := svc.Accounts.SyncByStripeID(account.ID, accountStatusFromStripe(&account))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	log.Printf("Ignoring webhook event type %s", event.Type)
	return nil
}
