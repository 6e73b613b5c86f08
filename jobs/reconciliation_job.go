package jobs

import (
	"fmt"
	"log"

	"github.com/mentorlink/mentorlink/database"
	"github.com/mentorlink/mentorlink/models"
	"github.com/mentorlink/mentorlink/notifications"
)

// ReconcileHeldPayments sweeps bookings still marked holding whose payment
// intent has already succeeded at the provider, and re-drives settlement for
// them. A dropped webhook is the usual cause; settlement's own no-op guard
// makes re-driving safe even if the webhook arrives mid-sweep.
func ReconcileHeldPayments() {
	log.Println("Running job: ReconcileHeldPayments...")

	var heldBookings []models.SessionBooking
	err := database.DB.
		Where("payment_status = ? AND stripe_payment_intent_id IS NOT NULL", models.PaymentStatusHolding).
		Find(&heldBookings).Error
	if err != nil {
		log.Printf("🔥 Error loading held bookings for reconciliation: %v", err)
		return
	}

	if len(heldBookings) == 0 {
		return
	}

	reconciled := 0
	for _, booking := range heldBookings {
		intent, err := svc.Provider.RetrievePaymentIntent(*booking.StripePaymentIntentID)
		if err != nil {
			log.Printf("⚠️ Could not retrieve intent %s for booking %s: %v", *booking.StripePaymentIntentID, booking.ID, err)
			continue
		}
		if intent.Status != "succeeded" {
			continue
		}

		log.Printf("⚠️ Booking %s has a succeeded intent but is still holding; settling now.", booking.ID)
		if _, err := svc.Settlement.SettleCapturedIntent(intent.ID); err != nil {
			log.Printf("🔥 Reconciliation settlement failed for booking %s: %v", booking.ID, err)
			go notifications.NotifyAdmins(database.DB, fmt.Sprintf(
				"Reconciliation could not settle booking %s (intent %s): %v", booking.ID, intent.ID, err))
			continue
		}
		reconciled++
	}

	if reconciled > 0 {
		log.Printf("✅ Reconciled %d held booking(s) with succeeded intents.", reconciled)
	}
}
