package handlers

import (
	"errors"
	"log"

	config "github.com/mentorlink/mentorlink/configs"
	"github.com/gofiber/fiber/v2"
	"github.com/mentorlink/mentorlink/database"
	"github.com/mentorlink/mentorlink/models"
	"github.com/mentorlink/mentorlink/services"
)

// CreatePaymentAccount provisions (or returns) the caller's payout account for
// their role and hands back a fresh onboarding link.
func CreatePaymentAccount(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	account, err := svc.Accounts.Provision(&user, user.Role)
	if err != nil {
		log.Printf("🔥 Payment account provisioning failed for %s: %v", user.Email, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Could not create payout account, please try again"})
	}

	frontend := config.Config("FRONTEND_URL")
	link, err := svc.Accounts.OnboardingLink(account,
		frontend+"/payments/onboarding/refresh",
		frontend+"/payments/onboarding/complete")
	if err != nil {
		log.Printf("🔥 Onboarding link creation failed for account %s: %v", account.ID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Could not create onboarding link"})
	}

	return c.JSON(fiber.Map{
		"account":        account,
		"onboarding_url": link,
	})
}

// GetPaymentAccountStatus re-syncs the caller's account flags from the
// provider and returns them.
func GetPaymentAccountStatus(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	account, err := svc.Accounts.SyncedAccount(userID, currentUserRole(c))
	if err != nil {
		if errors.Is(err, services.ErrAccountNotProvisioned) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No payout account yet"})
		}
		log.Printf("🔥 Payment account sync failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Could not refresh account status"})
	}

	return c.JSON(fiber.Map{"account": account})
}
