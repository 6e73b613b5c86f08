package handlers

import (
	"log"

	config "github.com/mentorlink/mentorlink/configs"
	"github.com/gofiber/fiber/v2"
	"github.com/mentorlink/mentorlink/database"
	"github.com/mentorlink/mentorlink/models"
)

func CreatePremiumCheckout(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	frontend := config.Config("FRONTEND_URL")
	url, err := svc.Subscriptions.CreateCheckout(&user,
		frontend+"/learner/premium-success/",
		frontend+"/learner/premium-cancel/")
	if err != nil {
		log.Printf("🔥 Premium checkout creation failed for %s: %v", user.Email, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Could not start checkout, please try again"})
	}

	return c.JSON(fiber.Map{"checkout_url": url})
}

func GetPremiumStatus(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	active, err := svc.Subscriptions.Status(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load subscription"})
	}
	return c.JSON(fiber.Map{"is_active": active})
}

func GetMyReferralEarnings(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var earnings []models.ReferralEarning
	if err := database.DB.Where("referrer_id = ?", userID).
		Order("created_at DESC").Find(&earnings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load referral earnings"})
	}
	return c.JSON(fiber.Map{"earnings": earnings})
}
