package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/mentorlink/mentorlink/database"
	"github.com/mentorlink/mentorlink/models"
	"github.com/mentorlink/mentorlink/services"
	"github.com/shopspring/decimal"
)

func walletPurposeForRole(role string) string {
	// Every role's primary wallet is earnings except the admin, whose primary
	// wallet collects platform fees.
	if role == "admin" {
		return models.WalletPurposePlatformFees
	}
	return models.WalletPurposeEarnings
}

// validWalletPurpose guards the purpose query parameter: GetOrCreate mints a
// wallet row for unknown purposes, so only the known set may pass through.
func validWalletPurpose(purpose string) bool {
	switch purpose {
	case models.WalletPurposeEarnings,
		models.WalletPurposeBonus,
		models.WalletPurposePlatformFees,
		models.WalletPurposeRefunds,
		models.WalletPurposeRewards:
		return true
	}
	return false
}

func GetMyWallet(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	purpose := c.Query("purpose", walletPurposeForRole(currentUserRole(c)))
	if !validWalletPurpose(purpose) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown wallet purpose"})
	}
	wallet, err := svc.Wallets.GetOrCreate(database.DB, userID, purpose)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load wallet"})
	}
	return c.JSON(fiber.Map{"wallet": wallet})
}

func GetWalletTransactions(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	purpose := c.Query("purpose", walletPurposeForRole(currentUserRole(c)))
	if !validWalletPurpose(purpose) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown wallet purpose"})
	}
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	txns, err := svc.Wallets.Transactions(database.DB, userID, purpose, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load transactions"})
	}
	return c.JSON(fiber.Map{"transactions": txns})
}

type WithdrawRequest struct {
	Amount string `json:"amount" validate:"required"`
}

func WithdrawFunds(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	role := currentUserRole(c)

	var req WithdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount must be a positive number"})
	}

	request, err := svc.Payouts.Withdraw(userID, role, walletPurposeForRole(role), amount)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInsufficientFunds):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrAccountNotProvisioned), errors.Is(err, services.ErrMentorNotOnboarded):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Complete payout onboarding before withdrawing"})
		}
		log.Printf("🔥 Withdrawal failed for user %s: %v", userID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Withdrawal failed, please try again"})
	}

	return c.JSON(fiber.Map{
		"message": "Withdrawal processed",
		"payout":  request,
	})
}
