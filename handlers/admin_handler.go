package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/database"
	"github.com/mentorlink/mentorlink/models"
	"github.com/mentorlink/mentorlink/services"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func AdminDashboardStats(c *fiber.Ctx) error {
	var totalUsers, totalLearners, totalMentors int64
	database.DB.Model(&models.User{}).Count(&totalUsers)
	database.DB.Model(&models.User{}).Where("role = ?", "learner").Count(&totalLearners)
	database.DB.Model(&models.User{}).Where("role = ?", "mentor").Count(&totalMentors)

	var totalSessions, pendingSessions, completedSessions, cancelledSessions int64
	database.DB.Model(&models.SessionBooking{}).Count(&totalSessions)
	database.DB.Model(&models.SessionBooking{}).
		Where("status = ?", models.BookingStatusPending).Count(&pendingSessions)
	database.DB.Model(&models.SessionBooking{}).
		Where("status = ?", models.BookingStatusCompleted).Count(&completedSessions)
	database.DB.Model(&models.SessionBooking{}).
		Where("status IN ?", []string{models.BookingStatusCancelled, models.BookingStatusNoShow, models.BookingStatusRejected}).
		Count(&cancelledSessions)

	var activeSubscriptions int64
	database.DB.Model(&models.PremiumSubscription{}).Where("is_active = ?", true).Count(&activeSubscriptions)

	type sumRow struct {
		Total decimal.Decimal
	}
	var revenue sumRow
	database.DB.Model(&models.SessionBooking{}).
		Select("COALESCE(SUM(platform_fee), 0) AS total").
		Where("payment_status = ?", models.PaymentStatusReleased).
		Scan(&revenue)

	return c.JSON(fiber.Map{
		"total_users":          totalUsers,
		"total_learners":       totalLearners,
		"total_mentors":        totalMentors,
		"total_sessions":       totalSessions,
		"pending_sessions":     pendingSessions,
		"completed_sessions":   completedSessions,
		"cancelled_sessions":   cancelledSessions,
		"active_subscriptions": activeSubscriptions,
		"platform_revenue":     revenue.Total,
	})
}

func AdminListSessions(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	var bookings []models.SessionBooking
	err := database.DB.Preload("Learner").Preload("Mentor").
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&bookings).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load sessions"})
	}
	return c.JSON(fiber.Map{"sessions": bookings})
}

// AdminCompleteAndCapture is the admin's settlement entry point. It lands on
// the same settlement routine as the webhook and the mentor capture call, so
// triggering it on an already-settled session simply reports success.
func AdminCompleteAndCapture(c *fiber.Ctx) error {
	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID"})
	}

	booking, err := svc.Settlement.Capture(bookingID)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
		case errors.Is(err, services.ErrNoPaymentIntent):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		log.Printf("🔥 Admin capture failed for booking %s: %v", bookingID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Payment capture failed"})
	}

	return c.JSON(fiber.Map{
		"message": "Session completed and payment captured.",
		"booking": booking,
	})
}

func AdminRefundBooking(c *fiber.Ctx) error {
	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID"})
	}

	type refundRequest struct {
		Reason string `json:"reason"`
	}
	var req refundRequest
	_ = c.BodyParser(&req)
	if req.Reason == "" {
		req.Reason = "refunded by admin"
	}

	booking, err := svc.Settlement.Refund(bookingID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
		case errors.Is(err, services.ErrBookingNotHolding):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		log.Printf("🔥 Admin refund failed for booking %s: %v", bookingID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Refund failed"})
	}

	return c.JSON(fiber.Map{"message": "Payment refunded.", "booking": booking})
}

func AdminPremiumSummary(c *fiber.Ctx) error {
	var activeSubscriptions, totalReferrals int64
	database.DB.Model(&models.PremiumSubscription{}).Where("is_active = ?", true).Count(&activeSubscriptions)
	database.DB.Model(&models.ReferralEarning{}).Count(&totalReferrals)

	type sumRow struct {
		Total decimal.Decimal
	}
	var referralTotal sumRow
	database.DB.Model(&models.ReferralEarning{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&referralTotal)

	return c.JSON(fiber.Map{
		"active_subscriptions":  activeSubscriptions,
		"total_referrals":       totalReferrals,
		"total_referral_payout": referralTotal.Total,
	})
}

func AdminListReferralEarnings(c *fiber.Ctx) error {
	var earnings []models.ReferralEarning
	err := database.DB.Preload("Referrer").Preload("ReferredUser").
		Order("created_at DESC").Find(&earnings).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load referral earnings"})
	}
	return c.JSON(fiber.Map{"earnings": earnings})
}

func AdminListNotifications(c *fiber.Ctx) error {
	var items []models.AdminNotification
	err := database.DB.Order("created_at DESC").Limit(100).Find(&items).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load notifications"})
	}
	return c.JSON(fiber.Map{"notifications": items})
}

func AdminMarkNotificationRead(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("notificationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid notification ID"})
	}

	res := database.DB.Model(&models.AdminNotification{}).Where("id = ?", id).Update("is_read", true)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update notification"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Notification not found"})
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}
