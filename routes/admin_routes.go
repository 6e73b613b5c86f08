package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mentorlink/mentorlink/handlers"
	"github.com/mentorlink/mentorlink/middleware"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())
	admin.Get("/stats", handlers.AdminDashboardStats)
	admin.Get("/sessions", handlers.AdminListSessions)
	admin.Post("/sessions/:bookingId/complete-and-capture", handlers.AdminCompleteAndCapture)
	admin.Post("/sessions/:bookingId/refund", handlers.AdminRefundBooking)

	admin.Get("/wallet", handlers.GetMyWallet)
	admin.Get("/wallet/transactions", handlers.GetWalletTransactions)
	admin.Post("/wallet/withdraw", handlers.WithdrawFunds)

	admin.Get("/premium-summary", handlers.AdminPremiumSummary)
	admin.Get("/referral-earnings", handlers.AdminListReferralEarnings)

	admin.Get("/notifications", handlers.AdminListNotifications)
	admin.Post("/notifications/:notificationId/read", handlers.AdminMarkNotificationRead)
}
