package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mentorlink/mentorlink/handlers"
	"github.com/mentorlink/mentorlink/middleware"
)

func PremiumRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	premium := api.Group("/premium", middleware.Protected())
	premium.Post("/checkout", handlers.CreatePremiumCheckout)
	premium.Get("/status", handlers.GetPremiumStatus)
	premium.Get("/referral-earnings", handlers.GetMyReferralEarnings)
}
