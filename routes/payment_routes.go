package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mentorlink/mentorlink/handlers"
	"github.com/mentorlink/mentorlink/middleware"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/payments/webhook", handlers.HandleStripeWebhook)

	account := api.Group("/payments/account", middleware.Protected())
	account.Post("", handlers.CreatePaymentAccount)
	account.Get("/status", handlers.GetPaymentAccountStatus)
}
