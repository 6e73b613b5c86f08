package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mentorlink/mentorlink/handlers"
	"github.com/mentorlink/mentorlink/middleware"
)

func WalletRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	wallet := api.Group("/wallet", middleware.Protected())
	wallet.Get("", handlers.GetMyWallet)
	wallet.Get("/transactions", handlers.GetWalletTransactions)
	wallet.Post("/withdraw", handlers.WithdrawFunds)
}
