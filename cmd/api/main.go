package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	config "github.com/mentorlink/mentorlink/configs"
	"github.com/mentorlink/mentorlink/database"
	"github.com/mentorlink/mentorlink/handlers"
	"github.com/mentorlink/mentorlink/jobs"
	"github.com/mentorlink/mentorlink/payments"
	"github.com/mentorlink/mentorlink/routes"
	"github.com/mentorlink/mentorlink/services"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

func premiumPrice() decimal.Decimal {
	raw := config.Config("PREMIUM_PRICE")
	if raw == "" {
		return decimal.RequireFromString("100.00")
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		log.Fatalf("🔥 Invalid PREMIUM_PRICE %q: %v", raw, err)
	}
	return price
}

func main() {
	database.ConnectDB()
	database.Migrate()
	admin := database.SeedAdmin()

	provider := payments.NewStripeProvider(
		config.Config("STRIPE_SECRET_KEY"),
		config.Config("STRIPE_WEBHOOK_SECRET"),
	)

	registry := services.NewRegistry(database.DB, provider, admin.ID, premiumPrice())
	handlers.Setup(registry)
	jobs.Setup(registry)

	c := cron.New()
	c.AddFunc("*/15 * * * *", jobs.ReconcileHeldPayments)
	c.AddFunc("0 * * * *", jobs.MarkNoShowSessions)
	go c.Start()
	log.Println("✅ Cron jobs for reconciliation and no-shows scheduled successfully.")

	app := fiber.New(fiber.Config{
		Prefork:           false,
		AppName:           "MentorLink",
		CaseSensitive:     true,
		StrictRouting:     true,
		EnablePrintRoutes: true,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Stripe-Signature",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to MentorLink API",
		})
	})

	routes.AuthRoutes(app)
	routes.BookingRoutes(app)
	routes.PaymentRoutes(app)
	routes.WalletRoutes(app)
	routes.PremiumRoutes(app)
	routes.AdminRoutes(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	log.Println("✅ Server is running on port 8080")
	if err := app.Listen(":8080"); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
