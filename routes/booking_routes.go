package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mentorlink/mentorlink/handlers"
	"github.com/mentorlink/mentorlink/middleware"
)

func BookingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	booking := api.Group("/bookings", middleware.Protected())
	booking.Get("/me", handlers.GetMyBookings)
	booking.Get("/upcoming", handlers.GetUpcomingBookings)
	booking.Post("", middleware.LearnerRequired(), handlers.CreateBooking)
	booking.Post("/:bookingId/cancel", middleware.LearnerRequired(), handlers.CancelBooking)

	mentorBooking := api.Group("/mentor/bookings", middleware.Protected(), middleware.MentorRequired())
	mentorBooking.Post("/:bookingId/accept", handlers.AcceptBooking)
	mentorBooking.Post("/:bookingId/reject", handlers.RejectBooking)
	mentorBooking.Post("/:bookingId/capture", handlers.CaptureBooking)

	availability := api.Group("/availability")
	availability.Get("", middleware.Protected(), handlers.ListAvailability)
	availability.Post("", middleware.Protected(), middleware.MentorRequired(), handlers.CreateAvailability)
}
