package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/database"
	"github.com/mentorlink/mentorlink/models"
	"github.com/mentorlink/mentorlink/services"
	"gorm.io/gorm"
)

type CreateBookingRequest struct {
	AvailabilitySlotID string `json:"availability_slot_id" validate:"required,uuid"`
	TopicFocus         string `json:"topic_focus,omitempty"`
}

func CreateBooking(c *fiber.Ctx) error {
	learnerID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	slotID, _ := uuid.Parse(req.AvailabilitySlotID)

	booking, clientSecret, err := svc.Bookings.Create(learnerID, slotID, req.TopicFocus)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Availability slot not found"})
		case errors.Is(err, services.ErrMentorNotOnboarded):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "This mentor cannot accept bookings yet"})
		case errors.Is(err, services.ErrSlotTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrSlotInPast):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrAccountNotProvisioned):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "This mentor cannot accept bookings yet"})
		}
		log.Printf("🔥 Failed to create booking for learner %s: %v", learnerID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to create booking, please try again"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":       "Session booked. Payment is held until the session completes.",
		"booking":       booking,
		"client_secret": clientSecret,
	})
}

func GetMyBookings(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	bookings, err := svc.Bookings.ForUser(userID, currentUserRole(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load bookings"})
	}
	return c.JSON(fiber.Map{"bookings": bookings})
}

func GetUpcomingBookings(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	bookings, err := svc.Bookings.Upcoming(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load bookings"})
	}
	return c.JSON(fiber.Map{"bookings": bookings})
}

func AcceptBooking(c *fiber.Ctx) error {
	return mentorBookingAction(c, svc.Bookings.Accept, "Session confirmed.")
}

func RejectBooking(c *fiber.Ctx) error {
	return mentorBookingAction(c, svc.Bookings.Reject, "Session rejected.")
}

func mentorBookingAction(c *fiber.Ctx, action func(mentorID, bookingID uuid.UUID) (*models.SessionBooking, error), message string) error {
	mentorID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID"})
	}

	booking, err := action(mentorID, bookingID)
	if err != nil {
		return bookingActionError(c, err)
	}
	return c.JSON(fiber.Map{"message": message, "booking": booking})
}

func CancelBooking(c *fiber.Ctx) error {
	learnerID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID"})
	}

	booking, err := svc.Bookings.Cancel(learnerID, bookingID)
	if err != nil {
		return bookingActionError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Session cancelled successfully.", "booking": booking})
}

// CaptureBooking is the explicit capture entry point, available to the
// booking's mentor. It converges on the same settlement routine as the
// webhook; capturing an already-settled booking simply reports success.
func CaptureBooking(c *fiber.Ctx) error {
	mentorID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID"})
	}

	var existing models.SessionBooking
	if err := database.DB.First(&existing, "id = ?", bookingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}
	if existing.MentorID != mentorID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not the mentor of this session"})
	}

	booking, err := svc.Settlement.Capture(bookingID)
	if err != nil {
		if errors.Is(err, services.ErrNoPaymentIntent) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		log.Printf("🔥 Capture failed for booking %s: %v", bookingID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Payment capture failed, please try again"})
	}

	return c.JSON(fiber.Map{
		"message": "Session completed and payment captured.",
		"booking": booking,
	})
}

func bookingActionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	case errors.Is(err, services.ErrNotParticipant):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Unauthorized"})
	case errors.Is(err, services.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrCancelWindow):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update booking"})
}
