package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mentorlink/mentorlink/database"
	"github.com/mentorlink/mentorlink/models"
	"github.com/shopspring/decimal"
)

type CreateAvailabilityRequest struct {
	Date         string `json:"date" validate:"required"`       // 2006-01-02
	StartTime    string `json:"start_time" validate:"required"` // RFC 3339
	EndTime      string `json:"end_time" validate:"required"`
	SessionPrice string `json:"session_price" validate:"required"`
}

func CreateAvailability(c *fiber.Ctx) error {
	mentorID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req CreateAvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date, expected YYYY-MM-DD"})
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid start_time, expected RFC 3339"})
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid end_time, expected RFC 3339"})
	}
	if !end.After(start) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_time must be after start_time"})
	}

	price, err := decimal.NewFromString(req.SessionPrice)
	if err != nil || !price.IsPositive() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "session_price must be a positive amount"})
	}

	slot := models.MentorAvailability{
		MentorID:     mentorID,
		Date:         date,
		StartTime:    start,
		EndTime:      end,
		SessionPrice: price,
		Currency:     "USD",
	}
	if err := database.DB.Create(&slot).Error; err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A slot already exists at this time"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"slot": slot})
}

func ListAvailability(c *fiber.Ctx) error {
	q := database.DB.Order("date ASC, start_time ASC")

	if mentorParam := c.Query("mentor"); mentorParam != "" {
		mentorID, err := uuid.Parse(mentorParam)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mentor ID"})
		}
		q = q.Where("mentor_id = ?", mentorID)
	}
	if dateParam := c.Query("date"); dateParam != "" {
		q = q.Where("date = ?", dateParam)
	}
	if c.Query("available") == "true" {
		q = q.Where("is_booked = ?", false)
	}

	var slots []models.MentorAvailability
	if err := q.Find(&slots).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load availability"})
	}
	return c.JSON(fiber.Map{"slots": slots})
}
