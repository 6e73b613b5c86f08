package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/mentorlink/mentorlink/database"
	"github.com/mentorlink/mentorlink/models"
	"github.com/mentorlink/mentorlink/notifications"
)

// MarkNoShowSessions flags confirmed sessions that ended more than a day ago
// and were never completed. The payment stays holding; an operator decides
// between capture and refund from the admin surface.
func MarkNoShowSessions() {
	log.Println("Running job: MarkNoShowSessions...")

	cutoff := time.Now().Add(-24 * time.Hour)

	var staleBookings []models.SessionBooking
	err := database.DB.
		Where("status = ? AND end_time < ?", models.BookingStatusConfirmed, cutoff).
		Find(&staleBookings).Error
	if err != nil {
		log.Printf("🔥 Error checking for no-show sessions: %v", err)
		return
	}

	if len(staleBookings) == 0 {
		return
	}

	for _, booking := range staleBookings {
		err := database.DB.Model(&models.SessionBooking{}).
			Where("id = ? AND status = ?", booking.ID, models.BookingStatusConfirmed).
			Update("status", models.BookingStatusNoShow).Error
		if err != nil {
			log.Printf("🔥 Failed to mark booking %s as no-show: %v", booking.ID, err)
			continue
		}
		go notifications.NotifyAdmins(database.DB, fmt.Sprintf(
			"Session %s ended over 24h ago without completion; marked no_show. Payment is still holding and needs a capture or refund decision.", booking.ID))
	}

	log.Printf("Marked %d booking(s) as no_show.", len(staleBookings))
}
