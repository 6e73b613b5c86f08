package notifications

import (
	"log"

	"github.com/mentorlink/mentorlink/models"
	"gorm.io/gorm"
)

// NotifyAdmins records an operator-visible notification. Fire-and-forget: a
// failed write is logged loudly but never propagates into the financial path
// that triggered it.
func NotifyAdmins(db *gorm.DB, message string) {
	notification := models.AdminNotification{Message: message}
	if err := db.Create(&notification).Error; err != nil {
		log.Printf("🔥 Failed to record admin notification %q: %v", message, err)
		return
	}
	log.Printf("📣 Admin notification: %s", message)
}
