package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MentorAvailability struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	MentorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_availability_mentor_slot" json:"mentor_id"`

	Date      time.Time `gorm:"type:date;not null;uniqueIndex:idx_availability_mentor_slot" json:"date"`
	StartTime time.Time `gorm:"not null;uniqueIndex:idx_availability_mentor_slot" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`

	IsBooked     bool            `gorm:"default:false" json:"is_booked"`
	SessionPrice decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"session_price"`
	Currency     string          `gorm:"size:3;not null;default:'USD'" json:"currency"`

	Mentor User `gorm:"foreignkey:MentorID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
