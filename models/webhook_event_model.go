package models

import (
	"time"

	"github.com/google/uuid"
)

// WebhookEvent is recorded before any handler runs. The unique event id makes
// provider redelivery visible at the boundary, in addition to the per-booking
// idempotency guard in the settlement coordinator.
type WebhookEvent struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	StripeEventID string    `gorm:"size:255;not null;unique" json:"stripe_event_id"`
	Type          string    `gorm:"size:100;not null" json:"type"`

	Processed       bool    `gorm:"default:false" json:"processed"`
	ProcessingError *string `gorm:"type:text" json:"processing_error"`

	ReceivedAt time.Time `gorm:"autoCreateTime" json:"received_at"`
}
