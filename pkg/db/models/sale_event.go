package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pos-backend/pkg/enums"
)

// SaleEvent is an append-only journal row written alongside each sale mutation.
type SaleEvent struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventType   enums.SaleEventType `gorm:"column:event_type;type:sale_event_type;not null"`
	SaleID      uuid.UUID           `gorm:"column:sale_id;type:uuid;not null"`
	ActorUserID uuid.UUID           `gorm:"column:actor_user_id;type:uuid;not null"`
	Payload     json.RawMessage     `gorm:"column:payload;type:jsonb;not null"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (e *SaleEvent) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
