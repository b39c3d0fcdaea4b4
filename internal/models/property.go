package models

import (
	"time"

	"github.com/google/uuid"
)

type Property struct {
	ID           uuid.UUID `json:"id"`
	ManagerID    uuid.UUID `json:"manager_id"`
	PropertyName string    `json:"property_name"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	ZipCode      string    `json:"zip_code"`
	TimeZone     string    `json:"timezone"`
	ManagerPhone *string   `json:"manager_phone,omitempty"`
	ManagerEmail *string   `json:"manager_email,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
