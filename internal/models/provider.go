package models

import (
	"time"

	"github.com/google/uuid"
)

// Provider is a service provider (cleaner, maintenance, emergency
// contractor) who can be granted standing access to a property.
type Provider struct {
	ID          uuid.UUID `json:"id"`
	CompanyName string    `json:"company_name"`
	ContactName string    `json:"contact_name"`
	PhoneNumber string    `json:"phone_number"`
	Email       *string   `json:"email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
