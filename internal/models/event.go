package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID          string    `bun:"id,pk" json:"id"`
	OwnerID     string    `bun:"owner_id,notnull" json:"ownerId"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description string    `bun:"description,nullzero" json:"description"`
	City        string    `bun:"city,nullzero" json:"city"`
	Country     string    `bun:"country,nullzero" json:"country"`
	StartDate   time.Time `bun:"start_date,notnull" json:"startDate"`
	EndDate     time.Time `bun:"end_date,notnull" json:"endDate"`
	ExpiryDate  time.Time `bun:"expiry_date,nullzero" json:"expiryDate"`
	EventURL    string    `bun:"event_url,nullzero" json:"eventUrl"`
	Virtual     bool      `bun:"virtual_event,notnull,default:false" json:"virtualEvent"`
	TemplateID  string    `bun:"event_template_id,nullzero" json:"eventTemplateId"`
	SecretCode  string    `bun:"secret_code,nullzero" json:"-"`
	ImageURL    string    `bun:"image_url,nullzero" json:"imageUrl"`

	// Identifier assigned by the external issuer once the event has been
	// scheduled there. Zero until registration succeeds.
	IssuerEventID int `bun:"issuer_event_id,nullzero" json:"issuerEventId,omitempty"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updatedAt"`
}
