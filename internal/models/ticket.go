package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Ticket binds one user to one event. Minted starts false and flips to true
// exactly once; the (issued_to, event_id) pair is unique at the schema level.
type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	ID       string `bun:"id,pk" json:"id"`
	IssuedTo string `bun:"issued_to,notnull" json:"issuedTo"`
	EventID  string `bun:"event_id,notnull" json:"eventId"`
	Minted   bool   `bun:"minted,notnull,default:false" json:"minted"`
	TxHash   string `bun:"tx_hash,nullzero" json:"txHash,omitempty"`
	QRCode   []byte `bun:"qr_code,nullzero" json:"-"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updatedAt"`
}
