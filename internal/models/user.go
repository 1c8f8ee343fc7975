package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User account statuses. ACTIVE is the only state in which a user may mint.
const (
	UserStatusActive      = 1
	UserStatusDeactivated = 2
	UserStatusBanned      = 3
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID            string `bun:"id,pk" json:"id"`
	Email         string `bun:"email,unique,notnull" json:"email"`
	Nonce         int64  `bun:"nonce,notnull,default:0" json:"nonce"`
	Status        int    `bun:"status,notnull,default:1" json:"status"`
	DefaultWallet string `bun:"default_wallet,notnull" json:"defaultWallet"`

	// Postgres text[] columns. Tickets the user has minted, tickets redeemed
	// at the venue, and wallet addresses linked from the dashboard.
	TicketsBrought    []string `bun:"tickets_brought,array" json:"ticketsBrought"`
	TicketsBurned     []string `bun:"tickets_burned,array" json:"ticketsBurned"`
	AccountsConnected []string `bun:"accounts_connected,array" json:"accountsConnected"`
	Events            []string `bun:"events,array" json:"events"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updatedAt"`
}
