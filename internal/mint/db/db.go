package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"ms-nft-ticketing/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// GetTicketByUserAndEvent returns the ticket for a (user, event) pair, or
// nil when none exists yet.
func (d *DB) GetTicketByUserAndEvent(ctx context.Context, userID, eventID string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := d.Bun.NewSelect().
		Model(&ticket).
		Where("issued_to = ?", userID).
		Where("event_id = ?", eventID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (d *DB) CreateTicket(ctx context.Context, ticket models.Ticket) error {
	_, err := d.Bun.NewInsert().Model(&ticket).Exec(ctx)
	return err
}

// MarkTicketMinted flips the minted flag and records the transaction hash and
// QR pass. It only touches unminted rows, so a minted ticket stays immutable.
func (d *DB) MarkTicketMinted(ctx context.Context, ticket models.Ticket) error {
	ticket.Minted = true
	ticket.UpdatedAt = time.Now()
	res, err := d.Bun.NewUpdate().
		Model(&ticket).
		Column("minted", "tx_hash", "qr_code", "updated_at").
		Where("id = ?", ticket.ID).
		Where("minted = ?", false).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.New("ticket already minted or missing")
	}
	return nil
}

func (d *DB) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("id = ?", userID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// recordMintedTicketQuery builds the commit statement for a minted ticket.
// The append and the nonce bump happen inside one UPDATE: the pair lock only
// serializes attempts for the same event, so two mints by the same user for
// different events can commit concurrently and must not overwrite each
// other's ticket reference.
func (d *DB) recordMintedTicketQuery(userID, ticketID string) *bun.UpdateQuery {
	return d.Bun.NewUpdate().
		Model((*models.User)(nil)).
		Set("tickets_brought = array_append(tickets_brought, ?)", ticketID).
		Set("nonce = nonce + 1").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", userID)
}

// RecordMintedTicket appends the ticket to the user's brought collection and
// bumps the nonce.
func (d *DB) RecordMintedTicket(ctx context.Context, userID, ticketID string) error {
	res, err := d.recordMintedTicketQuery(userID, ticketID).Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// EventExists checks if an event with the given ID exists in the database
func (d *DB) EventExists(ctx context.Context, eventID string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Event)(nil)).
		Where("id = ?", eventID).
		Exists(ctx)
}
