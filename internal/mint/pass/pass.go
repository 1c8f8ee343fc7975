package pass

import (
	"encoding/json"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"ms-nft-ticketing/internal/models"
)

const qrSize = 256

// Generator renders the mint-receipt QR stored on a minted ticket. The code
// carries the ticket, event and transaction references so venue scanners can
// verify the mint without a chain lookup.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

type passPayload struct {
	TicketID string `json:"ticketId"`
	EventID  string `json:"eventId"`
	IssuedTo string `json:"issuedTo"`
	TxHash   string `json:"txHash"`
}

func (g *Generator) GenerateMintPass(ticket models.Ticket) ([]byte, error) {
	payload, err := json.Marshal(passPayload{
		TicketID: ticket.ID,
		EventID:  ticket.EventID,
		IssuedTo: ticket.IssuedTo,
		TxHash:   ticket.TxHash,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode pass payload: %w", err)
	}

	png, err := qrcode.Encode(string(payload), qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render pass QR: %w", err)
	}
	return png, nil
}
