package pass

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-nft-ticketing/internal/models"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47}

func TestGenerateMintPass(t *testing.T) {
	g := NewGenerator()

	png, err := g.GenerateMintPass(models.Ticket{
		ID:       "tkt-1",
		EventID:  "event-1",
		IssuedTo: "user-1",
		TxHash:   "0xHASH",
	})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(png, pngHeader), "pass must be a PNG image")
	assert.Greater(t, len(png), len(pngHeader))
}

func TestGenerateMintPass_DeterministicForSameTicket(t *testing.T) {
	g := NewGenerator()
	ticket := models.Ticket{ID: "tkt-1", EventID: "event-1", IssuedTo: "user-1", TxHash: "0xHASH"}

	first, err := g.GenerateMintPass(ticket)
	require.NoError(t, err)
	second, err := g.GenerateMintPass(ticket)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
