package mint_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ms-nft-ticketing/internal/auth"
	"ms-nft-ticketing/internal/logger"
	"ms-nft-ticketing/internal/mint"
	"ms-nft-ticketing/internal/utils"
)

type Handler struct {
	MintService *mint.MintService
	Logger      *logger.Logger
}

func NewHandler(service *mint.MintService, log *logger.Logger) *Handler {
	return &Handler{MintService: service, Logger: log}
}

// MintTicket handles POST /user/event/mint.
// Body: {"eventId": "..."}; caller identity comes from the auth middleware.
// The response distinguishes "you already minted this" (409) from "the
// request failed, try again" (502).
func (h *Handler) MintTicket(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, "authentication required", "missing caller identity")
		return
	}

	var body struct {
		EventID string `json:"eventId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if body.EventID == "" {
		h.writeError(w, http.StatusBadRequest, "eventId is required", "empty eventId")
		return
	}

	ticket, err := h.MintService.RequestMint(r.Context(), userID, body.EventID)
	if err != nil {
		switch {
		case errors.Is(err, mint.ErrAlreadyMinted):
			h.writeError(w, http.StatusConflict, "ticket already minted for this event", err.Error())
		case errors.Is(err, mint.ErrMintInProgress):
			h.writeError(w, http.StatusConflict, "a mint for this event is already in progress", err.Error())
		case errors.Is(err, mint.ErrEventNotFound):
			h.writeError(w, http.StatusNotFound, "event not found", err.Error())
		case errors.Is(err, mint.ErrUserNotFound), errors.Is(err, mint.ErrUserInactive):
			h.writeError(w, http.StatusForbidden, "account cannot mint", err.Error())
		default:
			h.Logger.Error("MINT", fmt.Sprintf("Mint request failed for user %s event %s: %v", userID, body.EventID, err))
			h.writeError(w, http.StatusBadGateway, "mint failed, please try again", err.Error())
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ticket minted", map[string]interface{}{
		"ticketId": ticket.ID,
		"eventId":  ticket.EventID,
		"txHash":   ticket.TxHash,
	}))
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, detail string) {
	utils.WriteError(w, status, message, detail)
}
