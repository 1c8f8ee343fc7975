package events_api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"ms-nft-ticketing/internal/auth"
	"ms-nft-ticketing/internal/events"
	"ms-nft-ticketing/internal/issuer"
	"ms-nft-ticketing/internal/logger"
	"ms-nft-ticketing/internal/models"
	"ms-nft-ticketing/internal/utils"
)

const (
	requestDateFormat = "2006-01-02"
	maxImageBytes     = 5 << 20
)

type Handler struct {
	EventService *events.EventService
	Logger       *logger.Logger
}

func NewHandler(service *events.EventService, log *logger.Logger) *Handler {
	return &Handler{EventService: service, Logger: log}
}

// GetEvents handles GET /user/event. An owner query param narrows the list
// to one organizer's events.
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	var list []models.Event
	var err error
	if owner := r.URL.Query().Get("owner"); owner != "" {
		list, err = h.EventService.ListEventsByOwner(r.Context(), owner)
	} else {
		list, err = h.EventService.ListEvents(r.Context())
	}
	if err != nil {
		h.Logger.Error("EVENT", fmt.Sprintf("Failed to list events: %v", err))
		h.writeError(w, http.StatusInternalServerError, "failed to list events", err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("success", map[string]interface{}{
		"events": list,
	}))
}

// GetEvent handles GET /user/event/{eventId}.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	event, err := h.EventService.GetEvent(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("EVENT", fmt.Sprintf("Failed to load event %s: %v", eventID, err))
		h.writeError(w, http.StatusInternalServerError, "failed to load event", err.Error())
		return
	}
	if event == nil {
		h.writeError(w, http.StatusNotFound, "event not found", eventID)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("success", map[string]interface{}{
		"event": event,
	}))
}

// CreateEvent handles POST /user/event. Multipart form with the event fields
// and an eventPassImage file attachment forwarded to the issuer.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, "authentication required", "missing caller identity")
		return
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid multipart form", err.Error())
		return
	}

	event := models.Event{
		OwnerID:     userID,
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		City:        r.FormValue("city"),
		Country:     r.FormValue("country"),
		EventURL:    r.FormValue("event_url"),
		TemplateID:  r.FormValue("event_template_id"),
		SecretCode:  r.FormValue("secret_code"),
		Virtual:     r.FormValue("virtual_event") == "true",
	}

	if event.Name == "" {
		h.writeError(w, http.StatusBadRequest, "name is required", "empty name")
		return
	}

	var err error
	if event.StartDate, err = time.Parse(requestDateFormat, r.FormValue("start_date")); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid start_date", err.Error())
		return
	}
	if event.EndDate, err = time.Parse(requestDateFormat, r.FormValue("end_date")); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid end_date", err.Error())
		return
	}
	if expiry := r.FormValue("expiry_date"); expiry != "" {
		if event.ExpiryDate, err = time.Parse(requestDateFormat, expiry); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid expiry_date", err.Error())
			return
		}
	} else {
		event.ExpiryDate = event.EndDate.AddDate(0, 0, 7)
	}

	requestedCodes := 100
	if raw := r.FormValue("requested_codes"); raw != "" {
		if requestedCodes, err = strconv.Atoi(raw); err != nil || requestedCodes < 0 {
			h.writeError(w, http.StatusBadRequest, "invalid requested_codes", raw)
			return
		}
	}

	var image []byte
	imageName := "event-pass.png"
	if file, header, ferr := r.FormFile("eventPassImage"); ferr == nil {
		defer file.Close()
		if image, err = io.ReadAll(io.LimitReader(file, maxImageBytes)); err != nil {
			h.writeError(w, http.StatusBadRequest, "failed to read event pass image", err.Error())
			return
		}
		imageName = header.Filename
	}

	created, err := h.EventService.CreateEvent(r.Context(), event, r.FormValue("email"), requestedCodes, image, imageName)
	if err != nil {
		var verr *issuer.ValidationError
		switch {
		case errors.As(err, &verr):
			h.writeError(w, http.StatusBadRequest, verr.Message, verr.Message)
		case errors.Is(err, issuer.ErrRequestFailed):
			h.Logger.Error("EVENT", fmt.Sprintf("Issuer unavailable: %v", err))
			h.writeError(w, http.StatusBadGateway, "event registration failed, please try again", err.Error())
		default:
			h.Logger.Error("EVENT", fmt.Sprintf("Failed to create event: %v", err))
			h.writeError(w, http.StatusInternalServerError, "failed to create event", err.Error())
		}
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("event created", map[string]interface{}{
		"event": created,
	}))
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, detail string) {
	utils.WriteError(w, status, message, detail)
}
