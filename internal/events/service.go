package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ms-nft-ticketing/internal/issuer"
	"ms-nft-ticketing/internal/logger"
	"ms-nft-ticketing/internal/models"
	"ms-nft-ticketing/internal/utils"
)

// issuerDateFormat is the date layout the issuer expects in its form fields.
const issuerDateFormat = "02-01-2006"

type DBLayer interface {
	CreateEvent(ctx context.Context, event models.Event) error
	GetEventByID(ctx context.Context, eventID string) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	ListEventsByOwner(ctx context.Context, ownerID string) ([]models.Event, error)
}

type IssuerScheduler interface {
	ScheduleEvent(ctx context.Context, request models.IssuerEventRequest) (*models.IssuerEventResponse, error)
}

type Publisher interface {
	PublishEventCreated(event models.Event) error
}

type EventService struct {
	DB     DBLayer
	Issuer IssuerScheduler
	Kafka  Publisher
	Logger *logger.Logger
}

func NewEventService(db DBLayer, scheduler IssuerScheduler, kafka Publisher, log *logger.Logger) *EventService {
	return &EventService{DB: db, Issuer: scheduler, Kafka: kafka, Logger: log}
}

// CreateEvent registers the event with the external issuer first, then
// persists it with the issuer-assigned id. A ValidationError from the issuer
// propagates verbatim so the organizer can correct their input; nothing is
// persisted in that case.
func (s *EventService) CreateEvent(ctx context.Context, event models.Event, organizerEmail string, requestedCodes int, image []byte, imageName string) (*models.Event, error) {
	if event.ID == "" {
		event.ID = utils.GenerateEventID()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	request := models.IssuerEventRequest{
		Name:            event.Name,
		Description:     event.Description,
		City:            event.City,
		Country:         event.Country,
		StartDate:       event.StartDate.Format(issuerDateFormat),
		EndDate:         event.EndDate.Format(issuerDateFormat),
		ExpiryDate:      event.ExpiryDate.Format(issuerDateFormat),
		Year:            event.StartDate.Year(),
		EventURL:        event.EventURL,
		VirtualEvent:    event.Virtual,
		SecretCode:      event.SecretCode,
		EventTemplateID: event.TemplateID,
		Email:           organizerEmail,
		RequestedCodes:  requestedCodes,
		Image:           image,
		ImageName:       imageName,
	}

	response, err := s.Issuer.ScheduleEvent(ctx, request)
	if err != nil {
		var verr *issuer.ValidationError
		if errors.As(err, &verr) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to schedule event with issuer: %w", err)
	}

	event.IssuerEventID = response.ID

	if err := s.DB.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to store event %s: %w", event.ID, err)
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishEventCreated(event); err != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("Failed to publish event created: %v", err))
		}
	}

	s.Logger.LogIssuer("CREATED", fmt.Sprintf("event %s registered with issuer id %d", event.ID, response.ID))
	return &event, nil
}

func (s *EventService) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	event, err := s.DB.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event %s: %w", eventID, err)
	}
	return event, nil
}

func (s *EventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	events, err := s.DB.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (s *EventService) ListEventsByOwner(ctx context.Context, ownerID string) ([]models.Event, error) {
	events, err := s.DB.ListEventsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events for owner %s: %w", ownerID, err)
	}
	return events, nil
}
