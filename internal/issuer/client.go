package issuer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"sync"

	"ms-nft-ticketing/internal/config"
	"ms-nft-ticketing/internal/logger"
	"ms-nft-ticketing/internal/models"
)

// Client talks to the external proof-of-attendance issuer. It owns the
// bearer token lifecycle: cached until expiry, refreshed under a mutex so
// concurrent expirations trigger at most one exchange. It performs no
// retries; retry policy belongs to the caller.
type Client struct {
	cfg    config.IssuerConfig
	client *http.Client
	tokens TokenStore
	logger *logger.Logger

	refreshMu sync.Mutex
}

func NewClient(cfg config.IssuerConfig, httpClient *http.Client, tokens TokenStore, log *logger.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		cfg:    cfg,
		client: httpClient,
		tokens: tokens,
		logger: log,
	}
}

type tokenRequest struct {
	Audience     string `json:"audience"`
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type issuerErrorBody struct {
	Message string `json:"message"`
}

// bearerToken returns a valid access token, generating a fresh one when the
// cache is empty or expired. The mutex plus re-check keeps concurrent
// expirations down to a single token-generation request.
func (c *Client) bearerToken(ctx context.Context) (string, error) {
	if cached, err := c.tokens.GetToken(ctx); err == nil && cached.IsValid() {
		return cached.Token, nil
	} else if err != nil {
		c.logger.Warn("ISSUER", fmt.Sprintf("Token cache read failed: %v", err))
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// Another caller may have refreshed while we waited for the mutex
	if cached, err := c.tokens.GetToken(ctx); err == nil && cached.IsValid() {
		return cached.Token, nil
	}

	token, err := c.GenerateToken(ctx)
	if err != nil {
		return "", err
	}

	if err := c.tokens.SetToken(ctx, token.AccessToken, token.ExpiresIn); err != nil {
		c.logger.Warn("ISSUER", fmt.Sprintf("Failed to cache issuer token: %v", err))
	}

	return token.AccessToken, nil
}

// GenerateToken performs the client-credentials exchange against the issuer.
func (c *Client) GenerateToken(ctx context.Context) (*models.AuthToken, error) {
	c.logger.Debug("ISSUER", "Generating issuer auth token")

	payload := tokenRequest{
		Audience:     c.cfg.Audience,
		GrantType:    "client_credentials",
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request error: %w", ErrRequestFailed)
	}
	defer c.closeBody(resp.Body)

	if resp.StatusCode == http.StatusBadRequest {
		return nil, c.validationError(resp.Body)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("ISSUER", fmt.Sprintf("Token endpoint returned status %d", resp.StatusCode))
		return nil, fmt.Errorf("token endpoint returned status %d: %w", resp.StatusCode, ErrRequestFailed)
	}

	var token models.AuthToken
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", ErrRequestFailed)
	}

	return &token, nil
}

// ScheduleEvent registers an event with the issuer via its multipart events
// endpoint.
func (c *Client) ScheduleEvent(ctx context.Context, request models.IssuerEventRequest) (*models.IssuerEventResponse, error) {
	token, err := c.bearerToken(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := map[string]string{
		"name":              request.Name,
		"description":       request.Description,
		"city":              request.City,
		"country":           request.Country,
		"start_date":        request.StartDate,
		"end_date":          request.EndDate,
		"expiry_date":       request.ExpiryDate,
		"year":              strconv.Itoa(request.Year),
		"event_url":         request.EventURL,
		"virtual_event":     strconv.FormatBool(request.VirtualEvent),
		"secret_code":       request.SecretCode,
		"event_template_id": request.EventTemplateID,
		"email":             request.Email,
		"requested_codes":   strconv.Itoa(request.RequestedCodes),
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}

	if len(request.Image) > 0 {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, request.ImageName))
		header.Set("Content-Type", "image/png")
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := part.Write(request.Image); err != nil {
			return nil, fmt.Errorf("failed to write image part: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.EventsURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create events request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	c.logger.LogIssuer("SCHEDULE", fmt.Sprintf("submitting event %q to issuer", request.Name))

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("ISSUER", fmt.Sprintf("Events request error: %v", err))
		return nil, fmt.Errorf("events request error: %w", ErrRequestFailed)
	}
	defer c.closeBody(resp.Body)

	if resp.StatusCode == http.StatusBadRequest {
		return nil, c.validationError(resp.Body)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Error("ISSUER", fmt.Sprintf("Events endpoint returned status %d", resp.StatusCode))
		return nil, fmt.Errorf("events endpoint returned status %d: %w", resp.StatusCode, ErrRequestFailed)
	}

	var response models.IssuerEventResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode events response: %w", ErrRequestFailed)
	}

	c.logger.LogIssuer("SCHEDULED", fmt.Sprintf("issuer accepted event %q with id %d", request.Name, response.ID))
	return &response, nil
}

// validationError surfaces the issuer's own message for a 400 response.
func (c *Client) validationError(body io.Reader) error {
	var parsed issuerErrorBody
	if err := json.NewDecoder(body).Decode(&parsed); err != nil || parsed.Message == "" {
		return &ValidationError{Message: "issuer rejected the request"}
	}
	return &ValidationError{Message: parsed.Message}
}

func (c *Client) closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		c.logger.Error("ISSUER", fmt.Sprintf("Failed to close issuer response body: %v", err))
	}
}
