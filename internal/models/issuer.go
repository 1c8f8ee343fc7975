package models

// AuthToken is the transient credential returned by the issuer's
// client-credentials exchange. It is owned by the issuer client alone and
// must be regenerated once ExpiresIn elapses.
type AuthToken struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// IssuerEventRequest is the multipart payload for the issuer's event
// creation endpoint. Dates are formatted strings because the issuer API
// takes them verbatim.
type IssuerEventRequest struct {
	Name            string
	Description     string
	City            string
	Country         string
	StartDate       string
	EndDate         string
	ExpiryDate      string
	Year            int
	EventURL        string
	VirtualEvent    bool
	SecretCode      string
	EventTemplateID string
	Email           string
	RequestedCodes  int

	// PNG bytes of the event pass image and the filename reported in the
	// multipart part.
	Image     []byte
	ImageName string
}

type IssuerEventResponse struct {
	ID      int    `json:"id"`
	FancyID string `json:"fancy_id"`
	Name    string `json:"name"`
}
