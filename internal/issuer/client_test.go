package issuer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-nft-ticketing/internal/config"
	"ms-nft-ticketing/internal/logger"
	"ms-nft-ticketing/internal/models"
)

func setupTokenStore(t *testing.T) (*RedisTokenStore, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, client.Ping(context.Background()).Err())

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return NewRedisTokenStore(client), mr
}

// issuerStub models the issuer's token and events endpoints.
type issuerStub struct {
	tokenCalls  int64
	eventCalls  int64
	tokenStatus int
	tokenBody   string
	eventStatus int
	eventBody   string

	mu        sync.Mutex
	lastForm  map[string]string
	lastImage []byte
	lastAuth  string
}

func newIssuerStub() *issuerStub {
	return &issuerStub{
		tokenStatus: http.StatusOK,
		tokenBody:   `{"access_token":"tok-1","scope":"events","expires_in":3600,"token_type":"Bearer"}`,
		eventStatus: http.StatusOK,
		eventBody:   `{"id":77,"fancy_id":"summer-fest-77","name":"Summer Fest"}`,
	}
}

func (s *issuerStub) server(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/token":
			atomic.AddInt64(&s.tokenCalls, 1)

			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "client_credentials", req["grant_type"])

			w.WriteHeader(s.tokenStatus)
			_, _ = w.Write([]byte(s.tokenBody))

		case "/events":
			atomic.AddInt64(&s.eventCalls, 1)

			require.NoError(t, r.ParseMultipartForm(1<<20))
			s.mu.Lock()
			s.lastAuth = r.Header.Get("Authorization")
			s.lastForm = make(map[string]string)
			for name, values := range r.MultipartForm.Value {
				if len(values) > 0 {
					s.lastForm[name] = values[0]
				}
			}
			if files := r.MultipartForm.File["image"]; len(files) > 0 {
				f, err := files[0].Open()
				require.NoError(t, err)
				buf := make([]byte, files[0].Size)
				_, _ = f.Read(buf)
				s.lastImage = buf
				f.Close()
			}
			s.mu.Unlock()

			w.WriteHeader(s.eventStatus)
			_, _ = w.Write([]byte(s.eventBody))

		default:
			http.NotFound(w, r)
		}
	}))
}

func clientFor(t *testing.T, server *httptest.Server) (*Client, *RedisTokenStore) {
	store, _ := setupTokenStore(t)
	cfg := config.IssuerConfig{
		Audience:     "https://issuer.example",
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		TokenURL:     server.URL + "/oauth/token",
		EventsURL:    server.URL + "/events",
	}
	return NewClient(cfg, server.Client(), store, logger.NewLogger()), store
}

func sampleRequest() models.IssuerEventRequest {
	return models.IssuerEventRequest{
		Name:            "Summer Fest",
		Description:     "Annual summer music festival",
		City:            "Lisbon",
		Country:         "Portugal",
		StartDate:       "01-07-2026",
		EndDate:         "03-07-2026",
		ExpiryDate:      "10-07-2026",
		Year:            2026,
		EventURL:        "https://summerfest.example",
		VirtualEvent:    false,
		SecretCode:      "123456",
		EventTemplateID: "1",
		Email:           "organizer@example.com",
		RequestedCodes:  100,
		Image:           []byte("png-bytes"),
		ImageName:       "pass.png",
	}
}

func TestScheduleEvent_Success(t *testing.T) {
	stub := newIssuerStub()
	server := stub.server(t)
	defer server.Close()

	client, _ := clientFor(t, server)

	resp, err := client.ScheduleEvent(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, 77, resp.ID)
	assert.Equal(t, "summer-fest-77", resp.FancyID)

	stub.mu.Lock()
	defer stub.mu.Unlock()
	assert.Equal(t, "Bearer tok-1", stub.lastAuth)
	assert.Equal(t, "Summer Fest", stub.lastForm["name"])
	assert.Equal(t, "Lisbon", stub.lastForm["city"])
	assert.Equal(t, "false", stub.lastForm["virtual_event"])
	assert.Equal(t, "2026", stub.lastForm["year"])
	assert.Equal(t, "100", stub.lastForm["requested_codes"])
	assert.Equal(t, []byte("png-bytes"), stub.lastImage)
}

func TestScheduleEvent_TokenEndpoint400IsValidationError(t *testing.T) {
	stub := newIssuerStub()
	stub.tokenStatus = http.StatusBadRequest
	stub.tokenBody = `{"message":"bad audience"}`
	server := stub.server(t)
	defer server.Close()

	client, _ := clientFor(t, server)

	_, err := client.ScheduleEvent(context.Background(), sampleRequest())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "bad audience", verr.Message)
	assert.EqualValues(t, 0, atomic.LoadInt64(&stub.eventCalls), "no event submission without a token")
}

func TestScheduleEvent_Events400IsValidationError(t *testing.T) {
	stub := newIssuerStub()
	stub.eventStatus = http.StatusBadRequest
	stub.eventBody = `{"message":"event name already taken"}`
	server := stub.server(t)
	defer server.Close()

	client, _ := clientFor(t, server)

	_, err := client.ScheduleEvent(context.Background(), sampleRequest())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "event name already taken", verr.Message)
}

func TestScheduleEvent_ServerErrorIsRequestFailed(t *testing.T) {
	stub := newIssuerStub()
	stub.eventStatus = http.StatusInternalServerError
	stub.eventBody = `oops`
	server := stub.server(t)
	defer server.Close()

	client, _ := clientFor(t, server)

	_, err := client.ScheduleEvent(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, ErrRequestFailed)

	var verr *ValidationError
	assert.False(t, errors.As(err, &verr), "a 5xx must not be classified as a validation error")
}

func TestScheduleEvent_ReusesCachedToken(t *testing.T) {
	stub := newIssuerStub()
	server := stub.server(t)
	defer server.Close()

	client, _ := clientFor(t, server)

	_, err := client.ScheduleEvent(context.Background(), sampleRequest())
	require.NoError(t, err)
	_, err = client.ScheduleEvent(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.EqualValues(t, 1, atomic.LoadInt64(&stub.tokenCalls), "second call must reuse the cached token")
	assert.EqualValues(t, 2, atomic.LoadInt64(&stub.eventCalls))
}

func TestScheduleEvent_ExpiredTokenIsRegenerated(t *testing.T) {
	stub := newIssuerStub()
	server := stub.server(t)
	defer server.Close()

	client, store := clientFor(t, server)

	// Seed a token that is already inside the expiry buffer
	require.NoError(t, store.SetToken(context.Background(), "stale", 1))
	time.Sleep(10 * time.Millisecond)

	_, err := client.ScheduleEvent(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.EqualValues(t, 1, atomic.LoadInt64(&stub.tokenCalls), "expired token must be regenerated, never reused")

	stub.mu.Lock()
	defer stub.mu.Unlock()
	assert.Equal(t, "Bearer tok-1", stub.lastAuth)
}

func TestScheduleEvent_ConcurrentExpiryTriggersSingleRefresh(t *testing.T) {
	stub := newIssuerStub()
	server := stub.server(t)
	defer server.Close()

	client, _ := clientFor(t, server)

	const numGoroutines = 8
	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.ScheduleEvent(context.Background(), sampleRequest())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt64(&stub.tokenCalls),
		"concurrent expirations must trigger exactly one token generation")
	assert.EqualValues(t, numGoroutines, atomic.LoadInt64(&stub.eventCalls))
}
