package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON_SuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteJSON(rec, http.StatusCreated, SuccessResponse("event created", map[string]interface{}{"id": "evt-1"}))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "event created", resp.Message)
	assert.Empty(t, resp.Error)
}

func TestWriteError_FailureEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteError(rec, http.StatusConflict, "ticket already minted for this event", "tkt-1")

	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "ticket already minted for this event", resp.Message)
	assert.Equal(t, "tkt-1", resp.Error)
	assert.Nil(t, resp.Data)
}
