package notification

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleActivity() *ActivityMessage {
	return &ActivityMessage{
		Category:    "external",
		FromAddress: "0xaaa",
		ToAddress:   "0xbbb",
	}
}

func TestSlackSendActivity(t *testing.T) {
	var received SlackMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := NewSlackSender().SendActivity(server.URL, sampleActivity())
	require.NoError(t, err)

	require.Len(t, received.Attachments, 1)
	fields := received.Attachments[0].Fields
	require.Len(t, fields, 3)
	assert.Equal(t, "external", fields[0].Value)
	assert.Equal(t, "0xaaa", fields[1].Value)
	assert.Equal(t, "0xbbb", fields[2].Value)
}

func TestSlackSendActivityNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	err := NewSlackSender().SendActivity(server.URL, sampleActivity())
	assert.Error(t, err)
}

func TestDiscordSendActivity(t *testing.T) {
	var received DiscordMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))
		// Discord Webhook成功时返回204
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	err := NewDiscordSender().SendActivity(server.URL, sampleActivity())
	require.NoError(t, err)

	require.Len(t, received.Embeds, 1)
	fields := received.Embeds[0].Fields
	require.Len(t, fields, 3)
	assert.Equal(t, "external", fields[0].Value)
	assert.Equal(t, "0xaaa", fields[1].Value)
	assert.Equal(t, "0xbbb", fields[2].Value)
}
