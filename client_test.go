package ttsmaker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient returns a client pointed at a test server, plus a counter of
// requests the server received.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(WithBaseURL(srv.URL), WithToken("test_token"))
	require.NoError(t, err)

	return client, &calls
}

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient()
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, DefaultToken, client.token)
	assert.Equal(t, FormatMP3, client.defaults.format)
	assert.Equal(t, 1.0, client.defaults.speed)
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	for _, baseURL := range []string{"", "not a url", "ftp://example.com", "https://"} {
		_, err := NewClient(WithBaseURL(baseURL))

		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "base URL %q", baseURL)
		assert.Equal(t, "base_url", verr.Field)
	}
}

func TestNewClient_InvalidDefaults(t *testing.T) {
	_, err := NewClient(WithDefaultSpeed(3.0))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "audio_speed", verr.Field)
}

func TestCreateTTSOrder_EmptyText(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.CreateTTSOrder(context.Background(), "", 1504)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "text", verr.Field)
	assert.Zero(t, calls.Load(), "validation failures must not reach the network")
}

func TestCreateTTSOrder_TextTooLong(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.CreateTTSOrder(context.Background(), strings.Repeat("a", MaxTextLength+1), 1504)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "text", verr.Field)
	assert.Zero(t, calls.Load())
}

func TestCreateTTSOrder_NonPositiveVoiceID(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	for _, voiceID := range []int{0, -1, -1504} {
		_, err := client.CreateTTSOrder(context.Background(), "hello", voiceID)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "voice ID %d", voiceID)
		assert.Equal(t, "voice_id", verr.Field)
	}

	assert.Zero(t, calls.Load())
}

func TestCreateTTSOrder_InvalidTuningParameters(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	tests := []struct {
		field string
		opt   OrderOption
	}{
		{"audio_format", WithFormat("wav")},
		{"audio_speed", WithSpeed(0.1)},
		{"audio_speed", WithSpeed(2.5)},
		{"audio_volume", WithVolume(-1)},
		{"audio_volume", WithVolume(11)},
		{"text_paragraph_pause_time", WithParagraphPause(100)},
		{"text_paragraph_pause_time", WithParagraphPause(9000)},
	}

	for _, tt := range tests {
		_, err := client.CreateTTSOrder(context.Background(), "hello", 1504, tt.opt)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "field %s", tt.field)
		assert.Equal(t, tt.field, verr.Field)
	}

	assert.Zero(t, calls.Load())
}

func TestCreateTTSOrder_InlineAudio(t *testing.T) {
	audio := []byte{0x00, 0x01, 0x02}

	var got createOrderRequest
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/create-tts-order", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(audio)
	})

	order, err := client.CreateTTSOrder(context.Background(), "hello", 1504)
	require.NoError(t, err)
	require.Equal(t, int32(1), calls.Load())

	assert.Equal(t, "test_token", got.Token)
	assert.Equal(t, "hello", got.Text)
	assert.Equal(t, 1504, got.VoiceID)
	assert.Equal(t, FormatMP3, got.AudioFormat)
	assert.Equal(t, 1.0, got.AudioSpeed)

	assert.True(t, order.Inline())
	assert.Equal(t, FormatMP3, order.Format())
	assert.Empty(t, order.AudioFileURL())
}

func TestCreateTTSOrder_OrderOptionsOverrideDefaults(t *testing.T) {
	var got createOrderRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "audio/ogg")
		w.Write([]byte{0xff})
	})

	_, err := client.CreateTTSOrder(context.Background(), "hello", 1504,
		WithFormat(FormatOGG),
		WithSpeed(1.5),
		WithVolume(8),
		WithParagraphPause(1000),
	)
	require.NoError(t, err)

	assert.Equal(t, FormatOGG, got.AudioFormat)
	assert.Equal(t, 1.5, got.AudioSpeed)
	assert.Equal(t, 8.0, got.AudioVolume)
	assert.Equal(t, 1000, got.TextParagraphPauseTime)
}

func TestCreateTTSOrder_RemoteAudio(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "success",
			"audio_file_url": "https://example.com/a.mp3",
			"audio_file_type": "mp3",
			"tts_order_characters": 5,
			"unix_timestamp": 1700000000
		}`))
	})

	order, err := client.CreateTTSOrder(context.Background(), "hello", 1504)
	require.NoError(t, err)

	assert.False(t, order.Inline())
	assert.Equal(t, "https://example.com/a.mp3", order.AudioFileURL())
	assert.Equal(t, FormatMP3, order.Format())
	assert.Equal(t, 5, order.OrderCharacters())
	assert.Equal(t, int64(1700000000), order.CreatedAt().Unix())
}

func TestCreateTTSOrder_ServiceErrorOn500(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "internal"}`))
	})

	_, err := client.CreateTTSOrder(context.Background(), "hello", 1504)

	var serr *ServiceError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusInternalServerError, serr.StatusCode)
	assert.Contains(t, serr.Message, "internal")
	assert.Contains(t, err.Error(), "internal")
}

func TestCreateTTSOrder_ServiceErrorOnFailedStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "failed", "error_code": 101, "error_details": "voice not found"}`))
	})

	_, err := client.CreateTTSOrder(context.Background(), "hello", 99999)

	var serr *ServiceError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusOK, serr.StatusCode)
	assert.Equal(t, 101, serr.Code)
	assert.Contains(t, serr.Message, "voice not found")
}

func TestCreateTTSOrder_ServiceErrorOnMissingURL(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "success"}`))
	})

	_, err := client.CreateTTSOrder(context.Background(), "hello", 1504)

	var serr *ServiceError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Message, "audio_file_url")
}

func TestCreateTTSOrder_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := NewClient(WithBaseURL(srv.URL))
	require.NoError(t, err)
	srv.Close()

	_, err = client.CreateTTSOrder(context.Background(), "hello", 1504)

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "create-tts-order", terr.Op)
	assert.Error(t, errors.Unwrap(err))
}
