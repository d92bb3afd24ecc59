package notifier

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"studymail/internal/models"
	"studymail/internal/testutil"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testReq = models.NotificationRequest{Date: "2024-01-01", Secs: 3600, Coins: 5}

func newSendGrid(url string) *SendGridNotifier {
	return NewSendGridNotifier(&http.Client{Timeout: 5 * time.Second}, url+"/", "SG.key", "me@example.com", "you@example.com", &testutil.MockLogger{})
}

func TestSendGrid_Accepted(t *testing.T) {
	var got sendGridPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer SG.key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	err := newSendGrid(srv.URL).Send(WithDispatchID(context.Background(), "d-1"), testReq)

	require.NoError(t, err)
	require.Len(t, got.Personalizations, 1)
	assert.Equal(t, "you@example.com", got.Personalizations[0].To[0].Email)
	assert.Equal(t, "me@example.com", got.From.Email)
	assert.Equal(t, "[Study Timer] 2024-01-01 study report", got.Subject)
	assert.Contains(t, got.Content[0].Value, "01:00:00")
	assert.Equal(t, "d-1", got.CustomArgs["dispatch_id"])
}

func TestSendGrid_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"errors":[{"message":"bad from"}]}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	err := newSendGrid(srv.URL).Send(context.Background(), testReq)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestSendGrid_ServerErrorRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	err := newSendGrid(srv.URL).Send(context.Background(), testReq)

	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSendGrid_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := newSendGrid(srv.URL).Send(context.Background(), testReq)

	require.Error(t, err)
	assert.Equal(t, int32(sendGridMaxAttempts), calls.Load())
}

func TestSendGrid_ContextCancelStopsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := newSendGrid(srv.URL).Send(ctx, testReq)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
