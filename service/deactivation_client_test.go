package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"gatewaymonitor/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeactivationClient_SuccessStatuses(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusAccepted, http.StatusNoContent} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				assert.Equal(t, http.MethodPut, r.Method)
				body, err := io.ReadAll(r.Body)
				assert.NoError(t, err)
				assert.Empty(t, body)
				w.WriteHeader(status)
			}))
			defer server.Close()

			client := NewDeactivationClient(NewHTTPClient(5 * time.Second))
			result := client.Deactivate(context.Background(), server.URL+"/gateways/getnet/deactivate")

			assert.Equal(t, models.DeactivationSucceeded, result.Outcome)
			assert.Equal(t, status, result.StatusCode)
			assert.NoError(t, result.Err)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		})
	}
}

func TestDeactivationClient_FailedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("maintenance"))
	}))
	defer server.Close()

	client := NewDeactivationClient(NewHTTPClient(5 * time.Second))
	result := client.Deactivate(context.Background(), server.URL)

	assert.Equal(t, models.DeactivationFailedStatus, result.Outcome)
	assert.Equal(t, http.StatusServiceUnavailable, result.StatusCode)
	assert.False(t, result.Succeeded())
}

func TestDeactivationClient_RedirectStatusIsNotSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer server.Close()

	result := NewDeactivationClient(NewHTTPClient(5*time.Second)).Deactivate(context.Background(), server.URL)

	assert.Equal(t, models.DeactivationFailedStatus, result.Outcome)
	assert.Equal(t, http.StatusNotModified, result.StatusCode)
}

func TestDeactivationClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	result := NewDeactivationClient(NewHTTPClient(time.Second)).Deactivate(context.Background(), url)

	assert.Equal(t, models.DeactivationTransportError, result.Outcome)
	require.Error(t, result.Err)
	assert.Zero(t, result.StatusCode)
}

func TestDeactivationClient_InvalidEndpoint(t *testing.T) {
	result := NewDeactivationClient(NewHTTPClient(time.Second)).Deactivate(context.Background(), "://not a url")

	assert.Equal(t, models.DeactivationTransportError, result.Outcome)
	assert.Error(t, result.Err)
}

func TestDeactivationClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	result := NewDeactivationClient(NewHTTPClient(50*time.Millisecond)).Deactivate(context.Background(), server.URL)

	assert.Equal(t, models.DeactivationTransportError, result.Outcome)
	assert.Error(t, result.Err)
}
