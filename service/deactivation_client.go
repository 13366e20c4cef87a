package service

import (
	"context"
	"io"
	"net/http"
	"time"

	"gatewaymonitor/models"

	log "github.com/sirupsen/logrus"
)

// NewHTTPClient builds the client shared by every invocation in the process
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// DeactivationClient calls the deactivation endpoint with an empty PUT
type DeactivationClient struct {
	httpClient *http.Client
}

// NewDeactivationClient creates a new deactivation client around a shared http client
func NewDeactivationClient(httpClient *http.Client) *DeactivationClient {
	return &DeactivationClient{httpClient: httpClient}
}

// Deactivate issues PUT <endpoint> with no body. Any 2xx status is success. Every failure
// is logged and returned in the result; there is no retry.
func (c *DeactivationClient) Deactivate(ctx context.Context, endpoint string) models.DeactivationResult {
	result := models.DeactivationResult{Endpoint: endpoint}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, nil)
	if err != nil {
		log.WithError(err).Error("Error invoking DeactivationEndpoint")
		result.Outcome = models.DeactivationTransportError
		result.Err = err
		return result
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Error("Error invoking DeactivationEndpoint")
		result.Outcome = models.DeactivationTransportError
		result.Err = err
		return result
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)

	result.StatusCode = resp.StatusCode
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		result.Outcome = models.DeactivationSucceeded
		log.WithField("status_code", resp.StatusCode).Info("Gateway deactivated successfully via endpoint")
		return result
	}

	result.Outcome = models.DeactivationFailedStatus
	log.WithField("status_code", resp.StatusCode).Error("DeactivationEndpoint call failed")
	return result
}
