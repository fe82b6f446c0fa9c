// Package api implements the data channel over HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/domain/dto"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/domain/model"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/myerrors"
	"github.com/gowrishetty09/bal-driver-sub001/internal/driverapp/core/ports"
	"github.com/gowrishetty09/bal-driver-sub001/internal/mylogger"
)

type Client struct {
	base   string
	client *http.Client
	auth   ports.AuthProvider
	log    mylogger.Logger
}

var _ ports.DataChannel = (*Client)(nil)

func New(baseURL string, timeout time.Duration, auth ports.AuthProvider, log mylogger.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
		auth: auth,
		log:  log,
	}
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	var bodyBytes []byte
	var err error

	if body != nil {
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, bytes.NewBuffer(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token, terr := c.auth.Token(); terr == nil {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Action("api_request").Debug("request rejected", "method", method, "path", path, "status", resp.StatusCode)
		return nil, &myerrors.TransportError{StatusCode: resp.StatusCode, Body: data}
	}
	return data, nil
}

// FetchJobs returns the raw snapshot records for one category. The backend
// answers with either a bare array or a {"jobs": [...]} wrapper.
func (c *Client) FetchJobs(ctx context.Context, category model.JobCategory) ([]json.RawMessage, error) {
	path := "/driver/jobs?category=" + url.QueryEscape(string(category))
	data, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}
	var wrapped struct {
		Jobs []json.RawMessage `json:"jobs"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("unmarshaling jobs snapshot: %w", err)
	}
	return wrapped.Jobs, nil
}

func (c *Client) FetchJobDetail(ctx context.Context, jobID string) (json.RawMessage, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/driver/jobs/"+url.PathEscape(jobID), nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

func (c *Client) PatchJobStatus(ctx context.Context, jobID string, req dto.StatusPatchRequest) error {
	_, err := c.doRequest(ctx, http.MethodPatch, "/driver/jobs/"+url.PathEscape(jobID)+"/status", req)
	return err
}

func (c *Client) PostPickupVerification(ctx context.Context, jobID, code string) error {
	_, err := c.doRequest(ctx, http.MethodPost, "/driver/jobs/"+url.PathEscape(jobID)+"/verify-pickup",
		dto.PickupVerificationRequest{Code: code})
	return err
}

// PostPickupVerificationLegacy targets the booking-era route still served
// by older backend deployments.
func (c *Client) PostPickupVerificationLegacy(ctx context.Context, jobID, code string) error {
	_, err := c.doRequest(ctx, http.MethodPost, "/driver/bookings/"+url.PathEscape(jobID)+"/verify-pickup-code",
		dto.PickupVerificationRequest{Code: code})
	return err
}

func (c *Client) PostLocation(ctx context.Context, loc dto.LocationRequest) error {
	_, err := c.doRequest(ctx, http.MethodPost, "/driver/location", loc)
	return err
}
