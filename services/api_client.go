package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jobfill/autofill"
	"jobfill/models"
)

// APIClient talks to a running jobfill server. It supplies the fill engine
// with the stored profile and settings and records completed fills.
type APIClient struct {
	baseURL string
	token   string
	client  *http.Client
}

var (
	_ autofill.ProfileSource     = (*APIClient)(nil)
	_ autofill.SettingsSource    = (*APIClient)(nil)
	_ autofill.ApplicationLogger = (*APIClient)(nil)
)

// NewAPIClient returns a client for baseURL. token may be empty when the
// server runs without auth; a nil client gets a 15s timeout default.
func NewAPIClient(baseURL, token string, client *http.Client) *APIClient {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &APIClient{baseURL: strings.TrimRight(baseURL, "/"), token: token, client: client}
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jobfill api returned %d: %s", e.StatusCode, e.Message)
}

func (c *APIClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil)
}

func (c *APIClient) Profile(ctx context.Context) (*models.Profile, error) {
	profile := models.DefaultProfile()
	if err := c.do(ctx, http.MethodGet, "/api/profile", nil, profile); err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return profile, nil
}

func (c *APIClient) Settings(ctx context.Context) (models.Settings, error) {
	settings := models.DefaultSettings()
	if err := c.do(ctx, http.MethodGet, "/api/settings", nil, &settings); err != nil {
		return models.Settings{}, fmt.Errorf("failed to fetch settings: %w", err)
	}
	return settings, nil
}

func (c *APIClient) LogApplication(ctx context.Context, app *models.Application) error {
	var created struct {
		Application models.Application `json:"application"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/applications", app, &created); err != nil {
		return fmt.Errorf("failed to log application: %w", err)
	}
	app.ID = created.Application.ID
	return nil
}

func (c *APIClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
