package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// APIClient provides HTTP client functionality to communicate with a running
// sidekick instance over its local command surface.
type APIClient struct {
	baseURL string
	client  *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8127/api"
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &APIClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// IsReachable checks if a sidekick instance is running and reachable
func (c *APIClient) IsReachable() bool {
	resp, err := c.client.Get(c.baseURL + "/status")
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode != http.StatusNotFound
}

// Status returns the backend status line, e.g. "READY" or
// "NOT_READY:PORT_IN_USE_NO_HEALTH".
func (c *APIClient) Status() (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.get("/status", &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// Ready reports whether the backend currently answers its health check.
func (c *APIClient) Ready() (bool, error) {
	var resp struct {
		Ready bool `json:"ready"`
	}
	if err := c.get("/ready", &resp); err != nil {
		return false, err
	}
	return resp.Ready, nil
}

// BaseURL returns the backend API base URL.
func (c *APIClient) BaseURL() (string, error) {
	var resp struct {
		BaseURL string `json:"base_url"`
	}
	if err := c.get("/base-url", &resp); err != nil {
		return "", err
	}
	return resp.BaseURL, nil
}

// Retry asks the supervisor to re-run the backend spawn+poll flow.
func (c *APIClient) Retry() error {
	return c.post("/backend/retry", nil)
}

// KillRetry asks the supervisor to kill every backend process and re-run the
// full start flow.
func (c *APIClient) KillRetry() error {
	return c.post("/backend/kill-retry", nil)
}

// RunTask asks the supervisor to delegate a backend start to the OS task
// scheduler.
func (c *APIClient) RunTask() error {
	return c.post("/backend/task", nil)
}

// AutostartLogPath returns the path of the autostart flow log.
func (c *APIClient) AutostartLogPath() (string, error) {
	var resp struct {
		Path string `json:"path"`
	}
	if err := c.get("/logs/autostart", &resp); err != nil {
		return "", err
	}
	return resp.Path, nil
}

// OpenLogs asks the running instance to open its logs folder in the desktop
// file browser.
func (c *APIClient) OpenLogs() error {
	return c.post("/logs/open", nil)
}

// Log appends one record to the application log channel.
func (c *APIClient) Log(message string) error {
	return c.post("/log", map[string]string{"message": message})
}

func (c *APIClient) get(path string, out any) error {
	resp, err := c.client.Get(c.baseURL + path)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *APIClient) post(path string, body any) error {
	var rdr *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(data)
	} else {
		rdr = bytes.NewReader(nil)
	}
	resp, err := c.client.Post(c.baseURL+path, "application/json", rdr)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var errorResp struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errorResp); err != nil {
		return fmt.Errorf("API error: status %d", resp.StatusCode)
	}
	return fmt.Errorf("API error: %s", errorResp.Error)
}
