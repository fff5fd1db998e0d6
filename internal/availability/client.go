package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mjacobco/hvac-assistant/pkg/logging"
)

// Client fetches open slots over the public availability endpoint. The
// assistant's tool path goes through here rather than the storage layer so the
// orchestrator stays decoupled from the ledger.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient builds a client against the API base URL.
func NewClient(baseURL string, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Slots calls GET /api/appointments/availability for one date.
func (c *Client) Slots(ctx context.Context, date string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/api/appointments/availability?date=%s", c.baseURL, url.QueryEscape(date))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("availability: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("availability: query failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("availability: query returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed struct {
		Success        bool     `json:"success"`
		AvailableSlots []string `json:"availableSlots"`
		Error          string   `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("availability: decode response: %w", err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("availability: query rejected: %s", parsed.Error)
	}

	c.logger.Debug("availability fetched", "date", date, "open_slots", len(parsed.AvailableSlots))
	return parsed.AvailableSlots, nil
}
