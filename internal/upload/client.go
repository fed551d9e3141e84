package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the public calendar service.
const DefaultBaseURL = "https://intervals.icu"

// Athlete is the subset of the athlete record used to check credentials.
type Athlete struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client talks to an intervals.icu-compatible calendar API.
type Client struct {
	baseURL    string
	athleteID  string
	auth       string
	httpClient *http.Client
	retryDelay time.Duration
}

// NewClient creates a client. The API key is sent as HTTP basic auth with
// the fixed user name API_KEY.
func NewClient(baseURL, athleteID, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	token := base64.StdEncoding.EncodeToString([]byte("API_KEY:" + apiKey))
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		athleteID: athleteID,
		auth:      "Basic " + token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		retryDelay: time.Second,
	}
}

func (c *Client) athletePath(suffix string) string {
	return c.baseURL + "/api/v1/athlete/" + c.athleteID + suffix
}

// Athlete fetches the athlete record, verifying the credentials.
func (c *Client) Athlete(ctx context.Context) (*Athlete, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.athletePath(""), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", c.auth)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching athlete: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("athlete request failed (status %d): %s", resp.StatusCode, body)
	}

	var a Athlete
	if err := json.NewDecoder(resp.Body).Decode(&a); err != nil {
		return nil, fmt.Errorf("decoding athlete: %w", err)
	}
	return &a, nil
}

// SendEvents POSTs events to the bulk endpoint, replacing events with the
// same external ID. Retries up to 3 times with exponential backoff on failure.
func (c *Client) SendEvents(ctx context.Context, events []Event) error {
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("marshaling events: %w", err)
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay << uint(attempt-1)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.athletePath("/events/bulk?upsert=true"), bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Authorization", c.auth)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
			return nil
		}
		lastErr = fmt.Errorf("upload failed (status %d): %s", resp.StatusCode, body)
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			break
		}
	}

	return fmt.Errorf("after 3 attempts: %w", lastErr)
}
