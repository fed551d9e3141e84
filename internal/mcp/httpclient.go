package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claude/runplan/internal/models"
	"github.com/claude/runplan/internal/planner"
	"github.com/claude/runplan/internal/service"
	"github.com/claude/runplan/internal/storage"
)

// HTTPClient implements DataSource by calling the runplan REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// plans live on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. The API
// key is sent on write requests.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("httpclient: encode %s: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet && c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(data))
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("httpclient: %s: %w", path, storage.ErrPlanNotFound)
		}
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, msg)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func planPath(id uuid.UUID, suffix string) string {
	return "/api/v1/plans/" + id.String() + suffix
}

func (c *HTTPClient) ListPlans(ctx context.Context, _ int) ([]storage.PlanSummary, error) {
	var list []storage.PlanSummary
	if err := c.do(ctx, http.MethodGet, "/api/v1/plans", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *HTTPClient) GetPlan(ctx context.Context, id uuid.UUID, _ int) (*models.Plan, error) {
	var plan models.Plan
	if err := c.do(ctx, http.MethodGet, planPath(id, ""), nil, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *HTTPClient) CreatePlan(ctx context.Context, _ int, req planner.Request) (*models.Plan, error) {
	var plan models.Plan
	if err := c.do(ctx, http.MethodPost, "/api/v1/plans", req, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *HTTPClient) Summary(ctx context.Context, id uuid.UUID, _ int) (*models.PlanSummary, error) {
	var sum models.PlanSummary
	if err := c.do(ctx, http.MethodGet, planPath(id, "/summary"), nil, &sum); err != nil {
		return nil, err
	}
	return &sum, nil
}

func (c *HTTPClient) RecordCheckIn(ctx context.Context, id uuid.UUID, _ int, req service.CheckInRequest) (*service.CheckInResult, error) {
	var res service.CheckInResult
	if err := c.do(ctx, http.MethodPost, planPath(id, "/checkins"), req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Zones(ctx context.Context, req service.ZonesRequest) (*service.ZonesReport, error) {
	var report service.ZonesReport
	if err := c.do(ctx, http.MethodPost, "/api/v1/zones", req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
