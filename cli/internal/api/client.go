// Package api fetches organisation usage reports from the Anthropic Admin API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/zhaobenny/claude-token-counter/cli/internal/config"
	"github.com/zhaobenny/claude-token-counter/internal/model"
)

const (
	APIVersion = "2023-06-01"
	usagePath  = "/organizations/usage_report/claude_code"
	pageLimit  = 1000

	// MaxPages bounds how many pages a single fetch follows
	MaxPages = 50
)

// ErrAdminKeyRequired is returned when the usage endpoint is not available to the key
var ErrAdminKeyRequired = errors.New("usage report endpoint not found: this requires an Admin API key (sk-ant-admin-...), regular API keys cannot read usage reports")

// StatusError reports a non-2xx response
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("usage API returned status %d: %s", e.StatusCode, e.Body)
}

// Client fetches usage reports
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new usage API client
func NewClient(cfg *config.Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = config.DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(250*time.Millisecond), 1),
	}
}

// FetchUsage returns every usage bucket starting at the given day, following pagination
func (c *Client) FetchUsage(ctx context.Context, startingAt time.Time) ([]model.UsageRecord, error) {
	var records []model.UsageRecord
	page := ""

	for range MaxPages {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.fetchPage(ctx, startingAt, page)
		if err != nil {
			return nil, err
		}
		records = append(records, resp.Data...)

		if !resp.HasMore || resp.NextPage == "" {
			return records, nil
		}
		page = resp.NextPage
	}

	return records, nil
}

func (c *Client) fetchPage(ctx context.Context, startingAt time.Time, page string) (*model.UsageResponse, error) {
	query := url.Values{}
	query.Set("starting_at", startingAt.Format(time.DateOnly))
	query.Set("limit", fmt.Sprint(pageLimit))
	if page != "" {
		query.Set("page", page)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+usagePath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", APIVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("usage API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrAdminKeyRequired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var usage model.UsageResponse
	if err := json.NewDecoder(resp.Body).Decode(&usage); err != nil {
		return nil, fmt.Errorf("failed to decode usage response: %w", err)
	}
	return &usage, nil
}
