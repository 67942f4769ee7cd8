// Package partnerapi fetches the partner business's public data (services
// and contact info) from its JSON endpoint.
package partnerapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"studio-assistant/internal/domain"
)

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("partnerapi: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// dataPayload is the partner endpoint's response shape. Services arrive
// either as plain strings or as objects with a name field.
type dataPayload struct {
	Services    []serviceEntry `json:"services"`
	ContactInfo []contactEntry `json:"contact_info"`
}

type serviceEntry struct {
	Name string
}

func (s *serviceEntry) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		s.Name = plain
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	s.Name = obj.Name
	return nil
}

type contactEntry struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Client fetches partner business data over HTTP with a bearer token.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a Client for the given data endpoint.
func New(endpoint, apiKey string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("partnerapi: endpoint must not be empty")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("partnerapi: api key must not be empty")
	}
	c := &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Fetch retrieves the partner profile. Callers degrade to an empty profile
// on error; partner data is never required to answer.
func (c *Client) Fetch(ctx context.Context) (domain.PartnerProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return domain.PartnerProfile{}, fmt.Errorf("partnerapi: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	raw, err := c.doJSONRequest(req)
	if err != nil {
		return domain.PartnerProfile{}, fmt.Errorf("partnerapi: request failed: %w", err)
	}

	var payload dataPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.PartnerProfile{}, fmt.Errorf("partnerapi: decode response: %w", err)
	}

	profile := domain.PartnerProfile{
		ContactInfo: make(map[string]string, len(payload.ContactInfo)),
	}
	for _, s := range payload.Services {
		if s.Name != "" {
			profile.Services = append(profile.Services, s.Name)
		}
	}
	for _, entry := range payload.ContactInfo {
		if entry.Type != "" {
			profile.ContactInfo[entry.Type] = entry.Value
		}
	}
	return profile, nil
}

func (c *Client) doJSONRequest(req *http.Request) ([]byte, error) {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        c.endpoint,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}
