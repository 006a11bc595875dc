package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public prices.runescape.wiki API root.
const DefaultBaseURL = "https://prices.runescape.wiki/api/v1/osrs"

const defaultUserAgent = "osrs-flipper/1.0"

// Client is a rate-limited HTTP client for the wiki price API.
// The API is anonymous but asks for a descriptive User-Agent with a
// contact address, and for polite request rates.
type Client struct {
	BaseURL   string
	http      *http.Client
	limiter   *rate.Limiter
	sem       chan struct{}
	userAgent string
}

// NewClient creates a wiki API client. contact is appended to the
// User-Agent header when non-empty.
func NewClient(contact string) *Client {
	ua := defaultUserAgent
	if contact != "" {
		ua = fmt.Sprintf("%s (%s)", defaultUserAgent, contact)
	}
	return &Client{
		BaseURL:   DefaultBaseURL,
		http:      &http.Client{Timeout: 30 * time.Second},
		limiter:   rate.NewLimiter(rate.Limit(5), 10),
		sem:       make(chan struct{}, 8),
		userAgent: ua,
	}
}

// HealthCheck verifies the API is reachable.
func (c *Client) HealthCheck() bool {
	var resp latestResponse
	return c.GetJSON(c.BaseURL+"/latest", &resp) == nil
}

// GetJSON fetches a URL and decodes JSON into dst.
func (c *Client) GetJSON(url string, dst interface{}) error {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	if err := c.limiter.Wait(context.Background()); err != nil {
		return err
	}

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("wiki API %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}
