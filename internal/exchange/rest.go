package exchange

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxErrorBody caps how much of an error response is kept in VenueError.
const maxErrorBody = 512

// RESTClient performs GET requests against a venue REST API. It does not
// retry; a failed request surfaces to the caller immediately.
type RESTClient struct {
	venue      string
	baseURL    string
	httpClient *http.Client
}

// NewRESTClient creates a client rooted at baseURL.
func NewRESTClient(venue, baseURL string, timeout time.Duration) *RESTClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RESTClient{
		venue:      venue,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Get requests path with query and returns the response body. A non-2xx
// status is returned as *VenueError.
func (c *RESTClient) Get(ctx context.Context, path string, query url.Values, headers map[string]string) ([]byte, error) {
	full := c.baseURL + path
	if len(query) > 0 {
		full += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", c.venue, err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: http request: %w", c.venue, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", c.venue, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(body)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &VenueError{Venue: c.venue, StatusCode: resp.StatusCode, Message: msg}
	}
	return body, nil
}
