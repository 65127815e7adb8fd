// Package fetch retrieves raw profile timelines from the public syndication endpoint.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultEndpoint is the public timeline endpoint queried with screen_name and count.
const DefaultEndpoint = "https://cdn.syndication.twimg.com/timeline/profile"

// DefaultTimeout bounds a single timeline fetch.
const DefaultTimeout = 15 * time.Second

// DefaultCount is the result-count hint sent when the caller passes zero.
const DefaultCount = 200

// DefaultUserAgent is a desktop browser user agent; the endpoint rejects obvious bots.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/120.0 Safari/537.36"

// Options configures the fetch behavior.
type Options struct {
	Endpoint   string
	Timeout    time.Duration
	UserAgent  string
	Headers    map[string]string
	UseBrowser bool // render the endpoint in headless Chrome instead of a plain GET
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Endpoint:  DefaultEndpoint,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// renderFunc returns the rendered HTML of a page.
type renderFunc func(ctx context.Context, pageURL string, timeout time.Duration) (string, error)

// Client fetches profile timelines. Each call makes exactly one attempt.
type Client struct {
	opts   *Options
	http   *http.Client
	render renderFunc
	logger *log.Logger
}

// NewClient creates a Client. Zero-valued options fall back to the defaults.
func NewClient(opts *Options, logger *log.Logger) *Client {
	defaults := DefaultOptions()
	if opts == nil {
		opts = defaults
	}
	if opts.Endpoint == "" {
		opts.Endpoint = defaults.Endpoint
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaults.Timeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaults.UserAgent
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Client{
		opts:   opts,
		http:   &http.Client{Timeout: opts.Timeout},
		render: WithBrowser,
		logger: logger,
	}
}

// TimelineURL builds the endpoint URL for a handle.
func (c *Client) TimelineURL(handle string, count int) (string, error) {
	if count <= 0 {
		count = DefaultCount
	}
	u, err := url.Parse(c.opts.Endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", c.opts.Endpoint, err)
	}
	q := u.Query()
	q.Set("screen_name", handle)
	q.Set("count", strconv.Itoa(count))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Timeline fetches the raw timeline payload for handle. The returned bytes are valid JSON.
// Failures are *NetworkError or *DecodeError.
func (c *Client) Timeline(ctx context.Context, handle string, count int) (json.RawMessage, error) {
	endpoint, err := c.TimelineURL(handle, count)
	if err != nil {
		return nil, &NetworkError{URL: c.opts.Endpoint, Message: "failed to build request URL", Cause: err}
	}

	c.logger.Info("fetching timeline", "handle", handle, "browser", c.opts.UseBrowser)

	var body []byte
	if c.opts.UseBrowser {
		body, err = c.viaBrowser(ctx, endpoint)
	} else {
		body, err = c.viaHTTP(ctx, endpoint)
	}
	if err != nil {
		return nil, err
	}

	payload, ok := ExtractJSON(body)
	if !ok {
		return nil, &DecodeError{
			URL:     endpoint,
			Message: fmt.Sprintf("response is not valid JSON (%d bytes)", len(body)),
		}
	}
	c.logger.Debug("fetched timeline", "handle", handle, "bytes", len(payload))
	return payload, nil
}

func (c *Client) viaHTTP(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &NetworkError{URL: endpoint, Message: "failed to create request", Cause: err}
	}

	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json, text/html;q=0.9, */*;q=0.8")
	for key, value := range c.opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: endpoint, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &NetworkError{
			URL:        endpoint,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: endpoint, Message: "failed to read response body", Cause: err}
	}
	return body, nil
}

func (c *Client) viaBrowser(ctx context.Context, endpoint string) ([]byte, error) {
	html, err := c.render(ctx, endpoint, c.opts.Timeout)
	if err != nil {
		return nil, &NetworkError{URL: endpoint, Message: "browser rendering failed", Cause: err}
	}
	return []byte(html), nil
}
