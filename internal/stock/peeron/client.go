package peeron

import (
	"net/http"
)

// baseURL is the xkcd DJIA mirror the geohashing community uses.
const baseURL = "http://irc.peeron.com/xkcd/map/data"

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=peeron_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches daily DJIA values from the peeron mirror.
type Client struct {
	// baseURL is the base URL for the date-structured paths.
	baseURL string
	// httpClient performs the requests.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
}

// ClientOption is a configuration option for the client.
type ClientOption func(*Client)

// WithBaseURL sets the base URL for the mirror.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) ClientOption {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// NewClient creates a new mirror client.
func NewClient(options ...ClientOption) (*Client, error) {
	var client = &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
	}
	for _, option := range options {
		option(client)
	}
	return client, nil
}
