package peeron

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"geohashd/internal/stock"
)

// maxBodyBytes caps the response read; the body is a bare decimal.
const maxBodyBytes = 1 << 10

// FetchValue retrieves the value for date from the mirror. The path is
// /<year>/<2-digit-month>/<2-digit-day> and the success body is a bare
// decimal number as plain text. A 404 maps to stock.ErrNotPosted, a
// non-decimal body to stock.ErrBadData.
//
// The context is checked again right after the request returns; when it
// was canceled, nothing is read from the body, since reading from an
// aborted transport is undefined.
func (c *Client) FetchValue(ctx context.Context, date stock.Date) (string, error) {
	url := fmt.Sprintf("%s/%04d/%02d/%02d", c.baseURL, date.Year, int(date.Month), date.Day)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	for key, values := range c.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusNotFound:
		return "", stock.ErrNotPosted

	default:
		return "", fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("reading response body: %w", err)
	}

	value := strings.TrimSpace(string(b))
	if _, err := strconv.ParseFloat(value, 64); err != nil {
		return "", fmt.Errorf("%w: %q", stock.ErrBadData, value)
	}
	return value, nil
}
