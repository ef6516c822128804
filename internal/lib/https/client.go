package https

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"

	"github.com/quintans/tvshelf/internal/lib/fails"
)

type Client struct {
	BaseURL string
	Header  http.Header
	// HTTP is the transport. When nil, http.DefaultClient is used.
	HTTP *http.Client
}

func (c *Client) Get(ctx context.Context, uri string, response any, header http.Header) error {
	return c.Request(ctx, http.MethodGet, uri, nil, response, header)
}

func (c *Client) Post(ctx context.Context, uri string, request any, response any, header http.Header) error {
	return c.Request(ctx, http.MethodPost, uri, request, response, header)
}

// Request sends a JSON request and decodes the JSON response into response.
// If response is a *[]byte the raw body is stored instead.
// Any non 2xx status is returned as a fails.Valuer carrying "url", "status" and "body".
func (c *Client) Request(ctx context.Context, method, uri string, request any, response any, header http.Header) error {
	var body io.Reader
	if request != nil {
		bodyJSON, err := json.Marshal(request)
		if err != nil {
			return fmt.Errorf("marshalling request (%+v): %w", request, err)
		}
		body = bytes.NewBuffer(bodyJSON)
	}

	// clone header
	h := make(http.Header, len(c.Header))
	for k, v := range c.Header {
		h[k] = slices.Clone(v)
	}
	for k, v := range header {
		h[k] = slices.Clone(v)
	}
	if request != nil && h.Get("Content-Type") == "" {
		h.Set("Content-Type", "application/json")
	}

	url := c.BaseURL + uri
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header = h

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return fails.NewWithErr(err, "reading error response", "url", url, "status", resp.StatusCode)
		}
		return fails.New("unexpected response", "url", url, "status", resp.StatusCode, "body", string(b))
	}

	if response == nil {
		return nil
	}

	if raw, ok := response.(*[]byte); ok {
		*raw, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
		return nil
	}

	err = json.NewDecoder(resp.Body).Decode(response)
	if err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
