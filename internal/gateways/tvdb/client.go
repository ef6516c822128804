package tvdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/quintans/tvshelf/internal/app"
	"github.com/quintans/tvshelf/internal/lib/https"
	"github.com/quintans/tvshelf/internal/lib/retry"
	"github.com/quintans/tvshelf/internal/lib/values"
	"github.com/quintans/tvshelf/internal/model"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// Used when no URL is configured.
const (
	BaseURL    = "https://api4.thetvdb.com/v4"
	ArtworkURL = "https://artworks.thetvdb.com"
)

const unreadableBody = "could not read the error body"

func userAgent() string {
	return fmt.Sprintf("%s v%s", app.Name, app.Version)
}

// Login exchanges the API key at the login endpoint.
type Login struct {
	client https.Client
	apiKey string
}

func NewLogin(baseURL, apiKey string, httpc *http.Client) *Login {
	return &Login{
		client: https.Client{
			BaseURL: values.Coalesce(baseURL, BaseURL),
			Header: http.Header{
				"User-Agent": {userAgent()},
				"Accept":     {"application/json"},
			},
			HTTP: httpc,
		},
		apiKey: apiKey,
	}
}

func (l *Login) Exchange(ctx context.Context) (string, error) {
	if l.apiKey == "" {
		return "", errors.New("no API key configured")
	}

	var res struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	err := l.client.Post(ctx, "/login", map[string]string{"apikey": l.apiKey}, &res, nil)
	if err != nil {
		return "", fmt.Errorf("logging in: %w", err)
	}

	return res.Data.Token, nil
}

// Client issues authenticated requests to the TVDB v4 API.
type Client struct {
	client     https.Client
	tokens     *TokenCache
	limiter    *rate.Limiter
	normalizer Normalizer
}

type Option func(*Client)

func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) {
		c.client.HTTP = httpc
	}
}

// WithMinInterval spaces out requests by at least interval.
func WithMinInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval > 0 {
			c.limiter = rate.NewLimiter(rate.Every(interval), 1)
		}
	}
}

func WithArtworkURL(artworkURL string) Option {
	return func(c *Client) {
		if artworkURL != "" {
			c.normalizer.ArtworkURL = artworkURL
		}
	}
}

// New builds a client. Empty URLs fall back to BaseURL and ArtworkURL.
func New(baseURL string, tokens *TokenCache, options ...Option) *Client {
	c := &Client{
		client: https.Client{
			BaseURL: values.Coalesce(baseURL, BaseURL),
			Header: http.Header{
				"User-Agent": {userAgent()},
				"Accept":     {"application/json"},
			},
		},
		tokens:     tokens,
		normalizer: Normalizer{ArtworkURL: ArtworkURL},
	}
	for _, o := range options {
		o(c)
	}
	return c
}

// Request sends an authenticated GET and returns the parsed body.
// A 401 drops the cached token and the request is repeated once with a fresh one.
func (c *Client) Request(ctx context.Context, endpoint string) (gjson.Result, error) {
	return retry.Do2(func() (gjson.Result, error) {
		token, err := c.tokens.Acquire(ctx)
		if err != nil {
			return gjson.Result{}, retry.NewPermanentError(err)
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return gjson.Result{}, retry.NewPermanentError(fmt.Errorf("waiting to request %s: %w", endpoint, err))
			}
		}

		var raw []byte
		err = c.client.Get(ctx, endpoint, &raw, http.Header{"Authorization": {"Bearer " + token}})
		if err == nil {
			return gjson.ParseBytes(raw), nil
		}

		status := https.StatusCode(err)
		if status == 0 {
			return gjson.Result{}, retry.NewPermanentError(fmt.Errorf("requesting %s: %w", endpoint, err))
		}

		apiErr := &app.ApiRequestError{
			Endpoint: endpoint,
			Status:   status,
			Detail:   errorDetail(https.Body(err)),
		}
		slog.Error("API request failed", "endpoint", endpoint, "status", status, "detail", apiErr.Detail)

		if status == http.StatusUnauthorized {
			c.tokens.Invalidate()
			return gjson.Result{}, apiErr
		}
		return gjson.Result{}, retry.NewPermanentError(apiErr)
	}, retry.WithRetries(1), retry.WithDelay(0))
}

func errorDetail(body string) string {
	if !gjson.Valid(body) {
		return unreadableBody
	}
	if msg := gjson.Get(body, "message").String(); msg != "" {
		return msg
	}
	return body
}

func (c *Client) PopularMovies(ctx context.Context) ([]model.Show, error) {
	res, err := c.Request(ctx, "/movies")
	if err != nil {
		return nil, fmt.Errorf("fetching movies: %w", err)
	}
	return c.normalizer.List(res.Get("data"), model.TypeMovie), nil
}

func (c *Client) PopularSeries(ctx context.Context) ([]model.Show, error) {
	res, err := c.Request(ctx, "/series")
	if err != nil {
		return nil, fmt.Errorf("fetching series: %w", err)
	}
	return c.normalizer.List(res.Get("data"), model.TypeSeries), nil
}

func (c *Client) Search(ctx context.Context, query string) ([]model.Show, error) {
	res, err := c.Request(ctx, "/search?query="+url.QueryEscape(query))
	if err != nil {
		return nil, fmt.Errorf("searching for '%s': %w", query, err)
	}
	return c.normalizer.List(res.Get("data"), ""), nil
}

// Details fetches the extended record of a movie or a series.
func (c *Client) Details(ctx context.Context, id int, kind model.ShowType) (*model.ShowDetails, error) {
	var endpoint string
	switch kind {
	case model.TypeSeries:
		endpoint = fmt.Sprintf("/series/%d/extended", id)
	case model.TypeMovie:
		endpoint = fmt.Sprintf("/movies/%d/extended", id)
	default:
		return nil, fmt.Errorf("no details for type '%s'", kind)
	}

	res, err := c.Request(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetching details for %s %d: %w", kind, id, err)
	}

	data := res.Get("data")
	if !data.IsObject() {
		return nil, fmt.Errorf("malformed details for %s %d", kind, id)
	}

	details := c.normalizer.Detail(data)
	details.Type = kind
	if details.ID == 0 {
		details.ID = id
	}
	return &details, nil
}

// UpdatesSince lists every change notification after since (unix seconds).
func (c *Client) UpdatesSince(ctx context.Context, since int64) ([]model.Update, error) {
	res, err := c.Request(ctx, "/updates?since="+strconv.FormatInt(since, 10))
	if err != nil {
		return nil, fmt.Errorf("fetching updates since %d: %w", since, err)
	}

	updates := []model.Update{}
	res.Get("data").ForEach(func(_, u gjson.Result) bool {
		updates = append(updates, model.Update{
			ID:         int(u.Get("id").Int()),
			RecordType: model.ShowType(u.Get("recordType").String()),
			RecordID:   int(u.Get("recordId").Int()),
			Method:     u.Get("method").String(),
			Timestamp:  u.Get("timestamp").Int(),
		})
		return true
	})
	return updates, nil
}
