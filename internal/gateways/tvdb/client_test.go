package tvdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/quintans/tvshelf/internal/app"
	"github.com/quintans/tvshelf/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTVDB struct {
	logins   atomic.Int32
	tokens   []string
	handlers map[string]http.HandlerFunc
	// rejected tokens get a 401
	rejected map[string]bool
}

func (f *fakeTVDB) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/login" {
		var req struct {
			APIKey string `json:"apikey"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.APIKey != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":"failure","message":"bad key"}`))
			return
		}
		n := int(f.logins.Add(1))
		token := f.tokens[min(n, len(f.tokens))-1]
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"token": token}})
		return
	}

	token := r.Header.Get("Authorization")
	if f.rejected[token] {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"expired"}`))
		return
	}

	h, ok := f.handlers[r.URL.Path]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":"failure","message":"not found"}`))
		return
	}
	h(w, r)
}

func newTestClient(t *testing.T, f *fakeTVDB, apiKey string) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	tokens := NewTokenCache(NewLogin(srv.URL, apiKey, srv.Client()))
	return New(srv.URL, tokens, WithHTTPClient(srv.Client()), WithArtworkURL("https://art"))
}

func TestNewDefaultsURLs(t *testing.T) {
	c := New("", NewTokenCache(NewLogin("", "secret", nil)), WithArtworkURL(""))
	assert.Equal(t, BaseURL, c.client.BaseURL)
	assert.Equal(t, ArtworkURL, c.normalizer.ArtworkURL)
}

func TestClientPopularMovies(t *testing.T) {
	f := &fakeTVDB{
		tokens: []string{"t1"},
		handlers: map[string]http.HandlerFunc{
			"/movies": func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "Bearer t1", r.Header.Get("Authorization"))
				_, _ = w.Write([]byte(`{"data":[{"id":1,"name":"Heat","image":"/h.jpg"},{"name":"no id"}]}`))
			},
		},
	}
	c := newTestClient(t, f, "secret")

	shows, err := c.PopularMovies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Show{{ID: 1, Name: "Heat", Type: model.TypeMovie, ImageURL: "https://art/h.jpg"}}, shows)

	_, err = c.PopularMovies(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, f.logins.Load())
}

func TestClientSearchEscapesQuery(t *testing.T) {
	f := &fakeTVDB{
		tokens: []string{"t1"},
		handlers: map[string]http.HandlerFunc{
			"/search": func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "the office & co", r.URL.Query().Get("query"))
				_, _ = w.Write([]byte(`{"data":[{"tvdb_id":"73244","name":"The Office","type":"series"}]}`))
			},
		},
	}
	c := newTestClient(t, f, "secret")

	shows, err := c.Search(context.Background(), "the office & co")
	require.NoError(t, err)
	require.Len(t, shows, 1)
	assert.Equal(t, 73244, shows[0].ID)
	assert.Equal(t, model.TypeSeries, shows[0].Type)
}

func TestClientApiRequestError(t *testing.T) {
	f := &fakeTVDB{
		tokens: []string{"t1"},
		handlers: map[string]http.HandlerFunc{
			"/series": func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`<html>oops</html>`))
			},
		},
	}
	c := newTestClient(t, f, "secret")

	_, err := c.Request(context.Background(), "/nope")
	var apiErr *app.ApiRequestError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "/nope", apiErr.Endpoint)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "not found", apiErr.Detail)

	_, err = c.PopularSeries(context.Background())
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, unreadableBody, apiErr.Detail)
}

func TestClientReauthenticatesOnceOn401(t *testing.T) {
	var calls atomic.Int32
	f := &fakeTVDB{
		tokens:   []string{"stale", "fresh"},
		rejected: map[string]bool{"Bearer stale": true},
		handlers: map[string]http.HandlerFunc{
			"/series/42/extended": func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				assert.Equal(t, "Bearer fresh", r.Header.Get("Authorization"))
				_, _ = w.Write([]byte(`{"data":{"id":42,"name":"Lost","seasons":[{"id":1,"number":1,"episodeCount":25}]}}`))
			},
		},
	}
	c := newTestClient(t, f, "secret")

	d, err := c.Details(context.Background(), 42, model.TypeSeries)
	require.NoError(t, err)
	assert.Equal(t, 42, d.ID)
	assert.Equal(t, model.TypeSeries, d.Type)
	assert.Equal(t, []model.Season{{ID: 1, Number: 1, EpisodesCount: 25}}, d.Seasons)
	assert.EqualValues(t, 2, f.logins.Load())
	assert.EqualValues(t, 1, calls.Load())
}

func TestClientGivesUpAfterSecond401(t *testing.T) {
	f := &fakeTVDB{
		tokens:   []string{"stale"},
		rejected: map[string]bool{"Bearer stale": true},
	}
	c := newTestClient(t, f, "secret")

	_, err := c.PopularSeries(context.Background())
	var apiErr *app.ApiRequestError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "expired", apiErr.Detail)
	assert.EqualValues(t, 2, f.logins.Load())
}

func TestClientAuthenticationError(t *testing.T) {
	f := &fakeTVDB{tokens: []string{"t1"}}
	c := newTestClient(t, f, "wrong")

	_, err := c.PopularMovies(context.Background())
	require.ErrorIs(t, err, app.ErrAuthentication)
}

func TestClientDetailsRejectsOtherTypes(t *testing.T) {
	c := newTestClient(t, &fakeTVDB{tokens: []string{"t1"}}, "secret")

	_, err := c.Details(context.Background(), 1, model.TypePerson)
	require.Error(t, err)
}

func TestClientUpdatesSince(t *testing.T) {
	f := &fakeTVDB{
		tokens: []string{"t1"},
		handlers: map[string]http.HandlerFunc{
			"/updates": func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "1700000000", r.URL.Query().Get("since"))
				_, _ = w.Write([]byte(`{"data":[
					{"id":1,"recordType":"series","recordId":355413,"method":"update","timestamp":1700000100},
					{"id":2,"recordType":"episode","recordId":9,"method":"create","timestamp":1700000200}
				]}`))
			},
		},
	}
	c := newTestClient(t, f, "secret")

	updates, err := c.UpdatesSince(context.Background(), 1700000000)
	require.NoError(t, err)
	assert.Equal(t, []model.Update{
		{ID: 1, RecordType: model.TypeSeries, RecordID: 355413, Method: "update", Timestamp: 1700000100},
		{ID: 2, RecordType: model.TypeEpisode, RecordID: 9, Method: "create", Timestamp: 1700000200},
	}, updates)
}
