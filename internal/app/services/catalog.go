package services

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/quintans/faults"
	"github.com/quintans/tvshelf/internal/app"
	"github.com/quintans/tvshelf/internal/lib/bind"
	"github.com/quintans/tvshelf/internal/lib/slices"
	"github.com/quintans/tvshelf/internal/model"
	"github.com/sourcegraph/conc/pool"
)

const LastUpdateCheckKey = "lastUpdateCheck"

// Catalog exposes the remote catalog as observable state.
// Operations never return errors: a failure resets the state it owns,
// is logged and is published as an error notification.
type Catalog struct {
	client app.CatalogClient
	kv     app.KeyValue
	bus    app.EventBus
	now    func() time.Time

	RecommendedMovies *bind.Bind[[]model.Show]
	PopularShows      *bind.Bind[[]model.Show]
	SearchResults     *bind.Bind[[]model.Show]
	SelectedShow      *bind.Bind[*model.ShowDetails]
	Notifications     *bind.Bind[[]model.Update]
}

type CatalogOption func(*Catalog)

func WithCatalogClock(now func() time.Time) CatalogOption {
	return func(c *Catalog) {
		c.now = now
	}
}

func NewCatalog(client app.CatalogClient, kv app.KeyValue, bus app.EventBus, options ...CatalogOption) *Catalog {
	c := &Catalog{
		client:            client,
		kv:                kv,
		bus:               bus,
		now:               time.Now,
		RecommendedMovies: bind.NewSlice([]model.Show{}),
		PopularShows:      bind.NewSlice([]model.Show{}),
		SearchResults:     bind.NewSlice([]model.Show{}),
		SelectedShow:      bind.New[*model.ShowDetails](nil),
		Notifications:     bind.NewSlice([]model.Update{}),
	}
	for _, o := range options {
		o(c)
	}
	return c
}

func (c *Catalog) FetchPopularMovies(ctx context.Context) {
	shows, err := c.client.PopularMovies(ctx)
	if err != nil {
		c.RecommendedMovies.Set([]model.Show{})
		c.fail("fetching popular movies", err)
		return
	}
	c.RecommendedMovies.Set(shows)
}

func (c *Catalog) FetchPopularShows(ctx context.Context) {
	shows, err := c.client.PopularSeries(ctx)
	if err != nil {
		c.PopularShows.Set([]model.Show{})
		c.fail("fetching popular shows", err)
		return
	}
	c.PopularShows.Set(shows)
}

// SearchAll clears the previous results and, unless query is blank, searches every record type.
func (c *Catalog) SearchAll(ctx context.Context, query string) {
	c.SearchResults.Set([]model.Show{})

	query = strings.TrimSpace(query)
	if query == "" {
		return
	}

	shows, err := c.client.Search(ctx, query)
	if err != nil {
		c.fail("searching for '"+query+"'", err)
		return
	}
	c.SearchResults.Set(shows)
}

// FetchDetails clears the selected show and loads the requested one.
func (c *Catalog) FetchDetails(ctx context.Context, id int, kind model.ShowType) {
	c.SelectedShow.Set(nil)

	details, err := c.client.Details(ctx, id, kind)
	if err != nil {
		c.fail("fetching details of "+string(kind)+" "+strconv.Itoa(id), err)
		return
	}
	c.SelectedShow.Set(details)
}

// CheckForUpdates lists the series and movie changes since the last successful check.
// The watermark only moves forward when the request succeeds.
func (c *Catalog) CheckForUpdates(ctx context.Context) {
	since := c.lastUpdateCheck()
	checkedAt := c.now()

	updates, err := c.client.UpdatesSince(ctx, since)
	if err != nil {
		c.Notifications.Set([]model.Update{})
		c.fail("checking for updates", err)
		return
	}

	relevant := slices.FilterMap(updates, func(u model.Update) (model.Update, bool) {
		return u, u.Relevant()
	})
	c.Notifications.Set(relevant)
	if len(relevant) > 0 {
		c.bus.Publish(app.NewNotifyInfo("%d catalog updates since the last check", len(relevant)))
	}

	err = c.kv.Set(LastUpdateCheckKey, strconv.FormatInt(checkedAt.Unix(), 10))
	if err != nil {
		slog.Error("Failed to save the last update check", "error", err)
	}
}

func (c *Catalog) lastUpdateCheck() int64 {
	v, ok, err := c.kv.Get(LastUpdateCheckKey)
	if err != nil {
		slog.Warn("Failed to read the last update check", "error", err)
		return 0
	}
	if !ok {
		return 0
	}

	since, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		slog.Warn("Ignoring malformed last update check", "value", v, "error", err)
		return 0
	}
	return since
}

// RefreshHome loads everything the home screen shows, concurrently.
func (c *Catalog) RefreshHome(ctx context.Context) {
	p := pool.New().WithMaxGoroutines(3)
	p.Go(func() { c.FetchPopularMovies(ctx) })
	p.Go(func() { c.FetchPopularShows(ctx) })
	p.Go(func() { c.CheckForUpdates(ctx) })
	p.Wait()
}

func (c *Catalog) fail(action string, err error) {
	err = faults.Errorf("%s: %w", action, err)
	slog.Error("Catalog operation failed", "error", err)
	c.bus.Publish(app.NewNotifyError("Failed %s", action))
}
