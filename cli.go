package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/quintans/tvshelf/internal/app"
	"github.com/quintans/tvshelf/internal/app/services"
	"github.com/quintans/tvshelf/internal/model"
)

const usage = `usage: tvshelf <command> [args]

commands:
  popular                         popular movies, series and recent updates
  search <query>                  search every record type
  details <movie|series> <id>     show a record
  updates                         changes since the last check
  lists                           print the personal lists
  watchlist <movie|series> <id>   toggle watchlist
  favorite <movie|series> <id>    toggle favorites
  watched <movie|series> <id>     toggle watched
  watch <movie|series> <id> [n]   start watching, n episodes
  next <id>                       advance to the next episode
  login <api key>                 store the API key in the keyring`

var errUsage = errors.New(usage)

type tokenInvalidator interface {
	Invalidate()
}

type CLI struct {
	out     io.Writer
	catalog *services.Catalog
	lists   *services.Lists
	secrets app.Secrets
	tokens  tokenInvalidator
	now     func() time.Time
}

func (c *CLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "popular":
		c.catalog.RefreshHome(ctx)
		c.printShows("Recommended movies", c.catalog.RecommendedMovies.Get())
		c.printShows("Popular series", c.catalog.PopularShows.Get())
		c.printUpdates()
	case "search":
		c.catalog.SearchAll(ctx, strings.Join(args, " "))
		c.printShows("Results", c.catalog.SearchResults.Get())
	case "details":
		d, err := c.details(ctx, args)
		if err != nil || d == nil {
			return err
		}
		c.printDetails(d)
	case "updates":
		c.catalog.CheckForUpdates(ctx)
		c.printUpdates()
	case "lists":
		c.printLists()
	case "watchlist", "favorite", "watched":
		show, ok, err := c.toggleTarget(ctx, cmd, args)
		if err != nil || !ok {
			return err
		}
		toggle := map[string]func(model.Show) error{
			"watchlist": c.lists.ToggleWatchlist,
			"favorite":  c.lists.ToggleFavorites,
			"watched":   c.lists.ToggleWatched,
		}[cmd]
		if err := toggle(show); err != nil {
			return err
		}
		c.printLists()
	case "watch":
		if len(args) < 2 {
			return errUsage
		}
		total := 0
		if len(args) > 2 {
			n, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid episode count '%s'", args[2])
			}
			total = n
		}
		d, err := c.details(ctx, args[:2])
		if err != nil || d == nil {
			return err
		}
		if total == 0 {
			total = firstSeasonEpisodes(d)
		}
		if err := c.lists.StartWatching(d.Show, total); err != nil {
			return err
		}
		c.printLists()
	case "next":
		if len(args) != 1 {
			return errUsage
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid id '%s'", args[0])
		}
		if !c.lists.IsWatching(id) {
			return fmt.Errorf("not watching %d", id)
		}
		if err := c.lists.AdvanceEpisode(id); err != nil {
			return err
		}
		c.printLists()
	case "login":
		if len(args) != 1 {
			return errUsage
		}
		if err := c.secrets.SetAPIKey(args[0]); err != nil {
			return err
		}
		c.tokens.Invalidate()
		fmt.Fprintln(c.out, "API key saved")
	default:
		return errUsage
	}

	return nil
}

// details fetches the record named by "<type> <id>". A nil result means the
// failure was already reported.
func (c *CLI) details(ctx context.Context, args []string) (*model.ShowDetails, error) {
	kind, id, err := parseRef(args)
	if err != nil {
		return nil, err
	}

	c.catalog.FetchDetails(ctx, id, kind)
	return c.catalog.SelectedShow.Get(), nil
}

// toggleTarget returns the stored show when it is already on the list, so it
// can be removed without reaching the catalog.
func (c *CLI) toggleTarget(ctx context.Context, list string, args []string) (model.Show, bool, error) {
	_, id, err := parseRef(args)
	if err != nil {
		return model.Show{}, false, err
	}

	var shows []model.Show
	switch list {
	case "watchlist":
		shows = c.lists.Watchlist()
	case "favorite":
		shows = c.lists.Favorites()
	case "watched":
		shows = c.lists.Watched()
	}
	for _, s := range shows {
		if s.ID == id {
			return s, true, nil
		}
	}

	d, err := c.details(ctx, args)
	if err != nil || d == nil {
		return model.Show{}, false, err
	}
	return d.Show, true, nil
}

func parseRef(args []string) (model.ShowType, int, error) {
	if len(args) != 2 {
		return "", 0, errUsage
	}
	kind, ok := model.ParseShowType(args[0])
	if !ok || (kind != model.TypeMovie && kind != model.TypeSeries) {
		return "", 0, fmt.Errorf("invalid type '%s'", args[0])
	}
	id, err := strconv.Atoi(args[1])
	if err != nil {
		return "", 0, fmt.Errorf("invalid id '%s'", args[1])
	}
	return kind, id, nil
}

func firstSeasonEpisodes(d *model.ShowDetails) int {
	for _, s := range d.Seasons {
		if s.Number == 1 {
			return s.EpisodesCount
		}
	}
	return 0
}

func (c *CLI) printShows(title string, shows []model.Show) {
	fmt.Fprintf(c.out, "%s (%d)\n", title, len(shows))
	for _, s := range shows {
		fmt.Fprintf(c.out, "  %-8d %-7s %s\n", s.ID, s.Type, s.Name)
	}
}

func (c *CLI) printUpdates() {
	updates := c.catalog.Notifications.Get()
	fmt.Fprintf(c.out, "Updates (%d)\n", len(updates))
	now := c.clock()
	for _, u := range updates {
		fmt.Fprintf(c.out, "  %s\n", u.Describe(now))
	}
}

func (c *CLI) printDetails(d *model.ShowDetails) {
	fmt.Fprintf(c.out, "%s (%s %d)\n", d.Name, d.Type, d.ID)
	if d.Overview != "" {
		fmt.Fprintf(c.out, "  %s\n", d.Overview)
	}
	if d.Runtime > 0 {
		fmt.Fprintf(c.out, "  runtime: %s\n", time.Duration(d.Runtime)*time.Minute)
	}
	if d.NextAired != nil {
		fmt.Fprintf(c.out, "  next: %s %s\n", d.NextAired.AirDate, d.NextAired.Name)
	}
	for _, s := range d.Seasons {
		fmt.Fprintf(c.out, "  %s season: %s episodes\n", humanize.Ordinal(s.Number), humanize.Comma(int64(s.EpisodesCount)))
	}
	for _, a := range d.Characters {
		fmt.Fprintf(c.out, "  %s as %s\n", a.Name, a.Role)
	}
	for _, t := range d.Trailers {
		fmt.Fprintf(c.out, "  trailer: %s https://youtu.be/%s\n", t.Name, t.VideoID)
	}
	fmt.Fprintf(c.out, "  watchlist=%t favorite=%t watched=%t watching=%t\n",
		c.lists.InWatchlist(d.ID), c.lists.InFavorites(d.ID), c.lists.InWatched(d.ID), c.lists.IsWatching(d.ID))
}

func (c *CLI) printLists() {
	c.printShows("Watchlist", c.lists.Watchlist())
	c.printShows("Favorites", c.lists.Favorites())
	c.printShows("Watched", c.lists.Watched())

	watching := c.lists.Watching()
	fmt.Fprintf(c.out, "Watching (%d)\n", len(watching))
	for _, w := range watching {
		fmt.Fprintf(c.out, "  %-8d %-7s %s S%02dE%02d of %d\n",
			w.ID, w.Type, w.Name, w.Progress.Season, w.Progress.Episode, w.Progress.TotalEpisodes)
	}
}

func (c *CLI) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}
