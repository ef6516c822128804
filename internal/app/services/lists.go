package services

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/quintans/faults"
	"github.com/quintans/tvshelf/internal/app"
	"github.com/quintans/tvshelf/internal/model"
)

var listKeys = map[model.ListName]string{
	model.Watchlist: "user_watchlist",
	model.Favorites: "user_favorites",
	model.Watched:   "user_watched",
	model.Watching:  "user_watching",
}

// ListKey is the store key of a personal list.
func ListKey(name model.ListName) string {
	return listKeys[name]
}

// Lists keeps the personal lists in memory and writes every changed list back
// to the store before returning.
type Lists struct {
	kv  app.KeyValue
	bus app.EventBus

	mu    sync.Mutex
	lists *model.Lists
}

type ListsOption func(*listsOptions)

type listsOptions struct {
	defaultWatching map[int]model.WatchingShow
}

// WithDefaultWatching seeds the watching list when nothing was ever stored for it.
func WithDefaultWatching(shows ...model.WatchingShow) ListsOption {
	return func(o *listsOptions) {
		o.defaultWatching = make(map[int]model.WatchingShow, len(shows))
		for _, s := range shows {
			o.defaultWatching[s.ID] = s
		}
	}
}

func NewLists(kv app.KeyValue, bus app.EventBus, options ...ListsOption) *Lists {
	opts := listsOptions{}
	for _, o := range options {
		o(&opts)
	}

	lists := model.NewLists()
	lists.Hydrate(
		load[model.Show](kv, model.Watchlist, nil),
		load[model.Show](kv, model.Favorites, nil),
		load[model.Show](kv, model.Watched, nil),
		load(kv, model.Watching, opts.defaultWatching),
	)

	return &Lists{
		kv:    kv,
		bus:   bus,
		lists: lists,
	}
}

// load reads a stored list. Missing or unreadable data falls back to def.
func load[V any](kv app.KeyValue, name model.ListName, def map[int]V) map[int]V {
	key := ListKey(name)
	raw, ok, err := kv.Get(key)
	if err != nil {
		slog.Warn("Failed to read list, using default", "list", name, "error", err)
		return def
	}
	if !ok {
		return def
	}

	var m map[int]V
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		slog.Warn("Malformed list data, using default", "list", name, "error", err)
		return def
	}
	return m
}

func (l *Lists) ToggleWatchlist(show model.Show) error {
	return l.mutate(func(lists *model.Lists) []model.ListName {
		return lists.ToggleWatchlist(show)
	})
}

func (l *Lists) ToggleFavorites(show model.Show) error {
	return l.mutate(func(lists *model.Lists) []model.ListName {
		return lists.ToggleFavorites(show)
	})
}

func (l *Lists) ToggleWatched(show model.Show) error {
	return l.mutate(func(lists *model.Lists) []model.ListName {
		return lists.ToggleWatched(show)
	})
}

// StartWatching begins tracking progress. A non positive total uses model.DefaultTotalEpisodes.
func (l *Lists) StartWatching(show model.Show, totalEpisodes int) error {
	return l.mutate(func(lists *model.Lists) []model.ListName {
		return lists.StartWatching(show, totalEpisodes)
	})
}

// AdvanceEpisode moves to the next episode, or to watched after the last one.
func (l *Lists) AdvanceEpisode(showID int) error {
	return l.mutate(func(lists *model.Lists) []model.ListName {
		return lists.AdvanceEpisode(showID)
	})
}

func (l *Lists) mutate(fn func(*model.Lists) []model.ListName) error {
	events, err := l.apply(fn)
	for _, e := range events {
		l.bus.Publish(e)
	}
	return err
}

// apply runs fn and persists the changed lists while holding the lock,
// so the store sees writes in mutation order.
// If a write fails the mutation is undone in memory and the lists already
// written are put back, leaving memory and store as they were.
func (l *Lists) apply(fn func(*model.Lists) []model.ListName) ([]app.ListChanged, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	before := l.lists.Clone()
	changed := fn(l.lists)
	for i, name := range changed {
		if err := l.save(l.lists, name); err != nil {
			l.lists = before
			for _, written := range changed[:i] {
				if rerr := l.save(before, written); rerr != nil {
					slog.Error("Failed to restore list after a failed save", "list", written, "error", rerr)
				}
			}
			return nil, err
		}
	}

	events := make([]app.ListChanged, 0, len(changed))
	for _, name := range changed {
		events = append(events, app.ListChanged{List: name, Size: l.size(name)})
	}
	return events, nil
}

func (l *Lists) save(lists *model.Lists, name model.ListName) error {
	data, err := json.Marshal(lists.Collection(name))
	if err != nil {
		return faults.Errorf("marshalling %s: %w", name, err)
	}
	if err := l.kv.Set(ListKey(name), string(data)); err != nil {
		return faults.Errorf("saving %s: %w", name, err)
	}
	return nil
}

func (l *Lists) size(name model.ListName) int {
	switch name {
	case model.Watchlist:
		return len(l.lists.Watchlist())
	case model.Favorites:
		return len(l.lists.Favorites())
	case model.Watched:
		return len(l.lists.Watched())
	case model.Watching:
		return len(l.lists.Watching())
	}
	return 0
}

func (l *Lists) InWatchlist(id int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lists.InWatchlist(id)
}

func (l *Lists) InFavorites(id int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lists.InFavorites(id)
}

func (l *Lists) InWatched(id int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lists.InWatched(id)
}

func (l *Lists) IsWatching(id int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lists.IsWatching(id)
}

func (l *Lists) Progress(id int) (model.Progress, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lists.Progress(id)
}

func (l *Lists) Watchlist() []model.Show {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lists.Watchlist()
}

func (l *Lists) Favorites() []model.Show {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lists.Favorites()
}

func (l *Lists) Watched() []model.Show {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lists.Watched()
}

func (l *Lists) Watching() []model.WatchingShow {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lists.Watching()
}
