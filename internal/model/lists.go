package model

import (
	"cmp"
	"maps"
	"slices"
)

type ListName string

const (
	Watchlist ListName = "watchlist"
	Favorites ListName = "favorites"
	Watched   ListName = "watched"
	Watching  ListName = "watching"
)

var ListNames = []ListName{Watchlist, Favorites, Watched, Watching}

const DefaultTotalEpisodes = 10

// Lists holds the four personal lists keyed by show id.
// A show is in at most one of watchlist, watched and watching; favorites is independent.
// Mutations return the lists they changed so callers can persist exactly those.
type Lists struct {
	watchlist map[int]Show
	favorites map[int]Show
	watched   map[int]Show
	watching  map[int]WatchingShow
}

func NewLists() *Lists {
	return &Lists{
		watchlist: map[int]Show{},
		favorites: map[int]Show{},
		watched:   map[int]Show{},
		watching:  map[int]WatchingShow{},
	}
}

func (l *Lists) Hydrate(watchlist, favorites, watched map[int]Show, watching map[int]WatchingShow) {
	l.watchlist = orEmpty(watchlist)
	l.favorites = orEmpty(favorites)
	l.watched = orEmpty(watched)
	l.watching = orEmpty(watching)
}

// Clone returns an independent copy of every list.
func (l *Lists) Clone() *Lists {
	return &Lists{
		watchlist: maps.Clone(l.watchlist),
		favorites: maps.Clone(l.favorites),
		watched:   maps.Clone(l.watched),
		watching:  maps.Clone(l.watching),
	}
}

func orEmpty[V any](m map[int]V) map[int]V {
	if m == nil {
		return map[int]V{}
	}
	return m
}

func (l *Lists) ToggleWatchlist(show Show) []ListName {
	if _, ok := l.watchlist[show.ID]; ok {
		delete(l.watchlist, show.ID)
		return []ListName{Watchlist}
	}

	l.watchlist[show.ID] = show
	changed := []ListName{Watchlist}
	if evict(l.watched, show.ID) {
		changed = append(changed, Watched)
	}
	return changed
}

func (l *Lists) ToggleFavorites(show Show) []ListName {
	if _, ok := l.favorites[show.ID]; ok {
		delete(l.favorites, show.ID)
	} else {
		l.favorites[show.ID] = show
	}
	return []ListName{Favorites}
}

func (l *Lists) ToggleWatched(show Show) []ListName {
	if _, ok := l.watched[show.ID]; ok {
		delete(l.watched, show.ID)
		return []ListName{Watched}
	}
	return l.markWatched(show)
}

func (l *Lists) markWatched(show Show) []ListName {
	l.watched[show.ID] = show
	changed := []ListName{Watched}
	if evict(l.watchlist, show.ID) {
		changed = append(changed, Watchlist)
	}
	if evict(l.watching, show.ID) {
		changed = append(changed, Watching)
	}
	return changed
}

// StartWatching starts tracking progress from season 1 episode 1.
// It does nothing if the show is already being watched.
func (l *Lists) StartWatching(show Show, totalEpisodes int) []ListName {
	if _, ok := l.watching[show.ID]; ok {
		return nil
	}
	if totalEpisodes <= 0 {
		totalEpisodes = DefaultTotalEpisodes
	}

	l.watching[show.ID] = WatchingShow{
		Show: show,
		Progress: Progress{
			Season:        1,
			Episode:       1,
			TotalEpisodes: totalEpisodes,
		},
	}
	changed := []ListName{Watching}
	if evict(l.watchlist, show.ID) {
		changed = append(changed, Watchlist)
	}
	if evict(l.watched, show.ID) {
		changed = append(changed, Watched)
	}
	return changed
}

// AdvanceEpisode moves to the next episode. Once the last episode was reached
// the show moves to watched.
func (l *Lists) AdvanceEpisode(showID int) []ListName {
	ws, ok := l.watching[showID]
	if !ok {
		return nil
	}

	if ws.Progress.Episode < ws.Progress.TotalEpisodes {
		ws.Progress.Episode++
		l.watching[showID] = ws
		return []ListName{Watching}
	}

	return l.markWatched(ws.Show)
}

func evict[V any](m map[int]V, id int) bool {
	if _, ok := m[id]; !ok {
		return false
	}
	delete(m, id)
	return true
}

func (l *Lists) InWatchlist(id int) bool {
	_, ok := l.watchlist[id]
	return ok
}

func (l *Lists) InFavorites(id int) bool {
	_, ok := l.favorites[id]
	return ok
}

func (l *Lists) InWatched(id int) bool {
	_, ok := l.watched[id]
	return ok
}

func (l *Lists) IsWatching(id int) bool {
	_, ok := l.watching[id]
	return ok
}

// Progress returns the viewing progress of a show being watched.
func (l *Lists) Progress(id int) (Progress, bool) {
	ws, ok := l.watching[id]
	return ws.Progress, ok
}

func (l *Lists) Watchlist() []Show {
	return sortedValues(l.watchlist, func(s Show) int { return s.ID })
}

func (l *Lists) Favorites() []Show {
	return sortedValues(l.favorites, func(s Show) int { return s.ID })
}

func (l *Lists) Watched() []Show {
	return sortedValues(l.watched, func(s Show) int { return s.ID })
}

func (l *Lists) Watching() []WatchingShow {
	return sortedValues(l.watching, func(s WatchingShow) int { return s.ID })
}

// Collection returns a copy of the named list, keyed by show id.
// The value is a map[int]Show, or a map[int]WatchingShow for Watching.
func (l *Lists) Collection(name ListName) any {
	switch name {
	case Watchlist:
		return maps.Clone(l.watchlist)
	case Favorites:
		return maps.Clone(l.favorites)
	case Watched:
		return maps.Clone(l.watched)
	case Watching:
		return maps.Clone(l.watching)
	}
	return nil
}

func sortedValues[V any](m map[int]V, id func(V) int) []V {
	vals := slices.Collect(maps.Values(m))
	slices.SortFunc(vals, func(a, b V) int {
		return cmp.Compare(id(a), id(b))
	})
	return vals
}
