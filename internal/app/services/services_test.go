package services

import (
	"context"
	"errors"
	"sync"

	"github.com/quintans/tvshelf/internal/app"
	"github.com/quintans/tvshelf/internal/model"
)

type memKV struct {
	mu   sync.Mutex
	data map[string]string
	err  error
	// writes to these keys fail
	failing map[string]bool
}

func newMemKV() *memKV {
	return &memKV{data: map[string]string{}}
}

func (m *memKV) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.failing[key] {
		return errors.New("write failed for " + key)
	}
	m.data[key] = value
	return nil
}

type recorder struct {
	mu       sync.Mutex
	messages []app.Message
}

func (r *recorder) Publish(m app.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, m)
}

func (r *recorder) notifications() []app.Notify {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []app.Notify
	for _, m := range r.messages {
		if n, ok := m.(app.Notify); ok {
			res = append(res, n)
		}
	}
	return res
}

func (r *recorder) notificationsOf(kind app.NotifyType) []app.Notify {
	var res []app.Notify
	for _, n := range r.notifications() {
		if n.Type == kind {
			res = append(res, n)
		}
	}
	return res
}

func (r *recorder) listChanges() []app.ListChanged {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []app.ListChanged
	for _, m := range r.messages {
		if c, ok := m.(app.ListChanged); ok {
			res = append(res, c)
		}
	}
	return res
}

var errUpstream = errors.New("upstream down")

type fakeCatalog struct {
	movies    []model.Show
	series    []model.Show
	search    map[string][]model.Show
	details   map[int]*model.ShowDetails
	updates   []model.Update
	failAll   bool
	onDetails func()
	mu        sync.Mutex
	sinceSeen []int64
	queries   []string
}

func (f *fakeCatalog) PopularMovies(context.Context) ([]model.Show, error) {
	if f.failAll {
		return nil, errUpstream
	}
	return f.movies, nil
}

func (f *fakeCatalog) PopularSeries(context.Context) ([]model.Show, error) {
	if f.failAll {
		return nil, errUpstream
	}
	return f.series, nil
}

func (f *fakeCatalog) Search(_ context.Context, query string) ([]model.Show, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.failAll {
		return nil, errUpstream
	}
	return f.search[query], nil
}

func (f *fakeCatalog) Details(_ context.Context, id int, _ model.ShowType) (*model.ShowDetails, error) {
	if f.onDetails != nil {
		f.onDetails()
	}
	if f.failAll {
		return nil, errUpstream
	}
	d, ok := f.details[id]
	if !ok {
		return nil, &app.ApiRequestError{Endpoint: "/series", Status: 404, Detail: "not found"}
	}
	return d, nil
}

func (f *fakeCatalog) UpdatesSince(_ context.Context, since int64) ([]model.Update, error) {
	f.mu.Lock()
	f.sinceSeen = append(f.sinceSeen, since)
	f.mu.Unlock()
	if f.failAll {
		return nil, errUpstream
	}
	return f.updates, nil
}
