package tvdb

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/quintans/tvshelf/internal/lib/values"
	"github.com/quintans/tvshelf/internal/model"
	"github.com/tidwall/gjson"
)

// shape is how an upstream list item wraps the actual record.
type shape int

const (
	shapeDirect shape = iota
	shapeRecord
	shapeSeries
	shapeMovie
)

var wrappers = []struct {
	key   string
	shape shape
}{
	{"record", shapeRecord},
	{"series", shapeSeries},
	{"movie", shapeMovie},
}

type envelope struct {
	shape shape
	body  gjson.Result
}

func classify(item gjson.Result) envelope {
	for _, w := range wrappers {
		if v := item.Get(w.key); v.IsObject() {
			return envelope{shape: w.shape, body: v}
		}
	}
	return envelope{shape: shapeDirect, body: item}
}

func (e envelope) showType(fallback model.ShowType) model.ShowType {
	switch e.shape {
	case shapeSeries:
		return model.TypeSeries
	case shapeMovie:
		return model.TypeMovie
	}
	if t, ok := model.ParseShowType(e.body.Get("type").String()); ok {
		return t
	}
	return fallback
}

// Normalizer reshapes upstream JSON into catalog records.
type Normalizer struct {
	ArtworkURL string
}

var defaultNormalizer = Normalizer{ArtworkURL: ArtworkURL}

func NormalizeList(raw gjson.Result, fallback model.ShowType) []model.Show {
	return defaultNormalizer.List(raw, fallback)
}

func NormalizeDetail(raw gjson.Result) model.ShowDetails {
	return defaultNormalizer.Detail(raw)
}

// List normalizes an array of records. Anything but an array yields an empty list
// and records without a usable id are skipped.
func (n Normalizer) List(raw gjson.Result, fallback model.ShowType) []model.Show {
	shows := []model.Show{}
	if !raw.IsArray() {
		return shows
	}

	raw.ForEach(func(_, item gjson.Result) bool {
		env := classify(item)
		id, ok := resolveID(env.body.Get("id"))
		if !ok {
			id, ok = resolveID(env.body.Get("tvdb_id"))
		}
		if !ok {
			return true
		}

		shows = append(shows, model.Show{
			ID:       id,
			Name:     env.body.Get("name").String(),
			Type:     env.showType(fallback),
			Overview: env.body.Get("overview").String(),
			ImageURL: n.imageURL(env.body),
		})
		return true
	})

	return shows
}

// Detail normalizes an extended record. The caller stamps the type.
func (n Normalizer) Detail(raw gjson.Result) model.ShowDetails {
	id, _ := resolveID(raw.Get("id"))
	t, _ := model.ParseShowType(raw.Get("type").String())
	d := model.ShowDetails{
		Show: model.Show{
			ID:       id,
			Name:     raw.Get("name").String(),
			Type:     t,
			Overview: raw.Get("overview").String(),
			ImageURL: n.imageURL(raw),
		},
		Runtime: int(values.Coalesce(raw.Get("runtime").Int(), raw.Get("averageRuntime").Int())),
	}

	raw.Get("characters").ForEach(func(_, c gjson.Result) bool {
		person := c.Get("personName").String()
		role := c.Get("role").String()
		if role == "" && person != "" {
			role = c.Get("name").String()
		}
		d.Characters = append(d.Characters, model.Actor{
			ID:    int(c.Get("id").Int()),
			Name:  values.Coalesce(person, c.Get("name").String()),
			Image: n.absolute(values.Coalesce(c.Get("image").String(), c.Get("personImgURL").String())),
			Role:  role,
		})
		return true
	})

	raw.Get("artworks").ForEach(func(_, a gjson.Result) bool {
		d.Artworks = append(d.Artworks, model.Artwork{
			ID:    int(a.Get("id").Int()),
			Image: n.absolute(a.Get("image").String()),
		})
		return true
	})

	raw.Get("seasons").ForEach(func(_, s gjson.Result) bool {
		d.Seasons = append(d.Seasons, model.Season{
			ID:            int(s.Get("id").Int()),
			Number:        int(s.Get("number").Int()),
			EpisodesCount: episodesCount(s),
		})
		return true
	})

	raw.Get("trailers").ForEach(func(_, t gjson.Result) bool {
		u := t.Get("url").String()
		videoID := ExtractVideoID(u)
		if videoID == "" {
			return true
		}
		d.Trailers = append(d.Trailers, model.Trailer{
			ID:      int(t.Get("id").Int()),
			Name:    t.Get("name").String(),
			URL:     u,
			Runtime: int(t.Get("runtime").Int()),
			VideoID: videoID,
		})
		return true
	})

	switch na := raw.Get("nextAired"); {
	case na.IsObject():
		d.NextAired = &model.NextAired{AirDate: na.Get("airDate").String(), Name: na.Get("name").String()}
	case na.String() != "":
		d.NextAired = &model.NextAired{AirDate: na.String()}
	}

	return d
}

func episodesCount(season gjson.Result) int {
	for _, key := range []string{"episodeCount", "episodes_count"} {
		if v := season.Get(key); v.Exists() {
			return int(v.Int())
		}
	}
	if eps := season.Get("episodes"); eps.IsArray() {
		return len(eps.Array())
	}
	return 0
}

var reTrailingID = regexp.MustCompile(`\D(\d+)$`)

// resolveID accepts 355413, "355413" or a composite like "series-355413".
func resolveID(v gjson.Result) (int, bool) {
	var id int
	switch v.Type {
	case gjson.Number:
		id = int(v.Int())
	case gjson.String:
		s := strings.TrimSpace(v.String())
		if i, err := strconv.Atoi(s); err == nil {
			id = i
		} else if m := reTrailingID.FindStringSubmatch(s); m != nil {
			id, _ = strconv.Atoi(m[1])
		}
	}
	return id, id > 0
}

func (n Normalizer) imageURL(body gjson.Result) string {
	return n.absolute(values.Coalesce(
		body.Get("image").String(),
		body.Get("poster").String(),
		body.Get("image_url").String(),
	))
}

func (n Normalizer) absolute(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimSuffix(n.ArtworkURL, "/") + path
}

var (
	reYouTube = regexp.MustCompile(`^.*(youtu\.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)
	reVideoID = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

// ExtractVideoID returns the YouTube video id of a watch, embed or short link, or "".
func ExtractVideoID(u string) string {
	m := reYouTube.FindStringSubmatch(u)
	if m == nil || !reVideoID.MatchString(m[2]) {
		return ""
	}
	return m[2]
}
