package model

type ShowType string

const (
	TypeSeries  ShowType = "series"
	TypeMovie   ShowType = "movie"
	TypePerson  ShowType = "person"
	TypeEpisode ShowType = "episode"
)

// ParseShowType returns the known type for s and whether it was recognised.
func ParseShowType(s string) (ShowType, bool) {
	switch t := ShowType(s); t {
	case TypeSeries, TypeMovie, TypePerson, TypeEpisode:
		return t, true
	}
	return "", false
}

// Show is the canonical catalog record. Identity is ID.
type Show struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Type     ShowType `json:"type"`
	Overview string   `json:"overview,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
}

type ShowDetails struct {
	Show
	Characters []Actor    `json:"characters,omitempty"`
	Seasons    []Season   `json:"seasons,omitempty"`
	Artworks   []Artwork  `json:"artworks,omitempty"`
	NextAired  *NextAired `json:"nextAired,omitempty"`
	Runtime    int        `json:"runtime,omitempty"`
	Trailers   []Trailer  `json:"trailers,omitempty"`
}

type Actor struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
	Role  string `json:"role"`
}

type Season struct {
	ID            int `json:"id"`
	Number        int `json:"number"`
	EpisodesCount int `json:"episodes_count"`
}

type Artwork struct {
	ID    int    `json:"id"`
	Image string `json:"image"`
}

type NextAired struct {
	AirDate string `json:"airDate"`
	Name    string `json:"name,omitempty"`
}

// Trailer is only kept when VideoID could be derived from URL.
type Trailer struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	Runtime int    `json:"runtime"`
	VideoID string `json:"videoId"`
}

type Progress struct {
	Season        int `json:"season"`
	Episode       int `json:"episode"`
	TotalEpisodes int `json:"totalEpisodes"`
}

type WatchingShow struct {
	Show
	Progress Progress `json:"progress"`
}
