package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Update is a change notification from upstream.
type Update struct {
	ID         int      `json:"id"`
	RecordType ShowType `json:"recordType"`
	RecordID   int      `json:"recordId"`
	Method     string   `json:"method"`
	Timestamp  int64    `json:"timestamp"`
}

// Relevant reports whether the update concerns a record kept client side.
func (u Update) Relevant() bool {
	return u.RecordType == TypeSeries || u.RecordType == TypeMovie
}

func (u Update) Time() time.Time {
	return time.Unix(u.Timestamp, 0)
}

// Describe renders the update for display, e.g. "series 355413 updated 2 hours ago".
func (u Update) Describe(now time.Time) string {
	verb := "changed"
	if u.Method != "" {
		verb = strings.TrimSuffix(strings.ToLower(u.Method), "e") + "ed"
	}
	return fmt.Sprintf("%s %d %s %s", u.RecordType, u.RecordID, verb, humanize.RelTime(u.Time(), now, "ago", "from now"))
}
