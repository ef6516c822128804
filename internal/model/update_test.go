package model_test

import (
	"testing"
	"time"

	"github.com/quintans/tvshelf/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestUpdateRelevant(t *testing.T) {
	assert.True(t, model.Update{RecordType: model.TypeSeries}.Relevant())
	assert.True(t, model.Update{RecordType: model.TypeMovie}.Relevant())
	assert.False(t, model.Update{RecordType: model.TypeEpisode}.Relevant())
}

func TestUpdateDescribe(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	u := model.Update{
		RecordType: model.TypeSeries,
		RecordID:   355413,
		Method:     "update",
		Timestamp:  now.Add(-2 * time.Hour).Unix(),
	}
	assert.Equal(t, "series 355413 updated 2 hours ago", u.Describe(now))

	u.Method = ""
	assert.Equal(t, "series 355413 changed 2 hours ago", u.Describe(now))
}
