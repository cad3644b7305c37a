package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPost_DerivedAggregates(t *testing.T) {
	p := Post{
		Type:      PostTypeActivity,
		StarredBy: []string{"a", "b"},
		Ratings:   []Rating{{UserID: "a", Rating: 5}, {UserID: "b", Rating: 4}, {UserID: "c", Rating: 5}},
	}

	assert.Equal(t, 2, p.Stars())
	assert.Equal(t, 3, p.RatingCount())
	assert.Equal(t, 4.67, p.AverageRating())

	r, ok := p.RatingBy("b")
	assert.True(t, ok)
	assert.Equal(t, 4, r)
	assert.True(t, p.IsStarredBy("a"))
	assert.False(t, p.IsStarredBy("c"))
}

func TestPost_NonActivityIgnoresRatings(t *testing.T) {
	p := Post{Type: PostTypePost, Ratings: []Rating{{UserID: "a", Rating: 5}}}
	assert.Zero(t, p.RatingCount())
	assert.Zero(t, p.AverageRating())

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.NotContains(t, out, "averageRating")
	assert.NotContains(t, out, "ratingCount")
	assert.Equal(t, float64(0), out["stars"])
	assert.Equal(t, []interface{}{}, out["starredBy"])
}

func TestPost_CloneIsDeep(t *testing.T) {
	p := Post{
		Type:      PostTypeActivity,
		StarredBy: []string{"a"},
		Ratings:   []Rating{{UserID: "a", Rating: 3}},
		Media:     &Media{URL: "x", Kind: MediaImage},
	}
	c := p.Clone()
	c.StarredBy[0] = "z"
	c.Ratings[0].Rating = 1
	c.Media.URL = "y"

	assert.Equal(t, "a", p.StarredBy[0])
	assert.Equal(t, 3, p.Ratings[0].Rating)
	assert.Equal(t, "x", p.Media.URL)
}

func TestUser_IsLocked(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	until := now.Add(time.Minute)
	u := User{LockoutUntil: &until}

	assert.True(t, u.IsLocked(now))
	assert.False(t, u.IsLocked(until))
	assert.False(t, User{}.IsLocked(now))
}

func TestToast_Expired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	toast := Toast{CreatedAt: now}

	assert.False(t, toast.Expired(now.Add(4*time.Second), 5*time.Second))
	assert.True(t, toast.Expired(now.Add(5*time.Second), 5*time.Second))
}
