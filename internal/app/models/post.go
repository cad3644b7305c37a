package models

import (
	"encoding/json"
	"math"
	"time"
)

// Media is an optional attachment of a post
type Media struct {
	URL  string    `json:"url"`
	Kind MediaKind `json:"type"`
}

// Rating is one user's score for an activity
type Rating struct {
	UserID string `json:"userId"`
	Rating int    `json:"rating"`
}

// Post is a feed item. Star and rating aggregates are derived from
// StarredBy and Ratings on every read.
type Post struct {
	ID        string    `json:"id"`
	Type      PostType  `json:"type"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    Author    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	StarredBy []string  `json:"starredBy"`
	Media     *Media    `json:"media,omitempty"`
	Ratings   []Rating  `json:"ratings,omitempty"`
}

// Stars is the number of distinct users who starred the post
func (p Post) Stars() int {
	return len(p.StarredBy)
}

// RatingCount is the number of ratings on an activity
func (p Post) RatingCount() int {
	if p.Type != PostTypeActivity {
		return 0
	}
	return len(p.Ratings)
}

// AverageRating is the mean rating rounded to two decimals, 0 without ratings
func (p Post) AverageRating() float64 {
	if p.Type != PostTypeActivity || len(p.Ratings) == 0 {
		return 0
	}
	total := 0
	for _, r := range p.Ratings {
		total += r.Rating
	}
	return RoundRating(float64(total) / float64(len(p.Ratings)))
}

// RoundRating rounds to two decimal places
func RoundRating(v float64) float64 {
	return math.Round(v*100) / 100
}

// IsStarredBy reports whether userID starred the post
func (p Post) IsStarredBy(userID string) bool {
	for _, id := range p.StarredBy {
		if id == userID {
			return true
		}
	}
	return false
}

// RatingBy returns userID's rating, if any
func (p Post) RatingBy(userID string) (int, bool) {
	for _, r := range p.Ratings {
		if r.UserID == userID {
			return r.Rating, true
		}
	}
	return 0, false
}

// Clone returns a deep copy of p
func (p Post) Clone() Post {
	c := p
	c.Author = p.Author.Clone()
	c.StarredBy = append([]string{}, p.StarredBy...)
	if p.Media != nil {
		m := *p.Media
		c.Media = &m
	}
	if p.Ratings != nil {
		c.Ratings = append([]Rating{}, p.Ratings...)
	}
	return c
}

// MarshalJSON adds the derived aggregates. Rating aggregates are only
// emitted for activities.
func (p Post) MarshalJSON() ([]byte, error) {
	type plain Post
	out := struct {
		plain
		Stars         int      `json:"stars"`
		RatingCount   *int     `json:"ratingCount,omitempty"`
		AverageRating *float64 `json:"averageRating,omitempty"`
	}{
		plain: plain(p),
		Stars: p.Stars(),
	}
	if out.StarredBy == nil {
		out.StarredBy = []string{}
	}
	if p.Type == PostTypeActivity {
		count := p.RatingCount()
		avg := p.AverageRating()
		out.RatingCount = &count
		out.AverageRating = &avg
	}
	return json.Marshal(out)
}

// NewPost holds the caller supplied fields of a post
type NewPost struct {
	Title   string
	Content string
	Type    PostType
	Media   *Media
}
