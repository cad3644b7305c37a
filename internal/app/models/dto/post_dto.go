package dto

import (
	"encoding/json"

	"github.com/yigit/majlis/internal/app/models"
)

// MediaRequest attaches an image or video to a post
type MediaRequest struct {
	URL  string `json:"url" binding:"required,url"`
	Type string `json:"type" binding:"required,oneof=image video"`
}

// CreatePostRequest publishes a post, activity or announcement
type CreatePostRequest struct {
	Title   string        `json:"title" binding:"required,notblank,max=200"`
	Content string        `json:"content" binding:"required,notblank"`
	Type    string        `json:"type" binding:"required,oneof=POST ACTIVITY ANNOUNCEMENT"`
	Media   *MediaRequest `json:"media"`
}

// ToModel converts the request into the store input
func (r CreatePostRequest) ToModel() models.NewPost {
	in := models.NewPost{
		Title:   r.Title,
		Content: r.Content,
		Type:    models.PostType(r.Type),
	}
	if r.Media != nil {
		in.Media = &models.Media{URL: r.Media.URL, Kind: models.MediaKind(r.Media.Type)}
	}
	return in
}

// RateRequest rates an activity
type RateRequest struct {
	Rating int `json:"rating" binding:"required,min=1,max=5"`
}

// FeedQuery selects and orders the feed
type FeedQuery struct {
	Filter string `form:"filter"`
	Sort   string `form:"sort"`
}

// PostResponse is a post plus the caller's own interactions with it
type PostResponse struct {
	Post        models.Post
	StarredByMe bool
	MyRating    int
}

// MarshalJSON flattens the viewer fields into the post object
func (r PostResponse) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(r.Post)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, err
	}
	fields["starredByMe"], _ = json.Marshal(r.StarredByMe)
	if r.MyRating > 0 {
		fields["myRating"], _ = json.Marshal(r.MyRating)
	}
	return json.Marshal(fields)
}

// NewPostResponse annotates p for viewerID; an empty id means anonymous
func NewPostResponse(p models.Post, viewerID string) PostResponse {
	resp := PostResponse{Post: p}
	if viewerID != "" {
		resp.StarredByMe = p.IsStarredBy(viewerID)
		if r, ok := p.RatingBy(viewerID); ok {
			resp.MyRating = r
		}
	}
	return resp
}

// NewPostResponses maps a post list
func NewPostResponses(posts []models.Post, viewerID string) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, NewPostResponse(p, viewerID))
	}
	return out
}
