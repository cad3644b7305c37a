package store

import (
	"strings"

	"github.com/yigit/majlis/internal/app/models"
	"github.com/yigit/majlis/internal/i18n"
	"github.com/yigit/majlis/internal/pkg/apperrors"
)

// Posts returns a copy of the feed in storage order, newest first
func (s *Store) Posts() []models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.postsLocked()
}

func (s *Store) postsLocked() []models.Post {
	out := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p.Clone())
	}
	return out
}

// Post returns a copy of one post
func (s *Store) Post(id string) (models.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.postIndex(id)
	if idx < 0 {
		return models.Post{}, false
	}
	return s.posts[idx].Clone(), true
}

// Feed filters and orders the feed as of the store clock
func (s *Store) Feed(q FeedQuery) []models.Post {
	s.mu.Lock()
	posts := s.postsLocked()
	now := s.now()
	window := s.opts.RecapWindow
	s.mu.Unlock()

	if q.Window == 0 {
		q.Window = window
	}
	return ListFeed(posts, q, now)
}

// AddPost publishes a post authored by the session user. Activities and
// announcements need a member or admin.
func (c *Client) AddPost(in models.NewPost) (models.Post, error) {
	if err := validateNewPost(in); err != nil {
		return models.Post{}, err
	}

	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := c.sessionLocked()
	if !ok {
		return models.Post{}, apperrors.ErrNotAuthenticated
	}
	if in.Type != models.PostTypePost && !u.Role.IsPrivileged() {
		c.toastLocked(i18n.KeyPostTypeNotAllowed, models.ToastError)
		return models.Post{}, apperrors.ErrPermissionDenied
	}

	post := s.prependPostLocked(models.Post{
		ID:      "post-" + newID(),
		Type:    in.Type,
		Title:   strings.TrimSpace(in.Title),
		Content: in.Content,
		Author:  u.Snapshot(),
		Media:   in.Media,
	})
	c.toastLocked(i18n.KeyPostPublished, models.ToastSuccess)

	return post, nil
}

func (s *Store) prependPostLocked(p models.Post) models.Post {
	p.CreatedAt = s.now()
	p.StarredBy = []string{}
	if p.Type == models.PostTypeActivity {
		p.Ratings = []models.Rating{}
	} else {
		p.Ratings = nil
	}
	p = p.Clone()
	s.posts = append([]models.Post{p}, s.posts...)
	return p.Clone()
}

func validateNewPost(in models.NewPost) error {
	if strings.TrimSpace(in.Title) == "" {
		return apperrors.NewValidationError("title is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return apperrors.NewValidationError("content is required")
	}
	if !in.Type.Valid() {
		return apperrors.NewValidationError("unknown post type " + string(in.Type))
	}
	if in.Media != nil {
		if in.Media.URL == "" {
			return apperrors.NewValidationError("media url is required")
		}
		if in.Media.Kind != models.MediaImage && in.Media.Kind != models.MediaVideo {
			return apperrors.NewValidationError("unknown media type " + string(in.Media.Kind))
		}
	}
	return nil
}

// ToggleStar adds or removes the session user's star
func (c *Client) ToggleStar(postID string) (models.Post, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := c.sessionLocked()
	if !ok {
		c.toastLocked(i18n.KeyMustBeSignedIn, models.ToastError)
		return models.Post{}, apperrors.ErrNotAuthenticated
	}

	idx := s.postIndex(postID)
	if idx < 0 {
		return models.Post{}, apperrors.ErrResourceNotFound
	}

	p := &s.posts[idx]
	if p.IsStarredBy(u.ID) {
		kept := make([]string, 0, len(p.StarredBy))
		for _, id := range p.StarredBy {
			if id != u.ID {
				kept = append(kept, id)
			}
		}
		p.StarredBy = kept
	} else {
		p.StarredBy = append(p.StarredBy, u.ID)
	}

	return p.Clone(), nil
}

// RateActivity records the session user's rating, replacing any earlier one
func (c *Client) RateActivity(postID string, rating int) (models.Post, error) {
	if rating < 1 || rating > 5 {
		return models.Post{}, apperrors.NewCustomError(apperrors.ErrInvalidRating, apperrors.ErrInvalidRating.Error())
	}

	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := c.sessionLocked()
	if !ok {
		return models.Post{}, apperrors.ErrNotAuthenticated
	}

	idx := s.postIndex(postID)
	if idx < 0 {
		return models.Post{}, apperrors.ErrResourceNotFound
	}

	p := &s.posts[idx]
	if p.Type != models.PostTypeActivity {
		return models.Post{}, apperrors.ErrNotActivity
	}
	if p.Author.ID == u.ID {
		c.toastLocked(i18n.KeyCannotRateOwnActivity, models.ToastError)
		return models.Post{}, apperrors.ErrOwnActivity
	}

	ratings := make([]models.Rating, 0, len(p.Ratings)+1)
	for _, r := range p.Ratings {
		if r.UserID != u.ID {
			ratings = append(ratings, r)
		}
	}
	p.Ratings = append(ratings, models.Rating{UserID: u.ID, Rating: rating})
	c.toastLocked(i18n.KeyRatingSubmitted, models.ToastSuccess)

	return p.Clone(), nil
}

func (s *Store) postIndex(id string) int {
	for i := range s.posts {
		if s.posts[i].ID == id {
			return i
		}
	}
	return -1
}
