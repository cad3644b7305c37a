package store

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yigit/majlis/internal/app/auth"
	"github.com/yigit/majlis/internal/app/models"
	"github.com/yigit/majlis/internal/i18n"
	"github.com/yigit/majlis/internal/pkg/apperrors"
)

// FeedFilter narrows the feed to one post type
type FeedFilter string

const (
	FilterAll          FeedFilter = "all"
	FilterPost         FeedFilter = "post"
	FilterActivity     FeedFilter = "activity"
	FilterAnnouncement FeedFilter = "announcement"
)

// FeedSort orders the feed
type FeedSort string

const (
	SortLatest          FeedSort = "latest"
	SortTopRatedWeekly  FeedSort = "topRatedWeekly"
	SortTopRatedAllTime FeedSort = "topRatedAllTime"
)

// FeedQuery selects and orders feed items
type FeedQuery struct {
	Filter FeedFilter
	Sort   FeedSort
	// Window bounds topRatedWeekly; seven days when zero
	Window time.Duration
}

// ParseFeedQuery validates raw query values, defaulting blanks
func ParseFeedQuery(filter, sortBy string) (FeedQuery, error) {
	q := FeedQuery{Filter: FeedFilter(strings.ToLower(filter)), Sort: FeedSort(sortBy)}
	if q.Filter == "" {
		q.Filter = FilterAll
	}
	if q.Sort == "" {
		q.Sort = SortLatest
	}

	switch q.Filter {
	case FilterAll, FilterPost, FilterActivity, FilterAnnouncement:
	default:
		return FeedQuery{}, apperrors.NewValidationError("unknown filter " + filter)
	}
	switch q.Sort {
	case SortLatest, SortTopRatedWeekly, SortTopRatedAllTime:
	default:
		return FeedQuery{}, apperrors.NewValidationError("unknown sort " + sortBy)
	}
	return q, nil
}

// ListFeed filters posts and orders them. Rating sorts only apply to the
// activity filter; every other filter is newest first. Sorting is stable,
// so ties keep their input order.
func ListFeed(posts []models.Post, q FeedQuery, now time.Time) []models.Post {
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if q.Filter == "" || q.Filter == FilterAll || strings.EqualFold(string(p.Type), string(q.Filter)) {
			out = append(out, p)
		}
	}

	sortBy := q.Sort
	if q.Filter != FilterActivity {
		sortBy = SortLatest
	}

	switch sortBy {
	case SortTopRatedWeekly, SortTopRatedAllTime:
		activities := out[:0]
		for _, p := range out {
			if p.Type == models.PostTypeActivity {
				activities = append(activities, p)
			}
		}
		out = activities

		var since time.Time
		weekly := sortBy == SortTopRatedWeekly
		if weekly {
			window := q.Window
			if window <= 0 {
				window = 7 * 24 * time.Hour
			}
			since = now.Add(-window)
		}

		// out of window activities rank below every rated one
		score := func(p models.Post) float64 {
			if weekly && !p.CreatedAt.After(since) {
				return -1
			}
			return p.AverageRating()
		}
		sort.SliceStable(out, func(i, j int) bool {
			return score(out[i]) > score(out[j])
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}

	return out
}

// WeeklyStats summarizes the last window of feed activity
type WeeklyStats struct {
	Posts      int          `json:"posts"`
	Activities int          `json:"activities"`
	Stars      int          `json:"stars"`
	TopPost    *models.Post `json:"topPost,omitempty"`
}

// ComputeWeeklyStats counts posts created after now-window
func ComputeWeeklyStats(posts []models.Post, now time.Time, window time.Duration) WeeklyStats {
	since := now.Add(-window)

	var stats WeeklyStats
	var recent []models.Post
	for _, p := range posts {
		if !p.CreatedAt.After(since) {
			continue
		}
		recent = append(recent, p)
		stats.Stars += p.Stars()
		switch p.Type {
		case models.PostTypePost:
			stats.Posts++
		case models.PostTypeActivity:
			stats.Activities++
		}
	}

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Stars() > recent[j].Stars()
	})
	if len(recent) > 0 {
		top := recent[0].Clone()
		stats.TopPost = &top
	}
	return stats
}

// Digest is a generated announcement awaiting publication
type Digest struct {
	Title   string      `json:"title"`
	Content string      `json:"content"`
	Stats   WeeklyStats `json:"stats"`
}

// WeeklyStats returns the admin dashboard counters
func (c *Client) WeeklyStats() (WeeklyStats, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := c.requireAdminLocked(); err != nil {
		return WeeklyStats{}, err
	}
	return ComputeWeeklyStats(s.posts, s.now(), s.opts.RecapWindow), nil
}

// BuildDigest drafts the weekly digest in the session language
func (c *Client) BuildDigest() (Digest, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := c.requireAdminLocked(); err != nil {
		return Digest{}, err
	}

	stats := ComputeWeeklyStats(s.posts, s.now(), s.opts.RecapWindow)
	t := func(key string) string { return s.text(c.st.lang, key) }

	var b strings.Builder
	fmt.Fprintf(&b, "%s **%d** %s, %s **%d** %s.\n\n",
		t(i18n.KeyThisWeekSummary),
		stats.Posts, strings.ToLower(t(i18n.KeyNewPosts)),
		t(i18n.KeyAnd),
		stats.Activities, strings.ToLower(t(i18n.KeyNewActivities)))
	if stats.TopPost != nil {
		fmt.Fprintf(&b, "### %s\n", t(i18n.KeyHighlightPost))
		fmt.Fprintf(&b, "**%s** by %s\n", stats.TopPost.Title, stats.TopPost.Author.Name)
		fmt.Fprintf(&b, "> %s...\n\n", excerpt(stats.TopPost.Content, 100))
	}
	b.WriteString(t(i18n.KeyDigestClosing))

	return Digest{
		Title:   t(i18n.KeyWeeklyDigestTitle),
		Content: b.String(),
		Stats:   stats,
	}, nil
}

// PublishDigest posts a digest as an announcement by the admin
func (c *Client) PublishDigest(content string) (models.Post, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := c.requireAdminLocked(); err != nil {
		return models.Post{}, err
	}
	if strings.TrimSpace(content) == "" {
		return models.Post{}, apperrors.NewValidationError("content is required")
	}

	u, _ := c.sessionLocked()
	post := s.prependPostLocked(models.Post{
		ID:      "post-" + newID(),
		Type:    models.PostTypeAnnouncement,
		Title:   s.text(c.st.lang, i18n.KeyWeeklyDigestTitle),
		Content: content,
		Author:  u.Snapshot(),
	})
	c.toastLocked(i18n.KeyPostPublished, models.ToastSuccess)
	c.toastLocked(i18n.KeyDigestPublishedSuccess, models.ToastSuccess)

	return post, nil
}

func (c *Client) requireAdminLocked() error {
	viewer, ok := c.viewerLocked()
	if !ok {
		return apperrors.ErrNotAuthenticated
	}
	if !auth.CanManageDigest(viewer) {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

// excerpt cuts s to at most n runes
func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
