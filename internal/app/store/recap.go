package store

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yigit/majlis/internal/app/models"
	"github.com/yigit/majlis/internal/i18n"
)

// GenerateWeeklyRecap publishes the top rated activities of the last window
// as an announcement. It does nothing when a recap was already posted inside
// the window, when no activity has enough ratings, or when there is no admin
// to author it.
func (s *Store) GenerateWeeklyRecap(now time.Time) (models.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	since := now.Add(-s.opts.RecapWindow)
	titles := []string{i18n.KeyWeeklyRecapTitle}
	if s.translator != nil {
		titles = s.translator.Variants(i18n.KeyWeeklyRecapTitle)
	}

	for _, p := range s.posts {
		if p.Type == models.PostTypeAnnouncement && p.CreatedAt.After(since) && containsString(titles, p.Title) {
			return models.Post{}, false
		}
	}

	var candidates []models.Post
	for _, p := range s.posts {
		if p.Type == models.PostTypeActivity && p.CreatedAt.After(since) && p.RatingCount() >= s.opts.RecapMinRatings {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return models.Post{}, false
	}

	admin, ok := s.firstAdminLocked()
	if !ok {
		s.log.Warn().Msg("Weekly recap skipped, no admin to author it")
		return models.Post{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.AverageRating() != b.AverageRating() {
			return a.AverageRating() > b.AverageRating()
		}
		if a.RatingCount() != b.RatingCount() {
			return a.RatingCount() > b.RatingCount()
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	if len(candidates) > s.opts.RecapTopN {
		candidates = candidates[:s.opts.RecapTopN]
	}

	lang := s.opts.RecapLanguage
	post := models.Post{
		ID:        "post-" + newID(),
		Type:      models.PostTypeAnnouncement,
		Title:     s.text(lang, i18n.KeyWeeklyRecapTitle),
		Content:   s.recapContent(lang, candidates),
		Author:    admin.Snapshot(),
		CreatedAt: now,
		StarredBy: []string{},
	}
	s.posts = append([]models.Post{post.Clone()}, s.posts...)

	s.log.Info().
		Str("postID", post.ID).
		Int("activities", len(candidates)).
		Msg("Weekly recap published")
	return post, true
}

func (s *Store) recapContent(lang i18n.Language, top []models.Post) string {
	var b strings.Builder
	b.WriteString(s.text(lang, i18n.KeyWeeklyRecapIntro))
	b.WriteString("\n\n")
	for i, p := range top {
		fmt.Fprintf(&b, "%d. **%s** - %s: %s/5 (%d %s)\n",
			i+1, p.Title,
			s.text(lang, i18n.KeyAvgRating),
			strconv.FormatFloat(p.AverageRating(), 'f', -1, 64),
			p.RatingCount(),
			s.text(lang, i18n.KeyRatings))
		fmt.Fprintf(&b, "   *%s...*\n", excerpt(p.Content, 80))
	}
	b.WriteString("\n")
	b.WriteString(s.text(lang, i18n.KeyWeeklyRecapClosing))
	return b.String()
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
