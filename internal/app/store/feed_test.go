package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/majlis/internal/app/models"
	"github.com/yigit/majlis/internal/i18n"
	"github.com/yigit/majlis/internal/pkg/apperrors"
)

func TestAddPost(t *testing.T) {
	f := newFixture(t)
	f.seedPosts(models.Post{ID: "old", Type: models.PostTypePost, CreatedAt: f.clock.Now().Add(-time.Hour)})
	c := f.signedIn(t, "maria@majlis.local")

	post, err := c.AddPost(models.NewPost{
		Title:   " Study group ",
		Content: "Thursday at 6pm",
		Type:    models.PostTypeActivity,
		Media:   &models.Media{URL: "https://example.com/a.png", Kind: models.MediaImage},
	})
	require.NoError(t, err)

	assert.Equal(t, "Study group", post.Title)
	assert.Equal(t, "member-1", post.Author.ID)
	assert.Equal(t, f.clock.Now(), post.CreatedAt)
	assert.Zero(t, post.Stars())
	assert.Empty(t, post.StarredBy)
	assert.Zero(t, post.RatingCount())

	posts := f.store.Posts()
	require.Len(t, posts, 2)
	assert.Equal(t, post.ID, posts[0].ID, "new posts are prepended")

	toasts := c.Toasts()
	assert.Equal(t, "Your post has been published.", toasts[len(toasts)-1].Message)
}

func TestAddPost_Rejects(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.NewClient(i18n.English).AddPost(models.NewPost{Title: "t", Content: "c", Type: models.PostTypePost})
	assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)

	c := f.signedIn(t, "maria@majlis.local")
	for _, in := range []models.NewPost{
		{Title: " ", Content: "c", Type: models.PostTypePost},
		{Title: "t", Content: "", Type: models.PostTypePost},
		{Title: "t", Content: "c", Type: "POLL"},
		{Title: "t", Content: "c", Type: models.PostTypePost, Media: &models.Media{URL: "u", Kind: "audio"}},
	} {
		_, err := c.AddPost(in)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	}
	assert.Empty(t, f.store.Posts())
}

func TestAddPost_StudentsPostOnly(t *testing.T) {
	f := newFixture(t)
	student := f.signedIn(t, "fatimah@student.majlis.local")

	for _, typ := range []models.PostType{models.PostTypeActivity, models.PostTypeAnnouncement} {
		_, err := student.AddPost(models.NewPost{Title: "Weekly Recap: Top Rated Activities", Content: "c", Type: typ})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied, typ)
	}
	assert.Empty(t, f.store.Posts())

	toasts := student.Toasts()
	require.NotEmpty(t, toasts)
	assert.Equal(t, models.ToastError, toasts[len(toasts)-1].Severity)

	post, err := student.AddPost(models.NewPost{Title: "Notes", Content: "c", Type: models.PostTypePost})
	require.NoError(t, err)
	assert.Equal(t, models.PostTypePost, post.Type)

	admin := f.signedIn(t, "admin@majlis.local")
	_, err = admin.AddPost(models.NewPost{Title: "Exam dates", Content: "c", Type: models.PostTypeAnnouncement})
	assert.NoError(t, err)
}

func TestAddPost_StudentCannotBlockRecap(t *testing.T) {
	f := newFixture(t)
	now := f.clock.Now()
	f.seedPosts(models.Post{ID: "a1", Type: models.PostTypeActivity, Title: "Hike", CreatedAt: now.Add(-time.Hour), Ratings: ratings(5, 5, 5, 5, 5)})

	student := f.signedIn(t, "omar@student.majlis.local")
	_, err := student.AddPost(models.NewPost{Title: "Weekly Recap: Top Rated Activities", Content: "fake", Type: models.PostTypeAnnouncement})
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, ok := f.store.GenerateWeeklyRecap(now)
	assert.True(t, ok)
}

func TestToggleStar_StarsTrackMembership(t *testing.T) {
	f := newFixture(t)
	f.seedPosts(models.Post{ID: "p1", Type: models.PostTypePost, StarredBy: []string{"someone"}})
	c := f.signedIn(t, "maria@majlis.local")

	for i := 1; i <= 6; i++ {
		p, err := c.ToggleStar("p1")
		require.NoError(t, err)
		assert.Equal(t, len(p.StarredBy), p.Stars())
		if i%2 == 1 {
			assert.ElementsMatch(t, []string{"someone", "member-1"}, p.StarredBy)
		} else {
			assert.Equal(t, []string{"someone"}, p.StarredBy)
		}
	}

	p, _ := f.store.Post("p1")
	assert.Equal(t, []string{"someone"}, p.StarredBy)
}

func TestToggleStar_RequiresSession(t *testing.T) {
	f := newFixture(t)
	f.seedPosts(models.Post{ID: "p1", Type: models.PostTypePost})
	c := f.store.NewClient(i18n.English)

	_, err := c.ToggleStar("p1")
	assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)

	toasts := c.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, models.ToastError, toasts[0].Severity)
	assert.Equal(t, "You must be signed in to do that.", toasts[0].Message)

	p, _ := f.store.Post("p1")
	assert.Zero(t, p.Stars())

	signed := f.signedIn(t, "maria@majlis.local")
	_, err = signed.ToggleStar("missing")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestRateActivity_LatestRatingWins(t *testing.T) {
	f := newFixture(t)
	f.seedPosts(models.Post{ID: "a1", Type: models.PostTypeActivity, Ratings: []models.Rating{{UserID: "other", Rating: 4}}})
	c := f.signedIn(t, "fatimah@student.majlis.local")

	for _, r := range []int{1, 5, 3, 2} {
		p, err := c.RateActivity("a1", r)
		require.NoError(t, err)
		assert.Equal(t, 2, p.RatingCount())
		got, ok := p.RatingBy("student-1")
		require.True(t, ok)
		assert.Equal(t, r, got)
		assert.Equal(t, models.RoundRating(float64(4+r)/2), p.AverageRating())
	}

	other := f.signedIn(t, "omar@student.majlis.local")
	p, err := other.RateActivity("a1", 5)
	require.NoError(t, err)
	assert.Equal(t, 3, p.RatingCount())
	assert.Equal(t, 3.67, p.AverageRating())
}

func TestRateActivity_Rejects(t *testing.T) {
	f := newFixture(t)
	f.seedPosts(
		models.Post{ID: "a1", Type: models.PostTypeActivity},
		models.Post{ID: "p1", Type: models.PostTypePost},
	)

	_, err := f.store.NewClient(i18n.English).RateActivity("a1", 5)
	assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)

	c := f.signedIn(t, "maria@majlis.local")
	_, err = c.RateActivity("a1", 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRating)
	_, err = c.RateActivity("a1", 6)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRating)
	_, err = c.RateActivity("p1", 5)
	assert.ErrorIs(t, err, apperrors.ErrNotActivity)
	_, err = c.RateActivity("missing", 5)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	a, _ := f.store.Post("a1")
	assert.Zero(t, a.RatingCount())
	p, _ := f.store.Post("p1")
	assert.Empty(t, p.Ratings)
}

func TestRateActivity_AuthorCannotRateOwn(t *testing.T) {
	f := newFixture(t)
	f.seedPosts(models.Post{ID: "a1", Type: models.PostTypeActivity, Author: models.Author{ID: "member-1", Name: "Maria"}})

	author := f.signedIn(t, "maria@majlis.local")
	_, err := author.RateActivity("a1", 5)
	assert.ErrorIs(t, err, apperrors.ErrOwnActivity)

	toasts := author.Toasts()
	require.NotEmpty(t, toasts)
	assert.Equal(t, "You cannot rate your own activity.", toasts[len(toasts)-1].Message)

	a, _ := f.store.Post("a1")
	assert.Zero(t, a.RatingCount())

	other := f.signedIn(t, "fatimah@student.majlis.local")
	a, err = other.RateActivity("a1", 4)
	require.NoError(t, err)
	assert.Equal(t, 1, a.RatingCount())
}

func feedIDs(posts []models.Post) []string {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestListFeed(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	posts := []models.Post{
		{ID: "post-new", Type: models.PostTypePost, CreatedAt: now.Add(-1 * time.Hour)},
		{ID: "act-old-top", Type: models.PostTypeActivity, CreatedAt: now.Add(-10 * day), Ratings: ratings(5, 5, 5)},
		{ID: "act-mid", Type: models.PostTypeActivity, CreatedAt: now.Add(-2 * day), Ratings: ratings(4, 4)},
		{ID: "ann", Type: models.PostTypeAnnouncement, CreatedAt: now.Add(-3 * day)},
		{ID: "act-best", Type: models.PostTypeActivity, CreatedAt: now.Add(-5 * day), Ratings: ratings(5, 4)},
		{ID: "act-unrated", Type: models.PostTypeActivity, CreatedAt: now.Add(-1 * day)},
	}

	tests := []struct {
		name  string
		query FeedQuery
		want  []string
	}{
		{
			name:  "all latest",
			query: FeedQuery{Filter: FilterAll, Sort: SortLatest},
			want:  []string{"post-new", "act-unrated", "act-mid", "ann", "act-best", "act-old-top"},
		},
		{
			name:  "non activity filter ignores rating sort",
			query: FeedQuery{Filter: FilterAll, Sort: SortTopRatedAllTime},
			want:  []string{"post-new", "act-unrated", "act-mid", "ann", "act-best", "act-old-top"},
		},
		{
			name:  "announcements",
			query: FeedQuery{Filter: FilterAnnouncement, Sort: SortTopRatedWeekly},
			want:  []string{"ann"},
		},
		{
			name:  "activity latest",
			query: FeedQuery{Filter: FilterActivity, Sort: SortLatest},
			want:  []string{"act-unrated", "act-mid", "act-best", "act-old-top"},
		},
		{
			name:  "activity top rated all time",
			query: FeedQuery{Filter: FilterActivity, Sort: SortTopRatedAllTime},
			want:  []string{"act-old-top", "act-best", "act-mid", "act-unrated"},
		},
		{
			name:  "activity top rated weekly puts old last",
			query: FeedQuery{Filter: FilterActivity, Sort: SortTopRatedWeekly},
			want:  []string{"act-best", "act-mid", "act-unrated", "act-old-top"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, feedIDs(ListFeed(posts, tt.query, now)))
		})
	}
}

func TestParseFeedQuery(t *testing.T) {
	q, err := ParseFeedQuery("", "")
	require.NoError(t, err)
	assert.Equal(t, FeedQuery{Filter: FilterAll, Sort: SortLatest}, q)

	q, err = ParseFeedQuery("ACTIVITY", "topRatedWeekly")
	require.NoError(t, err)
	assert.Equal(t, FilterActivity, q.Filter)

	_, err = ParseFeedQuery("poll", "")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	_, err = ParseFeedQuery("", "random")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestWeeklyStatsAndDigest(t *testing.T) {
	f := newFixture(t)
	now := f.clock.Now()
	f.seedPosts(
		models.Post{ID: "p1", Type: models.PostTypePost, Title: "Hello", Content: "First post", CreatedAt: now.Add(-time.Hour),
			Author: models.Author{Name: "Omar"}, StarredBy: []string{"a", "b"}},
		models.Post{ID: "a1", Type: models.PostTypeActivity, Title: "Hike", CreatedAt: now.Add(-24 * time.Hour), StarredBy: []string{"a"}},
		models.Post{ID: "old", Type: models.PostTypePost, CreatedAt: now.Add(-8 * 24 * time.Hour), StarredBy: []string{"a", "b", "c"}},
	)

	admin := f.signedIn(t, "admin@majlis.local")
	stats, err := admin.WeeklyStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Posts)
	assert.Equal(t, 1, stats.Activities)
	assert.Equal(t, 3, stats.Stars)
	require.NotNil(t, stats.TopPost)
	assert.Equal(t, "p1", stats.TopPost.ID)

	digest, err := admin.BuildDigest()
	require.NoError(t, err)
	assert.Equal(t, "This Week at the Academy", digest.Title)
	assert.Equal(t,
		"This week the community shared **1** new posts, and **1** new activities.\n\n"+
			"### Highlight of the week\n**Hello** by Omar\n> First post...\n\n"+
			"Keep sharing and see you next week!",
		digest.Content)

	post, err := admin.PublishDigest(digest.Content)
	require.NoError(t, err)
	assert.Equal(t, models.PostTypeAnnouncement, post.Type)
	assert.Equal(t, digest.Title, post.Title)
	assert.Equal(t, "admin-1", post.Author.ID)
	assert.Equal(t, post.ID, f.store.Posts()[0].ID)

	member := f.signedIn(t, "maria@majlis.local")
	_, err = member.WeeklyStats()
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	_, err = member.PublishDigest("x")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
