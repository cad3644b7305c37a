package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/majlis/internal/app/models"
	"github.com/yigit/majlis/internal/i18n"
	"github.com/yigit/majlis/internal/pkg/apperrors"
)

func TestAddFeedback(t *testing.T) {
	f := newFixture(t)
	c := f.signedIn(t, "fatimah@student.majlis.local")

	first, err := c.AddFeedback(models.NewFeedback{Title: "Wifi", Content: "Slow in lab 2"})
	require.NoError(t, err)
	second, err := c.AddFeedback(models.NewFeedback{Title: "Food", Content: "More options", IsAnonymous: true})
	require.NoError(t, err)

	assert.Equal(t, models.FeedbackPending, first.Status)
	assert.Equal(t, "student-1", second.Author.ID, "anonymous items keep the true author")
	assert.True(t, second.IsAnonymous)

	all := f.store.AllFeedback()
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	_, err = f.store.NewClient(i18n.English).AddFeedback(models.NewFeedback{Title: "x", Content: "y"})
	assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
	_, err = c.AddFeedback(models.NewFeedback{Title: "", Content: "y"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestFeedback_Visibility(t *testing.T) {
	f := newFixture(t)
	student := f.signedIn(t, "fatimah@student.majlis.local")
	otherStudent := f.signedIn(t, "omar@student.majlis.local")
	member := f.signedIn(t, "maria@majlis.local")
	admin := f.signedIn(t, "admin@majlis.local")

	s1, _ := student.AddFeedback(models.NewFeedback{Title: "a", Content: "a"})
	s2, _ := otherStudent.AddFeedback(models.NewFeedback{Title: "b", Content: "b"})
	m1, _ := member.AddFeedback(models.NewFeedback{Title: "c", Content: "c"})
	a1, _ := admin.AddFeedback(models.NewFeedback{Title: "d", Content: "d"})

	ids := func(c *Client) []string {
		items, err := c.Feedback()
		require.NoError(t, err)
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, item.ID)
		}
		return out
	}

	assert.Equal(t, []string{a1.ID, m1.ID, s2.ID, s1.ID}, ids(admin))
	assert.Equal(t, []string{m1.ID, s2.ID, s1.ID}, ids(member))
	assert.Equal(t, []string{s1.ID}, ids(student))

	_, err := student.GetFeedback(s2.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	got, err := member.GetFeedback(s2.ID)
	require.NoError(t, err)
	assert.Equal(t, s2.ID, got.ID)

	_, err = f.store.NewClient(i18n.English).Feedback()
	assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
}

func TestFeedback_StatusIsMonotone(t *testing.T) {
	f := newFixture(t)
	student := f.signedIn(t, "fatimah@student.majlis.local")
	member := f.signedIn(t, "maria@majlis.local")
	item, _ := student.AddFeedback(models.NewFeedback{Title: "a", Content: "a"})

	_, err := student.OpenFeedback(item.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	opened, err := member.OpenFeedback(item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackOpened, opened.Status)

	// nothing brings it back to pending
	again, err := member.OpenFeedback(item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackOpened, again.Status)

	replied, err := member.AddFeedbackReply(item.ID, "Thanks")
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackOpened, replied.Status)

	_, _ = student.AddFeedbackReply(item.ID, "mine")
	for _, fb := range f.store.AllFeedback() {
		assert.Equal(t, models.FeedbackOpened, fb.Status)
	}

	_, err = member.OpenFeedback("missing")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestAddFeedbackReply(t *testing.T) {
	f := newFixture(t)
	student := f.signedIn(t, "fatimah@student.majlis.local")
	admin := f.signedIn(t, "admin@majlis.local")
	item, _ := student.AddFeedback(models.NewFeedback{Title: "a", Content: "a"})

	_, err := student.AddFeedbackReply(item.ID, "self reply")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.Nil(t, f.store.AllFeedback()[0].Reply)

	first, err := admin.AddFeedbackReply(item.ID, "First")
	require.NoError(t, err)
	require.NotNil(t, first.Reply)

	second, err := admin.AddFeedbackReply(item.ID, "Second")
	require.NoError(t, err)
	assert.Equal(t, "Second", second.Reply.Text, "a reply replaces the earlier one")
	assert.Equal(t, "admin-1", second.Reply.AuthorID)

	_, err = admin.AddFeedbackReply(item.ID, "  ")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	_, err = admin.AddFeedbackReply("missing", "x")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestDeleteFeedback(t *testing.T) {
	f := newFixture(t)
	student := f.signedIn(t, "fatimah@student.majlis.local")
	member := f.signedIn(t, "maria@majlis.local")
	keep, _ := student.AddFeedback(models.NewFeedback{Title: "keep", Content: "a"})
	drop, _ := student.AddFeedback(models.NewFeedback{Title: "drop", Content: "b"})

	assert.ErrorIs(t, student.DeleteFeedback(drop.ID), apperrors.ErrPermissionDenied)
	require.Len(t, f.store.AllFeedback(), 2)

	require.NoError(t, member.DeleteFeedback(drop.ID))
	all := f.store.AllFeedback()
	require.Len(t, all, 1)
	assert.Equal(t, keep.ID, all[0].ID)

	assert.ErrorIs(t, member.DeleteFeedback(drop.ID), apperrors.ErrResourceNotFound)

	toasts := member.Toasts()
	assert.Equal(t, "Feedback deleted.", toasts[len(toasts)-1].Message)
}
