package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/majlis/internal/app/models"
	"github.com/yigit/majlis/internal/i18n"
	"github.com/yigit/majlis/internal/pkg/apperrors"
)

func TestSignIn_Success(t *testing.T) {
	f := newFixture(t)
	c := f.store.NewClient(i18n.English)
	require.NoError(t, c.SetActiveView(models.ViewSignIn))

	res := c.SignIn("  MARIA@majlis.local", testPassword)
	require.Equal(t, SignInSuccess, res)

	u, ok := c.SessionUser()
	require.True(t, ok)
	assert.Equal(t, "member-1", u.ID)
	assert.Equal(t, models.ViewHome, c.ActiveView())

	toasts := c.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, "Signed in successfully.", toasts[0].Message)
	assert.Equal(t, models.ToastSuccess, toasts[0].Severity)
	assert.Len(t, f.notifier.toasts[c.ID()], 1)
}

func TestSignIn_UnknownEmail(t *testing.T) {
	f := newFixture(t)
	c := f.store.NewClient(i18n.English)

	assert.Equal(t, SignInInvalidCredentials, c.SignIn("nobody@majlis.local", testPassword))
	_, ok := c.SessionUser()
	assert.False(t, ok)
	assert.Empty(t, c.Toasts())
}

func TestSignIn_Lockout(t *testing.T) {
	f := newFixture(t)
	c := f.store.NewClient(i18n.English)
	start := f.clock.Now()

	for i := 1; i <= 5; i++ {
		require.Equal(t, SignInInvalidCredentials, c.SignIn("omar@student.majlis.local", "wrong"))
		u, _ := f.store.User("student-2")
		assert.Equal(t, i, u.LoginAttempts)
	}

	u, _ := f.store.User("student-2")
	require.NotNil(t, u.LockoutUntil)
	assert.Equal(t, start.Add(15*time.Minute), *u.LockoutUntil)

	// correct password inside the window is still refused
	f.clock.Advance(14 * time.Minute)
	assert.Equal(t, SignInAccountLocked, c.SignIn("omar@student.majlis.local", testPassword))
	u, _ = f.store.User("student-2")
	assert.Equal(t, 5, u.LoginAttempts, "locked attempts are not counted")

	f.clock.Advance(time.Minute)
	assert.Equal(t, SignInSuccess, c.SignIn("omar@student.majlis.local", testPassword))
	u, _ = f.store.User("student-2")
	assert.Zero(t, u.LoginAttempts)
	assert.Nil(t, u.LockoutUntil)
}

func TestSignIn_WrongPasswordAfterLockoutRelocks(t *testing.T) {
	f := newFixture(t)
	c := f.store.NewClient(i18n.English)

	for i := 0; i < 5; i++ {
		c.SignIn("omar@student.majlis.local", "wrong")
	}
	f.clock.Advance(16 * time.Minute)

	assert.Equal(t, SignInInvalidCredentials, c.SignIn("omar@student.majlis.local", "wrong"))
	u, _ := f.store.User("student-2")
	assert.True(t, u.IsLocked(f.clock.Now()))
}

func TestSignOut(t *testing.T) {
	f := newFixture(t)
	c := f.signedIn(t, "maria@majlis.local")
	require.NoError(t, c.SetActiveView(models.ViewFeedback))

	c.SignOut()

	_, ok := c.SessionUser()
	assert.False(t, ok)
	assert.Equal(t, models.ViewHome, c.ActiveView())
	toasts := c.Toasts()
	assert.Equal(t, "You have been signed out.", toasts[len(toasts)-1].Message)
}

func TestSignUp(t *testing.T) {
	f := newFixture(t)
	c := f.store.NewClient(i18n.English)

	res, err := c.SignUp(" Lina ", " Lina@Student.Majlis.Local ", "Secret123!", models.RoleStudent)
	require.NoError(t, err)
	require.Equal(t, SignUpSuccess, res)

	u, ok := c.SessionUser()
	require.True(t, ok)
	assert.Equal(t, "Lina", u.Name)
	assert.Equal(t, "lina@student.majlis.local", u.Email)
	assert.Equal(t, models.RoleStudent, u.Role)
	assert.Zero(t, u.LoginAttempts)
	assert.Nil(t, u.LockoutUntil)
	assert.Empty(t, u.Bio)
	assert.Nil(t, u.AvatarURL)
	assert.Len(t, f.store.Users(), 5)

	other := f.store.NewClient(i18n.English)
	assert.Equal(t, SignInSuccess, other.SignIn("lina@student.majlis.local", "Secret123!"))
}

func TestSignUp_EmailInUseIgnoresCase(t *testing.T) {
	f := newFixture(t)
	c := f.store.NewClient(i18n.English)
	before := f.store.Users()

	res, err := c.SignUp("Impostor", "MARIA@Majlis.Local", "whatever", models.RoleMember)
	require.NoError(t, err)
	assert.Equal(t, SignUpEmailInUse, res)
	assert.Equal(t, before, f.store.Users())

	_, ok := c.SessionUser()
	assert.False(t, ok)
}

func TestSignUp_RejectsUnknownRole(t *testing.T) {
	f := newFixture(t)
	c := f.store.NewClient(i18n.English)

	res, err := c.SignUp("X", "x@majlis.local", "pw", models.RoleType("ROOT"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidRole)
	assert.Equal(t, SignUpFailed, res)
	assert.Equal(t, "failed", res.String())
	assert.Len(t, f.store.Users(), 4)

	_, ok := c.SessionUser()
	assert.False(t, ok)
}

func TestPasswordReset(t *testing.T) {
	f := newFixture(t)
	c := f.store.NewClient(i18n.English)

	token, ok := c.RequestPasswordReset(context.Background(), "Fatimah@student.majlis.local")
	require.True(t, ok)
	assert.Equal(t, token, c.PendingResetToken())
	assert.Equal(t, token, f.notifier.tokens["fatimah@student.majlis.local"])
	assert.Equal(t, models.ViewResetPassword, c.ActiveView())

	done, err := c.ResetPassword(token, "NewPassword1!")
	require.NoError(t, err)
	require.True(t, done)
	assert.Equal(t, models.ViewSignIn, c.ActiveView())
	assert.Empty(t, c.PendingResetToken())

	// single use
	done, err = c.ResetPassword(token, "Another1!")
	require.NoError(t, err)
	assert.False(t, done)

	assert.Equal(t, SignInInvalidCredentials, c.SignIn("fatimah@student.majlis.local", testPassword))
	assert.Equal(t, SignInSuccess, c.SignIn("fatimah@student.majlis.local", "NewPassword1!"))
}

func TestPasswordReset_UnknownEmailLooksTheSame(t *testing.T) {
	f := newFixture(t)
	known := f.store.NewClient(i18n.English)
	unknown := f.store.NewClient(i18n.English)

	_, ok := known.RequestPasswordReset(context.Background(), "maria@majlis.local")
	require.True(t, ok)
	token, ok := unknown.RequestPasswordReset(context.Background(), "ghost@majlis.local")
	assert.False(t, ok)
	assert.Empty(t, token)

	assert.Equal(t, known.Toasts()[0].Message, unknown.Toasts()[0].Message)
	assert.Equal(t, models.ViewHome, unknown.ActiveView())
}

func TestResetPassword_Rejects(t *testing.T) {
	f := newFixture(t)
	c := f.store.NewClient(i18n.English)
	token, _ := c.RequestPasswordReset(context.Background(), "maria@majlis.local")

	for _, bad := range []string{"", "not-a-token", "reset-token-", token + "x"} {
		done, err := c.ResetPassword(bad, "pw")
		require.NoError(t, err)
		assert.False(t, done, bad)
	}

	// a newer request supersedes the old token
	newer, _ := c.RequestPasswordReset(context.Background(), "maria@majlis.local")
	done, _ := c.ResetPassword(token, "pw")
	assert.False(t, done)

	f.clock.Advance(time.Hour)
	done, _ = c.ResetPassword(newer, "pw")
	assert.False(t, done, "expired")
}

func TestUpdateUserProfile_SessionStaysInLockstep(t *testing.T) {
	f := newFixture(t)
	c := f.signedIn(t, "fatimah@student.majlis.local")

	name := "Fatimah Z."
	bio := "Data science track"
	_, ok := f.store.UpdateUserProfile("student-1", models.ProfileUpdate{Name: &name, Bio: &bio})
	require.True(t, ok)

	u, _ := c.SessionUser()
	assert.Equal(t, name, u.Name)
	assert.Equal(t, bio, u.Bio)

	_, ok = f.store.UpdateUserProfile("missing", models.ProfileUpdate{Name: &name})
	assert.False(t, ok)
}

func TestClient_UpdateProfileToasts(t *testing.T) {
	f := newFixture(t)
	c := f.signedIn(t, "fatimah@student.majlis.local")

	avatar := "/uploads/a.png"
	u, err := c.UpdateProfile(models.ProfileUpdate{AvatarURL: &avatar})
	require.NoError(t, err)
	require.NotNil(t, u.AvatarURL)
	assert.Equal(t, avatar, *u.AvatarURL)

	toasts := c.Toasts()
	assert.Equal(t, "Avatar updated.", toasts[len(toasts)-1].Message)

	anon := f.store.NewClient(i18n.English)
	_, err = anon.UpdateProfile(models.ProfileUpdate{AvatarURL: &avatar})
	assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
}

func TestToasts_ExpireAndTranslate(t *testing.T) {
	f := newFixture(t)
	c := f.store.NewClient(i18n.Arabic)
	require.Equal(t, SignInSuccess, c.SignIn("maria@majlis.local", testPassword))
	assert.Equal(t, i18n.RTL, c.Direction())

	toasts := c.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, "تم تسجيل الدخول بنجاح.", toasts[0].Message)

	f.clock.Advance(4 * time.Second)
	assert.Len(t, c.Toasts(), 1)
	f.clock.Advance(time.Second)
	assert.Empty(t, c.Toasts())
}

func TestToasts_Dismiss(t *testing.T) {
	f := newFixture(t)
	c := f.signedIn(t, "maria@majlis.local")
	c.SignOut()

	toasts := c.Toasts()
	require.Len(t, toasts, 2)
	assert.Less(t, toasts[0].ID, toasts[1].ID)

	c.DismissToast(toasts[0].ID)
	left := c.Toasts()
	require.Len(t, left, 1)
	assert.Equal(t, toasts[1].ID, left[0].ID)
}

func TestClient_Registry(t *testing.T) {
	f := newFixture(t)
	c := f.store.NewClient("")
	assert.Equal(t, i18n.English, c.Language())

	got, err := f.store.Client(c.ID())
	require.NoError(t, err)
	assert.Equal(t, c.ID(), got.ID())
	assert.Equal(t, 1, f.store.ClientCount())

	f.store.CloseClient(c.ID())
	_, err = f.store.Client(c.ID())
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	assert.Error(t, c.SetLanguage("fr"))
	assert.Error(t, c.SetActiveView("nowhere"))
}

func TestPruneClients_DropsIdleSessions(t *testing.T) {
	f := newFixture(t)
	ttl := DefaultOptions().SessionTTL

	for i := 0; i < 1000; i++ {
		f.store.NewClient(i18n.English)
	}
	active := f.store.NewClient(i18n.English)
	busy := f.signedIn(t, "maria@majlis.local")
	require.True(t, busy.TryBeginGeneration())
	assert.Equal(t, 1002, f.store.ClientCount())

	f.clock.Advance(ttl - time.Minute)
	_, err := f.store.Client(active.ID())
	require.NoError(t, err, "lookups keep a session alive")
	assert.Zero(t, f.store.PruneClients(f.clock.Now()))

	f.clock.Advance(2 * time.Minute)
	assert.Equal(t, 1000, f.store.PruneClients(f.clock.Now()))
	assert.Equal(t, 2, f.store.ClientCount())

	busy.EndGeneration()
	f.clock.Advance(365 * 24 * time.Hour)
	assert.Equal(t, 2, f.store.PruneClients(f.clock.Now()))
	assert.Zero(t, f.store.ClientCount())
}

func TestClient_ExpiresOnLookup(t *testing.T) {
	f := newFixture(t)
	c := f.store.NewClient(i18n.English)

	f.clock.Advance(DefaultOptions().SessionTTL + time.Second)
	_, err := f.store.Client(c.ID())
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	assert.Zero(t, f.store.ClientCount())
}

func TestClient_GenerationGuard(t *testing.T) {
	f := newFixture(t)
	c := f.signedIn(t, "maria@majlis.local")

	assert.True(t, c.TryBeginGeneration())
	assert.False(t, c.TryBeginGeneration())
	c.EndGeneration()
	assert.True(t, c.TryBeginGeneration())
}

func TestStudents(t *testing.T) {
	f := newFixture(t)

	students, err := f.signedIn(t, "maria@majlis.local").Students()
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "student-1", students[0].ID)

	_, err = f.signedIn(t, "omar@student.majlis.local").Students()
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.store.NewClient(i18n.English).Students()
	assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
}
