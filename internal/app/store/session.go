package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/yigit/majlis/internal/app/auth"
	"github.com/yigit/majlis/internal/app/models"
	"github.com/yigit/majlis/internal/i18n"
	"github.com/yigit/majlis/internal/pkg/apperrors"
	pkgauth "github.com/yigit/majlis/internal/pkg/auth"
)

// SignInResult is the outcome of a sign in attempt
type SignInResult int

const (
	SignInSuccess SignInResult = iota
	SignInInvalidCredentials
	SignInAccountLocked
)

func (r SignInResult) String() string {
	switch r {
	case SignInSuccess:
		return "success"
	case SignInAccountLocked:
		return "account_locked"
	default:
		return "invalid_credentials"
	}
}

// SignUpResult is the outcome of a registration
type SignUpResult int

// SignUpFailed is returned together with a non-nil error
const (
	SignUpFailed SignUpResult = iota
	SignUpSuccess
	SignUpEmailInUse
)

func (r SignUpResult) String() string {
	switch r {
	case SignUpSuccess:
		return "success"
	case SignUpEmailInUse:
		return "email_in_use"
	}
	return "failed"
}

// SignIn authenticates the session. A locked account is refused without
// looking at the password.
func (c *Client) SignIn(email, password string) SignInResult {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	idx := s.userIndexByEmail(normalizeEmail(email))
	if idx < 0 {
		return SignInInvalidCredentials
	}

	u := &s.users[idx]
	if u.IsLocked(now) {
		return SignInAccountLocked
	}

	if !s.hasher.Check(u.PasswordHash, password) {
		u.LoginAttempts++
		if u.LoginAttempts >= s.opts.MaxLoginAttempts {
			until := now.Add(s.opts.LockoutDuration)
			u.LockoutUntil = &until
			s.log.Warn().
				Str("userID", u.ID).
				Int("attempts", u.LoginAttempts).
				Time("lockoutUntil", until).
				Msg("Account locked after failed sign in attempts")
		}
		return SignInInvalidCredentials
	}

	u.LoginAttempts = 0
	u.LockoutUntil = nil
	c.st.sessionUserID = u.ID
	c.st.view = models.ViewHome
	c.toastLocked(i18n.KeySignInSuccess, models.ToastSuccess)
	return SignInSuccess
}

// SignOut ends the session
func (c *Client) SignOut() {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	c.st.sessionUserID = ""
	c.st.view = models.ViewHome
	c.toastLocked(i18n.KeySignOutSuccess, models.ToastSuccess)
}

// SignUp registers a new account and signs the session in. The role is
// taken as given; callers decide which roles may self register.
func (c *Client) SignUp(name, email, password string, role models.RoleType) (SignUpResult, error) {
	if !role.Valid() {
		return SignUpFailed, apperrors.ErrInvalidRole
	}

	hash, err := c.store.hasher.Hash(password)
	if err != nil {
		return SignUpFailed, fmt.Errorf("failed to hash password: %w", err)
	}

	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	email = normalizeEmail(email)
	if s.userIndexByEmail(email) >= 0 {
		return SignUpEmailInUse, nil
	}

	user := models.User{
		ID:           newID(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	s.users = append(s.users, user)

	c.st.sessionUserID = user.ID
	c.st.view = models.ViewHome
	c.toastLocked(i18n.KeySignUpSuccess, models.ToastSuccess)

	s.log.Info().Str("userID", user.ID).Str("role", string(role)).Msg("User registered")
	return SignUpSuccess, nil
}

// RequestPasswordReset issues a reset token when the email belongs to an
// account. The toast is the same either way so account existence is not revealed.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (string, bool) {
	s := c.store
	s.mu.Lock()

	c.toastLocked(i18n.KeyIfAccountExists, models.ToastSuccess)

	idx := s.userIndexByEmail(normalizeEmail(email))
	if idx < 0 {
		s.mu.Unlock()
		return "", false
	}

	user := s.users[idx].Clone()
	for token, grant := range s.resetTokens {
		if grant.userID == user.ID {
			delete(s.resetTokens, token)
		}
	}

	token := pkgauth.NewResetToken(user.ID)
	s.resetTokens[token] = resetGrant{userID: user.ID, expiresAt: s.now().Add(s.opts.ResetTokenTTL)}
	c.st.resetToken = token
	c.st.view = models.ViewResetPassword
	notifier := s.resetNotifier
	s.mu.Unlock()

	if notifier != nil {
		if err := notifier.SendPasswordReset(ctx, user, token); err != nil {
			s.log.Error().Err(err).Str("userID", user.ID).Msg("Failed to deliver password reset token")
		}
	}

	return token, true
}

// ResetPassword consumes a reset token and replaces the password. It
// returns false for malformed, unknown, used or expired tokens.
func (c *Client) ResetPassword(token, newPassword string) (bool, error) {
	userID, err := pkgauth.ParseResetToken(token)
	if err != nil {
		return false, nil
	}

	hash, err := c.store.hasher.Hash(newPassword)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	grant, ok := s.resetTokens[token]
	if !ok || grant.userID != userID {
		return false, nil
	}
	if !s.now().Before(grant.expiresAt) {
		delete(s.resetTokens, token)
		return false, nil
	}

	idx := s.userIndex(userID)
	if idx < 0 {
		delete(s.resetTokens, token)
		return false, nil
	}

	s.users[idx].PasswordHash = hash
	delete(s.resetTokens, token)
	if c.st.resetToken == token {
		c.st.resetToken = ""
	}
	c.st.view = models.ViewSignIn
	c.toastLocked(i18n.KeyPasswordUpdateSuccess, models.ToastSuccess)

	s.log.Info().Str("userID", userID).Msg("Password reset")
	return true, nil
}

// UpdateProfile changes the signed in user's profile
func (c *Client) UpdateProfile(update models.ProfileUpdate) (models.User, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := c.sessionLocked()
	if !ok {
		return models.User{}, apperrors.ErrNotAuthenticated
	}

	updated, _ := s.updateProfileLocked(u.ID, update)

	key := i18n.KeyProfileUpdateSuccess
	switch {
	case update.AvatarURL != nil && update.Name == nil && update.Bio == nil && update.CVURL == nil:
		key = i18n.KeyUpdateAvatarSuccess
	case update.CVURL != nil && update.Name == nil && update.Bio == nil && update.AvatarURL == nil:
		key = i18n.KeyUploadCVSuccess
	}
	c.toastLocked(key, models.ToastSuccess)

	return updated, nil
}

// Students lists users with the student role for privileged viewers
func (c *Client) Students() ([]models.User, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	viewer, ok := c.viewerLocked()
	if !ok {
		return nil, apperrors.ErrNotAuthenticated
	}
	if !auth.CanViewStudents(viewer) {
		return nil, apperrors.ErrPermissionDenied
	}

	var out []models.User
	for _, u := range s.users {
		if u.Role == models.RoleStudent {
			out = append(out, u.Clone())
		}
	}
	return out, nil
}
