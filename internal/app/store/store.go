// Package store is the in-memory state of the portal. A single mutex
// serializes every mutation and every read, and reads hand out deep copies.
package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yigit/majlis/internal/app/models"
	"github.com/yigit/majlis/internal/i18n"
)

// PasswordHasher hashes and verifies user passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Check(hashedPassword, password string) bool
}

// ResetNotifier delivers password reset tokens out of band
type ResetNotifier interface {
	SendPasswordReset(ctx context.Context, user models.User, token string) error
}

// ToastNotifier is told about every toast as it is raised. It is called
// with the store lock held and must not block.
type ToastNotifier interface {
	NotifyToast(clientID string, toast models.Toast)
}

// Options tunes the store behaviour
type Options struct {
	MaxLoginAttempts int
	LockoutDuration  time.Duration
	ResetTokenTTL    time.Duration
	ToastTTL         time.Duration

	// SessionTTL drops sessions unused for this long; zero keeps them forever
	SessionTTL time.Duration

	RecapWindow     time.Duration
	RecapMinRatings int
	RecapTopN       int
	RecapLanguage   i18n.Language

	// Now is the clock; time.Now when nil
	Now func() time.Time
}

// DefaultOptions mirrors the shipped configuration
func DefaultOptions() Options {
	return Options{
		MaxLoginAttempts: 5,
		LockoutDuration:  15 * time.Minute,
		ResetTokenTTL:    time.Hour,
		ToastTTL:         5 * time.Second,
		SessionTTL:       24 * time.Hour,
		RecapWindow:      7 * 24 * time.Hour,
		RecapMinRatings:  5,
		RecapTopN:        3,
		RecapLanguage:    i18n.DefaultLanguage,
	}
}

type resetGrant struct {
	userID    string
	expiresAt time.Time
}

// Store owns users, posts, feedback and the per session client state
type Store struct {
	mu sync.Mutex

	opts       Options
	now        func() time.Time
	hasher     PasswordHasher
	translator *i18n.Translator
	log        zerolog.Logger

	resetNotifier ResetNotifier
	toastNotifier ToastNotifier

	users    []models.User
	posts    []models.Post
	feedback []models.Feedback

	clients     map[string]*clientState
	resetTokens map[string]resetGrant
	toastSeq    int64
}

// New creates an empty store
func New(opts Options, hasher PasswordHasher, translator *i18n.Translator, log zerolog.Logger) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if opts.RecapLanguage == "" {
		opts.RecapLanguage = i18n.DefaultLanguage
	}

	return &Store{
		opts:        opts,
		now:         now,
		hasher:      hasher,
		translator:  translator,
		log:         log.With().Str("component", "store").Logger(),
		clients:     make(map[string]*clientState),
		resetTokens: make(map[string]resetGrant),
	}
}

// SetResetNotifier wires the password reset delivery channel
func (s *Store) SetResetNotifier(n ResetNotifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetNotifier = n
}

// SetToastNotifier wires the live toast stream
func (s *Store) SetToastNotifier(n ToastNotifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toastNotifier = n
}

// Now returns the store clock reading
func (s *Store) Now() time.Time {
	return s.now()
}

// Options returns the options the store runs with
func (s *Store) Options() Options {
	return s.opts
}

// Translator returns the translation table used for generated text
func (s *Store) Translator() *i18n.Translator {
	return s.translator
}

// Seed replaces every collection with copies of the given data.
// Users must already carry password hashes.
func (s *Store) Seed(users []models.User, posts []models.Post, feedback []models.Feedback) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make([]models.User, 0, len(users))
	for _, u := range users {
		u = u.Clone()
		u.Email = normalizeEmail(u.Email)
		s.users = append(s.users, u)
	}

	s.posts = make([]models.Post, 0, len(posts))
	for _, p := range posts {
		s.posts = append(s.posts, p.Clone())
	}

	s.feedback = make([]models.Feedback, 0, len(feedback))
	for _, f := range feedback {
		s.feedback = append(s.feedback, f.Clone())
	}

	s.log.Info().
		Int("users", len(s.users)).
		Int("posts", len(s.posts)).
		Int("feedback", len(s.feedback)).
		Msg("Store seeded")
}

// Users returns a copy of every user in creation order
func (s *Store) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Clone())
	}
	return out
}

// User returns a copy of the user with id
func (s *Store) User(id string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.userIndex(id)
	if idx < 0 {
		return models.User{}, false
	}
	return s.users[idx].Clone(), true
}

// UpdateUserProfile applies a partial profile change. Unknown ids are a no-op.
// Sessions resolve users by id, so signed in clients see the change at once.
func (s *Store) UpdateUserProfile(userID string, update models.ProfileUpdate) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateProfileLocked(userID, update)
}

func (s *Store) updateProfileLocked(userID string, update models.ProfileUpdate) (models.User, bool) {
	idx := s.userIndex(userID)
	if idx < 0 {
		return models.User{}, false
	}

	u := &s.users[idx]
	if update.Name != nil {
		u.Name = strings.TrimSpace(*update.Name)
	}
	if update.Bio != nil {
		u.Bio = *update.Bio
	}
	if update.AvatarURL != nil {
		v := *update.AvatarURL
		u.AvatarURL = &v
	}
	if update.CVURL != nil {
		v := *update.CVURL
		u.CVURL = &v
	}

	return u.Clone(), true
}

func (s *Store) userIndex(id string) int {
	for i := range s.users {
		if s.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) userIndexByEmail(email string) int {
	for i := range s.users {
		if s.users[i].Email == email {
			return i
		}
	}
	return -1
}

func (s *Store) firstAdminLocked() (models.User, bool) {
	for _, u := range s.users {
		if u.Role == models.RoleAdmin {
			return u, true
		}
	}
	return models.User{}, false
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// text translates key, returning the key when no translator is wired
func (s *Store) text(lang i18n.Language, key string) string {
	if s.translator == nil {
		return key
	}
	return s.translator.T(lang, key)
}

func newID() string {
	return uuid.New().String()
}
