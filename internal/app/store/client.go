package store

import (
	"time"

	"github.com/yigit/majlis/internal/app/auth"
	"github.com/yigit/majlis/internal/app/models"
	"github.com/yigit/majlis/internal/i18n"
	"github.com/yigit/majlis/internal/pkg/apperrors"
)

type clientState struct {
	id            string
	sessionUserID string
	view          string
	lang          i18n.Language
	toasts        []models.Toast
	resetToken    string
	generating    bool
	lastSeen      time.Time
}

// Client is one UI session over the shared store. Every method takes the
// store lock.
type Client struct {
	store *Store
	st    *clientState
}

// NewClient registers a fresh anonymous session
func (s *Store) NewClient(lang i18n.Language) *Client {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lang == "" || (s.translator != nil && !s.translator.Supports(lang)) {
		lang = i18n.DefaultLanguage
	}

	st := &clientState{
		id:       newID(),
		view:     models.ViewHome,
		lang:     lang,
		lastSeen: s.now(),
	}
	s.clients[st.id] = st
	return &Client{store: s, st: st}
}

// Client looks up a registered session and marks it as used. A session
// idle for longer than the session TTL is dropped instead.
func (s *Store) Client(id string) (*Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.clients[id]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	now := s.now()
	if s.idleLocked(st, now) {
		delete(s.clients, id)
		return nil, apperrors.ErrSessionNotFound
	}
	st.lastSeen = now
	return &Client{store: s, st: st}, nil
}

// PruneClients drops every session idle for longer than the session TTL and
// returns how many went. Sessions with a generation in flight are kept.
func (s *Store) PruneClients(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for id, st := range s.clients {
		if s.idleLocked(st, now) {
			delete(s.clients, id)
			pruned++
		}
	}
	if pruned > 0 {
		s.log.Debug().Int("pruned", pruned).Int("remaining", len(s.clients)).Msg("Pruned idle sessions")
	}
	return pruned
}

func (s *Store) idleLocked(st *clientState, now time.Time) bool {
	ttl := s.opts.SessionTTL
	return ttl > 0 && !st.generating && now.Sub(st.lastSeen) > ttl
}

// CloseClient forgets a session
func (s *Store) CloseClient(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, id)
}

// ClientCount is the number of registered sessions
func (s *Store) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// ID is the session identifier
func (c *Client) ID() string {
	return c.st.id
}

// SessionUser resolves the signed in user, if any
func (c *Client) SessionUser() (models.User, bool) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	u, ok := c.sessionLocked()
	if !ok {
		return models.User{}, false
	}
	return u.Clone(), true
}

// sessionLocked returns the live session user. Callers hold the lock.
func (c *Client) sessionLocked() (*models.User, bool) {
	if c.st.sessionUserID == "" {
		return nil, false
	}
	idx := c.store.userIndex(c.st.sessionUserID)
	if idx < 0 {
		return nil, false
	}
	return &c.store.users[idx], true
}

func (c *Client) viewerLocked() (auth.Viewer, bool) {
	u, ok := c.sessionLocked()
	if !ok {
		return auth.Viewer{}, false
	}
	return auth.ViewerOf(*u), true
}

// ActiveView is the view the session is on
func (c *Client) ActiveView() string {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return c.st.view
}

// SetActiveView moves the session to view
func (c *Client) SetActiveView(view string) error {
	if !models.KnownView(view) {
		return apperrors.NewValidationError("unknown view " + view)
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	c.st.view = view
	return nil
}

// Language is the session language
func (c *Client) Language() i18n.Language {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return c.st.lang
}

// Direction is the text direction of the session language
func (c *Client) Direction() i18n.Direction {
	return i18n.DirectionOf(c.Language())
}

// SetLanguage switches the session language
func (c *Client) SetLanguage(lang i18n.Language) error {
	if c.store.translator != nil && !c.store.translator.Supports(lang) {
		return apperrors.NewValidationError("unsupported language " + string(lang))
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	c.st.lang = lang
	return nil
}

// PendingResetToken is the last reset token issued through this session
func (c *Client) PendingResetToken() string {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return c.st.resetToken
}

// Toasts returns the live toasts, dropping expired ones
func (c *Client) Toasts() []models.Toast {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	c.pruneToastsLocked()
	return append([]models.Toast{}, c.st.toasts...)
}

// DismissToast removes a toast before it expires
func (c *Client) DismissToast(id int64) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	kept := c.st.toasts[:0]
	for _, t := range c.st.toasts {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	c.st.toasts = kept
}

// TryBeginGeneration marks a question generation as running for the session.
// It returns false when one is already running.
func (c *Client) TryBeginGeneration() bool {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	if c.st.generating {
		return false
	}
	c.st.generating = true
	return true
}

// EndGeneration clears the running generation mark
func (c *Client) EndGeneration() {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	c.st.generating = false
}

func (c *Client) pruneToastsLocked() {
	now := c.store.now()
	kept := c.st.toasts[:0]
	for _, t := range c.st.toasts {
		if !t.Expired(now, c.store.opts.ToastTTL) {
			kept = append(kept, t)
		}
	}
	c.st.toasts = kept
}

// toastLocked raises a translated toast for this session
func (c *Client) toastLocked(key string, severity models.ToastSeverity) {
	c.pruneToastsLocked()

	s := c.store
	s.toastSeq++
	toast := models.Toast{
		ID:        s.toastSeq,
		Message:   s.text(c.st.lang, key),
		Severity:  severity,
		CreatedAt: s.now(),
	}
	c.st.toasts = append(c.st.toasts, toast)

	if s.toastNotifier != nil {
		s.toastNotifier.NotifyToast(c.st.id, toast)
	}
}
