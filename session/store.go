package session

import (
	"context"
	"slices"
	"sync"

	"github.com/jrsteele09/catalog-console/internal/errors"
	"github.com/rs/zerolog/log"
)

// Store is the single writer of the console session. Every transition goes
// through Dispatch, which persists before the lock is released, so a reader
// never observes an in-memory session that storage has not been asked to hold.
type Store struct {
	mu          sync.RWMutex
	current     Session
	repo        Repo
	subscribers []func(Session)
}

// NewStore restores the persisted session. Missing, unreadable or torn data
// starts the console logged out; it never fails.
func NewStore(ctx context.Context, repo Repo) *Store {
	s := &Store{repo: repo}

	restored, err := repo.Load(ctx)
	switch {
	case errors.Is(err, errors.ErrSessionNotFound):
		log.Debug().Msg("no persisted session")
	case err != nil:
		log.Warn().Err(err).Msg("discarding unreadable persisted session")
	case !restored.Complete():
		if !restored.Empty() {
			log.Warn().Msg("discarding persisted session without both token and user")
		}
	default:
		s.current = restored.Copy()
		log.Info().Str("user", restored.User.Email).Msg("session restored")
	}
	return s
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Copy()
}

// Subscribe registers fn to receive the session after every change.
func (s *Store) Subscribe(fn func(Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Dispatch applies action and persists the result. The in-memory transition
// stands even when persisting fails; the error is returned to the caller.
func (s *Store) Dispatch(ctx context.Context, action Action) (Session, error) {
	s.mu.Lock()
	prev := s.current
	next := Reduce(prev, action)
	if next.Equal(prev) {
		s.mu.Unlock()
		return next.Copy(), nil
	}

	s.current = next
	var err error
	if next.Empty() {
		err = s.repo.Clear(ctx)
	} else {
		err = s.repo.Save(ctx, next)
	}
	subscribers := slices.Clone(s.subscribers)
	s.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Msg("failed to persist session")
		err = errors.Wrapf(err, "[session Dispatch] persist")
	}
	for _, fn := range subscribers {
		fn(next.Copy())
	}
	return next.Copy(), err
}

// Login replaces the session. An incomplete session is refused.
func (s *Store) Login(ctx context.Context, sess Session) error {
	if !sess.Complete() {
		return errors.ErrIncompleteSession
	}
	_, err := s.Dispatch(ctx, LoginAction{Session: sess})
	return err
}

// Logout clears the session. Logging out twice is a no-op.
func (s *Store) Logout(ctx context.Context) error {
	_, err := s.Dispatch(ctx, LogoutAction{})
	return err
}

// Token returns the bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

// EndSession is called by the API client when the backend rejects the token.
// The clear outlives the request, so a client that disconnects does not leave
// the rejected session persisted.
func (s *Store) EndSession(ctx context.Context) {
	if err := s.Logout(context.WithoutCancel(ctx)); err != nil {
		log.Error().Err(err).Msg("session cleared in memory only")
	}
}
