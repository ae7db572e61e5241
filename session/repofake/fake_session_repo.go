package fakesessionrepo

import (
	"context"
	"sync"

	"github.com/jrsteele09/catalog-console/internal/errors"
	"github.com/jrsteele09/catalog-console/session"
)

var _ session.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo keeps the session in memory. It backs the "memory" session
// backend and the tests.
type FakeSessionRepo struct {
	lock    sync.RWMutex
	stored  *session.Session
	LoadErr error
	SaveErr error
	Saves   int
	Clears  int
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{}
}

// NewFakeSessionRepoWith starts with s already persisted.
func NewFakeSessionRepoWith(s session.Session) *FakeSessionRepo {
	c := s.Copy()
	return &FakeSessionRepo{stored: &c}
}

func (r *FakeSessionRepo) Load(_ context.Context) (session.Session, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.LoadErr != nil {
		return session.Session{}, r.LoadErr
	}
	if r.stored == nil {
		return session.Session{}, errors.ErrSessionNotFound
	}
	return r.stored.Copy(), nil
}

func (r *FakeSessionRepo) Save(_ context.Context, s session.Session) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Saves++
	if r.SaveErr != nil {
		return r.SaveErr
	}
	c := s.Copy()
	r.stored = &c
	return nil
}

func (r *FakeSessionRepo) Clear(_ context.Context) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Clears++
	r.stored = nil
	return nil
}

// Stored returns the persisted session and whether one exists.
func (r *FakeSessionRepo) Stored() (session.Session, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.stored == nil {
		return session.Session{}, false
	}
	return r.stored.Copy(), true
}
