package session

import "context"

// Repo is durable storage for the single console session.
type Repo interface {
	// Load returns the persisted session, errors.ErrSessionNotFound when none
	// exists, or errors.ErrSessionCorrupt when the stored value is unreadable
	Load(ctx context.Context) (Session, error)

	// Save replaces the persisted session
	Save(ctx context.Context, s Session) error

	// Clear removes the persisted session; clearing nothing is not an error
	Clear(ctx context.Context) error
}
