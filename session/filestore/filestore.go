// Package filestore persists the console session as a single file in the data
// folder, the console's equivalent of browser local storage.
package filestore

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jrsteele09/catalog-console/internal/errors"
	"github.com/jrsteele09/catalog-console/session"
)

var _ session.Repo = (*Repo)(nil)

type Repo struct {
	path  string
	codec *session.Codec
}

// New stores the session at <folder>/<namespace>.auth.json.
func New(folder, namespace string, codec *session.Codec) (*Repo, error) {
	if namespace == "" {
		return nil, fmt.Errorf("[filestore New] namespace is required")
	}
	if err := os.MkdirAll(folder, 0o700); err != nil {
		return nil, fmt.Errorf("[filestore New] create %s: %w", folder, err)
	}
	return &Repo{
		path:  filepath.Join(folder, namespace+".auth.json"),
		codec: codec,
	}, nil
}

func (r *Repo) Path() string {
	return r.path
}

func (r *Repo) Load(_ context.Context) (session.Session, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return session.Session{}, errors.ErrSessionNotFound
	}
	if err != nil {
		return session.Session{}, fmt.Errorf("[filestore Load] %w", err)
	}
	return r.codec.Decode(data)
}

// Save writes to a temporary file and renames it over the old one so a crash
// never leaves half a session behind.
func (r *Repo) Save(_ context.Context, s session.Session) error {
	data, err := r.codec.Encode(s)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".session-*")
	if err != nil {
		return fmt.Errorf("[filestore Save] %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("[filestore Save] write: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("[filestore Save] chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[filestore Save] close: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("[filestore Save] rename: %w", err)
	}
	return nil
}

func (r *Repo) Clear(_ context.Context) error {
	if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("[filestore Clear] %w", err)
	}
	return nil
}
