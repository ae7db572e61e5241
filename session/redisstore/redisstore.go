// Package redisstore keeps the console session in Redis so that it survives
// restarts. A store reads the key only when it starts, so one console process
// owns a namespace at a time.
package redisstore

import (
	"context"
	"fmt"

	"github.com/jrsteele09/catalog-console/internal/errors"
	"github.com/jrsteele09/catalog-console/session"
	"github.com/redis/go-redis/v9"
)

var _ session.Repo = (*Repo)(nil)

type Repo struct {
	rdb   redis.UniversalClient
	key   string
	codec *session.Codec
}

// New stores the session under "<namespace>:auth".
func New(rdb redis.UniversalClient, namespace string, codec *session.Codec) *Repo {
	return &Repo{
		rdb:   rdb,
		key:   namespace + ":auth",
		codec: codec,
	}
}

func (r *Repo) Key() string {
	return r.key
}

func (r *Repo) Load(ctx context.Context) (session.Session, error) {
	data, err := r.rdb.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return session.Session{}, errors.ErrSessionNotFound
	}
	if err != nil {
		return session.Session{}, fmt.Errorf("[redisstore Load] %w", err)
	}
	return r.codec.Decode(data)
}

func (r *Repo) Save(ctx context.Context, s session.Session) error {
	data, err := r.codec.Encode(s)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("[redisstore Save] %w", err)
	}
	return nil
}

func (r *Repo) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("[redisstore Clear] %w", err)
	}
	return nil
}
