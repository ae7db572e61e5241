package session

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jrsteele09/catalog-console/internal/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	codecVersion = 1

	saltSize  = 16
	nonceSize = 24
	keySize   = 32

	argonTime    = 2
	argonMemory  = 19 * 1024
	argonThreads = 1
)

var sealedMagic = []byte("CCS1")

type envelope struct {
	Version int     `json:"v"`
	Session Session `json:"session"`
}

// Codec turns a session into the bytes a Repo stores. With a secret the bytes
// are sealed with NaCl secretbox under an Argon2id key; without one they are
// plain JSON.
type Codec struct {
	secret []byte

	mu   sync.Mutex
	salt []byte
	key  *[keySize]byte
}

func NewCodec(secret string) *Codec {
	c := &Codec{}
	if secret != "" {
		c.secret = []byte(secret)
	}
	return c
}

func (c *Codec) Sealed() bool {
	return len(c.secret) > 0
}

func (c *Codec) Encode(s Session) ([]byte, error) {
	plain, err := json.Marshal(envelope{Version: codecVersion, Session: s})
	if err != nil {
		return nil, fmt.Errorf("[session Encode] %w", err)
	}
	if !c.Sealed() {
		return plain, nil
	}

	salt, key, err := c.sealingKey()
	if err != nil {
		return nil, err
	}
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("[session Encode] nonce: %w", err)
	}

	out := make([]byte, 0, len(sealedMagic)+saltSize+nonceSize+len(plain)+secretbox.Overhead)
	out = append(out, sealedMagic...)
	out = append(out, salt...)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, plain, &nonce, key), nil
}

func (c *Codec) Decode(data []byte) (Session, error) {
	plain := data
	if c.Sealed() {
		var err error
		if plain, err = c.open(data); err != nil {
			return Session{}, err
		}
	}

	var env envelope
	if err := json.Unmarshal(plain, &env); err != nil {
		return Session{}, errors.Wrapf(errors.ErrSessionCorrupt, "decode: %v", err)
	}
	if env.Version != codecVersion {
		return Session{}, errors.Wrapf(errors.ErrSessionCorrupt, "unsupported version %d", env.Version)
	}
	return env.Session, nil
}

func (c *Codec) open(data []byte) ([]byte, error) {
	header := len(sealedMagic) + saltSize + nonceSize
	if len(data) < header+secretbox.Overhead || !bytes.HasPrefix(data, sealedMagic) {
		return nil, errors.Wrapf(errors.ErrSessionCorrupt, "not a sealed session")
	}
	salt := data[len(sealedMagic) : len(sealedMagic)+saltSize]
	var nonce [nonceSize]byte
	copy(nonce[:], data[len(sealedMagic)+saltSize:header])

	plain, ok := secretbox.Open(nil, data[header:], &nonce, c.keyFor(salt))
	if !ok {
		return nil, errors.Wrapf(errors.ErrSessionCorrupt, "cannot open sealed session")
	}
	return plain, nil
}

// sealingKey derives one key per Codec; the salt travels with every blob.
func (c *Codec) sealingKey() ([]byte, *[keySize]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.key == nil {
		salt := make([]byte, saltSize)
		if _, err := rand.Read(salt); err != nil {
			return nil, nil, fmt.Errorf("[session Encode] salt: %w", err)
		}
		c.salt = salt
		c.key = c.derive(salt)
	}
	return c.salt, c.key, nil
}

func (c *Codec) keyFor(salt []byte) *[keySize]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.key != nil && bytes.Equal(salt, c.salt) {
		return c.key
	}
	return c.derive(salt)
}

func (c *Codec) derive(salt []byte) *[keySize]byte {
	var key [keySize]byte
	copy(key[:], argon2.IDKey(c.secret, salt, argonTime, argonMemory, argonThreads, keySize))
	return &key
}
