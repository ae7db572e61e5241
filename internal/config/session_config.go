package config

import "strings"

type SessionBackend string

const (
	SessionBackendFile   SessionBackend = "file"
	SessionBackendRedis  SessionBackend = "redis"
	SessionBackendMemory SessionBackend = "memory"
)

type SessionConfig interface {
	GetSessionBackend() SessionBackend
	GetSessionNamespace() string
	GetSessionSecret() string
	GetRedisAddr() string
	GetRedisUsername() string
	GetRedisPassword() string
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionBackend() SessionBackend {
	switch b := SessionBackend(strings.ToLower(GetEnv("SESSION_BACKEND", string(SessionBackendFile)))); b {
	case SessionBackendRedis, SessionBackendMemory:
		return b
	default:
		return SessionBackendFile
	}
}

// GetSessionNamespace prefixes the persisted session key (file name or Redis key).
func (Session) GetSessionNamespace() string {
	return GetEnv("SESSION_NAMESPACE", "persist")
}

// GetSessionSecret enables at-rest sealing of the persisted session when set.
func (Session) GetSessionSecret() string {
	return GetEnv("SESSION_SECRET", "")
}

func (Session) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Session) GetRedisUsername() string {
	return GetEnv("REDIS_USERNAME", "")
}

func (Session) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}
