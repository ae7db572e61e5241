package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/catalog-console/users"
)

// Session is the console's proof of authentication: the bearer token issued by
// the backend plus the profile snapshot returned with it. Token and User are
// either both set or both empty.
type Session struct {
	Token string      `json:"token"`
	User  *users.User `json:"user"`
}

// Empty reports whether no one is logged in.
func (s Session) Empty() bool {
	return s.Token == "" && s.User == nil
}

// Complete reports whether both halves of the session are present.
func (s Session) Complete() bool {
	return s.Token != "" && s.User != nil && s.User.ID != ""
}

func (s Session) IsAdmin() bool {
	return s.User.IsAdmin()
}

// Copy returns a session that shares no memory with s.
func (s Session) Copy() Session {
	if s.User == nil {
		return Session{Token: s.Token}
	}
	u := *s.User
	return Session{Token: s.Token, User: &u}
}

func (s Session) Equal(o Session) bool {
	if s.Token != o.Token {
		return false
	}
	if s.User == nil || o.User == nil {
		return s.User == o.User
	}
	return *s.User == *o.User
}

// ExpiresAt reads the exp claim when the token is a JWT. The signature is not
// checked; the backend stays the only judge of validity.
func (s Session) ExpiresAt() (time.Time, bool) {
	if s.Token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
