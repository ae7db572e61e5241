package users

import (
	"context"
	"net/url"

	"github.com/jrsteele09/catalog-console/apiclient"
)

// UserRepo is the set of account operations the console performs against the
// backend. Service is the HTTP implementation.
type UserRepo interface {
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)
	Register(ctx context.Context, reg Registration) error
	Me(ctx context.Context) (*User, error)
	UpdateProfile(ctx context.Context, update ProfileUpdate) error
	UpdatePassword(ctx context.Context, change PasswordChange) error
	UploadProfilePicture(ctx context.Context, file apiclient.File) error
	List(ctx context.Context, query url.Values) (*Page, error)
	All(ctx context.Context) ([]User, error)
}

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Page is one page of the user listing.
type Page struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
}
