package users

import (
	"context"
	"net/url"

	"github.com/jrsteele09/catalog-console/apiclient"
	"github.com/jrsteele09/catalog-console/internal/errors"
)

const (
	pathLogin          = "/users/login"
	pathRegister       = "/users/register"
	pathMe             = "/users/me"
	pathUpdate         = "/users/update"
	pathUpdatePassword = "/users/update-password"
	pathProfilePicture = "/users/upload-profile-pic"
	pathUsers          = "/users"

	// ProfilePictureField is the multipart field the backend reads the upload from.
	ProfilePictureField = "profile"
)

// Backend is the part of apiclient.Client the user service needs.
type Backend interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	PostJSON(ctx context.Context, path string, in, out any) error
	PutJSON(ctx context.Context, path string, in, out any) error
	PostMultipart(ctx context.Context, path string, form *apiclient.Multipart, out any) error
}

var _ UserRepo = (*Service)(nil)

// Service talks to the backend's /users endpoints. Forms are validated before
// any request is made.
type Service struct {
	api Backend
}

func NewService(api Backend) *Service {
	return &Service{api: api}
}

func (s *Service) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	var res LoginResult
	if err := s.api.PostJSON(ctx, pathLogin, creds, &res); err != nil {
		return nil, err
	}
	if res.Token == "" || res.User == nil || res.User.ID == "" {
		return nil, errors.Wrapf(errors.ErrBadResponse, "[users Login] response without token and user")
	}
	return &res, nil
}

func (s *Service) Register(ctx context.Context, reg Registration) error {
	if err := reg.Validate(); err != nil {
		return err
	}
	return s.api.PostJSON(ctx, pathRegister, reg, nil)
}

func (s *Service) Me(ctx context.Context) (*User, error) {
	var u User
	if err := s.api.Get(ctx, pathMe, nil, &u); err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, errors.Wrapf(errors.ErrBadResponse, "[users Me] profile without id")
	}
	return &u, nil
}

func (s *Service) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	if err := update.Validate(); err != nil {
		return err
	}
	return s.api.PutJSON(ctx, pathUpdate, update, nil)
}

func (s *Service) UpdatePassword(ctx context.Context, change PasswordChange) error {
	if err := change.Validate(); err != nil {
		return err
	}
	return s.api.PutJSON(ctx, pathUpdatePassword, change, nil)
}

func (s *Service) UploadProfilePicture(ctx context.Context, file apiclient.File) error {
	if file.Data == nil {
		fe := errors.FieldErrors{}
		fe.Add(ProfilePictureField, "Choose an image to upload")
		return fe
	}
	file.Field = ProfilePictureField
	return s.api.PostMultipart(ctx, pathProfilePicture, apiclient.NewMultipart().AddFile(file), nil)
}

// List fetches one page of users. query carries page, limit, sort and order.
func (s *Service) List(ctx context.Context, query url.Values) (*Page, error) {
	var page Page
	if err := s.api.Get(ctx, pathUsers, query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// All fetches the backend's default user listing, used for assignment pickers.
func (s *Service) All(ctx context.Context) ([]User, error) {
	page, err := s.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	return page.Users, nil
}
