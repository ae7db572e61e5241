package users_test

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/jrsteele09/catalog-console/apiclient"
	"github.com/jrsteele09/catalog-console/internal/errors"
	"github.com/jrsteele09/catalog-console/users"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"valid", "Abc12@", ""},
		{"empty", "", "Password is required"},
		{"too short", "Ab1@", "at least 6"},
		{"too long", "Abcdefghij12345678@xy", "at most 20"},
		{"no upper", "abc12@", "uppercase"},
		{"no lower", "ABC12@", "lowercase"},
		{"no number", "Abcde@", "number"},
		{"no special", "Abcde1", "special"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := users.ValidatePasswordStrength(tt.password)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateEmail(t *testing.T) {
	require.NoError(t, users.ValidateEmail("ada@example.com"))
	require.Error(t, users.ValidateEmail(""))
	require.Error(t, users.ValidateEmail("not-an-email"))
	require.Error(t, users.ValidateEmail(strings.Repeat("a", 320)+"@example.com"))
}

func TestCredentialsValidate(t *testing.T) {
	err := users.Credentials{Email: "bad", Password: "123"}.Validate()
	require.ErrorIs(t, err, errors.ErrValidation)

	var fe errors.FieldErrors
	require.ErrorAs(t, err, &fe)
	require.Equal(t, "Enter a valid email address", fe["email"])
	require.Equal(t, "Password must be at least 6 characters", fe["password"])

	require.NoError(t, users.Credentials{Email: "ada@example.com", Password: "123456"}.Validate())
}

func TestRegistrationValidate(t *testing.T) {
	err := users.Registration{Name: " ", Email: "ada@example.com", Password: "Abc12@"}.Validate()
	var fe errors.FieldErrors
	require.ErrorAs(t, err, &fe)
	require.Contains(t, fe, "name")
	require.Contains(t, fe, "role")
	require.NotContains(t, fe, "email")
	require.NotContains(t, fe, "password")

	require.NoError(t, users.Registration{Name: "Ada", Email: "ada@example.com", Password: "Abc12@", Role: users.RoleUser}.Validate())
}

func TestPasswordChangeValidate(t *testing.T) {
	err := users.PasswordChange{OldPassword: "old", NewPassword: "secret1", Confirm: "secret2"}.Validate()
	var fe errors.FieldErrors
	require.ErrorAs(t, err, &fe)
	require.Equal(t, map[string]string{"confirmPassword": "Passwords must match"}, map[string]string(fe))

	require.NoError(t, users.PasswordChange{OldPassword: "old", NewPassword: "secret1", Confirm: "secret1"}.Validate())
}

func TestIsAdmin(t *testing.T) {
	var nobody *users.User
	require.False(t, nobody.IsAdmin())
	require.False(t, (&users.User{Role: users.RoleUser}).IsAdmin())
	require.True(t, (&users.User{Role: users.RoleAdmin}).IsAdmin())
}

type call struct {
	method string
	path   string
	query  url.Values
	body   any
	form   *apiclient.Multipart
}

type fakeBackend struct {
	calls []call
	reply func(out any)
	err   error
}

func (f *fakeBackend) record(c call, out any) error {
	f.calls = append(f.calls, c)
	if f.err != nil {
		return f.err
	}
	if f.reply != nil && out != nil {
		f.reply(out)
	}
	return nil
}

func (f *fakeBackend) Get(_ context.Context, path string, query url.Values, out any) error {
	return f.record(call{method: "GET", path: path, query: query}, out)
}

func (f *fakeBackend) PostJSON(_ context.Context, path string, in, out any) error {
	return f.record(call{method: "POST", path: path, body: in}, out)
}

func (f *fakeBackend) PutJSON(_ context.Context, path string, in, out any) error {
	return f.record(call{method: "PUT", path: path, body: in}, out)
}

func (f *fakeBackend) PostMultipart(_ context.Context, path string, form *apiclient.Multipart, out any) error {
	return f.record(call{method: "POST", path: path, form: form}, out)
}

func TestServiceLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid form makes no request", func(t *testing.T) {
		api := &fakeBackend{}
		_, err := users.NewService(api).Login(ctx, users.Credentials{Email: "x"})
		require.ErrorIs(t, err, errors.ErrValidation)
		require.Empty(t, api.calls)
	})

	t.Run("success", func(t *testing.T) {
		api := &fakeBackend{reply: func(out any) {
			*out.(*users.LoginResult) = users.LoginResult{Token: "tok", User: &users.User{ID: "u1", Role: users.RoleAdmin}}
		}}
		res, err := users.NewService(api).Login(ctx, users.Credentials{Email: "ada@example.com", Password: "secret"})
		require.NoError(t, err)
		require.Equal(t, "tok", res.Token)
		require.True(t, res.User.IsAdmin())
		require.Equal(t, "/users/login", api.calls[0].path)
	})

	t.Run("response without user", func(t *testing.T) {
		api := &fakeBackend{reply: func(out any) {
			*out.(*users.LoginResult) = users.LoginResult{Token: "tok"}
		}}
		_, err := users.NewService(api).Login(ctx, users.Credentials{Email: "ada@example.com", Password: "secret"})
		require.ErrorIs(t, err, errors.ErrBadResponse)
	})

	t.Run("backend error passes through", func(t *testing.T) {
		backendErr := &apiclient.APIError{Status: 400, Message: "Invalid credentials"}
		api := &fakeBackend{err: backendErr}
		_, err := users.NewService(api).Login(ctx, users.Credentials{Email: "ada@example.com", Password: "secret"})
		require.Equal(t, "Invalid credentials", apiclient.UserMessage(err, ""))
	})
}

func TestServiceUpdates(t *testing.T) {
	ctx := context.Background()
	api := &fakeBackend{}
	svc := users.NewService(api)

	require.NoError(t, svc.UpdateProfile(ctx, users.ProfileUpdate{Name: "Ada", Email: "ada@example.com"}))
	require.NoError(t, svc.UpdatePassword(ctx, users.PasswordChange{OldPassword: "old", NewPassword: "secret1", Confirm: "secret1"}))
	require.NoError(t, svc.UploadProfilePicture(ctx, apiclient.File{Name: "me.png", Data: strings.NewReader("img")}))

	err := svc.UploadProfilePicture(ctx, apiclient.File{Name: "none"})
	require.ErrorIs(t, err, errors.ErrValidation)

	require.Len(t, api.calls, 3)
	require.Equal(t, "/users/update", api.calls[0].path)
	require.Equal(t, "PUT", api.calls[1].method)
	require.Equal(t, "/users/update-password", api.calls[1].path)
	require.Equal(t, "/users/upload-profile-pic", api.calls[2].path)
	require.NotNil(t, api.calls[2].form)
}

func TestServiceList(t *testing.T) {
	api := &fakeBackend{reply: func(out any) {
		*out.(*users.Page) = users.Page{Users: []users.User{{ID: "u1"}, {ID: "u2"}}, Total: 7}
	}}
	svc := users.NewService(api)

	page, err := svc.List(context.Background(), url.Values{"page": {"2"}, "limit": {"5"}})
	require.NoError(t, err)
	require.Equal(t, 7, page.Total)
	require.Len(t, page.Users, 2)
	require.Equal(t, "2", api.calls[0].query.Get("page"))

	all, err := svc.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Nil(t, api.calls[1].query)
}
