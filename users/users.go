package users

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/jrsteele09/catalog-console/internal/errors"
)

// RoleType represents the role the backend assigned to an account
type RoleType string

const (
	RoleAdmin RoleType = "admin" // Can manage users, assign products and edit admin products
	RoleUser  RoleType = "user"  // Regular catalog user
)

func (r RoleType) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is the profile snapshot the backend returns for an account.
type User struct {
	ID             string   `json:"_id"`               // Backend identifier
	Name           string   `json:"name"`              // Display name
	Email          string   `json:"email"`             // Login email
	Role           RoleType `json:"role"`              // admin or user
	ProfilePicture string   `json:"profile,omitempty"` // Reference under /images/
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

const (
	minPasswordLength      = 6
	maxPasswordLength      = 20
	maxEmailLength         = 320
	passwordSpecialCharset = "@$!%*?&"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks the address format accepted by the backend.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("Email is required")
	}
	if len(email) > maxEmailLength {
		return errors.New("Email must be at most 320 characters")
	}
	if !emailPattern.MatchString(email) {
		return errors.New("Enter a valid email address")
	}
	return nil
}

// ValidatePasswordStrength checks if password meets the registration rules:
// - Between 6 and 20 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
// - Contains one of @$!%*?&
func ValidatePasswordStrength(password string) error {
	if password == "" {
		return errors.New("Password is required")
	}
	if len(password) < minPasswordLength {
		return errors.New("Password must be at least 6 characters")
	}
	if len(password) > maxPasswordLength {
		return errors.New("Password must be at most 20 characters")
	}

	var (
		hasUpper   bool
		hasLower   bool
		hasNumber  bool
		hasSpecial bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		case strings.ContainsRune(passwordSpecialCharset, char):
			hasSpecial = true
		}
	}

	if !hasUpper {
		return errors.New("Password must contain at least one uppercase letter")
	}
	if !hasLower {
		return errors.New("Password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return errors.New("Password must contain at least one number")
	}
	if !hasSpecial {
		return errors.New("Password must contain at least one special character (@$!%*?&)")
	}

	return nil
}

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c Credentials) Validate() error {
	fe := errors.FieldErrors{}
	if c.Email == "" {
		fe.Add("email", "Email is required")
	} else if !emailPattern.MatchString(c.Email) {
		fe.Add("email", "Enter a valid email address")
	}
	if c.Password == "" {
		fe.Add("password", "Password is required")
	} else if len(c.Password) < minPasswordLength {
		fe.Add("password", "Password must be at least 6 characters")
	}
	return fe.Err()
}

// Registration creates a new account.
type Registration struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Role     RoleType `json:"role"`
}

func (r Registration) Validate() error {
	fe := errors.FieldErrors{}
	if strings.TrimSpace(r.Name) == "" {
		fe.Add("name", "Name is required")
	}
	if err := ValidateEmail(r.Email); err != nil {
		fe.Add("email", err.Error())
	}
	if err := ValidatePasswordStrength(r.Password); err != nil {
		fe.Add("password", err.Error())
	}
	if !r.Role.Valid() {
		fe.Add("role", "Role is required")
	}
	return fe.Err()
}

// ProfileUpdate changes the caller's name and email.
type ProfileUpdate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (p ProfileUpdate) Validate() error {
	fe := errors.FieldErrors{}
	if strings.TrimSpace(p.Name) == "" {
		fe.Add("name", "Name is required")
	}
	if p.Email == "" {
		fe.Add("email", "Email is required")
	} else if !emailPattern.MatchString(p.Email) {
		fe.Add("email", "Invalid email")
	}
	return fe.Err()
}

// PasswordChange is the update-password form. Confirm never leaves the console.
type PasswordChange struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
	Confirm     string `json:"-"`
}

func (p PasswordChange) Validate() error {
	fe := errors.FieldErrors{}
	if p.OldPassword == "" {
		fe.Add("oldPassword", "Old password is required")
	}
	if p.NewPassword == "" {
		fe.Add("newPassword", "New password is required")
	} else if len(p.NewPassword) < minPasswordLength {
		fe.Add("newPassword", "Password must be at least 6 characters")
	}
	if p.Confirm == "" {
		fe.Add("confirmPassword", "Confirm password is required")
	} else if p.Confirm != p.NewPassword {
		fe.Add("confirmPassword", "Passwords must match")
	}
	return fe.Err()
}
