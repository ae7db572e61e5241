package catalog

import (
	"slices"
	"strings"

	"github.com/jrsteele09/catalog-console/apiclient"
	"github.com/jrsteele09/catalog-console/internal/errors"
	"github.com/jrsteele09/catalog-console/users"
)

// SourceType records who created a product.
type SourceType string

const (
	SourceAdmin SourceType = "ADMIN"
	SourceUser  SourceType = "USER"
)

func (s SourceType) Valid() bool {
	return s == SourceAdmin || s == SourceUser
}

// SourceFor is the source the backend expects for products created by u.
func SourceFor(u *users.User) SourceType {
	if u.IsAdmin() {
		return SourceAdmin
	}
	return SourceUser
}

// Product is the backend's catalog entry.
type Product struct {
	ID         string     `json:"_id"`
	Name       string     `json:"name"`
	SKU        string     `json:"sku"`
	Category   string     `json:"category"`
	Source     SourceType `json:"source"`
	AssignedTo []string   `json:"assignedTo"`
	Logo       string     `json:"logo,omitempty"` // Reference under /images/
}

func (p *Product) IsAssigned(userID string) bool {
	return slices.Contains(p.AssignedTo, userID)
}

// CanModify reports whether u may edit or delete p. Regular users may not
// touch products an admin created.
func CanModify(u *users.User, p *Product) bool {
	if u == nil || p == nil {
		return false
	}
	return u.IsAdmin() || p.Source != SourceAdmin
}

// ProductForm is the add/edit product form. Logo is required when creating.
type ProductForm struct {
	Name       string
	SKU        string
	Category   string
	AssignedTo []string
	Logo       *apiclient.File
}

// Normalize trims the text fields and drops blank or repeated assignee ids.
func (f ProductForm) Normalize() ProductForm {
	f.Name = strings.TrimSpace(f.Name)
	f.SKU = strings.TrimSpace(f.SKU)
	f.Category = strings.TrimSpace(f.Category)

	var assigned []string
	for _, id := range f.AssignedTo {
		id = strings.TrimSpace(id)
		if id != "" && !slices.Contains(assigned, id) {
			assigned = append(assigned, id)
		}
	}
	f.AssignedTo = assigned
	return f
}

func (f ProductForm) Validate(creating bool) error {
	fe := errors.FieldErrors{}
	if strings.TrimSpace(f.Name) == "" {
		fe.Add("name", "Product name is required")
	}
	if strings.TrimSpace(f.SKU) == "" {
		fe.Add("sku", "SKU is required")
	}
	if strings.TrimSpace(f.Category) == "" {
		fe.Add("category", "Category is required")
	}
	if creating && (f.Logo == nil || f.Logo.Data == nil) {
		fe.Add("logo", "Logo is required")
	}
	return fe.Err()
}
