package catalog

import (
	"context"
	"encoding/json"
	"net/url"
	"slices"

	"github.com/jrsteele09/catalog-console/apiclient"
	"github.com/jrsteele09/catalog-console/internal/errors"
	"github.com/jrsteele09/catalog-console/users"
)

const (
	pathProducts   = "/products"
	pathCategories = "/products/categories"
	pathAssign     = "/products/assign"

	// LogoField is the multipart field the backend reads the product logo from.
	LogoField = "logo"
)

// ProductRepo is the set of product operations the console performs.
type ProductRepo interface {
	List(ctx context.Context, query url.Values) (*Page, error)
	Categories(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, actor *users.User, form ProductForm) error
	Update(ctx context.Context, actor *users.User, existing *Product, form ProductForm) error
	Delete(ctx context.Context, actor *users.User, existing *Product) error
	Assign(ctx context.Context, actor *users.User, product *Product, userID string) error
	Unassign(ctx context.Context, actor *users.User, product *Product, userID string) error
}

// Page is one page of the product listing.
type Page struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

// Backend is the part of apiclient.Client the product service needs.
type Backend interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Delete(ctx context.Context, path string, out any) error
	PostJSON(ctx context.Context, path string, in, out any) error
	PostMultipart(ctx context.Context, path string, form *apiclient.Multipart, out any) error
	PutMultipart(ctx context.Context, path string, form *apiclient.Multipart, out any) error
}

var _ ProductRepo = (*Service)(nil)

type Service struct {
	api Backend
}

func NewService(api Backend) *Service {
	return &Service{api: api}
}

func (s *Service) List(ctx context.Context, query url.Values) (*Page, error) {
	var page Page
	if err := s.api.Get(ctx, pathProducts, query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	var res struct {
		Categories []string `json:"categories"`
	}
	if err := s.api.Get(ctx, pathCategories, nil, &res); err != nil {
		return nil, err
	}
	return res.Categories, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	if id == "" {
		return nil, errors.ErrNotFound
	}
	var p Product
	if err := s.api.Get(ctx, productPath(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) Create(ctx context.Context, actor *users.User, form ProductForm) error {
	if actor == nil {
		return errors.ErrForbidden
	}
	form = form.Normalize()
	if err := form.Validate(true); err != nil {
		return err
	}
	mp, err := encodeForm(actor, form)
	if err != nil {
		return err
	}
	return s.api.PostMultipart(ctx, pathProducts, mp, nil)
}

func (s *Service) Update(ctx context.Context, actor *users.User, existing *Product, form ProductForm) error {
	if !CanModify(actor, existing) {
		return errors.Wrapf(errors.ErrForbidden, "[catalog Update] %s", productID(existing))
	}
	form = form.Normalize()
	if err := form.Validate(false); err != nil {
		return err
	}
	mp, err := encodeForm(actor, form)
	if err != nil {
		return err
	}
	return s.api.PutMultipart(ctx, productPath(existing.ID), mp, nil)
}

func (s *Service) Delete(ctx context.Context, actor *users.User, existing *Product) error {
	if !CanModify(actor, existing) {
		return errors.Wrapf(errors.ErrForbidden, "[catalog Delete] %s", productID(existing))
	}
	return s.api.Delete(ctx, productPath(existing.ID), nil)
}

// Assign adds userID to the product's assignees. Admin only.
func (s *Service) Assign(ctx context.Context, actor *users.User, product *Product, userID string) error {
	if product.IsAssigned(userID) {
		return nil
	}
	return s.assign(ctx, actor, product, userID, append(slices.Clone(product.AssignedTo), userID))
}

// Unassign removes userID from the product's assignees. Admin only.
func (s *Service) Unassign(ctx context.Context, actor *users.User, product *Product, userID string) error {
	if !product.IsAssigned(userID) {
		return nil
	}
	remaining := slices.DeleteFunc(slices.Clone(product.AssignedTo), func(id string) bool { return id == userID })
	return s.assign(ctx, actor, product, userID, remaining)
}

type assignRequest struct {
	ProductID  string   `json:"productId"`
	UserID     string   `json:"userId"`
	AssignedTo []string `json:"assignedTo"`
}

func (s *Service) assign(ctx context.Context, actor *users.User, product *Product, userID string, assignedTo []string) error {
	if !actor.IsAdmin() {
		return errors.Wrapf(errors.ErrForbidden, "[catalog Assign] %s", product.ID)
	}
	if userID == "" {
		fe := errors.FieldErrors{}
		fe.Add("userId", "Choose a user")
		return fe
	}
	if assignedTo == nil {
		assignedTo = []string{}
	}
	return s.api.PostJSON(ctx, pathAssign, assignRequest{
		ProductID:  product.ID,
		UserID:     userID,
		AssignedTo: assignedTo,
	}, nil)
}

// encodeForm builds the multipart body. The source follows the actor's role;
// an admin assigns whoever was picked, a regular user is assigned to themself.
func encodeForm(actor *users.User, form ProductForm) (*apiclient.Multipart, error) {
	assigned := form.AssignedTo
	if !actor.IsAdmin() {
		assigned = []string{actor.ID}
	}
	if assigned == nil {
		assigned = []string{}
	}
	assignedJSON, err := json.Marshal(assigned)
	if err != nil {
		return nil, errors.Wrapf(err, "[catalog] encode assignees")
	}

	mp := apiclient.NewMultipart().
		AddField("name", form.Name).
		AddField("sku", form.SKU).
		AddField("category", form.Category).
		AddField("source", string(SourceFor(actor))).
		AddField("assignedTo", string(assignedJSON))
	if form.Logo != nil && form.Logo.Data != nil {
		logo := *form.Logo
		logo.Field = LogoField
		mp.AddFile(logo)
	}
	return mp, nil
}

func productPath(id string) string {
	return pathProducts + "/" + url.PathEscape(id)
}

func productID(p *Product) string {
	if p == nil {
		return ""
	}
	return p.ID
}
