package server

import (
	"context"
	"mime/multipart"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/jrsteele09/catalog-console/apiclient"
	"github.com/jrsteele09/catalog-console/catalog"
	"github.com/jrsteele09/catalog-console/internal/errors"
	"github.com/jrsteele09/catalog-console/listing"
	"github.com/jrsteele09/catalog-console/navigation"
	"github.com/jrsteele09/catalog-console/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Assignee is a user shown against a product
type Assignee struct {
	ID   string
	Name string
}

// ProductRow is one line of the products table
type ProductRow struct {
	catalog.Product
	CanModify  bool
	EditURL    string
	DeleteURL  string
	Assignees  []Assignee
	Assignable []users.User
}

// ProductsPageData is the products listing model
type ProductsPageData struct {
	Query      listing.Query
	Rows       []ProductRow
	Categories []string
	Sources    []catalog.SourceType
	Pager      listing.Pager
	SortName   string
	SortSKU    string
	ReturnURL  string
	AssignURL  string
	NewURL     string
}

// ProductFormData is the add/edit product form model
type ProductFormData struct {
	Form       *form
	Action     string
	Editing    bool
	Product    *catalog.Product
	Categories []string
	Users      []users.User
}

// ProductDeleteData is the delete confirmation model
type ProductDeleteData struct {
	Product *catalog.Product
	Action  string
}

// ProductsListHandler renders the product listing (GET /products). Products,
// categories and, for admins, users load concurrently.
func (s *Server) ProductsListHandler() view {
	return func(w http.ResponseWriter, r *http.Request) error {
		me := s.currentUser()
		values := r.URL.Query()
		q := listing.Parse(values, s.productsQ).Apply(values)
		if q.Source != "" && !catalog.SourceType(q.Source).Valid() {
			q = q.WithSource("")
		}

		var (
			page     *catalog.Page
			cats     []string
			assignee []users.User
		)
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			var err error
			page, err = s.products.List(ctx, q.Backend())
			return err
		})
		g.Go(func() error {
			cats = s.categories(ctx)
			return nil
		})
		if me.IsAdmin() {
			g.Go(func() error {
				assignee = s.assignableUsers(ctx)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		s.prodMirror.Replace(page.Products, page.Total)

		data := ProductsPageData{
			Query:      q,
			Categories: cats,
			Sources:    []catalog.SourceType{catalog.SourceAdmin, catalog.SourceUser},
			Pager:      q.Pager(navigation.RouteProducts, page.Total, s.pageSizes),
			SortName:   q.SortURL(navigation.RouteProducts, "name"),
			SortSKU:    q.SortURL(navigation.RouteProducts, "sku"),
			ReturnURL:  q.URL(navigation.RouteProducts),
			AssignURL:  navigation.RouteProductAssign,
			NewURL:     navigation.RouteProductNew,
		}
		for _, p := range page.Products {
			data.Rows = append(data.Rows, s.productRow(me, p, assignee))
		}
		return s.render(w, r, http.StatusOK, pageProducts, "Products", "products", data)
	}
}

func (s *Server) productRow(me *users.User, p catalog.Product, all []users.User) ProductRow {
	row := ProductRow{
		Product:   p,
		CanModify: catalog.CanModify(me, &p),
		EditURL:   navigation.Path(navigation.RouteProductEdit, map[string]string{"id": p.ID}),
		DeleteURL: navigation.Path(navigation.RouteProductDelete, map[string]string{"id": p.ID}),
	}
	if !me.IsAdmin() {
		return row
	}
	for _, id := range p.AssignedTo {
		name := id
		if u, ok := s.userMirror.Find(func(u users.User) bool { return u.ID == id }); ok {
			name = u.Name
		}
		row.Assignees = append(row.Assignees, Assignee{ID: id, Name: name})
	}
	for _, u := range all {
		if !p.IsAssigned(u.ID) {
			row.Assignable = append(row.Assignable, u)
		}
	}
	return row
}

// categories loads the known categories. The listing still renders without them.
func (s *Server) categories(ctx context.Context) []string {
	cats, err := s.products.Categories(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load categories")
		return nil
	}
	return cats
}

// assignableUsers refreshes the users mirror for the assignment pickers.
func (s *Server) assignableUsers(ctx context.Context) []users.User {
	all, err := s.users.All(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load users")
		return s.userMirror.Snapshot().Items
	}
	s.userMirror.Replace(all, len(all))
	return all
}

// formOptions loads the category suggestions and, for admins, the assignee picker.
func (s *Server) formOptions(ctx context.Context, me *users.User) ([]string, []users.User) {
	var (
		cats []string
		all  []users.User
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cats = s.categories(ctx)
		return nil
	})
	if me.IsAdmin() {
		g.Go(func() error {
			all = s.assignableUsers(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return cats, all
}

// ProductNewPageHandler renders the add product form (GET /products/new)
func (s *Server) ProductNewPageHandler() view {
	return func(w http.ResponseWriter, r *http.Request) error {
		return s.renderProductForm(w, r, http.StatusOK, nil, newForm(nil))
	}
}

// ProductCreateHandler submits a new product (POST /products/new)
func (s *Server) ProductCreateHandler() view {
	return func(w http.ResponseWriter, r *http.Request) error {
		me := s.currentUser()
		pf, f, closeLogo := readProductForm(w, r)
		defer closeLogo()

		if err := s.products.Create(r.Context(), me, pf); err != nil {
			if errors.Is(err, errors.ErrForbidden) {
				return err
			}
			f.fail(err, "Failed to add product")
			return s.renderProductForm(w, r, http.StatusUnprocessableEntity, nil, f)
		}
		log.Info().Str("sku", pf.SKU).Msg("product added")
		return redirect(w, r, navigation.RouteProducts, "Product added successfully")
	}
}

// ProductEditPageHandler renders the edit form (GET /products/edit/{id})
func (s *Server) ProductEditPageHandler() view {
	return func(w http.ResponseWriter, r *http.Request) error {
		p, err := s.modifiableProduct(r)
		if err != nil {
			return err
		}
		f := newForm(url.Values{
			"name":       {p.Name},
			"sku":        {p.SKU},
			"category":   {p.Category},
			"assignedTo": p.AssignedTo,
		})
		return s.renderProductForm(w, r, http.StatusOK, p, f)
	}
}

// ProductUpdateHandler submits product changes (POST /products/edit/{id})
func (s *Server) ProductUpdateHandler() view {
	return func(w http.ResponseWriter, r *http.Request) error {
		p, err := s.modifiableProduct(r)
		if err != nil {
			return err
		}
		pf, f, closeLogo := readProductForm(w, r)
		defer closeLogo()

		if err := s.products.Update(r.Context(), s.currentUser(), p, pf); err != nil {
			if errors.Is(err, errors.ErrForbidden) {
				return err
			}
			f.fail(err, "Failed to update product")
			return s.renderProductForm(w, r, http.StatusUnprocessableEntity, p, f)
		}
		log.Info().Str("id", p.ID).Msg("product updated")
		return redirect(w, r, navigation.RouteProducts, "Product updated successfully")
	}
}

// ProductDeletePageHandler asks for confirmation (GET /products/delete/{id})
func (s *Server) ProductDeletePageHandler() view {
	return func(w http.ResponseWriter, r *http.Request) error {
		p, err := s.modifiableProduct(r)
		if err != nil {
			return err
		}
		return s.render(w, r, http.StatusOK, pageProductDelete, "Delete product", "products", ProductDeleteData{
			Product: p,
			Action:  navigation.Path(navigation.RouteProductDelete, map[string]string{"id": p.ID}),
		})
	}
}

// ProductDeleteHandler deletes after confirmation (POST /products/delete/{id})
func (s *Server) ProductDeleteHandler() view {
	return func(w http.ResponseWriter, r *http.Request) error {
		p, err := s.modifiableProduct(r)
		if err != nil {
			return err
		}
		if err := s.products.Delete(r.Context(), s.currentUser(), p); err != nil {
			if errors.Is(err, errors.ErrForbidden) {
				return err
			}
			return redirectError(w, r, navigation.RouteProducts, apiclient.UserMessage(err, "Failed to delete product"))
		}
		log.Info().Str("id", p.ID).Msg("product deleted")
		return redirect(w, r, navigation.RouteProducts, "Product deleted successfully")
	}
}

// modifiableProduct loads the product named by the {id} path segment and
// refuses products the operator may not change.
func (s *Server) modifiableProduct(r *http.Request) (*catalog.Product, error) {
	p, err := s.products.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		return nil, err
	}
	if !catalog.CanModify(s.currentUser(), p) {
		return nil, errors.Wrapf(errors.ErrForbidden, "[server] product %s", p.ID)
	}
	return p, nil
}

func (s *Server) renderProductForm(w http.ResponseWriter, r *http.Request, status int, p *catalog.Product, f *form) error {
	me := s.currentUser()
	cats, all := s.formOptions(r.Context(), me)
	data := ProductFormData{
		Form:       f,
		Action:     navigation.RouteProductNew,
		Product:    p,
		Categories: cats,
		Users:      all,
	}
	title := "Add product"
	if p != nil {
		data.Editing = true
		data.Action = navigation.Path(navigation.RouteProductEdit, map[string]string{"id": p.ID})
		title = "Edit product"
	}
	return s.render(w, r, status, pageProductForm, title, "products", data)
}

// readProductForm reads the multipart product form. The returned func closes
// the uploaded logo, if any.
func readProductForm(w http.ResponseWriter, r *http.Request) (catalog.ProductForm, *form, func()) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBodyBytes)
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		log.Warn().Err(err).Msg("failed to read product form")
	}

	pf := catalog.ProductForm{
		Name:       r.FormValue("name"),
		SKU:        r.FormValue("sku"),
		Category:   r.FormValue("category"),
		AssignedTo: slices.DeleteFunc(slices.Clone(r.Form["assignedTo"]), func(id string) bool { return strings.TrimSpace(id) == "" }),
	}
	f := newForm(url.Values{
		"name":       {pf.Name},
		"sku":        {pf.SKU},
		"category":   {pf.Category},
		"assignedTo": pf.AssignedTo,
	})

	closeLogo := func() {}
	if file, hdr, err := r.FormFile(catalog.LogoField); err == nil {
		pf.Logo = uploadedFile(file, hdr)
		closeLogo = func() { _ = file.Close() }
	}
	return pf, f, closeLogo
}

func uploadedFile(file multipart.File, hdr *multipart.FileHeader) *apiclient.File {
	return &apiclient.File{
		Name:        hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Data:        file,
	}
}
