package catalog_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/jrsteele09/catalog-console/apiclient"
	"github.com/jrsteele09/catalog-console/catalog"
	"github.com/jrsteele09/catalog-console/internal/errors"
	"github.com/jrsteele09/catalog-console/users"
	"github.com/stretchr/testify/require"
)

var (
	admin   = &users.User{ID: "a1", Name: "Admin", Role: users.RoleAdmin}
	regular = &users.User{ID: "u1", Name: "Regular", Role: users.RoleUser}
)

type noSession struct{}

func (noSession) Token() string { return "tok" }

func (noSession) EndSession(context.Context) {}

func (noSession) Navigate(context.Context, string) {}

type captured struct {
	Method     string
	Path       string
	Fields     map[string]string
	FileName   string
	JSONBody   map[string]any
	HasLogo    bool
	AssignedTo []string
}

type backend struct {
	mu       sync.Mutex
	requests []captured
	respond  func(w http.ResponseWriter, r *http.Request) bool
}

func (b *backend) last() captured {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[len(b.requests)-1]
}

func (b *backend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c := captured{Method: r.Method, Path: r.URL.Path, Fields: map[string]string{}}
	ct := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "multipart/form-data"):
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			for k, v := range r.MultipartForm.Value {
				c.Fields[k] = v[0]
			}
			if files := r.MultipartForm.File[catalog.LogoField]; len(files) > 0 {
				c.HasLogo = true
				c.FileName = files[0].Filename
			}
			_ = json.Unmarshal([]byte(c.Fields["assignedTo"]), &c.AssignedTo)
		}
	case strings.HasPrefix(ct, "application/json"):
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &c.JSONBody)
	}
	b.mu.Lock()
	b.requests = append(b.requests, c)
	b.mu.Unlock()

	if b.respond != nil && b.respond(w, r) {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{}`))
}

func newService(t *testing.T, b *backend) *catalog.Service {
	t.Helper()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	client, err := apiclient.New(srv.URL, noSession{}, noSession{}, noSession{})
	require.NoError(t, err)
	return catalog.NewService(client)
}

func logo() *apiclient.File {
	return &apiclient.File{Name: "logo.png", ContentType: "image/png", Data: strings.NewReader("PNG")}
}

func TestCanModify(t *testing.T) {
	adminProduct := &catalog.Product{ID: "p1", Source: catalog.SourceAdmin}
	userProduct := &catalog.Product{ID: "p2", Source: catalog.SourceUser}

	require.True(t, catalog.CanModify(admin, adminProduct))
	require.True(t, catalog.CanModify(admin, userProduct))
	require.False(t, catalog.CanModify(regular, adminProduct))
	require.True(t, catalog.CanModify(regular, userProduct))
	require.False(t, catalog.CanModify(nil, userProduct))
}

func TestProductFormValidate(t *testing.T) {
	err := catalog.ProductForm{Name: " ", SKU: "  "}.Validate(true)
	var fe errors.FieldErrors
	require.ErrorAs(t, err, &fe)
	require.Len(t, fe, 4)

	require.NoError(t, catalog.ProductForm{Name: "Lamp", SKU: "L-1", Category: "Home"}.Validate(false))
	require.Error(t, catalog.ProductForm{Name: "Lamp", SKU: "L-1", Category: "Home"}.Validate(true))
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("admin assigns picked users", func(t *testing.T) {
		b := &backend{}
		svc := newService(t, b)
		err := svc.Create(ctx, admin, catalog.ProductForm{
			Name: "Lamp", SKU: "  L-1  ", Category: "Home",
			AssignedTo: []string{"u1", "u2", "u1", ""},
			Logo:       logo(),
		})
		require.NoError(t, err)

		got := b.last()
		require.Equal(t, http.MethodPost, got.Method)
		require.Equal(t, "/products", got.Path)
		require.Equal(t, "L-1", got.Fields["sku"])
		require.Equal(t, "ADMIN", got.Fields["source"])
		require.Equal(t, []string{"u1", "u2"}, got.AssignedTo)
		require.True(t, got.HasLogo)
		require.Equal(t, "logo.png", got.FileName)
	})

	t.Run("regular user is assigned to themself", func(t *testing.T) {
		b := &backend{}
		svc := newService(t, b)
		err := svc.Create(ctx, regular, catalog.ProductForm{
			Name: "Desk", SKU: "D-1", Category: "Office",
			AssignedTo: []string{"someone-else"},
			Logo:       logo(),
		})
		require.NoError(t, err)

		got := b.last()
		require.Equal(t, "USER", got.Fields["source"])
		require.Equal(t, []string{"u1"}, got.AssignedTo)
	})

	t.Run("missing logo makes no request", func(t *testing.T) {
		b := &backend{}
		svc := newService(t, b)
		err := svc.Create(ctx, admin, catalog.ProductForm{Name: "Lamp", SKU: "L-1", Category: "Home"})
		require.ErrorIs(t, err, errors.ErrValidation)
		require.Zero(t, b.count())
	})
}

func TestUpdateAndDeleteRespectSource(t *testing.T) {
	ctx := context.Background()
	b := &backend{}
	svc := newService(t, b)

	adminProduct := &catalog.Product{ID: "p1", Source: catalog.SourceAdmin}
	form := catalog.ProductForm{Name: "Lamp", SKU: "L-1", Category: "Home"}

	require.ErrorIs(t, svc.Update(ctx, regular, adminProduct, form), errors.ErrForbidden)
	require.ErrorIs(t, svc.Delete(ctx, regular, adminProduct), errors.ErrForbidden)
	require.Zero(t, b.count())

	require.NoError(t, svc.Update(ctx, admin, adminProduct, form))
	got := b.last()
	require.Equal(t, http.MethodPut, got.Method)
	require.Equal(t, "/products/p1", got.Path)
	require.False(t, got.HasLogo)

	require.NoError(t, svc.Delete(ctx, admin, adminProduct))
	require.Equal(t, http.MethodDelete, b.last().Method)
}

func TestAssignAndUnassign(t *testing.T) {
	ctx := context.Background()
	b := &backend{}
	svc := newService(t, b)
	product := &catalog.Product{ID: "p1", Source: catalog.SourceAdmin, AssignedTo: []string{"u1"}}

	require.NoError(t, svc.Assign(ctx, admin, product, "u2"))
	got := b.last()
	require.Equal(t, "/products/assign", got.Path)
	require.Equal(t, "p1", got.JSONBody["productId"])
	require.Equal(t, "u2", got.JSONBody["userId"])
	require.Equal(t, []any{"u1", "u2"}, got.JSONBody["assignedTo"])
	require.Equal(t, []string{"u1"}, product.AssignedTo)

	require.NoError(t, svc.Unassign(ctx, admin, product, "u1"))
	require.Equal(t, []any{}, b.last().JSONBody["assignedTo"])

	require.NoError(t, svc.Assign(ctx, admin, product, "u1"))
	require.Equal(t, 2, b.count())

	require.ErrorIs(t, svc.Assign(ctx, regular, product, "u3"), errors.ErrForbidden)
	require.Equal(t, 2, b.count())
}

func TestGetAndCategories(t *testing.T) {
	ctx := context.Background()
	b := &backend{respond: func(w http.ResponseWriter, r *http.Request) bool {
		switch r.URL.Path {
		case "/products/categories":
			_, _ = w.Write([]byte(`{"categories":["Home","Office"]}`))
		case "/products/p1":
			_, _ = w.Write([]byte(`{"_id":"p1","name":"Lamp","sku":"L-1","category":"Home","source":"USER","assignedTo":["u1"],"logo":"lamp.png"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Product not found"}`))
		}
		return true
	}}
	svc := newService(t, b)

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Home", "Office"}, cats)

	p, err := svc.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, catalog.SourceUser, p.Source)
	require.True(t, p.IsAssigned("u1"))
	require.Equal(t, "lamp.png", p.Logo)

	_, err = svc.Get(ctx, "missing")
	require.ErrorIs(t, err, errors.ErrNotFound)
	require.Equal(t, "Product not found", apiclient.UserMessage(err, ""))
}
