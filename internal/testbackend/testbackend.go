// Package testbackend is an in-memory catalog REST backend for tests. It
// speaks the same JSON as the real service: users and products keyed by _id,
// bearer tokens issued by /users/login, images under /images/.
package testbackend

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/catalog-console/catalog"
	"github.com/jrsteele09/catalog-console/users"
)

var signingKey = []byte("testbackend-signing-key")

type account struct {
	user     users.User
	password string
}

// Request is one request the backend received.
type Request struct {
	Method        string
	Path          string
	Query         url.Values
	Authorization string
}

type failure struct {
	status  int
	message string
}

type Backend struct {
	*httptest.Server

	mu       sync.Mutex
	accounts map[string]*account // by id
	products map[string]*catalog.Product
	images   map[string][]byte
	tokens   map[string]string // token to user id
	requests []Request
	failures map[string]failure // "METHOD /path" to forced failure
}

// New starts a backend. Close it when done.
func New() *Backend {
	b := &Backend{
		accounts: map[string]*account{},
		products: map[string]*catalog.Product{},
		images:   map[string][]byte{},
		tokens:   map[string]string{},
		failures: map[string]failure{},
	}
	b.Server = httptest.NewServer(b.routes())
	return b
}

func (b *Backend) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/login", b.login)
	mux.HandleFunc("POST /users/register", b.register)
	mux.HandleFunc("GET /users/me", b.authed(b.me))
	mux.HandleFunc("PUT /users/update", b.authed(b.updateProfile))
	mux.HandleFunc("PUT /users/update-password", b.authed(b.updatePassword))
	mux.HandleFunc("POST /users/upload-profile-pic", b.authed(b.uploadProfile))
	mux.HandleFunc("GET /users", b.authed(b.listUsers))
	mux.HandleFunc("GET /products", b.authed(b.listProducts))
	mux.HandleFunc("GET /products/categories", b.authed(b.categories))
	mux.HandleFunc("GET /products/{id}", b.authed(b.getProduct))
	mux.HandleFunc("POST /products", b.authed(b.createProduct))
	mux.HandleFunc("PUT /products/{id}", b.authed(b.updateProduct))
	mux.HandleFunc("DELETE /products/{id}", b.authed(b.deleteProduct))
	mux.HandleFunc("POST /products/assign", b.authed(b.assign))
	mux.HandleFunc("GET /images/{ref...}", b.image)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, Request{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Authorization: r.Header.Get("Authorization")})
		f, failing := b.failures[r.Method+" "+r.URL.Path]
		delete(b.failures, r.Method+" "+r.URL.Path)
		b.mu.Unlock()

		if failing {
			writeError(w, f.status, f.message)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

// AddUser creates an account and returns it.
func (b *Backend) AddUser(name, email, password string, role users.RoleType) users.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := users.User{ID: uuid.NewString(), Name: name, Email: email, Role: role}
	b.accounts[u.ID] = &account{user: u, password: password}
	return u
}

// AddProduct stores p, assigning an id when it has none.
func (b *Backend) AddProduct(p catalog.Product) catalog.Product {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.AssignedTo == nil {
		p.AssignedTo = []string{}
	}
	b.products[p.ID] = &p
	return p
}

// Product returns the stored product with id.
func (b *Backend) Product(id string) (catalog.Product, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.products[id]
	if !ok {
		return catalog.Product{}, false
	}
	return *p, true
}

// Products returns every stored product.
func (b *Backend) Products() []catalog.Product {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]catalog.Product, 0, len(b.products))
	for _, p := range b.products {
		out = append(out, *p)
	}
	return out
}

// User returns the stored account with id.
func (b *Backend) User(id string) (users.User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.accounts[id]
	if !ok {
		return users.User{}, false
	}
	return a.user, true
}

// RevokeTokens invalidates every issued token; later authenticated calls get 401.
func (b *Backend) RevokeTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = map[string]string{}
}

// Fail makes the next "METHOD /path" request answer status with message.
func (b *Backend) Fail(method, path string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = failure{status: status, message: message}
}

// Requests returns every request received so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// Image returns the stored bytes of an uploaded image.
func (b *Backend) Image(ref string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.images[ref]
	return data, ok
}

func (b *Backend) issueToken(userID string) (string, error) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(signingKey)
	if err != nil {
		return "", err
	}
	b.tokens[token] = userID
	return token, nil
}

type authedHandler func(w http.ResponseWriter, r *http.Request, me *account)

// authed resolves the bearer token and answers 401 when it is missing, not
// issued by this backend, or revoked.
func (b *Backend) authed(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeError(w, http.StatusUnauthorized, "Not authorized, no token")
			return
		}
		if _, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return signingKey, nil }, jwt.WithValidMethods([]string{"HS256"})); err != nil {
			writeError(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}

		b.mu.Lock()
		userID, issued := b.tokens[raw]
		me := b.accounts[userID]
		b.mu.Unlock()
		if !issued || me == nil {
			writeError(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}
		next(w, r, me)
	}
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var creds users.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.accounts {
		if strings.EqualFold(a.user.Email, creds.Email) && a.password == creds.Password {
			token, err := b.issueToken(a.user.ID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": a.user})
			return
		}
	}
	writeError(w, http.StatusUnauthorized, "Invalid email or password")
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var reg users.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	b.mu.Lock()
	for _, a := range b.accounts {
		if strings.EqualFold(a.user.Email, reg.Email) {
			b.mu.Unlock()
			writeError(w, http.StatusBadRequest, "User already exists")
			return
		}
	}
	b.mu.Unlock()
	u := b.AddUser(reg.Name, reg.Email, reg.Password, reg.Role)
	writeJSON(w, http.StatusCreated, map[string]any{"message": "User registered successfully", "user": u})
}

func (b *Backend) me(w http.ResponseWriter, _ *http.Request, me *account) {
	b.mu.Lock()
	u := me.user
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, u)
}

func (b *Backend) updateProfile(w http.ResponseWriter, r *http.Request, me *account) {
	var update users.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	b.mu.Lock()
	me.user.Name = update.Name
	me.user.Email = update.Email
	u := me.user
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"message": "Profile updated", "user": u})
}

func (b *Backend) updatePassword(w http.ResponseWriter, r *http.Request, me *account) {
	var change users.PasswordChange
	if err := json.NewDecoder(r.Body).Decode(&change); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if me.password != change.OldPassword {
		writeError(w, http.StatusBadRequest, "Old password is incorrect")
		return
	}
	me.password = change.NewPassword
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}

func (b *Backend) uploadProfile(w http.ResponseWriter, r *http.Request, me *account) {
	ref, ok := b.storeUpload(w, r, users.ProfilePictureField, "profiles")
	if !ok {
		return
	}
	b.mu.Lock()
	me.user.ProfilePicture = ref
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"profilePic": ref})
}

func (b *Backend) listUsers(w http.ResponseWriter, r *http.Request, me *account) {
	if me.user.Role != users.RoleAdmin {
		writeError(w, http.StatusForbidden, "Admin access required")
		return
	}
	b.mu.Lock()
	all := make([]users.User, 0, len(b.accounts))
	for _, a := range b.accounts {
		all = append(all, a.user)
	}
	b.mu.Unlock()

	q := r.URL.Query()
	desc := q.Get("order") == "desc"
	sort.Slice(all, func(i, j int) bool {
		if desc {
			return all[i].Name > all[j].Name
		}
		return all[i].Name < all[j].Name
	})
	page, total := paginate(all, q.Get("page"), q.Get("limit"))
	writeJSON(w, http.StatusOK, map[string]any{"users": page, "total": total})
}

func (b *Backend) listProducts(w http.ResponseWriter, r *http.Request, _ *account) {
	q := r.URL.Query()
	search := strings.ToLower(q.Get("search"))

	b.mu.Lock()
	var matched []catalog.Product
	for _, p := range b.products {
		if c := q.Get("category"); c != "" && p.Category != c {
			continue
		}
		if s := q.Get("source"); s != "" && string(p.Source) != s {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) && !strings.Contains(strings.ToLower(p.SKU), search) {
			continue
		}
		matched = append(matched, *p)
	}
	b.mu.Unlock()

	key := func(p catalog.Product) string { return p.Name }
	if q.Get("sort") == "sku" {
		key = func(p catalog.Product) string { return p.SKU }
	}
	desc := q.Get("order") == "desc"
	sort.Slice(matched, func(i, j int) bool {
		if desc {
			return key(matched[i]) > key(matched[j])
		}
		return key(matched[i]) < key(matched[j])
	})
	page, total := paginate(matched, q.Get("page"), q.Get("limit"))
	if page == nil {
		page = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": page, "total": total})
}

func (b *Backend) categories(w http.ResponseWriter, _ *http.Request, _ *account) {
	b.mu.Lock()
	var cats []string
	for _, p := range b.products {
		if p.Category != "" && !slices.Contains(cats, p.Category) {
			cats = append(cats, p.Category)
		}
	}
	b.mu.Unlock()
	sort.Strings(cats)
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

func (b *Backend) getProduct(w http.ResponseWriter, r *http.Request, _ *account) {
	p, ok := b.Product(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) createProduct(w http.ResponseWriter, r *http.Request, _ *account) {
	p, ok := b.readProductForm(w, r, catalog.Product{}, true)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, b.AddProduct(p))
}

func (b *Backend) updateProduct(w http.ResponseWriter, r *http.Request, _ *account) {
	existing, found := b.Product(r.PathValue("id"))
	if !found {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	p, ok := b.readProductForm(w, r, existing, false)
	if !ok {
		return
	}
	b.mu.Lock()
	b.products[p.ID] = &p
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) deleteProduct(w http.ResponseWriter, r *http.Request, _ *account) {
	id := r.PathValue("id")
	b.mu.Lock()
	_, ok := b.products[id]
	delete(b.products, id)
	b.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}

func (b *Backend) assign(w http.ResponseWriter, r *http.Request, me *account) {
	if me.user.Role != users.RoleAdmin {
		writeError(w, http.StatusForbidden, "Admin access required")
		return
	}
	var req struct {
		ProductID  string   `json:"productId"`
		UserID     string   `json:"userId"`
		AssignedTo []string `json:"assignedTo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.products[req.ProductID]
	if !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	p.AssignedTo = append([]string{}, req.AssignedTo...)
	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) image(w http.ResponseWriter, r *http.Request) {
	data, ok := b.Image(r.PathValue("ref"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	_, _ = w.Write(data)
}

func (b *Backend) readProductForm(w http.ResponseWriter, r *http.Request, p catalog.Product, creating bool) (catalog.Product, bool) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Expected multipart form")
		return p, false
	}
	p.Name = r.FormValue("name")
	p.SKU = r.FormValue("sku")
	p.Category = r.FormValue("category")
	p.Source = catalog.SourceType(r.FormValue("source"))
	if err := json.Unmarshal([]byte(r.FormValue("assignedTo")), &p.AssignedTo); err != nil {
		writeError(w, http.StatusBadRequest, "assignedTo must be a JSON array")
		return p, false
	}
	if p.Name == "" || p.SKU == "" || p.Category == "" || !p.Source.Valid() {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return p, false
	}

	b.mu.Lock()
	for _, other := range b.products {
		if other.ID != p.ID && other.SKU == p.SKU {
			b.mu.Unlock()
			writeError(w, http.StatusBadRequest, "SKU already exists")
			return p, false
		}
	}
	b.mu.Unlock()

	if _, _, err := r.FormFile(catalog.LogoField); err == nil {
		ref, ok := b.storeUpload(w, r, catalog.LogoField, "products")
		if !ok {
			return p, false
		}
		p.Logo = ref
	} else if creating {
		writeError(w, http.StatusBadRequest, "Logo is required")
		return p, false
	}
	return p, true
}

func (b *Backend) storeUpload(w http.ResponseWriter, r *http.Request, field, folder string) (string, bool) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return "", false
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Upload failed")
		return "", false
	}
	ref := fmt.Sprintf("%s/%s-%s", folder, uuid.NewString(), hdr.Filename)
	b.mu.Lock()
	b.images[ref] = data
	b.mu.Unlock()
	return ref, true
}

func paginate[T any](items []T, pageParam, limitParam string) ([]T, int) {
	total := len(items)
	page, err := strconv.Atoi(pageParam)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(limitParam)
	if err != nil || limit < 1 {
		return items, total
	}
	start := (page - 1) * limit
	if start >= total {
		return nil, total
	}
	return items[start:min(start+limit, total)], total
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
