package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/catalog-console/internal/errors"
)

const (
	contentTypeJSON = "application/json"
	imagesPrefix    = "/images/"
	maxErrorBody    = 64 << 10
)

type Client struct {
	base *url.URL
	http *http.Client
}

type options struct {
	base       http.RoundTripper
	timeout    time.Duration
	loginRoute string
}

type Option func(*options)

// WithTransport replaces the underlying transport (http.DefaultTransport).
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.base = rt }
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithLoginRoute sets where a rejected credential navigates to ("/login").
func WithLoginRoute(route string) Option {
	return func(o *options) { o.loginRoute = route }
}

// New builds a client for the backend at baseURL. tokens, sessions and
// navigator are consulted by the transport on every request.
func New(baseURL string, tokens TokenSource, sessions SessionEnder, navigator Navigator, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("[apiclient New] invalid base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("[apiclient New] base URL %q must be absolute", baseURL)
	}
	if tokens == nil || sessions == nil || navigator == nil {
		return nil, fmt.Errorf("[apiclient New] token source, session ender and navigator are required")
	}

	o := options{
		base:       http.DefaultTransport,
		timeout:    15 * time.Second,
		loginRoute: "/login",
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Client{
		base: base,
		http: &http.Client{
			Timeout: o.timeout,
			Transport: &authTransport{
				base:       o.base,
				tokens:     tokens,
				sessions:   sessions,
				navigator:  navigator,
				loginRoute: o.loginRoute,
			},
		},
	}, nil
}

// BaseURL returns the backend root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, "", out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, "", out)
}

func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, in, out)
}

func (c *Client) PutJSON(ctx context.Context, path string, in, out any) error {
	return c.sendJSON(ctx, http.MethodPut, path, in, out)
}

func (c *Client) PostMultipart(ctx context.Context, path string, form *Multipart, out any) error {
	return c.sendMultipart(ctx, http.MethodPost, path, form, out)
}

func (c *Client) PutMultipart(ctx context.Context, path string, form *Multipart, out any) error {
	return c.sendMultipart(ctx, http.MethodPut, path, form, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("[apiclient %s %s] encode: %w", method, path, err)
	}
	return c.Do(ctx, method, path, nil, bytes.NewReader(body), contentTypeJSON, out)
}

func (c *Client) sendMultipart(ctx context.Context, method, path string, form *Multipart, out any) error {
	body, contentType, err := form.encode()
	if err != nil {
		return fmt.Errorf("[apiclient %s %s] %w", method, path, err)
	}
	return c.Do(ctx, method, path, nil, body, contentType, out)
}

// Do sends one request and decodes a 2xx JSON body into out (when out is not
// nil). Non-2xx responses come back as *APIError; a 401 additionally matches
// errors.ErrSessionExpired and has already ended the session.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	resp, err := c.send(ctx, method, path, query, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return errors.Wrapf(errors.ErrBadResponse, "[apiclient %s %s] decode: %v", method, path, err)
	}
	return nil
}

// send returns the response only for 2xx statuses; the caller closes the body.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return nil, fmt.Errorf("[apiclient %s %s] %w", method, path, err)
	}
	req.Header.Set("Accept", contentTypeJSON)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("[apiclient %s %s] %w", method, path, ctx.Err())
		}
		return nil, fmt.Errorf("[apiclient %s %s] %w: %v", method, path, errors.ErrUnreachable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = c.base.Path + "/" + strings.TrimLeft(path, "/")
	u.RawQuery = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return apiErr
	}
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &payload) == nil {
		apiErr.Message = payload.Message
	}
	return apiErr
}

// ImageURL is the absolute backend URL of a stored image reference.
func (c *Client) ImageURL(ref string) string {
	if ref == "" {
		return ""
	}
	return c.endpoint(imagesPrefix+strings.TrimLeft(ref, "/"), nil)
}

// Image is a streamed image download. The caller closes Body.
type Image struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// FetchImage streams the image stored under ref.
func (c *Client) FetchImage(ctx context.Context, ref string) (*Image, error) {
	ref = strings.TrimLeft(ref, "/")
	if ref == "" || strings.Contains(ref, "..") {
		return nil, errors.Wrapf(errors.ErrNotFound, "[apiclient FetchImage] %q", ref)
	}
	resp, err := c.send(ctx, http.MethodGet, imagesPrefix+ref, nil, nil, "")
	if err != nil {
		return nil, err
	}
	return &Image{
		Body:          resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
	}, nil
}
