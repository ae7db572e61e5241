package server

import (
	"embed"
	"html/template"
	"io/fs"
	"net/url"
	"strings"
	"time"
)

//go:embed templates/*
var templateFiles embed.FS

const layoutTemplate = "layout.html"

// Page templates, each rendered inside the layout
const (
	pageLogin         = "login.html"
	pageRegister      = "register.html"
	pageLogout        = "logout.html"
	pageProducts      = "products.html"
	pageProductForm   = "product_form.html"
	pageProductDelete = "product_delete.html"
	pageUsers         = "users.html"
	pageUserNew       = "user_new.html"
	pageProfile       = "profile.html"
	pagePassword      = "password.html"
	pageNotFound      = "not_found.html"
	pageError         = "error.html"

	partialsTemplate = "partials.html"
)

const (
	contentTypeHTML    = "text/html; charset=utf-8"
	imageRoutePrefix   = "/images/"
	sessionTimeLayout  = "02 Jan 15:04"
	maxUploadMemory    = 8 << 20
	maxUploadBodyBytes = 16 << 20
)

var pageNames = []string{
	pageLogin, pageRegister, pageLogout,
	pageProducts, pageProductForm, pageProductDelete,
	pageUsers, pageUserNew,
	pageProfile, pagePassword,
	pageNotFound, pageError,
}

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

var templateFuncs = template.FuncMap{
	"imageURL": func(ref string) string {
		if ref == "" {
			return ""
		}
		return imageRoutePrefix + strings.TrimLeft(ref, "/")
	},
	"pathEscape": url.PathEscape,
	"initial": func(name string) string {
		name = strings.TrimSpace(name)
		if name == "" {
			return "?"
		}
		return strings.ToUpper(name[:1])
	},
	"formatTime": formatTime,
}

func formatTime(t time.Time) string {
	return t.Local().Format(sessionTimeLayout)
}

// ParseTemplate parses a page together with the layout and shared partials
func ParseTemplate(name string) (*template.Template, error) {
	return template.New(layoutTemplate).Funcs(templateFuncs).ParseFS(TemplateFilesFS(), layoutTemplate, partialsTemplate, name)
}

func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := ParseTemplate(name)
		if err != nil {
			return nil, err
		}
		pages[name] = tmpl
	}
	return pages, nil
}
