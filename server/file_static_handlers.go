package server

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jrsteele09/catalog-console/internal/errors"
	"github.com/rs/zerolog/log"
)

//go:embed static/*
var staticFiles embed.FS

func StaticFilesFS() fs.FS {
	subFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic("Failed to create sub filesystem: " + err.Error())
	}

	return subFS
}

func StreamFile(w http.ResponseWriter, _ *http.Request, fileName string) error {
	fsys := StaticFilesFS()
	data, err := fs.ReadFile(fsys, fileName)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", fileName, err)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	ctype := mime.TypeByExtension(ext)
	if ctype == "" {
		// Fallback for unknown extensions
		ctype = http.DetectContentType(data)
	}
	// Ensure UTF-8 for text types when not present
	if strings.HasPrefix(ctype, "text/") && !strings.Contains(strings.ToLower(ctype), "charset=") {
		ctype += "; charset=utf-8"
	}
	w.Header().Set("Content-Type", ctype)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s content: %w", fileName, err)
	}
	return nil
}

// ImageHandler streams a backend image (GET /images/{ref...}). Images are
// fetched with the session's token, so logged-out requests get nothing.
func (s *Server) ImageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := r.PathValue("ref")
		if !s.store.Snapshot().Complete() {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}

		img, err := s.images.FetchImage(r.Context(), ref)
		if err != nil {
			status := http.StatusBadGateway
			if errors.Is(err, errors.ErrNotFound) || errors.Is(err, errors.ErrSessionExpired) {
				status = http.StatusNotFound
			}
			logError(r.Method, r.URL.Path, err.Error())
			http.Error(w, http.StatusText(status), status)
			return
		}
		defer img.Body.Close()

		ctype := img.ContentType
		if ctype == "" {
			ctype = mime.TypeByExtension(strings.ToLower(filepath.Ext(ref)))
		}
		if ctype != "" {
			w.Header().Set("Content-Type", ctype)
		}
		if img.ContentLength > 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(img.ContentLength, 10))
		}
		w.Header().Set("Cache-Control", "private, max-age=300")
		if _, err := io.Copy(w, img.Body); err != nil {
			log.Warn().Err(err).Str("ref", ref).Msg("image stream interrupted")
		}
	}
}
