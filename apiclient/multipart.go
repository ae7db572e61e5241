package apiclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// Multipart is a multipart/form-data body built from text fields and files.
type Multipart struct {
	fields [][2]string
	files  []File
}

// File is one uploaded file part.
type File struct {
	Field       string
	Name        string
	ContentType string
	Data        io.Reader
}

func NewMultipart() *Multipart {
	return &Multipart{}
}

func (m *Multipart) AddField(name, value string) *Multipart {
	m.fields = append(m.fields, [2]string{name, value})
	return m
}

func (m *Multipart) AddFile(f File) *Multipart {
	m.files = append(m.files, f)
	return m
}

func (m *Multipart) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range m.fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("multipart field %s: %w", f[0], err)
		}
	}
	for _, f := range m.files {
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(f.Field), escapeQuotes(f.Name)))
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("multipart file %s: %w", f.Field, err)
		}
		if _, err := io.Copy(part, f.Data); err != nil {
			return nil, "", fmt.Errorf("multipart file %s: %w", f.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("multipart close: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
