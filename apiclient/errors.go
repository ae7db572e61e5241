package apiclient

import (
	"fmt"
	"net/http"

	"github.com/jrsteele09/catalog-console/internal/errors"
)

// GenericMessage is shown when a failure carries no backend message.
const GenericMessage = "Something went wrong. Please try again."

// APIError is a non-2xx backend response. Message is the backend's "message"
// field, verbatim.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend responded %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("backend responded %d: %s", e.Status, e.Message)
}

// Is makes a 401 match errors.ErrSessionExpired and a 404 match errors.ErrNotFound.
func (e *APIError) Is(target error) bool {
	switch target {
	case errors.ErrSessionExpired:
		return e.Status == http.StatusUnauthorized
	case errors.ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// UserMessage picks the text to show for err: the backend message when there
// is one, otherwise fallback (or GenericMessage when fallback is empty).
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if fallback == "" {
		return GenericMessage
	}
	return fallback
}
