package registry

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

// APIError is a non-success response from the registry. The body is kept
// verbatim so record status lines can carry the registry's own message.
type APIError struct {
	StatusCode int
	Method     string
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("registry %s %s returned %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Message returns the registry's own error message when the body carries
// one, falling back to the raw body. Status lines shown to organisation
// admins use this.
func (e *APIError) Message() string {
	var body struct {
		UserMessage      string `json:"user-message"`
		DeveloperMessage string `json:"developer-message"`
	}
	if err := sonic.UnmarshalString(e.Body, &body); err == nil {
		if body.UserMessage != "" {
			return body.UserMessage
		}
		if body.DeveloperMessage != "" {
			return body.DeveloperMessage
		}
	}
	return e.Body
}

// IsNotFound reports whether err is a registry 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}
