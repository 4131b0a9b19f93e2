package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/lifedesk/internal/common"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNoSession    = errors.New("no session in context")
)

// APIError is a non-2xx reply. It unwraps to the sentinel matching its
// status so callers can use errors.Is.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return common.ErrorValidation
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusConflict:
		return common.ErrorConflict
	case http.StatusServiceUnavailable:
		return common.ErrorUnavailable
	}
	return nil
}

// tokenProblem reports whether a 401 came from the bearer token rather than
// from rejected credentials, i.e. whether a refresh could help.
func (e *APIError) tokenProblem() bool {
	return e.Status == http.StatusUnauthorized &&
		(e.Message == "access token expired" || e.Message == "invalid token")
}
