package recommendationController

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized                   = errors.New("unauthorized")
	ErrMisconfigured                  = errors.New("recommendation service is not configured")
	ErrInvalidInput                   = errors.New("invalid recommendation request")
	ErrRecommendationGenerationFailed = errors.New("failed to generate recommendations")
	ErrTranslationFailed              = errors.New("failed to translate recommendation")
	ErrPersistenceFailed              = errors.New("failed to save recommendation")
	ErrPersistenceRejected            = fmt.Errorf("%w: rejected by store", ErrPersistenceFailed)
	ErrPersistenceUnavailable         = fmt.Errorf("%w: store unavailable", ErrPersistenceFailed)
	ErrNotFound                       = errors.New("recommendation not found")
)

// persistenceError carries the store's own message while matching both the
// persistence kind and the underlying driver error.
type persistenceError struct {
	kind  error
	cause error
}

func (e *persistenceError) Error() string {
	return e.cause.Error()
}

func (e *persistenceError) Unwrap() []error {
	return []error{e.kind, e.cause}
}

// HTTPStatus maps a pipeline error onto the response status.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrPersistenceRejected):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text placed in the {"error": ...} body.
func PublicMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return "Unauthorized"
	case errors.Is(err, ErrRecommendationGenerationFailed):
		return "Failed to generate recommendations"
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrPersistenceRejected),
		errors.Is(err, ErrNotFound):
		return err.Error()
	case errors.Is(err, ErrMisconfigured):
		return ErrMisconfigured.Error()
	default:
		return "Internal server error"
	}
}
