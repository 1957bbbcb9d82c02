package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidCredentials is returned when login email or password is wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when registering an email that already has an account.
	ErrEmailTaken = errors.New("user already exists")
	// ErrMealNotFound is returned when a meal id does not exist.
	ErrMealNotFound = errors.New("meal not found")
	// ErrUserNotFound is returned when a user id does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrFoodNotFound is returned when the provider has no match for a search or id.
	ErrFoodNotFound = errors.New("food not found")
	// ErrForbidden is returned when an authenticated caller does not own the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated is returned when the bearer token is missing, invalid or expired.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrMissingAPIKey is returned when the provider credential is absent at call time.
	ErrMissingAPIKey = errors.New("missing FDC_API_KEY in environment")
	// ErrUpstreamAuth is returned when the provider rejects our credential or rate-limits.
	ErrUpstreamAuth = errors.New("invalid API key. Please check your FDC_API_KEY")
)

// APIError carries an HTTP status alongside a caller-safe message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewValidation builds a 400 error with a caller-fixable message.
func NewValidation(format string, args ...any) *APIError {
	return &APIError{StatusCode: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// NewUpstream builds a 502 error carrying the provider's status code.
func NewUpstream(providerStatus int) *APIError {
	return &APIError{
		StatusCode: http.StatusBadGateway,
		Message:    fmt.Sprintf("nutrition provider request failed: %d", providerStatus),
	}
}

// StatusFor maps a service error to the HTTP status of the taxonomy.
// Unknown errors map to 500; callers must log them and return the
// generic message rather than the raw error text.
func StatusFor(err error) (int, string) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, apiErr.Message
	}
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, ErrEmailTaken):
		return http.StatusConflict, err.Error()
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, ErrMealNotFound), errors.Is(err, ErrUserNotFound), errors.Is(err, ErrFoodNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, ErrMissingAPIKey):
		return http.StatusInternalServerError, err.Error()
	case errors.Is(err, ErrUpstreamAuth):
		return http.StatusBadGateway, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
