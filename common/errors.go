package common

import (
	"encoding/json"
	"errors"
	"net/http"

	"go-contaazul-api/contaazul"
	"go-contaazul-api/logger"

	"github.com/sirupsen/logrus"
)

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func (e *AppError) Send(w http.ResponseWriter) {
	if e.Err != nil {
		logger.Log.WithFields(logrus.Fields{
			"status_code":    e.Code,
			"internal_error": e.Err.Error(),
		}).Error(e.Message)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.Code)
	json.NewEncoder(w).Encode(e)
}

// FromProviderError maps the typed failures of the client core onto HTTP
// status codes. The taxonomy stays visible to clients: a terminal
// reauthorization is a 409 (a user action resolves it), provider-side
// failures are 502, and transport failures are 503.
func FromProviderError(err error) *AppError {
	var providerErr *contaazul.ProviderError
	var transportErr *contaazul.TransportError
	var malformedErr *contaazul.MalformedResponseError
	var encodingErr *contaazul.RequestEncodingError

	switch {
	case errors.Is(err, contaazul.ErrCompanyNotFound):
		return NewAppError(http.StatusNotFound, "Company has no provider credentials", err)
	case errors.Is(err, contaazul.ErrReauthorizationRequired):
		return NewAppError(http.StatusConflict,
			"Provider authorization expired. Reconnect at /api/contaazul/start", err)
	case errors.As(err, &providerErr):
		return NewAppError(http.StatusBadGateway, "Provider rejected the request", err)
	case errors.As(err, &malformedErr):
		return NewAppError(http.StatusBadGateway, "Provider returned an unreadable response", err)
	case errors.As(err, &transportErr):
		return NewAppError(http.StatusServiceUnavailable, "Provider is unreachable", err)
	case errors.As(err, &encodingErr):
		return NewAppError(http.StatusInternalServerError, "Could not build the provider request", err)
	}
	return NewAppError(http.StatusInternalServerError, "Unexpected error", err)
}
