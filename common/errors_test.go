package common

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"testing"

	"go-contaazul-api/contaazul"
	"go-contaazul-api/logger"

	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func TestFromProviderError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{
			name:     "missing credentials map to 404",
			err:      contaazul.ErrCompanyNotFound,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "wrapped reauthorization maps to 409",
			err:      fmt.Errorf("%w: invalid_grant", contaazul.ErrReauthorizationRequired),
			wantCode: http.StatusConflict,
		},
		{
			name:     "provider rejection maps to 502",
			err:      &contaazul.ProviderError{Status: 422, Body: "campo obrigatorio"},
			wantCode: http.StatusBadGateway,
		},
		{
			name:     "unreadable response maps to 502",
			err:      &contaazul.MalformedResponseError{Err: errors.New("invalid JSON")},
			wantCode: http.StatusBadGateway,
		},
		{
			name:     "transport failure maps to 503",
			err:      &contaazul.TransportError{Err: errors.New("connection refused")},
			wantCode: http.StatusServiceUnavailable,
		},
		{
			name:     "unbuildable request maps to 500",
			err:      &contaazul.RequestEncodingError{Err: errors.New("unsupported type")},
			wantCode: http.StatusInternalServerError,
		},
		{
			name:     "anything else maps to 500",
			err:      errors.New("boom"),
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromProviderError(tt.err)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.NotEmpty(t, appErr.Message)
		})
	}
}
