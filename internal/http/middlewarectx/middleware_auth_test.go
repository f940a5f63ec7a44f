package middlewarectx_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/companion-chat/internal/http/middlewarectx"
	"github.com/magabrotheeeer/companion-chat/internal/lib/sl"
)

type TokenValidatorMock struct {
	mock.Mock
}

func (m *TokenValidatorMock) ValidateToken(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

func TestJWTMiddleware(t *testing.T) {
	validatorMock := new(TokenValidatorMock)
	logger := sl.NewDiscardLogger()

	handlerCalled := false
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		assert.Equal(t, "session-1", r.Context().Value(middlewarectx.SessionID))
		w.WriteHeader(http.StatusOK)
	})

	mw := middlewarectx.JWTMiddleware(validatorMock, logger)(nextHandler)

	tests := []struct {
		name           string
		authHeader     string
		mockSession    string
		mockErr        error
		expectCall     bool
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:           "missing Authorization header",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "invalid Authorization header prefix",
			authHeader:     "Basic sometoken",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "revoked token",
			authHeader:     "Bearer token",
			mockErr:        errors.New("unauthorized"),
			expectCall:     true,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "valid token",
			authHeader:     "Bearer validtoken",
			mockSession:    "session-1",
			expectCall:     true,
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled = false
			validatorMock.ExpectedCalls = nil
			validatorMock.Calls = nil
			if tt.expectCall {
				validatorMock.On("ValidateToken", strings.TrimPrefix(tt.authHeader, "Bearer ")).
					Return(tt.mockSession, tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodGet, "/somepath", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			mw.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
			validatorMock.AssertExpectations(t)
		})
	}
}
