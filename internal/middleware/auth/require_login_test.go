package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/yummy_recipes/internal/metrics"
	"github.com/Skotchmaster/yummy_recipes/internal/models"
	"github.com/Skotchmaster/yummy_recipes/internal/service"
)

type stubGate struct {
	id     *service.Identity
	err    error
	header string
}

func (g *stubGate) Authenticate(_ context.Context, header string) (*service.Identity, error) {
	g.header = header
	return g.id, g.err
}

func serve(t *testing.T, gate Authenticator, m *metrics.Metrics) (*httptest.ResponseRecorder, *service.Identity) {
	t.Helper()

	var seen *service.Identity
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		id, ok := IdentityFrom(c)
		require.True(t, ok)
		seen = id
		return c.NoContent(http.StatusNoContent)
	}, RequireLogin(gate, m))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer abc")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func TestRequireLogin_Admits(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	gate := &stubGate{id: &service.Identity{Token: "abc", User: &models.User{ID: 9, Username: "test_user"}}}

	rec, seen := serve(t, gate, m)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, uint(9), seen.User.ID)
	assert.Equal(t, "Bearer abc", gate.header)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GateDecisions.WithLabelValues("authorized")))
}

func TestRequireLogin_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		status  int
		message string
		outcome string
	}{
		{"expired", &service.AuthError{Reason: service.ReasonTokenExpired}, http.StatusUnauthorized, "Sorry, this token has expired. Please log in again.", "token_expired"},
		{"revoked", &service.AuthError{Reason: service.ReasonInvalidToken}, http.StatusUnauthorized, "Sorry, this token is invalid.", "invalid_token"},
		{"wrapped", fmt.Errorf("gate: %w", &service.AuthError{Reason: service.ReasonUserNotFound}), http.StatusUnauthorized, "Sorry, user could not be found.", "user_not_found"},
		{"store down", fmt.Errorf("load user: %w: %w", service.ErrInfrastructure, errors.New("db down")), http.StatusInternalServerError, internalErrorMsg, "infrastructure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := metrics.New()
			rec, seen := serve(t, &stubGate{err: tt.err}, m)

			assert.Nil(t, seen)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.message)
			assert.NotContains(t, rec.Body.String(), "db down")
			assert.Equal(t, 1.0, testutil.ToFloat64(m.GateDecisions.WithLabelValues(tt.outcome)))
		})
	}
}

func TestIdentityFrom_Missing(t *testing.T) {
	t.Parallel()

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, ok := IdentityFrom(c)
	assert.False(t, ok)
}
