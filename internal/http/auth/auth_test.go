package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/facturador/internal/http/auth"
)

const secret = "test-secret"

func TestAuthenticator_IssueAndParse(t *testing.T) {
	a := auth.New(secret)

	raw, err := a.IssueToken("alice", "tenant-1", time.Hour)
	require.NoError(t, err)

	claims, err := a.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", claims.TenantID)
	assert.Equal(t, "alice", claims.Subject)

	_, err = a.IssueToken("alice", " ", time.Hour)
	assert.ErrorIs(t, err, auth.ErrMissingTenant)
}

func TestAuthenticator_Middleware(t *testing.T) {
	a := auth.New(secret)

	valid, err := a.IssueToken("alice", "tenant-1", time.Hour)
	require.NoError(t, err)

	expired, err := a.IssueToken("alice", "tenant-1", -time.Minute)
	require.NoError(t, err)

	otherKey, err := auth.New("another-secret").IssueToken("alice", "tenant-1", time.Hour)
	require.NoError(t, err)

	noTenant, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"},
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, auth.Claims{TenantID: "tenant-1"}).SignedString([]byte(secret))
	require.NoError(t, err)

	type testCase struct {
		name       string
		header     string
		wantStatus int
		wantTenant string
	}

	tests := []testCase{
		{name: "Valid", header: "Bearer " + valid, wantStatus: http.StatusOK, wantTenant: "tenant-1"},
		{name: "LowercaseScheme", header: "bearer " + valid, wantStatus: http.StatusOK, wantTenant: "tenant-1"},
		{name: "MissingHeader", header: "", wantStatus: http.StatusUnauthorized},
		{name: "BasicScheme", header: "Basic Zm9vOmJhcg==", wantStatus: http.StatusUnauthorized},
		{name: "Expired", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized},
		{name: "WrongKey", header: "Bearer " + otherKey, wantStatus: http.StatusUnauthorized},
		{name: "NoTenant", header: "Bearer " + noTenant, wantStatus: http.StatusUnauthorized},
		{name: "WrongAlgorithm", header: "Bearer " + wrongAlg, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotTenant string

			h := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotTenant = auth.TenantFrom(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantTenant, gotTenant)

			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
				assert.JSONEq(t,
					`{"error":"unauthorized","message":"Token de acceso ausente, inválido o vencido."}`,
					rec.Body.String())
			}
		})
	}
}

func TestAuthenticator_Middleware_LocalizedRejection(t *testing.T) {
	h := auth.New(secret).Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "en-US")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, `Bearer realm="api"`, rec.Header().Get("WWW-Authenticate"))
	assert.JSONEq(t, `{"error":"unauthorized","message":"Missing, invalid or expired access token."}`, rec.Body.String())
}
