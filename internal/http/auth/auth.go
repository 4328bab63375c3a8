// Package auth resolves the tenant of a request from an HS256 bearer token.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MrJamesThe3rd/facturador/internal/http/respond"
)

const bearerPrefix = "bearer "

var ErrMissingTenant = errors.New("token carries no tenant")

// Claims is the token payload. Subject identifies the caller, TenantID the
// account whose data every request is scoped to.
type Claims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

type tenantKey struct{}

// WithTenant returns a copy of ctx carrying tenantID.
func WithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantKey{}, tenantID)
}

// TenantFrom returns the tenant stored by Middleware, or "" when there is none.
func TenantFrom(ctx context.Context) string {
	tenantID, _ := ctx.Value(tenantKey{}).(string)
	return tenantID
}

type Authenticator struct {
	secret []byte
	parser *jwt.Parser
}

func New(secret string) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

// Middleware rejects requests without a valid bearer token and stores the
// token's tenant in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
			respond.Unauthorized(w, r)
			return
		}

		claims, err := a.Parse(strings.TrimSpace(header[len(bearerPrefix):]))
		if err != nil {
			respond.Unauthorized(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), claims.TenantID)))
	})
}

// Parse verifies raw and returns its claims.
func (a *Authenticator) Parse(raw string) (*Claims, error) {
	var claims Claims

	_, err := a.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(claims.TenantID) == "" {
		return nil, ErrMissingTenant
	}

	return &claims, nil
}

// IssueToken signs a token for subject scoped to tenantID, valid for ttl.
func (a *Authenticator) IssueToken(subject, tenantID string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(tenantID) == "" {
		return "", ErrMissingTenant
	}

	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	return token.SignedString(a.secret)
}
