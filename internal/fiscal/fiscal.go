// Package fiscal produces the authorization code (CAE) stamped on issued invoices.
package fiscal

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// DefaultValidity is how long a CAE stays valid after issuance.
const DefaultValidity = 7 * 24 * time.Hour

// Authorization is the fiscal approval attached to an issued invoice.
type Authorization struct {
	CAE    string
	DueAt  time.Time
	Issued time.Time
}

// LocalAuthorizer generates placeholder codes without contacting a tax authority.
type LocalAuthorizer struct {
	validity time.Duration
	now      func() time.Time
}

type Option func(*LocalAuthorizer)

func WithValidity(d time.Duration) Option {
	return func(a *LocalAuthorizer) {
		if d > 0 {
			a.validity = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *LocalAuthorizer) {
		a.now = now
	}
}

func NewLocalAuthorizer(opts ...Option) *LocalAuthorizer {
	a := &LocalAuthorizer{validity: DefaultValidity, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Authorize returns an opaque code due after the configured validity. The code
// does not depend on the invoice being authorized.
func (a *LocalAuthorizer) Authorize(_ context.Context, _, _ string) (Authorization, error) {
	now := a.now().UTC()

	return Authorization{
		CAE:    fmt.Sprintf("%d%02d", now.UnixMilli(), rand.IntN(100)),
		DueAt:  now.Add(a.validity),
		Issued: now,
	}, nil
}
