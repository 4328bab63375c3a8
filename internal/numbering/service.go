package numbering

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const DefaultMaxAttempts = 5

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=numbering
type Repository interface {
	// LastValue returns the last committed number for pos, or 0 when none was issued yet.
	LastValue(ctx context.Context, tenantID, pos string) (int64, error)
	// Increment atomically bumps the counter for pos and returns the new value.
	// Implementations report a retryable write conflict with ErrConflict.
	Increment(ctx context.Context, tenantID, pos string) (int64, error)
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	repo        Repository
	tx          Transactor
	maxAttempts int
}

type Option func(*Service)

func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func NewService(repo Repository, tx Transactor, opts ...Option) *Service {
	s := &Service{repo: repo, tx: tx, maxAttempts: DefaultMaxAttempts}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

var tracer = otel.Tracer("github.com/MrJamesThe3rd/facturador/internal/numbering")

// PeekNext returns the number the next issuance for pos would receive.
// It reserves nothing; the value is a preview and may be taken by someone else.
func (s *Service) PeekNext(ctx context.Context, tenantID, pos string) (string, error) {
	if err := ValidatePOS(pos); err != nil {
		return "", err
	}

	last, err := s.repo.LastValue(ctx, tenantID, pos)
	if err != nil {
		return "", fmt.Errorf("reading counter for pos %s: %w", pos, err)
	}

	return Format(last + 1), nil
}

// AllocateNext reserves the next number for pos. Each attempt runs in its own
// (possibly nested) transaction; conflicts are retried up to the configured limit.
func (s *Service) AllocateNext(ctx context.Context, tenantID, pos string) (string, error) {
	ctx, span := tracer.Start(ctx, "numbering.AllocateNext", trace.WithAttributes(attribute.String("pos", pos)))
	defer span.End()

	if err := ValidatePOS(pos); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		var next int64

		err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
			n, err := s.repo.Increment(ctx, tenantID, pos)
			if err != nil {
				return err
			}

			next = n

			return nil
		})
		if err == nil {
			span.SetAttributes(attribute.Int64("number", next), attribute.Int("attempts", attempt))
			return Format(next), nil
		}

		if !errors.Is(err, ErrConflict) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())

			return "", fmt.Errorf("incrementing counter for pos %s: %w", pos, err)
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%w: pos %s: %w", ErrAllocationFailed, pos, ctxErr)
		}

		slog.Warn("invoice counter conflict, retrying", "pos", pos, "attempt", attempt)
	}

	err := fmt.Errorf("%w: pos %s after %d attempts", ErrAllocationFailed, pos, s.maxAttempts)
	span.SetStatus(codes.Error, err.Error())

	return "", err
}
