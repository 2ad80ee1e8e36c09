package repository

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/wishlist-service/internal/wishlist/domain"
)

var tracer = otel.Tracer("wishlist-repository")

// Store is a repository that can also report its health
type Store interface {
	domain.WishlistRepository
	Ping(ctx context.Context) error
}

// TracingRepository wraps a Store with spans
type TracingRepository struct {
	next    Store
	backend string
}

// NewTracingRepository creates a new repository with tracing
func NewTracingRepository(next Store, backend string) *TracingRepository {
	return &TracingRepository{next: next, backend: backend}
}

// FindByUser with tracing
func (r *TracingRepository) FindByUser(ctx context.Context, userID string) (*domain.Wishlist, error) {
	ctx, span := tracer.Start(ctx, "repository.FindByUser",
		trace.WithAttributes(
			attribute.String("db.system", r.backend),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	wishlist, err := r.next.FindByUser(ctx, userID)
	if err != nil {
		// a missing wishlist is an expected outcome, not a span failure
		if errors.Is(err, domain.ErrWishlistNotFound) {
			span.SetAttributes(attribute.Bool("wishlist.found", false))
			return nil, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Bool("wishlist.found", true),
		attribute.Int("wishlist.items", len(wishlist.Items)),
	)
	return wishlist, nil
}

// Create is not traced, it does no I/O
func (r *TracingRepository) Create(userID string) *domain.Wishlist {
	return r.next.Create(userID)
}

// Save with tracing
func (r *TracingRepository) Save(ctx context.Context, wishlist *domain.Wishlist) (*domain.Wishlist, error) {
	ctx, span := tracer.Start(ctx, "repository.Save",
		trace.WithAttributes(
			attribute.String("db.system", r.backend),
			attribute.String("user.id", wishlist.UserID),
			attribute.Int("wishlist.items", len(wishlist.Items)),
		),
	)
	defer span.End()

	saved, err := r.next.Save(ctx, wishlist)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return saved, nil
}

// Ping with tracing
func (r *TracingRepository) Ping(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "repository.Ping",
		trace.WithAttributes(attribute.String("db.system", r.backend)),
	)
	defer span.End()

	if err := r.next.Ping(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
