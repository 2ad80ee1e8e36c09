package repository

import (
	"context"
	"sync"
	"time"

	"github.com/tair/wishlist-service/internal/wishlist/domain"
)

// MemoryWishlistRepository keeps wishlists in process memory. It backs
// STORE_DRIVER=memory and the service tests.
type MemoryWishlistRepository struct {
	mu        sync.RWMutex
	wishlists map[string]*domain.Wishlist
	now       func() time.Time
}

// NewMemoryWishlistRepository creates an empty in-memory repository
func NewMemoryWishlistRepository() *MemoryWishlistRepository {
	return &MemoryWishlistRepository{
		wishlists: make(map[string]*domain.Wishlist),
		now:       time.Now,
	}
}

// FindByUser returns a copy of the user's wishlist
func (r *MemoryWishlistRepository) FindByUser(_ context.Context, userID string) (*domain.Wishlist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.wishlists[userID]
	if !ok {
		return nil, domain.ErrWishlistNotFound
	}
	return w.Clone(), nil
}

// Create returns a new unsaved wishlist
func (r *MemoryWishlistRepository) Create(userID string) *domain.Wishlist {
	return domain.NewWishlist(userID, r.now())
}

// Save replaces the stored wishlist for wishlist.UserID
func (r *MemoryWishlistRepository) Save(_ context.Context, wishlist *domain.Wishlist) (*domain.Wishlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := wishlist.Clone()
	if existing, ok := r.wishlists[wishlist.UserID]; ok {
		stored.CreatedAt = existing.CreatedAt
	}
	r.wishlists[wishlist.UserID] = stored
	return stored.Clone(), nil
}

// Ping always succeeds
func (r *MemoryWishlistRepository) Ping(context.Context) error {
	return nil
}
