package domain

import (
	"context"
	"time"
)

// Business rules
const (
	MaxItemsPerWishlist = 100
	MinQuantity         = 1
	MaxQuantity         = 99
	DefaultQuantity     = 1
	MaxPrice            = 1_000_000
)

// Cache key prefixes
const (
	WishlistKeyPrefix = "wishlist:"
	ProductKeyPrefix  = "product:"
)

// WishlistKey is the cache key of a user's wishlist
func WishlistKey(userID string) string {
	return WishlistKeyPrefix + userID
}

// ProductKey is the cache key of a product lookup
func ProductKey(productID string) string {
	return ProductKeyPrefix + productID
}

// QuantityOrDefault applies the default to an unset quantity
func QuantityOrDefault(q int) int {
	if q == 0 {
		return DefaultQuantity
	}
	return q
}

// QuantityInRange reports whether q is an allowed quantity, zero meaning unset
func QuantityInRange(q int) bool {
	return q == 0 || (q >= MinQuantity && q <= MaxQuantity)
}

// Wishlist event types
const (
	EventItemAdded               = "wishlist.item_added"
	EventItemRemoved             = "wishlist.item_removed"
	EventCleared                 = "wishlist.cleared"
	EventItemMovedToCart         = "wishlist.item_moved_to_cart"
	EventCartMigrationIncomplete = "wishlist.cart_migration_incomplete"
)

// WishlistEvent describes a business event on a wishlist
type WishlistEvent struct {
	Type       string    `json:"event_type"`
	UserID     string    `json:"user_id"`
	ProductID  string    `json:"product_id,omitempty"`
	Quantity   int       `json:"quantity,omitempty"`
	ItemCount  int       `json:"item_count"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher emits wishlist events. Delivery is best effort.
type EventPublisher interface {
	PublishWishlistEvent(ctx context.Context, event WishlistEvent) error
}

// NopPublisher discards events
type NopPublisher struct{}

// PublishWishlistEvent implements EventPublisher
func (NopPublisher) PublishWishlistEvent(context.Context, WishlistEvent) error { return nil }
