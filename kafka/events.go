package kafka

import "time"

// WishlistEventMessage is the wire form of a wishlist business event
type WishlistEventMessage struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id,omitempty"`
	Quantity  int       `json:"quantity,omitempty"`
	ItemCount int       `json:"item_count"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// CatalogEvent is a product change published by the catalog
type CatalogEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	ProductID string    `json:"product_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Catalog event types
const (
	EventTypeProductUpdated = "product.updated"
	EventTypeProductDeleted = "product.deleted"
)

// Default topics
const (
	TopicWishlistEvents = "wishlist-events"
	TopicCatalogEvents  = "product-events"
)
