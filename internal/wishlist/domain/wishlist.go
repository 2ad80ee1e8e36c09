package domain

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrWishlistNotFound is returned by a WishlistRepository when the user has no wishlist
var ErrWishlistNotFound = errors.New("wishlist not found")

// EmptyJSONArray is the default for variants and reviews
var EmptyJSONArray = json.RawMessage("[]")

// WishlistItem is a denormalized snapshot of a product taken when it was added
type WishlistItem struct {
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	Price       float64         `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Variants    json.RawMessage `json:"variants" swaggertype:"array,object"`
	TotalStock  int             `json:"totalStock"`
	Reviews     json.RawMessage `json:"reviews" swaggertype:"array,object"`
}

// Wishlist is the per-user list of saved products
type Wishlist struct {
	UserID    string         `json:"userId"`
	Items     []WishlistItem `json:"items"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// NewWishlist returns an empty, unsaved wishlist for userID
func NewWishlist(userID string, now time.Time) *Wishlist {
	return &Wishlist{
		UserID:    userID,
		Items:     []WishlistItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IndexOf returns the position of productID in Items, or -1
func (w *Wishlist) IndexOf(productID string) int {
	for i := range w.Items {
		if w.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// RemoveAt deletes the item at i keeping the order of the rest
func (w *Wishlist) RemoveAt(i int) {
	items := make([]WishlistItem, 0, len(w.Items)-1)
	items = append(items, w.Items[:i]...)
	w.Items = append(items, w.Items[i+1:]...)
}

// Clone returns a deep copy so cached values are never shared with callers
func (w *Wishlist) Clone() *Wishlist {
	if w == nil {
		return nil
	}
	c := *w
	c.Items = make([]WishlistItem, len(w.Items))
	for i := range w.Items {
		c.Items[i] = w.Items[i].Clone()
	}
	return &c
}

// Clone returns a deep copy of the item
func (i WishlistItem) Clone() WishlistItem {
	i.Variants = cloneRaw(i.Variants)
	i.Reviews = cloneRaw(i.Reviews)
	return i
}

// ProductDetails is the catalog view of a product
type ProductDetails struct {
	Name        string          `json:"name"`
	Price       float64         `json:"price"`
	Images      []string        `json:"images"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Variants    json.RawMessage `json:"variants"`
	TotalStock  int             `json:"totalStock"`
	Reviews     json.RawMessage `json:"reviews"`
}

// PrimaryImage returns the first image or an empty string
func (p *ProductDetails) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ToItem snapshots the product as a wishlist item
func (p *ProductDetails) ToItem(productID string) WishlistItem {
	return WishlistItem{
		ProductID:   productID,
		Name:        p.Name,
		Price:       p.Price,
		Image:       p.PrimaryImage(),
		Category:    p.Category,
		Description: p.Description,
		Variants:    orEmptyArray(p.Variants),
		TotalStock:  p.TotalStock,
		Reviews:     orEmptyArray(p.Reviews),
	}
}

// Clone returns a deep copy of the product details
func (p *ProductDetails) Clone() *ProductDetails {
	if p == nil {
		return nil
	}
	c := *p
	c.Images = append([]string(nil), p.Images...)
	c.Variants = cloneRaw(p.Variants)
	c.Reviews = cloneRaw(p.Reviews)
	return &c
}

// CartItem is one line sent to or returned by the cart service
type CartItem struct {
	ProductID   string  `json:"productId"`
	Quantity    int     `json:"quantity"`
	Description string  `json:"description"`
	Color       string  `json:"color"`
	Size        string  `json:"size"`
	Price       float64 `json:"price"`
	Image       string  `json:"image,omitempty"`
}

// CartResult is the cart service response
type CartResult struct {
	Items []CartItem `json:"items"`
}

// MoveToCartResult summarizes a completed wishlist to cart move
type MoveToCartResult struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	ProductID string     `json:"productId"`
	CartItems []CartItem `json:"cartItems"`
}

// AddItemInput is the add and move-to-cart command payload
type AddItemInput struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity,omitempty" validate:"omitempty,gte=1,lte=99"`
}

// MoveToCartInput selects the wishlist item to move
type MoveToCartInput = AddItemInput

// WishlistRepository persists wishlists keyed by user id
type WishlistRepository interface {
	FindByUser(ctx context.Context, userID string) (*Wishlist, error)
	Create(userID string) *Wishlist
	Save(ctx context.Context, wishlist *Wishlist) (*Wishlist, error)
}

// ProductCatalog resolves product details
type ProductCatalog interface {
	Fetch(ctx context.Context, productID string) (*ProductDetails, error)
}

// CartGateway adds items to a user's cart. Calls are not idempotent.
type CartGateway interface {
	AddToCart(ctx context.Context, userID string, items []CartItem) (*CartResult, error)
}

func cloneRaw(r json.RawMessage) json.RawMessage {
	if r == nil {
		return nil
	}
	return append(json.RawMessage(nil), r...)
}

func orEmptyArray(r json.RawMessage) json.RawMessage {
	if len(r) == 0 || string(r) == "null" {
		return cloneRaw(EmptyJSONArray)
	}
	return cloneRaw(r)
}
