package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
// @Summary Swagger documentation
// @Description Swagger API documentation
// @Tags Swagger
// @Success 200 {string} string "Swagger UI"
// @Router /swagger/ [get]
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// GetWishlist godoc
// @Summary Get the caller's wishlist
// @Description Returns the wishlist of the authenticated user. Users without a wishlist get 404.
// @Tags Wishlist
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.Wishlist
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /wishlist [get]
func (h *WishlistHandler) GetWishlistDoc() {}

// AddItem godoc
// @Summary Add a product to the wishlist
// @Description Snapshots the product from the catalog into the wishlist, creating the wishlist on first use
// @Tags Wishlist
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body domain.AddItemInput true "Product to add"
// @Success 201 {object} domain.Wishlist
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Product not found"
// @Failure 409 {object} ErrorResponse "Item already exists"
// @Failure 502 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /wishlist/items [post]
func (h *WishlistHandler) AddItemDoc() {}

// RemoveItem godoc
// @Summary Remove a product from the wishlist
// @Tags Wishlist
// @Security BearerAuth
// @Produce json
// @Param productId path string true "Product ID"
// @Success 200 {object} domain.Wishlist
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /wishlist/items/{productId} [delete]
func (h *WishlistHandler) RemoveItemDoc() {}

// ClearWishlist godoc
// @Summary Remove every item from the wishlist
// @Tags Wishlist
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.Wishlist
// @Failure 404 {object} ErrorResponse
// @Router /wishlist [delete]
func (h *WishlistHandler) ClearWishlistDoc() {}

// MoveToCart godoc
// @Summary Move a wishlist item to the cart
// @Description Adds the product to the caller's cart, then removes it from the wishlist.
// @Description A 500 with code CART_MIGRATION_INCOMPLETE means the item reached the cart but is still in the wishlist.
// @Tags Wishlist
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body domain.AddItemInput true "Product to move"
// @Success 201 {object} domain.MoveToCartResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /wishlist/addToCart [post]
func (h *WishlistHandler) MoveToCartDoc() {}

// ClearAllCache godoc
// @Summary Drop every cached wishlist and product
// @Description Admin only
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} Response
// @Failure 403 {object} ErrorResponse
// @Router /wishlist/cache [delete]
func (h *WishlistHandler) ClearAllCacheDoc() {}

// HealthCheck godoc
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} Response
// @Failure 503 {object} Response
// @Router /health [get]
func (h *WishlistHandler) HealthCheckDoc() {}
