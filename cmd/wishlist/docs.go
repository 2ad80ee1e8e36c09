package main

// @title Wishlist Service API
// @version 1.0
// @description Per-user wishlists with product enrichment and cart migration, with full observability (logging, tracing, metrics)
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://github.com/tair/wishlist-service
// @contact.email support@example.com

// @license.name MIT
// @license.url https://github.com/tair/wishlist-service/blob/main/LICENSE

// @host localhost:3002
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name Wishlist
// @tag.description Wishlist management endpoints

// @tag.name Admin
// @tag.description Administrative endpoints

// @tag.name Health
// @tag.description Health check endpoints
