package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/wishlist-service/internal/wishlist/domain"
)

// WishlistRecord is the wishlists table row. Items are a json column (not
// jsonb) so product variants and reviews keep their original text.
type WishlistRecord struct {
	ID        uint           `gorm:"primarykey"`
	UserID    string         `gorm:"uniqueIndex;size:255;not null"`
	Items     datatypes.JSON `gorm:"type:json;not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:false"`
}

// TableName overrides the default pluralized struct name
func (WishlistRecord) TableName() string {
	return "wishlists"
}

// GormWishlistRepository implements domain.WishlistRepository using GORM
type GormWishlistRepository struct {
	db *gorm.DB
}

// NewGormWishlistRepository creates a new GORM wishlist repository
func NewGormWishlistRepository(db *gorm.DB) *GormWishlistRepository {
	return &GormWishlistRepository{db: db}
}

// FindByUser retrieves the wishlist owned by userID
func (r *GormWishlistRepository) FindByUser(ctx context.Context, userID string) (*domain.Wishlist, error) {
	var record WishlistRecord
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrWishlistNotFound
		}
		return nil, fmt.Errorf("failed to find wishlist: %w", err)
	}

	var items []domain.WishlistItem
	if err := json.Unmarshal(record.Items, &items); err != nil {
		return nil, fmt.Errorf("failed to decode wishlist items: %w", err)
	}
	if items == nil {
		items = []domain.WishlistItem{}
	}

	return &domain.Wishlist{
		UserID:    record.UserID,
		Items:     items,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}, nil
}

// Create returns a new unsaved wishlist
func (r *GormWishlistRepository) Create(userID string) *domain.Wishlist {
	return domain.NewWishlist(userID, time.Now())
}

// Save inserts or replaces the row for wishlist.UserID
func (r *GormWishlistRepository) Save(ctx context.Context, wishlist *domain.Wishlist) (*domain.Wishlist, error) {
	items := wishlist.Items
	if items == nil {
		items = []domain.WishlistItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode wishlist items: %w", err)
	}

	record := WishlistRecord{
		UserID:    wishlist.UserID,
		Items:     datatypes.JSON(data),
		CreatedAt: wishlist.CreatedAt,
		UpdatedAt: wishlist.UpdatedAt,
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"items", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save wishlist: %w", err)
	}

	return wishlist.Clone(), nil
}

// Ping checks the database connection
func (r *GormWishlistRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// AutoMigrate runs database migrations
func (r *GormWishlistRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&WishlistRecord{})
}
