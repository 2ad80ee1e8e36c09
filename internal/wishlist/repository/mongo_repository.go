package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/tair/wishlist-service/internal/wishlist/domain"
)

const wishlistCollection = "wishlists"

// wishlistDocument is the stored shape. Variants and reviews are native BSON
// arrays of embedded documents, key order preserved.
type wishlistDocument struct {
	UserID    string         `bson:"userId"`
	Items     []itemDocument `bson:"items"`
	CreatedAt time.Time      `bson:"createdAt"`
	UpdatedAt time.Time      `bson:"updatedAt"`
}

type itemDocument struct {
	ProductID   string        `bson:"productId"`
	Name        string        `bson:"name"`
	Price       float64       `bson:"price"`
	Image       string        `bson:"image"`
	Category    string        `bson:"category"`
	Description string        `bson:"description"`
	Variants    bson.RawValue `bson:"variants"`
	TotalStock  int           `bson:"totalStock"`
	Reviews     bson.RawValue `bson:"reviews"`
}

// MongoWishlistRepository stores one document per user
type MongoWishlistRepository struct {
	collection *mongo.Collection
}

// NewMongoWishlistRepository creates a repository on db
func NewMongoWishlistRepository(db *mongo.Database) *MongoWishlistRepository {
	return &MongoWishlistRepository{
		collection: db.Collection(wishlistCollection),
	}
}

// FindByUser loads the user's wishlist
func (r *MongoWishlistRepository) FindByUser(ctx context.Context, userID string) (*domain.Wishlist, error) {
	var doc wishlistDocument

	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrWishlistNotFound
		}
		return nil, fmt.Errorf("failed to find wishlist: %w", err)
	}

	return doc.toDomain(), nil
}

// Create returns a new unsaved wishlist
func (r *MongoWishlistRepository) Create(userID string) *domain.Wishlist {
	return domain.NewWishlist(userID, time.Now())
}

// Save upserts the whole wishlist document
func (r *MongoWishlistRepository) Save(ctx context.Context, wishlist *domain.Wishlist) (*domain.Wishlist, error) {
	doc := fromDomain(wishlist)

	filter := bson.M{"userId": wishlist.UserID}
	update := bson.M{
		"$set": bson.M{
			"items":     doc.Items,
			"updatedAt": doc.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"createdAt": doc.CreatedAt,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return nil, fmt.Errorf("failed to save wishlist: %w", err)
	}

	return wishlist.Clone(), nil
}

// CreateIndexes enforces one wishlist per user
func (r *MongoWishlistRepository) CreateIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Ping checks the primary is reachable
func (r *MongoWishlistRepository) Ping(ctx context.Context) error {
	return r.collection.Database().Client().Ping(ctx, readpref.Primary())
}

func fromDomain(w *domain.Wishlist) wishlistDocument {
	items := make([]itemDocument, len(w.Items))
	for i, it := range w.Items {
		items[i] = itemDocument{
			ProductID:   it.ProductID,
			Name:        it.Name,
			Price:       it.Price,
			Image:       it.Image,
			Category:    it.Category,
			Description: it.Description,
			Variants:    toBSONArray(it.Variants),
			TotalStock:  it.TotalStock,
			Reviews:     toBSONArray(it.Reviews),
		}
	}
	return wishlistDocument{
		UserID:    w.UserID,
		Items:     items,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func (d wishlistDocument) toDomain() *domain.Wishlist {
	items := make([]domain.WishlistItem, len(d.Items))
	for i, it := range d.Items {
		items[i] = domain.WishlistItem{
			ProductID:   it.ProductID,
			Name:        it.Name,
			Price:       it.Price,
			Image:       it.Image,
			Category:    it.Category,
			Description: it.Description,
			Variants:    toJSONArray(it.Variants),
			TotalStock:  it.TotalStock,
			Reviews:     toJSONArray(it.Reviews),
		}
	}
	return &domain.Wishlist{
		UserID:    d.UserID,
		Items:     items,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// wrappedValue carries a single value through extended JSON, which only
// encodes documents at the top level
type wrappedValue struct {
	V bson.RawValue `bson:"v"`
}

// toBSONArray converts a JSON array into a BSON array. Anything else is
// stored as an empty array.
func toBSONArray(raw json.RawMessage) bson.RawValue {
	data := make([]byte, 0, len(raw)+6)
	data = append(data, `{"v":`...)
	data = append(data, raw...)
	data = append(data, '}')

	var w wrappedValue
	if err := bson.UnmarshalExtJSON(data, false, &w); err != nil || w.V.Type != bson.TypeArray {
		return emptyBSONArray()
	}
	return w.V
}

func emptyBSONArray() bson.RawValue {
	_, data, _ := bson.MarshalValue(bson.A{})
	return bson.RawValue{Type: bson.TypeArray, Value: data}
}

// toJSONArray converts a stored array back into relaxed JSON. Documents
// written with the array as JSON text are read as well.
func toJSONArray(v bson.RawValue) json.RawMessage {
	switch v.Type {
	case bson.TypeArray:
	case bson.TypeString:
		text, _ := v.StringValueOK()
		return toJSONArray(toBSONArray(json.RawMessage(text)))
	default:
		return json.RawMessage(string(domain.EmptyJSONArray))
	}

	out, err := bson.MarshalExtJSON(wrappedValue{V: v}, false, false)
	if err != nil {
		return json.RawMessage(string(domain.EmptyJSONArray))
	}
	var w struct {
		V json.RawMessage `json:"v"`
	}
	if err := json.Unmarshal(out, &w); err != nil || len(w.V) == 0 {
		return json.RawMessage(string(domain.EmptyJSONArray))
	}
	return w.V
}
