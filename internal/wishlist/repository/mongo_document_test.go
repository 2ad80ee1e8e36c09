package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/tair/wishlist-service/internal/wishlist/domain"
)

func sampleDomainWishlist() *domain.Wishlist {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Wishlist{
		UserID: "u1",
		Items: []domain.WishlistItem{{
			ProductID:  "p1",
			Name:       "Lamp",
			Price:      10,
			TotalStock: 3,
			Variants:   json.RawMessage(`[{"size":"L","color":"red"},{"size":"M","stock":2}]`),
			Reviews:    json.RawMessage(`[]`),
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestWishlistDocument_StoresArrays(t *testing.T) {
	data, err := bson.Marshal(fromDomain(sampleDomainWishlist()))
	require.NoError(t, err)

	item := bson.Raw(data).Lookup("items", "0")
	variants := item.Document().Lookup("variants")
	require.Equal(t, bson.TypeArray, variants.Type)

	first := variants.Array().Index(0).Value().Document()
	assert.Equal(t, "red", first.Lookup("color").StringValue())

	elems, err := first.Elements()
	require.NoError(t, err)
	require.Len(t, elems, 2)
	assert.Equal(t, "size", elems[0].Key(), "key order is preserved")

	assert.Equal(t, bson.TypeArray, item.Document().Lookup("reviews").Type)
}

func TestWishlistDocument_RoundTrip(t *testing.T) {
	data, err := bson.Marshal(fromDomain(sampleDomainWishlist()))
	require.NoError(t, err)

	var doc wishlistDocument
	require.NoError(t, bson.Unmarshal(data, &doc))
	got := doc.toDomain()

	require.Len(t, got.Items, 1)
	assert.JSONEq(t, `[{"size":"L","color":"red"},{"size":"M","stock":2}]`, string(got.Items[0].Variants))
	assert.JSONEq(t, `[]`, string(got.Items[0].Reviews))
	assert.Equal(t, "Lamp", got.Items[0].Name)
}

func TestWishlistDocument_ReadsNativeArrays(t *testing.T) {
	data, err := bson.Marshal(bson.D{
		{Key: "userId", Value: "u1"},
		{Key: "items", Value: bson.A{bson.D{
			{Key: "productId", Value: "p1"},
			{Key: "name", Value: "Lamp"},
			{Key: "price", Value: 10.5},
			{Key: "variants", Value: bson.A{bson.D{{Key: "color", Value: "red"}}}},
			{Key: "reviews", Value: bson.A{bson.D{{Key: "rating", Value: int32(5)}}}},
		}}},
	})
	require.NoError(t, err)

	var doc wishlistDocument
	require.NoError(t, bson.Unmarshal(data, &doc))
	got := doc.toDomain()

	require.Len(t, got.Items, 1)
	assert.JSONEq(t, `[{"color":"red"}]`, string(got.Items[0].Variants))
	assert.JSONEq(t, `[{"rating":5}]`, string(got.Items[0].Reviews))
}

func TestWishlistDocument_ToleratesLegacyShapes(t *testing.T) {
	data, err := bson.Marshal(bson.D{
		{Key: "userId", Value: "u1"},
		{Key: "items", Value: bson.A{bson.D{
			{Key: "productId", Value: "p1"},
			{Key: "variants", Value: `[{"color":"red"}]`},
		}}},
	})
	require.NoError(t, err)

	var doc wishlistDocument
	require.NoError(t, bson.Unmarshal(data, &doc))
	got := doc.toDomain()

	assert.JSONEq(t, `[{"color":"red"}]`, string(got.Items[0].Variants), "JSON text is still readable")
	assert.JSONEq(t, `[]`, string(got.Items[0].Reviews), "a missing field reads as empty")
}

func TestToBSONArray_NonArrayIsEmpty(t *testing.T) {
	for _, raw := range []string{``, `{"a":1}`, `"x"`, `{oops`} {
		v := toBSONArray(json.RawMessage(raw))
		require.Equal(t, bson.TypeArray, v.Type, raw)
		assert.JSONEq(t, `[]`, string(toJSONArray(v)), raw)
	}
}
