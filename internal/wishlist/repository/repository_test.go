package repository

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/tair/wishlist-service/internal/wishlist/domain"
)

func skipUnlessIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("WISHLIST_INTEGRATION") != "1" {
		t.Skip("set WISHLIST_INTEGRATION=1 to run container tests")
	}
}

func sampleItem(id string) domain.WishlistItem {
	return domain.WishlistItem{
		ProductID:   id,
		Name:        "Product " + id,
		Price:       19.99,
		Image:       "https://img/" + id + ".png",
		Category:    "shoes",
		Description: "desc",
		Variants:    json.RawMessage(`[{"color":"red","sizes":["S","M"]}]`),
		TotalStock:  7,
		Reviews:     json.RawMessage(`[]`),
	}
}

// exerciseStore runs the behavior every Store must share
func exerciseStore(t *testing.T, store Store) {
	ctx := context.Background()

	_, err := store.FindByUser(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrWishlistNotFound)

	created := store.Create("u1")
	assert.Equal(t, "u1", created.UserID)
	assert.Empty(t, created.Items)

	_, err = store.FindByUser(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrWishlistNotFound, "Create does not persist")

	created.Items = append(created.Items, sampleItem("p1"), sampleItem("p2"))
	_, err = store.Save(ctx, created)
	require.NoError(t, err)

	found, err := store.FindByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, found.Items, 2)
	assert.Equal(t, "p1", found.Items[0].ProductID)
	assert.Equal(t, "p2", found.Items[1].ProductID)
	assert.JSONEq(t, `[{"color":"red","sizes":["S","M"]}]`, string(found.Items[0].Variants))
	assert.Equal(t, 7, found.Items[0].TotalStock)

	found.Items = found.Items[1:]
	found.UpdatedAt = found.UpdatedAt.Add(time.Second)
	_, err = store.Save(ctx, found)
	require.NoError(t, err)

	again, err := store.FindByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, again.Items, 1)
	assert.Equal(t, "p2", again.Items[0].ProductID)

	again.Items = []domain.WishlistItem{}
	_, err = store.Save(ctx, again)
	require.NoError(t, err)

	emptied, err := store.FindByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, emptied.Items)

	require.NoError(t, store.Ping(ctx))
}

func TestMemoryWishlistRepository(t *testing.T) {
	exerciseStore(t, NewMemoryWishlistRepository())
}

func TestMemoryWishlistRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryWishlistRepository()
	ctx := context.Background()

	w := repo.Create("u1")
	w.Items = append(w.Items, sampleItem("p1"))
	_, err := repo.Save(ctx, w)
	require.NoError(t, err)

	w.Items[0].Name = "mutated after save"

	found, err := repo.FindByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Product p1", found.Items[0].Name)

	found.Items = nil
	again, err := repo.FindByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, again.Items, 1)
}

func TestMemoryWishlistRepository_KeepsCreatedAt(t *testing.T) {
	repo := NewMemoryWishlistRepository()
	ctx := context.Background()

	first := repo.Create("u1")
	createdAt := first.CreatedAt
	_, err := repo.Save(ctx, first)
	require.NoError(t, err)

	second := domain.NewWishlist("u1", createdAt.Add(time.Hour))
	_, err = repo.Save(ctx, second)
	require.NoError(t, err)

	found, err := repo.FindByUser(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, createdAt.Equal(found.CreatedAt))
}

type failingStore struct {
	*MemoryWishlistRepository
	err error
}

func (f *failingStore) Save(context.Context, *domain.Wishlist) (*domain.Wishlist, error) {
	return nil, f.err
}

func TestTracingRepository_Spans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	saveErr := errors.New("disk full")
	repo := NewTracingRepository(&failingStore{MemoryWishlistRepository: NewMemoryWishlistRepository(), err: saveErr}, "memory")
	ctx := context.Background()

	_, err := repo.FindByUser(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrWishlistNotFound)

	_, err = repo.Save(ctx, repo.Create("u1"))
	assert.ErrorIs(t, err, saveErr)

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "repository.FindByUser", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code, "not found is not an error")

	assert.Equal(t, "repository.Save", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "disk full", spans[1].Status().Description)
}
