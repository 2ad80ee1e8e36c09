package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tair/wishlist-service/internal/wishlist/cache"
	"github.com/tair/wishlist-service/internal/wishlist/domain"
	"github.com/tair/wishlist-service/internal/wishlist/repository"
	apperrors "github.com/tair/wishlist-service/pkg/errors"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) Fetch(ctx context.Context, productID string) (*domain.ProductDetails, error) {
	args := m.Called(ctx, productID)
	if p := args.Get(0); p != nil {
		return p.(*domain.ProductDetails), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCart struct {
	mock.Mock
}

func (m *mockCart) AddToCart(ctx context.Context, userID string, items []domain.CartItem) (*domain.CartResult, error) {
	args := m.Called(ctx, userID, items)
	if r := args.Get(0); r != nil {
		return r.(*domain.CartResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.WishlistEvent
	err    error
}

func (p *recordingPublisher) PublishWishlistEvent(_ context.Context, event domain.WishlistEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// countingRepo wraps the memory store to count reads and inject save failures
type countingRepo struct {
	*repository.MemoryWishlistRepository
	finds   atomic.Int32
	saveErr error
}

func (r *countingRepo) FindByUser(ctx context.Context, userID string) (*domain.Wishlist, error) {
	r.finds.Add(1)
	return r.MemoryWishlistRepository.FindByUser(ctx, userID)
}

func (r *countingRepo) Save(ctx context.Context, w *domain.Wishlist) (*domain.Wishlist, error) {
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	return r.MemoryWishlistRepository.Save(ctx, w)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	svc       *WishlistService
	repo      *countingRepo
	catalog   *mockCatalog
	cart      *mockCart
	publisher *recordingPublisher
	clock     *testClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repo:      &countingRepo{MemoryWishlistRepository: repository.NewMemoryWishlistRepository()},
		catalog:   new(mockCatalog),
		cart:      new(mockCart),
		publisher: &recordingPublisher{},
		clock:     &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	f.svc = NewWishlistService(Dependencies{
		Repo:          f.repo,
		Catalog:       f.catalog,
		Cart:          f.cart,
		WishlistCache: cache.NewTTLCache[*domain.Wishlist](5*time.Minute, cache.WithClock(f.clock.Now)),
		ProductCache:  cache.NewTTLCache[*domain.ProductDetails](5*time.Minute, cache.WithClock(f.clock.Now)),
		Publisher:     f.publisher,
		Clock:         f.clock.Now,
	})

	t.Cleanup(func() {
		f.catalog.AssertExpectations(t)
		f.cart.AssertExpectations(t)
	})
	return f
}

func product(name string, price float64) *domain.ProductDetails {
	return &domain.ProductDetails{
		Name:        name,
		Price:       price,
		Images:      []string{name + "-1.png", name + "-2.png"},
		Category:    "shoes",
		Description: name + " description",
		Variants:    json.RawMessage(`[{"color":"red"}]`),
		TotalStock:  3,
	}
}

func (f *fixture) stock(ids ...string) {
	for _, id := range ids {
		f.catalog.On("Fetch", mock.Anything, id).Return(product("name-"+id, 10), nil).Maybe()
	}
}

func (f *fixture) add(t *testing.T, userID string, ids ...string) *domain.Wishlist {
	t.Helper()
	var w *domain.Wishlist
	for _, id := range ids {
		var err error
		w, err = f.svc.AddItem(context.Background(), userID, domain.AddItemInput{ProductID: id})
		require.NoError(t, err)
	}
	return w
}

func productIDs(w *domain.Wishlist) []string {
	ids := make([]string, 0, len(w.Items))
	for _, it := range w.Items {
		ids = append(ids, it.ProductID)
	}
	return ids
}

func TestGetWishlist_NoWishlistIsNotFound(t *testing.T) {
	f := newFixture(t)

	w, err := f.svc.GetWishlist(context.Background(), "nobody")
	assert.Nil(t, w)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, apperrors.CodeWishlistNotFound, apperrors.Code(err))

	_, err = f.repo.MemoryWishlistRepository.FindByUser(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrWishlistNotFound, "reads never create a wishlist")
}

func TestAddItem_ThenGetReturnsSnapshot(t *testing.T) {
	f := newFixture(t)
	f.stock("p1")
	ctx := context.Background()

	saved, err := f.svc.AddItem(ctx, "u1", domain.AddItemInput{ProductID: "p1", Quantity: 2})
	require.NoError(t, err)
	require.Len(t, saved.Items, 1)

	w, err := f.svc.GetWishlist(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, w.Items, 1)

	item := w.Items[0]
	assert.Equal(t, "p1", item.ProductID)
	assert.Equal(t, "name-p1", item.Name)
	assert.Equal(t, 10.0, item.Price)
	assert.Equal(t, "name-p1-1.png", item.Image)
	assert.Equal(t, "shoes", item.Category)
	assert.Equal(t, "name-p1 description", item.Description)
	assert.JSONEq(t, `[{"color":"red"}]`, string(item.Variants))
	assert.JSONEq(t, `[]`, string(item.Reviews))
	assert.Equal(t, 3, item.TotalStock)
	assert.Equal(t, f.clock.Now(), w.UpdatedAt)

	assert.Equal(t, []string{domain.EventItemAdded}, f.publisher.types())
	assert.Equal(t, 2, f.publisher.events[0].Quantity)
}

func TestAddItem_DuplicateIsConflict(t *testing.T) {
	f := newFixture(t)
	f.stock("p1")
	ctx := context.Background()

	f.add(t, "u1", "p1")

	_, err := f.svc.AddItem(ctx, "u1", domain.AddItemInput{ProductID: "p1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, "Item already exists in wishlist", apperrors.Message(err))

	w, err := f.svc.GetWishlist(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, w.Items, 1)

	f.catalog.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestAddItem_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input domain.AddItemInput
	}{
		{"empty product id", domain.AddItemInput{}},
		{"blank product id", domain.AddItemInput{ProductID: "   "}},
		{"quantity too low", domain.AddItemInput{ProductID: "p1", Quantity: -1}},
		{"quantity too high", domain.AddItemInput{ProductID: "p1", Quantity: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.svc.AddItem(context.Background(), "u1", tt.input)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			f.catalog.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
		})
	}
}

func TestAddItem_PropagatesCatalogErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"not found", apperrors.ProductNotFound("p1"), apperrors.ErrNotFound},
		{"invalid response", apperrors.InvalidResponse("bad", nil), apperrors.ErrInvalidResponse},
		{"unavailable", apperrors.ServiceUnavailable("product-service", errors.New("down")), apperrors.ErrServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.catalog.On("Fetch", mock.Anything, "p1").Return(nil, tt.err)

			_, err := f.svc.AddItem(context.Background(), "u1", domain.AddItemInput{ProductID: "p1"})
			assert.ErrorIs(t, err, tt.sentinel)

			_, err = f.svc.GetWishlist(context.Background(), "u1")
			assert.ErrorIs(t, err, apperrors.ErrNotFound, "failed add does not create a wishlist")
		})
	}
}

func TestAddItem_FailedLookupIsNotCached(t *testing.T) {
	f := newFixture(t)
	f.catalog.On("Fetch", mock.Anything, "p1").Return(nil, apperrors.ProductNotFound("p1")).Once()
	f.catalog.On("Fetch", mock.Anything, "p1").Return(product("late", 5), nil).Once()

	_, err := f.svc.AddItem(context.Background(), "u1", domain.AddItemInput{ProductID: "p1"})
	require.Error(t, err)

	w, err := f.svc.AddItem(context.Background(), "u1", domain.AddItemInput{ProductID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, "late", w.Items[0].Name)
}

func TestAddItem_MaxItems(t *testing.T) {
	f := newFixture(t)
	f.stock("overflow")
	ctx := context.Background()

	full := domain.NewWishlist("u1", f.clock.Now())
	for i := 0; i < domain.MaxItemsPerWishlist; i++ {
		full.Items = append(full.Items, domain.WishlistItem{ProductID: fmt.Sprintf("p%d", i), Name: "x", Price: 1})
	}
	_, err := f.repo.Save(ctx, full)
	require.NoError(t, err)

	_, err = f.svc.AddItem(ctx, "u1", domain.AddItemInput{ProductID: "overflow"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Equal(t, apperrors.CodeMaxItemsExceeded, apperrors.Code(err))
}

func TestAddItem_PublisherFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.stock("p1")
	f.publisher.err = errors.New("broker down")

	w, err := f.svc.AddItem(context.Background(), "u1", domain.AddItemInput{ProductID: "p1"})
	require.NoError(t, err)
	assert.Len(t, w.Items, 1)
}

func TestGetWishlist_UsesCacheUntilInvalidated(t *testing.T) {
	f := newFixture(t)
	f.stock("p1", "p2")
	ctx := context.Background()
	f.add(t, "u1", "p1")

	before := f.repo.finds.Load()
	_, err := f.svc.GetWishlist(ctx, "u1")
	require.NoError(t, err)
	_, err = f.svc.GetWishlist(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, before+1, f.repo.finds.Load(), "second read is served from cache")

	f.add(t, "u1", "p2")
	w, err := f.svc.GetWishlist(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, productIDs(w), "mutation invalidates the cached wishlist")

	f.clock.Advance(5 * time.Minute)
	reads := f.repo.finds.Load()
	_, err = f.svc.GetWishlist(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, reads+1, f.repo.finds.Load(), "expired entry goes back to the store")
}

func TestGetWishlist_CachedValueIsIsolated(t *testing.T) {
	f := newFixture(t)
	f.stock("p1")
	ctx := context.Background()
	f.add(t, "u1", "p1")

	w, err := f.svc.GetWishlist(ctx, "u1")
	require.NoError(t, err)
	w.Items[0].Name = "mutated by caller"

	again, err := f.svc.GetWishlist(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "name-p1", again.Items[0].Name)
}

func TestRemoveItem_PreservesOrder(t *testing.T) {
	f := newFixture(t)
	f.stock("A", "B", "C")
	ctx := context.Background()
	f.add(t, "u1", "A", "B", "C")

	w, err := f.svc.RemoveItem(ctx, "u1", "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, productIDs(w))

	got, err := f.svc.GetWishlist(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, productIDs(got))
}

func TestRemoveItem_NotFound(t *testing.T) {
	f := newFixture(t)
	f.stock("A")
	ctx := context.Background()

	_, err := f.svc.RemoveItem(ctx, "u1", "A")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, apperrors.CodeWishlistNotFound, apperrors.Code(err))

	f.add(t, "u1", "A")
	_, err = f.svc.RemoveItem(ctx, "u1", "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, apperrors.CodeItemNotFound, apperrors.Code(err))

	w, err := f.svc.GetWishlist(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, productIDs(w))
}

func TestClearWishlist(t *testing.T) {
	f := newFixture(t)
	f.stock("A", "B")
	ctx := context.Background()
	added := f.add(t, "u1", "A", "B")

	f.clock.Advance(time.Minute)
	w, err := f.svc.ClearWishlist(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, w.Items)
	assert.True(t, w.UpdatedAt.After(added.UpdatedAt))

	again, err := f.svc.ClearWishlist(ctx, "u1")
	require.NoError(t, err, "clearing twice succeeds")
	assert.Empty(t, again.Items)
	assert.NotNil(t, again.Items)
}

func TestClearWishlist_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ClearWishlist(context.Background(), "u1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMoveToCart_Success(t *testing.T) {
	f := newFixture(t)
	f.stock("A", "B")
	ctx := context.Background()
	f.add(t, "u1", "A", "B")

	cartItems := []domain.CartItem{{ProductID: "A", Quantity: 1, Price: 10}}
	f.cart.On("AddToCart", mock.Anything, "u1", []domain.CartItem{{
		ProductID:   "A",
		Quantity:    1,
		Description: "name-A description",
		Price:       10,
		Image:       "name-A-1.png",
	}}).Return(&domain.CartResult{Items: cartItems}, nil).Once()

	res, err := f.svc.MoveToCart(ctx, "u1", domain.MoveToCartInput{ProductID: "A"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Item added to cart successfully", res.Message)
	assert.Equal(t, "A", res.ProductID)
	assert.Equal(t, cartItems, res.CartItems)

	w, err := f.svc.GetWishlist(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, productIDs(w))

	assert.Equal(t, []string{
		domain.EventItemAdded, domain.EventItemAdded, domain.EventItemMovedToCart,
	}, f.publisher.types())
}

func TestMoveToCart_UsesRequestedQuantity(t *testing.T) {
	f := newFixture(t)
	f.stock("A")
	f.add(t, "u1", "A")

	f.cart.On("AddToCart", mock.Anything, "u1", mock.MatchedBy(func(items []domain.CartItem) bool {
		return len(items) == 1 && items[0].Quantity == 4 && items[0].Color == "" && items[0].Size == ""
	})).Return(&domain.CartResult{Items: []domain.CartItem{{ProductID: "A", Quantity: 4}}}, nil).Once()

	_, err := f.svc.MoveToCart(context.Background(), "u1", domain.MoveToCartInput{ProductID: "A", Quantity: 4})
	require.NoError(t, err)
}

func TestMoveToCart_CartFailureKeepsItem(t *testing.T) {
	f := newFixture(t)
	f.stock("A")
	ctx := context.Background()
	f.add(t, "u1", "A")

	f.cart.On("AddToCart", mock.Anything, "u1", mock.Anything).
		Return(nil, apperrors.ServiceUnavailable("cart-service", errors.New("down"))).Once()

	_, err := f.svc.MoveToCart(ctx, "u1", domain.MoveToCartInput{ProductID: "A"})
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavailable)

	w, err := f.svc.GetWishlist(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, productIDs(w))
}

func TestMoveToCart_InvalidCartResponse(t *testing.T) {
	f := newFixture(t)
	f.stock("A")
	f.add(t, "u1", "A")

	f.cart.On("AddToCart", mock.Anything, "u1", mock.Anything).Return(&domain.CartResult{}, nil).Once()

	_, err := f.svc.MoveToCart(context.Background(), "u1", domain.MoveToCartInput{ProductID: "A"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidResponse)

	w, err := f.svc.GetWishlist(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, w.Items, 1)
}

func TestMoveToCart_RemovalFailureIsIncomplete(t *testing.T) {
	f := newFixture(t)
	f.stock("A")
	ctx := context.Background()
	f.add(t, "u1", "A")

	f.cart.On("AddToCart", mock.Anything, "u1", mock.Anything).
		Return(&domain.CartResult{Items: []domain.CartItem{{ProductID: "A", Quantity: 1}}}, nil).Once()
	storeErr := errors.New("write conflict")
	f.repo.saveErr = storeErr
	before := testutil.ToFloat64(cartMigrationIncompleteTotal)

	_, err := f.svc.MoveToCart(ctx, "u1", domain.MoveToCartInput{ProductID: "A"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrCartMigrationIncomplete)
	assert.ErrorIs(t, err, storeErr)
	assert.Equal(t, apperrors.CodeCartMigrationIncomplete, apperrors.Code(err))
	assert.Equal(t, 500, apperrors.HTTPStatus(err))
	assert.Equal(t, before+1, testutil.ToFloat64(cartMigrationIncompleteTotal))

	types := f.publisher.types()
	assert.Equal(t, domain.EventCartMigrationIncomplete, types[len(types)-1])
	f.cart.AssertNumberOfCalls(t, "AddToCart", 1)
}

func TestMoveToCart_ItemMissingAfterCartIsIncomplete(t *testing.T) {
	f := newFixture(t)
	f.stock("A")
	f.add(t, "u1")

	f.cart.On("AddToCart", mock.Anything, "u1", mock.Anything).
		Return(&domain.CartResult{Items: []domain.CartItem{{ProductID: "A"}}}, nil).Once()

	_, err := f.svc.MoveToCart(context.Background(), "u1", domain.MoveToCartInput{ProductID: "A"})
	assert.ErrorIs(t, err, apperrors.ErrCartMigrationIncomplete)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMoveToCart_InvalidInputSkipsCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.MoveToCart(context.Background(), "u1", domain.MoveToCartInput{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	f.cart.AssertNotCalled(t, "AddToCart", mock.Anything, mock.Anything, mock.Anything)
}

func TestClearAllCache(t *testing.T) {
	f := newFixture(t)
	f.stock("A")
	ctx := context.Background()
	f.add(t, "u1", "A")
	_, err := f.svc.GetWishlist(ctx, "u1")
	require.NoError(t, err)

	f.svc.ClearAllCache(ctx)

	reads := f.repo.finds.Load()
	_, err = f.svc.GetWishlist(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, reads+1, f.repo.finds.Load())

	_, err = f.svc.product(ctx, "A")
	require.NoError(t, err)
	f.catalog.AssertNumberOfCalls(t, "Fetch", 2)
}

func TestInvalidateProduct(t *testing.T) {
	f := newFixture(t)
	f.stock("A")
	ctx := context.Background()

	_, err := f.svc.product(ctx, "A")
	require.NoError(t, err)
	_, err = f.svc.product(ctx, "A")
	require.NoError(t, err)
	f.catalog.AssertNumberOfCalls(t, "Fetch", 1)

	f.svc.InvalidateProduct(ctx, "A")
	_, err = f.svc.product(ctx, "A")
	require.NoError(t, err)
	f.catalog.AssertNumberOfCalls(t, "Fetch", 2)
}

type gatedCatalog struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (g *gatedCatalog) Fetch(context.Context, string) (*domain.ProductDetails, error) {
	if g.calls.Add(1) == 1 {
		close(g.entered)
	}
	<-g.release
	return product("shared", 1), nil
}

func TestProductLookup_ConcurrentMissesShareOneCall(t *testing.T) {
	catalog := &gatedCatalog{entered: make(chan struct{}), release: make(chan struct{})}
	svc := NewWishlistService(Dependencies{
		Repo:          repository.NewMemoryWishlistRepository(),
		Catalog:       catalog,
		WishlistCache: cache.NewTTLCache[*domain.Wishlist](time.Minute),
		ProductCache:  cache.NewTTLCache[*domain.ProductDetails](time.Minute),
	})
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]*domain.ProductDetails, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := svc.product(ctx, "A")
			assert.NoError(t, err)
			results[i] = p
		}(i)
	}

	<-catalog.entered
	time.Sleep(50 * time.Millisecond)
	close(catalog.release)
	wg.Wait()

	assert.Equal(t, int32(1), catalog.calls.Load())
	for _, p := range results {
		require.NotNil(t, p)
		assert.Equal(t, "shared", p.Name)
	}
	assert.NotSame(t, results[0], results[1], "each caller gets its own copy")
}
