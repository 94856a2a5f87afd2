package catalog

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"keyfront/internal/query"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockGetter is a mock implementation of the Getter interface
type MockGetter struct {
	mock.Mock
}

func (m *MockGetter) Get(ctx context.Context, path string, q url.Values, out any) error {
	args := m.Called(ctx, path, q, out)
	if fn, ok := args.Get(0).(func(any)); ok {
		fn(out)
	}
	return args.Error(1)
}

func fill(products []Product) func(any) {
	return func(out any) {
		*out.(*[]Product) = products
	}
}

func newCatalogCache(stale time.Duration) *query.Cache[[]Product] {
	return query.New[[]Product]("catalog", 16, stale, time.Hour)
}

func TestService_Products(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - fetches with filter query", func(t *testing.T) {
		mockAPI := new(MockGetter)
		svc := NewService(mockAPI, newCatalogCache(time.Minute), "eur")

		filters := FilterSet{Search: "office", Region: "EU"}
		products := []Product{{ID: "p1", Name: "Office Suite", Price: decimal.RequireFromString("10.00")}}

		mockAPI.On("Get", mock.Anything, "/api/products", filters.Values(), mock.Anything).
			Return(fill(products), nil).Once()

		res := svc.Products(ctx, filters)

		require.True(t, res.HasData)
		assert.Equal(t, products, res.Data)
		mockAPI.AssertExpectations(t)
	})

	t.Run("Success - repeated call inside freshness window hits cache", func(t *testing.T) {
		mockAPI := new(MockGetter)
		svc := NewService(mockAPI, newCatalogCache(time.Minute), "eur")

		mockAPI.On("Get", mock.Anything, "/api/products", mock.Anything, mock.Anything).
			Return(fill([]Product{{ID: "p1"}}), nil).Once()

		svc.Products(ctx, FilterSet{})
		res := svc.Products(ctx, FilterSet{})

		assert.True(t, res.HasData)
		mockAPI.AssertExpectations(t)
	})

	t.Run("Error - failed refetch keeps last good data visible", func(t *testing.T) {
		mockAPI := new(MockGetter)
		cache := newCatalogCache(10 * time.Millisecond)
		svc := NewService(mockAPI, cache, "eur")

		mockAPI.On("Get", mock.Anything, "/api/products", mock.Anything, mock.Anything).
			Return(fill([]Product{{ID: "p1"}, {ID: "p2"}}), nil).Once()
		mockAPI.On("Get", mock.Anything, "/api/products", mock.Anything, mock.Anything).
			Return(nil, errors.New("http 500"))

		svc.Products(ctx, FilterSet{})
		time.Sleep(20 * time.Millisecond)
		svc.Products(ctx, FilterSet{})

		// The stale list stays visible next to the error, never an empty list.
		require.Eventually(t, func() bool {
			res := svc.Products(ctx, FilterSet{})
			return res.Err != nil && res.HasData
		}, time.Second, 5*time.Millisecond)

		res := svc.Products(ctx, FilterSet{})
		assert.Len(t, res.Data, 2)
	})

	t.Run("Error - fetch failure on empty cache", func(t *testing.T) {
		mockAPI := new(MockGetter)
		svc := NewService(mockAPI, newCatalogCache(time.Minute), "eur")

		mockAPI.On("Get", mock.Anything, "/api/products", mock.Anything, mock.Anything).
			Return(nil, errors.New("network down")).Once()

		res := svc.Products(ctx, FilterSet{})

		assert.False(t, res.HasData)
		assert.Error(t, res.Err)
	})
}

func TestService_Lookup(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - finds cached product", func(t *testing.T) {
		mockAPI := new(MockGetter)
		svc := NewService(mockAPI, newCatalogCache(time.Minute), "eur")

		mockAPI.On("Get", mock.Anything, "/api/products", mock.Anything, mock.Anything).
			Return(fill([]Product{{ID: "p1", Name: "VPN"}}), nil).Once()

		svc.Products(ctx, FilterSet{})

		p, ok := svc.Lookup(FilterSet{}, "p1")
		assert.True(t, ok)
		assert.Equal(t, "VPN", p.Name)
	})

	t.Run("Error - unknown product", func(t *testing.T) {
		svc := NewService(new(MockGetter), newCatalogCache(time.Minute), "eur")

		_, ok := svc.Lookup(FilterSet{}, "nope")
		assert.False(t, ok)
	})
}
