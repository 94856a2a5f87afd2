package order

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"keyfront/internal/query"

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

func TestService_Orders(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockAPI := new(MockGetter)
		cache := query.New[[]Order]("orders", 8, 2*time.Minute, time.Hour)
		svc := NewService(mockAPI, cache, "eur")

		mockAPI.On("Get", mock.Anything, "/api/orders", url.Values(nil), mock.Anything).
			Return(func(out any) {
				*out.(*[]Order) = []Order{{ID: "ord-1", Status: "completed"}}
			}, nil).Once()

		res := svc.Orders(ctx)

		require.True(t, res.HasData)
		assert.Equal(t, "ord-1", res.Data[0].ID)
		mockAPI.AssertExpectations(t)
	})

	t.Run("Error - fetch failure", func(t *testing.T) {
		mockAPI := new(MockGetter)
		cache := query.New[[]Order]("orders", 8, 2*time.Minute, time.Hour)
		svc := NewService(mockAPI, cache, "eur")

		mockAPI.On("Get", mock.Anything, "/api/orders", url.Values(nil), mock.Anything).
			Return(nil, errors.New("boom")).Once()

		res := svc.Orders(ctx)

		assert.False(t, res.HasData)
		assert.Error(t, res.Err)
	})
}
