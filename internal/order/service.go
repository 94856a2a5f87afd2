package order

import (
	"context"
	"net/url"

	"keyfront/internal/query"
)

const ordersPath = "/api/orders"

type Getter interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
}

// Service reads the order history.
type Service interface {
	Orders(ctx context.Context) query.Result[[]Order]
}

type service struct {
	api    Getter
	cache  *query.Cache[[]Order]
	tenant string
}

func NewService(api Getter, cache *query.Cache[[]Order], tenant string) Service {
	return &service{api: api, cache: cache, tenant: tenant}
}

func (s *service) Orders(ctx context.Context) query.Result[[]Order] {
	key := ordersPath + "|" + s.tenant
	return s.cache.Get(ctx, key, func(ctx context.Context) ([]Order, error) {
		var orders []Order
		if err := s.api.Get(ctx, ordersPath, nil, &orders); err != nil {
			return nil, err
		}
		return orders, nil
	})
}
