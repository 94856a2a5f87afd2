package catalog

import (
	"context"
	"errors"
	"net/url"

	"keyfront/internal/query"
)

var ErrProductNotFound = errors.New("product not found")

const productsPath = "/api/products"

// Getter is the slice of the REST client the catalog needs.
type Getter interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
}

// Service reads the product catalog through the shared query cache.
type Service interface {
	// Products returns the product list for the given (already debounced)
	// filter set, stale-while-revalidate semantics included.
	Products(ctx context.Context, filters FilterSet) query.Result[[]Product]
	// Lookup finds a product in the cached list for filters without any
	// network traffic. The cart pipeline uses it to denormalize lines.
	Lookup(filters FilterSet, productID string) (Product, bool)
}

type service struct {
	api    Getter
	cache  *query.Cache[[]Product]
	tenant string
}

func NewService(api Getter, cache *query.Cache[[]Product], tenant string) Service {
	return &service{api: api, cache: cache, tenant: tenant}
}

func (s *service) Products(ctx context.Context, filters FilterSet) query.Result[[]Product] {
	return s.cache.Get(ctx, s.key(filters), func(ctx context.Context) ([]Product, error) {
		var products []Product
		if err := s.api.Get(ctx, productsPath, filters.Values(), &products); err != nil {
			return nil, err
		}
		return products, nil
	})
}

func (s *service) Lookup(filters FilterSet, productID string) (Product, bool) {
	res := s.cache.Peek(s.key(filters))
	if !res.HasData {
		return Product{}, false
	}
	for _, p := range res.Data {
		if p.ID == productID {
			return p, true
		}
	}
	return Product{}, false
}

func (s *service) key(filters FilterSet) string {
	return productsPath + "|" + s.tenant + "|" + filters.Key()
}
