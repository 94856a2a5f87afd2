package category

import (
	"context"
	"net/url"

	"keyfront/internal/query"
)

const categoriesPath = "/api/categories"

type Getter interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
}

// Service reads the category list. Categories change rarely, so the cache
// window is much longer than the catalog's.
type Service interface {
	Categories(ctx context.Context) query.Result[[]Category]
}

type service struct {
	api    Getter
	cache  *query.Cache[[]Category]
	tenant string
}

func NewService(api Getter, cache *query.Cache[[]Category], tenant string) Service {
	return &service{api: api, cache: cache, tenant: tenant}
}

func (s *service) Categories(ctx context.Context) query.Result[[]Category] {
	key := categoriesPath + "|" + s.tenant
	return s.cache.Get(ctx, key, func(ctx context.Context) ([]Category, error) {
		var categories []Category
		if err := s.api.Get(ctx, categoriesPath, nil, &categories); err != nil {
			return nil, err
		}
		return categories, nil
	})
}
