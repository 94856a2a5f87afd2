package wallet

import (
	"context"
	"net/url"

	"keyfront/internal/query"
)

const walletPath = "/api/wallet"

type Getter interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
}

// Service reads the wallet. Balance freshness matters as much as the cart's,
// so it shares the short cache window.
type Service interface {
	Wallet(ctx context.Context) query.Result[Wallet]
}

type service struct {
	api    Getter
	cache  *query.Cache[Wallet]
	tenant string
}

func NewService(api Getter, cache *query.Cache[Wallet], tenant string) Service {
	return &service{api: api, cache: cache, tenant: tenant}
}

func (s *service) Wallet(ctx context.Context) query.Result[Wallet] {
	key := walletPath + "|" + s.tenant
	return s.cache.Get(ctx, key, func(ctx context.Context) (Wallet, error) {
		var w Wallet
		if err := s.api.Get(ctx, walletPath, nil, &w); err != nil {
			return Wallet{}, err
		}
		return w, nil
	})
}
