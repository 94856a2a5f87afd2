package cart

import (
	"context"
	"net/url"

	"keyfront/internal/catalog"
	"keyfront/internal/logger"
	"keyfront/internal/metrics"
	"keyfront/internal/query"

	"go.uber.org/zap"
)

const cartPath = "/api/cart"

// API is the slice of the REST client the cart needs.
type API interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, payload any, out any) error
}

// ProductLookup resolves a product from the catalog cache, no network.
type ProductLookup func(productID string) (catalog.Product, bool)

// Service owns the cart cache slot and is its only writer outside of fetch
// responses.
type Service interface {
	// Cart returns the current cart contents, cached per tenant/user.
	Cart(ctx context.Context) query.Result[[]CartLine]
	// Refresh forces a refetch, e.g. after a network reconnect.
	Refresh(ctx context.Context) query.Result[[]CartLine]
	// AddToCart runs the optimistic pipeline: snapshot, synthesize, write,
	// request, reconcile or roll back. The pending marker for productID is
	// cleared no matter how the mutation settles.
	AddToCart(ctx context.Context, productID string, quantity int, lookup ProductLookup) (*CartLine, error)
	// Pending reports whether an add for productID is still in flight.
	Pending(productID string) bool
	// Stats exposes the mutation counters.
	Stats() *metrics.MutationStats
}

type service struct {
	api     API
	cache   *query.Cache[[]CartLine]
	pending *pendingSet
	tenant  string
	stats   metrics.MutationStats
}

func NewService(api API, cache *query.Cache[[]CartLine], tenant string) Service {
	return &service{
		api:     api,
		cache:   cache,
		pending: newPendingSet(),
		tenant:  tenant,
	}
}

type addRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (s *service) Cart(ctx context.Context) query.Result[[]CartLine] {
	return s.cache.Get(ctx, s.key(), s.fetchCart)
}

func (s *service) Refresh(ctx context.Context) query.Result[[]CartLine] {
	return s.cache.Refresh(ctx, s.key(), s.fetchCart)
}

func (s *service) AddToCart(
	ctx context.Context,
	productID string,
	quantity int,
	lookup ProductLookup,
) (*CartLine, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("product_id", productID),
		zap.Int("quantity", quantity),
	)

	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if lookup == nil {
		return nil, ErrProductNotFound
	}

	// One in-flight add per product; the guard is released when the
	// mutation settles, success or failure.
	if !s.pending.begin(productID) {
		return nil, ErrAddInFlight
	}
	defer s.pending.end(productID)

	product, ok := lookup(productID)
	if !ok {
		return nil, ErrProductNotFound
	}

	key := s.key()

	// 1. Snapshot the pre-mutation cart for rollback.
	snapshot := s.cache.Peek(key)

	// 2–3. Synthesize the optimistic line as a functional update of the
	// cache's current value, never of a stale local copy.
	s.cache.Update(key, func(current []CartLine, _ bool) []CartLine {
		return applyOptimisticAdd(current, product, quantity)
	})
	s.stats.Applied.Inc()

	// 4. Issue the request. Mutations are never retried.
	var confirmed CartLine
	if err := s.api.Post(ctx, cartPath, addRequest{ProductID: productID, Quantity: quantity}, &confirmed); err != nil {
		s.rollback(key, snapshot)
		s.stats.Rollbacks.Inc()
		log.Warn("add to cart failed, optimistic update rolled back", zap.Error(err))
		return nil, err
	}

	// 5. Replace the temporary line with the server-confirmed one.
	s.cache.Update(key, func(current []CartLine, _ bool) []CartLine {
		return reconcile(current, confirmed)
	})
	s.stats.Confirmed.Inc()

	log.Info("cart line confirmed", zap.String("line_id", confirmed.ID))
	return &confirmed, nil
}

func (s *service) Pending(productID string) bool {
	return s.pending.has(productID)
}

func (s *service) Stats() *metrics.MutationStats {
	return &s.stats
}

func (s *service) fetchCart(ctx context.Context) ([]CartLine, error) {
	var lines []CartLine
	if err := s.api.Get(ctx, cartPath, nil, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// rollback restores the pre-mutation snapshot in full. A cart that had never
// been fetched goes back to an empty slot, not an empty list.
func (s *service) rollback(key string, snapshot query.Result[[]CartLine]) {
	if !snapshot.HasData {
		s.cache.Invalidate(key)
		return
	}
	s.cache.Set(key, snapshot.Data)
}

func (s *service) key() string {
	return cartPath + "|" + s.tenant
}
