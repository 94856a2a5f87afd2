// Package shop composes the filter state, debouncer, query caches and cart
// pipeline into one parameterized storefront, shared by every tenant variant
// instead of duplicated per variant.
package shop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"keyfront/internal/api"
	"keyfront/internal/cart"
	"keyfront/internal/catalog"
	"keyfront/internal/debounce"
	"keyfront/internal/logger"
	"keyfront/internal/query"
	"keyfront/internal/session"

	"go.uber.org/zap"
)

type Options struct {
	Tenant   string
	Debounce time.Duration

	Catalog catalog.Service
	Cart    cart.Service
	Session *session.Session

	// Notifier receives the user-visible toasts; nil falls back to logging.
	Notifier Notifier
	// OnUnauthorized runs when a request answers 401 or the local token has
	// expired, e.g. a redirect to the login route.
	OnUnauthorized func()
}

type Storefront struct {
	opts     Options
	notifier Notifier

	filters *catalog.FilterState
	deb     *debounce.Debouncer[catalog.FilterSet]

	mu     sync.Mutex
	active catalog.FilterSet

	done      chan struct{}
	closeOnce sync.Once
}

// New wires a storefront. Filter edits flow through the debouncer; once a
// debounced set emits it becomes the active filter set and the catalog is
// refreshed in the background.
func New(opts Options) *Storefront {
	if opts.Debounce <= 0 {
		opts.Debounce = 300 * time.Millisecond
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = logNotifier{}
	}

	s := &Storefront{
		opts:     opts,
		notifier: notifier,
		deb:      debounce.New[catalog.FilterSet](opts.Debounce),
		done:     make(chan struct{}),
	}
	s.filters = catalog.NewFilterState(s.deb.Push)

	go s.watchFilters()
	return s
}

// SetFilters replaces the filter set. Callers carry unchanged fields over
// themselves; the catalog refresh happens only after the edits settle.
func (s *Storefront) SetFilters(f catalog.FilterSet) {
	s.filters.Set(f)
}

// Filters returns the filter set as currently edited, debounced or not.
func (s *Storefront) Filters() catalog.FilterSet {
	return s.filters.Current()
}

// Products returns the product list for the active (debounced) filter set.
func (s *Storefront) Products(ctx context.Context) query.Result[[]catalog.Product] {
	return s.opts.Catalog.Products(s.tenantCtx(ctx), s.activeFilters())
}

// CartLines returns the current cart contents.
func (s *Storefront) CartLines(ctx context.Context) query.Result[[]cart.CartLine] {
	return s.opts.Cart.Cart(s.tenantCtx(ctx))
}

// AddToCart runs the optimistic add for a product visible under the active
// filters. Failures roll back, surface a toast and, for auth failures, fire
// the login redirect.
func (s *Storefront) AddToCart(ctx context.Context, productID string, quantity int) error {
	ctx = s.tenantCtx(ctx)

	if s.opts.Session != nil {
		if err := s.opts.Session.Check(time.Now()); err != nil {
			s.unauthorized()
			return err
		}
	}

	active := s.activeFilters()
	line, err := s.opts.Cart.AddToCart(ctx, productID, quantity, func(id string) (catalog.Product, bool) {
		return s.opts.Catalog.Lookup(active, id)
	})
	if err != nil {
		switch {
		case errors.Is(err, api.ErrUnauthorized):
			s.unauthorized()
		case errors.Is(err, cart.ErrAddInFlight):
			// Quiet: the per-row spinner already shows the in-flight add.
		default:
			s.notifier.Error("Could not add item to cart")
		}
		return err
	}

	s.notifier.Notify(fmt.Sprintf("Added %s to cart", line.Product.Name))
	return nil
}

// Pending reports whether the add-to-cart spinner for productID should show.
func (s *Storefront) Pending(productID string) bool {
	return s.opts.Cart.Pending(productID)
}

// Reconnected refetches the cart after network connectivity returns. The
// catalog is deliberately left alone: cart freshness matters more, and a
// forced catalog reload would disrupt in-progress filtering.
func (s *Storefront) Reconnected(ctx context.Context) {
	res := s.opts.Cart.Refresh(s.tenantCtx(ctx))
	if res.Err != nil {
		s.notifier.Error("Could not refresh cart")
	}
}

// Close stops filter propagation. In-flight fetches keep running; their
// results land in the shared caches, not in this instance.
func (s *Storefront) Close() {
	s.closeOnce.Do(func() {
		s.deb.Stop()
		close(s.done)
	})
}

func (s *Storefront) watchFilters() {
	for {
		select {
		case <-s.done:
			return
		case f := <-s.deb.C():
			s.setActive(f)
			s.refreshCatalog(f)
		}
	}
}

// refreshCatalog warms the catalog cache for a freshly debounced filter set.
func (s *Storefront) refreshCatalog(f catalog.FilterSet) {
	ctx := s.tenantCtx(context.Background())
	res := s.opts.Catalog.Products(ctx, f)
	if res.Err != nil {
		logger.FromCtx(ctx).Warn("catalog refresh failed", zap.Error(res.Err))
		if !res.HasData {
			s.notifier.Error("Could not load products")
		}
	}
}

func (s *Storefront) unauthorized() {
	s.notifier.Error("Session expired, please sign in again")
	if s.opts.OnUnauthorized != nil {
		s.opts.OnUnauthorized()
	}
}

func (s *Storefront) setActive(f catalog.FilterSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = f
}

func (s *Storefront) activeFilters() catalog.FilterSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Storefront) tenantCtx(ctx context.Context) context.Context {
	if s.opts.Tenant == "" {
		return ctx
	}
	return logger.WithTenant(ctx, s.opts.Tenant)
}
