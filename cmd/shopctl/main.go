package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"keyfront/internal/api"
	"keyfront/internal/cart"
	"keyfront/internal/catalog"
	"keyfront/internal/category"
	"keyfront/internal/config"
	"keyfront/internal/logger"
	"keyfront/internal/order"
	"keyfront/internal/query"
	"keyfront/internal/session"
	"keyfront/internal/shop"
	"keyfront/internal/wallet"
)

const usage = `usage: shopctl <command> [flags]

commands:
  products    browse the catalog (supports filter flags)
  add         add a product to the cart
  cart        show the current cart
  categories  list filter categories
  orders      show order history
  export      export orders and license keys as CSV
  wallet      show wallet balance
`

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	sess := session.New(cfg.AccessToken)
	client := api.NewClient(api.Options{
		BaseURL: cfg.APIBaseURL,
		Tenant:  cfg.Tenant,
		Tokens:  sess,
		Timeout: cfg.HTTPTimeout,
		Retries: cfg.GetRetries,
	})

	catalogCache := query.New[[]catalog.Product]("catalog", cfg.CacheSize, cfg.CatalogStale, cfg.CacheEvict)
	cartCache := query.New[[]cart.CartLine]("cart", cfg.CacheSize, cfg.CartStale, cfg.CacheEvict)
	categoryCache := query.New[[]category.Category]("categories", 8, cfg.CategoryStale, cfg.CacheEvict)
	orderCache := query.New[[]order.Order]("orders", 8, cfg.CartStale, cfg.CacheEvict)
	walletCache := query.New[wallet.Wallet]("wallet", 4, cfg.CartStale, cfg.CacheEvict)

	catalogSvc := catalog.NewService(client, catalogCache, cfg.Tenant)
	cartSvc := cart.NewService(client, cartCache, cfg.Tenant)
	categorySvc := category.NewService(client, categoryCache, cfg.Tenant)
	orderSvc := order.NewService(client, orderCache, cfg.Tenant)
	walletSvc := wallet.NewService(client, walletCache, cfg.Tenant)

	store := shop.New(shop.Options{
		Tenant:   cfg.Tenant,
		Debounce: cfg.Debounce,
		Catalog:  catalogSvc,
		Cart:     cartSvc,
		Session:  sess,
		OnUnauthorized: func() {
			fmt.Fprintf(os.Stderr, "session expired, sign in at %s\n", cfg.LoginURL)
		},
	})
	defer store.Close()

	ctx := context.Background()

	var err error
	switch os.Args[1] {
	case "products":
		err = runProducts(ctx, store, cfg.Debounce, os.Args[2:])
	case "add":
		err = runAdd(ctx, store, cfg.Debounce, os.Args[2:])
	case "cart":
		err = runCart(ctx, store)
	case "categories":
		err = runCategories(ctx, categorySvc)
	case "orders":
		err = runOrders(ctx, orderSvc)
	case "export":
		err = runExport(ctx, orderSvc, os.Args[2:])
	case "wallet":
		err = runWallet(ctx, walletSvc)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func filterFlags(fs *flag.FlagSet) *catalog.FilterSet {
	f := &catalog.FilterSet{}
	fs.StringVar(&f.Search, "search", "", "free-text search")
	fs.StringVar(&f.Region, "region", "", "license region")
	fs.StringVar(&f.Platform, "platform", "", "platform")
	fs.StringVar(&f.PriceMin, "price-min", "", "minimum price")
	fs.StringVar(&f.PriceMax, "price-max", "", "maximum price")
	fs.StringVar(&f.StockLevel, "stock", "", "stock level")
	fs.StringVar(&f.DateAdded, "date-added", "", "date-added bucket")
	fs.StringVar(&f.SKU, "sku", "", "exact SKU")
	return f
}

// settleFilters pushes the filter set through the storefront and waits out
// the debounce window so the one-shot CLI sees the settled catalog.
func settleFilters(store *shop.Storefront, filters catalog.FilterSet, debounce time.Duration) {
	store.SetFilters(filters)
	time.Sleep(debounce + 50*time.Millisecond)
}

func runProducts(ctx context.Context, store *shop.Storefront, debounce time.Duration, args []string) error {
	fs := flag.NewFlagSet("products", flag.ExitOnError)
	filters := filterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	settleFilters(store, *filters, debounce)

	res := store.Products(ctx)
	if res.Err != nil && !res.HasData {
		return res.Err
	}
	if res.Err != nil {
		fmt.Fprintln(os.Stderr, "warning: showing cached products:", res.Err)
	}

	for _, p := range res.Data {
		fmt.Printf("%-12s %-10s %-40s %8s  stock:%d\n", p.ID, p.SKU, p.Name, p.Price.StringFixed(2), p.StockCount)
	}
	fmt.Printf("%d products\n", len(res.Data))
	return nil
}

func runAdd(ctx context.Context, store *shop.Storefront, debounce time.Duration, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	productID := fs.String("product", "", "product id")
	quantity := fs.Int("qty", 1, "quantity")
	filters := filterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *productID == "" {
		return fmt.Errorf("missing -product")
	}

	// The cart line denormalizes product data from the catalog cache, so the
	// catalog for the active filters has to be loaded first.
	settleFilters(store, *filters, debounce)
	if res := store.Products(ctx); res.Err != nil && !res.HasData {
		return res.Err
	}

	if err := store.AddToCart(ctx, *productID, *quantity); err != nil {
		return err
	}
	return runCart(ctx, store)
}

func runCart(ctx context.Context, store *shop.Storefront) error {
	res := store.CartLines(ctx)
	if res.Err != nil && !res.HasData {
		return res.Err
	}

	for _, line := range res.Data {
		marker := ""
		if line.Optimistic() {
			marker = " (pending)"
		}
		fmt.Printf("%-12s x%-3d %-40s %8s%s\n", line.ProductID, line.Quantity, line.Product.Name, line.Total().StringFixed(2), marker)
	}
	fmt.Printf("%d lines\n", len(res.Data))
	return nil
}

func runCategories(ctx context.Context, svc category.Service) error {
	res := svc.Categories(ctx)
	if res.Err != nil && !res.HasData {
		return res.Err
	}
	for _, c := range res.Data {
		fmt.Printf("%-12s %s\n", c.ID, c.Name)
	}
	return nil
}

func runOrders(ctx context.Context, svc order.Service) error {
	res := svc.Orders(ctx)
	if res.Err != nil && !res.HasData {
		return res.Err
	}
	for _, o := range res.Data {
		fmt.Printf("%-12s %-10s %s %8s %s\n", o.ID, o.Status, o.CreatedAt.Format("2006-01-02"), o.Total.StringFixed(2), o.Currency)
	}
	return nil
}

func runExport(ctx context.Context, svc order.Service, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("o", "orders.csv", "output file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res := svc.Orders(ctx)
	if res.Err != nil && !res.HasData {
		return res.Err
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := order.ExportCSV(f, res.Data); err != nil {
		return err
	}
	fmt.Printf("exported %d orders to %s\n", len(res.Data), *out)
	return nil
}

func runWallet(ctx context.Context, svc wallet.Service) error {
	res := svc.Wallet(ctx)
	if res.Err != nil && !res.HasData {
		return res.Err
	}

	fmt.Printf("balance: %s %s\n", res.Data.Balance.StringFixed(2), res.Data.Currency)
	for _, e := range res.Data.Entries {
		fmt.Printf("%-12s %-10s %8s  %s\n", e.ID, e.Kind, e.Amount.StringFixed(2), e.Note)
	}
	return nil
}
