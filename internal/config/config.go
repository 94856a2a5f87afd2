package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for the cache/debounce tuning knobs.
const (
	DefaultCatalogStale  = 5 * time.Minute
	DefaultCartStale     = 2 * time.Minute
	DefaultCategoryStale = 30 * time.Minute
	DefaultCacheEvict    = 15 * time.Minute
	DefaultCacheSize     = 256
	DefaultDebounce      = 300 * time.Millisecond
	DefaultGetRetries    = 1
	DefaultHTTPTimeout   = 15 * time.Second
)

type Config struct {
	APIBaseURL  string
	Tenant      string
	AccessToken string
	LoginURL    string
	AppEnv      string

	CatalogStale  time.Duration
	CartStale     time.Duration
	CategoryStale time.Duration
	CacheEvict    time.Duration
	CacheSize     int
	Debounce      time.Duration
	GetRetries    int
	HTTPTimeout   time.Duration
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:  os.Getenv("API_BASE_URL"),
		Tenant:      os.Getenv("SHOP_TENANT"),
		AccessToken: os.Getenv("ACCESS_TOKEN"),
		LoginURL:    os.Getenv("LOGIN_URL"),
		AppEnv:      os.Getenv("APP_ENV"),

		CatalogStale:  getDuration("CATALOG_STALE", DefaultCatalogStale),
		CartStale:     getDuration("CART_STALE", DefaultCartStale),
		CategoryStale: getDuration("CATEGORY_STALE", DefaultCategoryStale),
		CacheEvict:    getDuration("CACHE_EVICT", DefaultCacheEvict),
		CacheSize:     getInt("CACHE_SIZE", DefaultCacheSize),
		Debounce:      getDuration("FILTER_DEBOUNCE", DefaultDebounce),
		GetRetries:    getInt("GET_RETRIES", DefaultGetRetries),
		HTTPTimeout:   getDuration("HTTP_TIMEOUT", DefaultHTTPTimeout),
	}

	if cfg.APIBaseURL == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
