package catalog

import (
	"net/url"
	"sync"
)

// FilterSet holds the user-chosen catalog filters. An empty field means "no
// constraint". Nothing is validated client-side: an empty price bound means
// unbounded and non-numeric text is passed through to the backend as-is.
type FilterSet struct {
	Search     string
	Region     string
	Platform   string
	PriceMin   string
	PriceMax   string
	StockLevel string
	DateAdded  string
	SKU        string
}

// Values builds the query string for /api/products, skipping empty fields.
func (f FilterSet) Values() url.Values {
	q := url.Values{}
	set := func(key, val string) {
		if val != "" {
			q.Set(key, val)
		}
	}

	set("search", f.Search)
	set("region", f.Region)
	set("platform", f.Platform)
	set("priceMin", f.PriceMin)
	set("priceMax", f.PriceMax)
	set("stockLevel", f.StockLevel)
	set("dateAdded", f.DateAdded)
	set("sku", f.SKU)
	return q
}

// Key serializes the filter set into a stable cache-key component.
// url.Values.Encode sorts by key, so equal filter sets share a key.
func (f FilterSet) Key() string {
	return f.Values().Encode()
}

// FilterState is the page-scoped holder of the current FilterSet. The setter
// replaces the whole object; callers carry over unchanged fields themselves.
// Every replacement is forwarded to the registered sink (the debouncer).
type FilterState struct {
	mu       sync.Mutex
	current  FilterSet
	onChange func(FilterSet)
}

func NewFilterState(onChange func(FilterSet)) *FilterState {
	return &FilterState{onChange: onChange}
}

// Current returns the filter set as last set.
func (s *FilterState) Current() FilterSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set replaces the filter set and notifies the sink.
func (s *FilterState) Set(f FilterSet) {
	s.mu.Lock()
	s.current = f
	sink := s.onChange
	s.mu.Unlock()

	if sink != nil {
		sink(f)
	}
}
