package cart

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidQuantity = errors.New("invalid cart quantity")

	// -- Resource State --
	ErrProductNotFound = errors.New("product not found in catalog")
	ErrAddInFlight     = errors.New("add to cart already in flight for this product")
)
