package cart

import (
	"keyfront/internal/catalog"

	"github.com/google/uuid"
)

func newTempID() string {
	return tempIDPrefix + uuid.NewString()
}

// applyOptimisticAdd returns the line list with quantity of p added: an
// existing line for the product is incremented, otherwise a temporary line
// is appended. Pure: the input slice and its lines are never mutated, which
// keeps earlier snapshots intact for rollback.
func applyOptimisticAdd(current []CartLine, p catalog.Product, quantity int) []CartLine {
	next := make([]CartLine, len(current))
	copy(next, current)

	for i, line := range next {
		if line.ProductID == p.ID {
			line.Quantity += quantity
			next[i] = line
			return next
		}
	}

	return append(next, CartLine{
		ID:        newTempID(),
		ProductID: p.ID,
		Quantity:  quantity,
		Product:   p,
	})
}

// reconcile replaces the line for the confirmed product with the server's
// line, leaving exactly one line per product: the temporary line never
// coexists with its confirmed replacement.
func reconcile(current []CartLine, confirmed CartLine) []CartLine {
	next := make([]CartLine, 0, len(current))
	replaced := false

	for _, line := range current {
		if line.ProductID == confirmed.ProductID {
			if !replaced {
				next = append(next, confirmed)
				replaced = true
			}
			continue
		}
		next = append(next, line)
	}

	if !replaced {
		next = append(next, confirmed)
	}
	return next
}
