// Package estimator is the pluggable AI count-suggestion port. The engine
// only consumes quantities and confidence scores; the model behind them is
// swappable.
package estimator

import (
	"context"
)

// ItemEstimate is the suggestion for one SKU line.
type ItemEstimate struct {
	SkuID      uint
	Quantity   int
	Confidence float64
}

// Result is one estimation pass over a pallet's photos.
type Result struct {
	Items      []ItemEstimate
	Confidence float64 // pallet aggregate
}

// Estimator produces advisory counts from a pallet's photo references.
type Estimator interface {
	Estimate(ctx context.Context, photoRefs []string, skuIDs []uint) (*Result, error)
}

// Static returns the same quantity and confidence for every SKU. Used in
// tests and as the dev fallback when no vision API is configured.
type Static struct {
	Quantity   int
	Confidence float64
}

func NewStatic(quantity int, confidence float64) *Static {
	return &Static{Quantity: quantity, Confidence: confidence}
}

func (s *Static) Estimate(_ context.Context, _ []string, skuIDs []uint) (*Result, error) {
	result := &Result{Confidence: s.Confidence}
	for _, skuID := range skuIDs {
		result.Items = append(result.Items, ItemEstimate{
			SkuID:      skuID,
			Quantity:   s.Quantity,
			Confidence: s.Confidence,
		})
	}
	return result, nil
}
