package service

import (
	"reservas-api/internal/domain"
)

// PricingEngine computes reservation totals. A reservation is priced
// exactly one way: product price times quantity, or the package's
// precomputed total. Package totals are trusted as stored and never
// recomputed from constituent product prices, so they can drift if a
// product price changes after the package was built.
type PricingEngine struct{}

// NewPricingEngine creates a PricingEngine
func NewPricingEngine() PricingEngine {
	return PricingEngine{}
}

// PriceForProduct returns product price multiplied by quantity
func (PricingEngine) PriceForProduct(product *domain.Product, quantity int) float64 {
	return product.Price * float64(quantity)
}

// PriceForPackage returns the package's precomputed total
func (PricingEngine) PriceForPackage(pkg *domain.CustomPackage) float64 {
	return pkg.TotalAmount
}
