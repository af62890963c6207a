package utils

import "fmt"

const (
	DefaultChildDiscount = 0.30
	DefaultTaxRate       = 0.0
)

// PricingPolicy is the single source of truth for booking totals.
type PricingPolicy struct {
	ChildDiscount float64
	TaxRate       float64
}

func DefaultPricing() PricingPolicy {
	return PricingPolicy{ChildDiscount: DefaultChildDiscount, TaxRate: DefaultTaxRate}
}

// Quote is the price breakdown shown to the user before submission.
type Quote struct {
	PricePerPerson float64 `json:"price_per_person"`
	Seats          int     `json:"seats"`
	Children       int     `json:"children"`
	Subtotal       float64 `json:"subtotal"`
	ChildDiscount  float64 `json:"child_discount"`
	Tax            float64 `json:"tax"`
	Total          float64 `json:"total"`
	TotalDisplay   string  `json:"total_display"`
}

// Quote computes price × seats, minus the child discount for declared
// children, plus tax, rounded to whole currency units.
func (p PricingPolicy) Quote(pricePerPerson float64, seats, children int) (Quote, error) {
	if pricePerPerson <= 0 {
		return Quote{}, fmt.Errorf("price per person must be positive")
	}
	if seats < 1 {
		return Quote{}, fmt.Errorf("seats must be at least 1")
	}
	if children < 0 || children > seats {
		return Quote{}, fmt.Errorf("children must be between 0 and %d", seats)
	}

	subtotal := pricePerPerson * float64(seats)
	discount := RoundCents(pricePerPerson * float64(children) * p.ChildDiscount)
	tax := RoundCents((subtotal - discount) * p.TaxRate)
	total := RoundCurrency(subtotal - discount + tax)

	return Quote{
		PricePerPerson: pricePerPerson,
		Seats:          seats,
		Children:       children,
		Subtotal:       subtotal,
		ChildDiscount:  discount,
		Tax:            tax,
		Total:          total,
		TotalDisplay:   FormatRupee(total),
	}, nil
}
