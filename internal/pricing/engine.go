package pricing

// Money is a whole-rupiah amount.
type Money = int64

// Line is a cart line. DiscountPrice, when set, replaces Price.
type Line struct {
	ProductID     string `json:"product_id" validate:"required"`
	Qty           int    `json:"quantity" validate:"gt=0"`
	Price         Money  `json:"price" validate:"gte=0"`
	DiscountPrice *Money `json:"discount_price,omitempty" validate:"omitempty,gte=0"`
}

// UnitPrice returns the effective per-unit price.
func (l Line) UnitPrice() Money {
	if l.DiscountPrice != nil {
		return *l.DiscountPrice
	}
	return l.Price
}

// Summary aggregates computed pricing components.
type Summary struct {
	Subtotal Money `json:"subtotal"`
	Delivery Money `json:"delivery_fee"`
	Discount Money `json:"discount"`
	Total    Money `json:"total"`
}

// Subtotal sums the effective line prices. Non-positive quantities are skipped.
func Subtotal(lines []Line) Money {
	var subtotal Money
	for _, l := range lines {
		if l.Qty <= 0 {
			continue
		}
		subtotal += Money(l.Qty) * l.UnitPrice()
	}
	return subtotal
}

// Compute returns subtotal + delivery - discount. The discount never exceeds the
// subtotal, so delivery is always charged in full.
func Compute(lines []Line, delivery, discount Money) Summary {
	subtotal := Subtotal(lines)
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	if delivery < 0 {
		delivery = 0
	}
	return Summary{
		Subtotal: subtotal,
		Delivery: delivery,
		Discount: discount,
		Total:    subtotal + delivery - discount,
	}
}
