package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr(m Money) *Money { return &m }

func TestComputeUsesDiscountPrice(t *testing.T) {
	lines := []Line{
		{ProductID: "a", Qty: 2, Price: 50000, DiscountPrice: ptr(40000)},
		{ProductID: "b", Qty: 1, Price: 25000},
		{ProductID: "c", Qty: 0, Price: 99999},
	}
	s := Compute(lines, 12000, 10000)
	require.Equal(t, Money(105000), s.Subtotal)
	require.Equal(t, Money(12000), s.Delivery)
	require.Equal(t, Money(10000), s.Discount)
	require.Equal(t, Money(107000), s.Total)
}

func TestComputeClampsDiscountToSubtotal(t *testing.T) {
	s := Compute([]Line{{ProductID: "a", Qty: 1, Price: 20000}}, 5000, 30000)
	require.Equal(t, Money(20000), s.Discount)
	require.Equal(t, Money(5000), s.Total)
}

func TestFindDelivery(t *testing.T) {
	m, ok := FindDelivery(DefaultDeliveryMethods, "fast")
	require.True(t, ok)
	require.Equal(t, Money(12000), m.Fee)

	_, ok = FindDelivery(DefaultDeliveryMethods, "drone")
	require.False(t, ok)
}
