package cart

import (
	"fmt"
	"time"
)

// Cart holds what one visitor intends to buy. Items keep insertion order and
// there is at most one item per product.
type Cart struct {
	VisitorUID   string
	Items        []CartItem
	CreatedAt    time.Time
	LastModified *time.Time
}

// CartItem snapshots the display fields of a product at add-time.
type CartItem struct {
	ProductUID string
	Name       string
	Price      int // in cents
	Quantity   int
}

func (i CartItem) TotalPrice() int {
	return i.Price * i.Quantity
}

func (i CartItem) GetPriceFormatted() string {
	return formatPrice(i.Price)
}

func (i CartItem) GetTotalPriceFormatted() string {
	return formatPrice(i.TotalPrice())
}

func (c Cart) TotalCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

func (c Cart) TotalPrice() int {
	total := 0
	for _, item := range c.Items {
		total += item.TotalPrice()
	}
	return total
}

func (c Cart) GetTotalPriceFormatted() string {
	return formatPrice(c.TotalPrice())
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func formatPrice(cents int) string {
	return fmt.Sprintf("₹ %.2f", float64(cents)/100.0)
}
