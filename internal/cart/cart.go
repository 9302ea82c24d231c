// Package cart is the ordering widget's in-memory line aggregation.
// There is no subscription model: callers re-render after every
// mutation. Cart lifetime is the page session; a successful submission
// clears it.
package cart

import (
	"strconv"
	"strings"
)

// Line is one aggregated cart entry, keyed by product identity.
type Line struct {
	ProductID int    `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

// Cart aggregates lines by product id, preserving add order.
type Cart struct {
	lines []Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add merges quantity into an existing line with the same product id,
// or appends a new line. Quantities below 1 are coerced to 1.
func (c *Cart) Add(productID int, name string, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Quantity += quantity
			return
		}
	}
	c.lines = append(c.lines, Line{ProductID: productID, Name: name, Quantity: quantity})
}

// Remove deletes the line at the given render-order index. Removal is
// positional and irreversible; out-of-range indexes are ignored.
func (c *Cart) Remove(index int) bool {
	if index < 0 || index >= len(c.lines) {
		return false
	}
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a snapshot of the current lines in render order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len reports the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// TotalItems sums quantities across all lines.
func (c *Cart) TotalItems() int {
	total := 0
	for _, l := range c.lines {
		total += l.Quantity
	}
	return total
}

// ParseQuantity reads a quantity from an adjacent numeric input.
// Missing, non-numeric, and non-positive values all default to 1.
func ParseQuantity(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
