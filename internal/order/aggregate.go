package order

import (
	"math"

	"github.com/shopspring/decimal"
)

// ItemTotal is the summed quantity of one distinct item.
type ItemTotal struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// Aggregate groups lines by exact item name and sums their quantities. The
// result follows the order in which each item first appears. Sums saturate
// at math.MaxInt instead of wrapping.
func Aggregate(lines []Line) []ItemTotal {
	var totals []ItemTotal
	index := make(map[string]int, len(lines))
	for _, l := range lines {
		if i, ok := index[l.Item]; ok {
			totals[i].Quantity = addQuantity(totals[i].Quantity, l.Quantity)
			continue
		}
		index[l.Item] = len(totals)
		totals = append(totals, ItemTotal{Item: l.Item, Quantity: l.Quantity})
	}
	return totals
}

func addQuantity(a, b int) int {
	if b > 0 && a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

// estimate prices the totals against the menu snapshot. It reports false
// when any item has no listed price.
func estimate(totals []ItemTotal, price func(string) (decimal.Decimal, bool)) (decimal.Decimal, bool) {
	sum := decimal.Zero
	if len(totals) == 0 {
		return sum, false
	}
	for _, t := range totals {
		p, ok := price(t.Item)
		if !ok {
			return decimal.Zero, false
		}
		sum = sum.Add(p.Mul(decimal.NewFromInt(int64(t.Quantity))))
	}
	return sum, true
}

// Totals aggregates the session's lines and prices them when every item is
// on the menu snapshot.
func (s *Session) Totals() (totals []ItemTotal, estimated decimal.Decimal, priced bool) {
	if s == nil {
		return nil, decimal.Zero, false
	}
	totals = Aggregate(s.Lines)
	estimated, priced = estimate(totals, s.Menu.Price)
	return totals, estimated, priced
}
