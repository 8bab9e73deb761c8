package order

import (
	"math"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/an26179529/GroupBot/internal/catalog"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name  string
		lines []Line
		want  []ItemTotal
	}{
		{
			name:  "first occurrence order and sums",
			lines: []Line{{Item: "A", Quantity: 2}, {Item: "B", Quantity: 1}, {Item: "A", Quantity: 3}},
			want:  []ItemTotal{{Item: "A", Quantity: 5}, {Item: "B", Quantity: 1}},
		},
		{
			name:  "not sorted alphabetically",
			lines: []Line{{Item: "Z", Quantity: 1}, {Item: "A", Quantity: 9}},
			want:  []ItemTotal{{Item: "Z", Quantity: 1}, {Item: "A", Quantity: 9}},
		},
		{
			name:  "case sensitive",
			lines: []Line{{Item: "tea", Quantity: 1}, {Item: "Tea", Quantity: 1}},
			want:  []ItemTotal{{Item: "tea", Quantity: 1}, {Item: "Tea", Quantity: 1}},
		},
		{
			name:  "saturates instead of wrapping",
			lines: []Line{{Item: "A", Quantity: math.MaxInt}, {Item: "A", Quantity: math.MaxInt}, {Item: "A", Quantity: 1}},
			want:  []ItemTotal{{Item: "A", Quantity: math.MaxInt}},
		},
		{
			name:  "empty",
			lines: nil,
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Aggregate(tt.lines); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Aggregate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEstimate(t *testing.T) {
	menu := catalog.Menu{
		{Name: "雞腿飯", Price: decimal.NewFromInt(100)},
		{Name: "排骨飯", Price: decimal.NewFromInt(90)},
	}
	sum, ok := estimate([]ItemTotal{{Item: "雞腿飯", Quantity: 2}, {Item: "排骨飯", Quantity: 1}}, menu.Price)
	if !ok || !sum.Equal(decimal.NewFromInt(290)) {
		t.Errorf("estimate() = %v, %v, want 290, true", sum, ok)
	}
	if _, ok := estimate([]ItemTotal{{Item: "可樂", Quantity: 1}}, menu.Price); ok {
		t.Error("estimate() priced an item missing from the menu")
	}
	if _, ok := estimate(nil, menu.Price); ok {
		t.Error("estimate() of no items should not report a total")
	}
}

func TestSessionTotals(t *testing.T) {
	s := &Session{
		Restaurant: "池上便當",
		Menu:       catalog.Menu{{Name: "雞腿飯", Price: decimal.NewFromInt(100)}},
		Lines: []Line{
			{Item: "雞腿飯", Quantity: 1},
			{Item: "雞腿飯", Quantity: 2},
		},
	}
	totals, sum, ok := s.Totals()
	if len(totals) != 1 || totals[0].Quantity != 3 {
		t.Errorf("totals = %+v", totals)
	}
	if !ok || !sum.Equal(decimal.NewFromInt(300)) {
		t.Errorf("estimate = %v, %v", sum, ok)
	}

	var nilSession *Session
	if totals, _, ok := nilSession.Totals(); totals != nil || ok {
		t.Errorf("nil Totals() = %v, %v", totals, ok)
	}
}
