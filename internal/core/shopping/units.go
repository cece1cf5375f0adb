package shopping

import (
	"math"

	"meal-planner/internal/core/ingredient"
)

type dimension int

const (
	mass dimension = iota + 1
	volume
)

type unitFactor struct {
	dim    dimension
	factor float64 // 換算為公克或毫升
}

var convertible = map[string]unitFactor{
	"mg":    {mass, 0.001},
	"g":     {mass, 1},
	"kg":    {mass, 1000},
	"oz":    {mass, 28.349523125},
	"lb":    {mass, 453.59237},
	"ml":    {volume, 1},
	"l":     {volume, 1000},
	"tsp":   {volume, 4.92892159375},
	"tbsp":  {volume, 14.78676478125},
	"fl oz": {volume, 29.5735295625},
	"cup":   {volume, 236.5882365},
	"pt":    {volume, 473.176473},
	"qt":    {volume, 946.352946},
	"gal":   {volume, 3785.411784},
}

// convert 同一維度內的單位換算
func convert(quantity float64, from, to string) (float64, bool) {
	if from == to {
		return quantity, true
	}
	f, ok := convertible[from]
	if !ok {
		return 0, false
	}
	t, ok := convertible[to]
	if !ok || f.dim != t.dim {
		return 0, false
	}
	return quantity * f.factor / t.factor, true
}

// sumQuantities 所有成員都有數量且單位相同或可換算時才加總
//
// 混合單位時換算為第一個成員的單位。
func sumQuantities(members []ingredient.Record) (*float64, string) {
	if len(members) == 0 {
		return nil, ""
	}
	target := members[0].Unit
	total := 0.0
	mixed := false
	for _, m := range members {
		if m.Quantity == nil {
			return nil, ""
		}
		if m.Unit != target {
			mixed = true
		}
		q, ok := convert(*m.Quantity, m.Unit, target)
		if !ok {
			return nil, ""
		}
		total += q
	}
	if mixed {
		total = math.Round(total*10000) / 10000
	}
	return &total, target
}
