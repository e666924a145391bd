// Package comparison compares two cities metric by metric.
package comparison

import (
	"github.com/ecobalance/ecobalance/internal/city"
)

// Direction says which way a metric improves.
type Direction string

const (
	LowerIsBetter  Direction = "lower"
	HigherIsBetter Direction = "higher"
	Neutral        Direction = "neutral"
)

// Side of a comparison.
type Side string

const (
	SideNone  Side = ""
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Metric is one compared quantity.
type Metric struct {
	Key       string
	Label     string
	Unit      string
	Section   string
	Direction Direction
	value     func(*city.City) float64
}

// Metrics lists the compared metrics in display order.
var Metrics = []Metric{
	{"total_co2", "Total CO₂ Emissions", "tonnes/year", "Emissions", LowerIsBetter,
		func(c *city.City) float64 { return c.Emissions.TotalCO2TonsPerYear }},
	{"per_capita", "Per Capita Emissions", "tonnes", "Emissions", LowerIsBetter,
		func(c *city.City) float64 { return c.Emissions.PerCapitaTons }},
	{"tree_canopy", "Tree Canopy Coverage", "%", "Vegetation", HigherIsBetter,
		func(c *city.City) float64 { return c.Vegetation.TreeCanopyPercent }},
	{"green_space", "Green Space Percentage", "%", "Vegetation", HigherIsBetter,
		func(c *city.City) float64 { return c.Vegetation.GreenSpacePercent }},
	{"parks_area", "Parks Area", "km²", "Vegetation", HigherIsBetter,
		func(c *city.City) float64 { return c.Vegetation.ParksAreaKm2 }},
	{"sequestration", "Carbon Sequestration", "tonnes/year", "Vegetation", HigherIsBetter,
		func(c *city.City) float64 { return c.Vegetation.CarbonSequestrationTonsPerYear }},
	{"sdg13", "SDG 13 Score", "/100", "Performance", HigherIsBetter,
		func(c *city.City) float64 { return c.SDG13Score }},
	{"population", "Population", "", "City", Neutral,
		func(c *city.City) float64 { return float64(c.Population) }},
	{"area", "Area", "km²", "City", Neutral,
		func(c *city.City) float64 { return c.AreaKm2 }},
}

// MetricResult is one row of a comparison.
type MetricResult struct {
	Key       string    `json:"key"`
	Label     string    `json:"label"`
	Unit      string    `json:"unit,omitempty"`
	Section   string    `json:"section"`
	Direction Direction `json:"direction"`
	Left      float64   `json:"left"`
	Right     float64   `json:"right"`
	Better    Side      `json:"better,omitempty"`
}

// better picks the side that wins a metric. Neutral metrics have no winner,
// and neither do equal values, whatever the direction.
func better(d Direction, left, right float64) Side {
	if left == right {
		return SideNone
	}
	switch d {
	case LowerIsBetter:
		if left < right {
			return SideLeft
		}
		return SideRight
	case HigherIsBetter:
		if left > right {
			return SideLeft
		}
		return SideRight
	default:
		return SideNone
	}
}

// State of a comparison request.
type State string

const (
	StateGuidance State = "guidance"
	StateNotFound State = "not_found"
	StateCompared State = "compared"
)

// Messages shown for the non-compared states.
const (
	MessageGuidance = "Please select two different cities to compare."
	MessageNotFound = "Error loading city data."
)

// Result is the outcome of comparing two selections.
type Result struct {
	State   State          `json:"state"`
	Message string         `json:"message,omitempty"`
	Left    *city.City     `json:"left,omitempty"`
	Right   *city.City     `json:"right,omitempty"`
	Metrics []MetricResult `json:"metrics,omitempty"`
	Winner  Side           `json:"winner,omitempty"`
	Tie     bool           `json:"tie"`
	Summary string         `json:"summary,omitempty"`
}

// WinnerCity returns the winning city, nil on a tie or without a comparison.
func (r Result) WinnerCity() *city.City {
	switch r.Winner {
	case SideLeft:
		return r.Left
	case SideRight:
		return r.Right
	default:
		return nil
	}
}

// Compare compares two cities. The winner has the strictly higher score.
func Compare(left, right *city.City) Result {
	res := Result{
		State:   StateCompared,
		Left:    left,
		Right:   right,
		Metrics: make([]MetricResult, 0, len(Metrics)),
	}
	for _, m := range Metrics {
		l, r := m.value(left), m.value(right)
		res.Metrics = append(res.Metrics, MetricResult{
			Key:       m.Key,
			Label:     m.Label,
			Unit:      m.Unit,
			Section:   m.Section,
			Direction: m.Direction,
			Left:      l,
			Right:     r,
			Better:    better(m.Direction, l, r),
		})
	}

	switch {
	case left.EcoBalanceScore > right.EcoBalanceScore:
		res.Winner = SideLeft
		res.Summary = left.Name + " has a better EcoBalance Score"
	case right.EcoBalanceScore > left.EcoBalanceScore:
		res.Winner = SideRight
		res.Summary = right.Name + " has a better EcoBalance Score"
	default:
		res.Tie = true
		res.Summary = "Both cities have equal EcoBalance Scores"
	}
	return res
}

// Guidance is the result for an incomplete or identical selection.
func Guidance() Result {
	return Result{State: StateGuidance, Message: MessageGuidance}
}

// NotFound is the result when a selected city is not loaded.
func NotFound() Result {
	return Result{State: StateNotFound, Message: MessageNotFound}
}

// Metric returns the result row for key.
func (r Result) Metric(key string) (MetricResult, bool) {
	for _, m := range r.Metrics {
		if m.Key == key {
			return m, true
		}
	}
	return MetricResult{}, false
}
