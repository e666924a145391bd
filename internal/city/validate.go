package city

import (
	"fmt"
	"math"
)

// Severity of a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single problem found in a city collection.
type Issue struct {
	CityID   string
	Severity Severity
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.CityID, i.Message)
}

const sectorTolerance = 0.5

// Validate checks a collection for duplicate ids, implausible values and
// stored ranks that disagree with the score.
func Validate(cities []*City) []Issue {
	var issues []Issue
	seen := make(map[string]bool, len(cities))

	for _, c := range cities {
		if c.ID == "" {
			issues = append(issues, Issue{Severity: SeverityError, Message: "missing id"})
			continue
		}
		if seen[c.ID] {
			issues = append(issues, Issue{CityID: c.ID, Severity: SeverityError, Message: "duplicate id"})
		}
		seen[c.ID] = true

		if c.Population <= 0 {
			issues = append(issues, Issue{CityID: c.ID, Severity: SeverityError, Message: "population must be positive"})
		}

		var sum float64
		for _, pct := range c.Emissions.Sectors {
			sum += pct
		}
		if math.Abs(sum-100) > sectorTolerance {
			issues = append(issues, Issue{
				CityID:   c.ID,
				Severity: SeverityError,
				Message:  fmt.Sprintf("sectors sum to %.1f, want 100", sum),
			})
		}

		if band := c.Band(); c.ScoreRank != band {
			issues = append(issues, Issue{
				CityID:   c.ID,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("stored rank %s but score %.2f is %s", c.ScoreRank, c.EcoBalanceScore, band),
			})
		}
	}
	return issues
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}
