// Package featureflags provides runtime toggles for optional behavior.
package featureflags

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Well-known feature flag keys.
const (
	// FlagAttributionFeed enables fetching the attribution feed on load.
	// When off the store always uses the built-in catalog.
	FlagAttributionFeed = "attribution_feed"

	// FlagAPIDemo enables the sample API fetch on the data sources view.
	FlagAPIDemo = "api_demo"

	// FlagChartRendering enables SVG rendering of charts.
	FlagChartRendering = "chart_rendering"

	// FlagPersistView stores the current view in the preference store.
	FlagPersistView = "persist_view"
)

// Flag is a feature flag with its current value.
type Flag struct {
	Key       string    `json:"key"`
	Value     any       `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BoolValue returns the value as a boolean, or defaultValue when the flag is
// nil or not boolean.
func (f *Flag) BoolValue(defaultValue bool) bool {
	if f == nil {
		return defaultValue
	}
	switch v := f.Value.(type) {
	case bool:
		return v
	case float64:
		// JSON numbers
		return v != 0
	default:
		return defaultValue
	}
}

func (f *Flag) clone() *Flag {
	cp := *f
	return &cp
}

// DefaultFlags returns the flag defaults. Everything is on.
func DefaultFlags() map[string]*Flag {
	now := time.Now()
	flags := make(map[string]*Flag)
	for _, key := range []string{FlagAttributionFeed, FlagAPIDemo, FlagChartRendering, FlagPersistView} {
		flags[key] = &Flag{Key: key, Value: true, UpdatedAt: now}
	}
	return flags
}

// ParseOverrides parses "key=bool,key=bool" as used by FEATURE_FLAGS.
func ParseOverrides(s string) ([]*Flag, error) {
	var out []*Flag
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, raw, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("feature flag %q: missing value", part)
		}
		val, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("feature flag %q: %w", key, err)
		}
		out = append(out, &Flag{Key: strings.TrimSpace(key), Value: val})
	}
	return out, nil
}
