package events

import "github.com/rs/zerolog"

// Topic names.
const (
	TopicCitySelected     = "city-selected"
	TopicViewChanged      = "view-changed"
	TopicRefreshRequested = "data-refresh-requested"
	TopicDataReloaded     = "data-reloaded"
)

// Refresh is the payload of a refresh request.
type Refresh struct {
	// Source names who asked, for logs.
	Source string
}

// Bus groups the application's topics.
type Bus struct {
	CitySelected     *Topic[string]
	ViewChanged      *Topic[string]
	RefreshRequested *Topic[Refresh]
	DataReloaded     *Topic[string]
}

// NewBus creates all topics.
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		CitySelected:     NewTopic[string](TopicCitySelected, logger),
		ViewChanged:      NewTopic[string](TopicViewChanged, logger),
		RefreshRequested: NewTopic[Refresh](TopicRefreshRequested, logger),
		DataReloaded:     NewTopic[string](TopicDataReloaded, logger),
	}
}
