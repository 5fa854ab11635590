// Package kafka consumes tariff-data refresh events so cached catalog and
// program data never outlives a published revision.
package kafka

import (
	"encoding/json"
	"time"
)

// Topic constants.
const (
	// TopicCatalogRefreshed announces that a new HTS revision has been
	// loaded into the catalog store.
	TopicCatalogRefreshed = "tariff.catalog.refreshed"

	// TopicProgramsRefreshed announces that program data (Section 301
	// lists, country profiles, the AD/CVD watch list) has changed.
	TopicProgramsRefreshed = "tariff.programs.refreshed"
)

// RefreshEvent is the payload of both refresh topics.
type RefreshEvent struct {
	EventID     string    `json:"event_id"`
	DataVersion string    `json:"data_version"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// ParseRefreshEvent decodes a refresh event payload.
func ParseRefreshEvent(data []byte) (*RefreshEvent, error) {
	var ev RefreshEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
