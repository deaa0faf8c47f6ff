// Package events defines the events emitted when mappings are created.
package events

import "time"

// TopicMappingCreated is the topic mapping events are published to.
const TopicMappingCreated = "mapping.created"

// MappingCreatedEvent is emitted after a short URL mapping has been persisted.
type MappingCreatedEvent struct {
	ShortURL  string    `json:"shortUrl"`
	Code      string    `json:"code"`
	LongURL   string    `json:"longUrl"`
	Salt      int       `json:"salt"`
	CreatedAt time.Time `json:"createdAt"`
	RequestID string    `json:"requestId,omitempty"`
}
