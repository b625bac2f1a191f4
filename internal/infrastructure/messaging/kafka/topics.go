// Package kafka publishes lifecycle domain events to the message bus.
package kafka

import (
	"encoding/json"
	"time"
)

// Topic names, one per event family.
const (
	TopicPatentIngested      = "patent.ingested"
	TopicPatentStatusChanged = "patent.status_changed"
	TopicPatentFeeDue        = "patent.fee_due"
	TopicDeadLetter          = "dead_letter.patent"
)

// topicForEventType maps an event type discriminator to its topic.  Unmapped
// types land on the dead-letter topic so nothing is silently dropped.
func topicForEventType(eventType string) string {
	switch eventType {
	case TopicPatentIngested, TopicPatentStatusChanged, TopicPatentFeeDue:
		return eventType
	default:
		return TopicDeadLetter
	}
}

// Envelope is the wire format shared by all published events.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}
