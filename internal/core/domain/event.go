package domain

import "time"

// Topic names the component whose published state changed.
type Topic string

const (
	TopicSession Topic = "session.changed"
	TopicCart    Topic = "cart.changed"
	TopicCatalog Topic = "catalog.changed"
)

// Event notifies subscribers that a component's state changed. Subscribers
// re-read the component rather than trusting a payload.
type Event struct {
	Topic Topic     `json:"topic"`
	At    time.Time `json:"at"`
}
