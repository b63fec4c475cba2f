package ports

import "github.com/handmade-gallery/storefront/internal/core/domain"

// EventPublisher fans state-change notifications out to subscribers. Publish
// never blocks the caller.
type EventPublisher interface {
	Publish(topic domain.Topic)
}

// EventSubscriber hands out notification streams.
type EventSubscriber interface {
	Subscribe(buffer int) (<-chan domain.Event, func())
}
