package game

import "github.com/mcoot/letterstacks/internal/model"

// Publisher receives session events. Publish must not block.
type Publisher interface {
	Publish(event model.Event)
}

// NopPublisher discards events
type NopPublisher struct{}

// Publish does nothing
func (NopPublisher) Publish(model.Event) {}

// PublisherFunc adapts a function to Publisher
type PublisherFunc func(event model.Event)

// Publish calls f
func (f PublisherFunc) Publish(event model.Event) {
	f(event)
}
