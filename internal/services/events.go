package services

// EventPublisher delivers serialized domain events.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}
