package events

// Topic constants for domain events emitted by the platform.
const (
	TopicOrderCreated    = "order.created"
	TopicOfferExpired    = "offer.expired"
	TopicSettingsUpdated = "settings.updated"
)

// DefaultTopics returns the canonical list of emitted topics.
func DefaultTopics() []string {
	return []string{
		TopicOrderCreated,
		TopicOfferExpired,
		TopicSettingsUpdated,
	}
}
