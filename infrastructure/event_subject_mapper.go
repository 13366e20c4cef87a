package infrastructure

import (
	"fmt"
	"strings"

	"gatewaymonitor/events"
)

// EventSubjectMapper handles mapping between monitor events and NATS subjects
type EventSubjectMapper struct {
	prefix  string
	gateway string
}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper(prefix, gateway string) *EventSubjectMapper {
	return &EventSubjectMapper{
		prefix:  sanitizeToken(prefix),
		gateway: sanitizeToken(gateway),
	}
}

// MapEventToSubject converts an event to its subject, e.g. "gateway.getnet.failure_detected"
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	return fmt.Sprintf("%s.%s.%s", m.prefix, m.gateway, event.Type())
}

// StreamSubjects returns the wildcard subjects a stream needs to capture every event
func (m *EventSubjectMapper) StreamSubjects() []string {
	return []string{fmt.Sprintf("%s.%s.>", m.prefix, m.gateway)}
}

// sanitizeToken makes s usable as a single subject token
func sanitizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	replacer := strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_")
	return replacer.Replace(s)
}
