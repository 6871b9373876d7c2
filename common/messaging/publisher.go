package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/LexiconIndonesia/dqaas-registration-service/common/constants"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/metrics"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/models"
	"github.com/rs/zerolog/log"
)

// Publisher is the subset of NatsBroker the event publisher needs
type Publisher interface {
	Publish(subject string, data []byte) error
	PublishSync(ctx context.Context, subject string, data []byte) error
	JetStreamEnabled() bool
}

// RegistrationPublisher sends registration events to <prefix>.<event type>
type RegistrationPublisher struct {
	broker Publisher
	prefix string
}

// NewRegistrationPublisher creates a publisher writing under the given subject prefix
func NewRegistrationPublisher(broker Publisher, prefix string) *RegistrationPublisher {
	if prefix == "" {
		prefix = constants.RegistrationSubjectPrefix
	}
	return &RegistrationPublisher{
		broker: broker,
		prefix: strings.TrimSuffix(prefix, "."),
	}
}

// PublishRegistrationEvent encodes the event as JSON and publishes it
func (p *RegistrationPublisher) PublishRegistrationEvent(ctx context.Context, event models.RegistrationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling event %s: %w", event.ID, err)
	}

	subject := Subject(p.prefix, event.Type)
	log.Debug().
		Str("subject", subject).
		Str("eventId", event.ID).
		Str("dataSourceName", event.DataSourceName).
		Msg("Publishing registration event")

	if p.broker.JetStreamEnabled() {
		err = p.broker.PublishSync(ctx, subject, data)
	} else {
		err = p.broker.Publish(subject, data)
	}
	metrics.RecordEvent(string(event.Type), err)
	return err
}

// Subject returns the subject an event type is published on
func Subject(prefix string, eventType constants.EventType) string {
	return strings.TrimSuffix(prefix, ".") + "." + string(eventType)
}

// SubjectWildcard matches every event subject under prefix
func SubjectWildcard(prefix string) string {
	return strings.TrimSuffix(prefix, ".") + ".>"
}
