package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/LexiconIndonesia/dqaas-registration-service/common/constants"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	subject string
	data    []byte
	sync    bool
}

type fakeBroker struct {
	jetstream bool
	err       error
	messages  []published
}

func (f *fakeBroker) Publish(subject string, data []byte) error {
	f.messages = append(f.messages, published{subject: subject, data: data})
	return f.err
}

func (f *fakeBroker) PublishSync(_ context.Context, subject string, data []byte) error {
	f.messages = append(f.messages, published{subject: subject, data: data, sync: true})
	return f.err
}

func (f *fakeBroker) JetStreamEnabled() bool {
	return f.jetstream
}

func testEvent(eventType constants.EventType) models.RegistrationEvent {
	reg := models.NewDqRegistration("orders-db")
	reg.SourceCount = 12
	return models.RegistrationEvent{
		ID:             "0190a6f0-0000-7000-8000-000000000001",
		Type:           eventType,
		DataSourceName: "orders-db",
		Registration:   &reg,
		OccurredAt:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "dq.registration.created", Subject("dq.registration", constants.RegistrationCreated))
	assert.Equal(t, "dq.registration.deleted", Subject("dq.registration.", constants.RegistrationDeleted))
	assert.Equal(t, "dq.registration.>", SubjectWildcard("dq.registration"))
}

func TestPublishRegistrationEvent(t *testing.T) {
	tests := []struct {
		name      string
		jetstream bool
		eventType constants.EventType
		subject   string
	}{
		{"jetstream created", true, constants.RegistrationCreated, "acme.dq.created"},
		{"core patched", false, constants.RegistrationPatched, "acme.dq.patched"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			broker := &fakeBroker{jetstream: tt.jetstream}
			publisher := NewRegistrationPublisher(broker, "acme.dq")

			require.NoError(t, publisher.PublishRegistrationEvent(context.Background(), testEvent(tt.eventType)))

			require.Len(t, broker.messages, 1)
			msg := broker.messages[0]
			assert.Equal(t, tt.subject, msg.subject)
			assert.Equal(t, tt.jetstream, msg.sync)

			var body map[string]any
			require.NoError(t, json.Unmarshal(msg.data, &body))
			assert.Equal(t, string(tt.eventType), body["type"])
			assert.Equal(t, "orders-db", body["dataSourceName"])
			assert.Equal(t, "2024-05-01T12:00:00Z", body["occurredAt"])
			registration := body["registration"].(map[string]any)
			assert.EqualValues(t, 12, registration["sourceCount"])
			assert.EqualValues(t, -1, registration["sourceRejectionCount"])
		})
	}
}

func TestPublishRegistrationEventDefaultPrefix(t *testing.T) {
	broker := &fakeBroker{}
	publisher := NewRegistrationPublisher(broker, "")

	require.NoError(t, publisher.PublishRegistrationEvent(context.Background(), testEvent(constants.RegistrationReplaced)))
	assert.Equal(t, constants.RegistrationSubjectPrefix+".replaced", broker.messages[0].subject)
}

func TestPublishRegistrationEventBrokerError(t *testing.T) {
	boom := errors.New("no responders")
	publisher := NewRegistrationPublisher(&fakeBroker{jetstream: true, err: boom}, "dq.registration")

	err := publisher.PublishRegistrationEvent(context.Background(), testEvent(constants.RegistrationDeleted))
	assert.ErrorIs(t, err, boom)
}

func TestMissingSubjects(t *testing.T) {
	assert.Empty(t, missingSubjects([]string{"dq.registration.>"}, []string{"dq.registration.>"}))
	assert.Equal(t,
		[]string{"dq.registration.>"},
		missingSubjects([]string{"other.>"}, []string{"dq.registration.>", "dq.registration.>"}),
	)
}
