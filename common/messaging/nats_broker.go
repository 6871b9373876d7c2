package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/LexiconIndonesia/dqaas-registration-service/common"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/config"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/constants"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

var errJetStreamDisabled = errors.New("JetStream not initialized")

// NatsBroker publishes registration events to NATS
type NatsBroker struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	config config.Config
}

// NewNatsBroker creates a new NATS message broker
func NewNatsBroker(cfg config.Config) (*NatsBroker, error) {
	client := &NatsBroker{
		config: cfg,
	}

	if err := client.connect(); err != nil {
		return nil, err
	}

	return client, nil
}

// connect connects to the NATS server
func (c *NatsBroker) connect() error {
	var err error

	opts := []nats.Option{
		nats.Name(common.AppName),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn().Err(err).Msg("Disconnected from NATS")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("server", nc.ConnectedUrl()).Msg("Reconnected to NATS")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			event := log.Error().Err(err)
			if sub != nil {
				event = event.Str("subject", sub.Subject)
			}
			event.Msg("NATS async error")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info().Msg("NATS connection closed")
		}),
	}

	if c.config.Nats.Username != "" && c.config.Nats.Password != "" {
		opts = append(opts, nats.UserInfo(c.config.Nats.Username, c.config.Nats.Password))
	}

	c.conn, err = nats.Connect(c.config.Nats.URL(), opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	if c.config.Nats.JetStreamEnabled {
		js, err := jetstream.New(c.conn)
		if err != nil {
			c.conn.Close()
			return fmt.Errorf("failed to create JetStream context: %w", err)
		}
		c.js = js
	}

	log.Info().
		Str("server", c.conn.ConnectedUrl()).
		Bool("jetstream", c.js != nil).
		Msg("Connected to NATS")
	return nil
}

// JetStreamEnabled reports whether publishes are acknowledged by JetStream
func (c *NatsBroker) JetStreamEnabled() bool {
	return c.js != nil
}

// Close drains and closes the NATS connection
func (c *NatsBroker) Close() error {
	if c.conn != nil && c.conn.IsConnected() {
		return c.conn.Drain()
	}
	return nil
}

// Publish publishes a message on core NATS without waiting for an acknowledgement
func (c *NatsBroker) Publish(subject string, data []byte) error {
	if err := c.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish message to %s: %w", subject, err)
	}

	log.Debug().Str("subject", subject).Msg("Published message to NATS")
	return nil
}

// PublishSync publishes a message to a subject and waits for an acknowledgement
func (c *NatsBroker) PublishSync(ctx context.Context, subject string, data []byte) error {
	if c.js == nil {
		return errJetStreamDisabled
	}

	ack, err := c.js.Publish(ctx, subject, data)
	if err != nil {
		return fmt.Errorf("failed to publish message to %s: %w", subject, err)
	}

	log.Debug().
		Str("subject", subject).
		Str("stream", ack.Stream).
		Uint64("sequence", ack.Sequence).
		Msg("Published message to NATS and received ack")

	return nil
}

// CreateStream creates or updates a JetStream stream
func (c *NatsBroker) CreateStream(ctx context.Context, config jetstream.StreamConfig) (jetstream.Stream, error) {
	if c.js == nil {
		return nil, errJetStreamDisabled
	}

	log.Info().
		Str("name", config.Name).
		Strs("subjects", config.Subjects).
		Msg("Attempting to create or update JetStream stream")

	stream, err := c.js.CreateOrUpdateStream(ctx, config)
	if err != nil {
		log.Error().Err(err).Str("stream", config.Name).Msg("Failed to create or update stream")
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	return stream, nil
}

// GetStream gets a JetStream stream
func (c *NatsBroker) GetStream(ctx context.Context, streamName string) (jetstream.Stream, error) {
	if c.js == nil {
		return nil, errJetStreamDisabled
	}

	stream, err := c.js.Stream(ctx, streamName)
	if err != nil {
		return nil, fmt.Errorf("failed to get stream: %w", err)
	}

	return stream, nil
}

// SetupNatsBroker connects to NATS and, with JetStream on, makes sure the
// registration stream captures every event subject
func SetupNatsBroker(ctx context.Context, cfg config.Config) (*NatsBroker, error) {
	client, err := NewNatsBroker(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating NATS client: %w", err)
	}

	if client.JetStreamEnabled() {
		subjects := []string{SubjectWildcard(cfg.Nats.SubjectPrefix)}
		if _, err := EnsureStream(ctx, client, constants.RegistrationStreamName, subjects); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ensuring stream %s: %w", constants.RegistrationStreamName, err)
		}
	}

	return client, nil
}
