package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// EnsureStream ensures a stream exists with the specified subjects
func EnsureStream(ctx context.Context, client *NatsBroker, name string, subjects []string) (jetstream.Stream, error) {
	// Try to get the stream first
	stream, err := client.GetStream(ctx, name)
	if err != nil {
		if !errors.Is(err, jetstream.ErrStreamNotFound) && !strings.Contains(err.Error(), "stream not found") {
			log.Error().Err(err).Str("stream_name", name).Msg("Failed to get stream for unknown reasons")
			return nil, err
		}
		streamConfig := jetstream.StreamConfig{
			Name:     name,
			Subjects: subjects,
		}

		return client.CreateStream(ctx, streamConfig)
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stream info: %w", err)
	}

	config := info.Config
	missing := missingSubjects(config.Subjects, subjects)
	if len(missing) == 0 {
		log.Debug().Str("stream_name", name).Msg("No new subjects to add to stream")
		return stream, nil
	}

	config.Subjects = append(config.Subjects, missing...)
	log.Info().Strs("subjects", config.Subjects).Str("stream_name", name).Msg("Updating stream with new subjects")
	return client.CreateStream(ctx, config)
}

// missingSubjects returns the wanted subjects not yet covered by a stream
func missingSubjects(existing, wanted []string) []string {
	subjectSet := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		subjectSet[s] = struct{}{}
	}

	var missing []string
	for _, s := range wanted {
		if _, ok := subjectSet[s]; !ok {
			missing = append(missing, s)
			subjectSet[s] = struct{}{}
		}
	}
	return missing
}
