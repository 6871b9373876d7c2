package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/LexiconIndonesia/dqaas-registration-service/common"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/constants"
	"github.com/LexiconIndonesia/dqaas-registration-service/common/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/mo"
)

// DqRegistrationService defines the registration use cases exposed over HTTP
type DqRegistrationService interface {
	// List returns every registration ordered by data source name
	List(ctx context.Context) ([]models.DqRegistration, error)

	// Get returns the registration for a data source name, if any
	Get(ctx context.Context, dataSourceName string) (mo.Option[models.DqRegistration], error)

	// Create stores a new registration; ErrDuplicateRegistration if the name is taken
	Create(ctx context.Context, registration models.DqRegistration) (models.DqRegistration, error)

	// Replace overwrites every field of an existing registration; ErrRegistrationNotFound if absent
	Replace(ctx context.Context, registration models.DqRegistration) (models.DqRegistration, error)

	// Patch applies the supplied fields to an existing registration; ErrRegistrationNotFound if absent
	Patch(ctx context.Context, dataSourceName string, patch models.DqRegistrationPatch) (models.DqRegistration, error)

	// Delete removes an existing registration; ErrRegistrationNotFound if absent
	Delete(ctx context.Context, dataSourceName string) error
}

type dqRegistrationService struct {
	repo              DqRegistrationRepository
	publisher         EventPublisher
	conditionalWrites bool
	now               func() time.Time
}

// ServiceOption configures the registration service
type ServiceOption func(*dqRegistrationService)

// WithConditionalWrites guards create/replace/patch writes with a key condition,
// closing the gap between the existence check and the write
func WithConditionalWrites(enabled bool) ServiceOption {
	return func(s *dqRegistrationService) {
		s.conditionalWrites = enabled
	}
}

// WithClock overrides the time source used for event timestamps
func WithClock(now func() time.Time) ServiceOption {
	return func(s *dqRegistrationService) {
		s.now = now
	}
}

// NewDqRegistrationService creates the registration service. A nil publisher disables events.
func NewDqRegistrationService(repo DqRegistrationRepository, publisher EventPublisher, opts ...ServiceOption) DqRegistrationService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	s := &dqRegistrationService{
		repo:              repo,
		publisher:         publisher,
		conditionalWrites: true,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *dqRegistrationService) List(ctx context.Context) ([]models.DqRegistration, error) {
	log.Trace().Msg("Entering List()")

	registrations, err := s.repo.ScanAll(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(registrations, func(a, b models.DqRegistration) int {
		return strings.Compare(a.DataSourceName, b.DataSourceName)
	})
	return registrations, nil
}

func (s *dqRegistrationService) Get(ctx context.Context, dataSourceName string) (mo.Option[models.DqRegistration], error) {
	log.Trace().Str("dataSourceName", dataSourceName).Msg("Entering Get()")
	return s.repo.Get(ctx, dataSourceName)
}

func (s *dqRegistrationService) Create(ctx context.Context, registration models.DqRegistration) (models.DqRegistration, error) {
	log.Trace().Interface("registration", registration).Msg("Entering Create()")

	existing, err := s.repo.Get(ctx, registration.DataSourceName)
	if err != nil {
		return models.DqRegistration{}, err
	}
	if existing.IsPresent() {
		log.Warn().Str("dataSourceName", registration.DataSourceName).Msg("DqRegistration already exists")
		return models.DqRegistration{}, fmt.Errorf("%w: %s", common.ErrDuplicateRegistration, registration.DataSourceName)
	}

	if s.conditionalWrites {
		err = s.repo.PutIfAbsent(ctx, registration)
	} else {
		err = s.repo.Put(ctx, registration)
	}
	if err != nil {
		if errors.Is(err, common.ErrDuplicateRegistration) {
			log.Warn().Str("dataSourceName", registration.DataSourceName).Msg("DqRegistration created concurrently")
		}
		return models.DqRegistration{}, err
	}

	s.publish(ctx, constants.RegistrationCreated, registration)
	return registration, nil
}

func (s *dqRegistrationService) Replace(ctx context.Context, registration models.DqRegistration) (models.DqRegistration, error) {
	log.Trace().Interface("registration", registration).Msg("Entering Replace()")

	if _, err := s.mustExist(ctx, registration.DataSourceName); err != nil {
		return models.DqRegistration{}, err
	}

	if err := s.overwrite(ctx, registration); err != nil {
		return models.DqRegistration{}, err
	}

	s.publish(ctx, constants.RegistrationReplaced, registration)
	return registration, nil
}

func (s *dqRegistrationService) Patch(ctx context.Context, dataSourceName string, patch models.DqRegistrationPatch) (models.DqRegistration, error) {
	log.Trace().Str("dataSourceName", dataSourceName).Interface("patch", patch).Msg("Entering Patch()")

	existing, err := s.mustExist(ctx, dataSourceName)
	if err != nil {
		return models.DqRegistration{}, err
	}

	if patch.IsEmpty() {
		log.Debug().Str("dataSourceName", dataSourceName).Msg("Empty patch, nothing to write")
		return existing, nil
	}

	merged := patch.ApplyTo(existing)
	if err := s.overwrite(ctx, merged); err != nil {
		return models.DqRegistration{}, err
	}

	s.publish(ctx, constants.RegistrationPatched, merged)
	return merged, nil
}

func (s *dqRegistrationService) Delete(ctx context.Context, dataSourceName string) error {
	log.Trace().Str("dataSourceName", dataSourceName).Msg("Entering Delete()")

	existing, err := s.mustExist(ctx, dataSourceName)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, dataSourceName); err != nil {
		return err
	}

	s.publish(ctx, constants.RegistrationDeleted, existing)
	return nil
}

// mustExist loads a registration or reports ErrRegistrationNotFound
func (s *dqRegistrationService) mustExist(ctx context.Context, dataSourceName string) (models.DqRegistration, error) {
	existing, err := s.repo.Get(ctx, dataSourceName)
	if err != nil {
		return models.DqRegistration{}, err
	}
	registration, ok := existing.Get()
	if !ok {
		log.Warn().Str("dataSourceName", dataSourceName).Msg("DqRegistration not found")
		return models.DqRegistration{}, fmt.Errorf("%w: %s", common.ErrRegistrationNotFound, dataSourceName)
	}
	return registration, nil
}

func (s *dqRegistrationService) overwrite(ctx context.Context, registration models.DqRegistration) error {
	if !s.conditionalWrites {
		return s.repo.Put(ctx, registration)
	}
	err := s.repo.PutIfExists(ctx, registration)
	if errors.Is(err, common.ErrRegistrationNotFound) {
		log.Warn().Str("dataSourceName", registration.DataSourceName).Msg("DqRegistration deleted concurrently")
	}
	return err
}

// publish announces a committed change. Failures are logged only, the write already happened.
func (s *dqRegistrationService) publish(ctx context.Context, eventType constants.EventType, registration models.DqRegistration) {
	id, err := uuid.NewV7()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to generate event id")
		return
	}

	event := models.RegistrationEvent{
		ID:             id.String(),
		Type:           eventType,
		DataSourceName: registration.DataSourceName,
		Registration:   &registration,
		OccurredAt:     s.now().UTC(),
	}
	if err := s.publisher.PublishRegistrationEvent(ctx, event); err != nil {
		log.Warn().Err(err).
			Str("dataSourceName", registration.DataSourceName).
			Str("eventType", string(eventType)).
			Msg("Failed to publish registration event")
	}
}

type noopPublisher struct{}

func (noopPublisher) PublishRegistrationEvent(context.Context, models.RegistrationEvent) error {
	return nil
}
