package models

import (
	"time"

	"github.com/LexiconIndonesia/dqaas-registration-service/common/constants"
)

// RegistrationEvent describes a committed change to a registration
type RegistrationEvent struct {
	ID             string              `json:"id"`
	Type           constants.EventType `json:"type"`
	DataSourceName string              `json:"dataSourceName"`
	Registration   *DqRegistration     `json:"registration,omitempty"`
	OccurredAt     time.Time           `json:"occurredAt"`
}
