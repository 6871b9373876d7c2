package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LexiconIndonesia/dqaas-registration-service/common"
	"github.com/samber/lo"
)

// DqRegistration is a data-quality registration for a single data source.
// Counts hold -1 when they were never supplied.
type DqRegistration struct {
	DataSourceName       string     `json:"dataSourceName" dynamodbav:"dataSourceName" validate:"required,max=255"`
	StartDateTime        *time.Time `json:"startDateTime,omitempty" dynamodbav:"startDateTime,omitempty"`
	EndDateTime          *time.Time `json:"endDateTime,omitempty" dynamodbav:"endDateTime,omitempty"`
	SourceCount          int64      `json:"sourceCount" dynamodbav:"sourceCount" validate:"gte=-1"`
	SourceRejectionCount int64      `json:"sourceRejectionCount" dynamodbav:"sourceRejectionCount" validate:"gte=-1"`
}

// NewDqRegistration returns a registration with both counts unset.
// Request bodies are decoded on top of it so omitted counts stay -1.
func NewDqRegistration(dataSourceName string) DqRegistration {
	return DqRegistration{
		DataSourceName:       dataSourceName,
		SourceCount:          common.UnsetCount,
		SourceRejectionCount: common.UnsetCount,
	}
}

// DqRegistrationPatch carries a partial update. Nil fields and negative
// counts are treated as not supplied. Timestamps sent as null or "" decode to nil.
type DqRegistrationPatch struct {
	DataSourceName       string     `json:"dataSourceName,omitempty"`
	StartDateTime        *time.Time `json:"startDateTime,omitempty"`
	EndDateTime          *time.Time `json:"endDateTime,omitempty"`
	SourceCount          *int64     `json:"sourceCount,omitempty"`
	SourceRejectionCount *int64     `json:"sourceRejectionCount,omitempty"`
}

// UnmarshalJSON decodes a patch body, mapping empty timestamp strings to nil
func (p *DqRegistrationPatch) UnmarshalJSON(data []byte) error {
	type plain DqRegistrationPatch
	var raw struct {
		plain
		StartDateTime json.RawMessage `json:"startDateTime"`
		EndDateTime   json.RawMessage `json:"endDateTime"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	start, err := optionalTime("startDateTime", raw.StartDateTime)
	if err != nil {
		return err
	}
	end, err := optionalTime("endDateTime", raw.EndDateTime)
	if err != nil {
		return err
	}

	*p = DqRegistrationPatch(raw.plain)
	p.StartDateTime = start
	p.EndDateTime = end
	return nil
}

func optionalTime(field string, raw json.RawMessage) (*time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte(`""`)) {
		return nil, nil
	}
	var ts time.Time
	if err := json.Unmarshal(raw, &ts); err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return &ts, nil
}

// IsEmpty reports whether the patch would leave any registration untouched.
func (p DqRegistrationPatch) IsEmpty() bool {
	return p.StartDateTime == nil &&
		p.EndDateTime == nil &&
		!countSupplied(p.SourceCount) &&
		!countSupplied(p.SourceRejectionCount)
}

// ApplyTo merges the supplied fields into existing and returns the result.
// The key of existing is never changed.
func (p DqRegistrationPatch) ApplyTo(existing DqRegistration) DqRegistration {
	merged := existing

	if p.StartDateTime != nil {
		merged.StartDateTime = lo.ToPtr(*p.StartDateTime)
	}
	if p.EndDateTime != nil {
		merged.EndDateTime = lo.ToPtr(*p.EndDateTime)
	}
	if countSupplied(p.SourceCount) {
		merged.SourceCount = *p.SourceCount
	}
	if countSupplied(p.SourceRejectionCount) {
		merged.SourceRejectionCount = *p.SourceRejectionCount
	}

	return merged
}

func countSupplied(v *int64) bool {
	return lo.FromPtrOr(v, common.UnsetCount) > common.UnsetCount
}
