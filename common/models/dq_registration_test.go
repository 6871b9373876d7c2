package models

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func sampleRegistration() DqRegistration {
	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	return DqRegistration{
		DataSourceName:       "orders-db",
		StartDateTime:        &start,
		EndDateTime:          &end,
		SourceCount:          100,
		SourceRejectionCount: 2,
	}
}

func TestNewDqRegistration(t *testing.T) {
	r := NewDqRegistration("orders-db")

	assert.Equal(t, "orders-db", r.DataSourceName)
	assert.Equal(t, int64(-1), r.SourceCount)
	assert.Equal(t, int64(-1), r.SourceRejectionCount)
	assert.Nil(t, r.StartDateTime)
	assert.Nil(t, r.EndDateTime)
}

func TestPatchApplyTo(t *testing.T) {
	existing := sampleRegistration()
	newStart := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newEnd := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		patch DqRegistrationPatch
		want  func(DqRegistration) DqRegistration
	}{
		{
			name:  "empty patch keeps everything",
			patch: DqRegistrationPatch{},
			want:  func(r DqRegistration) DqRegistration { return r },
		},
		{
			name: "sentinel counts keep existing values",
			patch: DqRegistrationPatch{
				SourceCount:          lo.ToPtr(int64(-1)),
				SourceRejectionCount: lo.ToPtr(int64(-1)),
			},
			want: func(r DqRegistration) DqRegistration { return r },
		},
		{
			name:  "source count only",
			patch: DqRegistrationPatch{SourceCount: lo.ToPtr(int64(150))},
			want: func(r DqRegistration) DqRegistration {
				r.SourceCount = 150
				return r
			},
		},
		{
			name:  "zero is a real count",
			patch: DqRegistrationPatch{SourceRejectionCount: lo.ToPtr(int64(0))},
			want: func(r DqRegistration) DqRegistration {
				r.SourceRejectionCount = 0
				return r
			},
		},
		{
			name:  "start date only",
			patch: DqRegistrationPatch{StartDateTime: &newStart},
			want: func(r DqRegistration) DqRegistration {
				r.StartDateTime = &newStart
				return r
			},
		},
		{
			// endDateTime must land in endDateTime and leave startDateTime alone
			name:  "end date only",
			patch: DqRegistrationPatch{EndDateTime: &newEnd},
			want: func(r DqRegistration) DqRegistration {
				r.EndDateTime = &newEnd
				return r
			},
		},
		{
			name:  "name in body is ignored",
			patch: DqRegistrationPatch{DataSourceName: "other-db"},
			want:  func(r DqRegistration) DqRegistration { return r },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.patch.ApplyTo(existing)
			assert.Equal(t, tt.want(existing), got)
		})
	}
}

func TestPatchApplyToDoesNotAliasPatchTimes(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	patch := DqRegistrationPatch{StartDateTime: &start}

	got := patch.ApplyTo(sampleRegistration())
	start = start.Add(time.Hour)

	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *got.StartDateTime)
}

func TestPatchIsEmpty(t *testing.T) {
	assert.True(t, DqRegistrationPatch{}.IsEmpty())
	assert.True(t, DqRegistrationPatch{SourceCount: lo.ToPtr(int64(-1))}.IsEmpty())
	assert.True(t, DqRegistrationPatch{DataSourceName: "orders-db"}.IsEmpty())
	assert.False(t, DqRegistrationPatch{SourceCount: lo.ToPtr(int64(0))}.IsEmpty())
	assert.False(t, DqRegistrationPatch{EndDateTime: lo.ToPtr(time.Now())}.IsEmpty())
}

func TestPatchUnmarshalJSON(t *testing.T) {
	start := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		body      string
		wantStart *time.Time
		wantCount *int64
		wantErr   bool
	}{
		{"empty start string", `{"startDateTime":"","sourceCount":150}`, nil, lo.ToPtr(int64(150)), false},
		{"null start", `{"startDateTime":null}`, nil, nil, false},
		{"omitted start", `{"sourceCount":0}`, nil, lo.ToPtr(int64(0)), false},
		{"real start", `{"startDateTime":"2025-01-01T08:00:00Z"}`, &start, nil, false},
		{"garbage start", `{"startDateTime":"yesterday"}`, nil, nil, true},
		{"wrong count type", `{"sourceCount":"many"}`, nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var patch DqRegistrationPatch
			err := json.Unmarshal([]byte(tt.body), &patch)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantStart == nil {
				assert.Nil(t, patch.StartDateTime)
			} else {
				require.NotNil(t, patch.StartDateTime)
				assert.True(t, tt.wantStart.Equal(*patch.StartDateTime))
			}
			assert.Equal(t, tt.wantCount, patch.SourceCount)
			assert.Nil(t, patch.EndDateTime)
		})
	}
}

func TestPatchUnmarshalJSONEmptyEndDate(t *testing.T) {
	var patch DqRegistrationPatch
	require.NoError(t, json.Unmarshal([]byte(`{"endDateTime":"","dataSourceName":"orders-db"}`), &patch))

	assert.Nil(t, patch.EndDateTime)
	assert.Equal(t, "orders-db", patch.DataSourceName)
	assert.Equal(t, sampleRegistration(), patch.ApplyTo(sampleRegistration()))
}

func drawTime(t *rapid.T, label string) *time.Time {
	if !rapid.Bool().Draw(t, label+"Set") {
		return nil
	}
	sec := rapid.Int64Range(0, 4102444800).Draw(t, label)
	ts := time.Unix(sec, 0).UTC()
	return &ts
}

func drawCount(t *rapid.T, label string) *int64 {
	if !rapid.Bool().Draw(t, label+"Set") {
		return nil
	}
	return lo.ToPtr(rapid.Int64Range(-5, 1_000_000).Draw(t, label))
}

func TestPatchApplyToProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		existing := DqRegistration{
			DataSourceName:       rapid.StringMatching(`[a-z]{1,12}-db`).Draw(t, "name"),
			StartDateTime:        drawTime(t, "existingStart"),
			EndDateTime:          drawTime(t, "existingEnd"),
			SourceCount:          rapid.Int64Range(-1, 1_000_000).Draw(t, "existingCount"),
			SourceRejectionCount: rapid.Int64Range(-1, 1_000_000).Draw(t, "existingRejections"),
		}
		patch := DqRegistrationPatch{
			StartDateTime:        drawTime(t, "patchStart"),
			EndDateTime:          drawTime(t, "patchEnd"),
			SourceCount:          drawCount(t, "patchCount"),
			SourceRejectionCount: drawCount(t, "patchRejections"),
		}

		got := patch.ApplyTo(existing)

		if got.DataSourceName != existing.DataSourceName {
			t.Fatalf("key changed: %q -> %q", existing.DataSourceName, got.DataSourceName)
		}
		if patch.StartDateTime == nil && got.StartDateTime != existing.StartDateTime {
			t.Fatalf("unset startDateTime changed")
		}
		if patch.StartDateTime != nil && !got.StartDateTime.Equal(*patch.StartDateTime) {
			t.Fatalf("startDateTime not applied")
		}
		if patch.EndDateTime == nil && got.EndDateTime != existing.EndDateTime {
			t.Fatalf("unset endDateTime changed")
		}
		if patch.EndDateTime != nil && !got.EndDateTime.Equal(*patch.EndDateTime) {
			t.Fatalf("endDateTime not applied")
		}
		if countSupplied(patch.SourceCount) {
			if got.SourceCount != *patch.SourceCount {
				t.Fatalf("sourceCount not applied")
			}
		} else if got.SourceCount != existing.SourceCount {
			t.Fatalf("unset sourceCount changed")
		}
		if countSupplied(patch.SourceRejectionCount) {
			if got.SourceRejectionCount != *patch.SourceRejectionCount {
				t.Fatalf("sourceRejectionCount not applied")
			}
		} else if got.SourceRejectionCount != existing.SourceRejectionCount {
			t.Fatalf("unset sourceRejectionCount changed")
		}
		if patch.IsEmpty() && got != existing {
			t.Fatalf("empty patch changed the registration")
		}
	})
}

// drawTimeJSON returns a JSON value for a timestamp field and the time it
// should decode to. Empty strings, null and omission all mean unset.
func drawTimeJSON(t *rapid.T, label string) (string, *time.Time) {
	switch rapid.IntRange(0, 3).Draw(t, label+"Form") {
	case 0:
		return "", nil
	case 1:
		return "null", nil
	case 2:
		return `""`, nil
	default:
		ts := drawTime(t, label)
		if ts == nil {
			return `""`, nil
		}
		return `"` + ts.Format(time.RFC3339) + `"`, ts
	}
}

func TestPatchFromJSONProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		existing := sampleRegistration()
		startJSON, wantStart := drawTimeJSON(t, "start")
		endJSON, wantEnd := drawTimeJSON(t, "end")
		count := rapid.Int64Range(-5, 1_000_000).Draw(t, "count")

		fields := map[string]json.RawMessage{"sourceCount": json.RawMessage(fmt.Sprint(count))}
		if startJSON != "" {
			fields["startDateTime"] = json.RawMessage(startJSON)
		}
		if endJSON != "" {
			fields["endDateTime"] = json.RawMessage(endJSON)
		}
		body, err := json.Marshal(fields)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}

		var patch DqRegistrationPatch
		if err := json.Unmarshal(body, &patch); err != nil {
			t.Fatalf("decode %s: %v", body, err)
		}
		got := patch.ApplyTo(existing)

		if wantStart == nil && got.StartDateTime != existing.StartDateTime {
			t.Fatalf("unset startDateTime changed for %s", body)
		}
		if wantStart != nil && !got.StartDateTime.Equal(*wantStart) {
			t.Fatalf("startDateTime not applied for %s", body)
		}
		if wantEnd == nil && got.EndDateTime != existing.EndDateTime {
			t.Fatalf("unset endDateTime changed for %s", body)
		}
		if wantEnd != nil && !got.EndDateTime.Equal(*wantEnd) {
			t.Fatalf("endDateTime not applied for %s", body)
		}
		if count >= 0 && got.SourceCount != count {
			t.Fatalf("sourceCount not applied for %s", body)
		}
		if count < 0 && got.SourceCount != existing.SourceCount {
			t.Fatalf("negative sourceCount changed the record for %s", body)
		}
	})
}
