package common

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_Validate(t *testing.T) {
	assert.NoError(t, ID("550e8400-e29b-41d4-a716-446655440000").Validate())
	assert.Error(t, ID("").Validate())
	assert.Error(t, ID("not-a-uuid").Validate())
}

func TestNewID_GeneratesValidUUID(t *testing.T) {
	assert.NoError(t, NewID().Validate())
}

func TestTimestamp_MarshalJSON(t *testing.T) {
	ts := Timestamp(time.Date(2023, 10, 27, 10, 0, 0, 0, time.UTC))
	data, err := json.Marshal(ts)
	assert.NoError(t, err)
	assert.Equal(t, "\"2023-10-27T10:00:00Z\"", string(data))
}

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte("\"2023-10-27T10:00:00Z\""), &ts))
	assert.Equal(t, time.Date(2023, 10, 27, 10, 0, 0, 0, time.UTC), time.Time(ts))

	assert.Error(t, json.Unmarshal([]byte("\"invalid-date\""), &ts))
}

func TestPagination_Validate(t *testing.T) {
	assert.NoError(t, Pagination{Page: 1, PageSize: 20}.Validate())
	assert.Error(t, Pagination{Page: 0, PageSize: 20}.Validate())
	assert.Error(t, Pagination{Page: 1, PageSize: 501}.Validate())
	assert.Error(t, Pagination{Page: 1, PageSize: 0}.Validate())
}

func TestPagination_Offset(t *testing.T) {
	assert.Equal(t, 40, Pagination{Page: 3, PageSize: 20}.Offset())
	assert.Equal(t, 0, Pagination{Page: 1, PageSize: 20}.Offset())
}

func TestDateRange_Validate(t *testing.T) {
	from := NewTimestamp()
	to := Timestamp(time.Time(from).Add(time.Hour))

	assert.NoError(t, DateRange{From: from, To: to}.Validate())
	assert.NoError(t, DateRange{From: from, To: from}.Validate())
	assert.Error(t, DateRange{From: to, To: from}.Validate())
}

func TestNewSuccessResponse(t *testing.T) {
	resp := NewSuccessResponse("test-data")
	assert.True(t, resp.Success)
	assert.Equal(t, "test-data", resp.Data)
	assert.Nil(t, resp.Error)
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("PAT_001", "patent not found")
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "PAT_001", resp.Error.Code)
	assert.Equal(t, "patent not found", resp.Error.Message)
}

func TestBaseEvent_ImplementsDomainEvent(t *testing.T) {
	var _ DomainEvent = BaseEvent{}

	e := NewBaseEvent("US10123456B2")
	assert.Equal(t, "US10123456B2", e.AggregateID())
	assert.NotEmpty(t, e.EventID())
	assert.False(t, e.OccurredAt().IsZero())
}

func TestSortOrder_Values(t *testing.T) {
	assert.Equal(t, SortOrder("asc"), SortAsc)
	assert.Equal(t, SortOrder("desc"), SortDesc)
}

func TestHealthStatus_Values(t *testing.T) {
	assert.Equal(t, HealthStatus("up"), HealthUp)
	assert.Equal(t, HealthStatus("down"), HealthDown)
	assert.Equal(t, HealthStatus("degraded"), HealthDegraded)
}
