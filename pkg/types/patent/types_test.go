package patent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/turtacn/patent-radar/pkg/types/common"
)

func TestPatentStatus_IsValid(t *testing.T) {
	for _, s := range []PatentStatus{StatusActive, StatusExpired, StatusLapsed, StatusUnknown} {
		assert.True(t, s.IsValid(), "status %s", s)
	}
	assert.False(t, PatentStatus("granted").IsValid())
	assert.False(t, PatentStatus("").IsValid())
}

func TestPatentStatus_InForce(t *testing.T) {
	assert.True(t, StatusActive.InForce())
	assert.False(t, StatusExpired.InForce())
	assert.False(t, StatusLapsed.InForce())
	assert.False(t, StatusUnknown.InForce())
}

func TestPatentOffice_IsValid(t *testing.T) {
	assert.True(t, OfficeUSPTO.IsValid())
	assert.True(t, OfficeOther.IsValid())
	assert.False(t, PatentOffice("CNIPA").IsValid())
}

func TestSectionTitle(t *testing.T) {
	assert.Equal(t, "Electricity", SectionTitle("H"))
	assert.Equal(t, "Chemistry; Metallurgy", SectionTitle("C"))
	assert.Equal(t, "General Tagging of New Technological Developments", SectionTitle("Y"))
	assert.Equal(t, "Unknown", SectionTitle("Z"))
	assert.Equal(t, "Unknown", SectionTitle(""))
}

func TestSearchMode_IsValid(t *testing.T) {
	assert.True(t, SearchFulltext.IsValid())
	assert.True(t, SearchSemantic.IsValid())
	assert.True(t, SearchHybrid.IsValid())
	assert.False(t, SearchMode("fuzzy").IsValid())
}

func TestCitationDirection_IsValid(t *testing.T) {
	assert.True(t, CitationBackward.IsValid())
	assert.True(t, CitationForward.IsValid())
	assert.True(t, CitationBoth.IsValid())
	assert.False(t, CitationDirection("sideways").IsValid())
}

func TestPatentSearchRequest_Validate(t *testing.T) {
	req := NewPatentSearchRequest("battery separator")
	assert.NoError(t, req.Validate())
	assert.Equal(t, SearchHybrid, req.Mode)
	assert.Equal(t, 1, req.Pagination.Page)
	assert.Equal(t, 20, req.Pagination.PageSize)

	empty := NewPatentSearchRequest("")
	assert.Error(t, empty.Validate())

	bad := NewPatentSearchRequest("x")
	bad.Mode = SearchMode("fuzzy")
	assert.Error(t, bad.Validate())

	badPage := NewPatentSearchRequest("x")
	badPage.Pagination = common.Pagination{Page: 0, PageSize: 20}
	assert.Error(t, badPage.Validate())
}
