package patent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/patent-radar/pkg/errors"
	ptypes "github.com/turtacn/patent-radar/pkg/types/patent"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestNewPatent_NormalizesNumber(t *testing.T) {
	p, err := NewPatent(" us 10,123,456 b2 ", "Battery separator", TypeUtility)
	require.NoError(t, err)
	assert.Equal(t, "US10123456B2", p.PatentNumber)
	assert.Equal(t, ptypes.StatusUnknown, p.Status)
	assert.NotEmpty(t, p.ID)
}

func TestNewPatent_DefaultsToUtility(t *testing.T) {
	p, err := NewPatent("US10123456B2", "Widget", "")
	require.NoError(t, err)
	assert.Equal(t, TypeUtility, p.Type)
}

func TestNewPatent_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		number string
		title  string
		ptype  PatentType
		code   errors.ErrorCode
	}{
		{"empty number", "", "t", TypeUtility, errors.ErrCodePatentNumberInvalid},
		{"garbage number", "??1234", "t", TypeUtility, errors.ErrCodePatentNumberInvalid},
		{"empty title", "US10123456B2", "", TypeUtility, errors.CodeInvalidParam},
		{"bad type", "US10123456B2", "t", PatentType("trademark"), errors.CodeInvalidParam},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPatent(tc.number, tc.title, tc.ptype)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tc.code), "want %s, got %v", tc.code, err)
		})
	}
}

func TestSetDates_GrantBeforeFilingRejected(t *testing.T) {
	p, err := NewPatent("US10123456B2", "Widget", TypeUtility)
	require.NoError(t, err)

	err = p.SetDates(datePtr(2015, time.March, 1), datePtr(2014, time.March, 1), nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodePatentDateInvalid))

	require.NoError(t, p.SetDates(datePtr(2015, time.March, 1), datePtr(2018, time.March, 1), nil))
	assert.Equal(t, date(2018, time.March, 1), *p.GrantDate)
}

func TestSetClassification_NormalizesAndDropsEmpty(t *testing.T) {
	p, err := NewPatent("US10123456B2", "Widget", TypeUtility)
	require.NoError(t, err)

	p.SetClassification([]string{" h01m 10/0525 ", "", "g06f 16/31"})
	assert.Equal(t, []string{"H01M10/0525", "G06F16/31"}, p.CPCCodes)
}

func TestApplyLifecycle(t *testing.T) {
	p, err := NewPatent("US10123456B2", "Widget", TypeUtility)
	require.NoError(t, err)

	exp := datePtr(2035, time.June, 10)
	require.NoError(t, p.ApplyLifecycle(exp, ptypes.StatusActive))
	assert.Equal(t, ptypes.StatusActive, p.Status)
	assert.Equal(t, *exp, *p.ExpirationDate)

	err = p.ApplyLifecycle(exp, ptypes.PatentStatus("granted"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodePatentStatusInvalid))
}

func TestCPCSection(t *testing.T) {
	p, err := NewPatent("US10123456B2", "Widget", TypeUtility)
	require.NoError(t, err)

	assert.Equal(t, "", p.CPCSection())
	p.SetClassification([]string{"H01M10/0525"})
	assert.Equal(t, "H", p.CPCSection())
}

func TestMaintenanceFee_StatusAt(t *testing.T) {
	fee := MaintenanceFee{
		FeeYear:    3,
		DueDate:    date(2020, time.June, 1),
		WindowOpen: date(2019, time.December, 4),
		GraceEnd:   date(2020, time.November, 30),
	}

	assert.Equal(t, ptypes.FeeStatusCurrent, fee.StatusAt(date(2019, time.June, 1)))
	assert.Equal(t, ptypes.FeeStatusDueSoon, fee.StatusAt(date(2019, time.December, 4)))
	assert.Equal(t, ptypes.FeeStatusDueSoon, fee.StatusAt(date(2020, time.August, 1)))
	assert.Equal(t, ptypes.FeeStatusOverdue, fee.StatusAt(date(2020, time.December, 1)))

	fee.MarkPaid(date(2020, time.May, 1))
	assert.Equal(t, ptypes.FeeStatusCurrent, fee.StatusAt(date(2021, time.January, 1)))
	require.NotNil(t, fee.PaidDate)
}
