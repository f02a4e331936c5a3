package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-20")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-20", d)

	for _, bad := range []string{"notadate", "20-03-2025", "2025-3-20", "2025-13-01", ""} {
		_, err := ParseDate(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestParseTime(t *testing.T) {
	tod, err := ParseTime("09:30")
	require.NoError(t, err)
	assert.Equal(t, "09:30", tod)

	for _, bad := range []string{"9am", "25:00", "09:61", ""} {
		_, err := ParseTime(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestValidateNewEvent(t *testing.T) {
	in := NewEventInput{Subject: "Math", Date: "2025-03-20", Time: "09:30", Description: "x"}
	errs := ValidateNewEvent(&in)
	assert.Empty(t, errs)

	in = NewEventInput{Date: "bad", Time: "bad"}
	errs = ValidateNewEvent(&in)
	fields := map[string]bool{}
	for _, fe := range errs {
		fields[fe.Field] = true
	}
	assert.True(t, fields["subject"])
	assert.True(t, fields["date"])
	assert.True(t, fields["time"])

	in = NewEventInput{
		Subject: strings.Repeat("a", MaxSubjectLen+1),
		Date:    "2025-03-20",
		Time:    "09:30",
	}
	errs = ValidateNewEvent(&in)
	require.Len(t, errs, 1)
	assert.Equal(t, "subject", errs[0].Field)
}
