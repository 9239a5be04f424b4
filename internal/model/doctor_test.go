package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailabilityCalendarValidate(t *testing.T) {
	assert.NoError(t, AvailabilityCalendar{}.Validate())
	assert.NoError(t, AvailabilityCalendar{"2026-09-01": true, "2026-09-02": false}.Validate())

	for _, key := range []string{"next tuesday", "01-09-2026", "2026-9-1", ""} {
		err := AvailabilityCalendar{key: true}.Validate()
		assert.Error(t, err, "key %q", key)
	}
}

func TestAvailabilityCalendarOpenDates(t *testing.T) {
	cal := AvailabilityCalendar{
		"2026-09-03": true,
		"2026-09-01": true,
		"2026-09-02": false,
	}
	assert.Equal(t, []string{"2026-09-01", "2026-09-03"}, cal.OpenDates())
	assert.Empty(t, AvailabilityCalendar{}.OpenDates())
}

func TestAvailabilityCalendarScanValue(t *testing.T) {
	cal := AvailabilityCalendar{"2026-09-01": true}
	raw, err := cal.Value()
	require.NoError(t, err)

	var decoded AvailabilityCalendar
	require.NoError(t, decoded.Scan(raw))
	assert.Equal(t, cal, decoded)

	var fromNil AvailabilityCalendar
	require.NoError(t, fromNil.Scan(nil))
	assert.NotNil(t, fromNil)

	var nilCal AvailabilityCalendar
	raw, err = nilCal.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), raw)
}
