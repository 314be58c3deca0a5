package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartialDateString(t *testing.T) {
	tests := []struct {
		name string
		date *PartialDate
		want string
	}{
		{"year only", NewPartialDate(2003, 0, 0), "2003-**-**"},
		{"year and month", NewPartialDate(2003, 7, 0), "2003-07-**"},
		{"full date", NewPartialDate(2003, 7, 14), "2003-07-14"},
		{"nil", nil, ""},
		{"zero year", &PartialDate{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.date.String())
		})
	}
}

func TestPartialDateScanRoundTrip(t *testing.T) {
	for _, s := range []string{"2003-**-**", "2003-07-**", "2003-07-14"} {
		var pd PartialDate
		require.NoError(t, pd.Scan(s))
		v, err := pd.Value()
		require.NoError(t, err)
		assert.Equal(t, s, v)
	}
}

func TestPartialDateScanNil(t *testing.T) {
	pd := PartialDate{Year: 1999}
	require.NoError(t, pd.Scan(nil))
	assert.Equal(t, PartialDate{}, pd)

	v, err := pd.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestPartialDateAsRegistryMap(t *testing.T) {
	m := NewPartialDate(2003, 0, 0).AsRegistryMap()
	require.NotNil(t, m)
	assert.Equal(t, map[string]string{"value": "2003"}, m["year"])
	assert.Nil(t, m["month"])
	assert.Nil(t, m["day"])

	m = NewPartialDate(2003, 7, 0).AsRegistryMap()
	assert.Equal(t, map[string]string{"value": "07"}, m["month"])
	assert.Nil(t, m["day"])

	assert.Nil(t, (*PartialDate)(nil).AsRegistryMap())
}

func TestPartialDateFromMap(t *testing.T) {
	pd := PartialDateFromMap(map[string]interface{}{
		"year":  map[string]interface{}{"value": "2003"},
		"month": nil,
		"day":   nil,
	})
	require.NotNil(t, pd)
	assert.Equal(t, NewPartialDate(2003, 0, 0), pd)

	assert.Nil(t, PartialDateFromMap(nil))
	assert.Nil(t, PartialDateFromMap(map[string]interface{}{}))
}

func TestPartialDateEqual(t *testing.T) {
	assert.True(t, NewPartialDate(2003, 7, 0).Equal(NewPartialDate(2003, 7, 0)))
	assert.False(t, NewPartialDate(2003, 7, 0).Equal(NewPartialDate(2003, 0, 0)))
	assert.True(t, (*PartialDate)(nil).Equal(nil))
	assert.False(t, (*PartialDate)(nil).Equal(NewPartialDate(2003, 0, 0)))
}
