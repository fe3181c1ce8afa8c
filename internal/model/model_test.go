package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoroughKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already canonical", "BROOKLYN", "BROOKLYN"},
		{"lowercase", "brooklyn", "BROOKLYN"},
		{"padded", "  Queens\t", "QUEENS"},
		{"inner whitespace", "STATEN   ISLAND", "STATEN ISLAND"},
		{"mixed case padded", " staten Island ", "STATEN ISLAND"},
		{"fullwidth compatibility form", "ＢRONX", "BRONX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BoroughKey(tt.in))
		})
	}
}

func TestParseBorough(t *testing.T) {
	b, err := ParseBorough("  brooklyn ")
	require.NoError(t, err)
	assert.Equal(t, Brooklyn, b)

	b, err = ParseBorough("The Bronx")
	require.NoError(t, err)
	assert.Equal(t, Bronx, b)

	_, err = ParseBorough("JERSEY CITY")
	assert.Error(t, err)
}

func TestAllBoroughsOrder(t *testing.T) {
	bs := AllBoroughs()
	require.Len(t, bs, 5)
	assert.Equal(t, Bronx, bs[0])
	assert.Equal(t, StatenIsland, bs[4])
	assert.Equal(t, ReferenceBorough, bs[0])
}

func TestTimeBucket(t *testing.T) {
	d := time.Date(2023, time.March, 7, 15, 4, 0, 0, time.UTC)
	b := BucketOf(d)
	assert.Equal(t, "2023-03", b.String())

	later := TimeBucket{Year: 2023, Month: time.April}
	assert.True(t, b.Before(later))
	assert.False(t, later.Before(b))
	assert.True(t, TimeBucket{Year: 2022, Month: time.December}.Before(b))
}

func TestIncidentGeolocated(t *testing.T) {
	lat, lon := 40.71, -73.99
	assert.True(t, IncidentRecord{Latitude: &lat, Longitude: &lon}.Geolocated())
	assert.False(t, IncidentRecord{Latitude: &lat}.Geolocated())
	assert.False(t, IncidentRecord{}.Geolocated())
}
