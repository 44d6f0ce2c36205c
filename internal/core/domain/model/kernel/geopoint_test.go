package kernel_test

import (
	"testing"

	"partnerfeed/internal/core/domain/model/kernel"
	"partnerfeed/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeoPoint_ValidCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng float64
	}{
		{"bengaluru", 12.9716, 77.5946},
		{"equator_prime_meridian", 0, 0},
		{"north_pole", 90, 0},
		{"south_pole", -90, 0},
		{"date_line_east", 45, 180},
		{"date_line_west", 45, -180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			point, err := kernel.NewGeoPoint(tt.lat, tt.lng)
			require.NoError(t, err)
			assert.InDelta(t, tt.lat, point.Latitude(), 1e-9)
			assert.InDelta(t, tt.lng, point.Longitude(), 1e-9)
			require.NoError(t, point.Validate())
		})
	}
}

func TestNewGeoPoint_InvalidCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng float64
	}{
		{"latitude_too_high", 90.01, 0},
		{"latitude_too_low", -90.01, 0},
		{"longitude_too_high", 0, 180.5},
		{"longitude_too_low", 0, -180.5},
		{"both_invalid", 100, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := kernel.NewGeoPoint(tt.lat, tt.lng)
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		})
	}
}

func TestGeoPoint_ZeroValueIsInvalid(t *testing.T) {
	var point kernel.GeoPoint

	err := point.Validate()

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestGeoPoint_DistanceTo_IsSymmetric(t *testing.T) {
	a, err := kernel.NewGeoPoint(12.90, 77.60)
	require.NoError(t, err)
	b, err := kernel.NewGeoPoint(12.95, 77.70)
	require.NoError(t, err)

	ab, err := a.DistanceTo(b)
	require.NoError(t, err)
	ba, err := b.DistanceTo(a)
	require.NoError(t, err)

	assert.InDelta(t, ab, ba, 1e-9)
}

func TestGeoPoint_DistanceTo_SamePointIsZero(t *testing.T) {
	point, err := kernel.NewGeoPoint(12.9716, 77.5946)
	require.NoError(t, err)

	distance, err := point.DistanceTo(point)

	require.NoError(t, err)
	assert.InDelta(t, 0, distance, 1e-9)
}

func TestGeoPoint_DistanceTo_KnownDistances(t *testing.T) {
	t.Run("nearby_drop_is_about_one_and_a_half_km", func(t *testing.T) {
		partner, err := kernel.NewGeoPoint(12.90, 77.60)
		require.NoError(t, err)
		drop, err := kernel.NewGeoPoint(12.91, 77.61)
		require.NoError(t, err)

		distance, err := partner.DistanceTo(drop)

		require.NoError(t, err)
		assert.InDelta(t, 1.55, distance, 0.05)
	})

	t.Run("farther_drop_is_about_twelve_km", func(t *testing.T) {
		partner, err := kernel.NewGeoPoint(12.90, 77.60)
		require.NoError(t, err)
		drop, err := kernel.NewGeoPoint(12.95, 77.70)
		require.NoError(t, err)

		distance, err := partner.DistanceTo(drop)

		require.NoError(t, err)
		assert.InDelta(t, 12.2, distance, 0.5)
	})
}

func TestGeoPoint_DistanceTo_UnconstructedPoint(t *testing.T) {
	point, err := kernel.NewGeoPoint(12.90, 77.60)
	require.NoError(t, err)
	var zero kernel.GeoPoint

	_, err = point.DistanceTo(zero)
	require.Error(t, err)

	_, err = zero.DistanceTo(point)
	require.Error(t, err)
}

func TestGeoPoint_IsEqual(t *testing.T) {
	a, err := kernel.NewGeoPoint(12.90, 77.60)
	require.NoError(t, err)
	same, err := kernel.NewGeoPoint(12.90, 77.60)
	require.NoError(t, err)
	other, err := kernel.NewGeoPoint(12.95, 77.70)
	require.NoError(t, err)

	equal, err := a.IsEqual(same)
	require.NoError(t, err)
	assert.True(t, equal)

	equal, err = a.IsEqual(other)
	require.NoError(t, err)
	assert.False(t, equal)

	var zero kernel.GeoPoint
	_, err = a.IsEqual(zero)
	require.Error(t, err)
}
