package mission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standardPlan(altitudes ...float64) *Plan {
	segments := []Segment{&Takeoff{}}
	for _, alt := range altitudes {
		segments = append(segments, &MoveTo{
			Latitude: 48.8, Longitude: 2.3, Altitude: alt,
			MaxHorizontalSpeed: 15, MaxVerticalSpeed: 2, MaxYawRotationSpeed: 1,
		})
	}
	segments = append(segments, &ReturnToHome{}, &Land{})
	return &Plan{
		ID:       "test-mission",
		Segments: segments,
		Safety: SafetyConfig{
			Geofence:          GeofenceConfig{Enabled: true},
			MaxAltitudeMeters: 80,
		},
	}
}

func TestValidate_EmptyPlan(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&Plan{})
	require.Error(t, err)

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	assert.Error(t, v.Validate(nil))
}

func TestValidate_ClampsHighAltitude(t *testing.T) {
	v := NewValidator()
	plan := standardPlan(200)

	require.NoError(t, v.Validate(plan))

	move := plan.Segments[1].(*MoveTo)
	assert.Equal(t, 80.0, move.Altitude)
}

func TestValidate_ClampsLowAltitude(t *testing.T) {
	v := NewValidator()
	plan := standardPlan(0.2)

	require.NoError(t, v.Validate(plan))

	move := plan.Segments[1].(*MoveTo)
	assert.Equal(t, 1.0, move.Altitude)
}

func TestValidate_InRangeUntouched(t *testing.T) {
	v := NewValidator()
	plan := standardPlan(1.0, 42.5, 80.0)

	require.NoError(t, v.Validate(plan))

	assert.Equal(t, 1.0, plan.Segments[1].(*MoveTo).Altitude)
	assert.Equal(t, 42.5, plan.Segments[2].(*MoveTo).Altitude)
	assert.Equal(t, 80.0, plan.Segments[3].(*MoveTo).Altitude)
}

func TestValidate_GeofenceDisabledSkipsClamp(t *testing.T) {
	v := NewValidator()
	plan := standardPlan(200)
	plan.Safety.Geofence.Enabled = false

	require.NoError(t, v.Validate(plan))
	assert.Equal(t, 200.0, plan.Segments[1].(*MoveTo).Altitude)
}

func TestValidate_ClampHookObservesRewrites(t *testing.T) {
	var events []ClampEvent
	v := NewValidator(WithClampHook(func(e ClampEvent) {
		events = append(events, e)
	}))

	plan := &Plan{
		ID: "hook-mission",
		Segments: []Segment{
			&Takeoff{},
			&MoveTo{Latitude: 1, Longitude: 2, Altitude: 150,
				MaxHorizontalSpeed: 15, MaxVerticalSpeed: 2, MaxYawRotationSpeed: 1},
			&PoiInspection{Latitude: 1, Longitude: 2, Altitude: 0.5,
				RotationDuration: 30, RollRate: 50},
			&MoveTo{Latitude: 1, Longitude: 2, Altitude: 40,
				MaxHorizontalSpeed: 15, MaxVerticalSpeed: 2, MaxYawRotationSpeed: 1},
			&ReturnToHome{},
			&Land{},
		},
		Safety: SafetyConfig{Geofence: GeofenceConfig{Enabled: true}, MaxAltitudeMeters: 80},
	}

	require.NoError(t, v.Validate(plan))

	require.Len(t, events, 2)
	assert.Equal(t, ClampEvent{SegmentIndex: 1, Kind: KindMoveTo, Original: 150, Clamped: 80}, events[0])
	assert.Equal(t, ClampEvent{SegmentIndex: 2, Kind: KindPoiInspection, Original: 0.5, Clamped: 1}, events[1])
}

func TestValidate_ZeroMaxAltitudeFallsBackToDefault(t *testing.T) {
	v := NewValidator()
	plan := standardPlan(120)
	plan.Safety.MaxAltitudeMeters = 0

	require.NoError(t, v.Validate(plan))
	assert.Equal(t, DefaultMaxAltitudeMeters, plan.Segments[1].(*MoveTo).Altitude)
}

func TestValidate_NonStandardShapeStillPasses(t *testing.T) {
	v := NewValidator()
	plan := &Plan{
		ID:       "odd-shape",
		Segments: []Segment{&MoveTo{Latitude: 1, Longitude: 2, Altitude: 10}},
	}

	assert.NoError(t, v.Validate(plan))
}
