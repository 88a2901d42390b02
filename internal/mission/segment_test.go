package mission

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSegment_Takeoff(t *testing.T) {
	seg, err := DecodeSegment(json.RawMessage(`{"type": "takeoff"}`))
	require.NoError(t, err)

	takeoff, ok := seg.(*Takeoff)
	require.True(t, ok)
	assert.Equal(t, KindTakeoff, takeoff.Kind())
	assert.Zero(t, takeoff.MaxWait)
}

func TestDecodeSegment_TakeoffMaxWait(t *testing.T) {
	seg, err := DecodeSegment(json.RawMessage(`{"type": "takeoff", "constraints": {"maxWaitSec": 10}}`))
	require.NoError(t, err)

	takeoff := seg.(*Takeoff)
	assert.Equal(t, 10*time.Second, takeoff.MaxWait)
}

func TestDecodeSegment_MoveToDefaults(t *testing.T) {
	raw := `{"type": "move_to", "latitude": 48.8789, "longitude": 2.3675, "altitude": 30}`
	seg, err := DecodeSegment(json.RawMessage(raw))
	require.NoError(t, err)

	move, ok := seg.(*MoveTo)
	require.True(t, ok)
	assert.Equal(t, 48.8789, move.Latitude)
	assert.Equal(t, 2.3675, move.Longitude)
	assert.Equal(t, 30.0, move.Altitude)
	assert.Equal(t, 15.0, move.MaxHorizontalSpeed)
	assert.Equal(t, 2.0, move.MaxVerticalSpeed)
	assert.Equal(t, 1.0, move.MaxYawRotationSpeed)
}

func TestDecodeSegment_MoveToMissingCoordinates(t *testing.T) {
	for _, raw := range []string{
		`{"type": "move_to"}`,
		`{"type": "move_to", "latitude": 48.8, "longitude": 2.3}`,
		`{"type": "move_to", "altitude": 20}`,
	} {
		_, err := DecodeSegment(json.RawMessage(raw))
		assert.Error(t, err, "raw %s", raw)
	}
}

func TestDecodeSegment_PoiInspection(t *testing.T) {
	raw := `{
		"type": "poi_inspection",
		"poi_name": "Water Tower",
		"latitude": 48.87895,
		"longitude": 2.36754,
		"altitude": 40,
		"rotation_duration": 12,
		"roll_rate": 30
	}`
	seg, err := DecodeSegment(json.RawMessage(raw))
	require.NoError(t, err)

	poi, ok := seg.(*PoiInspection)
	require.True(t, ok)
	assert.Equal(t, "Water Tower", poi.PoiName)
	assert.Equal(t, 12.0, poi.RotationDuration)
	assert.Equal(t, 30, poi.RollRate)
}

func TestDecodeSegment_PoiInspectionDefaults(t *testing.T) {
	raw := `{"type": "poi_inspection", "latitude": 1, "longitude": 2, "altitude": 3}`
	seg, err := DecodeSegment(json.RawMessage(raw))
	require.NoError(t, err)

	poi := seg.(*PoiInspection)
	assert.Equal(t, 30.0, poi.RotationDuration)
	assert.Equal(t, 50, poi.RollRate)
	assert.Zero(t, poi.OffsetDistance)
}

func TestDecodeSegment_Unknown(t *testing.T) {
	_, err := DecodeSegment(json.RawMessage(`{"type": "hover_forever"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported segment type")

	_, err = DecodeSegment(json.RawMessage(`{"latitude": 1}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing 'type'")
}

func TestSegmentRoundTrip(t *testing.T) {
	segments := []Segment{
		&Takeoff{MaxWait: 8 * time.Second},
		&MoveTo{Latitude: 48.1, Longitude: 2.2, Altitude: 25,
			MaxHorizontalSpeed: 10, MaxVerticalSpeed: 2, MaxYawRotationSpeed: 1},
		&PoiInspection{PoiName: "Warehouse A", Latitude: 48.2, Longitude: 2.3,
			Altitude: 15, RotationDuration: 20, RollRate: 40, OffsetDistance: 5},
		&ReturnToHome{},
		&Land{},
	}

	for _, seg := range segments {
		raw, err := encodeSegment(seg)
		require.NoError(t, err)

		decoded, err := DecodeSegment(raw)
		require.NoError(t, err, "kind %s", seg.Kind())
		assert.Equal(t, seg, decoded, "kind %s", seg.Kind())
	}
}

func TestPlanUnmarshal(t *testing.T) {
	raw := `{
		"missionId": "m-1",
		"understanding": "Yes, I can inspect the water tower.",
		"segments": [
			{"type": "takeoff"},
			{"type": "move_to", "latitude": 48.8789, "longitude": 2.3675, "altitude": 35},
			{"type": "return_to_home"},
			{"type": "land"}
		],
		"safety": {
			"geofence": {"enabled": true},
			"maxAltitudeMeters": 60
		}
	}`

	var plan Plan
	require.NoError(t, json.Unmarshal([]byte(raw), &plan))

	assert.Equal(t, "m-1", plan.ID)
	assert.Equal(t, "Yes, I can inspect the water tower.", plan.Understanding)
	require.Len(t, plan.Segments, 4)
	assert.Equal(t, KindTakeoff, plan.Segments[0].Kind())
	assert.Equal(t, KindLand, plan.Segments[3].Kind())
	assert.True(t, plan.Safety.Geofence.Enabled)
	assert.Equal(t, 60.0, plan.Safety.MaxAltitudeMeters)
}

func TestPlanUnmarshal_DefaultSafety(t *testing.T) {
	raw := `{"segments": [{"type": "takeoff"}]}`

	var plan Plan
	require.NoError(t, json.Unmarshal([]byte(raw), &plan))

	assert.False(t, plan.Safety.Geofence.Enabled)
	assert.Equal(t, DefaultMaxAltitudeMeters, plan.Safety.MaxAltitudeMeters)
}

func TestPlanUnmarshal_BadSegment(t *testing.T) {
	raw := `{"segments": [{"type": "takeoff"}, {"type": "warp"}]}`

	var plan Plan
	err := json.Unmarshal([]byte(raw), &plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "segment 1")
}

func TestPlanMarshalRoundTrip(t *testing.T) {
	plan := &Plan{
		ID: "m-2",
		Segments: []Segment{
			&Takeoff{},
			&MoveTo{Latitude: 1, Longitude: 2, Altitude: 3,
				MaxHorizontalSpeed: 15, MaxVerticalSpeed: 2, MaxYawRotationSpeed: 1},
			&ReturnToHome{},
			&Land{},
		},
		Safety:        SafetyConfig{Geofence: GeofenceConfig{Enabled: true}, MaxAltitudeMeters: 80},
		Understanding: "ok",
	}

	data, err := json.Marshal(plan)
	require.NoError(t, err)

	var decoded Plan
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, plan.ID, decoded.ID)
	assert.Equal(t, plan.Understanding, decoded.Understanding)
	assert.Equal(t, plan.Safety, decoded.Safety)
	assert.Equal(t, plan.Segments, decoded.Segments)
}
