package mission

import (
	"encoding/json"
	"fmt"
	"time"
)

// SegmentKind identifies one of the five flight behaviors a plan segment can
// describe. The set is closed: the wire decoder rejects anything else.
type SegmentKind string

const (
	KindTakeoff       SegmentKind = "takeoff"
	KindMoveTo        SegmentKind = "move_to"
	KindPoiInspection SegmentKind = "poi_inspection"
	KindReturnToHome  SegmentKind = "return_to_home"
	KindLand          SegmentKind = "land"
)

// String returns the string representation of the kind.
func (k SegmentKind) String() string {
	return string(k)
}

// Segment is one atomic flight behavior within a plan. Implementations are
// the five concrete segment types; the executor matches over them
// exhaustively.
type Segment interface {
	Kind() SegmentKind
}

// Takeoff lifts the vehicle off the ground.
type Takeoff struct {
	// MaxWait bounds how long the handler waits for hover confirmation.
	// Zero means the executor's default command timeout.
	MaxWait time.Duration
}

// Kind implements Segment.
func (*Takeoff) Kind() SegmentKind { return KindTakeoff }

// MoveTo navigates to a coordinate with speed caps.
type MoveTo struct {
	Latitude  float64
	Longitude float64
	Altitude  float64

	MaxHorizontalSpeed  float64
	MaxVerticalSpeed    float64
	MaxYawRotationSpeed float64
}

// Kind implements Segment.
func (*MoveTo) Kind() SegmentKind { return KindMoveTo }

// PoiInspection orbits a named ground point for a bounded duration.
type PoiInspection struct {
	PoiName   string
	Latitude  float64
	Longitude float64
	Altitude  float64

	// RotationDuration is how long the orbit runs, in seconds.
	RotationDuration float64

	// RollRate sets orbit aggressiveness as a bounded attitude value.
	RollRate int

	// OffsetDistance is an optional viewing standoff in meters.
	OffsetDistance float64
}

// Kind implements Segment.
func (*PoiInspection) Kind() SegmentKind { return KindPoiInspection }

// ReturnToHome brings the vehicle back to its launch point.
type ReturnToHome struct{}

// Kind implements Segment.
func (*ReturnToHome) Kind() SegmentKind { return KindReturnToHome }

// Land grounds the vehicle.
type Land struct{}

// Kind implements Segment.
func (*Land) Kind() SegmentKind { return KindLand }

// Wire defaults applied when a segment omits the optional fields.
const (
	defaultMaxHorizontalSpeed  = 15.0
	defaultMaxVerticalSpeed    = 2.0
	defaultMaxYawRotationSpeed = 1.0
	defaultRotationDuration    = 30.0
	defaultRollRate            = 50
)

// segmentEnvelope is the wire shape shared by all segment kinds. Only the
// fields relevant to the tagged kind are read.
type segmentEnvelope struct {
	Type        SegmentKind `json:"type"`
	Constraints *struct {
		MaxWaitSec float64 `json:"maxWaitSec"`
	} `json:"constraints,omitempty"`

	PoiName   string   `json:"poi_name,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Altitude  *float64 `json:"altitude,omitempty"`

	MaxHorizontalSpeed  *float64 `json:"max_horizontal_speed,omitempty"`
	MaxVerticalSpeed    *float64 `json:"max_vertical_speed,omitempty"`
	MaxYawRotationSpeed *float64 `json:"max_yaw_rotation_speed,omitempty"`

	RotationDuration *float64 `json:"rotation_duration,omitempty"`
	RollRate         *int     `json:"roll_rate,omitempty"`
	OffsetDistance   *float64 `json:"offset_distance,omitempty"`
}

func floatOr(p *float64, def float64) float64 {
	if p != nil {
		return *p
	}
	return def
}

func intOr(p *int, def int) int {
	if p != nil {
		return *p
	}
	return def
}

// DecodeSegment decodes one wire segment into its concrete type. Unknown
// kinds are a decode error; plans are decoded exactly once, here, so the
// rest of the pipeline only ever sees the closed segment set.
func DecodeSegment(data json.RawMessage) (Segment, error) {
	var env segmentEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("invalid segment: %w", err)
	}

	switch env.Type {
	case KindTakeoff:
		var maxWait time.Duration
		if env.Constraints != nil && env.Constraints.MaxWaitSec > 0 {
			maxWait = time.Duration(env.Constraints.MaxWaitSec * float64(time.Second))
		}
		return &Takeoff{MaxWait: maxWait}, nil

	case KindMoveTo:
		if env.Latitude == nil || env.Longitude == nil || env.Altitude == nil {
			return nil, fmt.Errorf("move_to segment requires latitude, longitude and altitude")
		}
		return &MoveTo{
			Latitude:            *env.Latitude,
			Longitude:           *env.Longitude,
			Altitude:            *env.Altitude,
			MaxHorizontalSpeed:  floatOr(env.MaxHorizontalSpeed, defaultMaxHorizontalSpeed),
			MaxVerticalSpeed:    floatOr(env.MaxVerticalSpeed, defaultMaxVerticalSpeed),
			MaxYawRotationSpeed: floatOr(env.MaxYawRotationSpeed, defaultMaxYawRotationSpeed),
		}, nil

	case KindPoiInspection:
		if env.Latitude == nil || env.Longitude == nil || env.Altitude == nil {
			return nil, fmt.Errorf("poi_inspection segment requires latitude, longitude and altitude")
		}
		return &PoiInspection{
			PoiName:          env.PoiName,
			Latitude:         *env.Latitude,
			Longitude:        *env.Longitude,
			Altitude:         *env.Altitude,
			RotationDuration: floatOr(env.RotationDuration, defaultRotationDuration),
			RollRate:         intOr(env.RollRate, defaultRollRate),
			OffsetDistance:   floatOr(env.OffsetDistance, 0),
		}, nil

	case KindReturnToHome:
		return &ReturnToHome{}, nil

	case KindLand:
		return &Land{}, nil

	case "":
		return nil, fmt.Errorf("segment missing 'type'")

	default:
		return nil, fmt.Errorf("unsupported segment type: %s", env.Type)
	}
}

// encodeSegment renders a concrete segment back into its wire shape.
func encodeSegment(s Segment) (json.RawMessage, error) {
	switch seg := s.(type) {
	case *Takeoff:
		out := map[string]any{"type": KindTakeoff}
		if seg.MaxWait > 0 {
			out["constraints"] = map[string]any{"maxWaitSec": seg.MaxWait.Seconds()}
		}
		return json.Marshal(out)

	case *MoveTo:
		return json.Marshal(map[string]any{
			"type":                   KindMoveTo,
			"latitude":               seg.Latitude,
			"longitude":              seg.Longitude,
			"altitude":               seg.Altitude,
			"max_horizontal_speed":   seg.MaxHorizontalSpeed,
			"max_vertical_speed":     seg.MaxVerticalSpeed,
			"max_yaw_rotation_speed": seg.MaxYawRotationSpeed,
		})

	case *PoiInspection:
		out := map[string]any{
			"type":              KindPoiInspection,
			"poi_name":          seg.PoiName,
			"latitude":          seg.Latitude,
			"longitude":         seg.Longitude,
			"altitude":          seg.Altitude,
			"rotation_duration": seg.RotationDuration,
			"roll_rate":         seg.RollRate,
		}
		if seg.OffsetDistance > 0 {
			out["offset_distance"] = seg.OffsetDistance
		}
		return json.Marshal(out)

	case *ReturnToHome:
		return json.Marshal(map[string]any{"type": KindReturnToHome})

	case *Land:
		return json.Marshal(map[string]any{"type": KindLand})

	default:
		return nil, fmt.Errorf("unsupported segment type: %s", s.Kind())
	}
}
