// Package mission implements the mission pipeline: plan schema, generation
// from natural language, validation and safety clamping, the
// human-confirmation gate, and supervised execution against a flight
// interface.
package mission

import (
	"encoding/json"
	"fmt"
	"time"
)

// DefaultMaxAltitudeMeters is the geofence ceiling applied when a plan's
// safety block does not name one.
const DefaultMaxAltitudeMeters = 80.0

// GeofenceConfig toggles altitude clamping.
type GeofenceConfig struct {
	Enabled bool `json:"enabled"`
}

// SafetyConfig carries a plan's safety bounds.
type SafetyConfig struct {
	Geofence          GeofenceConfig `json:"geofence"`
	MaxAltitudeMeters float64        `json:"maxAltitudeMeters"`

	// MinBatteryPercent is parsed but advisory only; the execution engine
	// does not enforce it.
	MinBatteryPercent *float64 `json:"minBatteryPercent,omitempty"`
}

// Plan is a structured, ordered flight mission produced for one
// natural-language request. Segments are non-empty; by convention the first
// is a takeoff and the last two are return-home then land.
type Plan struct {
	ID            string
	Segments      []Segment
	Safety        SafetyConfig
	Understanding string
}

// planEnvelope is the wire shape of a plan.
type planEnvelope struct {
	ID            string            `json:"missionId,omitempty"`
	Segments      []json.RawMessage `json:"segments"`
	Safety        *SafetyConfig     `json:"safety,omitempty"`
	Understanding string            `json:"understanding,omitempty"`
}

// UnmarshalJSON decodes a plan from the mission DSL, decoding every segment
// into its concrete type. This is the single decode boundary: anything that
// parses here is structurally sound.
func (p *Plan) UnmarshalJSON(data []byte) error {
	var env planEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("invalid mission plan: %w", err)
	}

	segments := make([]Segment, 0, len(env.Segments))
	for i, raw := range env.Segments {
		seg, err := DecodeSegment(raw)
		if err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
		segments = append(segments, seg)
	}

	safety := SafetyConfig{MaxAltitudeMeters: DefaultMaxAltitudeMeters}
	if env.Safety != nil {
		safety = *env.Safety
		if safety.MaxAltitudeMeters <= 0 {
			safety.MaxAltitudeMeters = DefaultMaxAltitudeMeters
		}
	}

	p.ID = env.ID
	p.Segments = segments
	p.Safety = safety
	p.Understanding = env.Understanding
	return nil
}

// MarshalJSON renders the plan back into the mission DSL wire shape.
func (p *Plan) MarshalJSON() ([]byte, error) {
	segments := make([]json.RawMessage, 0, len(p.Segments))
	for i, seg := range p.Segments {
		raw, err := encodeSegment(seg)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		segments = append(segments, raw)
	}

	safety := p.Safety
	return json.Marshal(planEnvelope{
		ID:            p.ID,
		Segments:      segments,
		Safety:        &safety,
		Understanding: p.Understanding,
	})
}

// PendingMission holds a generated plan awaiting operator confirmation.
type PendingMission struct {
	ID        string
	Plan      *Plan
	CreatedAt time.Time

	// Request is the originating natural-language payload, kept for
	// operator display and audit logs.
	Request string
}
