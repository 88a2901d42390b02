package mission

import (
	"log/slog"
)

// Altitude floor applied by the geofence clamp. Commands below 1 m risk
// ground scrape.
const minSafeAltitudeMeters = 1.0

// ClampEvent describes one altitude rewrite performed by the safety clamp.
type ClampEvent struct {
	SegmentIndex int
	Kind         SegmentKind
	Original     float64
	Clamped      float64
}

// Validator structurally validates mission plans and rewrites unsafe
// altitudes to the declared geofence. Structural shape deviations beyond
// the non-empty rule produce warnings, not rejections: a
// malformed-but-plausible plan still gets a chance to run under
// supervision.
type Validator struct {
	logger    *slog.Logger
	clampHook func(ClampEvent)
}

// ValidatorOption is a functional option for configuring a Validator.
type ValidatorOption func(*Validator)

// WithValidatorLogger sets the logger.
func WithValidatorLogger(l *slog.Logger) ValidatorOption {
	return func(v *Validator) {
		v.logger = l
	}
}

// WithClampHook registers a callback invoked for every altitude rewrite,
// in segment order. Used to surface clamp events to metrics or tests.
func WithClampHook(hook func(ClampEvent)) ValidatorOption {
	return func(v *Validator) {
		v.clampHook = hook
	}
}

// NewValidator creates a Validator with the given options.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks the plan's structure and applies the geofence clamp in
// place. Returns a *ValidationError when the plan cannot run at all.
func (v *Validator) Validate(plan *Plan) error {
	if plan == nil || len(plan.Segments) == 0 {
		return &ValidationError{Reason: "mission must contain a non-empty 'segments' list"}
	}

	v.checkShape(plan)

	if plan.Safety.Geofence.Enabled {
		v.clampAltitudes(plan)
	}

	return nil
}

// checkShape warns when the plan deviates from the conventional
// takeoff ... return_to_home, land shape.
func (v *Validator) checkShape(plan *Plan) {
	if plan.Segments[0].Kind() != KindTakeoff {
		v.logger.Warn("first segment is not 'takeoff', proceeding but this is non-standard",
			"mission_id", plan.ID,
			"first_segment", plan.Segments[0].Kind(),
		)
	}

	n := len(plan.Segments)
	tailOK := n >= 2 &&
		plan.Segments[n-2].Kind() == KindReturnToHome &&
		plan.Segments[n-1].Kind() == KindLand
	if !tailOK {
		v.logger.Warn("last segments are not ['return_to_home', 'land'], proceeding but this is non-standard",
			"mission_id", plan.ID,
		)
	}
}

// clampAltitudes rewrites every MoveTo/PoiInspection altitude into
// [minSafeAltitudeMeters, maxAltitudeMeters].
func (v *Validator) clampAltitudes(plan *Plan) {
	maxAlt := plan.Safety.MaxAltitudeMeters
	if maxAlt <= 0 {
		maxAlt = DefaultMaxAltitudeMeters
	}

	for i, seg := range plan.Segments {
		var alt *float64
		switch s := seg.(type) {
		case *MoveTo:
			alt = &s.Altitude
		case *PoiInspection:
			alt = &s.Altitude
		default:
			continue
		}

		clamped := clamp(*alt, minSafeAltitudeMeters, maxAlt)
		if clamped == *alt {
			continue
		}

		v.logger.Warn("clamping altitude due to geofence",
			"mission_id", plan.ID,
			"segment", i,
			"original_m", *alt,
			"clamped_m", clamped,
		)
		if v.clampHook != nil {
			v.clampHook(ClampEvent{
				SegmentIndex: i,
				Kind:         seg.Kind(),
				Original:     *alt,
				Clamped:      clamped,
			})
		}
		*alt = clamped
	}
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
