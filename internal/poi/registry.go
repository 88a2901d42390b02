// Package poi provides the read-only points-of-interest registry supplied to
// the mission planner. Points are loaded once from a JSON map file and looked
// up by name.
package poi

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/purrsec/Hackathon-parrotAI/internal/types"
)

// Coordinates locates a point on the map.
type Coordinates struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	AltitudeMeters float64 `json:"altitude_meters"`
}

// Point is a named point of interest.
type Point struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
}

// Registry is a read-only named lookup over the configured points of
// interest.
type Registry struct {
	points []Point
	byName map[string]Point
}

// mapFile is the on-disk shape of a map file.
type mapFile struct {
	PointsOfInterest []Point `json:"points_of_interest"`
}

// Load reads a registry from a JSON map file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.WrapError(types.POI_LOAD_FAILED, "failed to read POI file", err)
	}

	var f mapFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, types.WrapError(types.POI_LOAD_FAILED, "invalid JSON in POI file", err)
	}

	return NewRegistry(f.PointsOfInterest), nil
}

// NewRegistry builds a registry from an in-memory point list.
func NewRegistry(points []Point) *Registry {
	byName := make(map[string]Point, len(points))
	for _, p := range points {
		byName[strings.ToLower(p.Name)] = p
	}
	return &Registry{points: points, byName: byName}
}

// Lookup finds a point by name, case-insensitively.
func (r *Registry) Lookup(name string) (Point, error) {
	p, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return Point{}, types.NewError(types.POI_NOT_FOUND, "unknown point of interest: "+name)
	}
	return p, nil
}

// Points returns all registered points in file order.
func (r *Registry) Points() []Point {
	out := make([]Point, len(r.points))
	copy(out, r.points)
	return out
}

// Len returns the number of registered points.
func (r *Registry) Len() int {
	return len(r.points)
}
