// Package geo provides small geometric helpers: a center point and search
// radius for "2dsphere" near queries, used to build GeoNear2DSphere
// solution leaves, and a planar rectangle for legacy "2d" regions, which
// the planner does not use (a Geo2D leaf carries its region as given).
package geo

import (
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// NearQuery is a GEO_NEAR predicate's center and search radius, built from
// the predicate's raw lat/lng/maxDistance fields and converted to s2's
// spherical representation once at leaf-construction time so that a
// GeoNear2DSphere leaf can carry a ready-to-use center/radius pair rather
// than re-deriving it on every execution.
type NearQuery struct {
	Center s2.Point
	Radius s1.ChordAngle
}

// earthRadiusMeters is the WGS84 equatorial radius used to convert a
// maxDistance in meters to an s1.Angle.
const earthRadiusMeters = 6378137.0

// NewNearQuery builds a NearQuery from a predicate's center coordinates
// (degrees) and search radius (meters).
func NewNearQuery(lat, lng, maxDistanceMeters float64) NearQuery {
	center := s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lng))
	angle := s1.Angle(maxDistanceMeters / earthRadiusMeters)
	return NearQuery{Center: center, Radius: s1.ChordAngleFromAngle(angle)}
}

// Rect is a legacy "2d" index's planar bounding region: a simple
// axis-aligned rectangle over the flat (non-spherical) coordinate grid
// that index type stores. No s2 dependency is needed here: 2d indexes
// predate spherical geometry and store geohash-style cell prefixes over a
// flat grid, so Rect only needs min/max corners.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Contains reports whether (x, y) falls within the rectangle, inclusive
// of its edges.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}
