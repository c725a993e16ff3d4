// README: Common value types shared across modules.
package types

// ID is an opaque identifier. Bookings and vehicles are compared by ID,
// never by struct identity.
type ID string

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64
	Lng float64
}

// IsZero reports whether the point carries no coordinate information.
func (p Point) IsZero() bool {
	return p.Lat == 0 && p.Lng == 0
}
