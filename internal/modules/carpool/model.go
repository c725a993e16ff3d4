// README: Carpool domain model: bookings, vehicles, trips, plans, and request validation.
package carpool

import (
	"errors"
	"fmt"
	"time"

	"carpool/internal/types"
)

// Booking is a single pickup/dropoff request. It is immutable once decoded;
// all derived state (resolved instants, cluster membership) lives in the
// annotation wrapper, never on the booking itself.
type Booking struct {
	ID         types.ID `json:"id"`
	ClientName string   `json:"client_name"`

	PickupTime      string  `json:"pickup_time,omitempty"` // "H:mm AM", "OPEN", or empty
	PickupAddress   string  `json:"pickup_address"`
	PickupLatitude  float64 `json:"pickup_latitude"`
	PickupLongitude float64 `json:"pickup_longitude"`

	AppointmentTime  string  `json:"appointment_time,omitempty"`
	DropoffAddress   string  `json:"dropoff_address"`
	DropoffLatitude  float64 `json:"dropoff_latitude"`
	DropoffLongitude float64 `json:"dropoff_longitude"`

	PassengerCount int `json:"passenger_count,omitempty"`
}

// Passengers returns the seat demand of the booking, defaulting to 1 when
// the field was omitted.
func (b Booking) Passengers() int {
	if b.PassengerCount <= 0 {
		return 1
	}
	return b.PassengerCount
}

// Vehicle is a fleet member. Vehicles are equal iff their IDs are equal;
// all bookkeeping keys on Vehicle.ID, never on the struct.
type Vehicle struct {
	ID         types.ID `json:"id"`
	DriverName string   `json:"driver_name,omitempty"`
	Capacity   int      `json:"capacity"`
}

// Trip is an ordered set of bookings served together. StartTime is the
// anchor: the pickup instant of the first booking placed into the trip.
type Trip struct {
	Bookings        []Booking  `json:"bookings"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	TotalPassengers int        `json:"total_passengers"`
	DistanceKm      float64    `json:"distance_km"`
}

// VehiclePlan lists a vehicle's trips in assignment order.
type VehiclePlan struct {
	Vehicle Vehicle `json:"vehicle"`
	Trips   []Trip  `json:"trips"`
}

// Options are the per-request packing parameters. Zero values fall back to
// the service defaults.
type Options struct {
	MaxWaitMinutes int  `json:"max_wait_minutes,omitempty"`
	PoolNeighbors  bool `json:"pool_neighbors,omitempty"`
	GeoClusters    int  `json:"geo_clusters,omitempty"`
}

type Request struct {
	Date     string    `json:"date"` // MM/DD/YYYY
	Bookings []Booking `json:"bookings"`
	Vehicles []Vehicle `json:"vehicles"`
	Config   *Options  `json:"config,omitempty"`
}

type Response struct {
	Date string        `json:"date"`
	Plan []VehiclePlan `json:"plan"`
}

var (
	ErrNoVehicles         = errors.New("request has no vehicles")
	ErrBadCapacity        = errors.New("vehicle capacity must be at least 1")
	ErrBadPassengerCount  = errors.New("passenger count must not be negative")
	ErrMissingID          = errors.New("missing id")
	ErrUnplaceableBooking = errors.New("booking exceeds every vehicle's capacity")
)

// Validate rejects structurally broken requests before the engine runs.
// Oversized bookings are refused here so the capacity and coverage
// invariants hold unconditionally during packing.
func (r *Request) Validate() error {
	if len(r.Vehicles) == 0 {
		return ErrNoVehicles
	}
	maxCapacity := 0
	for _, v := range r.Vehicles {
		if v.ID == "" {
			return fmt.Errorf("vehicle: %w", ErrMissingID)
		}
		if v.Capacity < 1 {
			return fmt.Errorf("vehicle %s: %w", v.ID, ErrBadCapacity)
		}
		if v.Capacity > maxCapacity {
			maxCapacity = v.Capacity
		}
	}
	for _, b := range r.Bookings {
		if b.ID == "" {
			return fmt.Errorf("booking: %w", ErrMissingID)
		}
		if b.PassengerCount < 0 {
			return fmt.Errorf("booking %s: %w", b.ID, ErrBadPassengerCount)
		}
		if b.Passengers() > maxCapacity {
			return fmt.Errorf("booking %s (%d passengers): %w", b.ID, b.Passengers(), ErrUnplaceableBooking)
		}
	}
	return nil
}

// annotated pairs a booking with the state the engine derives for it.
type annotated struct {
	booking       Booking
	pickupAt      *time.Time
	appointmentAt *time.Time
	clusterID     int // 0 means unclustered
	groupKey      string
	pickup        types.Point
}
