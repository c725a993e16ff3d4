// README: Greedy trip packing: time-window walk, open-trip filling, round-robin distribution.
package carpool

import (
	"math"
	"sort"
	"time"

	"carpool/internal/types"
)

// assignment is the shared accumulator threaded through every cluster: the
// capacity-sorted fleet, the round-robin cursor, the open trip, and the
// per-vehicle trip lists. It is explicit state, not captured closures, so
// fairness spans all clusters of a request.
type assignment struct {
	vehicles []Vehicle // capacity-descending
	trips    map[types.ID][]Trip
	cursor   int
	open     *Trip
	maxWait  time.Duration
}

func newAssignment(vehicles []Vehicle, maxWait time.Duration) *assignment {
	sorted := make([]Vehicle, len(vehicles))
	copy(sorted, vehicles)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Capacity > sorted[j].Capacity })

	return &assignment{
		vehicles: sorted,
		trips:    make(map[types.ID][]Trip, len(sorted)),
		maxWait:  maxWait,
	}
}

func (a *assignment) current() Vehicle { return a.vehicles[a.cursor] }

func (a *assignment) advance() { a.cursor = (a.cursor + 1) % len(a.vehicles) }

// seedCursor points the cursor at the vehicle with the fewest trips so far,
// ties broken by position in the capacity-sorted list. Called once per
// cluster before the greedy walk.
func (a *assignment) seedCursor() {
	best := 0
	for i := 1; i < len(a.vehicles); i++ {
		if len(a.trips[a.vehicles[i].ID]) < len(a.trips[a.vehicles[best].ID]) {
			best = i
		}
	}
	a.cursor = best
}

// openTrip starts a new trip holding b, anchored at its pickup instant when
// one is resolved. If the cursor vehicle cannot seat the booking the cursor
// advances until one can; validation guarantees the largest vehicle fits.
func (a *assignment) openTrip(b *annotated) {
	for steps := 0; a.current().Capacity < b.booking.Passengers() && steps < len(a.vehicles); steps++ {
		a.advance()
	}
	t := &Trip{
		Bookings:        []Booking{b.booking},
		TotalPassengers: b.booking.Passengers(),
	}
	if b.pickupAt != nil {
		at := *b.pickupAt
		t.StartTime = &at
		end := at
		t.EndTime = &end
	}
	a.open = t
}

// closeTrip hands the open trip to the cursor vehicle and round-robins to
// the next one. No-op when nothing is open.
func (a *assignment) closeTrip() {
	if a.open == nil {
		return
	}
	recalcDistance(a.open)
	id := a.current().ID
	a.trips[id] = append(a.trips[id], *a.open)
	a.advance()
	a.open = nil
}

// packCluster greedily packs one cluster's bookings into trips. Bookings
// with a resolved pickup instant are walked in time order; the window test
// always measures from the trip's anchor, so cumulative drift closes a trip
// even when consecutive gaps are small. Bookings without an instant are
// filled afterwards.
func (a *assignment) packCluster(cluster []*annotated) {
	var timed, open []*annotated
	for _, b := range cluster {
		if b.pickupAt != nil {
			timed = append(timed, b)
		} else {
			open = append(open, b)
		}
	}
	sort.SliceStable(timed, func(i, j int) bool { return timed[i].pickupAt.Before(*timed[j].pickupAt) })

	if len(timed) > 0 {
		a.seedCursor()
	}
	for _, b := range timed {
		switch {
		case a.open == nil:
			a.openTrip(b)
		case b.pickupAt.Sub(*a.open.StartTime) <= a.maxWait &&
			a.current().Capacity >= a.open.TotalPassengers+b.booking.Passengers():
			a.open.Bookings = append(a.open.Bookings, b.booking)
			a.open.TotalPassengers += b.booking.Passengers()
			end := *b.pickupAt
			a.open.EndTime = &end
		default:
			a.closeTrip()
			a.openTrip(b)
		}
	}
	a.closeTrip()

	a.fillNoPickup(open)
}

// fillNoPickup places bookings without a resolvable pickup time into the
// first existing trip with spare seats, scanning vehicles in capacity order
// and trips in creation order. Leftovers become single-booking trips via the
// usual round-robin advance.
func (a *assignment) fillNoPickup(open []*annotated) {
	for _, b := range open {
		need := b.booking.Passengers()
		placed := false
		for _, v := range a.vehicles {
			ts := a.trips[v.ID]
			for i := range ts {
				if v.Capacity >= ts[i].TotalPassengers+need {
					ts[i].Bookings = append(ts[i].Bookings, b.booking)
					ts[i].TotalPassengers += need
					recalcDistance(&ts[i])
					placed = true
					break
				}
			}
			if placed {
				break
			}
		}
		if !placed {
			a.openTrip(b)
			a.closeTrip()
		}
	}
}

// distributeUnclustered turns every remaining unclustered booking into a
// standalone single-booking trip, smallest bookings first, round-robined
// from the top of the capacity-sorted list.
func (a *assignment) distributeUnclustered(rest []*annotated) {
	sorted := make([]*annotated, len(rest))
	copy(sorted, rest)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].booking.Passengers() < sorted[j].booking.Passengers()
	})

	a.cursor = 0
	for _, b := range sorted {
		a.openTrip(b)
		a.closeTrip()
	}
}

// recalcDistance sets the trip's straight-line distance: the chain of pickup
// points in boarding order, ending at the last booking's dropoff. Reporting
// only; no routing is attempted.
func recalcDistance(t *Trip) {
	if len(t.Bookings) == 0 {
		t.DistanceKm = 0
		return
	}
	total := 0.0
	for i := 1; i < len(t.Bookings); i++ {
		prev, cur := t.Bookings[i-1], t.Bookings[i]
		total += haversineKm(prev.PickupLatitude, prev.PickupLongitude, cur.PickupLatitude, cur.PickupLongitude)
	}
	last := t.Bookings[len(t.Bookings)-1]
	total += haversineKm(last.PickupLatitude, last.PickupLongitude, last.DropoffLatitude, last.DropoffLongitude)
	t.DistanceKm = total
}

const earthRadiusKm = 6371.0

// haversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
