// README: Carpool service orchestrates grouping, clustering, and packing into per-vehicle plans.
package carpool

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"carpool/internal/config"
	"carpool/internal/types"
)

// Resolver turns a (date, time, address) triple into a timezone-aware
// instant, or reports that it cannot.
type Resolver interface {
	Resolve(dateStr, timeStr, address string) (time.Time, error)
}

// Geocoder backfills coordinates for bookings posted without them. Optional.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (types.Point, error)
}

type Service struct {
	resolver Resolver
	geocoder Geocoder
	defaults config.EngineConfig
}

// NewService wires the orchestrator. geocoder may be nil; bookings then keep
// whatever coordinates they were posted with.
func NewService(resolver Resolver, geocoder Geocoder, defaults config.EngineConfig) *Service {
	return &Service{resolver: resolver, geocoder: geocoder, defaults: defaults}
}

// Calculate runs the full pipeline for one request: validate, resolve
// instants, group by address, optionally pool neighbours geographically,
// pack each cluster, then distribute the leftovers. The result lists one
// plan per input vehicle, in input order.
func (s *Service) Calculate(ctx context.Context, req Request) (Response, error) {
	if err := req.Validate(); err != nil {
		return Response{}, err
	}
	opts := s.options(req.Config)

	bookings := s.annotate(ctx, req, opts)

	nextID := groupSameAddresses(bookings)
	if opts.PoolNeighbors {
		var err error
		nextID, err = groupCloseCoordinates(bookings, opts.GeoClusters, nextID)
		if err != nil {
			// Geographic pooling is best-effort; the bookings stay
			// unclustered and are distributed individually.
			log.Warn().Err(err).Msg("geo clustering failed, continuing without it")
		}
	}

	acc := newAssignment(req.Vehicles, time.Duration(opts.MaxWaitMinutes)*time.Minute)
	for id := 1; id < nextID; id++ {
		cluster := withClusterID(bookings, id)
		if len(cluster) > 0 {
			acc.packCluster(cluster)
		}
	}
	acc.distributeUnclustered(withClusterID(bookings, 0))

	plan := make([]VehiclePlan, 0, len(req.Vehicles))
	for _, v := range req.Vehicles {
		trips := acc.trips[v.ID]
		if trips == nil {
			trips = []Trip{}
		}
		plan = append(plan, VehiclePlan{Vehicle: v, Trips: trips})
	}
	return Response{Date: req.Date, Plan: plan}, nil
}

// options merges the request's config block over the service defaults.
func (s *Service) options(o *Options) Options {
	merged := Options{
		MaxWaitMinutes: s.defaults.MaxWaitMinutes,
		PoolNeighbors:  s.defaults.PoolNeighbors,
		GeoClusters:    s.defaults.GeoClusters,
	}
	if o == nil {
		return merged
	}
	if o.MaxWaitMinutes > 0 {
		merged.MaxWaitMinutes = o.MaxWaitMinutes
	}
	if o.GeoClusters > 0 {
		merged.GeoClusters = o.GeoClusters
	}
	merged.PoolNeighbors = o.PoolNeighbors
	return merged
}

// annotate resolves pickup and appointment instants per booking and, when a
// geocoder is configured and pooling is on, fills in missing pickup
// coordinates. Resolution failures degrade the booking to "no fixed pickup
// time"; they never abort the request.
func (s *Service) annotate(ctx context.Context, req Request, opts Options) []*annotated {
	out := make([]*annotated, len(req.Bookings))
	for i, b := range req.Bookings {
		a := &annotated{
			booking: b,
			pickup:  types.Point{Lat: b.PickupLatitude, Lng: b.PickupLongitude},
		}

		if at, err := s.resolver.Resolve(req.Date, b.PickupTime, b.PickupAddress); err == nil {
			t := at
			a.pickupAt = &t
		} else {
			log.Debug().Err(err).Str("booking", string(b.ID)).Msg("pickup time unresolved")
		}
		if at, err := s.resolver.Resolve(req.Date, b.AppointmentTime, b.DropoffAddress); err == nil {
			t := at
			a.appointmentAt = &t
		}

		if s.geocoder != nil && opts.PoolNeighbors && a.pickup.IsZero() {
			if p, err := s.geocoder.Geocode(ctx, b.PickupAddress); err == nil {
				a.pickup = p
			} else {
				log.Debug().Err(err).Str("booking", string(b.ID)).Msg("geocode failed")
			}
		}

		out[i] = a
	}
	return out
}

func withClusterID(bookings []*annotated, id int) []*annotated {
	var matched []*annotated
	for _, b := range bookings {
		if b.clusterID == id {
			matched = append(matched, b)
		}
	}
	return matched
}
