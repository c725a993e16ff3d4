// README: Geographic pooling of unclustered bookings via k-means over pickup coordinates.
package carpool

import (
	"fmt"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// geoObservation carries the booking's index through the partitioner so
// labels can be mapped back without comparing coordinates.
type geoObservation struct {
	idx    int
	coords clusters.Coordinates
}

func (o geoObservation) Coordinates() clusters.Coordinates { return o.coords }

func (o geoObservation) Distance(p clusters.Coordinates) float64 { return o.coords.Distance(p) }

// groupCloseCoordinates pools the remaining unclustered bookings by pickup
// coordinates into k groups. Skipped entirely when fewer unclustered
// bookings exist than requested groups; ids continue from nextID so they
// stay globally unique and increasing. Returns the next free cluster id.
func groupCloseCoordinates(bookings []*annotated, k, nextID int) (int, error) {
	if k < 1 {
		return nextID, nil
	}

	var obs clusters.Observations
	for i, b := range bookings {
		if b.clusterID != 0 {
			continue
		}
		obs = append(obs, geoObservation{
			idx:    i,
			coords: clusters.Coordinates{b.pickup.Lat, b.pickup.Lng},
		})
	}
	if len(obs) < k {
		return nextID, nil
	}

	km := kmeans.New()
	partition, err := km.Partition(obs, k)
	if err != nil {
		return nextID, fmt.Errorf("kmeans partition: %w", err)
	}

	for label, cluster := range partition {
		for _, o := range cluster.Observations {
			g := o.(geoObservation)
			bookings[g.idx].clusterID = nextID + label
			bookings[g.idx].groupKey = fmt.Sprintf("%s%d", groupKeyGeo, label)
		}
	}
	return nextID + len(partition), nil
}
