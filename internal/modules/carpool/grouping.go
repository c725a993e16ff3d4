// README: Address-based clustering: shared dropoff address first, then shared pickup address.
package carpool

// groupKeyDropoff and friends record which rule produced a cluster.
const (
	groupKeyDropoff = "DROPOFF="
	groupKeyPickup  = "PICKUP="
	groupKeyGeo     = "GEO-"
)

// groupSameAddresses partitions bookings into clusters of shared dropoff
// address, then shared pickup address among the bookings the first pass left
// unclustered. Cluster ids start at 1 and increase in discovery order.
// Returns the next free cluster id.
func groupSameAddresses(bookings []*annotated) int {
	nextID := 1
	nextID = assignAddressClusters(bookings, nextID, groupKeyDropoff, func(b *annotated) string {
		return b.booking.DropoffAddress
	})
	nextID = assignAddressClusters(bookings, nextID, groupKeyPickup, func(b *annotated) string {
		return b.booking.PickupAddress
	})
	return nextID
}

// assignAddressClusters counts each distinct address among the unclustered
// bookings and assigns one cluster id per address that occurs more than
// once. Addresses are processed in descending count order, ties broken by
// first appearance, so the outcome never depends on map iteration order.
func assignAddressClusters(bookings []*annotated, nextID int, keyPrefix string, addr func(*annotated) string) int {
	counts := make(map[string]int)
	var order []string
	for _, b := range bookings {
		if b.clusterID != 0 {
			continue
		}
		a := addr(b)
		if a == "" {
			continue
		}
		if counts[a] == 0 {
			order = append(order, a)
		}
		counts[a]++
	}

	// Descending count, stable on first appearance.
	sortByDescCount(order, counts)

	for _, a := range order {
		if counts[a] < 2 {
			continue
		}
		for _, b := range bookings {
			if b.clusterID == 0 && addr(b) == a {
				b.clusterID = nextID
				b.groupKey = keyPrefix + a
			}
		}
		nextID++
	}
	return nextID
}

// sortByDescCount is an insertion sort; address lists are tiny and the sort
// must be stable.
func sortByDescCount(order []string, counts map[string]int) {
	for i := 1; i < len(order); i++ {
		key := order[i]
		j := i - 1
		for j >= 0 && counts[order[j]] < counts[key] {
			order[j+1] = order[j]
			j--
		}
		order[j+1] = key
	}
}
