package services

import (
	"math"
	"sort"

	"partnerfeed/internal/core/domain/model/kernel"
	"partnerfeed/internal/core/domain/model/order"
)

// RankedOrder pairs an order with its distance from the partner at ranking
// time. It is a view-only value: recomputed on every feed or position change
// and never stored.
type RankedOrder struct {
	// Order is the underlying order; ranking never copies or mutates it.
	Order *order.Order

	// DistanceKm is the great-circle distance from the partner's position
	// to the order's delivery point. Only meaningful when Ranked is true.
	DistanceKm float64

	// Ranked reports whether a distance could be computed for this order.
	// Without a position fix the whole sequence is unranked passthrough.
	Ranked bool
}

// GeoRanker is a domain service that orders a partner's open orders by live
// great-circle distance from the partner's last known position.
//
// Ranking rules:
//   - Without a position, the input order is preserved (stable passthrough);
//     ranking is best-effort, the feed renders either way.
//   - Sort is ascending by distance and stable: equal distances keep their
//     original (insertion) order.
//   - No order is ever dropped or added by ranking.
//
// Recomputation happens on every position tick over the whole set, which is
// O(n log n) per tick. Fine at fleet scales of tens of orders; revisit if a
// partner ever carries thousands.
type GeoRanker struct{}

// NewGeoRanker creates a new GeoRanker instance.
func NewGeoRanker() GeoRanker {
	return GeoRanker{}
}

// Rank produces the ranked sequence for the given orders and position.
// A nil position yields the input sequence unchanged and unranked.
func (GeoRanker) Rank(orders []*order.Order, position *kernel.GeoPoint) []RankedOrder {
	ranked := make([]RankedOrder, 0, len(orders))

	if position == nil || position.Validate() != nil {
		for _, o := range orders {
			ranked = append(ranked, RankedOrder{Order: o})
		}
		return ranked
	}

	for _, o := range orders {
		distance, err := position.DistanceTo(o.Destination())
		if err != nil {
			// An order with an unusable destination sorts last but stays visible.
			ranked = append(ranked, RankedOrder{Order: o, DistanceKm: math.Inf(1)})
			continue
		}

		ranked = append(ranked, RankedOrder{Order: o, DistanceKm: distance, Ranked: true})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})

	return ranked
}
